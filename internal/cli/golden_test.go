package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// Snapshots the render command's output in both formats. Regenerate with:
//
//	go test ./internal/cli -update
func TestRender_Golden(t *testing.T) {
	path := writeDefinition(t, lsDefinition)
	args := []string{path, "--args", `{"long":true,"width":80,"path":"/tmp"}`}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cmd := NewRenderCommand(&RootOptions{Format: "text"})
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
		g.Assert(t, "render_text", buf.Bytes())
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cmd := NewRenderCommand(&RootOptions{Format: "json"})
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
		g.Assert(t, "render_json", buf.Bytes())
	})
}
