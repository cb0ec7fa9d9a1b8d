package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ocm"
	"github.com/roach88/ocm/history"
)

func seedHistory(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ocm.db")

	clock := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	n := 0
	st, err := history.Open(dbPath,
		history.WithIDs(history.NewFixedIDs("id-001", "id-002")),
		history.WithNow(func() time.Time {
			ts := clock.Add(time.Duration(n) * time.Second)
			n++
			return ts
		}),
	)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Record(ctx, ocm.Invocation{
		Schema: "ls", Rendered: "ls -l /tmp", ExitCode: 0, Stdout: "total 0\n",
	}))
	require.NoError(t, st.Record(ctx, ocm.Invocation{
		Schema: "deploy", Rendered: "deploy --env prod", ExitCode: 2, Stderr: "denied\n",
	}))

	return dbPath
}

func TestHistory_List(t *testing.T) {
	dbPath := seedHistory(t)

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "deploy --env prod")
	assert.Contains(t, out, "ls -l /tmp")
	assert.Contains(t, out, "exit=2")

	// Newest first.
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte("deploy")),
		bytes.Index(buf.Bytes(), []byte("ls -l")))
}

func TestHistory_Get(t *testing.T) {
	dbPath := seedHistory(t)

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--id", "id-002"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "deploy --env prod")
	assert.Contains(t, buf.String(), "denied")
}

func TestHistory_GetNotFound(t *testing.T) {
	dbPath := seedHistory(t)

	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--id", "nope"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestHistory_MissingDatabaseFlag(t *testing.T) {
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}
