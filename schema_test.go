package ocm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefine_FieldOrderFollowsDeclaration(t *testing.T) {
	// Names chosen to sort differently alphabetically than by declaration.
	zeta := NewArgument("zeta", WithDefault("z"))
	mid := NewOption("-m", "mid", WithDefault("m"))
	alpha := NewArgument("alpha", WithDefault("a"))

	s, err := Define("prog", WithFields(zeta, mid, alpha))
	require.NoError(t, err)

	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Spec().Name)
	}
	assert.Equal(t, []string{"zeta", "mid", "alpha"}, names)
}

func TestDefine_OrderIndependentOfRegistrationOrder(t *testing.T) {
	first := NewArgument("first", WithDefault("1"))
	second := NewArgument("second", WithDefault("2"))

	// Registered backwards; creation order still wins.
	s, err := Define("prog", WithFields(second), WithFields(first))
	require.NoError(t, err)

	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Spec().Name)
	}
	assert.Equal(t, []string{"first", "second"}, names)
}

func TestDefine_MissingExe(t *testing.T) {
	_, err := Define("")
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}

func TestDefine_DuplicateFieldName(t *testing.T) {
	_, err := Define("prog", WithFields(
		NewArgument("path", WithDefault(".")),
		NewArgument("path", WithDefault(".")),
	))
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "path")
}

func TestDefine_EmptyOptionKey(t *testing.T) {
	// Fields built as literals dodge the NewOption check; Define still
	// rejects them.
	broken := &Option{Parameter: Parameter{Name: "broken"}}
	_, err := Define("prog", WithFields(broken))
	require.Error(t, err)
	assert.True(t, IsBadParameter(err))
}

func TestDefine_EmptyFieldName(t *testing.T) {
	_, err := Define("prog", WithFields(NewArgument("")))
	require.Error(t, err)
	assert.True(t, IsBadParameter(err))
}

func TestDefine_Defaults(t *testing.T) {
	s, err := Define("git")
	require.NoError(t, err)
	assert.Equal(t, "git", s.Name())
	assert.Equal(t, "git", s.Exe())
	assert.Empty(t, s.SubCommands())
	assert.Empty(t, s.Fields())
}

func TestDefine_NameAndSubCommands(t *testing.T) {
	s, err := Define("git",
		WithName("git-remote-add"),
		WithSubCommands("remote", "add"),
	)
	require.NoError(t, err)
	assert.Equal(t, "git-remote-add", s.Name())
	assert.Equal(t, []string{"remote", "add"}, s.SubCommands())
}

func TestSchema_FieldLookup(t *testing.T) {
	s, err := Define("prog", WithFields(NewOption("-v", "level", WithDefault(1))))
	require.NoError(t, err)

	f, ok := s.Field("level")
	require.True(t, ok)
	assert.Equal(t, "level", f.Spec().Name)

	_, ok = s.Field("nope")
	assert.False(t, ok)
}

func TestMustDefine_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustDefine("") })
	assert.NotPanics(t, func() { MustDefine("true") })
}
