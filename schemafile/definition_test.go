package schemafile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ocm"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr string
	}{
		{
			name:    "missing exe",
			def:     Definition{},
			wantErr: "exe is required",
		},
		{
			name: "missing param name",
			def: Definition{Exe: "ls", Params: []ParamDef{
				{Option: "-l"},
			}},
			wantErr: "name is required",
		},
		{
			name: "duplicate param name",
			def: Definition{Exe: "ls", Params: []ParamDef{
				{Name: "x"},
				{Name: "x"},
			}},
			wantErr: "duplicate name",
		},
		{
			name: "flag without option",
			def: Definition{Exe: "ls", Params: []ParamDef{
				{Name: "x", Flag: true},
			}},
			wantErr: "flag requires option",
		},
		{
			name: "unknown type",
			def: Definition{Exe: "ls", Params: []ParamDef{
				{Name: "x", Type: "decimal"},
			}},
			wantErr: "unknown type",
		},
		{
			name: "choice without choices",
			def: Definition{Exe: "ls", Params: []ParamDef{
				{Name: "x", Type: TypeChoice},
			}},
			wantErr: "requires choices",
		},
		{
			name: "choices without choice type",
			def: Definition{Exe: "ls", Params: []ParamDef{
				{Name: "x", Choices: []string{"a"}},
			}},
			wantErr: "choices requires type choice",
		},
		{
			name: "precision without float type",
			def: Definition{Exe: "ls", Params: []ParamDef{
				{Name: "x", Type: TypeInt, Precision: intPtr(3)},
			}},
			wantErr: "precision requires type float",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefinition_Build(t *testing.T) {
	def := Definition{
		Name:        "list",
		Exe:         "ls",
		SubCommands: []string{"--"},
		Params: []ParamDef{
			{Name: "long", Option: "-l", Flag: true},
			{Name: "width", Option: "-w", Type: TypeInt, Required: boolPtr(false)},
			{Name: "path", Default: "."},
		},
	}

	schema, err := def.Build()
	require.NoError(t, err)
	assert.Equal(t, "list", schema.Name())
	assert.Equal(t, "ls", schema.Exe())
	assert.Equal(t, []string{"--"}, schema.SubCommands())

	cmd, err := schema.New(ocm.Values{"long": true, "width": 80})
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "--", "-l", "-w", "80", "."}, cmd.Render())
}

func TestDefinition_Build_ChoiceAndPrecision(t *testing.T) {
	def := Definition{
		Exe: "convert",
		Params: []ParamDef{
			{Name: "mode", Option: "--mode", Type: TypeChoice, Choices: []string{"fast", "slow"}},
			{Name: "scale", Option: "--scale", Type: TypeFloat, Precision: intPtr(3)},
		},
	}

	schema, err := def.Build()
	require.NoError(t, err)

	cmd, err := schema.New(ocm.Values{"mode": "fast", "scale": 1.0 / 3.0})
	require.NoError(t, err)
	assert.Equal(t, []string{"convert", "--mode", "fast", "--scale", "0.333"}, cmd.Render())

	_, err = schema.New(ocm.Values{"mode": "medium", "scale": 1.0})
	require.Error(t, err)
	assert.True(t, ocm.IsBadParameter(err))
}

func TestDefinition_Build_FloatWithIntegerDefault(t *testing.T) {
	def := Definition{
		Exe: "scale",
		Params: []ParamDef{
			{Name: "rate", Option: "-r", Type: TypeFloat, Default: 1},
		},
	}

	schema, err := def.Build()
	require.NoError(t, err)

	cmd, err := schema.New(ocm.Values{})
	require.NoError(t, err)
	assert.Equal(t, []string{"scale", "-r", "1.00"}, cmd.Render())
}

func TestDefinition_Build_InferredTypeFromDefault(t *testing.T) {
	def := Definition{
		Exe: "retry",
		Params: []ParamDef{
			{Name: "attempts", Option: "-n", Default: 3},
		},
	}

	schema, err := def.Build()
	require.NoError(t, err)

	cmd, err := schema.New(ocm.Values{"attempts": "5"})
	require.NoError(t, err)
	assert.Equal(t, []string{"retry", "-n", "5"}, cmd.Render())
}

func TestDefinition_Build_MultipleArgument(t *testing.T) {
	def := Definition{
		Exe: "cat",
		Params: []ParamDef{
			{Name: "files", Multiple: true, Type: TypeString},
		},
	}

	schema, err := def.Build()
	require.NoError(t, err)

	cmd, err := schema.New(ocm.Values{"files": []string{"a.txt", "b.txt"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "a.txt", "b.txt"}, cmd.Render())
}
