package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/roach88/ocm"
	"github.com/roach88/ocm/schemafile"
)

// loadSchema reads a definition file (.yaml/.yml/.cue) and builds its
// schema. CUE files may declare several commands; name selects one, and is
// required only when more than one is present.
func loadSchema(path, name string) (*ocm.Schema, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		def, err := schemafile.LoadYAML(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "loading definition", err)
		}
		effective := def.Name
		if effective == "" {
			effective = def.Exe
		}
		if name != "" && effective != name {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("definition %q not found in %s", name, path))
		}
		return build(def)
	case ".cue":
		defs, err := schemafile.LoadCUE(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "loading definition", err)
		}
		return pick(defs, name, path)
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unsupported definition format %q", filepath.Ext(path)))
	}
}

func pick(defs []*schemafile.Definition, name, path string) (*ocm.Schema, error) {
	if name == "" {
		if len(defs) > 1 {
			return nil, NewExitError(ExitCommandError,
				fmt.Sprintf("%s declares %d commands; select one with --name", path, len(defs)))
		}
		return build(defs[0])
	}
	for _, def := range defs {
		if def.Name == name {
			return build(def)
		}
	}
	return nil, NewExitError(ExitCommandError, fmt.Sprintf("definition %q not found in %s", name, path))
}

func build(def *schemafile.Definition) (*ocm.Schema, error) {
	schema, err := def.Build()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "building schema", err)
	}
	return schema, nil
}

// parseArgs decodes the --args JSON object into keyword values.
func parseArgs(raw string) (ocm.Values, error) {
	var vals map[string]any
	if err := json.Unmarshal([]byte(raw), &vals); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid --args JSON", err)
	}
	return ocm.Values(vals), nil
}
