package schemafile

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// CUE definitions live under a top-level "command" struct, one field per
// schema, labelled by name:
//
//	command: ls: {
//		exe: "ls"
//		params: [
//			{name: "long", option: "-l", flag: true},
//			{name: "path", default: "."},
//		]
//	}

// DefError is a definition problem with CUE position information.
type DefError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *DefError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// LoadCUE compiles a single CUE file and returns every command definition
// it declares, in declaration order.
func LoadCUE(path string) ([]*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compiling CUE: %w", err)
	}

	return extractDefinitions(value)
}

// LoadCUEDir loads a CUE package directory and returns every command
// definition it declares.
func LoadCUEDir(dir string) ([]*Definition, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("definitions directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}

	return extractDefinitions(value)
}

// extractDefinitions walks the top-level "command" struct.
func extractDefinitions(value cue.Value) ([]*Definition, error) {
	commands := value.LookupPath(cue.ParsePath("command"))
	if !commands.Exists() {
		return nil, &DefError{Field: "command", Message: "no command definitions found", Pos: value.Pos()}
	}

	iter, err := commands.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating commands: %w", err)
	}

	var defs []*Definition
	for iter.Next() {
		def, err := parseDefinition(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, &DefError{Field: "command", Message: "no command definitions found", Pos: commands.Pos()}
	}

	return defs, nil
}

// parseDefinition converts one command struct into a Definition.
func parseDefinition(label string, v cue.Value) (*Definition, error) {
	def := &Definition{Name: label}

	exeVal := v.LookupPath(cue.ParsePath("exe"))
	if !exeVal.Exists() {
		return nil, &DefError{Field: label + ".exe", Message: "exe is required", Pos: v.Pos()}
	}
	exe, err := exeVal.String()
	if err != nil {
		return nil, &DefError{Field: label + ".exe", Message: err.Error(), Pos: exeVal.Pos()}
	}
	def.Exe = exe

	if subVal := v.LookupPath(cue.ParsePath("sub_commands")); subVal.Exists() {
		subIter, err := subVal.List()
		if err != nil {
			return nil, &DefError{Field: label + ".sub_commands", Message: "must be a list", Pos: subVal.Pos()}
		}
		for subIter.Next() {
			tok, err := subIter.Value().String()
			if err != nil {
				return nil, &DefError{Field: label + ".sub_commands", Message: err.Error(), Pos: subIter.Value().Pos()}
			}
			def.SubCommands = append(def.SubCommands, tok)
		}
	}

	if paramsVal := v.LookupPath(cue.ParsePath("params")); paramsVal.Exists() {
		paramIter, err := paramsVal.List()
		if err != nil {
			return nil, &DefError{Field: label + ".params", Message: "must be a list", Pos: paramsVal.Pos()}
		}
		for i := 0; paramIter.Next(); i++ {
			param, err := parseParam(fmt.Sprintf("%s.params[%d]", label, i), paramIter.Value())
			if err != nil {
				return nil, err
			}
			def.Params = append(def.Params, param)
		}
	}

	if err := def.Validate(); err != nil {
		return nil, &DefError{Field: label, Message: err.Error(), Pos: v.Pos()}
	}

	return def, nil
}

// parseParam converts one params list element.
func parseParam(field string, v cue.Value) (ParamDef, error) {
	var p ParamDef

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return p, &DefError{Field: field + ".name", Message: "name is required", Pos: v.Pos()}
	}
	name, err := nameVal.String()
	if err != nil {
		return p, &DefError{Field: field + ".name", Message: err.Error(), Pos: nameVal.Pos()}
	}
	p.Name = name

	if optVal := v.LookupPath(cue.ParsePath("option")); optVal.Exists() {
		if p.Option, err = optVal.String(); err != nil {
			return p, &DefError{Field: field + ".option", Message: err.Error(), Pos: optVal.Pos()}
		}
	}
	if flagVal := v.LookupPath(cue.ParsePath("flag")); flagVal.Exists() {
		if p.Flag, err = flagVal.Bool(); err != nil {
			return p, &DefError{Field: field + ".flag", Message: err.Error(), Pos: flagVal.Pos()}
		}
	}
	if typeVal := v.LookupPath(cue.ParsePath("type")); typeVal.Exists() {
		if p.Type, err = typeVal.String(); err != nil {
			return p, &DefError{Field: field + ".type", Message: err.Error(), Pos: typeVal.Pos()}
		}
	}
	if defVal := v.LookupPath(cue.ParsePath("default")); defVal.Exists() {
		var def any
		if err := defVal.Decode(&def); err != nil {
			return p, &DefError{Field: field + ".default", Message: err.Error(), Pos: defVal.Pos()}
		}
		p.Default = def
	}
	if reqVal := v.LookupPath(cue.ParsePath("required")); reqVal.Exists() {
		required, err := reqVal.Bool()
		if err != nil {
			return p, &DefError{Field: field + ".required", Message: err.Error(), Pos: reqVal.Pos()}
		}
		p.Required = &required
	}
	if multiVal := v.LookupPath(cue.ParsePath("multiple")); multiVal.Exists() {
		if p.Multiple, err = multiVal.Bool(); err != nil {
			return p, &DefError{Field: field + ".multiple", Message: err.Error(), Pos: multiVal.Pos()}
		}
	}
	if choicesVal := v.LookupPath(cue.ParsePath("choices")); choicesVal.Exists() {
		choiceIter, err := choicesVal.List()
		if err != nil {
			return p, &DefError{Field: field + ".choices", Message: "must be a list", Pos: choicesVal.Pos()}
		}
		for choiceIter.Next() {
			choice, err := choiceIter.Value().String()
			if err != nil {
				return p, &DefError{Field: field + ".choices", Message: err.Error(), Pos: choiceIter.Value().Pos()}
			}
			p.Choices = append(p.Choices, choice)
		}
	}
	if precVal := v.LookupPath(cue.ParsePath("precision")); precVal.Exists() {
		prec, err := precVal.Int64()
		if err != nil {
			return p, &DefError{Field: field + ".precision", Message: err.Error(), Pos: precVal.Pos()}
		}
		precision := int(prec)
		p.Precision = &precision
	}

	return p, nil
}
