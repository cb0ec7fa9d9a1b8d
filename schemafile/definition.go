// Package schemafile loads declarative command schema definitions.
//
// A definition names an executable, optional fixed sub-command tokens, and
// an ordered list of parameters, and builds into an *ocm.Schema. Two
// source formats are supported: YAML files (strict decoding, unknown
// fields rejected) and CUE files or directories.
package schemafile

import (
	"fmt"

	"github.com/roach88/ocm"
)

// Parameter type names accepted in definitions.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeChoice = "choice"
)

// Definition is a declarative command schema.
type Definition struct {
	// Name identifies the schema. Defaults to Exe.
	Name string `yaml:"name,omitempty"`

	// Exe is the program name. Required.
	Exe string `yaml:"exe"`

	// SubCommands are fixed tokens inserted after Exe, before any
	// parameter tokens.
	SubCommands []string `yaml:"sub_commands,omitempty"`

	// Params lists the schema fields in declaration order.
	Params []ParamDef `yaml:"params,omitempty"`
}

// ParamDef is one declared parameter. An empty Option means a positional
// argument.
type ParamDef struct {
	// Name is the keyword the field binds to. Required.
	Name string `yaml:"name"`

	// Option is the flag token (e.g. "-l"). Empty means positional.
	Option string `yaml:"option,omitempty"`

	// Flag renders presence only: the key token when truthy, nothing
	// otherwise. Only valid together with Option.
	Flag bool `yaml:"flag,omitempty"`

	// Type is one of string, int, float, choice. Empty means inferred
	// from Default.
	Type string `yaml:"type,omitempty"`

	// Default is substituted when no value is supplied.
	Default any `yaml:"default,omitempty"`

	// Required overrides the "no default given" rule.
	Required *bool `yaml:"required,omitempty"`

	// Multiple makes the field accept a sequence of values.
	Multiple bool `yaml:"multiple,omitempty"`

	// Choices is the allowed set for type choice.
	Choices []string `yaml:"choices,omitempty"`

	// Precision is the decimal precision for type float. Defaults to 2.
	Precision *int `yaml:"precision,omitempty"`
}

// Validate checks that required fields are present and consistent.
func (d *Definition) Validate() error {
	if d.Exe == "" {
		return fmt.Errorf("exe is required")
	}

	seen := make(map[string]bool, len(d.Params))
	for i, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("params[%d]: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("params[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true

		if p.Flag && p.Option == "" {
			return fmt.Errorf("params[%d]: flag requires option", i)
		}
		switch p.Type {
		case "", TypeString, TypeInt, TypeFloat, TypeChoice:
		default:
			return fmt.Errorf("params[%d]: unknown type %q", i, p.Type)
		}
		if p.Type == TypeChoice && len(p.Choices) == 0 {
			return fmt.Errorf("params[%d]: type choice requires choices", i)
		}
		if len(p.Choices) > 0 && p.Type != TypeChoice {
			return fmt.Errorf("params[%d]: choices requires type choice", i)
		}
		if p.Precision != nil && p.Type != TypeFloat {
			return fmt.Errorf("params[%d]: precision requires type float", i)
		}
	}

	return nil
}

// Build registers the definition as an ocm.Schema. Parameter order in the
// definition becomes schema field order.
func (d *Definition) Build() (*ocm.Schema, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	fields := make([]ocm.Field, 0, len(d.Params))
	for _, p := range d.Params {
		fields = append(fields, p.build())
	}

	name := d.Name
	if name == "" {
		name = d.Exe
	}

	return ocm.Define(d.Exe,
		ocm.WithName(name),
		ocm.WithSubCommands(d.SubCommands...),
		ocm.WithFields(fields...),
	)
}

// build maps one ParamDef onto an ocm field.
func (p *ParamDef) build() ocm.Field {
	var opts []ocm.ParamOpt
	if t := p.paramType(); t != nil {
		opts = append(opts, ocm.WithType(t))
	}
	if p.Default != nil {
		opts = append(opts, ocm.WithDefault(p.Default))
	}
	if p.Required != nil {
		opts = append(opts, ocm.WithRequired(*p.Required))
	}
	if p.Multiple {
		opts = append(opts, ocm.WithMultiple())
	}

	switch {
	case p.Option != "" && p.Flag:
		return ocm.NewFlag(p.Option, p.Name, opts...)
	case p.Option != "":
		return ocm.NewOption(p.Option, p.Name, opts...)
	default:
		return ocm.NewArgument(p.Name, opts...)
	}
}

// paramType resolves the declared type name, or nil when inference from
// the default should apply.
func (p *ParamDef) paramType() ocm.ParamType {
	switch p.Type {
	case TypeString:
		return ocm.StringType{}
	case TypeInt:
		return ocm.IntType{}
	case TypeFloat:
		precision := 2
		if p.Precision != nil {
			precision = *p.Precision
		}
		return ocm.FloatType{Precision: precision}
	case TypeChoice:
		return ocm.Choice(p.Choices...)
	default:
		return nil
	}
}
