package ocm

import (
	"sort"
)

// Schema is the captured definition of one external command: an ordered
// collection of fields plus the executable name and fixed sub-command
// tokens inserted after it.
//
// A schema is registered explicitly, once, at program initialization.
// Fields are ordered by parameter creation order, so declaration order is
// preserved no matter how the host enumerates them.
type Schema struct {
	name        string
	exe         string
	subCommands []string
	fields      []Field
	byName      map[string]Field
}

// DefineOpt configures a schema definition.
type DefineOpt func(*defineConfig)

type defineConfig struct {
	name        string
	subCommands []string
	fields      []Field
}

// WithName sets a display name for the schema. Defaults to the executable
// name.
func WithName(name string) DefineOpt {
	return func(c *defineConfig) { c.name = name }
}

// WithSubCommands sets the fixed tokens inserted after the executable and
// before any parameter tokens, e.g. "remote", "add" for `git remote add`.
func WithSubCommands(tokens ...string) DefineOpt {
	return func(c *defineConfig) { c.subCommands = append(c.subCommands, tokens...) }
}

// WithFields registers schema fields. May be repeated; the final field
// order is creation order, not registration order.
func WithFields(fields ...Field) DefineOpt {
	return func(c *defineConfig) { c.fields = append(c.fields, fields...) }
}

// Define registers a command schema.
//
// Definition-time problems are surfaced here: a missing executable name or
// a duplicate field name is a SCHEMA_ERROR, an empty option key or field
// name is a BAD_PARAMETER.
func Define(exe string, opts ...DefineOpt) (*Schema, error) {
	if exe == "" {
		return nil, schemaError("exe must be set")
	}

	cfg := defineConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Schema{
		name:        cfg.name,
		exe:         exe,
		subCommands: cfg.subCommands,
		fields:      append([]Field(nil), cfg.fields...),
		byName:      make(map[string]Field, len(cfg.fields)),
	}
	if s.name == "" {
		s.name = exe
	}
	if s.subCommands == nil {
		s.subCommands = []string{}
	}

	// Sort by creation order, never by registration or map order.
	sort.SliceStable(s.fields, func(i, j int) bool {
		return s.fields[i].Spec().order < s.fields[j].Spec().order
	})

	for _, f := range s.fields {
		spec := f.Spec()
		if spec.Name == "" {
			return nil, badParameter(spec.Name, "field name must be set")
		}
		if o, ok := f.(*Option); ok && o.Key == "" {
			return nil, badParameter(spec.Name, "invalid key %q", o.Key)
		}
		if _, dup := s.byName[spec.Name]; dup {
			return nil, schemaError("duplicate field name %s", spec.Name)
		}
		s.byName[spec.Name] = f
	}

	return s, nil
}

// MustDefine is Define, panicking on error. Intended for package-level
// schema variables.
func MustDefine(exe string, opts ...DefineOpt) *Schema {
	s, err := Define(exe, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema's display name.
func (s *Schema) Name() string { return s.name }

// Exe returns the executable name.
func (s *Schema) Exe() string { return s.exe }

// SubCommands returns a copy of the fixed sub-command tokens.
func (s *Schema) SubCommands() []string {
	return append([]string(nil), s.subCommands...)
}

// Fields returns the schema fields in declaration order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Field looks up a schema field by name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}
