package ocm

import "reflect"

// Callback post-processes a converted value. It receives the converted
// value, the owning parameter, and the full keyword context; its return
// value replaces the converted value.
type Callback func(value any, param *Parameter, ctx Values) (any, error)

// Parameter describes a single named schema field. Option and Argument
// embed it; it is never a field on its own.
type Parameter struct {
	// Name is the keyword the field binds to, unique within a schema.
	Name string

	// Default is the value substituted when no value is supplied. It may
	// be a plain value or a zero-argument thunk (func() any), invoked at
	// conversion time.
	Default any

	// Type converts and renders values. Inferred from Default's runtime
	// kind when not set explicitly.
	Type ParamType

	// Required makes a missing value a BAD_PARAMETER error. Defaults to
	// "no default was given".
	Required bool

	// Multiple makes the field accept and produce a sequence of values.
	Multiple bool

	// Callback, if set, post-processes the converted value.
	Callback Callback

	// order is the global creation-order stamp. Strictly increasing
	// across the process lifetime; ties cannot occur.
	order uint64
}

// ParamOpt configures a Parameter at construction.
type ParamOpt func(*parameterConfig)

type parameterConfig struct {
	param       Parameter
	requiredSet bool
}

// WithDefault sets the default value. A func() any default is invoked
// lazily whenever the default is needed.
func WithDefault(v any) ParamOpt {
	return func(c *parameterConfig) { c.param.Default = v }
}

// WithType sets the ParamType explicitly, disabling inference.
func WithType(t ParamType) ParamOpt {
	return func(c *parameterConfig) { c.param.Type = t }
}

// WithRequired overrides the default requiredness.
func WithRequired(required bool) ParamOpt {
	return func(c *parameterConfig) {
		c.param.Required = required
		c.requiredSet = true
	}
}

// WithMultiple makes the field accept a sequence of values.
func WithMultiple() ParamOpt {
	return func(c *parameterConfig) { c.param.Multiple = true }
}

// WithCallback sets the post-conversion hook.
func WithCallback(fn Callback) ParamOpt {
	return func(c *parameterConfig) { c.param.Callback = fn }
}

// newParameter stamps the creation order and resolves requiredness and
// type inference once, at construction.
func newParameter(name string, opts ...ParamOpt) Parameter {
	cfg := parameterConfig{param: Parameter{Name: name, order: creationOrder.Next()}}
	for _, opt := range opts {
		opt(&cfg)
	}
	p := cfg.param
	if !cfg.requiredSet {
		p.Required = p.Default == nil
	}
	if p.Type == nil {
		p.Type = inferType(p.Default)
	}
	return p
}

// Field is a schema field: an Option or an Argument. The two shapes share
// the conversion pipeline and differ only in how they render argv tokens.
type Field interface {
	// Convert runs the full conversion pipeline for a raw keyword value:
	// type cast, default substitution, required check, callback.
	Convert(raw any, ctx Values) (any, error)

	// Show renders a converted value into argv tokens. An optional field
	// with a missing value renders zero tokens.
	Show(value any) []string

	// Spec returns the underlying parameter description.
	Spec() *Parameter
}

// defaultValue resolves the default, invoking a thunk if present.
func (p *Parameter) defaultValue() any {
	if fn, ok := p.Default.(func() any); ok {
		return fn()
	}
	return p.Default
}

// typeCast applies the ParamType. A multiple field coerces the raw value
// into a sequence (wrapping a scalar) and converts every element in order.
func (p *Parameter) typeCast(raw any, ctx Values) (any, error) {
	if raw == nil {
		if p.Multiple {
			return []any{}, nil
		}
		return nil, nil
	}
	if p.Multiple {
		elems := asSequence(raw)
		out := make([]any, 0, len(elems))
		for _, elem := range elems {
			v, err := p.Type.Convert(elem, p, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return p.Type.Convert(raw, p, ctx)
}

// missing reports whether a converted value counts as "no value supplied":
// nil, or an empty sequence for a multiple field.
func (p *Parameter) missing(v any) bool {
	if v == nil {
		return true
	}
	if p.Multiple {
		if s, ok := v.([]any); ok && len(s) == 0 {
			return true
		}
	}
	return false
}

// convert is the shared pipeline behind Field.Convert.
func (p *Parameter) convert(raw any, ctx Values) (any, error) {
	v, err := p.typeCast(raw, ctx)
	if err != nil {
		return nil, err
	}
	if p.missing(v) {
		v = p.defaultValue()
	}
	if p.Required && p.missing(v) {
		return nil, badParameter(p.Name, "required")
	}
	if p.Callback != nil {
		v, err = p.Callback(v, p, ctx)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Option is a schema field rendered with a leading key token, either as a
// flag (presence only) or as a key/value pair.
type Option struct {
	Parameter

	// Key is the flag token, e.g. "-l". Must be non-empty.
	Key string

	// Flag reduces the value to presence/absence: conversion bypasses
	// type, default and callback entirely and takes the raw truthiness.
	Flag bool
}

// NewOption declares an option field with the given key token and field
// name. The key must be non-empty; like MustDefine, NewOption is meant for
// package-level declarations and panics on an invalid key rather than
// deferring the check to first use.
func NewOption(key, name string, opts ...ParamOpt) *Option {
	if key == "" {
		panic(badParameter(name, "invalid key %q", key))
	}
	return &Option{Parameter: newParameter(name, opts...), Key: key}
}

// NewFlag declares a boolean presence option: truthy renders the key
// token, falsy renders nothing.
func NewFlag(key, name string, opts ...ParamOpt) *Option {
	o := NewOption(key, name, opts...)
	o.Flag = true
	return o
}

// Convert implements Field.
func (o *Option) Convert(raw any, ctx Values) (any, error) {
	if o.Flag {
		return truthy(raw), nil
	}
	return o.convert(raw, ctx)
}

// Show implements Field.
func (o *Option) Show(value any) []string {
	var tokens []string
	if !o.Required && o.missing(value) {
		return tokens
	}
	if o.Multiple {
		for _, elem := range asSequence(value) {
			if o.Flag {
				if truthy(elem) {
					tokens = append(tokens, o.Key)
				}
			} else {
				tokens = append(tokens, o.Key, o.Type.Show(elem))
			}
		}
		return tokens
	}
	if o.Flag {
		if truthy(value) {
			tokens = append(tokens, o.Key)
		}
		return tokens
	}
	return append(tokens, o.Key, o.Type.Show(value))
}

// Spec implements Field.
func (o *Option) Spec() *Parameter { return &o.Parameter }

// Argument is a positional schema field rendered as value tokens only,
// never with a key.
type Argument struct {
	Parameter
}

// NewArgument declares a positional field.
func NewArgument(name string, opts ...ParamOpt) *Argument {
	return &Argument{Parameter: newParameter(name, opts...)}
}

// Convert implements Field.
func (a *Argument) Convert(raw any, ctx Values) (any, error) {
	return a.convert(raw, ctx)
}

// Show implements Field.
func (a *Argument) Show(value any) []string {
	var tokens []string
	if !a.Required && a.missing(value) {
		return tokens
	}
	if a.Multiple {
		for _, elem := range asSequence(value) {
			tokens = append(tokens, a.Type.Show(elem))
		}
		return tokens
	}
	return append(tokens, a.Type.Show(value))
}

// Spec implements Field.
func (a *Argument) Spec() *Parameter { return &a.Parameter }

// asSequence coerces a value into a slice of elements, wrapping a scalar
// into a one-element sequence. []byte counts as a scalar, not a sequence
// of bytes.
func asSequence(v any) []any {
	if _, ok := v.([]byte); ok {
		return []any{v}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	default:
		return []any{v}
	}
}

// truthy reduces a value to flag presence: nil, false, zero numbers, empty
// strings and empty sequences are falsy; everything else is truthy.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case float32:
		return x != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	default:
		return true
	}
}
