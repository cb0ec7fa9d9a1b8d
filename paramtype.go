package ocm

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
)

// Values holds the keyword values a command instance is constructed from,
// keyed by schema field name. Callbacks receive the full map as context.
type Values map[string]any

// ParamType converts raw keyword values into typed values and renders
// typed values back into argv text.
//
// Implementations are stateless apart from configuration and safe to share
// across parameters.
type ParamType interface {
	// Convert produces the typed value for a raw input, or a BAD_PARAMETER
	// error naming the owning parameter.
	Convert(raw any, param *Parameter, ctx Values) (any, error)

	// Show renders a converted value as a single argv token.
	Show(value any) string
}

// StringType passes values through as text.
//
// Byte slices are decoded with Encoding; on decode failure, or when
// Encoding is nil, they are decoded as UTF-8 with invalid sequences
// replaced. Any other value is stringified with its default textual
// representation.
type StringType struct {
	// Encoding decodes []byte raw values. Nil means UTF-8.
	Encoding encoding.Encoding
}

// Convert implements ParamType.
func (t StringType) Convert(raw any, _ *Parameter, _ Values) (any, error) {
	switch v := raw.(type) {
	case []byte:
		return decodeText(v, t.Encoding), nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(raw), nil
	}
}

// Show implements ParamType.
func (t StringType) Show(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// IntType converts values via base-10 integer parsing.
type IntType struct{}

// Convert implements ParamType. The typed value is always int64.
func (IntType) Convert(raw any, param *Parameter, _ Values) (any, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, badParameter(param.Name, "invalid integer parameter value %v", raw)
		}
		return n, nil
	default:
		return nil, badParameter(param.Name, "invalid integer parameter value %v", raw)
	}
}

// Show implements ParamType.
func (IntType) Show(value any) string { return fmt.Sprint(value) }

// FloatType converts values via floating-point parsing and renders them
// with fixed decimal precision.
type FloatType struct {
	// Precision is the number of decimal places Show renders.
	Precision int
}

// defaultFloatPrecision matches the historical default of two decimals.
const defaultFloatPrecision = 2

// Convert implements ParamType. The typed value is always float64.
func (t FloatType) Convert(raw any, param *Parameter, _ Values) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, badParameter(param.Name, "invalid float parameter value %v", raw)
		}
		return f, nil
	default:
		return nil, badParameter(param.Name, "invalid float parameter value %v", raw)
	}
}

// Show implements ParamType. Any numeric value renders at fixed precision;
// defaults substitute without conversion, so an integer default must format
// the same way a converted float64 does.
func (t FloatType) Show(value any) string {
	f, ok := asFloat(value)
	if !ok {
		return fmt.Sprint(value)
	}
	return strconv.FormatFloat(f, 'f', t.Precision, 64)
}

// asFloat widens any numeric value to float64.
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

// ChoiceType restricts values to a fixed set.
type ChoiceType struct {
	Choices []string
}

// Choice builds a ChoiceType from the allowed values.
func Choice(choices ...string) ChoiceType {
	return ChoiceType{Choices: choices}
}

// Convert implements ParamType. Membership is checked against the textual
// form of the raw value, and that textual form is the typed value, so a
// raw 5 accepted by choices ["5"] is stored and rendered as "5".
func (t ChoiceType) Convert(raw any, param *Parameter, _ Values) (any, error) {
	s := fmt.Sprint(raw)
	if !slices.Contains(t.Choices, s) {
		return nil, badParameter(param.Name, "invalid value %v, should be one of %s",
			raw, strings.Join(t.Choices, ", "))
	}
	return s, nil
}

// Show implements ParamType.
func (ChoiceType) Show(value any) string { return fmt.Sprint(value) }

// defaultKind classifies a default value for type inference.
type defaultKind int

const (
	kindNone defaultKind = iota
	kindInt
	kindFloat
	kindString
	kindSequence
	kindThunk
	kindOther
)

// kindOf resolves the runtime kind of a default value.
func kindOf(v any) defaultKind {
	switch v.(type) {
	case nil:
		return kindNone
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kindInt
	case float32, float64:
		return kindFloat
	case string, []byte:
		return kindString
	case func() any:
		return kindThunk
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return kindSequence
	default:
		return kindOther
	}
}

// inferType picks a ParamType from a default value's runtime kind.
//
// Priority: integer (bools included) before float before string before
// sequence (recurse on the first element) before zero-argument thunk
// (invoke and recurse), falling through to StringType. Inference runs once,
// at parameter construction, never per conversion.
func inferType(def any) ParamType {
	switch kindOf(def) {
	case kindInt:
		return IntType{}
	case kindFloat:
		return FloatType{Precision: defaultFloatPrecision}
	case kindString:
		return StringType{}
	case kindSequence:
		if first, ok := firstElement(def); ok {
			return inferType(first)
		}
		return StringType{}
	case kindThunk:
		return inferType(def.(func() any)())
	default:
		return StringType{}
	}
}

// firstElement returns the first element of a slice or array value.
func firstElement(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() > 0 {
			return rv.Index(0).Interface(), true
		}
	}
	return nil, false
}
