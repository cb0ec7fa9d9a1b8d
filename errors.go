package ocm

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes OCM errors.
type ErrorCode string

const (
	// ErrCodeBadParameter indicates an invalid or missing value for a
	// schema field: wrong type, unmet choice constraint, or a required
	// field with no value and no default.
	ErrCodeBadParameter ErrorCode = "BAD_PARAMETER"

	// ErrCodeCommand indicates a structural problem with an invocation:
	// unknown keyword values at construction, a forbidden stream override,
	// a non-zero exit code, or a missing intermediate result.
	ErrCodeCommand ErrorCode = "COMMAND_ERROR"

	// ErrCodeSchema indicates a schema definition problem, such as a
	// missing executable name or a duplicate field name.
	ErrCodeSchema ErrorCode = "SCHEMA_ERROR"

	// ErrCodeExeNotFound indicates the executable could not be resolved
	// on the search path at invocation time.
	ErrCodeExeNotFound ErrorCode = "EXE_NOT_FOUND"
)

// Error is the single error type produced by this package.
//
// No error is swallowed or retried anywhere in OCM: every failure surfaces
// synchronously to the immediate caller, who decides whether to retry.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Param names the offending schema field, for BAD_PARAMETER errors.
	Param string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Param, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// IsBadParameter reports whether err is a parameter validation error.
// Uses errors.As to handle wrapped errors.
func IsBadParameter(err error) bool { return hasCode(err, ErrCodeBadParameter) }

// IsCommandError reports whether err is an invocation-structure error.
// Uses errors.As to handle wrapped errors.
func IsCommandError(err error) bool { return hasCode(err, ErrCodeCommand) }

// IsSchemaError reports whether err is a schema definition error.
// Uses errors.As to handle wrapped errors.
func IsSchemaError(err error) bool { return hasCode(err, ErrCodeSchema) }

// IsExeNotFound reports whether err means the executable was unresolvable.
// Uses errors.As to handle wrapped errors.
func IsExeNotFound(err error) bool { return hasCode(err, ErrCodeExeNotFound) }

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func badParameter(param, format string, args ...any) *Error {
	return &Error{Code: ErrCodeBadParameter, Param: param, Message: fmt.Sprintf(format, args...)}
}

func commandError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeCommand, Message: fmt.Sprintf(format, args...)}
}

func commandErrorWrap(err error, format string, args ...any) *Error {
	return &Error{Code: ErrCodeCommand, Message: fmt.Sprintf(format, args...), Err: err}
}

func schemaError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeSchema, Message: fmt.Sprintf(format, args...)}
}

func exeNotFound(exe string) *Error {
	return &Error{Code: ErrCodeExeNotFound, Message: fmt.Sprintf("%s not installed", exe)}
}
