package aat

import "fmt"

// ErrorCode categorizes build/validate failures for programmatic handling by
// the surrounding CLI. Every failure is a recoverable value; the core never
// panics on bad input.
type ErrorCode string

const (
	// SchemaError: a raw schema does not match the expected shape for its role.
	SchemaError ErrorCode = "SchemaError"
	// ConstraintError: a field's extracted constraints are self-contradictory.
	ConstraintError ErrorCode = "ConstraintError"
	// CollisionError: two structurally different types claim the same name.
	CollisionError ErrorCode = "CollisionError"
	// UnsupportedError: a spec construct is not representable in the AAT.
	UnsupportedError ErrorCode = "UnsupportedError"
	// PathParamError: a path parameter has a shape unusable in a URL segment.
	PathParamError ErrorCode = "PathParamError"
	// ReferenceError: a type reference does not resolve within the AAT.
	ReferenceError ErrorCode = "ReferenceError"
)

// Error is the structured failure value for build and validate.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Cause }

// Is matches two Errors by code so callers can branch with errors.Is on a
// bare &Error{Code: …} target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func errf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...) + ": " + cause.Error(), Cause: cause}
}
