package function

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrFunctionNotFound is returned when no operator has the given name.
	ErrFunctionNotFound = errors.NewKind("function not found: %s")

	// ErrFunctionAlreadyRegistered is returned when an operator is
	// registered twice.
	ErrFunctionAlreadyRegistered = errors.NewKind("function %s is already registered")

	// ErrCannotInferType is returned when an operator cannot compute the
	// type of its calls, such as CAST, whose type is always explicit.
	ErrCannotInferType = errors.NewKind("the type of %s must be given explicitly")
)
