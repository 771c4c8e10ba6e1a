package rowexec

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrEvaluation is returned when constant expressions could not be
	// evaluated during the compilation of a query.
	ErrEvaluation = errors.NewKind("unable to evaluate %d constant expressions")

	// ErrPanic is the cause of an evaluation that panicked with something
	// that is not an error.
	ErrPanic = errors.NewKind("evaluation panicked: %v")

	// ErrUnexpectedResult is returned when the evaluation of a single row
	// does not produce exactly one row of the expected length.
	ErrUnexpectedResult = errors.NewKind("expected a single row of %d values, got %s")
)
