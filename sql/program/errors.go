package program

import errors "gopkg.in/src-d/go-errors.v1"

// Violations of these kinds are programming errors in the code building a
// program. The builder panics with them, and the analyzer turns the panic
// into an error that aborts the compilation.
var (
	// ErrInputRefOutOfBounds is raised when an input reference points
	// outside of the input row.
	ErrInputRefOutOfBounds = errors.NewKind("in expression %s, input reference %s is out of bounds for %d fields")

	// ErrLocalRefOutOfBounds is raised when a local reference does not point
	// to a previously registered expression.
	ErrLocalRefOutOfBounds = errors.NewKind("in expression %s, local reference %s is out of bounds for %d expressions")

	// ErrInconsistentType is raised when the type of a reference is not the
	// type of what it references.
	ErrInconsistentType = errors.NewKind("in expression %s, reference %s has type %s, expected %s")

	// ErrProjectsNotEmpty is raised when identity projections are added to
	// a builder that already has projections.
	ErrProjectsNotEmpty = errors.NewKind("cannot add identity projections, there are already %d projections")

	// ErrProjectOutOfBounds is raised when a projection is inserted outside
	// of the current projections.
	ErrProjectOutOfBounds = errors.NewKind("cannot insert projection at %d, there are %d projections")

	// ErrConditionNotBoolean is raised when a condition is not a boolean.
	ErrConditionNotBoolean = errors.NewKind("condition %s has type %s, expected BOOLEAN")

	// ErrInvalidInput is raised when the first expressions of a program are
	// not the references to its input fields.
	ErrInvalidInput = errors.NewKind("expression %d of the program is %s, expected a reference to input field %d")

	// ErrDuplicateProjectName is raised when two projections have the same
	// name.
	ErrDuplicateProjectName = errors.NewKind("duplicate projection name %q")

	// ErrProjectCountMismatch is raised when the number of projections of a
	// program does not match the number of fields of its output.
	ErrProjectCountMismatch = errors.NewKind("program has %d projections but %d output fields")
)
