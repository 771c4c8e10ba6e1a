package sql

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrInvalidType is thrown when there is an unexpected type at some part of
	// the execution tree.
	ErrInvalidType = errors.NewKind("invalid type: %s")

	// ErrInvalidChildrenNumber is returned when the WithChildren method of a
	// node or expression is called with an invalid number of arguments.
	ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")

	// ErrInvalidExpressionNumber is returned when the WithExpressions method of
	// a node is called with an invalid number of arguments.
	ErrInvalidExpressionNumber = errors.NewKind("%T: invalid expression number, got %d, expected %d")

	// ErrInvalidOperandCount is returned when an operator is applied to a
	// number of operands it does not accept.
	ErrInvalidOperandCount = errors.NewKind("operator %s does not accept %d operands")

	// ErrInvalidOperandType is returned when an operator is applied to
	// operands of a type it does not accept.
	ErrInvalidOperandType = errors.NewKind("operator %s cannot be applied to %s")

	// ErrInvalidCast is returned when a value or type cannot be cast to
	// another type.
	ErrInvalidCast = errors.NewKind("cannot cast %s to %s")

	// ErrValueOutOfRange is returned when a value does not fit in its type.
	ErrValueOutOfRange = errors.NewKind("value %v is out of range for %s")

	// ErrDivisionByZero is returned when a number is divided by zero.
	ErrDivisionByZero = errors.NewKind("division by zero")

	// ErrFieldNotFound is returned when a field cannot be found in a row type.
	ErrFieldNotFound = errors.NewKind("field %q not found in %s")

	// ErrUnexpectedRowLength is thrown when the obtained row has more columns than the schema
	ErrUnexpectedRowLength = errors.NewKind("expected %d values, got %d")

	// ErrInvalidDecimal is returned when a decimal type is created with an
	// invalid precision or scale.
	ErrInvalidDecimal = errors.NewKind("invalid DECIMAL(%d, %d)")

	// ErrInvalidStringLength is returned when a string type is created with
	// an invalid length.
	ErrInvalidStringLength = errors.NewKind("invalid length %d for %s")

	// ErrTableNotFound is returned when the table is not available from the
	// current scope.
	ErrTableNotFound = errors.NewKind("table not found: %s")

	// ErrTableAlreadyExists is thrown when someone tries to create a
	// table with a name of an existing one
	ErrTableAlreadyExists = errors.NewKind("table with name %s already exists")

	// ErrColumnNotFound is returned when the column does not exist in any
	// table in scope.
	ErrColumnNotFound = errors.NewKind("column %q could not be found in any table in scope")

	// ErrNotEvaluable is returned when an expression can only be computed by
	// a specialized operator and not row by row.
	ErrNotEvaluable = errors.NewKind("expression %s cannot be evaluated row by row")
)
