package sql

import (
	"fmt"
	"io"
)

// Nameable is something that has a name.
type Nameable interface {
	// Name returns the name.
	Name() string
}

// Expression is a scalar expression node. Expressions are immutable: every
// transformation returns a new expression.
type Expression interface {
	fmt.Stringer
	// Type returns the semantic type of the expression, nullability included.
	Type() Type
	// IsNullable returns whether the expression can be NULL.
	IsNullable() bool
	// Eval evaluates the given row and returns a result.
	Eval(*Context, Row) (interface{}, error)
	// Children returns the children expressions of this expression.
	Children() []Expression
	// WithChildren returns a copy of the expression with children replaced.
	// It will return an error if the number of children is different than
	// the current number of children. They must be given in the same order
	// as they are returned by Children.
	WithChildren(...Expression) (Expression, error)
}

// OperatorKind identifies operators the compiler needs to recognize by
// identity rather than through their metadata.
type OperatorKind byte

const (
	// OpOther is any operator without special meaning to the compiler.
	OpOther OperatorKind = iota
	// OpCast converts its only operand to the type of the call.
	OpCast
	// OpRow constructs a row value out of its operands.
	OpRow
	// OpAnd is the boolean conjunction.
	OpAnd
	// OpOr is the boolean disjunction.
	OpOr
	// OpNot is the boolean negation.
	OpNot
	// OpIsNull tests its operand for NULL.
	OpIsNull
	// OpIsNotNull tests its operand for non NULL.
	OpIsNotNull
	// OpAggregate is an aggregate function usable in a window.
	OpAggregate
)

// Operator describes a function or operator applied by a call expression.
type Operator interface {
	Nameable
	// Kind returns the identity of the operator for the operators the
	// compiler treats specially.
	Kind() OperatorKind
	// IsDeterministic reports whether the operator always returns the same
	// result for the same operands.
	IsDeterministic() bool
	// IsDynamic reports whether the result depends on the time or the
	// session the statement runs in. Dynamic operators may be folded, but the
	// resulting plan must not be cached.
	IsDynamic() bool
	// IsUserDefined reports whether the operator is a user-defined routine,
	// whose arguments require exact static typing.
	IsUserDefined() bool
	// Arity returns the minimum and maximum number of operands. A negative
	// maximum means the operator is variadic.
	Arity() (min, max int)
	// InferType returns the type of a call to the operator with operands of
	// the given types.
	InferType(operands []Type) (Type, error)
	// Eval applies the operator to already evaluated operands. The result
	// must be a value of type t.
	Eval(ctx *Context, t Type, args []interface{}) (interface{}, error)
}

// CheckArity returns an error if n operands are not valid for the operator.
func CheckArity(op Operator, n int) error {
	min, max := op.Arity()
	if n < min || (max >= 0 && n > max) {
		return ErrInvalidOperandCount.New(op.Name(), n)
	}
	return nil
}

// Row is a tuple of values.
type Row []interface{}

// NewRow creates a row from the given values.
func NewRow(values ...interface{}) Row {
	row := make([]interface{}, len(values))
	copy(row, values)
	return row
}

// Copy creates a new row with the same values as the current one.
func (r Row) Copy() Row {
	return NewRow(r...)
}

// RowIter is an iterator that produces rows.
type RowIter interface {
	// Next retrieves the next row. It will return io.EOF if it's the last row.
	// After retrieving the last row, Close will be automatically closed.
	Next() (Row, error)
	// Close the iterator.
	Close() error
}

// RowIterToRows converts a row iterator to a slice of rows.
func RowIterToRows(i RowIter) ([]Row, error) {
	var rows []Row
	for {
		row, err := i.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			_ = i.Close()
			return nil, err
		}

		rows = append(rows, row)
	}

	return rows, i.Close()
}

// Node is a node in the execution plan tree.
type Node interface {
	fmt.Stringer
	// Schema of the node.
	Schema() Schema
	// Children nodes.
	Children() []Node
	// WithChildren returns a copy of the node with children replaced.
	// It will return an error if the number of children is different than
	// the current number of children. They must be given in the same order
	// as they are returned by Children.
	WithChildren(...Node) (Node, error)
	// RowIter produces a row iterator from this node.
	RowIter(*Context) (RowIter, error)
}

// Expressioner is a node that contains expressions.
type Expressioner interface {
	// Expressions returns the list of expressions contained by the node.
	Expressions() []Expression
	// WithExpressions returns a copy of the node with expressions replaced.
	WithExpressions(...Expression) (Node, error)
}
