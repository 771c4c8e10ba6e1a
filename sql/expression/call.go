package expression

import (
	"strings"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// Call is the application of an operator to a list of operands.
type Call struct {
	op       sql.Operator
	operands []sql.Expression
	typ      sql.Type
}

var _ sql.Expression = (*Call)(nil)

// NewCall applies the operator to the operands. The type of the call is
// inferred by the operator from the types of the operands.
func NewCall(op sql.Operator, operands ...sql.Expression) (*Call, error) {
	if err := sql.CheckArity(op, len(operands)); err != nil {
		return nil, err
	}

	types := make([]sql.Type, len(operands))
	for i, o := range operands {
		types[i] = o.Type()
	}

	typ, err := op.InferType(types)
	if err != nil {
		return nil, err
	}

	return NewCallWithType(op, typ, operands...), nil
}

// MustCall is the same as NewCall except it panics on errors.
func MustCall(op sql.Operator, operands ...sql.Expression) *Call {
	c, err := NewCall(op, operands...)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCallWithType applies the operator to the operands with an explicit
// result type, as casts do.
func NewCallWithType(op sql.Operator, typ sql.Type, operands ...sql.Expression) *Call {
	ops := make([]sql.Expression, len(operands))
	copy(ops, operands)
	return &Call{op: op, operands: ops, typ: typ}
}

// Operator returns the operator applied by the call.
func (c *Call) Operator() sql.Operator { return c.op }

// Operands returns the operands of the call.
func (c *Call) Operands() []sql.Expression { return c.Children() }

// Type implements the Expression interface.
func (c *Call) Type() sql.Type { return c.typ }

// IsNullable implements the Expression interface.
func (c *Call) IsNullable() bool { return c.typ.Nullable() }

// Children implements the Expression interface.
func (c *Call) Children() []sql.Expression {
	children := make([]sql.Expression, len(c.operands))
	copy(children, c.operands)
	return children
}

// WithChildren implements the Expression interface. The new call keeps the
// type of the current one.
func (c *Call) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(c.operands) {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), len(c.operands))
	}
	return NewCallWithType(c.op, c.typ, children...), nil
}

// Eval implements the Expression interface.
func (c *Call) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	switch c.op.Kind() {
	case sql.OpAnd:
		return c.evalLogic(ctx, row, false)
	case sql.OpOr:
		return c.evalLogic(ctx, row, true)
	}

	args := make([]interface{}, len(c.operands))
	for i, o := range c.operands {
		v, err := o.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	return c.op.Eval(ctx, c.typ, args)
}

// evalLogic evaluates AND and OR lazily, stopping at the first operand
// equal to stop. NULL operands make the result NULL unless stop is found.
func (c *Call) evalLogic(ctx *sql.Context, row sql.Row, stop bool) (interface{}, error) {
	var hasNull bool
	for _, o := range c.operands {
		v, err := o.Eval(ctx, row)
		if err != nil {
			return nil, err
		}

		if v == nil {
			hasNull = true
			continue
		}

		b, err := sql.Boolean.Convert(v)
		if err != nil {
			return nil, err
		}
		if b == stop {
			return stop, nil
		}
	}

	if hasNull {
		return nil, nil
	}
	return !stop, nil
}

func (c *Call) String() string {
	if c.op.Kind() == sql.OpCast {
		return "CAST(" + c.operands[0].String() + " AS " + c.typ.String() + ")"
	}

	operands := make([]string, len(c.operands))
	for i, o := range c.operands {
		operands[i] = o.String()
	}
	return c.op.Name() + "(" + strings.Join(operands, ", ") + ")"
}

// IsCall returns whether e is a call to an operator of the given kind.
func IsCall(e sql.Expression, kind sql.OperatorKind) bool {
	c, ok := e.(*Call)
	return ok && c.op.Kind() == kind
}

// IsCast returns whether e is a CAST.
func IsCast(e sql.Expression) bool {
	return IsCall(e, sql.OpCast)
}

// IsCastOfLiteral returns whether e is a CAST applied directly to a literal.
func IsCastOfLiteral(e sql.Expression) bool {
	if !IsCast(e) {
		return false
	}
	_, ok := e.(*Call).operands[0].(*Literal)
	return ok
}
