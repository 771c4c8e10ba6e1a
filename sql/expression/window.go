package expression

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// Unbounded is the bound of a window frame extending to the edge of its
// partition.
const Unbounded = -1

// WindowFrame is the set of rows around the current one an aggregate is
// computed over, as ROWS BETWEEN Preceding PRECEDING AND Following
// FOLLOWING.
type WindowFrame struct {
	Preceding int
	Following int
}

func (f WindowFrame) String() string {
	bound := func(n int, dir string) string {
		switch n {
		case Unbounded:
			return "UNBOUNDED " + dir
		case 0:
			return "CURRENT ROW"
		}
		return fmt.Sprintf("%d %s", n, dir)
	}
	return "ROWS BETWEEN " + bound(f.Preceding, "PRECEDING") + " AND " + bound(f.Following, "FOLLOWING")
}

// Over is an aggregate computed over a window of rows.
type Over struct {
	op          sql.Operator
	operands    []sql.Expression
	partitionBy []sql.Expression
	orderBy     []sql.Expression
	frame       WindowFrame
	typ         sql.Type
}

var _ sql.Expression = (*Over)(nil)

// NewOver creates a windowed aggregate.
func NewOver(
	op sql.Operator,
	operands []sql.Expression,
	partitionBy []sql.Expression,
	orderBy []sql.Expression,
	frame WindowFrame,
) (*Over, error) {
	if op.Kind() != sql.OpAggregate {
		return nil, ErrNotAggregate.New(op.Name())
	}

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

	return &Over{
		op:          op,
		operands:    copyExprs(operands),
		partitionBy: copyExprs(partitionBy),
		orderBy:     copyExprs(orderBy),
		frame:       frame,
		typ:         typ,
	}, nil
}

// Operator returns the aggregate.
func (o *Over) Operator() sql.Operator { return o.op }

// Operands returns the aggregated expressions.
func (o *Over) Operands() []sql.Expression { return copyExprs(o.operands) }

// PartitionBy returns the expressions the rows are partitioned by.
func (o *Over) PartitionBy() []sql.Expression { return copyExprs(o.partitionBy) }

// OrderBy returns the expressions the rows are sorted by.
func (o *Over) OrderBy() []sql.Expression { return copyExprs(o.orderBy) }

// Frame returns the window frame.
func (o *Over) Frame() WindowFrame { return o.frame }

// Type implements the Expression interface.
func (o *Over) Type() sql.Type { return o.typ }

// IsNullable implements the Expression interface.
func (o *Over) IsNullable() bool { return o.typ.Nullable() }

// Children implements the Expression interface. Operands come first,
// followed by the partition and the order expressions.
func (o *Over) Children() []sql.Expression {
	children := make([]sql.Expression, 0, len(o.operands)+len(o.partitionBy)+len(o.orderBy))
	children = append(children, o.operands...)
	children = append(children, o.partitionBy...)
	return append(children, o.orderBy...)
}

// WithChildren implements the Expression interface.
func (o *Over) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	n, p := len(o.operands), len(o.partitionBy)
	if len(children) != n+p+len(o.orderBy) {
		return nil, sql.ErrInvalidChildrenNumber.New(o, len(children), n+p+len(o.orderBy))
	}

	no := *o
	no.operands = copyExprs(children[:n])
	no.partitionBy = copyExprs(children[n : n+p])
	no.orderBy = copyExprs(children[n+p:])
	return &no, nil
}

// Eval implements the Expression interface. A windowed aggregate depends on
// other rows, so it cannot be computed from a single one.
func (o *Over) Eval(*sql.Context, sql.Row) (interface{}, error) {
	return nil, sql.ErrNotEvaluable.New(o)
}

func (o *Over) String() string {
	var b strings.Builder
	b.WriteString(o.op.Name())
	b.WriteString("(")
	b.WriteString(joinExprs(o.operands))
	b.WriteString(") OVER (")
	if len(o.partitionBy) > 0 {
		b.WriteString("PARTITION BY ")
		b.WriteString(joinExprs(o.partitionBy))
		b.WriteString(" ")
	}
	if len(o.orderBy) > 0 {
		b.WriteString("ORDER BY ")
		b.WriteString(joinExprs(o.orderBy))
		b.WriteString(" ")
	}
	b.WriteString(o.frame.String())
	b.WriteString(")")
	return b.String()
}

func copyExprs(exprs []sql.Expression) []sql.Expression {
	if exprs == nil {
		return nil
	}
	result := make([]sql.Expression, len(exprs))
	copy(result, exprs)
	return result
}

func joinExprs(exprs []sql.Expression) string {
	strs := make([]string, len(exprs))
	for i, e := range exprs {
		strs[i] = e.String()
	}
	return strings.Join(strs, ", ")
}
