package plan

import (
	"io"

	opentracing "github.com/opentracing/opentracing-go"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// InnerJoin is an inner join between two nodes. The condition is evaluated
// over the concatenation of the left and right rows.
type InnerJoin struct {
	BinaryNode
	Cond sql.Expression
}

var _ sql.Node = (*InnerJoin)(nil)
var _ sql.Expressioner = (*InnerJoin)(nil)

// NewInnerJoin creates a new inner join node from two tables.
func NewInnerJoin(left, right sql.Node, cond sql.Expression) *InnerJoin {
	return &InnerJoin{
		BinaryNode: BinaryNode{left: left, right: right},
		Cond:       cond,
	}
}

// Schema implements the Node interface.
func (j *InnerJoin) Schema() sql.Schema {
	left, right := j.left.Schema(), j.right.Schema()
	s := make(sql.Schema, 0, len(left)+len(right))
	return append(append(s, left...), right...)
}

// RowIter implements the Node interface.
func (j *InnerJoin) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.InnerJoin", opentracing.Tags{
		"left":  nodeName(j.left),
		"right": nodeName(j.right),
	})

	l, err := j.left.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, &innerJoinIter{
		l:    l,
		rp:   j.right,
		ctx:  ctx,
		cond: j.Cond,
	}), nil
}

// WithChildren implements the Node interface.
func (j *InnerJoin) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(children), 2)
	}

	return NewInnerJoin(children[0], children[1], j.Cond), nil
}

// Expressions implements the Expressioner interface.
func (j *InnerJoin) Expressions() []sql.Expression {
	return []sql.Expression{j.Cond}
}

// WithExpressions implements the Expressioner interface.
func (j *InnerJoin) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if err := checkExpressionNumber(j, len(exprs), 1); err != nil {
		return nil, err
	}

	return NewInnerJoin(j.left, j.right, exprs[0]), nil
}

func (j *InnerJoin) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("InnerJoin(%s)", j.Cond)
	pr.WriteChildren(j.left.String(), j.right.String())
	return pr.String()
}

func nodeName(n sql.Node) string {
	if t, ok := n.(sql.Nameable); ok {
		return t.Name()
	}
	return n.String()
}

// innerJoinIter joins every row of the left side with every row of the
// right side, which is loaded in memory the first time it's needed.
type innerJoinIter struct {
	l    sql.RowIter
	rp   sql.Node
	ctx  *sql.Context
	cond sql.Expression

	right    []sql.Row
	loaded   bool
	leftRow  sql.Row
	position int
}

func (i *innerJoinIter) loadRight() error {
	iter, err := i.rp.RowIter(i.ctx)
	if err != nil {
		return err
	}

	rows, err := sql.RowIterToRows(iter)
	if err != nil {
		return err
	}

	i.right = rows
	i.loaded = true
	return nil
}

func (i *innerJoinIter) Next() (sql.Row, error) {
	if !i.loaded {
		if err := i.loadRight(); err != nil {
			return nil, err
		}
	}

	for {
		if err := i.ctx.Err(); err != nil {
			return nil, err
		}

		if i.leftRow == nil || i.position >= len(i.right) {
			row, err := i.l.Next()
			if err != nil {
				return nil, err
			}
			i.leftRow = row
			i.position = 0
			if len(i.right) == 0 {
				return nil, io.EOF
			}
		}

		row := make(sql.Row, 0, len(i.leftRow)+len(i.right[i.position]))
		row = append(append(row, i.leftRow...), i.right[i.position]...)
		i.position++

		v, err := i.cond.Eval(i.ctx, row)
		if err != nil {
			return nil, err
		}

		if v == true {
			return row, nil
		}
	}
}

func (i *innerJoinIter) Close() error {
	return i.l.Close()
}
