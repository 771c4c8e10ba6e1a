package plan

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/program"
)

// Calc computes a program over the rows of its child: rows that don't
// satisfy the condition of the program are skipped and the rest are
// replaced by the projections of the program.
type Calc struct {
	UnaryNode
	Program *program.Program
}

var _ sql.Node = (*Calc)(nil)

// NewCalc creates a new Calc node. The input schema of the program must
// match the schema of the child.
func NewCalc(p *program.Program, child sql.Node) *Calc {
	return &Calc{UnaryNode: UnaryNode{child}, Program: p}
}

// Schema implements the Node interface.
func (c *Calc) Schema() sql.Schema {
	return c.Program.OutputSchema()
}

// RowIter implements the Node interface.
func (c *Calc) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Calc")

	i, err := c.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, &calcIter{c.Program, i, ctx}), nil
}

// WithChildren implements the Node interface.
func (c *Calc) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 1)
	}

	return NewCalc(c.Program, children[0]), nil
}

func (c *Calc) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("Calc%s", c.Program)
	pr.WriteChildren(c.Child.String())
	return pr.String()
}

type calcIter struct {
	p         *program.Program
	childIter sql.RowIter
	ctx       *sql.Context
}

func (i *calcIter) Next() (sql.Row, error) {
	for {
		if err := i.ctx.Err(); err != nil {
			return nil, err
		}

		row, err := i.childIter.Next()
		if err != nil {
			return nil, err
		}

		out, pass, err := i.p.Eval(i.ctx, row)
		if err != nil {
			return nil, err
		}

		if pass {
			return out, nil
		}
	}
}

func (i *calcIter) Close() error {
	return i.childIter.Close()
}
