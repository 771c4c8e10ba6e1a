package plan

import (
	"strconv"
	"strings"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
)

// Project is a projection of certain expression from the children node.
type Project struct {
	UnaryNode
	// Projections are the expressions projected.
	Projections []sql.Expression
	// Names are the names of the projected columns.
	Names []string
}

var _ sql.Node = (*Project)(nil)
var _ sql.Expressioner = (*Project)(nil)

// NewProject creates a new projection. Projections without a name are
// named after the column they reference, or "EXPR$i" otherwise.
func NewProject(projections []sql.Expression, names []string, child sql.Node) *Project {
	childSchema := child.Schema()
	ns := make([]string, len(projections))
	for i, e := range projections {
		if i < len(names) && names[i] != "" {
			ns[i] = names[i]
		} else if ref, ok := e.(*expression.InputRef); ok && ref.Index() < len(childSchema) {
			ns[i] = childSchema[ref.Index()].Name
		} else {
			ns[i] = "EXPR$" + strconv.Itoa(i)
		}
	}

	return &Project{
		UnaryNode:   UnaryNode{child},
		Projections: projections,
		Names:       ns,
	}
}

// Schema implements the Node interface.
func (p *Project) Schema() sql.Schema {
	s := make(sql.Schema, len(p.Projections))
	for i, e := range p.Projections {
		s[i] = &sql.Column{Name: p.Names[i], Type: e.Type()}
	}
	return s
}

// RowIter implements the Node interface.
func (p *Project) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Project")

	i, err := p.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, &projectIter{p, i, ctx}), nil
}

// WithChildren implements the Node interface.
func (p *Project) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 1)
	}

	return NewProject(p.Projections, p.Names, children[0]), nil
}

// Expressions implements the Expressioner interface.
func (p *Project) Expressions() []sql.Expression {
	return p.Projections
}

// WithExpressions implements the Expressioner interface.
func (p *Project) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if err := checkExpressionNumber(p, len(exprs), len(p.Projections)); err != nil {
		return nil, err
	}

	return NewProject(exprs, p.Names, p.Child), nil
}

func (p *Project) String() string {
	pr := sql.NewTreePrinter()
	var exprs = make([]string, len(p.Projections))
	for i, expr := range p.Projections {
		exprs[i] = expr.String() + " AS " + p.Names[i]
	}
	pr.WriteNode("Project(%s)", strings.Join(exprs, ", "))
	pr.WriteChildren(p.Child.String())
	return pr.String()
}

type projectIter struct {
	p         *Project
	childIter sql.RowIter
	ctx       *sql.Context
}

func (i *projectIter) Next() (sql.Row, error) {
	if err := i.ctx.Err(); err != nil {
		return nil, err
	}

	childRow, err := i.childIter.Next()
	if err != nil {
		return nil, err
	}

	return ProjectRow(i.ctx, i.p.Projections, childRow)
}

func (i *projectIter) Close() error {
	return i.childIter.Close()
}

// ProjectRow evaluates a set of projections against a row.
func ProjectRow(
	ctx *sql.Context,
	projections []sql.Expression,
	row sql.Row,
) (sql.Row, error) {
	fields := make(sql.Row, len(projections))
	for i, expr := range projections {
		f, err := expr.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}
