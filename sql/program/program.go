package program

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/transform"
)

// NamedRef is a named projection of a program.
type NamedRef struct {
	Ref  *expression.LocalRef
	Name string
}

// Program is a list of expressions computed over an input row, where each
// expression can only reference input fields and the expressions before
// it, plus a list of named projections and an optional condition over those
// expressions. The first expressions of a program are always references to
// each of the input fields, in order.
//
// Programs are immutable and are created with a Builder.
type Program struct {
	inputSchema  sql.Schema
	exprs        []sql.Expression
	projects     []NamedRef
	condition    *expression.LocalRef
	outputSchema sql.Schema
}

// InputSchema returns the schema of the rows the program reads.
func (p *Program) InputSchema() sql.Schema { return p.inputSchema }

// OutputSchema returns the schema of the rows the program produces.
func (p *Program) OutputSchema() sql.Schema { return p.outputSchema }

// Exprs returns the expressions of the program.
func (p *Program) Exprs() []sql.Expression {
	exprs := make([]sql.Expression, len(p.exprs))
	copy(exprs, p.exprs)
	return exprs
}

// Projects returns the projections of the program.
func (p *Program) Projects() []NamedRef {
	projects := make([]NamedRef, len(p.projects))
	copy(projects, p.projects)
	return projects
}

// Condition returns the reference to the condition of the program, or nil
// if it has none.
func (p *Program) Condition() *expression.LocalRef { return p.condition }

// ExpandLocalRef returns the expression referenced, with all the local
// references it contains replaced by the expressions they reference. The
// result only references input fields.
func (p *Program) ExpandLocalRef(ref *expression.LocalRef) sql.Expression {
	e, _, err := transform.Expr(p.exprs[ref.Index()], func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		if r, ok := e.(*expression.LocalRef); ok {
			return p.ExpandLocalRef(r), transform.NewTree, nil
		}
		return e, transform.SameTree, nil
	})
	if err != nil {
		panic(err)
	}
	return e
}

// ExpandedProjects returns the expressions of the projections, expanded.
func (p *Program) ExpandedProjects() []sql.Expression {
	exprs := make([]sql.Expression, len(p.projects))
	for i, project := range p.projects {
		exprs[i] = p.ExpandLocalRef(project.Ref)
	}
	return exprs
}

// ExpandedCondition returns the condition, expanded, or nil if there is no
// condition.
func (p *Program) ExpandedCondition() sql.Expression {
	if p.condition == nil {
		return nil
	}
	return p.ExpandLocalRef(p.condition)
}

// ProjectsOnlyIdentity returns whether the projections are exactly the
// input fields in order.
func (p *Program) ProjectsOnlyIdentity() bool {
	if len(p.projects) != len(p.inputSchema) {
		return false
	}
	for i, project := range p.projects {
		if project.Ref.Index() != i {
			return false
		}
	}
	return true
}

// IsTrivial returns whether the program returns its input rows untouched.
func (p *Program) IsTrivial() bool {
	return p.condition == nil && p.ProjectsOnlyIdentity()
}

// Validate checks the invariants of the program.
func (p *Program) Validate() error {
	if len(p.exprs) < len(p.inputSchema) {
		return ErrInvalidInput.New(len(p.exprs), "missing", len(p.exprs))
	}

	for i, col := range p.inputSchema {
		ref, ok := p.exprs[i].(*expression.InputRef)
		if !ok || ref.Index() != i {
			return ErrInvalidInput.New(i, p.exprs[i], i)
		}
		if !ref.Type().Equals(col.Type) {
			return ErrInconsistentType.New(ref, ref, ref.Type(), col.Type)
		}
	}

	for j := len(p.inputSchema); j < len(p.exprs); j++ {
		if err := p.validateExpr(p.exprs[j], j); err != nil {
			return err
		}
	}

	if len(p.projects) != len(p.outputSchema) {
		return ErrProjectCountMismatch.New(len(p.projects), len(p.outputSchema))
	}

	names := make(map[string]bool, len(p.projects))
	for _, project := range p.projects {
		if err := p.validateRef(project.Ref, project.Ref, len(p.exprs)); err != nil {
			return err
		}
		if names[project.Name] {
			return ErrDuplicateProjectName.New(project.Name)
		}
		names[project.Name] = true
	}

	if p.condition != nil {
		if err := p.validateRef(p.condition, p.condition, len(p.exprs)); err != nil {
			return err
		}
		if p.condition.Type().Kind() != sql.KindBoolean {
			return ErrConditionNotBoolean.New(p.condition, p.condition.Type())
		}
	}

	return nil
}

// validateExpr checks the references of the expression at position j.
func (p *Program) validateExpr(e sql.Expression, j int) error {
	var err error
	expression.Inspect(e, func(node sql.Expression) bool {
		if err != nil {
			return false
		}

		switch node := node.(type) {
		case *expression.InputRef:
			if node.Index() < 0 || node.Index() >= len(p.inputSchema) {
				err = ErrInputRefOutOfBounds.New(e, node, len(p.inputSchema))
			} else if expected := p.inputSchema[node.Index()].Type; !expected.Equals(node.Type()) {
				err = ErrInconsistentType.New(e, node, node.Type(), expected)
			}
		case *expression.LocalRef:
			err = p.validateRef(e, node, j)
		}
		return err == nil
	})
	return err
}

// validateRef checks the reference points to one of the first n
// expressions and has its type.
func (p *Program) validateRef(e sql.Expression, ref *expression.LocalRef, n int) error {
	if ref.Index() < 0 || ref.Index() >= n {
		return ErrLocalRefOutOfBounds.New(e, ref, n)
	}
	if expected := p.exprs[ref.Index()].Type(); !expected.Equals(ref.Type()) {
		return ErrInconsistentType.New(e, ref, ref.Type(), expected)
	}
	return nil
}

// Eval runs the program over the given row. It returns whether the row
// satisfies the condition and, if it does, the projected row. Projections
// are not computed for rows that do not satisfy the condition.
func (p *Program) Eval(ctx *sql.Context, row sql.Row) (sql.Row, bool, error) {
	if len(row) != len(p.inputSchema) {
		return nil, false, sql.ErrUnexpectedRowLength.New(len(p.inputSchema), len(row))
	}

	frame := make(sql.Row, len(p.exprs))
	copy(frame, row)
	computed := make([]bool, len(p.exprs))
	for i := range row {
		computed[i] = true
	}

	if p.condition != nil {
		if err := p.compute(ctx, frame, computed, p.condition.Index()); err != nil {
			return nil, false, err
		}
		if frame[p.condition.Index()] != true {
			return nil, false, nil
		}
	}

	out := make(sql.Row, len(p.projects))
	for i, project := range p.projects {
		if err := p.compute(ctx, frame, computed, project.Ref.Index()); err != nil {
			return nil, false, err
		}
		out[i] = frame[project.Ref.Index()]
	}

	return out, true, nil
}

// compute evaluates the expression at index and the ones it depends on,
// storing their values in the frame. Operands of AND and OR are only
// computed until the result is known.
func (p *Program) compute(ctx *sql.Context, frame sql.Row, computed []bool, index int) error {
	if computed[index] {
		return nil
	}

	var v interface{}
	var err error
	switch e := p.exprs[index]; {
	case expression.IsCall(e, sql.OpAnd):
		v, err = p.computeLogic(ctx, frame, computed, e.Children(), false)
	case expression.IsCall(e, sql.OpOr):
		v, err = p.computeLogic(ctx, frame, computed, e.Children(), true)
	default:
		v, err = p.computeExpr(ctx, frame, computed, e)
	}
	if err != nil {
		return err
	}

	frame[index] = v
	computed[index] = true
	return nil
}

// computeExpr computes the local references of e and evaluates it.
func (p *Program) computeExpr(ctx *sql.Context, frame sql.Row, computed []bool, e sql.Expression) (interface{}, error) {
	var err error
	expression.Inspect(e, func(e sql.Expression) bool {
		if err != nil {
			return false
		}
		if ref, ok := e.(*expression.LocalRef); ok {
			err = p.compute(ctx, frame, computed, ref.Index())
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	return e.Eval(ctx, frame)
}

func (p *Program) computeLogic(
	ctx *sql.Context,
	frame sql.Row,
	computed []bool,
	operands []sql.Expression,
	stop bool,
) (interface{}, error) {
	var hasNull bool
	for _, o := range operands {
		v, err := p.computeExpr(ctx, frame, computed, o)
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

// String returns a textual representation of the program such as:
//
//	(expr#0..1=[{inputs}], expr#2=[+($t0, $t1)], p1=[$t2], $condition=[$t3])
func (p *Program) String() string {
	var parts []string
	n := len(p.inputSchema)
	switch n {
	case 0:
	case 1:
		parts = append(parts, "expr#0=[{inputs}]")
	default:
		parts = append(parts, fmt.Sprintf("expr#0..%d=[{inputs}]", n-1))
	}

	for i := n; i < len(p.exprs); i++ {
		parts = append(parts, fmt.Sprintf("expr#%d=[%s]", i, p.exprs[i]))
	}

	for _, project := range p.projects {
		parts = append(parts, fmt.Sprintf("%s=[%s]", project.Name, project.Ref))
	}

	if p.condition != nil {
		parts = append(parts, fmt.Sprintf("$condition=[%s]", p.condition))
	}

	return "(" + strings.Join(parts, ", ") + ")"
}
