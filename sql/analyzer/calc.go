package analyzer

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression/function"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/plan"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/program"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/transform"
)

func projectToCalc(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	span, _ := ctx.Span("project_to_calc")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		p, ok := n.(*plan.Project)
		if !ok {
			return n, transform.SameTree, nil
		}

		b := program.NewBuilder(p.Child.Schema()).WithValidation(a.Validate)
		for i, e := range p.Projections {
			b.AddProject(e, p.Names[i])
		}

		a.Log("replacing projection with a calc")
		return plan.NewCalc(b.Program(), p.Child), transform.NewTree, nil
	})
}

func filterToCalc(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	span, _ := ctx.Span("filter_to_calc")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		f, ok := n.(*plan.Filter)
		if !ok {
			return n, transform.SameTree, nil
		}

		b := program.NewBuilder(f.Child.Schema()).WithValidation(a.Validate)
		b.AddIdentity()
		b.AddCondition(f.Expression)

		a.Log("replacing filter with a calc")
		return plan.NewCalc(b.Program(), f.Child), transform.NewTree, nil
	})
}

// mergeCalcs merges a calc reading the output of another calc into a
// single one.
func mergeCalcs(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	span, _ := ctx.Span("merge_calcs")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		top, ok := n.(*plan.Calc)
		if !ok {
			return n, transform.SameTree, nil
		}

		bottom, ok := top.Child.(*plan.Calc)
		if !ok {
			return n, transform.SameTree, nil
		}

		a.Log("merging calcs")
		merged := program.MergePrograms(top.Program, bottom.Program)
		return plan.NewCalc(merged, bottom.Child), transform.NewTree, nil
	})
}

// reduceCalcExpressions reduces the expressions of the programs of calcs.
// Expressions are expanded before being reduced and the program is built
// again from them. Projections keep their types, and the calc is removed
// if its condition is never true.
func reduceCalcExpressions(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("reduce_calc_expressions")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		c, ok := n.(*plan.Calc)
		if !ok {
			return n, transform.SameTree, nil
		}

		p := c.Program
		exprs, err := expandExprs(p.Exprs())
		if err != nil {
			return nil, transform.SameTree, err
		}

		reduced, err := a.Reducer.Reduce(ctx, exprs, false)
		if err != nil {
			return nil, transform.SameTree, err
		}

		cond := p.Condition()
		literalCond := cond != nil && (isLiteral(exprs[cond.Index()]) || isNullLiteral(exprs[cond.Index()]))
		if !reduced && !literalCond {
			return n, transform.SameTree, nil
		}

		b := program.NewBuilder(p.InputSchema()).WithValidation(a.Validate)
		refs := make([]*expression.LocalRef, len(exprs))
		for i, e := range exprs {
			refs[i] = b.RegisterInput(e)
		}

		if cond != nil {
			reducedCond := exprs[cond.Index()]
			switch {
			case isAlwaysTrue(reducedCond):
				a.Log("calc condition is always true, removing it")
			case isLiteral(reducedCond) || isNullLiteral(reducedCond):
				a.Log("calc condition is never true, replacing with empty result")
				return plan.NewEmpty(c.Schema()), transform.NewTree, nil
			default:
				b.AddCondition(refs[cond.Index()])
			}
		}

		schema := p.OutputSchema()
		for i, project := range p.Projects() {
			ref := refs[project.Ref.Index()]
			if expected := schema[i].Type; !ref.Type().Equals(expected) {
				cast, err := function.NewCast(ref, expected)
				if err != nil {
					return nil, transform.SameTree, err
				}
				b.AddProject(cast, project.Name)
				continue
			}
			b.AddProjectOrdinal(ref.Index(), project.Name)
		}

		b.EliminateUnused()

		a.Log("reduced calc expressions")
		return plan.NewCalc(b.Program(), c.Child), transform.NewTree, nil
	})
}

// expandExprs returns the expressions of a program with their local
// references replaced by the expressions they reference.
func expandExprs(exprs []sql.Expression) ([]sql.Expression, error) {
	expanded := make([]sql.Expression, len(exprs))
	for i, e := range exprs {
		var err error
		expanded[i], _, err = transform.Expr(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
			if ref, ok := e.(*expression.LocalRef); ok {
				return expanded[ref.Index()], transform.NewTree, nil
			}
			return e, transform.SameTree, nil
		})
		if err != nil {
			return nil, err
		}
	}
	return expanded, nil
}

// removeTrivialCalc removes the calcs returning their input untouched.
func removeTrivialCalc(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	span, _ := ctx.Span("remove_trivial_calc")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		c, ok := n.(*plan.Calc)
		if !ok || !c.Program.IsTrivial() {
			return n, transform.SameTree, nil
		}

		childSchema := c.Child.Schema()
		for i, col := range c.Schema() {
			if col.Name != childSchema[i].Name {
				return n, transform.SameTree, nil
			}
		}

		a.Log("removing trivial calc")
		return c.Child, transform.NewTree, nil
	})
}

// validatePrograms checks the programs of every calc of the plan.
func validatePrograms(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	span, _ := ctx.Span("validate_programs")
	defer span.Finish()

	var err error
	transform.Inspect(n, func(n sql.Node) bool {
		if c, ok := n.(*plan.Calc); ok {
			err = c.Program.Validate()
		}
		return err == nil
	})
	return n, transform.SameTree, err
}
