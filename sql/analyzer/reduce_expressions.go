package analyzer

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/plan"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/transform"
)

func reduceFilterExpressions(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("reduce_filter_expressions")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		f, ok := n.(*plan.Filter)
		if !ok {
			return n, transform.SameTree, nil
		}

		exprs := []sql.Expression{f.Expression}
		reduced, err := a.Reducer.Reduce(ctx, exprs, false)
		if err != nil {
			return nil, transform.SameTree, err
		}

		cond := exprs[0]
		switch {
		case isAlwaysTrue(cond):
			a.Log("filter condition %s is always true, removing filter", f.Expression)
			return f.Child, transform.NewTree, nil
		case isLiteral(cond) || isNullLiteral(cond):
			a.Log("filter condition %s is never true, replacing with empty result", f.Expression)
			return plan.NewEmpty(f.Schema()), transform.NewTree, nil
		case reduced:
			a.Log("reduced filter condition %s to %s", f.Expression, cond)
			return plan.NewFilter(cond, f.Child), transform.NewTree, nil
		}

		return reduceNotNullableFilter(a, f)
	})
}

// reduceNotNullableFilter decides statically filters like "x IS NULL" or
// "NOT(x IS NOT NULL)" when x is a field that cannot be NULL.
func reduceNotNullableFilter(a *Analyzer, f *plan.Filter) (sql.Node, transform.TreeIdentity, error) {
	call, ok := f.Expression.(*expression.Call)
	if !ok {
		return f, transform.SameTree, nil
	}

	reverse := call.Operator().Kind() == sql.OpNot
	if reverse {
		call, ok = call.Operands()[0].(*expression.Call)
		if !ok {
			return f, transform.SameTree, nil
		}
	}

	var alwaysTrue bool
	switch call.Operator().Kind() {
	case sql.OpIsNull:
		alwaysTrue = false
	case sql.OpIsNotNull:
		alwaysTrue = true
	default:
		return f, transform.SameTree, nil
	}

	if reverse {
		alwaysTrue = !alwaysTrue
	}

	ref, ok := call.Operands()[0].(*expression.InputRef)
	if !ok || ref.IsNullable() {
		return f, transform.SameTree, nil
	}

	if alwaysTrue {
		a.Log("filter condition %s is always true on a NOT NULL field, removing filter", f.Expression)
		return f.Child, transform.NewTree, nil
	}

	a.Log("filter condition %s is never true on a NOT NULL field, replacing with empty result", f.Expression)
	return plan.NewEmpty(f.Schema()), transform.NewTree, nil
}

func reduceProjectExpressions(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("reduce_project_expressions")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		p, ok := n.(*plan.Project)
		if !ok {
			return n, transform.SameTree, nil
		}

		exprs := make([]sql.Expression, len(p.Projections))
		copy(exprs, p.Projections)

		// The types of the projections are the schema of the node, so they
		// must not change.
		reduced, err := a.Reducer.Reduce(ctx, exprs, true)
		if err != nil {
			return nil, transform.SameTree, err
		}

		if !reduced {
			return n, transform.SameTree, nil
		}

		a.Log("reduced projections of %s", p.Names)
		return plan.NewProject(exprs, p.Names, p.Child), transform.NewTree, nil
	})
}

func reduceJoinExpressions(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("reduce_join_expressions")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		j, ok := n.(*plan.InnerJoin)
		if !ok {
			return n, transform.SameTree, nil
		}

		exprs := []sql.Expression{j.Cond}
		reduced, err := a.Reducer.Reduce(ctx, exprs, false)
		if err != nil {
			return nil, transform.SameTree, err
		}

		if !reduced {
			return n, transform.SameTree, nil
		}

		a.Log("reduced join condition %s to %s", j.Cond, exprs[0])
		return plan.NewInnerJoin(j.Left(), j.Right(), exprs[0]), transform.NewTree, nil
	})
}

func isAlwaysTrue(e sql.Expression) bool {
	l, ok := e.(*expression.Literal)
	return ok && l.Value() == true
}

func isLiteral(e sql.Expression) bool {
	_, ok := e.(*expression.Literal)
	return ok
}

// isNullLiteral returns whether e is the NULL literal, cast or not.
func isNullLiteral(e sql.Expression) bool {
	if expression.IsCast(e) {
		e = e.Children()[0]
	}
	l, ok := e.(*expression.Literal)
	return ok && l.IsNull()
}
