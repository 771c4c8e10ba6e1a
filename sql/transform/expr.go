package transform

import (
	"errors"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// Expr applies a transformation function to the given expression
// tree from the bottom up. Each callback [f] returns a TreeIdentity
// that is aggregated into a final output indicating whether the
// expression tree was changed.
func Expr(e sql.Expression, f ExprFunc) (sql.Expression, TreeIdentity, error) {
	children := e.Children()
	if len(children) == 0 {
		return f(e)
	}

	var (
		newChildren []sql.Expression
		err         error
	)

	for i := 0; i < len(children); i++ {
		c := children[i]
		c, same, err := Expr(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		if !same {
			if newChildren == nil {
				newChildren = make([]sql.Expression, len(children))
				copy(newChildren, children)
			}
			newChildren[i] = c
		}
	}

	sameC := SameTree
	if len(newChildren) > 0 {
		sameC = NewTree
		e, err = e.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}

	e, sameN, err := f(e)
	if err != nil {
		return nil, SameTree, err
	}
	return e, sameC && sameN, nil
}

// Exprs applies Expr to every expression of the list, returning a new list
// only if any of them changed.
func Exprs(exprs []sql.Expression, f ExprFunc) ([]sql.Expression, TreeIdentity, error) {
	var result []sql.Expression
	for i, e := range exprs {
		ne, same, err := Expr(e, f)
		if err != nil {
			return nil, SameTree, err
		}
		if !same {
			if result == nil {
				result = make([]sql.Expression, len(exprs))
				copy(result, exprs)
			}
			result[i] = ne
		}
	}

	if result == nil {
		return exprs, SameTree, nil
	}
	return result, NewTree, nil
}

// InspectExpr traverses the given expression from the bottom up, breaking
// if stop = true. Returns a bool indicating whether traversal was
// interrupted.
func InspectExpr(node sql.Expression, f func(sql.Expression) bool) bool {
	stop := errors.New("stop")
	_, _, err := Expr(node, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		ok := f(e)
		if ok {
			return nil, SameTree, stop
		}
		return e, SameTree, nil
	})
	return errors.Is(err, stop)
}

// ExpressionToColumn converts the expression to the form that should be
// used in a Schema.
func ExpressionToColumn(e sql.Expression, name string) *sql.Column {
	if name == "" {
		name = e.String()
	}

	return &sql.Column{
		Name: name,
		Type: e.Type(),
	}
}
