package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression/function"
)

var intNotNull = sql.NotNull(sql.Integer)

func intLit(v int32) sql.Expression {
	return expression.NewLiteral(v, intNotNull)
}

func plus(a, b sql.Expression) sql.Expression {
	return expression.MustCall(function.Plus, a, b)
}

func TestExpr(t *testing.T) {
	ref := expression.NewInputRef(0, intNotNull)

	testCases := []struct {
		name     string
		input    sql.Expression
		f        ExprFunc
		expected string
		same     TreeIdentity
	}{
		{
			"replace leaf",
			plus(ref, plus(ref, intLit(1))),
			func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
				if e == ref {
					return intLit(5), NewTree, nil
				}
				return e, SameTree, nil
			},
			"+(5, +(5, 1))",
			NewTree,
		},
		{
			"replace parent after children",
			plus(intLit(1), plus(intLit(2), ref)),
			func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
				if c, ok := e.(*expression.Call); ok && c.Operands()[0].String() == "2" {
					return intLit(7), NewTree, nil
				}
				return e, SameTree, nil
			},
			"+(1, 7)",
			NewTree,
		},
		{
			"unchanged",
			plus(ref, intLit(1)),
			func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
				return e, SameTree, nil
			},
			"+($0, 1)",
			SameTree,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			result, same, err := Expr(tt.input, tt.f)
			require.NoError(err)
			require.Equal(tt.expected, result.String())
			require.Equal(tt.same, same)
			if same {
				require.Same(tt.input, result)
			}
		})
	}
}

func TestExprs(t *testing.T) {
	require := require.New(t)

	ref := expression.NewInputRef(1, intNotNull)
	exprs := []sql.Expression{intLit(1), plus(ref, intLit(2))}

	result, same, err := Exprs(exprs, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		return e, SameTree, nil
	})
	require.NoError(err)
	require.Equal(SameTree, same)
	require.Same(&exprs[0], &result[0])

	result, same, err = Exprs(exprs, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		if e == ref {
			return intLit(3), NewTree, nil
		}
		return e, SameTree, nil
	})
	require.NoError(err)
	require.Equal(NewTree, same)
	require.Same(exprs[0], result[0])
	require.Equal("+(3, 2)", result[1].String())
	require.Equal("+($1, 2)", exprs[1].String())
}

func TestInspectExpr(t *testing.T) {
	require := require.New(t)

	ref := expression.NewInputRef(0, intNotNull)
	e := plus(intLit(1), plus(ref, intLit(2)))

	var visited []string
	stopped := InspectExpr(e, func(e sql.Expression) bool {
		visited = append(visited, e.String())
		return e == ref
	})
	require.True(stopped)
	require.Equal([]string{"1", "$0"}, visited)

	visited = nil
	stopped = InspectExpr(e, func(e sql.Expression) bool {
		visited = append(visited, e.String())
		return false
	})
	require.False(stopped)
	require.Equal([]string{"1", "$0", "2", "+($0, 2)", "+(1, +($0, 2))"}, visited)
}

func TestExpressionToColumn(t *testing.T) {
	require := require.New(t)

	e := plus(expression.NewInputRef(0, sql.Integer), intLit(1))

	col := ExpressionToColumn(e, "x")
	require.Equal("x", col.Name)
	require.True(sql.Integer.Equals(col.Type))

	col = ExpressionToColumn(e, "")
	require.Equal("+($0, 1)", col.Name)
}
