package analyzer

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-sqlexpr.v0/memory"
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression/function"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/plan"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/program"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/rowexec"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/transform"
)

func getRule(name string) Rule {
	rules := append(onceBeforeRules(Config{UseCalc: true}), defaultRules()...)
	rules = append(rules, validationRules(Config{Validate: true})...)
	for _, rule := range rules {
		if rule.Name == name {
			return rule
		}
	}
	panic("missing rule " + name)
}

func newTestAnalyzer(cfg Config) *Analyzer {
	return NewBuilder(rowexec.NewEvaluator()).WithConfig(cfg).Build()
}

func testTable(t *testing.T) *plan.ResolvedTable {
	t.Helper()

	table := memory.NewTable("mytable", sql.Schema{
		{Name: "a", Type: intNotNull},
		{Name: "b", Type: sql.Text},
	})

	ctx := sql.NewEmptyContext()
	for _, row := range []sql.Row{
		{int32(0), "zero"},
		{int32(1), nil},
		{int32(2), "two"},
	} {
		require.NoError(t, table.Insert(ctx, row))
	}

	return plan.NewResolvedTable(table)
}

func eq(a, b sql.Expression) sql.Expression {
	return expression.MustCall(function.Equals, a, b)
}

func gt(a, b sql.Expression) sql.Expression {
	return expression.MustCall(function.GreaterThan, a, b)
}

func call(op sql.Operator, operands ...sql.Expression) sql.Expression {
	return expression.MustCall(op, operands...)
}

func TestReduceFilterExpressions(t *testing.T) {
	table := testTable(t)
	nullableRef := expression.NewInputRef(1, sql.Text)

	testCases := []struct {
		name     string
		node     sql.Node
		expected func(n sql.Node) sql.Node
		same     bool
	}{
		{
			"always true",
			plan.NewFilter(eq(intLit(1), intLit(1)), table),
			func(sql.Node) sql.Node { return table },
			false,
		},
		{
			"always false",
			plan.NewFilter(eq(intLit(1), intLit(2)), table),
			func(n sql.Node) sql.Node { return plan.NewEmpty(n.Schema()) },
			false,
		},
		{
			"null condition",
			plan.NewFilter(expression.NewNullLiteral(sql.Boolean), table),
			func(n sql.Node) sql.Node { return plan.NewEmpty(n.Schema()) },
			false,
		},
		{
			"cast null condition",
			plan.NewFilter(function.MustCast(expression.NewNullLiteral(sql.Null), sql.Boolean), table),
			func(n sql.Node) sql.Node { return plan.NewEmpty(n.Schema()) },
			false,
		},
		{
			"reduced condition",
			plan.NewFilter(gt(inputRef(0), plus(intLit(1), intLit(2))), table),
			func(sql.Node) sql.Node { return plan.NewFilter(gt(inputRef(0), intLit(3)), table) },
			false,
		},
		{
			"nothing to reduce",
			plan.NewFilter(gt(inputRef(0), intLit(1)), table),
			func(n sql.Node) sql.Node { return n },
			true,
		},
		{
			"is null on a not null field",
			plan.NewFilter(call(function.IsNull, inputRef(0)), table),
			func(n sql.Node) sql.Node { return plan.NewEmpty(n.Schema()) },
			false,
		},
		{
			"is not null on a not null field",
			plan.NewFilter(call(function.IsNotNull, inputRef(0)), table),
			func(sql.Node) sql.Node { return table },
			false,
		},
		{
			"not is null on a not null field",
			plan.NewFilter(call(function.Not, call(function.IsNull, inputRef(0))), table),
			func(sql.Node) sql.Node { return table },
			false,
		},
		{
			"not is not null on a not null field",
			plan.NewFilter(call(function.Not, call(function.IsNotNull, inputRef(0))), table),
			func(n sql.Node) sql.Node { return plan.NewEmpty(n.Schema()) },
			false,
		},
		{
			"is null on a nullable field",
			plan.NewFilter(call(function.IsNull, nullableRef), table),
			func(n sql.Node) sql.Node { return n },
			true,
		},
	}

	rule := getRule("reduce_filter_expressions")
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			a := newTestAnalyzer(DefaultConfig())
			result, same, err := rule.Apply(sql.NewEmptyContext(), a, tt.node)
			require.NoError(err)
			require.Equal(transform.TreeIdentity(tt.same), same)
			require.Equal(tt.expected(tt.node).String(), result.String())
			require.Equal(len(tt.node.Schema()), len(result.Schema()))
		})
	}
}

func TestReduceFilterExpressionsNested(t *testing.T) {
	require := require.New(t)

	table := testTable(t)
	node := plan.NewProject(
		[]sql.Expression{inputRef(0)},
		nil,
		plan.NewFilter(eq(plus(intLit(1), intLit(1)), intLit(2)), table),
	)

	result, same, err := getRule("reduce_filter_expressions").Apply(sql.NewEmptyContext(), newTestAnalyzer(DefaultConfig()), node)
	require.NoError(err)
	require.Equal(transform.NewTree, same)
	require.Equal(plan.NewProject([]sql.Expression{inputRef(0)}, nil, table).String(), result.String())
}

func TestReduceProjectExpressions(t *testing.T) {
	require := require.New(t)

	table := testTable(t)
	node := plan.NewProject(
		[]sql.Expression{
			plus(inputRef(0), plus(intLit(1), intLit(2))),
			call(function.Upper, strLit("abc", varchar4)),
			plus(intLit(1), intLit(1)),
			inputRef(0),
		},
		[]string{"x", "y", "", ""},
		table,
	)

	rule := getRule("reduce_project_expressions")
	a := newTestAnalyzer(DefaultConfig())

	result, same, err := rule.Apply(sql.NewEmptyContext(), a, node)
	require.NoError(err)
	require.Equal(transform.NewTree, same)

	project, ok := result.(*plan.Project)
	require.True(ok)
	require.Equal(
		[]string{"+($0, 3)", "CAST('ABC' AS VARCHAR(4))", "2", "$0"},
		exprStrings(project.Projections),
	)
	require.Equal([]string{"x", "y", "EXPR$2", "a"}, project.Names)

	before, after := node.Schema(), result.Schema()
	require.Len(after, len(before))
	for i := range before {
		require.Equal(before[i].Name, after[i].Name)
		require.True(before[i].Type.Equals(after[i].Type), "column %d: %s != %s", i, before[i].Type, after[i].Type)
	}

	result, same, err = rule.Apply(sql.NewEmptyContext(), a, result)
	require.NoError(err)
	require.Equal(transform.SameTree, same)
	require.Equal(project, result)
}

func TestReduceJoinExpressions(t *testing.T) {
	require := require.New(t)

	left, right := testTable(t), testTable(t)
	node := plan.NewInnerJoin(left, right,
		call(function.And,
			eq(inputRef(0), expression.NewInputRef(2, intNotNull)),
			eq(plus(intLit(1), intLit(1)), intLit(2)),
		),
	)

	rule := getRule("reduce_join_expressions")
	a := newTestAnalyzer(DefaultConfig())

	result, same, err := rule.Apply(sql.NewEmptyContext(), a, node)
	require.NoError(err)
	require.Equal(transform.NewTree, same)

	join, ok := result.(*plan.InnerJoin)
	require.True(ok)
	require.Equal("AND(=($0, $2), TRUE)", join.Cond.String())

	_, same, err = rule.Apply(sql.NewEmptyContext(), a, result)
	require.NoError(err)
	require.Equal(transform.SameTree, same)
}

func TestProjectAndFilterToCalc(t *testing.T) {
	require := require.New(t)

	table := testTable(t)
	node := plan.NewProject(
		[]sql.Expression{plus(inputRef(0), intLit(1))},
		[]string{"x"},
		plan.NewFilter(gt(inputRef(0), intLit(0)), table),
	)

	a := newTestAnalyzer(Config{UseCalc: true, Validate: true})
	ctx := sql.NewEmptyContext()

	result, same, err := getRule("project_to_calc").Apply(ctx, a, node)
	require.NoError(err)
	require.Equal(transform.NewTree, same)
	result, same, err = getRule("filter_to_calc").Apply(ctx, a, result)
	require.NoError(err)
	require.Equal(transform.NewTree, same)

	top, ok := result.(*plan.Calc)
	require.True(ok)
	bottom, ok := top.Child.(*plan.Calc)
	require.True(ok)
	require.Equal(table, bottom.Child)

	require.Equal([]string{"+($0, 1)"}, exprStrings(top.Program.ExpandedProjects()))
	require.Nil(top.Program.Condition())
	require.True(bottom.Program.ProjectsOnlyIdentity())
	require.Equal(">($0, 0)", bottom.Program.ExpandedCondition().String())

	require.Equal(collectRows(t, node), collectRows(t, result))
}

func TestMergeCalcs(t *testing.T) {
	require := require.New(t)

	table := testTable(t)

	b := program.NewBuilder(table.Schema())
	b.AddIdentity()
	b.AddCondition(gt(inputRef(0), intLit(0)))
	bottom := plan.NewCalc(b.Program(), table)

	b = program.NewBuilder(bottom.Schema())
	b.AddProject(plus(inputRef(0), intLit(1)), "x")
	top := plan.NewCalc(b.Program(), bottom)

	result, same, err := getRule("merge_calcs").Apply(sql.NewEmptyContext(), newTestAnalyzer(DefaultConfig()), top)
	require.NoError(err)
	require.Equal(transform.NewTree, same)

	merged, ok := result.(*plan.Calc)
	require.True(ok)
	require.Equal(table, merged.Child)
	require.NoError(merged.Program.Validate())
	require.Equal([]string{"+($0, 1)"}, exprStrings(merged.Program.ExpandedProjects()))
	require.Equal(">($0, 0)", merged.Program.ExpandedCondition().String())

	require.Equal(collectRows(t, top), collectRows(t, result))
}

func TestReduceCalcExpressions(t *testing.T) {
	table := testTable(t)

	newCalc := func(cond sql.Expression, projects ...sql.Expression) *plan.Calc {
		b := program.NewBuilder(table.Schema())
		for i, p := range projects {
			b.AddProject(p, "p"+strconv.Itoa(i))
		}
		if cond != nil {
			b.AddCondition(cond)
		}
		return plan.NewCalc(b.Program(), table)
	}

	t.Run("reduced projections and condition", func(t *testing.T) {
		require := require.New(t)

		node := newCalc(
			gt(inputRef(0), plus(intLit(0), intLit(1))),
			plus(inputRef(0), plus(intLit(1), intLit(2))),
			call(function.Upper, strLit("abc", varchar4)),
		)

		result, same, err := getRule("reduce_calc_expressions").Apply(sql.NewEmptyContext(), newTestAnalyzer(DefaultConfig()), node)
		require.NoError(err)
		require.Equal(transform.NewTree, same)

		calc, ok := result.(*plan.Calc)
		require.True(ok)
		require.NoError(calc.Program.Validate())
		require.Equal(
			[]string{"+($0, 3)", "CAST('ABC' AS VARCHAR(4))"},
			exprStrings(calc.Program.ExpandedProjects()),
		)
		require.Equal(">($0, 1)", calc.Program.ExpandedCondition().String())

		before, after := node.Schema(), calc.Schema()
		for i := range before {
			require.Equal(before[i].Name, after[i].Name)
			require.True(before[i].Type.Equals(after[i].Type))
		}

		require.Equal(collectRows(t, node), collectRows(t, result))
	})

	t.Run("always true condition", func(t *testing.T) {
		require := require.New(t)

		node := newCalc(eq(intLit(1), intLit(1)), expression.NewInputRef(1, sql.Text))
		result, _, err := getRule("reduce_calc_expressions").Apply(sql.NewEmptyContext(), newTestAnalyzer(DefaultConfig()), node)
		require.NoError(err)

		calc, ok := result.(*plan.Calc)
		require.True(ok)
		require.Nil(calc.Program.Condition())
		require.Equal([]string{"$1"}, exprStrings(calc.Program.ExpandedProjects()))
	})

	t.Run("always false condition", func(t *testing.T) {
		require := require.New(t)

		node := newCalc(eq(intLit(1), intLit(2)), expression.NewInputRef(1, sql.Text))
		result, _, err := getRule("reduce_calc_expressions").Apply(sql.NewEmptyContext(), newTestAnalyzer(DefaultConfig()), node)
		require.NoError(err)
		require.Equal(plan.NewEmpty(node.Schema()), result)
	})

	t.Run("nothing to reduce", func(t *testing.T) {
		require := require.New(t)

		node := newCalc(gt(inputRef(0), intLit(1)), plus(inputRef(0), intLit(1)))
		result, same, err := getRule("reduce_calc_expressions").Apply(sql.NewEmptyContext(), newTestAnalyzer(DefaultConfig()), node)
		require.NoError(err)
		require.Equal(transform.SameTree, same)
		require.Equal(node, result)
	})
}

func TestRemoveTrivialCalc(t *testing.T) {
	require := require.New(t)

	table := testTable(t)
	rule := getRule("remove_trivial_calc")
	a := newTestAnalyzer(DefaultConfig())

	b := program.NewBuilder(table.Schema())
	b.AddIdentity()
	result, same, err := rule.Apply(sql.NewEmptyContext(), a, plan.NewCalc(b.Program(), table))
	require.NoError(err)
	require.Equal(transform.NewTree, same)
	require.Equal(table, result)

	b = program.NewBuilder(table.Schema())
	b.AddProject(inputRef(0), "renamed")
	b.AddProject(expression.NewInputRef(1, sql.Text), "b")
	renamed := plan.NewCalc(b.Program(), table)
	result, same, err = rule.Apply(sql.NewEmptyContext(), a, renamed)
	require.NoError(err)
	require.Equal(transform.SameTree, same)
	require.Equal(renamed, result)
}

func TestValidatePrograms(t *testing.T) {
	require := require.New(t)

	table := testTable(t)
	b := program.NewBuilder(table.Schema())
	b.AddProject(plus(inputRef(0), intLit(1)), "x")
	node := plan.NewCalc(b.Program(), table)

	result, same, err := getRule("validate_programs").Apply(sql.NewEmptyContext(), newTestAnalyzer(DefaultConfig()), node)
	require.NoError(err)
	require.Equal(transform.SameTree, same)
	require.Equal(node, result)
}

func collectRows(t *testing.T, n sql.Node) []sql.Row {
	t.Helper()

	iter, err := n.RowIter(sql.NewEmptyContext())
	require.NoError(t, err)
	rows, err := sql.RowIterToRows(iter)
	require.NoError(t, err)
	return rows
}
