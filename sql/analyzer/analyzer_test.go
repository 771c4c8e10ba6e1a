package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	errors "gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression/function"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/plan"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/program"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/rowexec"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/transform"
)

func TestAnalyze(t *testing.T) {
	require := require.New(t)

	table := testTable(t)
	node := plan.NewProject(
		[]sql.Expression{
			plus(inputRef(0), plus(intLit(1), intLit(2))),
			expression.NewInputRef(1, sql.Text),
		},
		[]string{"x", "b"},
		plan.NewFilter(
			call(function.And,
				gt(inputRef(0), plus(intLit(0), intLit(1))),
				eq(intLit(1), intLit(1)),
			),
			table,
		),
	)

	ctx := sql.NewEmptyContext()
	analyzed, err := NewDefault(rowexec.NewEvaluator()).Analyze(ctx, node)
	require.NoError(err)

	expected := plan.NewProject(
		[]sql.Expression{
			plus(inputRef(0), intLit(3)),
			expression.NewInputRef(1, sql.Text),
		},
		[]string{"x", "b"},
		plan.NewFilter(call(function.And, gt(inputRef(0), intLit(1)), expression.NewLiteral(true, sql.NotNull(sql.Boolean))), table),
	)
	require.Equal(expected.String(), analyzed.String())
	require.True(ctx.QueryProps().IsSet(sql.QPropConstantFolded))
	require.False(ctx.CachingDisabled())

	require.Equal([]sql.Row{{int32(5), "two"}}, collectRows(t, analyzed))
}

func TestAnalyzeWithCalc(t *testing.T) {
	testCases := []struct {
		name     string
		node     func(table sql.Node) sql.Node
		expected func(table sql.Node) string
		rows     []sql.Row
	}{
		{
			"project over filter",
			func(table sql.Node) sql.Node {
				return plan.NewProject(
					[]sql.Expression{plus(inputRef(0), plus(intLit(1), intLit(2)))},
					[]string{"x"},
					plan.NewFilter(gt(inputRef(0), plus(intLit(0), intLit(1))), table),
				)
			},
			nil,
			[]sql.Row{{int32(5)}},
		},
		{
			"always true filter",
			func(table sql.Node) sql.Node {
				return plan.NewFilter(eq(intLit(1), intLit(1)), table)
			},
			func(table sql.Node) string { return table.String() },
			[]sql.Row{{int32(0), "zero"}, {int32(1), nil}, {int32(2), "two"}},
		},
		{
			"always false filter",
			func(table sql.Node) sql.Node {
				return plan.NewProject(
					[]sql.Expression{inputRef(0)},
					nil,
					plan.NewFilter(eq(intLit(1), intLit(2)), table),
				)
			},
			func(sql.Node) string { return "Empty" },
			nil,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			table := testTable(t)
			node := tt.node(table)

			a := NewBuilder(rowexec.NewEvaluator()).
				WithConfig(Config{UseCalc: true, Validate: true}).
				Build()

			analyzed, err := a.Analyze(sql.NewEmptyContext(), node)
			require.NoError(err)

			if tt.expected != nil {
				require.Equal(tt.expected(table), analyzed.String())
			} else {
				calc, ok := analyzed.(*plan.Calc)
				require.True(ok)
				require.Equal(table, calc.Child)
				require.Equal([]string{"+($0, 3)"}, exprStrings(calc.Program.ExpandedProjects()))
				require.Equal(">($0, 1)", calc.Program.ExpandedCondition().String())
			}

			require.Equal(tt.rows, collectRows(t, analyzed))
			require.Equal(collectRows(t, node), collectRows(t, analyzed))
		})
	}
}

func TestAnalyzeDynamicFunction(t *testing.T) {
	require := require.New(t)

	table := testTable(t)
	node := plan.NewProject(
		[]sql.Expression{call(function.CurrentUser)},
		[]string{"user"},
		table,
	)

	ctx := sql.NewEmptyContext()
	analyzed, err := NewDefault(rowexec.NewEvaluator()).Analyze(ctx, node)
	require.NoError(err)
	require.True(ctx.CachingDisabled())

	project, ok := analyzed.(*plan.Project)
	require.True(ok)
	require.True(expression.IsCastOfLiteral(project.Projections[0]) || isLiteral(project.Projections[0]))
	require.True(node.Schema()[0].Type.Equals(analyzed.Schema()[0].Type))
}

func TestAnalyzeReentrant(t *testing.T) {
	require := require.New(t)

	ctx, cancel, err := sql.NewEmptyContext().NewReentrantContext()
	require.NoError(err)
	defer cancel()

	_, err = NewDefault(rowexec.NewEvaluator()).Analyze(ctx, testTable(t))
	require.Error(err)
	require.True(ErrReentrantAnalysis.Is(err))
}

func TestAnalyzeCanceled(t *testing.T) {
	require := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefault(rowexec.NewEvaluator()).Analyze(sql.NewContext(ctx), testTable(t))
	require.Equal(context.Canceled, err)
}

func TestAnalyzeRecoversPanics(t *testing.T) {
	errKaboom := errors.NewKind("kaboom")

	testCases := []struct {
		name    string
		rule    RuleFunc
		errKind *errors.Kind
	}{
		{
			"program violation",
			func(_ *sql.Context, _ *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
				b := program.NewBuilder(n.Schema())
				b.AddCondition(intLit(1))
				return n, transform.SameTree, nil
			},
			program.ErrConditionNotBoolean,
		},
		{
			"error",
			func(*sql.Context, *Analyzer, sql.Node) (sql.Node, transform.TreeIdentity, error) {
				panic(errKaboom.New())
			},
			errKaboom,
		},
		{
			"runtime error",
			func(_ *sql.Context, _ *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
				return n.Children()[0], transform.SameTree, nil
			},
			ErrInAnalysis,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			a := NewBuilder(rowexec.NewEvaluator()).AddPreAnalyzeRule("panic", tt.rule).Build()
			a.PushDebugContext("outer")

			_, err := a.Analyze(sql.NewEmptyContext(), testTable(t))
			require.Error(err)
			require.True(tt.errKind.Is(err), "unexpected error: %s", err)
			require.Equal([]string{"outer"}, a.debugCtx)
		})
	}
}

func TestAnalyzeDoesNotRecoverValues(t *testing.T) {
	a := NewBuilder(rowexec.NewEvaluator()).
		AddPreAnalyzeRule("panic", func(*sql.Context, *Analyzer, sql.Node) (sql.Node, transform.TreeIdentity, error) {
			panic("kaboom")
		}).
		Build()

	require.Panics(t, func() {
		_, _ = a.Analyze(sql.NewEmptyContext(), testTable(t))
	})
}

func TestAnalyzeRuleError(t *testing.T) {
	require := require.New(t)

	errKaboom := errors.NewKind("kaboom")
	var post bool
	a := NewBuilder(rowexec.NewEvaluator()).
		AddPreAnalyzeRule("fail", func(*sql.Context, *Analyzer, sql.Node) (sql.Node, transform.TreeIdentity, error) {
			return nil, transform.SameTree, errKaboom.New()
		}).
		AddPostAnalyzeRule("post", func(_ *sql.Context, _ *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
			post = true
			return n, transform.SameTree, nil
		}).
		Build()

	_, err := a.Analyze(sql.NewEmptyContext(), testTable(t))
	require.True(errKaboom.Is(err))
	require.False(post)
}

func TestAnalyzeMaxIterations(t *testing.T) {
	require := require.New(t)

	var applied int
	a := NewBuilder(rowexec.NewEvaluator()).
		WithConfig(Config{MaxIterations: 3}).
		AddPreAnalyzeRule("always_changes", func(_ *sql.Context, _ *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
			applied++
			return n, transform.NewTree, nil
		}).
		Build()

	table := testTable(t)
	result, err := a.Analyze(sql.NewEmptyContext(), table)
	require.NoError(err)
	require.Equal(table, result)
	require.Equal(3, applied)
}

func TestBatchEval(t *testing.T) {
	var applied int
	rule := Rule{"count", func(_ *sql.Context, _ *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		applied++
		return n, transform.TreeIdentity(applied >= 2), nil
	}}

	testCases := []struct {
		name       string
		iterations int
		applied    int
		same       transform.TreeIdentity
	}{
		{"no iterations", 0, 0, transform.SameTree},
		{"once", 1, 1, transform.NewTree},
		{"fixed point", 5, 2, transform.NewTree},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			applied = 0

			b := &Batch{Desc: tt.name, Iterations: tt.iterations, Rules: []Rule{rule}}
			table := testTable(t)
			result, same, err := b.Eval(sql.NewEmptyContext(), newTestAnalyzer(DefaultConfig()), table)
			require.NoError(err)
			require.Equal(table, result)
			require.Equal(tt.same, same)
			require.Equal(tt.applied, applied)
		})
	}
}

func TestBatchEvalMaxIterations(t *testing.T) {
	require := require.New(t)

	b := &Batch{
		Desc:       "loop",
		Iterations: 2,
		Rules: []Rule{{"loop", func(_ *sql.Context, _ *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
			return n, transform.NewTree, nil
		}}},
	}

	table := testTable(t)
	result, _, err := b.Eval(sql.NewEmptyContext(), newTestAnalyzer(DefaultConfig()), table)
	require.True(ErrMaxAnalysisIters.Is(err))
	require.Equal(table, result)
}

func TestDebugContext(t *testing.T) {
	require := require.New(t)

	a := newTestAnalyzer(DefaultConfig())
	a.PushDebugContext("a")
	a.PushDebugContext("b")
	require.Equal([]string{"a", "b"}, a.debugCtx)
	a.PopDebugContext()
	a.PopDebugContext()
	a.PopDebugContext()
	require.Empty(a.debugCtx)

	var nilAnalyzer *Analyzer
	require.NotPanics(func() {
		nilAnalyzer.PushDebugContext("a")
		nilAnalyzer.Log("message")
		nilAnalyzer.PopDebugContext()
	})
}
