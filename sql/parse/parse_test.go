package parse

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-vitess.v0/vt/sqlparser"

	"gopkg.in/src-d/go-sqlexpr.v0/memory"
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression/function"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/plan"
)

var testSchema = sql.Schema{
	{Name: "a", Type: sql.NotNull(sql.Integer)},
	{Name: "b", Type: sql.Text},
	{Name: "c", Type: sql.BigInt},
}

func newTestParser(t *testing.T) *Parser {
	t.Helper()

	catalog := sql.NewCatalog()
	require.NoError(t, catalog.AddTable(memory.NewTable("mytable", testSchema)))
	require.NoError(t, catalog.AddTable(memory.NewTable("other", sql.Schema{
		{Name: "a", Type: sql.NotNull(sql.Integer)},
		{Name: "d", Type: sql.Boolean},
	})))

	return NewParser(catalog, function.NewRegistry())
}

func TestParseExpr(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		typ      sql.Type
	}{
		{"1", "1", sql.NotNull(sql.Integer)},
		{"10000000000", "10000000000", sql.NotNull(sql.BigInt)},
		{"1.50", "1.50", sql.NotNull(sql.MustCreateDecimalType(3, 2))},
		{"0.5", "0.5", sql.NotNull(sql.MustCreateDecimalType(1, 1))},
		{"1e3", "1000", sql.NotNull(sql.Double)},
		{"'foo'", "'foo'", sql.NotNull(sql.MustCreateStringType(sql.KindChar, 3))},
		{"true", "TRUE", sql.NotNull(sql.Boolean)},
		{"null", "NULL", sql.Null},
		{"a", "$0", sql.NotNull(sql.Integer)},
		{"B", "$1", sql.Text},
		{"a + 1", "+($0, 1)", sql.NotNull(sql.Integer)},
		{"(a + 1) * 2", "*(+($0, 1), 2)", sql.NotNull(sql.Integer)},
		{"-a", "NEG($0)", sql.NotNull(sql.Integer)},
		{"+a", "$0", sql.NotNull(sql.Integer)},
		{"a % 3", "%($0, 3)", sql.NotNull(sql.Integer)},
		{"a = 1", "=($0, 1)", sql.NotNull(sql.Boolean)},
		{"a <> 1", "<>($0, 1)", sql.NotNull(sql.Boolean)},
		{"a >= c", ">=($0, $2)", sql.Boolean},
		{"a > 1 and c < 2", "AND(>($0, 1), <($2, 2))", sql.Boolean},
		{"a > 1 or not a < 2", "OR(>($0, 1), NOT(<($0, 2)))", sql.NotNull(sql.Boolean)},
		{"b is null", "IS NULL($1)", sql.NotNull(sql.Boolean)},
		{"b is not null", "IS NOT NULL($1)", sql.NotNull(sql.Boolean)},
		{"a in (1, 2)", "OR(=($0, 1), =($0, 2))", sql.NotNull(sql.Boolean)},
		{"a not in (1)", "NOT(=($0, 1))", sql.NotNull(sql.Boolean)},
		{"a between 1 and 3", "AND(>=($0, 1), <=($0, 3))", sql.NotNull(sql.Boolean)},
		{"upper(b)", "UPPER($1)", sql.Text},
		{"substring(b, 1, 2)", "SUBSTRING($1, 1, 2)", sql.Text},
		{"cast(a as char(4))", "CAST($0 AS VARCHAR(4) NOT NULL)", sql.NotNull(sql.MustCreateStringType(sql.KindVarchar, 4))},
		{"cast(b as signed)", "CAST($1 AS BIGINT)", sql.BigInt},
		{"cast(a as decimal(5, 2))", "CAST($0 AS DECIMAL(5, 2) NOT NULL)", sql.NotNull(sql.MustCreateDecimalType(5, 2))},
	}

	p := newTestParser(t)
	for _, tt := range testCases {
		t.Run(tt.input, func(t *testing.T) {
			require := require.New(t)

			e, err := p.ParseExpr(sql.NewEmptyContext(), tt.input, testSchema)
			require.NoError(err)
			require.Equal(tt.expected, e.String())
			require.True(tt.typ.Equals(e.Type()), "expected type %s, got %s", tt.typ, e.Type())
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	testCases := []struct {
		input string
		err   func(error) bool
	}{
		{"d", sql.ErrColumnNotFound.Is},
		{"foo(1)", function.ErrFunctionNotFound.Is},
		{"sum(a)", ErrUnsupportedFeature.Is},
		{"a & 1", ErrUnsupportedFeature.Is},
		{"a in (select 1)", ErrUnsupportedFeature.Is},
		{"a, b", ErrUnsupportedSyntax.Is},
		{"a +", func(err error) bool { return err != nil }},
	}

	p := newTestParser(t)
	for _, tt := range testCases {
		t.Run(tt.input, func(t *testing.T) {
			_, err := p.ParseExpr(sql.NewEmptyContext(), tt.input, testSchema)
			require.Error(t, err)
			require.True(t, tt.err(err), "unexpected error: %s", err)
		})
	}
}

func TestParse(t *testing.T) {
	require := require.New(t)
	p := newTestParser(t)

	node, err := p.Parse(sql.NewEmptyContext(), `
		-- comment
		SELECT a + 1 AS x, b FROM mytable /* another comment */ WHERE a > 1;`)
	require.NoError(err)

	project, ok := node.(*plan.Project)
	require.True(ok)
	require.Equal([]string{"x", "b"}, project.Names)
	require.Equal("+($0, 1)", project.Projections[0].String())
	require.Equal("$1", project.Projections[1].String())

	filter, ok := project.Child.(*plan.Filter)
	require.True(ok)
	require.Equal(">($0, 1)", filter.Expression.String())

	table, ok := filter.Child.(*plan.ResolvedTable)
	require.True(ok)
	require.Equal("mytable", table.Name())
}

func TestParseStar(t *testing.T) {
	require := require.New(t)
	p := newTestParser(t)

	node, err := p.Parse(sql.NewEmptyContext(), "SELECT * FROM mytable")
	require.NoError(err)

	project, ok := node.(*plan.Project)
	require.True(ok)
	require.Equal([]string{"a", "b", "c"}, project.Names)
	require.Len(project.Schema(), 3)
	require.True(testSchema[1].Type.Equals(project.Schema()[1].Type))
	require.Equal("$2", project.Projections[2].String())
}

func TestParseJoin(t *testing.T) {
	require := require.New(t)
	p := newTestParser(t)

	node, err := p.Parse(
		sql.NewEmptyContext(),
		"SELECT t.b, o.d FROM mytable t JOIN other o ON t.a = o.a",
	)
	require.NoError(err)

	project, ok := node.(*plan.Project)
	require.True(ok)
	require.Equal("$1", project.Projections[0].String())
	require.Equal("$4", project.Projections[1].String())
	require.Equal([]string{"b", "d"}, project.Names)

	join, ok := project.Child.(*plan.InnerJoin)
	require.True(ok)
	require.Equal("=($0, $3)", join.Cond.String())

	node, err = p.Parse(sql.NewEmptyContext(), "SELECT o.* FROM mytable JOIN other o ON mytable.a = o.a")
	require.NoError(err)
	require.Equal([]string{"a", "d"}, node.(*plan.Project).Names)
	require.Equal("$3", node.(*plan.Project).Projections[0].String())

	_, err = p.Parse(sql.NewEmptyContext(), "SELECT a FROM mytable JOIN other ON mytable.a = other.a")
	require.True(ErrAmbiguousColumnName.Is(err))
}

func TestParseDual(t *testing.T) {
	require := require.New(t)
	p := newTestParser(t)

	node, err := p.Parse(sql.NewEmptyContext(), "SELECT 1 + 2 FROM dual")
	require.NoError(err)

	project, ok := node.(*plan.Project)
	require.True(ok)
	require.Equal("+(1, 2)", project.Projections[0].String())
	require.Equal([]string{"EXPR$0"}, project.Names)
	require.IsType(&plan.OneRow{}, project.Child)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		query string
		err   func(error) bool
	}{
		{"", ErrEmptyQuery.Is},
		{"-- nothing here", ErrEmptyQuery.Is},
		{"SELECT a FROM foo", sql.ErrTableNotFound.Is},
		{"SELECT a FROM mytable WHERE a + 1", ErrConditionNotBoolean.Is},
		{"SELECT b FROM mytable JOIN other ON mytable.a + 1", ErrConditionNotBoolean.Is},
		{"SELECT DISTINCT a FROM mytable", ErrUnsupportedFeature.Is},
		{"SELECT a FROM mytable GROUP BY a", ErrUnsupportedFeature.Is},
		{"SELECT a FROM mytable ORDER BY a", ErrUnsupportedFeature.Is},
		{"SELECT a FROM mytable LIMIT 1", ErrUnsupportedFeature.Is},
		{"SELECT a FROM mytable, other", ErrUnsupportedFeature.Is},
		{"SELECT a FROM mytable LEFT JOIN other ON 1 = 1", ErrUnsupportedFeature.Is},
		{"SELECT a FROM (SELECT a FROM mytable) t", ErrUnsupportedFeature.Is},
		{"DELETE FROM mytable", ErrUnsupportedSyntax.Is},
	}

	p := newTestParser(t)
	for _, tt := range testCases {
		t.Run(tt.query, func(t *testing.T) {
			_, err := p.Parse(sql.NewEmptyContext(), tt.query)
			require.Error(t, err)
			require.True(t, tt.err(err), "unexpected error: %s", err)
		})
	}
}

func TestConvertType(t *testing.T) {
	testCases := []struct {
		typ      *sqlparser.ConvertType
		expected sql.Type
	}{
		{&sqlparser.ConvertType{Type: "CHAR"}, sql.Text},
		{&sqlparser.ConvertType{Type: "char", Length: sqlparser.NewIntVal([]byte("3"))}, sql.MustCreateStringType(sql.KindVarchar, 3)},
		{&sqlparser.ConvertType{Type: "unsigned"}, sql.BigInt},
		{&sqlparser.ConvertType{Type: "decimal"}, sql.MustCreateDecimalType(10, 0)},
		{&sqlparser.ConvertType{Type: "date"}, sql.Date},
		{&sqlparser.ConvertType{Type: "datetime"}, sql.Timestamp},
	}

	for _, tt := range testCases {
		t.Run(tt.typ.Type, func(t *testing.T) {
			typ, err := convertType(tt.typ)
			require.NoError(t, err)
			require.True(t, tt.expected.Equals(typ), "expected %s, got %s", tt.expected, typ)
		})
	}

	_, err := convertType(&sqlparser.ConvertType{Type: "time"})
	require.True(t, ErrUnsupportedFeature.Is(err))
}

func TestRemoveComments(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"SELECT 1", "SELECT 1"},
		{"SELECT 1 -- comment\n", "SELECT 1 "},
		{"SELECT /* comment */ 1", "SELECT  1"},
		{"SELECT '-- not a comment'", "SELECT '-- not a comment'"},
		{`SELECT "/* not a comment */"`, `SELECT "/* not a comment */"`},
		{`SELECT 'it\'s' -- comment`, `SELECT 'it\'s' `},
		{"SELECT 1 - 1", "SELECT 1 - 1"},
		{"SELECT 4 / 2", "SELECT 4 / 2"},
	}

	for _, tt := range testCases {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, removeComments(tt.input))
		})
	}
}
