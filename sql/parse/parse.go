package parse // import "gopkg.in/src-d/go-sqlexpr.v0/sql/parse"

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	opentracing "github.com/opentracing/opentracing-go"
	errors "gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-vitess.v0/vt/sqlparser"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression/function"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/plan"
)

var (
	// ErrUnsupportedSyntax is thrown when a specific syntax is not already supported
	ErrUnsupportedSyntax = errors.NewKind("unsupported syntax: %s")

	// ErrUnsupportedFeature is thrown when a feature is not already supported
	ErrUnsupportedFeature = errors.NewKind("unsupported feature: %s")

	// ErrInvalidSQLValType is returned when a SQLVal type is not valid.
	ErrInvalidSQLValType = errors.NewKind("invalid SQLVal of type: %d")

	// ErrEmptyQuery is returned when the query has nothing but comments.
	ErrEmptyQuery = errors.NewKind("query was empty")

	// ErrAmbiguousColumnName is returned when a column name matches more
	// than one column in scope.
	ErrAmbiguousColumnName = errors.NewKind("ambiguous column name %q, it's present in tables %s")

	// ErrConditionNotBoolean is returned when a WHERE or ON condition is not
	// a boolean expression.
	ErrConditionNotBoolean = errors.NewKind("condition %s has type %s, expected BOOLEAN")
)

const dualTableName = "dual"

// Parser converts SQL queries into plans over the tables of a catalog.
// Column names are resolved while parsing, so the resulting plans only
// reference fields by position.
type Parser struct {
	catalog  *sql.Catalog
	registry *function.Registry
}

// NewParser creates a parser for queries over the given catalog calling the
// operators of the given registry.
func NewParser(catalog *sql.Catalog, registry *function.Registry) *Parser {
	return &Parser{catalog: catalog, registry: registry}
}

// Parse parses the given SQL sentence and returns the corresponding node.
func (p *Parser) Parse(ctx *sql.Context, query string) (sql.Node, error) {
	span, _ := ctx.Span("parse", opentracing.Tag{Key: "query", Value: query})
	defer span.Finish()

	s := strings.TrimSpace(removeComments(query))
	if strings.HasSuffix(s, ";") {
		s = s[:len(s)-1]
	}

	if s == "" {
		return nil, ErrEmptyQuery.New()
	}

	stmt, err := sqlparser.Parse(s)
	if err != nil {
		return nil, err
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, ErrUnsupportedSyntax.New(sqlparser.String(stmt))
	}

	return p.convertSelect(sel)
}

// ParseExpr parses a scalar expression whose columns are the fields of
// the given schema.
func (p *Parser) ParseExpr(ctx *sql.Context, str string, schema sql.Schema) (sql.Expression, error) {
	span, _ := ctx.Span("parse_expr", opentracing.Tag{Key: "expression", Value: str})
	defer span.Finish()

	stmt, err := sqlparser.Parse("SELECT " + str)
	if err != nil {
		return nil, err
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok || len(sel.SelectExprs) != 1 {
		return nil, ErrUnsupportedSyntax.New(str)
	}

	aliased, ok := sel.SelectExprs[0].(*sqlparser.AliasedExpr)
	if !ok {
		return nil, ErrUnsupportedSyntax.New(str)
	}

	return p.newConverter(newScope("", schema)).exprToExpression(aliased.Expr)
}

func (p *Parser) newConverter(s scope) *converter {
	return &converter{registry: p.registry, scope: s}
}

func (p *Parser) convertSelect(s *sqlparser.Select) (sql.Node, error) {
	switch {
	case s.Distinct != "":
		return nil, ErrUnsupportedFeature.New("DISTINCT")
	case len(s.GroupBy) > 0:
		return nil, ErrUnsupportedFeature.New("GROUP BY")
	case s.Having != nil:
		return nil, ErrUnsupportedFeature.New("HAVING")
	case len(s.OrderBy) > 0:
		return nil, ErrUnsupportedFeature.New("ORDER BY")
	case s.Limit != nil:
		return nil, ErrUnsupportedFeature.New("LIMIT")
	}

	node, sc, err := p.tableExprsToTable(s.From)
	if err != nil {
		return nil, err
	}

	c := p.newConverter(sc)
	if s.Where != nil {
		cond, err := c.conditionToExpression(s.Where.Expr)
		if err != nil {
			return nil, err
		}
		node = plan.NewFilter(cond, node)
	}

	exprs, names, err := c.selectExprsToExpressions(s.SelectExprs)
	if err != nil {
		return nil, err
	}

	return plan.NewProject(exprs, names, node), nil
}

func (p *Parser) tableExprsToTable(te sqlparser.TableExprs) (sql.Node, scope, error) {
	if len(te) == 0 {
		return nil, nil, ErrUnsupportedFeature.New("zero tables in FROM")
	}

	if len(te) > 1 {
		return nil, nil, ErrUnsupportedFeature.New("cross joins")
	}

	return p.tableExprToTable(te[0])
}

func (p *Parser) tableExprToTable(te sqlparser.TableExpr) (sql.Node, scope, error) {
	switch t := te.(type) {
	default:
		return nil, nil, ErrUnsupportedSyntax.New(sqlparser.String(te))
	case *sqlparser.ParenTableExpr:
		return p.tableExprsToTable(t.Exprs)
	case *sqlparser.AliasedTableExpr:
		name, ok := t.Expr.(sqlparser.TableName)
		if !ok {
			return nil, nil, ErrUnsupportedFeature.New("subqueries")
		}

		if !name.Qualifier.IsEmpty() {
			return nil, nil, ErrUnsupportedFeature.New("qualified table names")
		}

		alias := name.Name.String()
		if !t.As.IsEmpty() {
			alias = t.As.String()
		}

		table, err := p.catalog.Table(name.Name.String())
		if err != nil {
			if sql.ErrTableNotFound.Is(err) && strings.EqualFold(name.Name.String(), dualTableName) {
				return plan.NewOneRow(), nil, nil
			}
			return nil, nil, err
		}

		return plan.NewResolvedTable(table), newScope(alias, table.Schema()), nil
	case *sqlparser.JoinTableExpr:
		if t.Join != sqlparser.JoinStr {
			return nil, nil, ErrUnsupportedFeature.New(t.Join)
		}

		if len(t.Condition.Using) > 0 {
			return nil, nil, ErrUnsupportedFeature.New("using clause on join")
		}

		if t.Condition.On == nil {
			return nil, nil, ErrUnsupportedFeature.New("join without condition")
		}

		left, ls, err := p.tableExprToTable(t.LeftExpr)
		if err != nil {
			return nil, nil, err
		}

		right, rs, err := p.tableExprToTable(t.RightExpr)
		if err != nil {
			return nil, nil, err
		}

		sc := append(append(scope{}, ls...), rs...)
		cond, err := p.newConverter(sc).conditionToExpression(t.Condition.On)
		if err != nil {
			return nil, nil, err
		}

		return plan.NewInnerJoin(left, right, cond), sc, nil
	}
}

// scopeColumn is a column that can be referenced by name, along with the
// name of the table it belongs to.
type scopeColumn struct {
	table string
	col   *sql.Column
}

// scope holds the columns of the row expressions are evaluated over, in
// order.
type scope []scopeColumn

func newScope(table string, schema sql.Schema) scope {
	s := make(scope, len(schema))
	for i, col := range schema {
		s[i] = scopeColumn{table, col}
	}
	return s
}

func (s scope) resolve(table, name string) (*expression.InputRef, error) {
	var (
		found  = -1
		tables []string
	)
	for i, c := range s {
		if !strings.EqualFold(c.col.Name, name) {
			continue
		}
		if table != "" && !strings.EqualFold(c.table, table) {
			continue
		}
		if found == -1 {
			found = i
		}
		tables = append(tables, c.table)
	}

	switch {
	case found == -1 && table != "":
		return nil, sql.ErrColumnNotFound.New(table + "." + name)
	case found == -1:
		return nil, sql.ErrColumnNotFound.New(name)
	case len(tables) > 1:
		return nil, ErrAmbiguousColumnName.New(name, strings.Join(tables, ", "))
	}

	return expression.NewInputRef(found, s[found].col.Type), nil
}

// converter converts the expressions of a query.
type converter struct {
	registry *function.Registry
	scope    scope
}

func (c *converter) selectExprsToExpressions(se sqlparser.SelectExprs) ([]sql.Expression, []string, error) {
	var (
		exprs []sql.Expression
		names []string
	)
	for _, e := range se {
		switch e := e.(type) {
		default:
			return nil, nil, ErrUnsupportedSyntax.New(sqlparser.String(e))
		case *sqlparser.StarExpr:
			table := e.TableName.Name.String()
			for i, sc := range c.scope {
				if table != "" && !strings.EqualFold(sc.table, table) {
					continue
				}
				exprs = append(exprs, expression.NewInputRef(i, sc.col.Type))
				names = append(names, sc.col.Name)
			}
		case *sqlparser.AliasedExpr:
			expr, err := c.exprToExpression(e.Expr)
			if err != nil {
				return nil, nil, err
			}

			exprs = append(exprs, expr)
			names = append(names, e.As.String())
		}
	}

	return exprs, names, nil
}

func (c *converter) conditionToExpression(e sqlparser.Expr) (sql.Expression, error) {
	cond, err := c.exprToExpression(e)
	if err != nil {
		return nil, err
	}

	if k := cond.Type().Kind(); k != sql.KindBoolean && k != sql.KindNull {
		return nil, ErrConditionNotBoolean.New(cond, cond.Type())
	}

	return cond, nil
}

func (c *converter) exprsToExpressions(exprs ...sqlparser.Expr) ([]sql.Expression, error) {
	result := make([]sql.Expression, len(exprs))
	for i, e := range exprs {
		var err error
		result[i], err = c.exprToExpression(e)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *converter) call(op sql.Operator, exprs ...sqlparser.Expr) (sql.Expression, error) {
	operands, err := c.exprsToExpressions(exprs...)
	if err != nil {
		return nil, err
	}

	return expression.NewCall(op, operands...)
}

func (c *converter) exprToExpression(e sqlparser.Expr) (sql.Expression, error) {
	switch v := e.(type) {
	default:
		return nil, ErrUnsupportedSyntax.New(sqlparser.String(e))
	case *sqlparser.ComparisonExpr:
		return c.comparisonExprToExpression(v)
	case *sqlparser.IsExpr:
		return c.isExprToExpression(v)
	case *sqlparser.NotExpr:
		return c.call(function.Not, v.Expr)
	case *sqlparser.SQLVal:
		return convertVal(v)
	case sqlparser.BoolVal:
		return expression.NewLiteral(bool(v), sql.NotNull(sql.Boolean)), nil
	case *sqlparser.NullVal:
		return expression.NewNullLiteral(sql.Null), nil
	case *sqlparser.ColName:
		return c.scope.resolve(v.Qualifier.Name.String(), v.Name.String())
	case *sqlparser.FuncExpr:
		return c.funcExprToExpression(v)
	case *sqlparser.ParenExpr:
		return c.exprToExpression(v.Expr)
	case *sqlparser.AndExpr:
		return c.call(function.And, v.Left, v.Right)
	case *sqlparser.OrExpr:
		return c.call(function.Or, v.Left, v.Right)
	case *sqlparser.ConvertExpr:
		return c.convertExprToExpression(v)
	case *sqlparser.UnaryExpr:
		switch v.Operator {
		case sqlparser.UMinusStr:
			return c.call(function.Negate, v.Expr)
		case sqlparser.UPlusStr:
			return c.exprToExpression(v.Expr)
		}
		return nil, ErrUnsupportedFeature.New(v.Operator)
	case sqlparser.ValTuple:
		return c.call(function.Row, v...)
	case *sqlparser.BinaryExpr:
		return c.binaryExprToExpression(v)
	case *sqlparser.RangeCond:
		lower, err := c.call(function.GreaterThanOrEqual, v.Left, v.From)
		if err != nil {
			return nil, err
		}

		upper, err := c.call(function.LessThanOrEqual, v.Left, v.To)
		if err != nil {
			return nil, err
		}

		between, err := expression.NewCall(function.And, lower, upper)
		if err != nil {
			return nil, err
		}

		switch v.Operator {
		case sqlparser.BetweenStr:
			return between, nil
		case sqlparser.NotBetweenStr:
			return expression.NewCall(function.Not, between)
		}
		return nil, ErrUnsupportedFeature.New(v.Operator)
	}
}

func (c *converter) funcExprToExpression(f *sqlparser.FuncExpr) (sql.Expression, error) {
	if f.Distinct {
		return nil, ErrUnsupportedFeature.New("DISTINCT in function calls")
	}

	op, err := c.registry.Operator(f.Name.Lowered())
	if err != nil {
		return nil, err
	}

	if op.Kind() == sql.OpAggregate {
		return nil, ErrUnsupportedFeature.New("aggregation")
	}

	exprs := make([]sqlparser.Expr, len(f.Exprs))
	for i, se := range f.Exprs {
		aliased, ok := se.(*sqlparser.AliasedExpr)
		if !ok {
			return nil, ErrUnsupportedSyntax.New(sqlparser.String(se))
		}
		exprs[i] = aliased.Expr
	}

	return c.call(op, exprs...)
}

// convertExprToExpression converts CAST(x AS type) and CONVERT(x, type).
// The result is nullable only if the operand is.
func (c *converter) convertExprToExpression(v *sqlparser.ConvertExpr) (sql.Expression, error) {
	expr, err := c.exprToExpression(v.Expr)
	if err != nil {
		return nil, err
	}

	typ, err := convertType(v.Type)
	if err != nil {
		return nil, err
	}

	return function.NewCast(expr, typ.WithNullability(expr.Type().Nullable()))
}

func convertType(ct *sqlparser.ConvertType) (sql.Type, error) {
	switch strings.ToLower(ct.Type) {
	case "char", "nchar", "binary":
		n, err := sqlValInt(ct.Length, 0)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return sql.Text, nil
		}
		return sql.CreateStringType(sql.KindVarchar, n)
	case "signed", "unsigned":
		return sql.BigInt, nil
	case "decimal":
		precision, err := sqlValInt(ct.Length, 10)
		if err != nil {
			return nil, err
		}
		scale, err := sqlValInt(ct.Scale, 0)
		if err != nil {
			return nil, err
		}
		return sql.CreateDecimalType(precision, scale)
	case "date":
		return sql.Date, nil
	case "datetime":
		return sql.Timestamp, nil
	}

	return nil, ErrUnsupportedFeature.New("CAST to " + ct.Type)
}

func convertVal(v *sqlparser.SQLVal) (sql.Expression, error) {
	switch v.Type {
	case sqlparser.StrVal:
		s := string(v.Val)
		return expression.NewLiteral(s, sql.LiteralType(s, sql.Text)), nil
	case sqlparser.IntVal:
		val, err := strconv.ParseInt(string(v.Val), 10, 64)
		if err != nil {
			return nil, err
		}

		if int64(int32(val)) == val {
			return expression.NewLiteral(int32(val), sql.NotNull(sql.Integer)), nil
		}
		return expression.NewLiteral(val, sql.NotNull(sql.BigInt)), nil
	case sqlparser.FloatVal:
		return convertFloatVal(string(v.Val))
	case sqlparser.ValArg:
		return nil, ErrUnsupportedFeature.New("query parameters")
	}

	return nil, ErrInvalidSQLValType.New(v.Type)
}

// convertFloatVal returns a DOUBLE for numbers in scientific notation and
// an exact DECIMAL otherwise.
func convertFloatVal(s string) (sql.Expression, error) {
	if strings.ContainsAny(s, "eE") {
		val, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val, sql.NotNull(sql.Double)), nil
	}

	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, err
	}

	var scale int
	if d.Exponent < 0 {
		scale = int(-d.Exponent)
	}

	precision := int(d.NumDigits())
	if precision < scale {
		precision = scale
	}

	typ, err := sql.CreateDecimalType(precision, scale)
	if err != nil {
		return nil, err
	}

	return expression.NewLiteral(d, sql.NotNull(typ)), nil
}

func (c *converter) isExprToExpression(e *sqlparser.IsExpr) (sql.Expression, error) {
	switch e.Operator {
	case sqlparser.IsNullStr:
		return c.call(function.IsNull, e.Expr)
	case sqlparser.IsNotNullStr:
		return c.call(function.IsNotNull, e.Expr)
	}
	return nil, ErrUnsupportedFeature.New(e.Operator)
}

var comparisons = map[string]sql.Operator{
	sqlparser.EqualStr:        function.Equals,
	sqlparser.NotEqualStr:     function.NotEquals,
	sqlparser.LessThanStr:     function.LessThan,
	sqlparser.LessEqualStr:    function.LessThanOrEqual,
	sqlparser.GreaterThanStr:  function.GreaterThan,
	sqlparser.GreaterEqualStr: function.GreaterThanOrEqual,
}

func (c *converter) comparisonExprToExpression(e *sqlparser.ComparisonExpr) (sql.Expression, error) {
	if op, ok := comparisons[e.Operator]; ok {
		return c.call(op, e.Left, e.Right)
	}

	switch e.Operator {
	case sqlparser.InStr, sqlparser.NotInStr:
		tuple, ok := e.Right.(sqlparser.ValTuple)
		if !ok {
			return nil, ErrUnsupportedFeature.New("IN with a subquery")
		}

		in, err := c.inToExpression(e.Left, tuple)
		if err != nil {
			return nil, err
		}

		if e.Operator == sqlparser.NotInStr {
			return expression.NewCall(function.Not, in)
		}
		return in, nil
	}

	return nil, ErrUnsupportedFeature.New(e.Operator)
}

// inToExpression converts "x IN (a, b)" into "x = a OR x = b".
func (c *converter) inToExpression(left sqlparser.Expr, tuple sqlparser.ValTuple) (sql.Expression, error) {
	operands := make([]sql.Expression, len(tuple))
	for i, e := range tuple {
		var err error
		operands[i], err = c.call(function.Equals, left, e)
		if err != nil {
			return nil, err
		}
	}

	if len(operands) == 1 {
		return operands[0], nil
	}
	return expression.NewCall(function.Or, operands...)
}

var arithmetic = map[string]sql.Operator{
	sqlparser.PlusStr:  function.Plus,
	sqlparser.MinusStr: function.Minus,
	sqlparser.MultStr:  function.Mult,
	sqlparser.DivStr:   function.Div,
	sqlparser.ModStr:   function.Mod,
}

func (c *converter) binaryExprToExpression(be *sqlparser.BinaryExpr) (sql.Expression, error) {
	op, ok := arithmetic[be.Operator]
	if !ok {
		return nil, ErrUnsupportedFeature.New(be.Operator)
	}

	return c.call(op, be.Left, be.Right)
}

func removeComments(s string) string {
	r := bufio.NewReader(strings.NewReader(s))
	var result []rune
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		switch ru {
		case '\'', '"':
			result = append(result, ru)
			result = append(result, readString(r, ru == '\'')...)
		case '-':
			peeked, err := r.Peek(2)
			if err == nil && len(peeked) == 2 && peeked[0] == '-' && peeked[1] == ' ' {
				discardUntil(r, func(ru rune, _ *bufio.Reader) bool { return ru == '\n' })
			} else {
				result = append(result, ru)
			}
		case '/':
			peeked, err := r.Peek(1)
			if err == nil && len(peeked) == 1 && peeked[0] == '*' {
				_, _, _ = r.ReadRune()
				discardUntil(r, endOfComment)
			} else {
				result = append(result, ru)
			}
		default:
			result = append(result, ru)
		}
	}
	return string(result)
}

// discardUntil reads runes until end returns true or the input is over.
func discardUntil(r *bufio.Reader, end func(rune, *bufio.Reader) bool) {
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			return
		}
		if err == nil && end(ru, r) {
			return
		}
	}
}

func endOfComment(ru rune, r *bufio.Reader) bool {
	if ru != '*' {
		return false
	}

	peeked, err := r.Peek(1)
	if err == nil && len(peeked) == 1 && peeked[0] == '/' {
		_, _, _ = r.ReadRune()
		return true
	}
	return false
}

func readString(r *bufio.Reader, single bool) []rune {
	var result []rune
	var escaped bool
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		result = append(result, ru)
		if !escaped && ((single && ru == '\'') || (!single && ru == '"')) {
			break
		}
		escaped = ru == '\\' && !escaped
	}
	return result
}
