package analyzer

import (
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	errors "gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression/function"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/transform"
)

// ErrUnexpectedLiterals is returned when an evaluator does not return one
// literal per expression.
var ErrUnexpectedLiterals = errors.NewKind("evaluator returned %d literals for %d expressions")

// Evaluator computes the values of constant expressions in the middle of
// the compilation of a query. It returns one literal per expression, in the
// same order, or an error if any of them could not be evaluated.
type Evaluator interface {
	Evaluate(ctx *sql.Context, exprs []sql.Expression) ([]*expression.Literal, error)
}

// ExpressionReducer replaces the constant subexpressions of a list of
// expressions with their values and removes the casts that do nothing.
type ExpressionReducer struct {
	evaluator Evaluator
}

// NewExpressionReducer creates a reducer evaluating constants with the
// given evaluator.
func NewExpressionReducer(evaluator Evaluator) *ExpressionReducer {
	return &ExpressionReducer{evaluator: evaluator}
}

// Reduce folds the constant subexpressions of exprs and removes their
// redundant casts. The expressions must not contain local references.
// The list is modified in place and Reduce returns whether anything
// changed. If forceCasts is true, folded values are always cast to the
// type of the expression they replace when the types differ.
//
// If any of the constants cannot be evaluated the list is left untouched.
// Evaluation failures are not returned: the expressions will fail, if at
// all, when the query runs.
func (r *ExpressionReducer) Reduce(ctx *sql.Context, exprs []sql.Expression, forceCasts bool) (bool, error) {
	span, ctx := ctx.Span("analyzer.ReduceExpressions", opentracing.Tag{Key: "expressions", Value: len(exprs)})
	defer span.Finish()

	l := &reducibleExprLocator{ctx: ctx}
	for _, e := range exprs {
		l.analyze(e)
	}

	if len(l.constants) == 0 && len(l.removableCasts) == 0 {
		return false, nil
	}

	reduced := make([]sql.Expression, len(exprs))
	copy(reduced, exprs)

	if len(l.removableCasts) > 0 {
		casts := transform.NewReplacements()
		for _, c := range l.removableCasts {
			casts.Add(c, removeCast)
		}
		if _, err := casts.Apply(reduced); err != nil {
			return false, err
		}
	}

	if len(l.constants) > 0 {
		constants := make([]sql.Expression, len(l.constants))
		for i, c := range l.constants {
			constants[i] = c.expr
		}

		values, err := r.evaluator.Evaluate(ctx, constants)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}

			ctx.GetLogger().WithFields(logrus.Fields{
				"expressions": len(constants),
				"error":       err,
			}).Debug("unable to reduce constant expressions")
			return false, nil
		}

		if len(values) != len(constants) {
			return false, ErrUnexpectedLiterals.New(len(values), len(constants))
		}

		literals := transform.NewReplacements()
		for i, c := range l.constants {
			literals.Add(c.expr, replaceWithLiteral(values[i], forceCasts || c.mustCast))
		}
		if _, err := literals.Apply(reduced); err != nil {
			return false, err
		}
	}

	copy(exprs, reduced)
	ctx.QueryProps().Set(sql.QPropConstantFolded)
	return true, nil
}

// removeCast replaces a cast with its operand.
func removeCast(_, rewritten sql.Expression) (sql.Expression, error) {
	return rewritten.Children()[0], nil
}

// replaceWithLiteral replaces an expression with its value, cast to the type
// of the expression if needed and the types differ.
func replaceWithLiteral(lit *expression.Literal, mustCast bool) transform.ReplaceFunc {
	return func(original, _ sql.Expression) (sql.Expression, error) {
		if mustCast && !lit.Type().Equals(original.Type()) {
			return function.NewCast(lit, original.Type())
		}
		return lit, nil
	}
}

type constancy byte

const (
	nonConstant constancy = iota
	reducibleConstant
	irreducibleConstant
)

type reducibleExpr struct {
	expr sql.Expression
	// mustCast is set when the folded value must keep the exact type of
	// the expression, as the arguments of user-defined routines.
	mustCast bool
}

// reducibleExprLocator finds the largest constant subexpressions and the
// redundant casts of a list of expressions.
type reducibleExprLocator struct {
	ctx            *sql.Context
	constants      []reducibleExpr
	removableCasts []*expression.Call
}

func (l *reducibleExprLocator) analyze(e sql.Expression) {
	if l.visit(e) == reducibleConstant {
		l.addResult(e, nil)
	}
}

// addResult records e as a constant to fold. parent is the operator e is
// an operand of, or nil for the root of an expression.
func (l *reducibleExprLocator) addResult(e sql.Expression, parent sql.Operator) {
	if expression.IsCastOfLiteral(e) {
		return
	}

	l.constants = append(l.constants, reducibleExpr{
		expr:     e,
		mustCast: parent != nil && parent.IsUserDefined(),
	})
}

func (l *reducibleExprLocator) visit(e sql.Expression) constancy {
	switch e := e.(type) {
	case *expression.Literal:
		return irreducibleConstant
	case *expression.Call:
		return l.visitCall(e, e.Operator(), reducibleConstant)
	case *expression.Over:
		return l.visitCall(e, e.Operator(), nonConstant)
	default:
		// input and local references, dynamic parameters, correlation
		// variables and field accesses
		return nonConstant
	}
}

func (l *reducibleExprLocator) visitCall(call sql.Expression, op sql.Operator, c constancy) constancy {
	operands := call.Children()
	operandConstancy := make([]constancy, len(operands))
	for i, o := range operands {
		operandConstancy[i] = l.visit(o)
		if operandConstancy[i] == nonConstant {
			c = nonConstant
		}
	}

	if !op.IsDeterministic() {
		c = nonConstant
	} else if op.IsDynamic() {
		l.ctx.DisableCaching()
	}

	if c == reducibleConstant && op.Kind() == sql.OpRow {
		c = nonConstant
	}

	if c == nonConstant {
		for i, o := range operands {
			if operandConstancy[i] == reducibleConstant {
				l.addResult(o, op)
			}
		}

		if cast, ok := call.(*expression.Call); ok && expression.IsCast(cast) {
			l.reduceCast(cast)
		}
	}

	return c
}

// reduceCast records the cast as removable if its operand already has the
// type of the cast. A cast of a nullable cast to a NOT NULL type that only
// differs in nullability, such as CAST(CAST(x AS T) AS T NOT NULL), does not
// need the inner cast, which is recorded as removable instead.
func (l *reducibleExprLocator) reduceCast(outer *expression.Call) {
	operand := outer.Operands()[0]
	if operand.Type().Equals(outer.Type()) {
		l.removableCasts = append(l.removableCasts, outer)
		return
	}

	inner, ok := operand.(*expression.Call)
	if !ok || !expression.IsCast(inner) {
		return
	}

	if !sql.EqualsIgnoreNullability(outer.Type(), inner.Type()) {
		return
	}

	if inner.Type().Nullable() {
		l.removableCasts = append(l.removableCasts, inner)
	}
}
