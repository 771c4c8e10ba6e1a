package rowexec

import (
	"io"
	"runtime"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/plan"
)

// Evaluator computes the values of constant expressions while a query is
// being compiled. Expressions are evaluated by executing a projection of
// all of them over a single row, under a reentrant context derived from the
// context of the compilation.
type Evaluator struct{}

// NewEvaluator creates a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns a literal with the value of each of the given constant
// expressions. Expressions must not reference any input field. Either all
// expressions are evaluated or an ErrEvaluation is returned.
func (e *Evaluator) Evaluate(ctx *sql.Context, exprs []sql.Expression) ([]*expression.Literal, error) {
	if len(exprs) == 0 {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, ErrEvaluation.Wrap(err, len(exprs))
	}

	span, ctx := ctx.Span("rowexec.Evaluate", opentracing.Tag{Key: "expressions", Value: len(exprs)})
	defer span.Finish()

	rctx, cancel, err := ctx.NewReentrantContext()
	if err != nil {
		return nil, ErrEvaluation.Wrap(err, len(exprs))
	}
	defer cancel()

	row, err := evalSingleRow(rctx, plan.NewProject(exprs, nil, plan.NewOneRow()))
	if err == nil && len(row) != len(exprs) {
		err = ErrUnexpectedResult.New(len(exprs), expression.FormatValue(row))
	}
	if err != nil {
		rctx.GetLogger().WithFields(logrus.Fields{
			"reentrant": rctx.ReentrantID(),
			"error":     err,
		}).Debug("constant evaluation failed")
		return nil, ErrEvaluation.Wrap(err, len(exprs))
	}

	literals := make([]*expression.Literal, len(exprs))
	for i, v := range row {
		literals[i] = expression.NewLiteral(v, sql.LiteralType(v, exprs[i].Type()))
	}
	return literals, nil
}

// evalSingleRow executes the node and returns its only row. The iterator
// is always closed, even if an operator panics, and panics with errors
// are returned as errors.
func evalSingleRow(ctx *sql.Context, node sql.Node) (row sql.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()

	iter, err := node.RowIter(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := iter.Close(); err == nil {
			err = cerr
		}
	}()

	row, err = iter.Next()
	if err == io.EOF {
		return nil, ErrUnexpectedResult.New(len(node.Schema()), "no rows")
	}
	if err != nil {
		return nil, err
	}

	if _, err := iter.Next(); err != io.EOF {
		if err == nil {
			err = ErrUnexpectedResult.New(len(node.Schema()), "more than one row")
		}
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return row, nil
}

func recoveredError(r interface{}) error {
	switch r := r.(type) {
	case runtime.Error:
		return ErrPanic.Wrap(r, r)
	case error:
		return r
	}
	return ErrPanic.New(r)
}
