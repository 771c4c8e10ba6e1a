package function

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// Aggregates are only computed over windows of rows, so they have no row
// by row evaluation.
var (
	// Sum adds the values of a window.
	Sum = newAggregate("SUM", func(name string, operands []sql.Type) (sql.Type, error) {
		t, err := numericType(name, operands, maxScale)
		if err != nil {
			return nil, err
		}
		if t.Kind() == sql.KindInteger {
			t = sql.BigInt
		}
		return t.WithNullability(true), nil
	})

	// Count counts the non NULL values of a window.
	Count = newAggregate("COUNT", func(string, []sql.Type) (sql.Type, error) {
		return sql.NotNull(sql.BigInt), nil
	})

	// Min returns the minimum value of a window.
	Min = newAggregate("MIN", inferSameNullable)

	// Max returns the maximum value of a window.
	Max = newAggregate("MAX", inferSameNullable)

	// Avg returns the average of the values of a window.
	Avg = newAggregate("AVG", func(name string, operands []sql.Type) (sql.Type, error) {
		if _, err := numericType(name, operands, maxScale); err != nil {
			return nil, err
		}
		return sql.Double, nil
	})
)

func newAggregate(name string, infer InferFunc) *Operator {
	return newOperator(name, 1, 1, infer, nil).withKind(sql.OpAggregate)
}

func inferSameNullable(_ string, operands []sql.Type) (sql.Type, error) {
	return operands[0].WithNullability(true), nil
}
