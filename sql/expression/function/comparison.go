package function

import (
	"time"

	"github.com/cockroachdb/apd/v3"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

var (
	// Equals is the = comparison.
	Equals = newComparison("=", func(cmp int) bool { return cmp == 0 })
	// NotEquals is the <> comparison.
	NotEquals = newComparison("<>", func(cmp int) bool { return cmp != 0 })
	// LessThan is the < comparison.
	LessThan = newComparison("<", func(cmp int) bool { return cmp < 0 })
	// LessThanOrEqual is the <= comparison.
	LessThanOrEqual = newComparison("<=", func(cmp int) bool { return cmp <= 0 })
	// GreaterThan is the > comparison.
	GreaterThan = newComparison(">", func(cmp int) bool { return cmp > 0 })
	// GreaterThanOrEqual is the >= comparison.
	GreaterThanOrEqual = newComparison(">=", func(cmp int) bool { return cmp >= 0 })
)

func newComparison(name string, test func(int) bool) *Operator {
	return newOperator(name, 2, 2,
		func(name string, operands []sql.Type) (sql.Type, error) {
			if !canCompare(operands[0], operands[1]) {
				return nil, sql.ErrInvalidOperandType.New(name, operands[1])
			}
			return booleanResult(operands), nil
		},
		func(_ *sql.Context, _ sql.Type, args []interface{}) (interface{}, error) {
			cmp, err := Compare(args[0], args[1])
			if err != nil {
				return nil, err
			}
			return test(cmp), nil
		},
	)
}

// Compare compares two non NULL values of comparable types. Numbers are
// compared in the widest representation of both.
func Compare(a, b interface{}) (int, error) {
	switch a.(type) {
	case string:
		return sql.Text.Compare(a, b)
	case time.Time:
		return sql.Timestamp.Compare(a, b)
	case bool:
		return sql.Boolean.Compare(a, b)
	}

	_, af := a.(float64)
	_, bf := b.(float64)
	if af || bf {
		return sql.Double.Compare(a, b)
	}

	_, ad := a.(*apd.Decimal)
	_, bd := b.(*apd.Decimal)
	if ad || bd {
		x, err := sql.ToDecimal(a)
		if err != nil {
			return 0, err
		}
		y, err := sql.ToDecimal(b)
		if err != nil {
			return 0, err
		}
		return x.Cmp(y), nil
	}

	return sql.BigInt.Compare(a, b)
}
