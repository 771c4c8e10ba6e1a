package function

import (
	"math"

	"github.com/cockroachdb/apd/v3"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

var decimalContext = apd.BaseContext.WithPrecision(2 * sql.MaxDecimalPrecision)

type arithmeticOp struct {
	ints     func(a, b int64) (int64, error)
	floats   func(a, b float64) (float64, error)
	decimals func(d, a, b *apd.Decimal) (apd.Condition, error)
}

var (
	// Plus adds two numbers.
	Plus = newArithmetic("+", maxScale, arithmeticOp{
		ints: func(a, b int64) (int64, error) {
			r := a + b
			if (a > 0 && b > 0 && r < 0) || (a < 0 && b < 0 && r >= 0) {
				return 0, sql.ErrValueOutOfRange.New(float64(a)+float64(b), sql.BigInt)
			}
			return r, nil
		},
		floats:   func(a, b float64) (float64, error) { return a + b, nil },
		decimals: decimalContext.Add,
	})

	// Minus subtracts two numbers.
	Minus = newArithmetic("-", maxScale, arithmeticOp{
		ints: func(a, b int64) (int64, error) {
			r := a - b
			if (b > 0 && r > a) || (b < 0 && r < a) {
				return 0, sql.ErrValueOutOfRange.New(float64(a)-float64(b), sql.BigInt)
			}
			return r, nil
		},
		floats:   func(a, b float64) (float64, error) { return a - b, nil },
		decimals: decimalContext.Sub,
	})

	// Mult multiplies two numbers.
	Mult = newArithmetic("*", sumScale, arithmeticOp{
		ints: func(a, b int64) (int64, error) {
			r := a * b
			if a != 0 && (r/a != b || (a == -1 && b == math.MinInt64)) {
				return 0, sql.ErrValueOutOfRange.New(float64(a)*float64(b), sql.BigInt)
			}
			return r, nil
		},
		floats:   func(a, b float64) (float64, error) { return a * b, nil },
		decimals: decimalContext.Mul,
	})

	// Div divides two numbers. Integer division truncates its result.
	Div = newArithmetic("/", divScale, arithmeticOp{
		ints: func(a, b int64) (int64, error) {
			switch {
			case b == 0:
				return 0, sql.ErrDivisionByZero.New()
			case a == math.MinInt64 && b == -1:
				return 0, sql.ErrValueOutOfRange.New(-float64(a), sql.BigInt)
			}
			return a / b, nil
		},
		floats: func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, sql.ErrDivisionByZero.New()
			}
			return a / b, nil
		},
		decimals: func(d, a, b *apd.Decimal) (apd.Condition, error) {
			if b.IsZero() {
				return 0, sql.ErrDivisionByZero.New()
			}
			return decimalContext.Quo(d, a, b)
		},
	})

	// Mod returns the remainder of the division of two numbers.
	Mod = newArithmetic("%", maxScale, arithmeticOp{
		ints: func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, sql.ErrDivisionByZero.New()
			}
			if b == -1 {
				return 0, nil
			}
			return a % b, nil
		},
		floats: func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, sql.ErrDivisionByZero.New()
			}
			return math.Mod(a, b), nil
		},
		decimals: func(d, a, b *apd.Decimal) (apd.Condition, error) {
			if b.IsZero() {
				return 0, sql.ErrDivisionByZero.New()
			}
			return decimalContext.Rem(d, a, b)
		},
	})

	// Negate changes the sign of a number.
	Negate = newOperator("NEG", 1, 1,
		func(name string, operands []sql.Type) (sql.Type, error) {
			return numericType(name, operands, maxScale)
		},
		func(_ *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			return Minus.apply(nil, t, []interface{}{int64(0), args[0]})
		},
	)

	// Abs returns the absolute value of a number.
	Abs = newOperator("ABS", 1, 1,
		func(name string, operands []sql.Type) (sql.Type, error) {
			return numericType(name, operands, maxScale)
		},
		func(_ *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			cmp, err := t.Compare(args[0], int64(0))
			if err != nil {
				return nil, err
			}
			if cmp >= 0 {
				return t.Convert(args[0])
			}
			return Minus.apply(nil, t, []interface{}{int64(0), args[0]})
		},
	)
)

func divScale(scales []int) int {
	return maxScale(scales) + 6
}

func newArithmetic(name string, scale func([]int) int, op arithmeticOp) *Operator {
	return newOperator(name, 2, 2,
		func(name string, operands []sql.Type) (sql.Type, error) {
			return numericType(name, operands, scale)
		},
		func(_ *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			return op.eval(t, args[0], args[1])
		},
	)
}

func (op arithmeticOp) eval(t sql.Type, left, right interface{}) (interface{}, error) {
	switch t.Kind() {
	case sql.KindInteger, sql.KindBigInt:
		a, err := sql.BigInt.Convert(left)
		if err != nil {
			return nil, err
		}
		b, err := sql.BigInt.Convert(right)
		if err != nil {
			return nil, err
		}
		r, err := op.ints(a.(int64), b.(int64))
		if err != nil {
			return nil, err
		}
		return t.Convert(r)
	case sql.KindDouble:
		a, err := sql.Double.Convert(left)
		if err != nil {
			return nil, err
		}
		b, err := sql.Double.Convert(right)
		if err != nil {
			return nil, err
		}
		r, err := op.floats(a.(float64), b.(float64))
		if err != nil {
			return nil, err
		}
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return nil, sql.ErrValueOutOfRange.New(r, t)
		}
		return r, nil
	case sql.KindDecimal:
		a, err := sql.ToDecimal(left)
		if err != nil {
			return nil, err
		}
		b, err := sql.ToDecimal(right)
		if err != nil {
			return nil, err
		}
		var r apd.Decimal
		if _, err := op.decimals(&r, a, b); err != nil {
			return nil, err
		}
		return t.Convert(&r)
	}
	return nil, sql.ErrInvalidType.New(t.String())
}
