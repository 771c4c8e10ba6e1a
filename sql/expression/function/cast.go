package function

import (
	"fmt"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
)

var (
	// Cast converts its operand to the type of the call. Calls to it must
	// be created with NewCast.
	Cast = newOperator("CAST", 1, 1, nil,
		func(_ *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			return t.Convert(args[0])
		},
	).withKind(sql.OpCast)

	// Row builds a row value out of its operands.
	Row = newOperator("ROW", 1, -1,
		func(_ string, operands []sql.Type) (sql.Type, error) {
			fields := make([]sql.Field, len(operands))
			for i, t := range operands {
				fields[i] = sql.Field{Name: fmt.Sprintf("EXPR$%d", i), Type: t}
			}
			return sql.CreateRow(fields...).WithNullability(false), nil
		},
		func(_ *sql.Context, _ sql.Type, args []interface{}) (interface{}, error) {
			return sql.NewRow(args...), nil
		},
	).withKind(sql.OpRow).with(nullSafe)
)

// NewCast creates a call converting e to the given type. The nullability
// of the result is exactly the one of typ.
func NewCast(e sql.Expression, typ sql.Type) (*expression.Call, error) {
	if !sql.CanCast(e.Type(), typ) {
		return nil, sql.ErrInvalidCast.New(e.Type(), typ)
	}
	return expression.NewCallWithType(Cast, typ, e), nil
}

// MustCast is the same as NewCast except it panics on errors.
func MustCast(e sql.Expression, typ sql.Type) *expression.Call {
	c, err := NewCast(e, typ)
	if err != nil {
		panic(err)
	}
	return c
}
