package function

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// RoutineFunc is the body of a user-defined routine.
type RoutineFunc func(ctx *sql.Context, args []interface{}) (interface{}, error)

// NewRoutine creates a user-defined routine with the given parameter and
// return types. Arguments must have exactly the type of their parameter,
// nullability aside, so callers must cast them explicitly. The body is
// called with NULL arguments too.
func NewRoutine(name string, params []sql.Type, returns sql.Type, body RoutineFunc) *Operator {
	ps := make([]sql.Type, len(params))
	copy(ps, params)

	return newOperator(name, len(ps), len(ps),
		func(name string, operands []sql.Type) (sql.Type, error) {
			for i, t := range operands {
				if !sql.EqualsIgnoreNullability(t, ps[i]) {
					return nil, sql.ErrInvalidOperandType.New(name, t)
				}
			}
			return returns, nil
		},
		func(ctx *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			v, err := body(ctx, args)
			if err != nil {
				return nil, err
			}
			return t.Convert(v)
		},
	).with(userDefined | nullSafe)
}
