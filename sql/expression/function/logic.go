package function

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

var (
	// And is the boolean conjunction of its operands. Calls to it are
	// evaluated lazily by the call expression.
	And = newOperator("AND", 2, -1, inferLogic,
		func(_ *sql.Context, _ sql.Type, args []interface{}) (interface{}, error) {
			return evalLogic(args, false)
		},
	).withKind(sql.OpAnd).with(nullSafe)

	// Or is the boolean disjunction of its operands. Calls to it are
	// evaluated lazily by the call expression.
	Or = newOperator("OR", 2, -1, inferLogic,
		func(_ *sql.Context, _ sql.Type, args []interface{}) (interface{}, error) {
			return evalLogic(args, true)
		},
	).withKind(sql.OpOr).with(nullSafe)

	// Not negates a boolean.
	Not = newOperator("NOT", 1, 1, inferLogic,
		func(_ *sql.Context, _ sql.Type, args []interface{}) (interface{}, error) {
			return args[0] == false, nil
		},
	).withKind(sql.OpNot)

	// IsNull tests whether its operand is NULL.
	IsNull = newOperator("IS NULL", 1, 1, inferNullTest,
		func(_ *sql.Context, _ sql.Type, args []interface{}) (interface{}, error) {
			return args[0] == nil, nil
		},
	).withKind(sql.OpIsNull).with(nullSafe)

	// IsNotNull tests whether its operand is not NULL.
	IsNotNull = newOperator("IS NOT NULL", 1, 1, inferNullTest,
		func(_ *sql.Context, _ sql.Type, args []interface{}) (interface{}, error) {
			return args[0] != nil, nil
		},
	).withKind(sql.OpIsNotNull).with(nullSafe)

	// Coalesce returns its first non NULL operand.
	Coalesce = newOperator("COALESCE", 1, -1,
		func(name string, operands []sql.Type) (sql.Type, error) {
			var result sql.Type
			nullable := true
			for _, t := range operands {
				if t.Kind() == sql.KindNull {
					continue
				}
				if result == nil {
					result = t
				} else if !sql.EqualsIgnoreNullability(result, t) {
					return nil, sql.ErrInvalidOperandType.New(name, t)
				}
				if !t.Nullable() {
					nullable = false
				}
			}
			if result == nil {
				return sql.Null, nil
			}
			return result.WithNullability(nullable), nil
		},
		func(_ *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			for _, a := range args {
				if a != nil {
					return t.Convert(a)
				}
			}
			return nil, nil
		},
	).with(nullSafe)
)

func inferLogic(name string, operands []sql.Type) (sql.Type, error) {
	if err := checkBooleans(name, operands); err != nil {
		return nil, err
	}
	return booleanResult(operands), nil
}

func inferNullTest(string, []sql.Type) (sql.Type, error) {
	return sql.NotNull(sql.Boolean), nil
}

func evalLogic(args []interface{}, stop bool) (interface{}, error) {
	var hasNull bool
	for _, a := range args {
		if a == nil {
			hasNull = true
			continue
		}
		if a == stop {
			return stop, nil
		}
	}
	if hasNull {
		return nil, nil
	}
	return !stop, nil
}
