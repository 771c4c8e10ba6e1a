package function

import (
	"math/rand"

	uuid "github.com/satori/go.uuid"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

var (
	// Rand returns a random number in [0, 1).
	Rand = newOperator("RAND", 0, 0,
		func(string, []sql.Type) (sql.Type, error) {
			return sql.NotNull(sql.Double), nil
		},
		func(*sql.Context, sql.Type, []interface{}) (interface{}, error) {
			return rand.Float64(), nil
		},
	).with(nonDeterministic)

	// UUID returns a new random UUID.
	UUID = newOperator("UUID", 0, 0,
		func(string, []sql.Type) (sql.Type, error) {
			return sql.NotNull(sql.MustCreateStringType(sql.KindChar, 36)), nil
		},
		func(*sql.Context, sql.Type, []interface{}) (interface{}, error) {
			id, err := uuid.NewV4()
			if err != nil {
				return nil, err
			}
			return id.String(), nil
		},
	).with(nonDeterministic)
)
