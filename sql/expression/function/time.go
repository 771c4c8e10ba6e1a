package function

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

var (
	// CurrentTimestamp returns the time the query started at.
	CurrentTimestamp = newOperator("CURRENT_TIMESTAMP", 0, 0,
		func(string, []sql.Type) (sql.Type, error) {
			return sql.NotNull(sql.Timestamp), nil
		},
		func(ctx *sql.Context, t sql.Type, _ []interface{}) (interface{}, error) {
			return t.Convert(ctx.QueryTime())
		},
	).with(dynamic)

	// CurrentDate returns the day the query started at.
	CurrentDate = newOperator("CURRENT_DATE", 0, 0,
		func(string, []sql.Type) (sql.Type, error) {
			return sql.NotNull(sql.Date), nil
		},
		func(ctx *sql.Context, t sql.Type, _ []interface{}) (interface{}, error) {
			return t.Convert(ctx.QueryTime())
		},
	).with(dynamic)

	// CurrentUser returns the user of the session running the query.
	CurrentUser = newOperator("CURRENT_USER", 0, 0,
		func(string, []sql.Type) (sql.Type, error) {
			return varchar(128, false), nil
		},
		func(ctx *sql.Context, t sql.Type, _ []interface{}) (interface{}, error) {
			var user string
			if ctx.Session != nil {
				user = ctx.Client().User
			}
			return t.Convert(user)
		},
	).with(dynamic)
)
