package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

func TestTable(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	table := NewTable("mytable", sql.Schema{
		{Name: "i", Type: sql.NotNull(sql.Integer)},
		{Name: "s", Type: sql.Text},
	})

	require.Equal("mytable", table.Name())
	require.Equal("mytable", table.Schema()[0].Source)

	require.NoError(table.Insert(ctx, sql.NewRow(int64(1), "a")))
	require.NoError(table.Insert(ctx, sql.NewRow(int32(2), nil)))

	iter, err := table.RowIter(ctx)
	require.NoError(err)

	require.NoError(table.Insert(ctx, sql.NewRow(int32(3), "c")))

	rows, err := sql.RowIterToRows(iter)
	require.NoError(err)
	require.Equal([]sql.Row{
		{int32(1), "a"},
		{int32(2), nil},
	}, rows)
}

func TestTableInsertErrors(t *testing.T) {
	ctx := sql.NewEmptyContext()
	table := NewTable("mytable", sql.Schema{
		{Name: "i", Type: sql.NotNull(sql.Integer)},
	})

	testCases := []struct {
		name string
		row  sql.Row
	}{
		{"too many values", sql.NewRow(int32(1), int32(2))},
		{"null in not null column", sql.NewRow(nil)},
		{"not a number", sql.NewRow("foo")},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, table.Insert(ctx, tt.row))
		})
	}
}
