package parse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

func TestParseColumnType(t *testing.T) {
	testCases := []struct {
		input    string
		expected sql.Type
	}{
		{"INTEGER", sql.Integer},
		{"int(11)", sql.Integer},
		{"bigint not null", sql.NotNull(sql.BigInt)},
		{"bool", sql.Boolean},
		{"BOOLEAN NOT NULL", sql.NotNull(sql.Boolean)},
		{"double", sql.Double},
		{"varchar(20)", sql.MustCreateStringType(sql.KindVarchar, 20)},
		{"varchar(10) not null", sql.NotNull(sql.MustCreateStringType(sql.KindVarchar, 10))},
		{"CHAR(2)", sql.MustCreateStringType(sql.KindChar, 2)},
		{"char", sql.MustCreateStringType(sql.KindChar, 1)},
		{"text", sql.Text},
		{"decimal(10, 2)", sql.MustCreateDecimalType(10, 2)},
		{"decimal", sql.MustCreateDecimalType(10, 0)},
		{"numeric(5) null", sql.MustCreateDecimalType(5, 0)},
		{"date", sql.Date},
		{"datetime", sql.Timestamp},
		{"timestamp not null", sql.NotNull(sql.Timestamp)},
	}

	for _, tt := range testCases {
		t.Run(tt.input, func(t *testing.T) {
			typ, err := ParseColumnType(tt.input)
			require.NoError(t, err)
			require.True(t, tt.expected.Equals(typ), "expected %s, got %s", tt.expected, typ)
		})
	}
}

func TestParseColumnTypeErrors(t *testing.T) {
	testCases := []struct {
		input string
		err   func(error) bool
	}{
		{"", ErrInvalidColumnType.Is},
		{"varchar(10) garbage", ErrInvalidColumnType.Is},
		{"int, d int", ErrInvalidColumnType.Is},
		{"int) engine=innodb", ErrInvalidColumnType.Is},
		{"int default 1", ErrInvalidColumnType.Is},
		{"int auto_increment", ErrInvalidColumnType.Is},
		{"varchar", ErrInvalidColumnType.Is},
		{"decimal(10,2) unsigned", ErrUnsupportedFeature.Is},
		{"int unsigned", ErrUnsupportedFeature.Is},
		{"varchar(10) character set utf8", ErrUnsupportedFeature.Is},
		{"tinyint", ErrUnsupportedFeature.Is},
		{"double(10, 2)", ErrUnsupportedFeature.Is},
		{"datetime(6)", ErrUnsupportedFeature.Is},
		{"blob", ErrUnsupportedFeature.Is},
	}

	for _, tt := range testCases {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseColumnType(tt.input)
			require.Error(t, err)
			require.True(t, tt.err(err), "unexpected error: %s", err)
		})
	}
}
