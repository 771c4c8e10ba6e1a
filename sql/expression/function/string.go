package function

import (
	"strings"
	"unicode/utf8"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

var (
	// Upper converts a string to upper case.
	Upper = newOperator("UPPER", 1, 1, inferSameString,
		func(_ *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			return t.Convert(strings.ToUpper(args[0].(string)))
		},
	)

	// Lower converts a string to lower case.
	Lower = newOperator("LOWER", 1, 1, inferSameString,
		func(_ *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			return t.Convert(strings.ToLower(args[0].(string)))
		},
	)

	// Trim removes leading and trailing spaces of a string.
	Trim = newOperator("TRIM", 1, 1,
		func(name string, operands []sql.Type) (sql.Type, error) {
			if err := checkStrings(name, operands); err != nil {
				return nil, err
			}
			return varchar(stringLength(operands[0]), operands[0].Nullable()), nil
		},
		func(_ *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			return t.Convert(strings.TrimSpace(args[0].(string)))
		},
	)

	// Concat concatenates strings.
	Concat = newOperator("CONCAT", 1, -1,
		func(name string, operands []sql.Type) (sql.Type, error) {
			if err := checkStrings(name, operands); err != nil {
				return nil, err
			}
			var length int
			for _, t := range operands {
				length += stringLength(t)
			}
			return varchar(length, anyNullable(operands)), nil
		},
		func(_ *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			var b strings.Builder
			for _, a := range args {
				b.WriteString(a.(string))
			}
			return t.Convert(b.String())
		},
	)

	// Substring returns the part of a string starting at a 1-based position,
	// with an optional maximum length.
	Substring = newOperator("SUBSTRING", 2, 3,
		func(name string, operands []sql.Type) (sql.Type, error) {
			if err := checkStrings(name, operands[:1]); err != nil {
				return nil, err
			}
			for _, t := range operands[1:] {
				if !isInteger(t) {
					return nil, sql.ErrInvalidOperandType.New(name, t)
				}
			}
			return varchar(stringLength(operands[0]), anyNullable(operands)), nil
		},
		func(_ *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
			runes := []rune(args[0].(string))
			start, err := sql.BigInt.Convert(args[1])
			if err != nil {
				return nil, err
			}

			from := int(start.(int64)) - 1
			if from < 0 {
				from = 0
			}
			if from > len(runes) {
				from = len(runes)
			}

			to := len(runes)
			if len(args) == 3 {
				n, err := sql.BigInt.Convert(args[2])
				if err != nil {
					return nil, err
				}
				if l := int(n.(int64)); l < 0 {
					to = from
				} else if from+l < to {
					to = from + l
				}
			}

			return t.Convert(string(runes[from:to]))
		},
	)

	// Length returns the number of characters of a string.
	Length = newOperator("CHAR_LENGTH", 1, 1,
		func(name string, operands []sql.Type) (sql.Type, error) {
			if err := checkStrings(name, operands); err != nil {
				return nil, err
			}
			return sql.Integer.WithNullability(operands[0].Nullable()), nil
		},
		func(_ *sql.Context, _ sql.Type, args []interface{}) (interface{}, error) {
			return int32(utf8.RuneCountInString(args[0].(string))), nil
		},
	)
)

func inferSameString(name string, operands []sql.Type) (sql.Type, error) {
	if err := checkStrings(name, operands); err != nil {
		return nil, err
	}
	if operands[0].Kind() == sql.KindNull {
		return varchar(1, true), nil
	}
	return operands[0], nil
}

func isInteger(t sql.Type) bool {
	k := t.Kind()
	return k == sql.KindInteger || k == sql.KindBigInt || k == sql.KindNull
}
