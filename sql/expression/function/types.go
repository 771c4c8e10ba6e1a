package function

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// anyNullable returns whether any of the types is nullable.
func anyNullable(types []sql.Type) bool {
	for _, t := range types {
		if t.Nullable() {
			return true
		}
	}
	return false
}

var numericRank = map[sql.Kind]int{
	sql.KindInteger: 0,
	sql.KindBigInt:  1,
	sql.KindDecimal: 2,
	sql.KindDouble:  3,
}

// numericType returns the type able to hold the result of an arithmetic
// operation over the given operands. scale computes the scale of decimal
// results from the scales of the operands.
func numericType(name string, operands []sql.Type, scale func(scales []int) int) (sql.Type, error) {
	kind := sql.KindInteger
	var scales []int
	for _, t := range operands {
		switch {
		case t.Kind() == sql.KindNull:
			continue
		case !t.Kind().IsNumeric():
			return nil, sql.ErrInvalidOperandType.New(name, t)
		}

		if numericRank[t.Kind()] > numericRank[kind] {
			kind = t.Kind()
		}

		if d, ok := t.(sql.DecimalType); ok {
			scales = append(scales, d.Scale())
		} else {
			scales = append(scales, 0)
		}
	}

	var result sql.Type
	if kind == sql.KindDecimal {
		s := scale(scales)
		if s > sql.MaxDecimalPrecision/2 {
			s = sql.MaxDecimalPrecision / 2
		}
		result = sql.MustCreateDecimalType(sql.MaxDecimalPrecision, s)
	} else {
		result = sql.MustCreateNumberType(kind)
	}
	return result.WithNullability(anyNullable(operands)), nil
}

func maxScale(scales []int) int {
	var m int
	for _, s := range scales {
		if s > m {
			m = s
		}
	}
	return m
}

func sumScale(scales []int) int {
	var m int
	for _, s := range scales {
		m += s
	}
	return m
}

// canCompare returns whether values of both types can be compared.
func canCompare(a, b sql.Type) bool {
	ak, bk := a.Kind(), b.Kind()
	switch {
	case ak == sql.KindNull || bk == sql.KindNull:
		return true
	case ak.IsNumeric():
		return bk.IsNumeric()
	case ak.IsString():
		return bk.IsString()
	case ak.IsDatetime():
		return bk.IsDatetime()
	}
	return ak == bk && ak != sql.KindRow
}

// booleanResult is the type of predicates that are NULL when any of their
// operands is NULL.
func booleanResult(operands []sql.Type) sql.Type {
	return sql.Boolean.WithNullability(anyNullable(operands))
}

func checkBooleans(name string, operands []sql.Type) error {
	for _, t := range operands {
		if t.Kind() != sql.KindBoolean && t.Kind() != sql.KindNull {
			return sql.ErrInvalidOperandType.New(name, t)
		}
	}
	return nil
}

func checkStrings(name string, operands []sql.Type) error {
	for _, t := range operands {
		if !t.Kind().IsString() && t.Kind() != sql.KindNull {
			return sql.ErrInvalidOperandType.New(name, t)
		}
	}
	return nil
}

// stringLength returns the maximum length of the strings of type t.
func stringLength(t sql.Type) int {
	if s, ok := t.(sql.StringType); ok {
		return s.Length()
	}
	return 0
}

// varchar returns a VARCHAR of the given length with the given
// nullability, capping the length to the maximum allowed.
func varchar(length int, nullable bool) sql.Type {
	if length < 1 {
		length = 1
	}
	if length > sql.Text.Length() {
		length = sql.Text.Length()
	}
	return sql.MustCreateStringType(sql.KindVarchar, length).WithNullability(nullable)
}
