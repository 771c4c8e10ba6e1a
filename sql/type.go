package sql

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"github.com/spf13/cast"
)

// Kind is the family a type belongs to.
type Kind byte

const (
	// KindNull is the type of the NULL literal.
	KindNull Kind = iota
	// KindBoolean holds bool values.
	KindBoolean
	// KindInteger holds int32 values.
	KindInteger
	// KindBigInt holds int64 values.
	KindBigInt
	// KindDouble holds float64 values.
	KindDouble
	// KindDecimal holds *apd.Decimal values.
	KindDecimal
	// KindChar holds fixed length string values.
	KindChar
	// KindVarchar holds variable length string values.
	KindVarchar
	// KindDate holds time.Time values truncated to the day.
	KindDate
	// KindTimestamp holds time.Time values.
	KindTimestamp
	// KindRow holds Row values.
	KindRow
)

var kindNames = [...]string{
	KindNull:      "NULL",
	KindBoolean:   "BOOLEAN",
	KindInteger:   "INTEGER",
	KindBigInt:    "BIGINT",
	KindDouble:    "DOUBLE",
	KindDecimal:   "DECIMAL",
	KindChar:      "CHAR",
	KindVarchar:   "VARCHAR",
	KindDate:      "DATE",
	KindTimestamp: "TIMESTAMP",
	KindRow:       "ROW",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsNumeric returns whether the kind holds numbers.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindBigInt || k == KindDouble || k == KindDecimal
}

// IsString returns whether the kind holds strings.
func (k Kind) IsString() bool {
	return k == KindChar || k == KindVarchar
}

// IsDatetime returns whether the kind holds times.
func (k Kind) IsDatetime() bool {
	return k == KindDate || k == KindTimestamp
}

// Type represents a SQL type. Nullability is part of the type, so two types
// that only differ in their nullability are not equal.
type Type interface {
	fmt.Stringer
	// Kind returns the family of the type.
	Kind() Kind
	// Nullable returns whether values of the type can be NULL.
	Nullable() bool
	// WithNullability returns the same type with the given nullability.
	WithNullability(nullable bool) Type
	// Equals returns whether both types are exactly the same.
	Equals(Type) bool
	// Convert a value of a compatible type to a value of this type.
	Convert(interface{}) (interface{}, error)
	// Compare returns an integer comparing two values.
	// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
	Compare(a, b interface{}) (int, error)
}

var (
	// Null is the type of the NULL literal.
	Null Type = nullType{}
	// Boolean is a nullable BOOLEAN.
	Boolean Type = booleanType{nullable: true}
)

// NotNull returns the given type marked as NOT NULL.
func NotNull(t Type) Type {
	return t.WithNullability(false)
}

// EqualsIgnoreNullability returns whether both types are the same once their
// nullability is not taken into account.
func EqualsIgnoreNullability(a, b Type) bool {
	return a.WithNullability(true).Equals(b.WithNullability(true))
}

// CanCast returns whether values of type from can be cast to type to.
func CanCast(from, to Type) bool {
	f, t := from.Kind(), to.Kind()
	switch {
	case f == KindNull:
		return true
	case f == KindRow || t == KindRow:
		if f != t {
			return false
		}
		ff, tf := from.(RowType).Fields(), to.(RowType).Fields()
		if len(ff) != len(tf) {
			return false
		}
		for i := range ff {
			if !CanCast(ff[i].Type, tf[i].Type) {
				return false
			}
		}
		return true
	case f == t:
		return true
	case f.IsNumeric():
		return t.IsNumeric() || t.IsString() || t == KindBoolean
	case f.IsString():
		return t.IsString() || t.IsNumeric() || t.IsDatetime() || t == KindBoolean
	case f.IsDatetime():
		return t.IsString() || t.IsDatetime()
	case f == KindBoolean:
		return t.IsString() || t.IsNumeric()
	}
	return false
}

// LiteralType returns the type of a literal holding v, which was computed
// by an expression of type like. Strings get a CHAR type of their exact
// length and non NULL values are NOT NULL.
func LiteralType(v interface{}, like Type) Type {
	if v == nil {
		return like.WithNullability(true)
	}

	if s, ok := v.(string); ok && like.Kind().IsString() {
		if n := utf8.RuneCountInString(s); n > 0 && n <= maxStringLength {
			return stringType{kind: KindChar, length: n}
		}
	}

	return like.WithNullability(false)
}

func nullSuffix(nullable bool) string {
	if nullable {
		return ""
	}
	return " NOT NULL"
}

// compareNulls orders NULL before any other value. It returns ok = false if
// none of the values is NULL.
func compareNulls(a, b interface{}) (cmp int, ok bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return -1, true
	case b == nil:
		return 1, true
	}
	return 0, false
}

type nullType struct{}

func (nullType) String() string                { return "NULL" }
func (nullType) Kind() Kind                    { return KindNull }
func (nullType) Nullable() bool                { return true }
func (t nullType) WithNullability(bool) Type   { return t }
func (nullType) Compare(interface{}, interface{}) (int, error) { return 0, nil }

func (nullType) Equals(o Type) bool {
	_, ok := o.(nullType)
	return ok
}

func (t nullType) Convert(v interface{}) (interface{}, error) {
	if v != nil {
		return nil, ErrInvalidCast.New(fmt.Sprint(v), t)
	}
	return nil, nil
}

type booleanType struct {
	nullable bool
}

func (t booleanType) String() string { return "BOOLEAN" + nullSuffix(t.nullable) }
func (booleanType) Kind() Kind       { return KindBoolean }
func (t booleanType) Nullable() bool { return t.nullable }

func (t booleanType) WithNullability(nullable bool) Type {
	return booleanType{nullable: nullable}
}

func (t booleanType) Equals(o Type) bool {
	b, ok := o.(booleanType)
	return ok && b.nullable == t.nullable
}

func (t booleanType) Convert(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case int32:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case *apd.Decimal:
		return !v.IsZero(), nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, ErrInvalidCast.New(strconv.Quote(v), t)
		}
		return b, nil
	}

	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, ErrInvalidCast.New(fmt.Sprint(v), t)
	}
	return b, nil
}

func (t booleanType) Compare(a, b interface{}) (int, error) {
	if cmp, ok := compareNulls(a, b); ok {
		return cmp, nil
	}

	av, err := t.Convert(a)
	if err != nil {
		return 0, err
	}
	bv, err := t.Convert(b)
	if err != nil {
		return 0, err
	}

	switch {
	case av == bv:
		return 0, nil
	case av == false:
		return -1, nil
	default:
		return 1, nil
	}
}
