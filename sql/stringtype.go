package sql

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"github.com/spf13/cast"
)

const maxStringLength = 65535

var (
	// Text is a nullable VARCHAR of the maximum length.
	Text = MustCreateStringType(KindVarchar, maxStringLength)
)

// StringType is a CHAR(n) or VARCHAR(n) type.
type StringType interface {
	Type
	Length() int
}

type stringType struct {
	kind     Kind
	length   int
	nullable bool
}

// CreateStringType creates a nullable CHAR or VARCHAR type of the given length.
func CreateStringType(kind Kind, length int) (StringType, error) {
	if !kind.IsString() {
		return nil, ErrInvalidType.New(kind.String() + " is not a valid string type")
	}
	if length < 1 || length > maxStringLength {
		return nil, ErrInvalidStringLength.New(length, kind)
	}
	return stringType{kind: kind, length: length, nullable: true}, nil
}

// MustCreateStringType is the same as CreateStringType except it panics on errors.
func MustCreateStringType(kind Kind, length int) StringType {
	t, err := CreateStringType(kind, length)
	if err != nil {
		panic(err)
	}
	return t
}

func (t stringType) String() string {
	return fmt.Sprintf("%s(%d)%s", t.kind, t.length, nullSuffix(t.nullable))
}

func (t stringType) Kind() Kind     { return t.kind }
func (t stringType) Nullable() bool { return t.nullable }
func (t stringType) Length() int    { return t.length }

func (t stringType) WithNullability(nullable bool) Type {
	t.nullable = nullable
	return t
}

func (t stringType) Equals(o Type) bool {
	s, ok := o.(stringType)
	return ok && s == t
}

// Convert implements Type interface. Longer values are truncated to the
// length of the type and CHAR values are padded with spaces.
func (t stringType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	s, err := toString(v)
	if err != nil {
		return nil, ErrInvalidCast.New(fmt.Sprint(v), t)
	}

	n := utf8.RuneCountInString(s)
	if n > t.length {
		s = string([]rune(s)[:t.length])
	} else if t.kind == KindChar && n < t.length {
		s += strings.Repeat(" ", t.length-n)
	}
	return s, nil
}

// Compare implements Type interface.
func (t stringType) Compare(a, b interface{}) (int, error) {
	if cmp, ok := compareNulls(a, b); ok {
		return cmp, nil
	}

	as, err := toString(a)
	if err != nil {
		return 0, err
	}
	bs, err := toString(b)
	if err != nil {
		return 0, err
	}
	if t.kind == KindChar {
		as, bs = strings.TrimRight(as, " "), strings.TrimRight(bs, " ")
	}
	return strings.Compare(as, bs), nil
}

func toString(v interface{}) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case *apd.Decimal:
		return v.Text('f'), nil
	case time.Time:
		return v.Format(TimestampLayout), nil
	}
	return cast.ToStringE(v)
}
