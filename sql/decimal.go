package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

const (
	// MaxDecimalPrecision is the maximum number of digits of a DECIMAL.
	MaxDecimalPrecision = 38
)

// decimalContext is used for intermediate decimal arithmetic; results are
// rounded to their type afterwards.
var decimalContext = apd.BaseContext.WithPrecision(2 * MaxDecimalPrecision)

// DecimalType is a DECIMAL(precision, scale) type.
type DecimalType interface {
	Type
	Precision() int
	Scale() int
}

type decimalType struct {
	precision int
	scale     int
	nullable  bool
}

// CreateDecimalType creates a nullable DECIMAL(precision, scale).
func CreateDecimalType(precision, scale int) (DecimalType, error) {
	if precision < 1 || precision > MaxDecimalPrecision || scale < 0 || scale > precision {
		return nil, ErrInvalidDecimal.New(precision, scale)
	}
	return decimalType{precision: precision, scale: scale, nullable: true}, nil
}

// MustCreateDecimalType is the same as CreateDecimalType except it panics on errors.
func MustCreateDecimalType(precision, scale int) DecimalType {
	t, err := CreateDecimalType(precision, scale)
	if err != nil {
		panic(err)
	}
	return t
}

func (t decimalType) String() string {
	return fmt.Sprintf("DECIMAL(%d, %d)%s", t.precision, t.scale, nullSuffix(t.nullable))
}

func (decimalType) Kind() Kind        { return KindDecimal }
func (t decimalType) Nullable() bool  { return t.nullable }
func (t decimalType) Precision() int  { return t.precision }
func (t decimalType) Scale() int      { return t.scale }

func (t decimalType) WithNullability(nullable bool) Type {
	t.nullable = nullable
	return t
}

func (t decimalType) Equals(o Type) bool {
	d, ok := o.(decimalType)
	return ok && d == t
}

// Convert implements Type interface. The value is rounded to the scale of
// the type and it's an error if it does not fit in its precision.
func (t decimalType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	d, err := toDecimal(v)
	if err != nil {
		return nil, ErrInvalidCast.New(fmt.Sprint(v), t)
	}

	var r apd.Decimal
	c := apd.BaseContext.WithPrecision(uint32(t.precision))
	if _, err := c.Quantize(&r, d, -int32(t.scale)); err != nil {
		return nil, ErrValueOutOfRange.New(d.String(), t)
	}
	if r.NumDigits() > int64(t.precision) {
		return nil, ErrValueOutOfRange.New(d.String(), t)
	}
	return &r, nil
}

// Compare implements Type interface.
func (t decimalType) Compare(a, b interface{}) (int, error) {
	if cmp, ok := compareNulls(a, b); ok {
		return cmp, nil
	}

	ad, err := toDecimal(a)
	if err != nil {
		return 0, err
	}
	bd, err := toDecimal(b)
	if err != nil {
		return 0, err
	}
	return ad.Cmp(bd), nil
}

// ToDecimal converts a numeric, boolean or string value to a decimal.
func ToDecimal(v interface{}) (*apd.Decimal, error) {
	return toDecimal(v)
}

func toDecimal(v interface{}) (*apd.Decimal, error) {
	switch v := v.(type) {
	case *apd.Decimal:
		return v, nil
	case apd.Decimal:
		return &v, nil
	case int32:
		return apd.New(int64(v), 0), nil
	case int64:
		return apd.New(v, 0), nil
	case int:
		return apd.New(int64(v), 0), nil
	case bool:
		if v {
			return apd.New(1, 0), nil
		}
		return apd.New(0, 0), nil
	case float64:
		return new(apd.Decimal).SetFloat64(v)
	case string:
		d, _, err := apd.NewFromString(strings.TrimSpace(v))
		return d, err
	}

	f, err := toFloat64(v)
	if err != nil {
		return nil, ErrInvalidType.New(strconv.Quote(fmt.Sprintf("%T", v)))
	}
	return new(apd.Decimal).SetFloat64(f)
}
