package sql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/spf13/cast"
)

var (
	// Integer is a nullable 32 bit integer.
	Integer = MustCreateNumberType(KindInteger)
	// BigInt is a nullable 64 bit integer.
	BigInt = MustCreateNumberType(KindBigInt)
	// Double is a nullable 64 bit floating point number.
	Double = MustCreateNumberType(KindDouble)
)

type numberType struct {
	kind     Kind
	nullable bool
}

// CreateNumberType creates a nullable INTEGER, BIGINT or DOUBLE type.
func CreateNumberType(kind Kind) (Type, error) {
	switch kind {
	case KindInteger, KindBigInt, KindDouble:
		return numberType{kind: kind, nullable: true}, nil
	}
	return nil, ErrInvalidType.New(kind.String() + " is not a valid number type")
}

// MustCreateNumberType is the same as CreateNumberType except it panics on errors.
func MustCreateNumberType(kind Kind) Type {
	t, err := CreateNumberType(kind)
	if err != nil {
		panic(err)
	}
	return t
}

func (t numberType) String() string { return t.kind.String() + nullSuffix(t.nullable) }
func (t numberType) Kind() Kind     { return t.kind }
func (t numberType) Nullable() bool { return t.nullable }

func (t numberType) WithNullability(nullable bool) Type {
	return numberType{kind: t.kind, nullable: nullable}
}

func (t numberType) Equals(o Type) bool {
	n, ok := o.(numberType)
	return ok && n.kind == t.kind && n.nullable == t.nullable
}

// Convert implements Type interface.
func (t numberType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	if t.kind == KindDouble {
		f, err := toFloat64(v)
		if err != nil {
			return nil, ErrInvalidCast.New(fmt.Sprint(v), t)
		}
		return f, nil
	}

	i, err := toInt64(v)
	if err != nil {
		if ErrValueOutOfRange.Is(err) {
			return nil, ErrValueOutOfRange.New(v, t)
		}
		return nil, ErrInvalidCast.New(fmt.Sprint(v), t)
	}

	if t.kind == KindInteger {
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, ErrValueOutOfRange.New(v, t)
		}
		return int32(i), nil
	}
	return i, nil
}

// Compare implements Type interface.
func (t numberType) Compare(a, b interface{}) (int, error) {
	if cmp, ok := compareNulls(a, b); ok {
		return cmp, nil
	}

	if t.kind == KindDouble {
		af, err := toFloat64(a)
		if err != nil {
			return 0, err
		}
		bf, err := toFloat64(b)
		if err != nil {
			return 0, err
		}
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		}
		return 0, nil
	}

	ai, err := toInt64(a)
	if err != nil {
		return 0, err
	}
	bi, err := toInt64(b)
	if err != nil {
		return 0, err
	}
	switch {
	case ai < bi:
		return -1, nil
	case ai > bi:
		return 1, nil
	}
	return 0, nil
}

func toInt64(v interface{}) (int64, error) {
	switch v := v.(type) {
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case *apd.Decimal:
		var r apd.Decimal
		if _, err := decimalContext.RoundToIntegralValue(&r, v); err != nil {
			return 0, err
		}
		i, err := r.Int64()
		if err != nil {
			return 0, ErrValueOutOfRange.New(v, BigInt)
		}
		return i, nil
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return floatToInt64(f)
	case time.Time:
		return v.Unix(), nil
	}
	return cast.ToInt64E(v)
}

func floatToInt64(f float64) (int64, error) {
	r := math.Round(f)
	if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
		return 0, ErrValueOutOfRange.New(f, BigInt)
	}
	return int64(r), nil
}

func toFloat64(v interface{}) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case *apd.Decimal:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case time.Time:
		return float64(v.UnixNano()) / float64(time.Second), nil
	}
	return cast.ToFloat64E(v)
}
