package sql

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/src-d/go-errors.v1"
)

const (
	// DateLayout is the layout of the date format in the representation
	// Go understands.
	DateLayout = "2006-01-02"

	// TimestampLayout is the formatting string with the layout of the
	// timestamp using the format of Go "time" package.
	TimestampLayout = "2006-01-02 15:04:05.999999"
)

var (
	// ErrConvertingToTime is thrown when a value cannot be converted to a Time
	ErrConvertingToTime = errors.NewKind("value %q can't be converted to time.Time")

	// TimestampLayouts hold the layouts allowed for parsing.
	TimestampLayouts = []string{
		TimestampLayout,
		DateLayout,
		time.RFC3339,
		"20060102150405",
		"20060102",
	}

	// Date is a nullable date with day, month and year.
	Date = MustCreateDatetimeType(KindDate)
	// Timestamp is a nullable date and time.
	Timestamp = MustCreateDatetimeType(KindTimestamp)
)

type datetimeType struct {
	kind     Kind
	nullable bool
}

// CreateDatetimeType creates a nullable DATE or TIMESTAMP type.
func CreateDatetimeType(kind Kind) (Type, error) {
	if !kind.IsDatetime() {
		return nil, ErrInvalidType.New(kind.String() + " is not a valid datetime type")
	}
	return datetimeType{kind: kind, nullable: true}, nil
}

// MustCreateDatetimeType is the same as CreateDatetimeType except it panics on errors.
func MustCreateDatetimeType(kind Kind) Type {
	t, err := CreateDatetimeType(kind)
	if err != nil {
		panic(err)
	}
	return t
}

func (t datetimeType) String() string { return t.kind.String() + nullSuffix(t.nullable) }
func (t datetimeType) Kind() Kind     { return t.kind }
func (t datetimeType) Nullable() bool { return t.nullable }

func (t datetimeType) WithNullability(nullable bool) Type {
	t.nullable = nullable
	return t
}

func (t datetimeType) Equals(o Type) bool {
	d, ok := o.(datetimeType)
	return ok && d == t
}

// Convert implements Type interface. All times are returned in UTC and
// dates are truncated to the day.
func (t datetimeType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	var tt time.Time
	switch v := v.(type) {
	case time.Time:
		tt = v.UTC()
	case string:
		parsed, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		tt = parsed
	default:
		ct, err := cast.ToTimeE(v)
		if err != nil {
			return nil, ErrConvertingToTime.New(fmt.Sprint(v))
		}
		tt = ct.UTC()
	}

	if t.kind == KindDate {
		tt = truncateDate(tt)
	}
	return tt, nil
}

// Compare implements Type interface.
func (t datetimeType) Compare(a, b interface{}) (int, error) {
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

	at, bt := av.(time.Time), bv.(time.Time)
	switch {
	case at.Before(bt):
		return -1, nil
	case at.After(bt):
		return 1, nil
	}
	return 0, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrConvertingToTime.New(s)
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
