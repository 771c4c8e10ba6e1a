package sql

import (
	"strings"

	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrNotRow is returned when a value is not a row.
	ErrNotRow = errors.NewKind("value of type %T is not a row")
	// ErrInvalidRowLength is returned when a row value does not have the
	// number of fields of its type.
	ErrInvalidRowLength = errors.NewKind("row should have %d fields, but has %d")
)

// Field is a named and typed member of a row type.
type Field struct {
	Name string
	Type Type
}

// RowType is the type of a row value, made of an ordered list of fields.
type RowType interface {
	Type
	// Fields returns the fields of the row type.
	Fields() []Field
	// FieldIndex returns the position of the field with the given name or
	// -1 if it does not exist.
	FieldIndex(name string) int
}

type rowType struct {
	fields   []Field
	nullable bool
}

// CreateRow creates a nullable row type with the given fields.
func CreateRow(fields ...Field) RowType {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return rowType{fields: fs, nullable: true}
}

func (t rowType) Fields() []Field {
	fs := make([]Field, len(t.fields))
	copy(fs, t.fields)
	return fs
}

func (t rowType) FieldIndex(name string) int {
	for i, f := range t.fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

func (rowType) Kind() Kind       { return KindRow }
func (t rowType) Nullable() bool { return t.nullable }

func (t rowType) WithNullability(nullable bool) Type {
	return rowType{fields: t.fields, nullable: nullable}
}

func (t rowType) Equals(o Type) bool {
	r, ok := o.(rowType)
	if !ok || r.nullable != t.nullable || len(r.fields) != len(t.fields) {
		return false
	}
	for i, f := range t.fields {
		if f.Name != r.fields[i].Name || !f.Type.Equals(r.fields[i].Type) {
			return false
		}
	}
	return true
}

func (t rowType) String() string {
	var b strings.Builder
	b.WriteString("ROW(")
	for i, f := range t.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(" ")
		b.WriteString(f.Type.String())
	}
	b.WriteString(")")
	b.WriteString(nullSuffix(t.nullable))
	return b.String()
}

// Convert implements Type interface.
func (t rowType) Convert(v interface{}) (interface{}, error) {
	var vals []interface{}
	switch v := v.(type) {
	case nil:
		return nil, nil
	case Row:
		vals = v
	case []interface{}:
		vals = v
	default:
		return nil, ErrNotRow.New(v)
	}

	if len(vals) != len(t.fields) {
		return nil, ErrInvalidRowLength.New(len(t.fields), len(vals))
	}

	result := make(Row, len(vals))
	for i, f := range t.fields {
		var err error
		result[i], err = f.Type.Convert(vals[i])
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Compare implements Type interface.
func (t rowType) Compare(a, b interface{}) (int, error) {
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

	left, right := av.(Row), bv.(Row)
	for i, f := range t.fields {
		cmp, err := f.Type.Compare(left[i], right[i])
		if err != nil {
			return 0, err
		}
		if cmp != 0 {
			return cmp, nil
		}
	}
	return 0, nil
}
