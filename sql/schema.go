package sql

import (
	"reflect"
	"strings"

	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrUnexpectedType is thrown when a received type is not the expected
	ErrUnexpectedType = errors.NewKind("value at %d has unexpected type: %s")
)

// Schema is the definition of a row shape.
type Schema []*Column

// CheckRow checks the row conforms to the schema.
func (s Schema) CheckRow(row Row) error {
	expected := len(s)
	got := len(row)
	if expected != got {
		return ErrUnexpectedRowLength.New(expected, got)
	}

	for idx, f := range s {
		v := row[idx]
		if f.Check(v) {
			continue
		}

		if v == nil {
			return ErrUnexpectedType.New(idx, "NULL")
		}
		return ErrUnexpectedType.New(idx, reflect.TypeOf(v).String())
	}

	return nil
}

// Contains returns whether the schema contains a column with the given name.
func (s Schema) Contains(column string, source string) bool {
	return s.IndexOf(column, source) >= 0
}

// IndexOf returns the index of the given column in the schema or -1 if it's
// not present. An empty source matches any table.
func (s Schema) IndexOf(column, source string) int {
	for i, col := range s {
		if strings.EqualFold(col.Name, column) &&
			(source == "" || strings.EqualFold(col.Source, source)) {
			return i
		}
	}
	return -1
}

// Equals checks whether the given schema is equal to this one.
func (s Schema) Equals(s2 Schema) bool {
	if len(s) != len(s2) {
		return false
	}

	for i := range s {
		if !s[i].Equals(s2[i]) {
			return false
		}
	}

	return true
}

// Types returns the types of the columns of the schema.
func (s Schema) Types() []Type {
	types := make([]Type, len(s))
	for i, c := range s {
		types[i] = c.Type
	}
	return types
}

// RowType returns the NOT NULL row type whose fields are the columns of the
// schema.
func (s Schema) RowType() RowType {
	fields := make([]Field, len(s))
	for i, c := range s {
		fields[i] = Field{Name: c.Name, Type: c.Type}
	}
	return CreateRow(fields...).WithNullability(false).(RowType)
}
