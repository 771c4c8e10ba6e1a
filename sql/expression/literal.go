package expression

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// Literal represents a literal expression (string, number, bool, ...).
type Literal struct {
	value interface{}
	typ   sql.Type
}

var _ sql.Expression = (*Literal)(nil)

// NewLiteral creates a new Literal expression. The value must already be a
// value of the given type.
func NewLiteral(value interface{}, typ sql.Type) *Literal {
	return &Literal{value: value, typ: typ}
}

// NewNullLiteral creates a NULL literal of the given type.
func NewNullLiteral(typ sql.Type) *Literal {
	return NewLiteral(nil, typ.WithNullability(true))
}

// Value returns the literal value.
func (l *Literal) Value() interface{} { return l.value }

// IsNull returns whether the literal is NULL.
func (l *Literal) IsNull() bool { return l.value == nil }

// Type implements the Expression interface.
func (l *Literal) Type() sql.Type { return l.typ }

// IsNullable implements the Expression interface.
func (l *Literal) IsNullable() bool { return l.value == nil }

// Eval implements the Expression interface.
func (l *Literal) Eval(*sql.Context, sql.Row) (interface{}, error) {
	return l.value, nil
}

// Children implements the Expression interface.
func (*Literal) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (l *Literal) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 0)
	}
	return l, nil
}

func (l *Literal) String() string {
	return FormatValue(l.value)
}

// FormatValue returns the SQL representation of a value.
func FormatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return "'" + strings.Replace(v, "'", "''", -1) + "'"
	case *apd.Decimal:
		return v.Text('f')
	case time.Time:
		return "'" + v.Format(sql.TimestampLayout) + "'"
	case sql.Row:
		values := make([]string, len(v))
		for i, e := range v {
			values[i] = FormatValue(e)
		}
		return "ROW(" + strings.Join(values, ", ") + ")"
	}
	return fmt.Sprint(v)
}
