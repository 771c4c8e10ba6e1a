package expression

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// ErrIndexOutOfBounds is returned when a reference points outside of the
// row it is evaluated against.
var ErrIndexOutOfBounds = errors.NewKind("unable to find field with index %d in row of %d columns")

// InputRef references a field of the input row by its position.
type InputRef struct {
	index int
	typ   sql.Type
}

var _ sql.Expression = (*InputRef)(nil)

// NewInputRef creates a reference to the field with the given index and
// type of the input row.
func NewInputRef(index int, typ sql.Type) *InputRef {
	return &InputRef{index, typ}
}

// Index returns the position of the referenced field.
func (r *InputRef) Index() int { return r.index }

// Type implements the Expression interface.
func (r *InputRef) Type() sql.Type { return r.typ }

// IsNullable implements the Expression interface.
func (r *InputRef) IsNullable() bool { return r.typ.Nullable() }

// Children implements the Expression interface.
func (*InputRef) Children() []sql.Expression { return nil }

// Eval implements the Expression interface.
func (r *InputRef) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return fieldAt(row, r.index)
}

// WithChildren implements the Expression interface.
func (r *InputRef) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 0)
	}
	return r, nil
}

func (r *InputRef) String() string {
	return fmt.Sprintf("$%d", r.index)
}

// LocalRef references an expression registered in a program by its
// position. When a program evaluates its expressions, the value of each of
// them is stored in a frame at its position, and that frame is the row a
// LocalRef is evaluated against.
type LocalRef struct {
	index int
	typ   sql.Type
}

var _ sql.Expression = (*LocalRef)(nil)

// NewLocalRef creates a reference to the program expression with the given
// index and type.
func NewLocalRef(index int, typ sql.Type) *LocalRef {
	return &LocalRef{index, typ}
}

// Index returns the position of the referenced expression.
func (r *LocalRef) Index() int { return r.index }

// Type implements the Expression interface.
func (r *LocalRef) Type() sql.Type { return r.typ }

// IsNullable implements the Expression interface.
func (r *LocalRef) IsNullable() bool { return r.typ.Nullable() }

// Children implements the Expression interface.
func (*LocalRef) Children() []sql.Expression { return nil }

// Eval implements the Expression interface.
func (r *LocalRef) Eval(ctx *sql.Context, frame sql.Row) (interface{}, error) {
	return fieldAt(frame, r.index)
}

// WithChildren implements the Expression interface.
func (r *LocalRef) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 0)
	}
	return r, nil
}

func (r *LocalRef) String() string {
	return fmt.Sprintf("$t%d", r.index)
}

func fieldAt(row sql.Row, index int) (interface{}, error) {
	if index < 0 || index >= len(row) {
		return nil, ErrIndexOutOfBounds.New(index, len(row))
	}
	return row[index], nil
}
