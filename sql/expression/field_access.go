package expression

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// FieldAccess reads a field of a row valued expression.
type FieldAccess struct {
	base  sql.Expression
	name  string
	index int
	typ   sql.Type
}

var _ sql.Expression = (*FieldAccess)(nil)

// NewFieldAccess creates an access to the field with the given name of the
// row returned by base.
func NewFieldAccess(base sql.Expression, name string) (*FieldAccess, error) {
	rt, ok := base.Type().(sql.RowType)
	if !ok {
		return nil, sql.ErrNotRow.New(base)
	}

	idx := rt.FieldIndex(name)
	if idx < 0 {
		return nil, sql.ErrFieldNotFound.New(name, rt)
	}

	typ := rt.Fields()[idx].Type
	if base.IsNullable() {
		typ = typ.WithNullability(true)
	}

	return &FieldAccess{base: base, name: name, index: idx, typ: typ}, nil
}

// Base returns the expression whose field is accessed.
func (f *FieldAccess) Base() sql.Expression { return f.base }

// Name returns the name of the accessed field.
func (f *FieldAccess) Name() string { return f.name }

// Index returns the position of the accessed field.
func (f *FieldAccess) Index() int { return f.index }

// Type implements the Expression interface.
func (f *FieldAccess) Type() sql.Type { return f.typ }

// IsNullable implements the Expression interface.
func (f *FieldAccess) IsNullable() bool { return f.typ.Nullable() }

// Children implements the Expression interface.
func (f *FieldAccess) Children() []sql.Expression {
	return []sql.Expression{f.base}
}

// WithChildren implements the Expression interface.
func (f *FieldAccess) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 1)
	}
	nf := *f
	nf.base = children[0]
	return &nf, nil
}

// Eval implements the Expression interface.
func (f *FieldAccess) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := f.base.Eval(ctx, row)
	if err != nil || v == nil {
		return nil, err
	}

	r, ok := v.(sql.Row)
	if !ok {
		return nil, sql.ErrNotRow.New(v)
	}
	return fieldAt(r, f.index)
}

func (f *FieldAccess) String() string {
	return f.base.String() + "." + f.name
}
