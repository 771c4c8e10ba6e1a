package expression

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

var (
	// ErrUnboundParameter is returned when a dynamic parameter is evaluated
	// before a value is bound to it.
	ErrUnboundParameter = errors.NewKind("attempt to evaluate unbound dynamic parameter ?%d")
	// ErrUnboundVariable is returned when a correlation variable is evaluated
	// outside of the operator that binds it.
	ErrUnboundVariable = errors.NewKind("attempt to evaluate unbound correlation variable %s")
)

// DynamicParam is a placeholder whose value is bound when the statement is
// executed.
type DynamicParam struct {
	index int
	typ   sql.Type
}

var _ sql.Expression = (*DynamicParam)(nil)

// NewDynamicParam creates the dynamic parameter at the given position.
func NewDynamicParam(index int, typ sql.Type) *DynamicParam {
	return &DynamicParam{index, typ}
}

// Index returns the position of the parameter.
func (p *DynamicParam) Index() int { return p.index }

// Type implements the Expression interface.
func (p *DynamicParam) Type() sql.Type { return p.typ }

// IsNullable implements the Expression interface.
func (p *DynamicParam) IsNullable() bool { return p.typ.Nullable() }

// Eval implements the Expression interface.
func (p *DynamicParam) Eval(*sql.Context, sql.Row) (interface{}, error) {
	return nil, ErrUnboundParameter.New(p.index)
}

// Children implements the Expression interface.
func (*DynamicParam) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (p *DynamicParam) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 0)
	}
	return p, nil
}

func (p *DynamicParam) String() string {
	return fmt.Sprintf("?%d", p.index)
}

// CorrelVariable references a row of an outer query, bound by the
// operator that correlates both queries.
type CorrelVariable struct {
	name string
	typ  sql.Type
}

var _ sql.Expression = (*CorrelVariable)(nil)

// NewCorrelVariable creates a correlation variable with the given name and
// row type.
func NewCorrelVariable(name string, typ sql.Type) *CorrelVariable {
	return &CorrelVariable{name, typ}
}

// Name returns the name of the variable.
func (v *CorrelVariable) Name() string { return v.name }

// Type implements the Expression interface.
func (v *CorrelVariable) Type() sql.Type { return v.typ }

// IsNullable implements the Expression interface.
func (v *CorrelVariable) IsNullable() bool { return v.typ.Nullable() }

// Eval implements the Expression interface.
func (v *CorrelVariable) Eval(*sql.Context, sql.Row) (interface{}, error) {
	return nil, ErrUnboundVariable.New(v.name)
}

// Children implements the Expression interface.
func (*CorrelVariable) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (v *CorrelVariable) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(v, len(children), 0)
	}
	return v, nil
}

func (v *CorrelVariable) String() string { return v.name }
