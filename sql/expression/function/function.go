package function

import (
	"strings"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// EvalFunc applies an operator to already evaluated operands. The result
// must be a value of type t.
type EvalFunc func(ctx *sql.Context, t sql.Type, args []interface{}) (interface{}, error)

// InferFunc computes the type of a call from the types of its operands.
type InferFunc func(name string, operands []sql.Type) (sql.Type, error)

type opFlag uint8

const (
	nonDeterministic opFlag = 1 << iota
	dynamic
	userDefined
	// nullSafe operators handle NULL operands themselves. Otherwise, any
	// NULL operand makes the result NULL without calling the operator.
	nullSafe
)

// Operator is a function or an operator that can be applied by a call.
type Operator struct {
	name  string
	kind  sql.OperatorKind
	min   int
	max   int
	flags opFlag
	infer InferFunc
	apply EvalFunc
}

var _ sql.Operator = (*Operator)(nil)

func newOperator(name string, min, max int, infer InferFunc, apply EvalFunc) *Operator {
	return &Operator{name: name, min: min, max: max, infer: infer, apply: apply}
}

func (o *Operator) withKind(kind sql.OperatorKind) *Operator {
	o.kind = kind
	return o
}

func (o *Operator) with(flags opFlag) *Operator {
	o.flags |= flags
	return o
}

// Name implements the sql.Operator interface.
func (o *Operator) Name() string { return o.name }

// Kind implements the sql.Operator interface.
func (o *Operator) Kind() sql.OperatorKind { return o.kind }

// IsDeterministic implements the sql.Operator interface.
func (o *Operator) IsDeterministic() bool { return o.flags&nonDeterministic == 0 }

// IsDynamic implements the sql.Operator interface.
func (o *Operator) IsDynamic() bool { return o.flags&dynamic != 0 }

// IsUserDefined implements the sql.Operator interface.
func (o *Operator) IsUserDefined() bool { return o.flags&userDefined != 0 }

// Arity implements the sql.Operator interface.
func (o *Operator) Arity() (int, int) { return o.min, o.max }

// InferType implements the sql.Operator interface.
func (o *Operator) InferType(operands []sql.Type) (sql.Type, error) {
	if o.infer == nil {
		return nil, ErrCannotInferType.New(o.name)
	}
	return o.infer(o.name, operands)
}

// Eval implements the sql.Operator interface.
func (o *Operator) Eval(ctx *sql.Context, t sql.Type, args []interface{}) (interface{}, error) {
	if o.apply == nil {
		return nil, sql.ErrNotEvaluable.New(o.name)
	}

	if o.flags&nullSafe == 0 {
		for _, a := range args {
			if a == nil {
				return nil, nil
			}
		}
	}

	return o.apply(ctx, t, args)
}

func (o *Operator) String() string { return o.name }

// Registry holds the operators available to queries by name.
type Registry struct {
	ops map[string]sql.Operator
}

// NewRegistry creates a registry with all the default operators.
func NewRegistry() *Registry {
	r := &Registry{ops: make(map[string]sql.Operator)}
	for _, op := range Defaults {
		if err := r.Register(op); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds operators to the registry.
func (r *Registry) Register(ops ...sql.Operator) error {
	for _, op := range ops {
		name := strings.ToLower(op.Name())
		if _, ok := r.ops[name]; ok {
			return ErrFunctionAlreadyRegistered.New(op.Name())
		}
		r.ops[name] = op
	}
	return nil
}

// Operator returns the operator with the given name.
func (r *Registry) Operator(name string) (sql.Operator, error) {
	op, ok := r.ops[strings.ToLower(name)]
	if !ok {
		return nil, ErrFunctionNotFound.New(name)
	}
	return op, nil
}

// Defaults are the operators every registry starts with.
var Defaults = []sql.Operator{
	Plus, Minus, Mult, Div, Mod, Negate, Abs,
	Equals, NotEquals, LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual,
	And, Or, Not, IsNull, IsNotNull, Coalesce,
	Cast, Row,
	Upper, Lower, Concat, Substring, Length, Trim,
	CurrentTimestamp, CurrentDate, CurrentUser,
	Rand, UUID,
	Sum, Count, Min, Max, Avg,
}
