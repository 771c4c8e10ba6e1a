package sql

// QueryProp is a property of a query discovered during its compilation.
type QueryProp uint

const (
	// QPropFilter is set when the query filters rows.
	QPropFilter QueryProp = 1 << iota
	// QPropProject is set when the query projects expressions.
	QPropProject
	// QPropInnerJoin is set when the query joins tables.
	QPropInnerJoin
	// QPropConstantFolded is set when an expression was replaced by its
	// value during compilation.
	QPropConstantFolded
	// QPropNoCache is set when the compiled plan depends on the time or the
	// session it was compiled in, so it must not be reused.
	QPropNoCache
)

// QueryProps holds the properties of the query being compiled. It's shared
// by a context and all the contexts derived from it.
type QueryProps struct {
	flags QueryProp
}

// Set sets the given property.
func (qp *QueryProps) Set(flag QueryProp) {
	if qp == nil {
		return
	}
	qp.flags |= flag
}

// IsSet returns whether the given property is set.
func (qp *QueryProps) IsSet(flag QueryProp) bool {
	if qp == nil {
		return false
	}
	return qp.flags&flag == flag
}
