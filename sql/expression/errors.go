package expression

import errors "gopkg.in/src-d/go-errors.v1"

// ErrNotAggregate is returned when a window is applied to an operator that
// is not an aggregate.
var ErrNotAggregate = errors.NewKind("%s is not an aggregate function")
