package plan

import (
	"io"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// OneRow is a node producing a single row with no columns. It's the input
// of queries without a FROM clause.
type OneRow struct{}

var _ sql.Node = (*OneRow)(nil)

// NewOneRow creates a OneRow node.
func NewOneRow() *OneRow {
	return &OneRow{}
}

// Schema implements the Node interface.
func (*OneRow) Schema() sql.Schema { return nil }

// Children implements the Node interface.
func (*OneRow) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (o *OneRow) WithChildren(children ...sql.Node) (sql.Node, error) {
	return NillaryWithChildren(o, children...)
}

// RowIter implements the Node interface.
func (*OneRow) RowIter(*sql.Context) (sql.RowIter, error) {
	return &oneRowIter{}, nil
}

func (*OneRow) String() string { return "OneRow" }

type oneRowIter struct {
	done bool
}

func (i *oneRowIter) Next() (sql.Row, error) {
	if i.done {
		return nil, io.EOF
	}
	i.done = true
	return sql.NewRow(), nil
}

func (*oneRowIter) Close() error { return nil }
