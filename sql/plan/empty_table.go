package plan

import (
	"io"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// Empty is a node that produces no rows. It keeps the schema of the node
// it replaces.
type Empty struct {
	schema sql.Schema
}

var _ sql.Node = (*Empty)(nil)

// NewEmpty creates an empty node with the given schema.
func NewEmpty(schema sql.Schema) *Empty {
	return &Empty{schema}
}

// Schema implements the Node interface.
func (e *Empty) Schema() sql.Schema { return e.schema }

// Children implements the Node interface.
func (*Empty) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (e *Empty) WithChildren(children ...sql.Node) (sql.Node, error) {
	return NillaryWithChildren(e, children...)
}

// RowIter implements the Node interface.
func (*Empty) RowIter(*sql.Context) (sql.RowIter, error) {
	return emptyIter{}, nil
}

func (*Empty) String() string { return "Empty" }

type emptyIter struct{}

func (emptyIter) Next() (sql.Row, error) { return nil, io.EOF }
func (emptyIter) Close() error           { return nil }
