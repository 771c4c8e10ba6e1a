package transform

import "gopkg.in/src-d/go-sqlexpr.v0/sql"

// TreeIdentity tells whether a transformation returned the same tree it was
// given or a new one.
type TreeIdentity bool

const (
	// SameTree is returned when the tree was not modified.
	SameTree TreeIdentity = true
	// NewTree is returned when the tree was rebuilt.
	NewTree TreeIdentity = false
)

// ExprFunc is a function that given an expression will return that
// expression as is or transformed, a TreeIdentity to indicate whether the
// expression was modified, and an error or nil.
type ExprFunc func(e sql.Expression) (sql.Expression, TreeIdentity, error)

// NodeFunc is a function that given a node will return that node as is or
// transformed, a TreeIdentity to indicate whether the node was modified,
// and an error or nil.
type NodeFunc func(n sql.Node) (sql.Node, TreeIdentity, error)
