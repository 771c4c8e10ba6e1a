package plan

import "gopkg.in/src-d/go-sqlexpr.v0/sql"

// NillaryWithChildren is a common WithChildren implementation for all the
// nodes that have no children.
func NillaryWithChildren(node sql.Node, children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(node, len(children), 0)
	}
	return node, nil
}

// UnaryNode is a node that has only one child.
type UnaryNode struct {
	Child sql.Node
}

// Schema implements the Node interface.
func (n *UnaryNode) Schema() sql.Schema {
	return n.Child.Schema()
}

// Children implements the Node interface.
func (n UnaryNode) Children() []sql.Node {
	return []sql.Node{n.Child}
}

// BinaryNode is a node with two children.
type BinaryNode struct {
	left  sql.Node
	right sql.Node
}

// Left returns the left child.
func (n BinaryNode) Left() sql.Node {
	return n.left
}

// Right returns the right child.
func (n BinaryNode) Right() sql.Node {
	return n.right
}

// Children implements the Node interface.
func (n BinaryNode) Children() []sql.Node {
	return []sql.Node{n.left, n.right}
}

func checkExpressionNumber(node sql.Node, got, expected int) error {
	if got != expected {
		return sql.ErrInvalidExpressionNumber.New(node, got, expected)
	}
	return nil
}
