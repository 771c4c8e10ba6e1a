package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression/function"
)

func TestNode(t *testing.T) {
	testCases := []struct {
		name  string
		inp   sql.Node
		cmp   sql.Node
		visit NodeFunc
		same  TreeIdentity
	}{
		{
			"a to b, b to c",
			a(a(a(), a(), a(b())), c()),
			b(b(b(), b(), b(c())), c()),
			func(node sql.Node) (sql.Node, TreeIdentity, error) {
				switch n := node.(type) {
				case *nodeA:
					return b(n.children...), NewTree, nil
				case *nodeB:
					return c(n.children...), NewTree, nil
				default:
					return n, SameTree, nil
				}
			},
			NewTree,
		},
		{
			"everything to b",
			a(a(a(), a(), a(b())), c()),
			b(b(b(), b(), b(b())), b()),
			func(node sql.Node) (sql.Node, TreeIdentity, error) {
				return b(node.Children()...), NewTree, nil
			},
			NewTree,
		},
		{
			"only a leaf",
			a(a(a(), a(), a(b())), c()),
			a(a(a(), a(), a(b())), b()),
			func(node sql.Node) (sql.Node, TreeIdentity, error) {
				if n, ok := node.(*nodeC); ok {
					return b(n.children...), NewTree, nil
				}
				return node, SameTree, nil
			},
			NewTree,
		},
		{
			"only the root",
			a(b(b(b(b(b()))))),
			c(b(b(b(b(b()))))),
			func(node sql.Node) (sql.Node, TreeIdentity, error) {
				if n, ok := node.(*nodeA); ok {
					return c(n.children...), NewTree, nil
				}
				return node, SameTree, nil
			},
			NewTree,
		},
		{
			"nothing",
			a(b(c()), c()),
			a(b(c()), c()),
			func(node sql.Node) (sql.Node, TreeIdentity, error) {
				return node, SameTree, nil
			},
			SameTree,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			res, same, err := Node(tt.inp, tt.visit)
			require.NoError(err)
			require.Equal(tt.cmp, res)
			require.Equal(tt.same, same)
			if same {
				require.Same(tt.inp, res)
			}
		})
	}
}

func TestNodeError(t *testing.T) {
	errKaboom := errors.New("kaboom")
	_, _, err := Node(a(b(), c()), func(node sql.Node) (sql.Node, TreeIdentity, error) {
		if _, ok := node.(*nodeC); ok {
			return nil, SameTree, errKaboom
		}
		return node, SameTree, nil
	})
	require.Equal(t, errKaboom, err)
}

func TestNodeExprs(t *testing.T) {
	require := require.New(t)

	ref := expression.NewInputRef(0, intNotNull)
	node := a(
		withExprs(b(), ref),
		withExprs(c(), expression.MustCall(function.Plus, ref, intLit(1))),
	)

	res, same, err := NodeExprs(node, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		if e == ref {
			return intLit(2), NewTree, nil
		}
		return e, SameTree, nil
	})
	require.NoError(err)
	require.Equal(NewTree, same)

	children := res.Children()
	require.Equal("2", children[0].(*exprNode).exprs[0].String())
	require.Equal("+(2, 1)", children[1].(*exprNode).exprs[0].String())

	// the original tree is left untouched
	require.Equal("$0", node.children[0].(*exprNode).exprs[0].String())

	res, same, err = OneNodeExprs(node, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		return intLit(3), NewTree, nil
	})
	require.NoError(err)
	require.Equal(SameTree, same)
	require.Same(node, res)
}

func TestInspect(t *testing.T) {
	require := require.New(t)

	node := a(b(c(), a()), c())

	var visited []string
	require.True(Inspect(node, func(n sql.Node) bool {
		visited = append(visited, n.String())
		return true
	}))
	require.Equal([]string{"a", "b", "c", "a", "c"}, visited)

	visited = nil
	require.False(Inspect(node, func(n sql.Node) bool {
		visited = append(visited, n.String())
		return n.String() != "c"
	}))
	require.Equal([]string{"a", "b", "c"}, visited)

	ref := expression.NewInputRef(1, intNotNull)
	exprs := a(withExprs(b(), expression.MustCall(function.Plus, ref, intLit(1))), withExprs(c(), ref))

	var refs int
	InspectExpressions(exprs, func(e sql.Expression) bool {
		if e == ref {
			refs++
		}
		return true
	})
	require.Equal(2, refs)
}

type nodeA struct {
	testNode
}
type nodeB struct {
	testNode
}
type nodeC struct {
	testNode
}

func a(nodes ...sql.Node) *nodeA {
	return &nodeA{testNode{name: "a", children: nodes}}
}

func b(nodes ...sql.Node) *nodeB {
	return &nodeB{testNode{name: "b", children: nodes}}
}

func c(nodes ...sql.Node) *nodeC {
	return &nodeC{testNode{name: "c", children: nodes}}
}

func (n *nodeA) WithChildren(nodes ...sql.Node) (sql.Node, error) {
	nn := *n
	nn.children = nodes
	return &nn, nil
}

func (n *nodeB) WithChildren(nodes ...sql.Node) (sql.Node, error) {
	nn := *n
	nn.children = nodes
	return &nn, nil
}

func (n *nodeC) WithChildren(nodes ...sql.Node) (sql.Node, error) {
	nn := *n
	nn.children = nodes
	return &nn, nil
}

type testNode struct {
	name     string
	children []sql.Node
}

var _ sql.Node = (*testNode)(nil)

func (n *testNode) String() string {
	return n.name
}

func (n *testNode) Schema() sql.Schema {
	return nil
}

func (n *testNode) Children() []sql.Node {
	return n.children
}

func (n *testNode) RowIter(*sql.Context) (sql.RowIter, error) {
	return nil, nil
}

func (n *testNode) WithChildren(nodes ...sql.Node) (sql.Node, error) {
	nn := *n
	nn.children = nodes
	return &nn, nil
}

type exprNode struct {
	sql.Node
	exprs []sql.Expression
}

var _ sql.Expressioner = (*exprNode)(nil)

func withExprs(n sql.Node, exprs ...sql.Expression) *exprNode {
	return &exprNode{Node: n, exprs: exprs}
}

func (n *exprNode) Expressions() []sql.Expression {
	return n.exprs
}

func (n *exprNode) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	nn := *n
	nn.exprs = exprs
	return &nn, nil
}

func (n *exprNode) WithChildren(nodes ...sql.Node) (sql.Node, error) {
	child, err := n.Node.WithChildren(nodes...)
	if err != nil {
		return nil, err
	}
	nn := *n
	nn.Node = child
	return &nn, nil
}
