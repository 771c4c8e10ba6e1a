package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const expectedTree = `Calc(x=[$t2])
 ├─ Filter(>($0, 1))
 │   └─ Table(a)
 └─ Project($0)
     └─ OneRow
`

func TestTreePrinter(t *testing.T) {
	p := NewTreePrinter()
	p.WriteNode("Calc(%s)", "x=[$t2]")

	filter := NewTreePrinter()
	filter.WriteNode("Filter(%s)", ">($0, 1)")
	filter.WriteChildren("Table(a)")

	project := NewTreePrinter()
	project.WriteNode("Project($0)")
	project.WriteChildren("OneRow")

	p.WriteChildren(filter.String(), project.String())

	require.Equal(t, expectedTree, p.String())
}

func TestTreePrinterMisuse(t *testing.T) {
	require := require.New(t)

	require.Panics(func() { NewTreePrinter().WriteChildren("a") })

	p := NewTreePrinter()
	p.WriteNode("a")
	require.Panics(func() { p.WriteNode("b") })
	p.WriteChildren("c")
	require.Panics(func() { p.WriteChildren("d") })
}
