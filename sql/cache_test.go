package sql_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/plan"
)

func TestPlanCache(t *testing.T) {
	require := require.New(t)

	c, err := sql.NewPlanCache(2)
	require.NoError(err)

	_, ok := c.Get("a")
	require.False(ok)

	a, b, d := plan.NewEmpty(nil), plan.NewEmpty(nil), plan.NewEmpty(nil)
	c.Put("a", a)
	c.Put("b", b)

	n, ok := c.Get("a")
	require.True(ok)
	require.Same(a, n)

	// b is the least recently used
	c.Put("d", d)
	require.Equal(2, c.Len())

	_, ok = c.Get("b")
	require.False(ok)

	n, ok = c.Get("d")
	require.True(ok)
	require.Same(d, n)
}

func TestPlanCacheDefaultSize(t *testing.T) {
	c, err := sql.NewPlanCache(0)
	require.NoError(t, err)
	require.Equal(t, 0, c.Len())
}
