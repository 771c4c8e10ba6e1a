package sql

import (
	lru "github.com/hashicorp/golang-lru"
)

// DefaultPlanCacheSize is the number of plans kept by a plan cache when no
// size is configured.
const DefaultPlanCacheSize = 512

// PlanCache keeps the last analyzed plans by query. It's safe for
// concurrent use.
type PlanCache struct {
	cache *lru.Cache
}

// NewPlanCache creates a plan cache holding up to size plans.
func NewPlanCache(size int) (*PlanCache, error) {
	if size <= 0 {
		size = DefaultPlanCacheSize
	}

	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &PlanCache{c}, nil
}

// Get returns the plan cached for the given query, if any.
func (c *PlanCache) Get(query string) (Node, bool) {
	v, ok := c.cache.Get(query)
	if !ok {
		return nil, false
	}
	return v.(Node), true
}

// Put caches the plan of the given query.
func (c *PlanCache) Put(query string, n Node) {
	c.cache.Add(query, n)
}

// Len returns the number of cached plans.
func (c *PlanCache) Len() int {
	return c.cache.Len()
}
