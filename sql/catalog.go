package sql

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Table represents the backend of a SQL table.
type Table interface {
	Nameable
	fmt.Stringer
	// Schema of the table.
	Schema() Schema
	// RowIter returns an iterator over all the rows of the table.
	RowIter(*Context) (RowIter, error)
}

// Catalog holds the tables queries can read from. It's safe for concurrent
// use.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]Table
}

// NewCatalog returns a new empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]Table)}
}

// AddTable adds the given table to the catalog. Table names are case
// insensitive.
func (c *Catalog) AddTable(t Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := strings.ToLower(t.Name())
	if _, ok := c.tables[name]; ok {
		return ErrTableAlreadyExists.New(t.Name())
	}
	c.tables[name] = t
	return nil
}

// Table returns the table with the given name.
func (c *Catalog) Table(name string) (Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[strings.ToLower(name)]
	if !ok {
		return nil, ErrTableNotFound.New(name)
	}
	return t, nil
}

// TableNames returns the sorted names of all the tables in the catalog.
func (c *Catalog) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables))
	for _, t := range c.tables {
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}
