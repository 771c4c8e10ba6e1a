package memory

import (
	"fmt"
	"io"
	"sync"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// Table represents an in-memory database table.
type Table struct {
	name   string
	schema sql.Schema

	mu   sync.RWMutex
	rows []sql.Row
}

var _ sql.Table = (*Table)(nil)

// NewTable creates a new Table with the given name and schema.
func NewTable(name string, schema sql.Schema) *Table {
	s := make(sql.Schema, len(schema))
	for i, col := range schema {
		c := *col
		c.Source = name
		s[i] = &c
	}

	return &Table{name: name, schema: s}
}

// Name implements the sql.Table interface.
func (t *Table) Name() string {
	return t.name
}

// Schema implements the sql.Table interface.
func (t *Table) Schema() sql.Schema {
	return t.schema
}

// Insert adds a row to the table after checking it matches the schema.
func (t *Table) Insert(ctx *sql.Context, row sql.Row) error {
	if err := t.schema.CheckRow(row); err != nil {
		return err
	}

	converted := make(sql.Row, len(row))
	for i, col := range t.schema {
		v, err := col.Type.Convert(row[i])
		if err != nil {
			return err
		}
		converted[i] = v
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, converted)
	return nil
}

// RowIter implements the sql.Table interface. The iterator reads a
// snapshot of the rows at the time it was created.
func (t *Table) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]sql.Row, len(t.rows))
	copy(rows, t.rows)
	return &tableIter{ctx: ctx, rows: rows}, nil
}

func (t *Table) String() string {
	p := sql.NewTreePrinter()
	p.WriteNode("Table(%s)", t.name)
	var schema = make([]string, len(t.schema))
	for i, col := range t.schema {
		schema[i] = fmt.Sprintf("Column(%s, %s)", col.Name, col.Type)
	}
	p.WriteChildren(schema...)
	return p.String()
}

type tableIter struct {
	ctx  *sql.Context
	rows []sql.Row
	pos  int
}

func (i *tableIter) Next() (sql.Row, error) {
	if err := i.ctx.Err(); err != nil {
		return nil, err
	}

	if i.pos >= len(i.rows) {
		return nil, io.EOF
	}

	row := i.rows[i.pos].Copy()
	i.pos++
	return row, nil
}

func (i *tableIter) Close() error {
	i.rows = nil
	return nil
}
