package main

import (
	"os"

	errors "gopkg.in/src-d/go-errors.v1"
	yaml "gopkg.in/yaml.v2"

	"gopkg.in/src-d/go-sqlexpr.v0/memory"
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/parse"
)

var (
	errInvalidColumn = errors.NewKind("invalid column %s of table %s: %s")
	errInvalidRow    = errors.NewKind("invalid row %d of table %s: %s")
)

type tablesFile struct {
	Tables []tableDef `yaml:"tables"`
}

type tableDef struct {
	Name    string          `yaml:"name"`
	Columns []columnDef     `yaml:"columns"`
	Rows    [][]interface{} `yaml:"rows"`
}

type columnDef struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	NotNull bool   `yaml:"not_null"`
}

// loadTables reads the tables described in a YAML file.
func loadTables(ctx *sql.Context, path string) ([]sql.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f tablesFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, err
	}

	tables := make([]sql.Table, len(f.Tables))
	for i, def := range f.Tables {
		tables[i], err = def.build(ctx)
		if err != nil {
			return nil, err
		}
	}
	return tables, nil
}

func (def tableDef) build(ctx *sql.Context) (sql.Table, error) {
	schema := make(sql.Schema, len(def.Columns))
	for i, col := range def.Columns {
		typ, err := parse.ParseColumnType(col.Type)
		if err != nil {
			return nil, errInvalidColumn.New(col.Name, def.Name, err)
		}

		if col.NotNull {
			typ = sql.NotNull(typ)
		}
		schema[i] = &sql.Column{Name: col.Name, Type: typ}
	}

	t := memory.NewTable(def.Name, schema)
	for i, row := range def.Rows {
		if err := t.Insert(ctx, sql.NewRow(row...)); err != nil {
			return nil, errInvalidRow.New(i, def.Name, err)
		}
	}
	return t, nil
}
