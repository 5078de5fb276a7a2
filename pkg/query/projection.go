// Package query builds SELECT statements over a projected table. The
// generated SQL sticks to the subset shared by PostgreSQL and SQLite.
package query

import "strings"

// ProjectionMap binds public field names to alias-qualified columns.
type ProjectionMap struct {
	table   string
	alias   string
	byField map[string]string
	ordered []string
}

func NewProjectionMap(table, alias string) *ProjectionMap {
	return &ProjectionMap{table: table, alias: alias, byField: map[string]string{}}
}

// Project exposes column under field. Columns are selected in the order
// they are projected.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	col := p.alias + "." + column
	p.byField[field] = col
	p.ordered = append(p.ordered, col)
	return p
}

func (p *ProjectionMap) Alias() string { return p.alias }

// From renders "table alias".
func (p *ProjectionMap) From() string { return p.table + " " + p.alias }

// Column resolves field, falling back to the raw name when it is not projected.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.lookup(field); ok {
		return col
	}
	return field
}

func (p *ProjectionMap) Columns() string { return strings.Join(p.ordered, ", ") }

func (p *ProjectionMap) ColumnList() []string { return p.ordered }

func (p *ProjectionMap) lookup(field string) (string, bool) {
	col, ok := p.byField[field]
	return col, ok
}
