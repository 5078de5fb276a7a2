package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// predicate renders one WHERE term. next hands out the following $N
// placeholder, so numbering follows the order terms were added.
type predicate struct {
	render func(next func() string) string
	args   []any
}

// SortField names a projected field and its direction.
type SortField struct {
	Field      string
	Descending bool
}

// Builder accumulates filters and ordering for a single projection.
// Only predicates shared by PostgreSQL and SQLite are emitted.
type Builder struct {
	projection *ProjectionMap
	predicates []predicate
	sort       []SortField
	fallback   []SortField
}

// NewBuilder starts a query over projection. fallback applies when no
// explicit ordering is set.
func NewBuilder(projection *ProjectionMap, fallback ...SortField) *Builder {
	return &Builder{projection: projection, fallback: fallback}
}

// ParseSortFields reads "clinic,-startDate" style input. A leading "-"
// sorts descending; blank entries are skipped.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

func (b *Builder) Build() (string, []any) {
	where, args := b.where()
	return b.selectFrom() + where + b.orderBy(), args
}

func (b *Builder) BuildCount() (string, []any) {
	where, args := b.where()
	return "SELECT COUNT(*) FROM " + b.projection.From() + where, args
}

// BuildPage selects one 1-based page of pageSize rows.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	q, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", q, pageSize, (page-1)*pageSize), args
}

// BuildSingle ignores accumulated filters and selects by key.
func (b *Builder) BuildSingle(field string, id any) (string, []any) {
	q := fmt.Sprintf("%s WHERE %s = $1", b.selectFrom(), b.projection.Column(field))
	return q, []any{id}
}

// OrderByFields replaces the fallback ordering.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereContains matches a substring case-insensitively. Nil or empty
// values add nothing.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.WhereSearch(value, field)
}

// WhereEquals adds col = value unless value is nil or a nil pointer.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.compare(field, "=", value)
}

// WhereBetween adds inclusive bounds; nil bounds are skipped.
func (b *Builder) WhereBetween(field string, from, to any) *Builder {
	return b.compare(field, ">=", from).compare(field, "<=", to)
}

// WhereSearch ORs a case-insensitive substring match across fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	cols := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
		args[i] = "%" + *search + "%"
	}

	b.predicates = append(b.predicates, predicate{
		args: args,
		render: func(next func() string) string {
			terms := make([]string, len(cols))
			for i, col := range cols {
				terms[i] = "LOWER(" + col + ") LIKE LOWER(" + next() + ")"
			}
			if len(terms) == 1 {
				return terms[0]
			}
			return "(" + strings.Join(terms, " OR ") + ")"
		},
	})
	return b
}

func (b *Builder) compare(field, op string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	b.predicates = append(b.predicates, predicate{
		args: []any{value},
		render: func(next func() string) string {
			return col + " " + op + " " + next()
		},
	})
	return b
}

func (b *Builder) selectFrom() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.From()
}

func (b *Builder) where() (string, []any) {
	if len(b.predicates) == 0 {
		return "", nil
	}

	n := 0
	next := func() string {
		n++
		return "$" + strconv.Itoa(n)
	}

	terms := make([]string, len(b.predicates))
	var args []any
	for i, p := range b.predicates {
		terms[i] = p.render(next)
		args = append(args, p.args...)
	}
	return " WHERE " + strings.Join(terms, " AND "), args
}

func (b *Builder) orderBy() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.fallback
	}

	var parts []string
	for _, f := range fields {
		// unmapped names never reach the SQL
		col, ok := b.projection.lookup(f.Field)
		if !ok {
			continue
		}
		if f.Descending {
			parts = append(parts, col+" DESC")
		} else {
			parts = append(parts, col+" ASC")
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
