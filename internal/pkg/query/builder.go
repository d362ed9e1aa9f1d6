// Package query renders Spanner SQL statements for the catalog repositories.
package query

import (
	"fmt"
	"strings"

	"cloud.google.com/go/spanner"
)

// Direction is an ORDER BY direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) keyword() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

type sortKey struct {
	column string
	dir    Direction
}

// Builder is an immutable SELECT/DELETE description. Every method returns a copy,
// so a base query can be shared between a page query and its Count.
type Builder struct {
	table   string
	columns []string
	conds   []Condition
	sorts   []sortKey
	limit   int64
	offset  int64
}

// From starts a query on table.
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select appends result columns. No columns means SELECT *.
func (b *Builder) Select(columns ...string) *Builder {
	c := b.clone()
	c.columns = append(c.columns, columns...)
	return c
}

// Where adds a condition; conditions are ANDed.
func (b *Builder) Where(cond Condition) *Builder {
	c := b.clone()
	c.conds = append(c.conds, cond)
	return c
}

// OrderBy appends a sort key. Later keys break ties of earlier ones.
func (b *Builder) OrderBy(column string, dir Direction) *Builder {
	c := b.clone()
	c.sorts = append(c.sorts, sortKey{column: column, dir: dir})
	return c
}

func (b *Builder) Limit(n int64) *Builder {
	c := b.clone()
	c.limit = n
	return c
}

func (b *Builder) Offset(n int64) *Builder {
	c := b.clone()
	c.offset = n
	return c
}

// Count keeps FROM and WHERE and drops ordering and pagination.
func (b *Builder) Count() *Builder {
	c := b.clone()
	c.columns = []string{"COUNT(*)"}
	c.sorts = nil
	c.limit, c.offset = 0, 0
	return c
}

// Build renders the SELECT statement.
func (b *Builder) Build() spanner.Statement {
	w := newWriter()

	cols := "*"
	if len(b.columns) > 0 {
		cols = strings.Join(b.columns, ", ")
	}
	w.printf("SELECT %s FROM %s", cols, b.table)
	w.where(b.conds)

	if len(b.sorts) > 0 {
		keys := make([]string, len(b.sorts))
		for i, s := range b.sorts {
			keys[i] = s.column + " " + s.dir.keyword()
		}
		w.printf(" ORDER BY %s", strings.Join(keys, ", "))
	}
	if b.limit > 0 {
		w.printf(" LIMIT @limit")
		w.params["limit"] = b.limit
	}
	if b.offset > 0 {
		w.printf(" OFFSET @offset")
		w.params["offset"] = b.offset
	}
	return w.statement()
}

// BuildDelete renders a DELETE with the builder's conditions only. Spanner
// rejects a DELETE without WHERE, so an unfiltered builder renders WHERE true.
func (b *Builder) BuildDelete() spanner.Statement {
	w := newWriter()
	w.printf("DELETE FROM %s", b.table)
	if len(b.conds) == 0 {
		w.printf(" WHERE true")
	}
	w.where(b.conds)
	return w.statement()
}

func (b *Builder) String() string {
	stmt := b.Build()
	return fmt.Sprintf("SQL: %s\nParams: %v", stmt.SQL, stmt.Params)
}

func (b *Builder) clone() *Builder {
	c := *b
	c.columns = append([]string(nil), b.columns...)
	c.conds = append([]Condition(nil), b.conds...)
	c.sorts = append([]sortKey(nil), b.sorts...)
	return &c
}

type writer struct {
	sql    strings.Builder
	params map[string]interface{}
}

func newWriter() *writer {
	return &writer{params: make(map[string]interface{})}
}

func (w *writer) printf(format string, args ...interface{}) {
	fmt.Fprintf(&w.sql, format, args...)
}

// where numbers parameters across conditions so names never collide.
func (w *writer) where(conds []Condition) {
	if len(conds) == 0 {
		return
	}
	parts := make([]string, 0, len(conds))
	next := 0
	for _, cond := range conds {
		fragment, params := cond.SQL(next)
		parts = append(parts, fragment)
		for k, v := range params {
			w.params[k] = v
		}
		next += len(params)
	}
	w.printf(" WHERE %s", strings.Join(parts, " AND "))
}

func (w *writer) statement() spanner.Statement {
	return spanner.Statement{SQL: w.sql.String(), Params: w.params}
}
