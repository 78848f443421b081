package store

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/dugoutlabs/go-dugout/querycache"
)

type order struct {
	column    string
	ascending bool
}

type span struct {
	from int
	to   int
}

// Query describes one read-only request against the stats store: the table,
// selected columns, equality filters, ordering, row range and whether a
// single row is expected. Builder methods return copies, so a base query can
// be shared and specialized safely.
type Query struct {
	table   string
	selects []string
	filters map[string]any
	order   *order
	span    *span
	single  bool
}

// From starts a query against table.
func From(table string) Query {
	return Query{table: table}
}

// Select narrows the returned columns.
func (q Query) Select(columns ...string) Query {
	q.selects = append([]string{}, columns...)
	return q
}

// Eq adds an equality filter on column.
func (q Query) Eq(column string, value any) Query {
	filters := make(map[string]any, len(q.filters)+1)
	for k, v := range q.filters {
		filters[k] = v
	}
	filters[column] = value
	q.filters = filters
	return q
}

// Order sorts ascending by column.
func (q Query) Order(column string) Query {
	q.order = &order{column: column, ascending: true}
	return q
}

// OrderDesc sorts descending by column.
func (q Query) OrderDesc(column string) Query {
	q.order = &order{column: column}
	return q
}

// Range limits the result to rows from..to inclusive.
func (q Query) Range(from, to int) Query {
	q.span = &span{from: from, to: to}
	return q
}

// Single marks the query as expecting exactly one row.
func (q Query) Single() Query {
	q.single = true
	return q
}

// Table returns the queried table name.
func (q Query) Table() string {
	return q.table
}

// Descriptor returns the logical shape of the query as a nested mapping,
// the form the cache key builder canonicalizes.
func (q Query) Descriptor() map[string]any {
	d := make(map[string]any)
	if len(q.selects) > 0 {
		selects := make([]any, len(q.selects))
		for i, s := range q.selects {
			selects[i] = s
		}
		d["select"] = selects
	}
	if len(q.filters) > 0 {
		filters := make(map[string]any, len(q.filters))
		for k, v := range q.filters {
			filters[k] = v
		}
		d["filters"] = filters
	}
	if q.order != nil {
		d["order"] = map[string]any{"column": q.order.column, "ascending": q.order.ascending}
	}
	if q.span != nil {
		d["range"] = map[string]any{"from": q.span.from, "to": q.span.to}
	}
	if q.single {
		d["single"] = true
	}
	return d
}

// CacheKey returns the canonical cache key for this query.
func (q Query) CacheKey() string {
	return querycache.Key(q.table, q.Descriptor())
}

// encode renders the query as PostgREST-style URL parameters.
func (q Query) encode() url.Values {
	params := url.Values{}
	if len(q.selects) > 0 {
		var cols string
		for i, s := range q.selects {
			if i > 0 {
				cols += ","
			}
			cols += s
		}
		params.Set("select", cols)
	}
	// Deterministic parameter order keeps request logs and tests stable.
	cols := make([]string, 0, len(q.filters))
	for col := range q.filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		params.Set(col, "eq."+fmt.Sprint(q.filters[col]))
	}
	if q.order != nil {
		dir := "desc"
		if q.order.ascending {
			dir = "asc"
		}
		params.Set("order", q.order.column+"."+dir)
	}
	if q.span != nil {
		params.Set("offset", strconv.Itoa(q.span.from))
		params.Set("limit", strconv.Itoa(q.span.to-q.span.from+1))
	}
	return params
}
