// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package datagrid provides the model layer for a remote-backed data grid:
// query state, debounced filters, load dispatching and row selection.
// The Fyne widget built on top of it lives in the widget package.
package datagrid

import (
	"context"
	"fmt"
	"time"
)

// Row is one record as returned by a Loader. The grid treats rows as
// opaque beyond the fields named by column descriptors.
type Row map[string]any

// CellRenderer maps a cell value (and its owning row) to display text.
type CellRenderer func(value any, row Row) string

// Column describes one grid column. ID names the row field to render
// and doubles as the sort/filter identifier sent to the loader.
// Columns are immutable for the lifetime of a grid instance.
type Column struct {
	// ID is the row field rendered in this column.
	ID string

	// Title is the header text.
	Title string

	// Sortable enables the sort affordance on the header.
	Sortable bool

	// Filterable exposes an inline filter input under the header.
	Filterable bool

	// Render optionally overrides the default string conversion of the
	// cell value. A nil Render falls back to FormatValue.
	Render CellRenderer
}

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return "None"
	case SortAscending:
		return "Ascending"
	case SortDescending:
		return "Descending"
	default:
		return fmt.Sprintf("Unknown(%d)", sd)
	}
}

// Query is the effective query for one load call.
type Query struct {
	// Page is 1-based.
	Page int

	// PageSize is the number of rows per page.
	PageSize int

	// SortBy is the active sort column ID, empty when unsorted.
	SortBy string

	// SortDir is the active sort direction.
	SortDir SortDirection

	// Filters maps column IDs to their debounced filter values.
	// Empty values are equivalent to no filter on that column.
	Filters map[string]string
}

// clone returns a copy with its own filter map, so an in-flight load
// is not affected by later mutations.
func (q Query) clone() Query {
	c := q
	c.Filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		c.Filters[k] = v
	}
	return c
}

// LoadResult is one page of rows plus the cardinality of the full
// filtered result set on the server.
type LoadResult struct {
	Rows  []Row
	Total int
}

// Loader fetches one page of data for the given query. It is the
// grid's sole network boundary: the grid never constructs URLs or
// interprets status codes, and a returned error is displayed verbatim.
// The context is cancelled when the query is superseded; honouring it
// is optional, stale results are discarded either way.
type Loader func(ctx context.Context, q Query) (LoadResult, error)

// RowIDFunc extracts the identifier used for selection tracking.
type RowIDFunc func(Row) string

// DefaultRowID reads the "id" field of a row.
func DefaultRowID(r Row) string {
	return FormatValue(r["id"])
}

// FormatValue converts a raw cell value to display text.
func FormatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// DefaultDebounce is the quiet period applied to filter edits before
// they propagate into the effective query.
const DefaultDebounce = 300 * time.Millisecond

// DefaultPageSize is used when Options.PageSize is not set.
const DefaultPageSize = 20

// Options configures a Controller.
type Options struct {
	// PageSize is the rows-per-page default, DefaultPageSize if zero.
	PageSize int

	// SortBy and SortDir set the initial sort, none if empty.
	SortBy  string
	SortDir SortDirection

	// Filters seeds the initial (already effective) filter values.
	Filters map[string]string

	// Debounce is the filter quiet period, DefaultDebounce if zero.
	Debounce time.Duration

	// RowID extracts selection identifiers, DefaultRowID if nil.
	RowID RowIDFunc
}

// State is a consistent snapshot of a controller for presentation.
type State struct {
	Rows    []Row
	Total   int
	Loading bool
	Err     error
	Query   Query

	// Loaded reports whether any load has ever succeeded. It separates
	// the initial empty grid from a genuinely empty result set.
	Loaded bool
}

// TotalPages derives the page count from Total and PageSize,
// never less than 1.
func (s State) TotalPages() int {
	return totalPages(s.Total, s.Query.PageSize)
}

func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	n := (total + pageSize - 1) / pageSize
	if n < 1 {
		return 1
	}
	return n
}
