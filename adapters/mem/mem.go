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

// Package mem provides a datagrid Loader backed by an in-memory row
// slice. Filtering, sorting and paging are evaluated locally, which
// makes it suitable for small static tables, demos and tests.
package mem

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

// NewLoader returns a Loader serving queries from rows. The slice is
// not copied; callers must not mutate it while the loader is in use.
//
// Filter semantics: case-insensitive substring match on the string
// form of the cell, combined with AND across columns. Sort semantics:
// numeric when both values parse as numbers, lexicographic otherwise,
// stable within equal keys.
func NewLoader(rows []datagrid.Row) datagrid.Loader {
	return func(ctx context.Context, q datagrid.Query) (datagrid.LoadResult, error) {
		if err := ctx.Err(); err != nil {
			return datagrid.LoadResult{}, err
		}

		matched := filterRows(rows, q.Filters)
		if q.SortBy != "" && q.SortDir != datagrid.SortNone {
			sortRows(matched, q.SortBy, q.SortDir == datagrid.SortDescending)
		}

		total := len(matched)
		start := (q.Page - 1) * q.PageSize
		if start < 0 {
			start = 0
		}
		if start > total {
			start = total
		}
		end := start + q.PageSize
		if end > total {
			end = total
		}

		page := make([]datagrid.Row, end-start)
		copy(page, matched[start:end])
		return datagrid.LoadResult{Rows: page, Total: total}, nil
	}
}

// filterRows keeps the rows matching every non-empty filter value.
func filterRows(rows []datagrid.Row, filters map[string]string) []datagrid.Row {
	out := make([]datagrid.Row, 0, len(rows))
	for _, r := range rows {
		if matches(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

// matches requires all filters to pass, short-circuiting on the first
// failure.
func matches(r datagrid.Row, filters map[string]string) bool {
	for col, want := range filters {
		if want == "" {
			continue
		}
		cell := strings.ToLower(datagrid.FormatValue(r[col]))
		if !strings.Contains(cell, strings.ToLower(want)) {
			return false
		}
	}
	return true
}

func sortRows(rows []datagrid.Row, col string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		less := cellLess(rows[i][col], rows[j][col])
		if desc {
			return cellLess(rows[j][col], rows[i][col])
		}
		return less
	})
}

// cellLess orders two cell values, numerically when possible.
func cellLess(a, b any) bool {
	as, bs := datagrid.FormatValue(a), datagrid.FormatValue(b)
	af, aerr := strconv.ParseFloat(as, 64)
	bf, berr := strconv.ParseFloat(bs, 64)
	if aerr == nil && berr == nil {
		return af < bf
	}
	return as < bs
}
