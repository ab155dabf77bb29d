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

package datagrid

import (
	"context"
	"sort"
	"sync"

	"github.com/magpierre/fyne-datagrid/internal/debounce"
)

// Controller is the single source of truth for one grid instance:
// the effective query, the loaded page, the load lifecycle and the
// row selection. It owns no presentation; the widget package renders
// from State() and feeds interactions back in.
//
// Every state transition dispatches at most one load. Overlapping
// loads are resolved by a generation guard: each dispatch tags itself
// with the generation it was issued for and a completion only commits
// while its generation is still current, so the last dispatched query
// wins regardless of response order.
type Controller struct {
	loader Loader
	rowID  RowIDFunc
	deb    *debounce.Debouncer

	mu      sync.Mutex
	query   Query
	raw     map[string]string // filter values as typed, pre-debounce
	rows    []Row
	total   int
	loading bool
	loaded  bool
	err     error
	gen     uint64
	cancel  context.CancelFunc
	sel     map[string]struct{}

	onChange func()
}

// NewController creates a controller around the given loader.
// No load is dispatched until Reload is called.
func NewController(loader Loader, opts Options) (*Controller, error) {
	if loader == nil {
		return nil, ErrNoLoader
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.RowID == nil {
		opts.RowID = DefaultRowID
	}

	filters := make(map[string]string, len(opts.Filters))
	raw := make(map[string]string, len(opts.Filters))
	for k, v := range opts.Filters {
		filters[k] = v
		raw[k] = v
	}

	sortDir := opts.SortDir
	if opts.SortBy != "" && sortDir == SortNone {
		sortDir = SortAscending
	}

	return &Controller{
		loader: loader,
		rowID:  opts.RowID,
		deb:    debounce.New(opts.Debounce),
		query: Query{
			Page:     1,
			PageSize: opts.PageSize,
			SortBy:   opts.SortBy,
			SortDir:  sortDir,
			Filters:  filters,
		},
		raw: raw,
		sel: make(map[string]struct{}),
	}, nil
}

// OnChange registers a callback invoked after every committed state
// transition. It may be invoked from a loader or timer goroutine.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Close cancels any pending debounced filter and in-flight load.
func (c *Controller) Close() {
	c.deb.Stop()
	c.mu.Lock()
	c.gen++ // any in-flight completion is now stale
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
}

// State returns a snapshot for presentation.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Rows:    c.rows,
		Total:   c.total,
		Loading: c.loading,
		Err:     c.err,
		Query:   c.query.clone(),
		Loaded:  c.loaded,
	}
}

// Reload dispatches the current effective query. It is both the
// initial load trigger and the user-facing refresh/retry.
func (c *Controller) Reload() {
	c.mu.Lock()
	c.dispatchLocked()
	c.mu.Unlock()
	c.notify()
}

// SetPage moves to page n, clamped into [1, totalPages]. A request
// for the page already being loaded (or shown) is a no-op.
func (c *Controller) SetPage(n int) {
	c.mu.Lock()
	n = clamp(n, 1, totalPages(c.total, c.query.PageSize))
	if n == c.query.Page {
		c.mu.Unlock()
		return
	}
	c.query.Page = n
	c.dispatchLocked()
	c.mu.Unlock()
	c.notify()
}

// SetSort makes col the active sort column. Clicking the active
// column toggles the direction; a new column starts ascending.
// The page resets to 1 either way.
func (c *Controller) SetSort(col string) {
	c.mu.Lock()
	if c.query.SortBy == col && c.query.SortDir == SortAscending {
		c.query.SortDir = SortDescending
	} else {
		c.query.SortBy = col
		c.query.SortDir = SortAscending
	}
	c.query.Page = 1
	c.dispatchLocked()
	c.mu.Unlock()
	c.notify()
}

// SetFilter records the raw filter value for col. The effective query
// only changes once the debounce quiet period elapses, and only when
// the final value of the burst differs from the current one.
func (c *Controller) SetFilter(col, value string) {
	c.mu.Lock()
	c.raw[col] = value
	c.mu.Unlock()
	c.deb.Trigger(c.applyFilters)
}

// FilterValue returns the raw (pre-debounce) value for col, which is
// what the visible input control should display.
func (c *Controller) FilterValue(col string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw[col]
}

// applyFilters promotes the raw filter values into the effective
// query. Fired by the debouncer after a quiet period.
func (c *Controller) applyFilters() {
	c.mu.Lock()
	// Absent and empty filter values are equivalent, so a map lookup
	// yielding "" on either side compares correctly.
	changed := false
	for k, v := range c.raw {
		if c.query.Filters[k] != v {
			changed = true
			break
		}
	}
	if !changed {
		for k, v := range c.query.Filters {
			if c.raw[k] != v {
				changed = true
				break
			}
		}
	}
	if !changed {
		c.mu.Unlock()
		return
	}
	filters := make(map[string]string, len(c.raw))
	for k, v := range c.raw {
		filters[k] = v
	}
	c.query.Filters = filters
	c.query.Page = 1
	c.dispatchLocked()
	c.mu.Unlock()
	c.notify()
}

// dispatchLocked starts a load for the current query. Callers hold mu.
func (c *Controller) dispatchLocked() {
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.loading = true
	c.err = nil
	q := c.query.clone()

	go func() {
		res, err := c.loader(ctx, q)
		c.complete(gen, res, err)
	}()
}

// complete commits a finished load, unless a newer query has been
// dispatched since, in which case the result is discarded outright.
func (c *Controller) complete(gen uint64, res LoadResult, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.loading = false
	if err != nil {
		// Keep previously loaded rows: a stale page beats a blank one
		// when a refresh fails.
		c.err = err
		c.mu.Unlock()
		c.notify()
		return
	}

	if res.Rows == nil {
		res.Rows = []Row{}
	}
	if res.Total < 0 {
		res.Total = 0
	}
	c.rows = res.Rows
	c.total = res.Total
	c.err = nil
	c.loaded = true
	c.sel = make(map[string]struct{})

	// A filter may have shrunk the result set underneath the current
	// page; step back to the last page that still exists.
	if last := totalPages(c.total, c.query.PageSize); c.query.Page > last {
		c.query.Page = last
		c.dispatchLocked()
	}
	c.mu.Unlock()
	c.notify()
}

// ToggleAll selects every currently displayed row, or clears the
// selection entirely. It never includes rows outside the loaded page.
func (c *Controller) ToggleAll(checked bool) {
	c.mu.Lock()
	c.sel = make(map[string]struct{})
	if checked {
		for _, r := range c.rows {
			c.sel[c.rowID(r)] = struct{}{}
		}
	}
	c.mu.Unlock()
	c.notify()
}

// ToggleOne adds or removes a single row identifier.
func (c *Controller) ToggleOne(id string, checked bool) {
	c.mu.Lock()
	if checked {
		c.sel[id] = struct{}{}
	} else {
		delete(c.sel, id)
	}
	c.mu.Unlock()
	c.notify()
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.sel = make(map[string]struct{})
	c.mu.Unlock()
	c.notify()
}

// Selected returns the selected row identifiers in stable order.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	ids := make([]string, 0, len(c.sel))
	for id := range c.sel {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// IsSelected reports whether id is in the selection.
func (c *Controller) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sel[id]
	return ok
}

// SelectionCount returns the number of selected rows.
func (c *Controller) SelectionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sel)
}

// RowID exposes the identifier extractor for the presentation layer.
func (c *Controller) RowID(r Row) string {
	return c.rowID(r)
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
