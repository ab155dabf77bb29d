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

// Package widget provides the DataGrid Fyne widget: a remote-backed
// table with server-side pagination, sorting, debounced per-column
// filtering, row selection and bulk actions.
package widget

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

// Config configures a DataGrid. Populate the fields before calling
// New; the columns and callbacks are fixed for the grid's lifetime.
type Config struct {
	// Columns describes the rendered columns, in display order.
	Columns []datagrid.Column

	// Loader fetches one page of data per effective query.
	Loader datagrid.Loader

	// RowID extracts selection identifiers; defaults to the "id" field.
	RowID datagrid.RowIDFunc

	// PageSize is the number of rows per page.
	PageSize int

	// SortBy and SortDir set the initial sort.
	SortBy  string
	SortDir datagrid.SortDirection

	// Filters seeds initial filter values, keyed by column ID.
	Filters map[string]string

	// Debounce is the filter quiet period.
	Debounce time.Duration

	// EmptyMessage is shown when a load succeeds with zero rows.
	EmptyMessage string

	// RowActions optionally renders a trailing actions cell per row.
	RowActions func(row datagrid.Row) fyne.CanvasObject

	// BulkActions optionally renders an action bar for the current
	// selection. It receives the selected identifiers plus callbacks
	// to clear the selection and to reload the current query, so an
	// action's side effects can be reflected immediately.
	BulkActions func(ids []string, clear func(), reload func()) fyne.CanvasObject
}

// DefaultConfig returns a Config with the standard defaults applied.
func DefaultConfig() Config {
	return Config{
		PageSize:     datagrid.DefaultPageSize,
		Debounce:     datagrid.DefaultDebounce,
		EmptyMessage: "No records found",
	}
}

// DataGrid is a remote-backed data table widget. All data access goes
// through the configured Loader; the widget itself owns no I/O.
type DataGrid struct {
	widget.BaseWidget

	cfg  Config
	ctrl *datagrid.Controller

	allCheck   *widget.Check
	sortBtns   map[string]*widget.Button
	sortTitles map[string]string
	entries    map[string]*widget.Entry
	bodyBox    *fyne.Container
	bulkBox    *fyne.Container
	caption    *widget.Label
	firstBtn   *widget.Button
	prevBtn    *widget.Button
	nextBtn    *widget.Button
	lastBtn    *widget.Button
	refreshBtn *widget.Button
	content    fyne.CanvasObject
}

// New creates a DataGrid and dispatches its initial load.
func New(cfg Config) (*DataGrid, error) {
	if len(cfg.Columns) == 0 {
		return nil, datagrid.ErrNoColumns
	}
	if cfg.Loader == nil {
		return nil, datagrid.ErrNoLoader
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = DefaultConfig().EmptyMessage
	}

	ctrl, err := datagrid.NewController(cfg.Loader, datagrid.Options{
		PageSize: cfg.PageSize,
		SortBy:   cfg.SortBy,
		SortDir:  cfg.SortDir,
		Filters:  cfg.Filters,
		Debounce: cfg.Debounce,
		RowID:    cfg.RowID,
	})
	if err != nil {
		return nil, err
	}

	g := &DataGrid{
		cfg:        cfg,
		ctrl:       ctrl,
		sortBtns:   make(map[string]*widget.Button),
		sortTitles: make(map[string]string),
		entries:    make(map[string]*widget.Entry),
	}
	g.ExtendBaseWidget(g)
	g.buildChrome()

	ctrl.OnChange(g.refreshFromState)
	ctrl.Reload()
	return g, nil
}

// CreateRenderer implements fyne.Widget.
func (g *DataGrid) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(g.content)
}

// Controller exposes the underlying state controller, e.g. for wiring
// external refresh triggers.
func (g *DataGrid) Controller() *datagrid.Controller { return g.ctrl }

// Reload re-dispatches the current effective query.
func (g *DataGrid) Reload() { g.ctrl.Reload() }

// Selected returns the currently selected row identifiers.
func (g *DataGrid) Selected() []string { return g.ctrl.Selected() }

// ClearSelection empties the selection.
func (g *DataGrid) ClearSelection() { g.ctrl.ClearSelection() }

// Close releases the grid's timers and in-flight load.
func (g *DataGrid) Close() { g.ctrl.Close() }

// columnCount is the number of layout columns: selection checkbox,
// data columns, and an optional trailing actions column.
func (g *DataGrid) columnCount() int {
	n := 1 + len(g.cfg.Columns)
	if g.cfg.RowActions != nil {
		n++
	}
	return n
}

// buildChrome assembles the static parts: header, bulk bar, scrolling
// body holder and pager footer. The body content is swapped on every
// state change.
func (g *DataGrid) buildChrome() {
	g.allCheck = widget.NewCheck("", func(checked bool) {
		g.ctrl.ToggleAll(checked)
	})

	headerCells := []fyne.CanvasObject{container.NewVBox(g.allCheck)}
	for _, col := range g.cfg.Columns {
		headerCells = append(headerCells, g.buildHeaderCell(col))
	}
	if g.cfg.RowActions != nil {
		headerCells = append(headerCells, widget.NewLabel(""))
	}
	header := container.NewGridWithColumns(g.columnCount(), headerCells...)

	g.bulkBox = container.NewVBox()
	g.bulkBox.Hide()

	g.bodyBox = container.NewVBox()

	g.firstBtn = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), func() {
		g.ctrl.SetPage(1)
	})
	g.prevBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
		g.ctrl.SetPage(g.ctrl.State().Query.Page - 1)
	})
	g.nextBtn = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
		g.ctrl.SetPage(g.ctrl.State().Query.Page + 1)
	})
	g.lastBtn = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), func() {
		g.ctrl.SetPage(g.ctrl.State().TotalPages())
	})
	g.refreshBtn = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		g.ctrl.Reload()
	})
	g.caption = widget.NewLabel("")

	footer := container.NewHBox(
		g.firstBtn, g.prevBtn,
		layout.NewSpacer(), g.caption, layout.NewSpacer(),
		g.nextBtn, g.lastBtn, g.refreshBtn,
	)

	g.content = container.NewBorder(
		container.NewVBox(header, widget.NewSeparator(), g.bulkBox),
		container.NewVBox(widget.NewSeparator(), footer),
		nil, nil,
		container.NewVScroll(g.bodyBox),
	)
}

// buildHeaderCell renders the title (a sort button for sortable
// columns, a bold label otherwise) with an optional filter entry
// underneath. Unsortable titles are plain labels, so clicking them
// does nothing.
func (g *DataGrid) buildHeaderCell(col datagrid.Column) fyne.CanvasObject {
	id := col.ID
	var title fyne.CanvasObject
	if col.Sortable {
		btn := widget.NewButton(col.Title, func() {
			g.ctrl.SetSort(id)
		})
		g.sortBtns[id] = btn
		g.sortTitles[id] = col.Title
		title = btn
	} else {
		title = widget.NewLabelWithStyle(col.Title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}

	if !col.Filterable {
		return container.NewVBox(title)
	}

	entry := widget.NewEntry()
	entry.SetPlaceHolder("Filter...")
	entry.Text = g.ctrl.FilterValue(id)
	entry.OnChanged = func(s string) {
		g.ctrl.SetFilter(id, s)
	}
	g.entries[id] = entry
	return container.NewVBox(title, entry)
}

// refreshFromState re-renders everything state-driven. It runs after
// every committed controller transition, including loader completions
// on their own goroutine.
func (g *DataGrid) refreshFromState() {
	st := g.ctrl.State()
	pages := st.TotalPages()

	g.caption.SetText(fmt.Sprintf("Page %d of %d • %d total", st.Query.Page, pages, st.Total))
	setEnabled(g.firstBtn, st.Query.Page > 1)
	setEnabled(g.prevBtn, st.Query.Page > 1)
	setEnabled(g.nextBtn, st.Query.Page < pages)
	setEnabled(g.lastBtn, st.Query.Page < pages)

	for id, btn := range g.sortBtns {
		text := g.sortTitles[id]
		if id == st.Query.SortBy {
			if st.Query.SortDir == datagrid.SortDescending {
				text += " ↓"
			} else {
				text += " ↑"
			}
		}
		btn.SetText(text)
	}

	g.bodyBox.Objects = g.bodyContent(st)
	g.bodyBox.Refresh()

	selected := g.ctrl.SelectionCount()
	g.allCheck.Checked = len(st.Rows) > 0 && selected == len(st.Rows)
	g.allCheck.Refresh()

	if selected > 0 && g.cfg.BulkActions != nil {
		bar := g.cfg.BulkActions(g.ctrl.Selected(), g.ctrl.ClearSelection, g.ctrl.Reload)
		g.bulkBox.Objects = []fyne.CanvasObject{bar}
		g.bulkBox.Show()
	} else {
		g.bulkBox.Objects = nil
		g.bulkBox.Hide()
	}
	g.bulkBox.Refresh()

	g.Refresh()
}

// bodyContent picks the body visual state: loading skeleton, error,
// empty message or data rows, in that precedence order. A failed
// refresh keeps the previously loaded rows visible under the error.
func (g *DataGrid) bodyContent(st datagrid.State) []fyne.CanvasObject {
	if st.Loading {
		rows := make([]fyne.CanvasObject, 0, st.Query.PageSize)
		for i := 0; i < st.Query.PageSize; i++ {
			rows = append(rows, g.skeletonRow())
		}
		return rows
	}

	if st.Err != nil {
		errLabel := widget.NewLabelWithStyle(st.Err.Error(), fyne.TextAlignCenter, fyne.TextStyle{})
		errLabel.Importance = widget.DangerImportance
		out := []fyne.CanvasObject{errLabel}
		if st.Loaded && len(st.Rows) > 0 {
			out = append(out, widget.NewSeparator())
			for _, r := range st.Rows {
				out = append(out, g.buildRow(r))
			}
		}
		return out
	}

	if len(st.Rows) == 0 {
		empty := widget.NewLabelWithStyle(g.cfg.EmptyMessage, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
		return []fyne.CanvasObject{empty}
	}

	out := make([]fyne.CanvasObject, 0, len(st.Rows))
	for _, r := range st.Rows {
		out = append(out, g.buildRow(r))
	}
	return out
}

func (g *DataGrid) skeletonRow() fyne.CanvasObject {
	cells := make([]fyne.CanvasObject, 0, g.columnCount())
	cells = append(cells, widget.NewLabel(""))
	for i := 1; i < g.columnCount(); i++ {
		ph := widget.NewLabel("░░░░░")
		ph.Importance = widget.LowImportance
		cells = append(cells, ph)
	}
	return container.NewGridWithColumns(g.columnCount(), cells...)
}

func (g *DataGrid) buildRow(r datagrid.Row) fyne.CanvasObject {
	id := g.ctrl.RowID(r)
	check := widget.NewCheck("", func(checked bool) {
		g.ctrl.ToggleOne(id, checked)
	})
	check.Checked = g.ctrl.IsSelected(id)

	cells := []fyne.CanvasObject{check}
	for _, col := range g.cfg.Columns {
		value := r[col.ID]
		var text string
		if col.Render != nil {
			text = col.Render(value, r)
		} else {
			text = datagrid.FormatValue(value)
		}
		lbl := widget.NewLabel(text)
		lbl.Truncation = fyne.TextTruncateEllipsis
		cells = append(cells, lbl)
	}
	if g.cfg.RowActions != nil {
		cells = append(cells, g.cfg.RowActions(r))
	}
	return container.NewGridWithColumns(g.columnCount(), cells...)
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}
