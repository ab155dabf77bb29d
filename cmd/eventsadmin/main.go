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

// Command eventsadmin is a demo admin surface for a sports-events
// table: a DataGrid backed by SQLite through the sqlsource adapter,
// with a yaegi-compiled status renderer, per-row detail dialogs and a
// bulk cancel action.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/magpierre/fyne-datagrid/adapters/sqlsource"
	"github.com/magpierre/fyne-datagrid/datagrid"
	"github.com/magpierre/fyne-datagrid/renderexpr"
	dgwidget "github.com/magpierre/fyne-datagrid/widget"
)

func main() {
	a := app.NewWithID("com.github.magpierre.fyne-datagrid.eventsadmin")
	w := a.NewWindow("Events Admin")

	db, err := openDB()
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := seed(db); err != nil {
		log.Fatalf("seed database: %v", err)
	}

	loader, err := sqlsource.NewLoader(db, sqlsource.Config{
		Table: "events",
		Columns: []sqlsource.Column{
			{ID: "id", Expr: "id"},
			{ID: "name", Expr: "name"},
			{ID: "venue", Expr: "venue"},
			{ID: "starts", Expr: "starts"},
			{ID: "status", Expr: "status"},
			{ID: "registered", Expr: "registered"},
		},
	})
	if err != nil {
		log.Fatalf("build loader: %v", err)
	}

	// Status rendering is interpreted at runtime, the way an admin
	// deployment would configure it without a rebuild.
	statusRender, err := renderexpr.Compile(
		`return strings.ToUpper(fmt.Sprintf("%v", value))`)
	if err != nil {
		log.Fatalf("compile status renderer: %v", err)
	}

	cfg := dgwidget.DefaultConfig()
	cfg.Loader = loader
	cfg.PageSize = 12
	cfg.SortBy = "starts"
	cfg.SortDir = datagrid.SortAscending
	cfg.EmptyMessage = "No events match the current filters"
	cfg.Columns = []datagrid.Column{
		{ID: "name", Title: "Event", Sortable: true, Filterable: true},
		{ID: "venue", Title: "Venue", Sortable: true, Filterable: true},
		{ID: "starts", Title: "Starts", Sortable: true},
		{ID: "status", Title: "Status", Sortable: true, Filterable: true, Render: statusRender},
		{ID: "registered", Title: "Registered", Sortable: true},
	}
	cfg.RowActions = func(row datagrid.Row) fyne.CanvasObject {
		return widget.NewButtonWithIcon("", theme.InfoIcon(), func() {
			detail := fmt.Sprintf("%v at %v\nStarts: %v\nStatus: %v\nRegistered: %v",
				row["name"], row["venue"], row["starts"], row["status"], row["registered"])
			dialog.ShowInformation("Event details", detail, w)
		})
	}

	cfg.BulkActions = func(ids []string, clear, reload func()) fyne.CanvasObject {
		return widget.NewButtonWithIcon(
			fmt.Sprintf("Cancel %d selected", len(ids)), theme.CancelIcon(), func() {
				if err := cancelEvents(db, ids); err != nil {
					dialog.ShowError(err, w)
					return
				}
				clear()
				reload()
			})
	}

	grid, err := dgwidget.New(cfg)
	if err != nil {
		log.Fatalf("build grid: %v", err)
	}
	defer grid.Close()

	w.SetContent(grid)
	w.Resize(fyne.NewSize(960, 640))
	w.ShowAndRun()
}

func openDB() (*sql.DB, error) {
	dsn := filepath.Join(os.TempDir(), "eventsadmin.db")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// seed creates and fills the events table on first run.
func seed(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		venue TEXT NOT NULL,
		starts TEXT NOT NULL,
		status TEXT NOT NULL,
		registered INTEGER NOT NULL
	)`)
	if err != nil {
		return err
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	sports := []string{"Marathon", "Triathlon", "Regatta", "Cup Final", "Open", "Championship", "Derby", "Grand Prix"}
	cities := []string{"Lisbon", "Oslo", "Nagoya", "Porto", "Seville", "Graz", "Lyon", "Tampere"}
	venues := []string{"Riverside Arena", "Olympic Park", "City Stadium", "Harbour Track", "North Field"}
	statuses := []string{"scheduled", "open", "sold out", "cancelled"}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO events (id, name, venue, starts, status, registered)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	base := time.Now()
	for i := 0; i < 137; i++ {
		name := fmt.Sprintf("%s %s", cities[rand.Intn(len(cities))], sports[rand.Intn(len(sports))])
		starts := base.AddDate(0, 0, rand.Intn(365)).Format("2006-01-02")
		_, err := stmt.Exec(
			uuid.NewString(),
			name,
			venues[rand.Intn(len(venues))],
			starts,
			statuses[rand.Intn(len(statuses))],
			rand.Intn(500),
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	log.Println("seeded events table")
	return tx.Commit()
}

func cancelEvents(db *sql.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := db.Exec(`UPDATE events SET status = 'cancelled' WHERE id IN (`+placeholders+`)`, args...)
	return err
}
