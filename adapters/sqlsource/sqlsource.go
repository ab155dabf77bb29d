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

// Package sqlsource adapts a database/sql table into a datagrid
// Loader. Filtering, sorting and paging are pushed down to the
// database: filters become LIKE clauses, the sort column an ORDER BY,
// and the page a LIMIT/OFFSET, with a matching COUNT(*) for the
// total. Column identifiers are whitelisted through the Config, so
// query state never reaches the SQL text directly.
package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

// Column maps a grid column ID to the SQL expression that backs it.
type Column struct {
	// ID is the grid-side column identifier and row field key.
	ID string

	// Expr is the SQL column name or expression selected for it.
	Expr string
}

// Config describes the queried table.
type Config struct {
	// Table is the table (or view) name.
	Table string

	// Columns lists the selectable columns in row-field order.
	Columns []Column
}

// Errors returned while building a loader.
var (
	ErrNoTable = errors.New("table name is empty")
	ErrNilDB   = errors.New("database handle is nil")
)

// NewLoader returns a Loader issuing per-query SELECTs against db.
func NewLoader(db *sql.DB, cfg Config) (datagrid.Loader, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	if cfg.Table == "" {
		return nil, ErrNoTable
	}
	if len(cfg.Columns) == 0 {
		return nil, datagrid.ErrNoColumns
	}

	exprs := make(map[string]string, len(cfg.Columns))
	selectList := make([]string, len(cfg.Columns))
	for i, c := range cfg.Columns {
		exprs[c.ID] = c.Expr
		selectList[i] = c.Expr
	}
	selectClause := strings.Join(selectList, ", ")

	return func(ctx context.Context, q datagrid.Query) (datagrid.LoadResult, error) {
		where, args, err := buildWhere(cfg.Columns, exprs, q.Filters)
		if err != nil {
			return datagrid.LoadResult{}, err
		}

		var total int
		countSQL := "SELECT COUNT(*) FROM " + cfg.Table + where
		if err := db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
			return datagrid.LoadResult{}, fmt.Errorf("count query: %w", err)
		}

		order, err := buildOrder(exprs, q)
		if err != nil {
			return datagrid.LoadResult{}, err
		}

		pageSQL := "SELECT " + selectClause + " FROM " + cfg.Table + where + order + " LIMIT ? OFFSET ?"
		pageArgs := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)

		rows, err := db.QueryContext(ctx, pageSQL, pageArgs...)
		if err != nil {
			return datagrid.LoadResult{}, fmt.Errorf("page query: %w", err)
		}
		defer rows.Close()

		out := make([]datagrid.Row, 0, q.PageSize)
		for rows.Next() {
			vals := make([]any, len(cfg.Columns))
			ptrs := make([]any, len(vals))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return datagrid.LoadResult{}, fmt.Errorf("scan row: %w", err)
			}
			row := make(datagrid.Row, len(cfg.Columns))
			for i, c := range cfg.Columns {
				row[c.ID] = normalize(vals[i])
			}
			out = append(out, row)
		}
		if err := rows.Err(); err != nil {
			return datagrid.LoadResult{}, err
		}
		return datagrid.LoadResult{Rows: out, Total: total}, nil
	}, nil
}

// buildWhere turns the non-empty filters into LIKE clauses, in the
// configured column order so placeholder args are deterministic.
func buildWhere(cols []Column, exprs map[string]string, filters map[string]string) (string, []any, error) {
	for id, v := range filters {
		if v == "" {
			continue
		}
		if _, ok := exprs[id]; !ok {
			return "", nil, fmt.Errorf("%w: %s", datagrid.ErrUnknownColumn, id)
		}
	}

	var clauses []string
	var args []any
	for _, c := range cols {
		v := filters[c.ID]
		if v == "" {
			continue
		}
		clauses = append(clauses, c.Expr+` LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(v)+"%")
	}
	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func buildOrder(exprs map[string]string, q datagrid.Query) (string, error) {
	if q.SortBy == "" || q.SortDir == datagrid.SortNone {
		return "", nil
	}
	expr, ok := exprs[q.SortBy]
	if !ok {
		return "", fmt.Errorf("%w: %s", datagrid.ErrUnknownColumn, q.SortBy)
	}
	dir := " ASC"
	if q.SortDir == datagrid.SortDescending {
		dir = " DESC"
	}
	return " ORDER BY " + expr + dir, nil
}

// escapeLike protects LIKE metacharacters in user-typed filter text.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// normalize maps driver values to plain Go values; []byte columns
// come back as strings so renderers see text.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
