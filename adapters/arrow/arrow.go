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

// Package arrow adapts an Apache Arrow table into a datagrid Loader.
// The table is materialized into grid rows once; query evaluation is
// then local, like the mem adapter.
package arrow

import (
	"errors"

	apachearrow "github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/magpierre/fyne-datagrid/adapters/mem"
	"github.com/magpierre/fyne-datagrid/datagrid"
)

// ErrNilTable is returned when the source table is nil.
var ErrNilTable = errors.New("arrow table is nil")

// NewLoader materializes tbl and returns a Loader over its rows.
// Column names become row field keys, so grid column IDs should match
// the Arrow schema field names.
func NewLoader(tbl apachearrow.Table) (datagrid.Loader, error) {
	rows, err := Rows(tbl)
	if err != nil {
		return nil, err
	}
	return mem.NewLoader(rows), nil
}

// Rows converts every record of tbl into grid rows.
func Rows(tbl apachearrow.Table) ([]datagrid.Row, error) {
	if tbl == nil {
		return nil, ErrNilTable
	}

	fields := tbl.Schema().Fields()
	rows := make([]datagrid.Row, 0, tbl.NumRows())

	tr := array.NewTableReader(tbl, tbl.NumRows())
	defer tr.Release()
	for tr.Next() {
		rec := tr.Record()
		for i := 0; i < int(rec.NumRows()); i++ {
			row := make(datagrid.Row, len(fields))
			for c, field := range fields {
				row[field.Name] = cellValue(rec.Column(c), i)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// cellValue extracts a Go value from an Arrow column. Types without a
// native mapping fall back to their Arrow string form.
func cellValue(col apachearrow.Array, pos int) any {
	if col.IsNull(pos) {
		return nil
	}

	switch a := col.(type) {
	case *array.String:
		return a.Value(pos)
	case *array.Boolean:
		return a.Value(pos)
	case *array.Int8:
		return int64(a.Value(pos))
	case *array.Int16:
		return int64(a.Value(pos))
	case *array.Int32:
		return int64(a.Value(pos))
	case *array.Int64:
		return a.Value(pos)
	case *array.Uint8:
		return uint64(a.Value(pos))
	case *array.Uint16:
		return uint64(a.Value(pos))
	case *array.Uint32:
		return uint64(a.Value(pos))
	case *array.Uint64:
		return a.Value(pos)
	case *array.Float32:
		return float64(a.Value(pos))
	case *array.Float64:
		return a.Value(pos)
	default:
		return col.ValueStr(pos)
	}
}
