package arrow

import (
	"context"
	"testing"

	apachearrow "github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

func buildTable(t *testing.T) apachearrow.Table {
	t.Helper()
	pool := memory.NewGoAllocator()
	schema := apachearrow.NewSchema([]apachearrow.Field{
		{Name: "id", Type: apachearrow.BinaryTypes.String},
		{Name: "name", Type: apachearrow.BinaryTypes.String},
		{Name: "score", Type: apachearrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	b.Field(0).(*array.StringBuilder).AppendValues([]string{"a", "b", "c", "d"}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"Alpha", "Beta", "Gamma", "Delta"}, nil)
	sb := b.Field(2).(*array.Int64Builder)
	sb.AppendValues([]int64{10, 30, 20}, nil)
	sb.AppendNull()

	rec := b.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []apachearrow.Record{rec})
	t.Cleanup(tbl.Release)
	return tbl
}

func TestRows(t *testing.T) {
	rows, err := Rows(buildTable(t))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "a", rows[0]["id"])
	assert.Equal(t, "Alpha", rows[0]["name"])
	assert.Equal(t, int64(10), rows[0]["score"])
	assert.Nil(t, rows[3]["score"], "null cells come through as nil")
}

func TestRowsNilTable(t *testing.T) {
	_, err := Rows(nil)
	assert.ErrorIs(t, err, ErrNilTable)
}

func TestLoaderServesQueries(t *testing.T) {
	loader, err := NewLoader(buildTable(t))
	require.NoError(t, err)

	q := datagrid.Query{
		Page:     1,
		PageSize: 2,
		SortBy:   "score",
		SortDir:  datagrid.SortDescending,
		Filters:  map[string]string{},
	}
	res, err := loader(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, int64(30), res.Rows[0]["score"])

	q = datagrid.Query{
		Page:     1,
		PageSize: 10,
		Filters:  map[string]string{"name": "eta"},
	}
	res, err = loader(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Beta", res.Rows[0]["name"])
}
