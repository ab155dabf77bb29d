package mem

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

func sampleRows() []datagrid.Row {
	rows := make([]datagrid.Row, 0, 47)
	for i := 0; i < 47; i++ {
		name := fmt.Sprintf("Event %02d", i)
		if i%2 == 0 {
			name = fmt.Sprintf("Match %02d", i)
		}
		rows = append(rows, datagrid.Row{
			"id":    fmt.Sprintf("id-%02d", i),
			"name":  name,
			"score": i * 3,
		})
	}
	return rows
}

func query(page, size int) datagrid.Query {
	return datagrid.Query{Page: page, PageSize: size, Filters: map[string]string{}}
}

func TestPaging(t *testing.T) {
	loader := NewLoader(sampleRows())

	res, err := loader(context.Background(), query(1, 10))
	require.NoError(t, err)
	assert.Len(t, res.Rows, 10)
	assert.Equal(t, 47, res.Total)
	assert.Equal(t, "id-00", res.Rows[0]["id"])

	res, err = loader(context.Background(), query(5, 10))
	require.NoError(t, err)
	assert.Len(t, res.Rows, 7, "last page holds the remainder")
	assert.Equal(t, "id-40", res.Rows[0]["id"])

	res, err = loader(context.Background(), query(9, 10))
	require.NoError(t, err)
	assert.Empty(t, res.Rows, "pages past the end are empty")
	assert.Equal(t, 47, res.Total)
}

func TestFiltering(t *testing.T) {
	loader := NewLoader(sampleRows())

	q := query(1, 50)
	q.Filters["name"] = "match"
	res, err := loader(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 24, res.Total, "substring match is case-insensitive")

	// AND across columns.
	q.Filters["id"] = "id-0"
	res, err = loader(context.Background(), q)
	require.NoError(t, err)
	for _, r := range res.Rows {
		assert.Contains(t, r["name"], "Match")
		assert.Contains(t, r["id"], "id-0")
	}

	// Empty values are ignored.
	q = query(1, 50)
	q.Filters["name"] = ""
	res, err = loader(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 47, res.Total)

	// No match.
	q.Filters["name"] = "zzz"
	res, err = loader(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Equal(t, 0, res.Total)
}

func TestSorting(t *testing.T) {
	loader := NewLoader(sampleRows())

	q := query(1, 5)
	q.SortBy = "score"
	q.SortDir = datagrid.SortDescending
	res, err := loader(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 46*3, res.Rows[0]["score"], "numeric sort, not lexicographic")

	q.SortDir = datagrid.SortAscending
	res, err = loader(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows[0]["score"])

	q.SortBy = "name"
	res, err = loader(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "Event 01", res.Rows[0]["name"])
}

func TestSourceNotMutated(t *testing.T) {
	rows := sampleRows()
	loader := NewLoader(rows)

	q := query(1, 47)
	q.SortBy = "score"
	q.SortDir = datagrid.SortDescending
	_, err := loader(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "id-00", rows[0]["id"], "sorting operates on a filtered copy")
}

func TestCancelledContext(t *testing.T) {
	loader := NewLoader(sampleRows())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loader(ctx, query(1, 10))
	assert.Error(t, err)
}
