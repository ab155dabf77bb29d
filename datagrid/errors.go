package datagrid

import "errors"

// Common errors returned by the datagrid package.
var (
	// ErrNoLoader is returned when a required loader is nil.
	ErrNoLoader = errors.New("loader is nil")

	// ErrNoColumns is returned when a grid is built without columns.
	ErrNoColumns = errors.New("no columns configured")

	// ErrUnknownColumn is returned when a query names a column the
	// data source does not know about.
	ErrUnknownColumn = errors.New("unknown column")
)
