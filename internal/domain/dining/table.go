// Package dining is the boundary to the table registry collaborator.
package dining

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a table id is unknown.
var ErrNotFound = errors.New("table not found")

// TableStatus enumerates the occupancy states of a dining table.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// Table is a dining table. Number is the display-facing identifier printed
// on invoices, distinct from the storage id.
type Table struct {
	ID       string
	Number   int
	Capacity int
	Status   TableStatus
}

// Available reports whether a new order may be opened on the table.
func (t *Table) Available() bool {
	return t.Status == TableAvailable
}

// Registry provides read-only table lookups.
type Registry interface {
	List(ctx context.Context) ([]Table, error)
	// Get returns the table for the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Table, error)
}
