// Package catalog is the boundary to the menu catalog collaborator. The
// billing core only ever reads a price snapshot from it at item-add time;
// it never re-derives prices from the live catalog afterwards.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a menu item id is unknown.
var ErrNotFound = errors.New("menu item not found")

// UnavailableError indicates a menu item exists but is currently switched
// off and cannot be ordered.
type UnavailableError struct {
	MenuItemID string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("menu item %s is not available", e.MenuItemID)
}

// MenuItem is a catalog entry as the core sees it.
type MenuItem struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Category  string
	Available bool
}

// Catalog provides read-only menu lookups.
type Catalog interface {
	// List returns the full catalog ordered by id.
	List(ctx context.Context) ([]MenuItem, error)
	// GetByIDs returns the items for the given ids in a single batch.
	// Missing ids are simply absent from the result; callers detect them.
	GetByIDs(ctx context.Context, ids []string) ([]MenuItem, error)
}
