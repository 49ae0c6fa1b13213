package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors shared by the service and store layers.
var (
	// ErrNotFound is returned when no order exists for the given id.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyItems is returned when an order would have no line items.
	ErrEmptyItems = errors.New("items required")
	// ErrOrderClosed is returned when items are added to, or item statuses
	// changed on, a paid, completed, or cancelled order.
	ErrOrderClosed = errors.New("order is closed")
	// ErrPaidOrderImmutable is returned when deleting a paid order.
	ErrPaidOrderImmutable = errors.New("paid orders cannot be deleted")
	// ErrTableUnavailable is returned when creating an order for a table
	// the registry does not report as available.
	ErrTableUnavailable = errors.New("table is not available")
)

// VersionConflictError indicates a commit raced with another writer: the
// stored version no longer matches the version the caller read. It is the
// only transient error in the domain; callers re-read and retry a bounded
// number of times.
type VersionConflictError struct {
	OrderID  string
	Expected int64
	Actual   int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("order %s: version conflict: expected %d, stored %d", e.OrderID, e.Expected, e.Actual)
}

// InvalidTransitionError indicates a requested status change is not in the
// transition table. Never retryable: the client acted on stale state.
type InvalidTransitionError struct {
	Entity    string
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.Current, e.Requested)
}

// InvariantViolationError indicates a mutation would corrupt the aggregate
// (negative quantity, discount out of range, reopening a paid order).
// Never retryable: the mutation itself is illegal.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return "invariant violation: " + e.Reason
}

// ItemNotFoundError indicates an order exists but has no such line item.
type ItemNotFoundError struct {
	OrderID string
	ItemID  string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("order %s: item %s not found", e.OrderID, e.ItemID)
}
