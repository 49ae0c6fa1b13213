// Package order holds the Order aggregate: the single shared mutable
// resource of the system. Every mutation flows through a Store commit that
// re-validates the aggregate and bumps its version, so independently
// polling clients can never silently overwrite each other.
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the lifecycle states of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further order transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ItemStatus enumerates the kitchen-side states of a single line item.
// Items have no completed/cancelled states of their own; they freeze once
// the owning order reaches a terminal status.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemPreparing ItemStatus = "preparing"
	ItemReady     ItemStatus = "ready"
	ItemServed    ItemStatus = "served"
)

// PaymentMethod enumerates how an order was settled. Empty until paid.
type PaymentMethod string

const (
	PayCash PaymentMethod = "cash"
	PayCard PaymentMethod = "card"
	PayQR   PaymentMethod = "qr"
)

// Valid reports whether m is one of the supported settlement methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCard, PayQR:
		return true
	}
	return false
}

// OrderItem is a single line of an order. UnitPrice and Name are snapshots
// taken from the catalog at add-time: later catalog edits must never
// retroactively change a stored order or its invoice.
type OrderItem struct {
	ID         string
	MenuItemID string
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	Status     ItemStatus
}

// Subtotal returns UnitPrice × Quantity.
func (it OrderItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Order is the aggregate root. Version is a monotonic counter used for
// optimistic concurrency: every successful commit increments it by one, and
// a commit against a stale version is rejected. TableNumber is snapshotted
// from the table registry at creation so invoices stay stable.
type Order struct {
	ID              string
	TableID         string
	TableNumber     int
	Status          Status
	DiscountPercent decimal.Decimal
	IsPaid          bool
	PaymentMethod   PaymentMethod
	PaidAt          *time.Time
	CreatedAt       time.Time
	Version         int64
	Items           []OrderItem
}

// Closed reports whether the order accepts no further item additions or
// item transitions: paid, completed, or cancelled.
func (o *Order) Closed() bool {
	return o.IsPaid || o.Status.Terminal()
}

// Item returns the line item with the given id, or nil.
func (o *Order) Item(itemID string) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the aggregate. Store implementations mutate
// the copy so a failed commit leaves the stored state untouched.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	if o.PaidAt != nil {
		t := *o.PaidAt
		c.PaidAt = &t
	}
	return &c
}

var hundred = decimal.NewFromInt(100)

// Validate checks the snapshot invariants of the aggregate and returns an
// *InvariantViolationError describing the first violation found.
func (o *Order) Validate() error {
	switch o.Status {
	case StatusPending, StatusPreparing, StatusReady, StatusServed, StatusCompleted, StatusCancelled:
	default:
		return &InvariantViolationError{Reason: "unknown order status " + string(o.Status)}
	}
	if o.DiscountPercent.IsNegative() || o.DiscountPercent.GreaterThan(hundred) {
		return &InvariantViolationError{Reason: "discount percent must be within [0,100]"}
	}
	if o.IsPaid && !o.PaymentMethod.Valid() {
		return &InvariantViolationError{Reason: "paid order has no payment method"}
	}
	if len(o.Items) == 0 {
		return &InvariantViolationError{Reason: "order has no items"}
	}
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return &InvariantViolationError{Reason: "item quantity must be greater than 0"}
		}
		if it.UnitPrice.IsNegative() {
			return &InvariantViolationError{Reason: "item price must not be negative"}
		}
		switch it.Status {
		case ItemPending, ItemPreparing, ItemReady, ItemServed:
		default:
			return &InvariantViolationError{Reason: "unknown item status " + string(it.Status)}
		}
	}
	return nil
}

// ValidateMutation checks the cross-version invariants between the stored
// aggregate and the mutated copy a commit is about to persist. Stores call
// this after applying the mutation and before writing anything.
func ValidateMutation(prev, next *Order) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if prev.IsPaid && !next.IsPaid {
		return &InvariantViolationError{Reason: "is_paid cannot be unset"}
	}
	if prev.IsPaid && next.DiscountPercent.Cmp(prev.DiscountPercent) != 0 {
		return &InvariantViolationError{Reason: "discount cannot change after payment"}
	}
	if prev.Status.Terminal() {
		if next.Status != prev.Status {
			return &InvariantViolationError{Reason: "order status is terminal"}
		}
		if itemsChanged(prev.Items, next.Items) {
			return &InvariantViolationError{Reason: "items of a closed order cannot change"}
		}
	}
	if len(next.Items) < len(prev.Items) {
		return &InvariantViolationError{Reason: "items cannot be removed from an order"}
	}
	return nil
}

func itemsChanged(prev, next []OrderItem) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i].ID != next[i].ID || prev[i].Status != next[i].Status ||
			prev[i].Quantity != next[i].Quantity || !prev[i].UnitPrice.Equal(next[i].UnitPrice) {
			return true
		}
	}
	return false
}
