package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/dinetab/internal/domain/catalog"
	"github.com/xenking/dinetab/internal/domain/dining"
)

// NewItem is a request to add a line to an order. The price is looked up
// and snapshotted by the service, never supplied by the client.
type NewItem struct {
	MenuItemID string
	Quantity   int
}

// InvalidQuantityError indicates a requested line has a non-positive
// quantity.
type InvalidQuantityError struct {
	MenuItemID string
}

func (e *InvalidQuantityError) Error() string {
	return "quantity must be greater than 0 for menu item " + e.MenuItemID
}

// Service implements the order intents exposed to clients: create,
// transition, add items, delete. Settlement lives in the payment package.
type Service struct {
	store   Store
	catalog catalog.Catalog
	tables  dining.Registry
	now     func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(store Store, cat catalog.Catalog, tables dining.Registry) *Service {
	return &Service{
		store:   store,
		catalog: cat,
		tables:  tables,
		now:     time.Now,
	}
}

// Create opens a new order on the given table with an initial item set and
// discount. The table must be reported available by the registry; every
// menu item must exist and be available. Prices and names are snapshotted
// from the catalog at this moment.
func (s *Service) Create(ctx context.Context, tableID string, items []NewItem, discountPercent decimal.Decimal) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return nil, &InvariantViolationError{Reason: "discount percent must be within [0,100]"}
	}

	table, err := s.tables.Get(ctx, tableID)
	if err != nil {
		return nil, errors.Wrap(err, "lookup table")
	}
	if !table.Available() {
		return nil, ErrTableUnavailable
	}

	lines, err := s.snapshotItems(ctx, items)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:              uuid.New().String(),
		TableID:         table.ID,
		TableNumber:     table.Number,
		Status:          StatusPending,
		DiscountPercent: discountPercent,
		CreatedAt:       s.now(),
		Version:         0,
		Items:           lines,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Get returns the current aggregate; clients read the version from it and
// echo it back on their next mutation.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.store.Get(ctx, id)
}

// TransitionOrder moves the order to the requested status, provided the
// state machine allows it from the currently stored status.
func (s *Service) TransitionOrder(ctx context.Context, id string, expectedVersion int64, next Status) (*Order, error) {
	return s.store.Commit(ctx, id, expectedVersion, func(o *Order) error {
		if err := ValidateOrderTransition(o.Status, next); err != nil {
			return err
		}
		o.Status = next
		return nil
	})
}

// TransitionItem moves a single line item to the requested status. Items
// freeze once the order is paid, completed, or cancelled.
func (s *Service) TransitionItem(ctx context.Context, orderID, itemID string, expectedVersion int64, next ItemStatus) (*Order, error) {
	return s.store.Commit(ctx, orderID, expectedVersion, func(o *Order) error {
		if o.Closed() {
			return ErrOrderClosed
		}
		it := o.Item(itemID)
		if it == nil {
			return &ItemNotFoundError{OrderID: orderID, ItemID: itemID}
		}
		if err := ValidateItemTransition(it.Status, next); err != nil {
			return err
		}
		it.Status = next
		return nil
	})
}

// AddItems appends lines to an open order, snapshotting catalog prices the
// same way Create does.
func (s *Service) AddItems(ctx context.Context, orderID string, expectedVersion int64, items []NewItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	lines, err := s.snapshotItems(ctx, items)
	if err != nil {
		return nil, err
	}
	return s.store.Commit(ctx, orderID, expectedVersion, func(o *Order) error {
		if o.Closed() {
			return ErrOrderClosed
		}
		o.Items = append(o.Items, lines...)
		return nil
	})
}

// Delete removes an unpaid order entirely. This is a hard remove, not a
// status transition; paid orders are immutable history.
func (s *Service) Delete(ctx context.Context, id string, expectedVersion int64) error {
	return s.store.Delete(ctx, id, expectedVersion)
}

// snapshotItems validates quantities, batch-fetches the menu items, and
// builds line items carrying price and name snapshots.
func (s *Service) snapshotItems(ctx context.Context, items []NewItem) ([]OrderItem, error) {
	ids := make([]string, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{MenuItemID: it.MenuItemID}
		}
		ids[i] = it.MenuItemID
	}

	fetched, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get menu items")
	}
	byID := make(map[string]catalog.MenuItem, len(fetched))
	for _, m := range fetched {
		byID[m.ID] = m
	}

	lines := make([]OrderItem, len(items))
	for i, it := range items {
		m, ok := byID[it.MenuItemID]
		if !ok {
			return nil, errors.Wrapf(catalog.ErrNotFound, "menu item %s", it.MenuItemID)
		}
		if !m.Available {
			return nil, &catalog.UnavailableError{MenuItemID: it.MenuItemID}
		}
		lines[i] = OrderItem{
			ID:         uuid.New().String(),
			MenuItemID: m.ID,
			Name:       m.Name,
			UnitPrice:  m.Price,
			Quantity:   it.Quantity,
			Status:     ItemPending,
		}
	}
	return lines, nil
}
