// Package memory provides in-memory store implementations with the same
// commit semantics as the PostgreSQL ones. They back the unit tests and
// make the service runnable without a database.
package memory

import (
	"context"
	"sync"

	"github.com/xenking/dinetab/internal/domain/order"
)

var _ order.Store = (*OrderStore)(nil)

// OrderStore keeps order aggregates in a map guarded by a mutex. The
// version check inside the critical section gives the same
// exactly-one-winner guarantee as the conditional UPDATE in Postgres.
type OrderStore struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

// NewOrderStore returns an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*order.Order)}
}

// Get returns a copy of the stored aggregate.
func (s *OrderStore) Get(_ context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o.Clone(), nil
}

// Create stores a new aggregate at version 0.
func (s *OrderStore) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; ok {
		return &order.InvariantViolationError{Reason: "order id already exists"}
	}
	c := o.Clone()
	c.Version = 0
	s.orders[o.ID] = c
	return nil
}

// Commit applies mutate to a copy, re-validates, and swaps it in iff the
// stored version still matches expectedVersion.
func (s *OrderStore) Commit(_ context.Context, id string, expectedVersion int64, mutate func(*order.Order) error) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return nil, &order.VersionConflictError{OrderID: id, Expected: expectedVersion, Actual: cur.Version}
	}

	next := cur.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	if err := order.ValidateMutation(cur, next); err != nil {
		return nil, err
	}

	next.Version = expectedVersion + 1
	s.orders[id] = next
	return next.Clone(), nil
}

// Delete removes an unpaid aggregate, subject to the version check.
func (s *OrderStore) Delete(_ context.Context, id string, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return &order.VersionConflictError{OrderID: id, Expected: expectedVersion, Actual: cur.Version}
	}
	if cur.IsPaid {
		return order.ErrPaidOrderImmutable
	}
	delete(s.orders, id)
	return nil
}
