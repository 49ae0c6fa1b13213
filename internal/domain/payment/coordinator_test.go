package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/dinetab/internal/domain/invoice"
	"github.com/xenking/dinetab/internal/domain/order"
	"github.com/xenking/dinetab/internal/storage/memory"
)

func seedOrder(t *testing.T, store order.Store) *order.Order {
	t.Helper()
	o := &order.Order{
		ID:              "o1",
		TableID:         "t1",
		TableNumber:     4,
		Status:          order.StatusServed,
		DiscountPercent: decimal.NewFromInt(10),
		CreatedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Items: []order.OrderItem{
			{ID: "i1", MenuItemID: "m1", Name: "Pad Thai", UnitPrice: decimal.RequireFromString("100.00"), Quantity: 2, Status: order.ItemServed},
		},
	}
	require.NoError(t, store.Create(context.Background(), o))
	return o
}

func newTestCoordinator(orders order.Store, invoices invoice.Store) *Coordinator {
	c := NewCoordinator(orders, invoices)
	c.now = func() time.Time { return time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC) }
	return c
}

// contendedStore injects a competing commit before the caller's own, so the
// caller's first Commit observes a version conflict.
type contendedStore struct {
	order.Store
	conflicts int
}

func (s *contendedStore) Commit(ctx context.Context, id string, expectedVersion int64, mutate func(*order.Order) error) (*order.Order, error) {
	if s.conflicts > 0 {
		s.conflicts--
		_, err := s.Store.Commit(ctx, id, expectedVersion, func(o *order.Order) error {
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return s.Store.Commit(ctx, id, expectedVersion, mutate)
}

func TestMarkPaid(t *testing.T) {
	orders := memory.NewOrderStore()
	invoices := memory.NewInvoiceStore()
	seedOrder(t, orders)
	c := newTestCoordinator(orders, invoices)

	inv, err := c.MarkPaid(context.Background(), "o1", order.PayCard, nil)
	require.NoError(t, err)

	assert.Equal(t, "INV-o1", inv.Number)
	assert.Equal(t, 4, inv.TableNumber)
	assert.True(t, decimal.RequireFromString("200.00").Equal(inv.Subtotal))
	assert.True(t, decimal.RequireFromString("20.00").Equal(inv.DiscountAmount))
	assert.True(t, decimal.RequireFromString("180.00").Equal(inv.Total))
	assert.Equal(t, order.PayCard, inv.PaymentMethod)
	assert.Equal(t, time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC), inv.IssuedAt)

	o, err := orders.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, o.IsPaid)
	assert.Equal(t, order.PayCard, o.PaymentMethod)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, int64(1), o.Version)
}

func TestMarkPaid_Idempotent(t *testing.T) {
	orders := memory.NewOrderStore()
	invoices := memory.NewInvoiceStore()
	seedOrder(t, orders)
	c := newTestCoordinator(orders, invoices)

	first, err := c.MarkPaid(context.Background(), "o1", order.PayCard, nil)
	require.NoError(t, err)

	// Duplicate settlement with a different method and discount must change
	// nothing and return the original invoice.
	override := decimal.NewFromInt(50)
	second, err := c.MarkPaid(context.Background(), "o1", order.PayCash, &override)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	o, err := orders.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, order.PayCard, o.PaymentMethod)
	assert.True(t, decimal.NewFromInt(10).Equal(o.DiscountPercent))
	assert.Equal(t, int64(1), o.Version)
}

func TestMarkPaid_DiscountOverrideReplaces(t *testing.T) {
	orders := memory.NewOrderStore()
	invoices := memory.NewInvoiceStore()
	seedOrder(t, orders)
	c := newTestCoordinator(orders, invoices)

	override := decimal.NewFromInt(25)
	inv, err := c.MarkPaid(context.Background(), "o1", order.PayQR, &override)
	require.NoError(t, err)

	// 25% replaces the stored 10%; the discounts never stack.
	assert.True(t, decimal.RequireFromString("50.00").Equal(inv.DiscountAmount))
	assert.True(t, decimal.RequireFromString("150.00").Equal(inv.Total))
	assert.True(t, decimal.NewFromInt(25).Equal(inv.DiscountPercent))

	o, err := orders.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(o.DiscountPercent))
}

func TestMarkPaid_CancelledOrder(t *testing.T) {
	orders := memory.NewOrderStore()
	invoices := memory.NewInvoiceStore()
	o := seedOrder(t, orders)
	_, err := orders.Commit(context.Background(), o.ID, 0, func(o *order.Order) error {
		o.Status = order.StatusCancelled
		return nil
	})
	require.NoError(t, err)
	c := newTestCoordinator(orders, invoices)

	_, err = c.MarkPaid(context.Background(), "o1", order.PayCash, nil)
	require.ErrorIs(t, err, ErrOrderCancelled)
}

func TestMarkPaid_InvalidMethod(t *testing.T) {
	c := newTestCoordinator(memory.NewOrderStore(), memory.NewInvoiceStore())

	_, err := c.MarkPaid(context.Background(), "o1", "cheque", nil)
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestMarkPaid_InvalidOverride(t *testing.T) {
	orders := memory.NewOrderStore()
	seedOrder(t, orders)
	c := newTestCoordinator(orders, memory.NewInvoiceStore())

	for _, pct := range []string{"-1", "100.01"} {
		override := decimal.RequireFromString(pct)
		_, err := c.MarkPaid(context.Background(), "o1", order.PayCash, &override)

		var ivErr *order.InvariantViolationError
		require.ErrorAs(t, err, &ivErr, "override %s", pct)
	}
}

func TestMarkPaid_UnknownOrder(t *testing.T) {
	c := newTestCoordinator(memory.NewOrderStore(), memory.NewInvoiceStore())

	_, err := c.MarkPaid(context.Background(), "missing", order.PayCash, nil)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestMarkPaid_RetriesOnceOnConflict(t *testing.T) {
	orders := memory.NewOrderStore()
	invoices := memory.NewInvoiceStore()
	seedOrder(t, orders)
	contended := &contendedStore{Store: orders, conflicts: 1}
	c := newTestCoordinator(contended, invoices)

	inv, err := c.MarkPaid(context.Background(), "o1", order.PayCard, nil)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("180.00").Equal(inv.Total))

	o, err := orders.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, o.IsPaid)

	// One competing commit plus the retried settlement commit.
	assert.Equal(t, int64(2), o.Version)
}

func TestMarkPaid_SurfacesConflictAfterSecondLoss(t *testing.T) {
	orders := memory.NewOrderStore()
	invoices := memory.NewInvoiceStore()
	seedOrder(t, orders)
	contended := &contendedStore{Store: orders, conflicts: 2}
	c := newTestCoordinator(contended, invoices)

	_, err := c.MarkPaid(context.Background(), "o1", order.PayCard, nil)

	var vcErr *order.VersionConflictError
	require.ErrorAs(t, err, &vcErr)

	o, err := orders.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.False(t, o.IsPaid)
}

func TestMarkPaid_ReprojectsMissingInvoice(t *testing.T) {
	orders := memory.NewOrderStore()
	invoices := memory.NewInvoiceStore()
	seedOrder(t, orders)
	paidAt := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	_, err := orders.Commit(context.Background(), "o1", 0, func(o *order.Order) error {
		o.IsPaid = true
		o.PaymentMethod = order.PayCash
		o.PaidAt = &paidAt
		return nil
	})
	require.NoError(t, err)
	c := newTestCoordinator(orders, invoices)

	// The order is paid but the invoice write was lost. Settlement rebuilds
	// it from the paid snapshot, including the original issue time.
	inv, err := c.MarkPaid(context.Background(), "o1", order.PayCash, nil)
	require.NoError(t, err)
	assert.Equal(t, paidAt, inv.IssuedAt)
	assert.True(t, decimal.RequireFromString("180.00").Equal(inv.Total))

	stored, err := c.Invoice(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, inv, stored)
}

func TestInvoice_NotFound(t *testing.T) {
	c := newTestCoordinator(memory.NewOrderStore(), memory.NewInvoiceStore())

	_, err := c.Invoice(context.Background(), "o1")
	require.ErrorIs(t, err, invoice.ErrNotFound)
}
