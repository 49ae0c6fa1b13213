// Package payment orchestrates settlement: marking an order paid and
// producing its invoice as one idempotent operation.
package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/dinetab/internal/domain/billing"
	"github.com/xenking/dinetab/internal/domain/invoice"
	"github.com/xenking/dinetab/internal/domain/order"
)

// ErrOrderCancelled is returned when settling a cancelled order.
var ErrOrderCancelled = errors.New("cannot settle a cancelled order")

// ErrInvalidPaymentMethod is returned for an unknown payment method.
var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// markPaidAttempts bounds the read-compute-commit cycle. One retry after a
// version conflict is deliberate: losing twice in a row is surfaced to the
// caller instead of looping, so a hot order cannot trap a client.
const markPaidAttempts = 2

var hundred = decimal.NewFromInt(100)

// Coordinator is the single entry point for settling orders. Its
// idempotency hinges on is_paid: the flag flips exactly once through a
// versioned commit, and every later call just returns the stored invoice.
type Coordinator struct {
	orders   order.Store
	invoices invoice.Store
	now      func() time.Time
}

// NewCoordinator creates a settlement Coordinator.
func NewCoordinator(orders order.Store, invoices invoice.Store) *Coordinator {
	return &Coordinator{
		orders:   orders,
		invoices: invoices,
		now:      time.Now,
	}
}

// MarkPaid settles the order with the given method. When discountOverride
// is non-nil it replaces the order's stored discount for the final total;
// the two discounts never stack. Paying is allowed at any non-terminal
// status and at completed (cashiers may pre-settle or settle after
// service); only cancelled orders are rejected.
//
// Calling MarkPaid on an already-paid order returns the original invoice
// and no error, so duplicate clicks and retries after timeouts are
// harmless.
func (c *Coordinator) MarkPaid(ctx context.Context, orderID string, method order.PaymentMethod, discountOverride *decimal.Decimal) (*invoice.Invoice, error) {
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if discountOverride != nil &&
		(discountOverride.IsNegative() || discountOverride.GreaterThan(hundred)) {
		return nil, &order.InvariantViolationError{Reason: "discount percent must be within [0,100]"}
	}

	var lastErr error
	for attempt := 0; attempt < markPaidAttempts; attempt++ {
		o, err := c.orders.Get(ctx, orderID)
		if err != nil {
			return nil, err
		}

		if o.IsPaid {
			return c.lookupOrReproject(ctx, o)
		}
		if o.Status == order.StatusCancelled {
			return nil, ErrOrderCancelled
		}

		resolved := o.DiscountPercent
		if discountOverride != nil {
			resolved = *discountOverride
		}

		paidAt := c.now()
		committed, err := c.orders.Commit(ctx, orderID, o.Version, func(o *order.Order) error {
			o.IsPaid = true
			o.PaymentMethod = method
			o.DiscountPercent = resolved
			o.PaidAt = &paidAt
			return nil
		})
		if err != nil {
			var conflict *order.VersionConflictError
			if errors.As(err, &conflict) {
				// Another role touched the order between our read and
				// commit. Re-read: it may even have been paid by them.
				lastErr = err
				continue
			}
			return nil, err
		}

		return c.project(ctx, committed)
	}
	return nil, lastErr
}

// Invoice returns the stored invoice for a settled order.
func (c *Coordinator) Invoice(ctx context.Context, orderID string) (*invoice.Invoice, error) {
	return c.invoices.GetByOrderID(ctx, orderID)
}

// lookupOrReproject serves the idempotent path. Normally the invoice is
// already stored; if a crash separated the paid commit from the invoice
// write, the projection is re-derived from the paid snapshot. It is
// deterministic, so the result is the invoice that would have been stored.
func (c *Coordinator) lookupOrReproject(ctx context.Context, o *order.Order) (*invoice.Invoice, error) {
	inv, err := c.invoices.GetByOrderID(ctx, o.ID)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, invoice.ErrNotFound) {
		return nil, errors.Wrap(err, "lookup invoice")
	}
	return c.project(ctx, o)
}

// project derives the invoice from a paid snapshot and persists it.
func (c *Coordinator) project(ctx context.Context, o *order.Order) (*invoice.Invoice, error) {
	totals := billing.ComputeTotals(o.Items, o.DiscountPercent)
	inv := invoice.Project(o, totals)
	if err := c.invoices.Create(ctx, inv); err != nil {
		return nil, errors.Wrap(err, "store invoice")
	}
	return inv, nil
}
