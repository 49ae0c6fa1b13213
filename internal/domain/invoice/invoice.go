// Package invoice projects a settled order into its immutable invoice.
package invoice

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/dinetab/internal/domain/billing"
	"github.com/xenking/dinetab/internal/domain/order"
)

// ErrNotFound is returned when no invoice exists for an order.
var ErrNotFound = errors.New("invoice not found")

// Line is a single printed invoice line.
type Line struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Invoice is the immutable settlement record of an order. Everything on it
// derives from the paid order snapshot, so projecting the same snapshot
// twice yields an identical value.
type Invoice struct {
	Number          string
	OrderID         string
	TableNumber     int
	Lines           []Line
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
	PaymentMethod   order.PaymentMethod
	IssuedAt        time.Time
}

// Project renders a paid order snapshot into its invoice. The issue time
// comes from the snapshot's PaidAt, never from the wall clock; the totals
// are the ones the payment coordinator committed against.
func Project(o *order.Order, totals billing.Totals) *Invoice {
	lines := make([]Line, len(o.Items))
	for i, it := range o.Items {
		lines[i] = Line{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		}
	}

	var issuedAt time.Time
	if o.PaidAt != nil {
		issuedAt = *o.PaidAt
	}

	return &Invoice{
		Number:          "INV-" + o.ID,
		OrderID:         o.ID,
		TableNumber:     o.TableNumber,
		Lines:           lines,
		Subtotal:        totals.Subtotal,
		DiscountPercent: o.DiscountPercent,
		DiscountAmount:  totals.DiscountAmount,
		Total:           totals.Total,
		PaymentMethod:   o.PaymentMethod,
		IssuedAt:        issuedAt,
	}
}

// Store persists invoices keyed by their order.
type Store interface {
	// Create persists the invoice. If one already exists for the same
	// order it is left untouched and no error is returned: the projection
	// is deterministic, so the stored record is the same record.
	Create(ctx context.Context, inv *Invoice) error
	// GetByOrderID returns the invoice for an order, or ErrNotFound.
	GetByOrderID(ctx context.Context, orderID string) (*Invoice, error)
}
