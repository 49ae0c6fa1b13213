// Package billing computes order totals. It is pure: no I/O, no clock, no
// state. Given the same lines and discount it always produces the same
// result, which is what makes invoices reproducible.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/dinetab/internal/domain/order"
)

// Totals is the monetary breakdown of an order.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals sums the line items and applies the percentage discount.
//
// All arithmetic is decimal; rounding happens exactly once, on the discount
// amount, to 2 decimal places using round half-up. The total is clamped at
// zero. Which discount to pass is the caller's decision: at settlement a
// payment-time override replaces (never stacks with) the discount stored on
// the order.
func ComputeTotals(items []order.OrderItem, discountPercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal())
	}

	discount := subtotal.Mul(discountPercent).Div(hundred).Round(2)

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          total,
	}
}
