package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() *Order {
	return &Order{
		ID:              "o1",
		TableID:         "t1",
		TableNumber:     1,
		Status:          StatusPending,
		DiscountPercent: decimal.NewFromInt(10),
		CreatedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Items: []OrderItem{
			{ID: "i1", MenuItemID: "m1", Name: "Pad Thai", UnitPrice: decimal.RequireFromString("11.90"), Quantity: 2, Status: ItemPending},
		},
	}
}

func TestOrderValidate(t *testing.T) {
	require.NoError(t, validOrder().Validate())

	cases := []struct {
		name   string
		mutate func(*Order)
	}{
		{"unknown status", func(o *Order) { o.Status = "shipped" }},
		{"negative discount", func(o *Order) { o.DiscountPercent = decimal.NewFromInt(-1) }},
		{"discount above 100", func(o *Order) { o.DiscountPercent = decimal.NewFromInt(101) }},
		{"no items", func(o *Order) { o.Items = nil }},
		{"zero quantity", func(o *Order) { o.Items[0].Quantity = 0 }},
		{"negative price", func(o *Order) { o.Items[0].UnitPrice = decimal.NewFromInt(-5) }},
		{"unknown item status", func(o *Order) { o.Items[0].Status = "eaten" }},
		{"paid without method", func(o *Order) { o.IsPaid = true }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := validOrder()
			tc.mutate(o)

			var ivErr *InvariantViolationError
			require.ErrorAs(t, o.Validate(), &ivErr)
		})
	}

	t.Run("boundary discounts are valid", func(t *testing.T) {
		o := validOrder()
		o.DiscountPercent = decimal.Zero
		require.NoError(t, o.Validate())
		o.DiscountPercent = decimal.NewFromInt(100)
		require.NoError(t, o.Validate())
	})
}

func TestValidateMutation_PaidIsMonotonic(t *testing.T) {
	prev := validOrder()
	now := time.Now()
	prev.IsPaid = true
	prev.PaymentMethod = PayCard
	prev.PaidAt = &now

	next := prev.Clone()
	next.IsPaid = false
	next.PaymentMethod = ""

	var ivErr *InvariantViolationError
	require.ErrorAs(t, ValidateMutation(prev, next), &ivErr)
	assert.Contains(t, ivErr.Reason, "is_paid")
}

func TestValidateMutation_TerminalOrderIsFrozen(t *testing.T) {
	prev := validOrder()
	prev.Status = StatusCancelled

	t.Run("status change", func(t *testing.T) {
		next := prev.Clone()
		next.Status = StatusPending

		var ivErr *InvariantViolationError
		require.ErrorAs(t, ValidateMutation(prev, next), &ivErr)
	})

	t.Run("item status change", func(t *testing.T) {
		next := prev.Clone()
		next.Items[0].Status = ItemPreparing

		var ivErr *InvariantViolationError
		require.ErrorAs(t, ValidateMutation(prev, next), &ivErr)
	})

	t.Run("item addition", func(t *testing.T) {
		next := prev.Clone()
		next.Items = append(next.Items, OrderItem{
			ID: "i2", MenuItemID: "m2", Name: "Spring Rolls",
			UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1, Status: ItemPending,
		})

		var ivErr *InvariantViolationError
		require.ErrorAs(t, ValidateMutation(prev, next), &ivErr)
	})
}

func TestValidateMutation_ItemsCannotBeRemoved(t *testing.T) {
	prev := validOrder()
	prev.Items = append(prev.Items, OrderItem{
		ID: "i2", MenuItemID: "m2", Name: "Spring Rolls",
		UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1, Status: ItemPending,
	})

	next := prev.Clone()
	next.Items = next.Items[:1]

	var ivErr *InvariantViolationError
	require.ErrorAs(t, ValidateMutation(prev, next), &ivErr)
}

func TestCloneIsDeep(t *testing.T) {
	o := validOrder()
	c := o.Clone()

	c.Items[0].Quantity = 99
	c.Status = StatusCancelled

	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, StatusPending, o.Status)
}

func TestOrderItemSubtotal(t *testing.T) {
	it := OrderItem{UnitPrice: decimal.RequireFromString("11.90"), Quantity: 3}
	assert.True(t, decimal.RequireFromString("35.70").Equal(it.Subtotal()))
}
