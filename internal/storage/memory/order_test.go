package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/dinetab/internal/domain/order"
)

func seedOrder(t *testing.T, s *OrderStore) *order.Order {
	t.Helper()
	o := &order.Order{
		ID:              "o1",
		TableID:         "t1",
		TableNumber:     1,
		Status:          order.StatusPending,
		DiscountPercent: decimal.Zero,
		CreatedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Items: []order.OrderItem{
			{ID: "i1", MenuItemID: "m1", Name: "Pad Thai", UnitPrice: decimal.RequireFromString("11.90"), Quantity: 1, Status: order.ItemPending},
		},
	}
	require.NoError(t, s.Create(context.Background(), o))
	return o
}

func TestOrderStore_GetReturnsCopy(t *testing.T) {
	s := NewOrderStore()
	seedOrder(t, s)

	a, err := s.Get(context.Background(), "o1")
	require.NoError(t, err)
	a.Items[0].Quantity = 99
	a.Status = order.StatusCancelled

	b, err := s.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Items[0].Quantity)
	assert.Equal(t, order.StatusPending, b.Status)
}

func TestOrderStore_GetUnknown(t *testing.T) {
	s := NewOrderStore()

	_, err := s.Get(context.Background(), "missing")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderStore_CreateDuplicate(t *testing.T) {
	s := NewOrderStore()
	o := seedOrder(t, s)

	err := s.Create(context.Background(), o)

	var ivErr *order.InvariantViolationError
	require.ErrorAs(t, err, &ivErr)
}

func TestOrderStore_CommitBumpsVersion(t *testing.T) {
	s := NewOrderStore()
	seedOrder(t, s)

	got, err := s.Commit(context.Background(), "o1", 0, func(o *order.Order) error {
		o.Status = order.StatusPreparing
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, order.StatusPreparing, got.Status)
}

func TestOrderStore_CommitStaleVersion(t *testing.T) {
	s := NewOrderStore()
	seedOrder(t, s)

	_, err := s.Commit(context.Background(), "o1", 3, func(o *order.Order) error { return nil })

	var vcErr *order.VersionConflictError
	require.ErrorAs(t, err, &vcErr)
	assert.Equal(t, int64(3), vcErr.Expected)
	assert.Equal(t, int64(0), vcErr.Actual)
}

func TestOrderStore_CommitMutateErrorLeavesStateUntouched(t *testing.T) {
	s := NewOrderStore()
	seedOrder(t, s)

	_, err := s.Commit(context.Background(), "o1", 0, func(o *order.Order) error {
		o.Status = order.StatusPreparing
		return order.ErrOrderClosed
	})
	require.ErrorIs(t, err, order.ErrOrderClosed)

	cur, err := s.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, cur.Status)
	assert.Equal(t, int64(0), cur.Version)
}

func TestOrderStore_CommitRejectsInvalidMutation(t *testing.T) {
	s := NewOrderStore()
	seedOrder(t, s)

	_, err := s.Commit(context.Background(), "o1", 0, func(o *order.Order) error {
		o.Items = nil
		return nil
	})

	var ivErr *order.InvariantViolationError
	require.ErrorAs(t, err, &ivErr)
}

func TestOrderStore_ExactlyOneWinnerPerVersion(t *testing.T) {
	s := NewOrderStore()
	seedOrder(t, s)

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Commit(context.Background(), "o1", 0, func(o *order.Order) error {
				o.Status = order.StatusPreparing
				return nil
			})
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			var vcErr *order.VersionConflictError
			require.ErrorAs(t, err, &vcErr)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)

	cur, err := s.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cur.Version)
}

func TestOrderStore_LoserRetriesAtNewVersion(t *testing.T) {
	s := NewOrderStore()
	seedOrder(t, s)

	_, err := s.Commit(context.Background(), "o1", 0, func(o *order.Order) error {
		o.Status = order.StatusPreparing
		return nil
	})
	require.NoError(t, err)

	_, err = s.Commit(context.Background(), "o1", 0, func(o *order.Order) error {
		o.DiscountPercent = decimal.NewFromInt(5)
		return nil
	})
	var vcErr *order.VersionConflictError
	require.ErrorAs(t, err, &vcErr)

	got, err := s.Commit(context.Background(), "o1", vcErr.Actual, func(o *order.Order) error {
		o.DiscountPercent = decimal.NewFromInt(5)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, order.StatusPreparing, got.Status)
	assert.True(t, decimal.NewFromInt(5).Equal(got.DiscountPercent))
}

func TestOrderStore_Delete(t *testing.T) {
	s := NewOrderStore()
	seedOrder(t, s)

	require.NoError(t, s.Delete(context.Background(), "o1", 0))

	_, err := s.Get(context.Background(), "o1")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderStore_DeleteStaleVersion(t *testing.T) {
	s := NewOrderStore()
	seedOrder(t, s)

	err := s.Delete(context.Background(), "o1", 7)

	var vcErr *order.VersionConflictError
	require.ErrorAs(t, err, &vcErr)
}

func TestOrderStore_DeletePaidOrder(t *testing.T) {
	s := NewOrderStore()
	seedOrder(t, s)
	paidAt := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	_, err := s.Commit(context.Background(), "o1", 0, func(o *order.Order) error {
		o.IsPaid = true
		o.PaymentMethod = order.PayCash
		o.PaidAt = &paidAt
		return nil
	})
	require.NoError(t, err)

	err = s.Delete(context.Background(), "o1", 1)
	require.ErrorIs(t, err, order.ErrPaidOrderImmutable)
}
