package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/dinetab/internal/domain/order"
)

var _ order.Store = (*OrderStore)(nil)

// OrderStore implements order.Store backed by PostgreSQL. Optimistic
// concurrency is enforced by the version predicate on the UPDATE: of two
// commits racing on the same expected version, only one matches a row.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore returns an OrderStore that uses the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const selectOrder = `
SELECT id, table_id, table_number, status, discount_percent,
       is_paid, payment_method, paid_at, created_at, version
FROM orders
WHERE id = $1`

const selectItems = `
SELECT id, menu_item_id, name, unit_price, quantity, status
FROM order_items
WHERE order_id = $1
ORDER BY position`

// Get returns the aggregate with its items, or order.ErrNotFound.
func (s *OrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	return s.get(ctx, s.pool, id)
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *OrderStore) get(ctx context.Context, q queryer, id string) (*order.Order, error) {
	var (
		o      order.Order
		method *string
	)
	err := q.QueryRow(ctx, selectOrder, id).Scan(
		&o.ID, &o.TableID, &o.TableNumber, &o.Status, &o.DiscountPercent,
		&o.IsPaid, &method, &o.PaidAt, &o.CreatedAt, &o.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	if method != nil {
		o.PaymentMethod = order.PaymentMethod(*method)
	}

	rows, err := q.Query(ctx, selectItems, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get items of order %q", id)
	}
	defer rows.Close()

	for rows.Next() {
		var it order.OrderItem
		if err := rows.Scan(&it.ID, &it.MenuItemID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Status); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate order items")
	}

	return &o, nil
}

// Create persists a new aggregate at version 0.
func (s *OrderStore) Create(ctx context.Context, o *order.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, table_id, table_number, status, discount_percent,
		                    is_paid, payment_method, paid_at, created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0)`,
		o.ID, o.TableID, o.TableNumber, o.Status, o.DiscountPercent,
		o.IsPaid, methodOrNil(o.PaymentMethod), o.PaidAt, o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert order %q", o.ID)
	}

	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(ctx), "commit")
}

// Commit applies mutate inside a transaction and persists the result with
// a conditional UPDATE on the version column. Zero rows updated means a
// concurrent writer won; the caller gets *order.VersionConflictError.
func (s *OrderStore) Commit(ctx context.Context, id string, expectedVersion int64, mutate func(*order.Order) error) (*order.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx)

	cur, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
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

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1, discount_percent = $2, is_paid = $3,
		    payment_method = $4, paid_at = $5, version = $6
		WHERE id = $7 AND version = $8`,
		next.Status, next.DiscountPercent, next.IsPaid,
		methodOrNil(next.PaymentMethod), next.PaidAt, next.Version,
		id, expectedVersion,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "update order %q", id)
	}
	if tag.RowsAffected() == 0 {
		// Raced between our read and the update.
		return nil, &order.VersionConflictError{OrderID: id, Expected: expectedVersion, Actual: expectedVersion + 1}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return nil, errors.Wrapf(err, "clear items of order %q", id)
	}
	if err := insertItems(ctx, tx, id, next.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return next, nil
}

// Delete removes an unpaid aggregate, subject to the version check.
func (s *OrderStore) Delete(ctx context.Context, id string, expectedVersion int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx)

	cur, err := s.get(ctx, tx, id)
	if err != nil {
		return err
	}
	if cur.Version != expectedVersion {
		return &order.VersionConflictError{OrderID: id, Expected: expectedVersion, Actual: cur.Version}
	}
	if cur.IsPaid {
		return order.ErrPaidOrderImmutable
	}

	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1 AND version = $2`, id, expectedVersion)
	if err != nil {
		return errors.Wrapf(err, "delete order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return &order.VersionConflictError{OrderID: id, Expected: expectedVersion, Actual: expectedVersion + 1}
	}

	return errors.Wrap(tx.Commit(ctx), "commit")
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID string, items []order.OrderItem) error {
	for i, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, name, unit_price, quantity, status, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, orderID, it.MenuItemID, it.Name, it.UnitPrice, it.Quantity, it.Status, i,
		)
		if err != nil {
			return errors.Wrapf(err, "insert item %q", it.ID)
		}
	}
	return nil
}

func methodOrNil(m order.PaymentMethod) *string {
	if m == "" {
		return nil
	}
	s := string(m)
	return &s
}
