package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/dinetab/internal/domain/invoice"
	"github.com/xenking/dinetab/internal/domain/order"
)

var _ invoice.Store = (*InvoiceStore)(nil)

// InvoiceStore implements invoice.Store backed by PostgreSQL. Lines are
// serialized to JSONB; the order_id unique constraint plus ON CONFLICT DO
// NOTHING makes Create idempotent, which in turn makes double settlement
// attempts unable to produce two invoices.
type InvoiceStore struct {
	pool *pgxpool.Pool
}

// NewInvoiceStore returns an InvoiceStore that uses the given pool.
func NewInvoiceStore(pool *pgxpool.Pool) *InvoiceStore {
	return &InvoiceStore{pool: pool}
}

// Create persists the invoice, keeping any existing record for the order.
func (s *InvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	linesJSON, err := json.Marshal(inv.Lines)
	if err != nil {
		return errors.Wrap(err, "marshal invoice lines")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO invoices (number, order_id, table_number, lines, subtotal,
		                      discount_percent, discount_amount, total, payment_method, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_id) DO NOTHING`,
		inv.Number, inv.OrderID, inv.TableNumber, linesJSON, inv.Subtotal,
		inv.DiscountPercent, inv.DiscountAmount, inv.Total, string(inv.PaymentMethod), inv.IssuedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert invoice %q", inv.Number)
	}
	return nil
}

// GetByOrderID returns the invoice for an order, or invoice.ErrNotFound.
func (s *InvoiceStore) GetByOrderID(ctx context.Context, orderID string) (*invoice.Invoice, error) {
	var (
		inv       invoice.Invoice
		linesJSON []byte
		method    string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT number, order_id, table_number, lines, subtotal,
		       discount_percent, discount_amount, total, payment_method, issued_at
		FROM invoices
		WHERE order_id = $1`, orderID,
	).Scan(
		&inv.Number, &inv.OrderID, &inv.TableNumber, &linesJSON, &inv.Subtotal,
		&inv.DiscountPercent, &inv.DiscountAmount, &inv.Total, &method, &inv.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get invoice for order %q", orderID)
	}

	if err := json.Unmarshal(linesJSON, &inv.Lines); err != nil {
		return nil, errors.Wrap(err, "unmarshal invoice lines")
	}
	inv.PaymentMethod = order.PaymentMethod(method)
	return &inv, nil
}
