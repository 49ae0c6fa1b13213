package memory

import (
	"context"
	"sync"

	"github.com/xenking/dinetab/internal/domain/invoice"
)

var _ invoice.Store = (*InvoiceStore)(nil)

// InvoiceStore keeps invoices in a map keyed by order id.
type InvoiceStore struct {
	mu      sync.Mutex
	byOrder map[string]*invoice.Invoice
}

// NewInvoiceStore returns an empty InvoiceStore.
func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{byOrder: make(map[string]*invoice.Invoice)}
}

// Create stores the invoice unless one already exists for the order.
func (s *InvoiceStore) Create(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byOrder[inv.OrderID]; ok {
		return nil
	}
	c := *inv
	c.Lines = append([]invoice.Line(nil), inv.Lines...)
	s.byOrder[inv.OrderID] = &c
	return nil
}

// GetByOrderID returns the stored invoice for an order.
func (s *InvoiceStore) GetByOrderID(_ context.Context, orderID string) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.byOrder[orderID]
	if !ok {
		return nil, invoice.ErrNotFound
	}
	c := *inv
	c.Lines = append([]invoice.Line(nil), inv.Lines...)
	return &c, nil
}
