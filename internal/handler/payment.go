package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/dinetab/internal/domain/invoice"
	"github.com/xenking/dinetab/internal/domain/order"
)

type markPaidRequest struct {
	PaymentMethod string `json:"payment_method"`
	// DiscountPercent, when present, replaces the order's stored discount
	// for the final total. Absent means "keep the stored one".
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

type invoiceLineResponse struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type invoiceResponse struct {
	Number          string                `json:"number"`
	OrderID         string                `json:"order_id"`
	TableNumber     int                   `json:"table_number"`
	Lines           []invoiceLineResponse `json:"lines"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	DiscountPercent decimal.Decimal       `json:"discount_percent"`
	DiscountAmount  decimal.Decimal       `json:"discount_amount"`
	Total           decimal.Decimal       `json:"total"`
	PaymentMethod   string                `json:"payment_method"`
	IssuedAt        time.Time             `json:"issued_at"`
}

func toInvoiceResponse(inv *invoice.Invoice) invoiceResponse {
	lines := make([]invoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = invoiceLineResponse{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		}
	}
	return invoiceResponse{
		Number:          inv.Number,
		OrderID:         inv.OrderID,
		TableNumber:     inv.TableNumber,
		Lines:           lines,
		Subtotal:        inv.Subtotal,
		DiscountPercent: inv.DiscountPercent,
		DiscountAmount:  inv.DiscountAmount,
		Total:           inv.Total,
		PaymentMethod:   string(inv.PaymentMethod),
		IssuedAt:        inv.IssuedAt,
	}
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Code: 400, Message: "invalid JSON body"})
		return
	}

	inv, err := h.payments.MarkPaid(r.Context(),
		r.PathValue("id"), order.PaymentMethod(req.PaymentMethod), req.DiscountPercent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toInvoiceResponse(inv))
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.payments.Invoice(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toInvoiceResponse(inv))
}
