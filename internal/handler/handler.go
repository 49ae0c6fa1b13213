// Package handler exposes the order, settlement, and read-only collaborator
// endpoints as JSON over HTTP. Transport stays thin: requests are decoded,
// delegated to the domain services, and domain errors are mapped to status
// codes in one place.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/dinetab/internal/domain/catalog"
	"github.com/xenking/dinetab/internal/domain/dining"
	"github.com/xenking/dinetab/internal/domain/order"
	"github.com/xenking/dinetab/internal/domain/payment"
)

// Handler holds the domain services behind the HTTP surface.
type Handler struct {
	orders   *order.Service
	payments *payment.Coordinator
	catalog  catalog.Catalog
	tables   dining.Registry
}

// New creates a Handler.
func New(orders *order.Service, payments *payment.Coordinator, cat catalog.Catalog, tables dining.Registry) *Handler {
	return &Handler{
		orders:   orders,
		payments: payments,
		catalog:  cat,
		tables:   tables,
	}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("DELETE /api/orders/{id}", h.deleteOrder)
	mux.HandleFunc("POST /api/orders/{id}/status", h.transitionOrder)
	mux.HandleFunc("POST /api/orders/{id}/items", h.addItems)
	mux.HandleFunc("POST /api/orders/{id}/items/{itemID}/status", h.transitionItem)
	mux.HandleFunc("POST /api/orders/{id}/payment", h.markPaid)
	mux.HandleFunc("GET /api/orders/{id}/invoice", h.getInvoice)
	mux.HandleFunc("GET /api/menu", h.listMenu)
	mux.HandleFunc("GET /api/tables", h.listTables)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
