package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type menuItemResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category,omitempty"`
	Available bool            `json:"available"`
}

type tableResponse struct {
	ID       string `json:"id"`
	Number   int    `json:"table_number"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
}

// listMenu serves the catalog collaborator's data read-only; the live
// price here is display-only and never feeds billing.
func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = menuItemResponse{
			ID:        m.ID,
			Name:      m.Name,
			Price:     m.Price,
			Category:  m.Category,
			Available: m.Available,
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.tables.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = tableResponse{
			ID:       t.ID,
			Number:   t.Number,
			Capacity: t.Capacity,
			Status:   string(t.Status),
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}
