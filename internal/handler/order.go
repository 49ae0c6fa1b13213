package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/dinetab/internal/domain/order"
)

type newItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type createOrderRequest struct {
	TableID         string           `json:"table_id"`
	Items           []newItemRequest `json:"items"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
}

type transitionRequest struct {
	ExpectedVersion int64  `json:"expected_version"`
	Status          string `json:"status"`
}

type addItemsRequest struct {
	ExpectedVersion int64            `json:"expected_version"`
	Items           []newItemRequest `json:"items"`
}

type orderItemResponse struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Status     string          `json:"status"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	TableID         string              `json:"table_id"`
	TableNumber     int                 `json:"table_number"`
	Status          string              `json:"status"`
	DiscountPercent decimal.Decimal     `json:"discount_percent"`
	IsPaid          bool                `json:"is_paid"`
	PaymentMethod   string              `json:"payment_method,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	Version         int64               `json:"version"`
	Items           []orderItemResponse `json:"items"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			Status:     string(it.Status),
			Subtotal:   it.Subtotal(),
		}
	}
	return orderResponse{
		ID:              o.ID,
		TableID:         o.TableID,
		TableNumber:     o.TableNumber,
		Status:          string(o.Status),
		DiscountPercent: o.DiscountPercent,
		IsPaid:          o.IsPaid,
		PaymentMethod:   string(o.PaymentMethod),
		CreatedAt:       o.CreatedAt,
		Version:         o.Version,
		Items:           items,
	}
}

func toNewItems(reqs []newItemRequest) []order.NewItem {
	items := make([]order.NewItem, len(reqs))
	for i, it := range reqs {
		items[i] = order.NewItem{MenuItemID: it.MenuItemID, Quantity: it.Quantity}
	}
	return items
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Code: 400, Message: "invalid JSON body"})
		return
	}

	o, err := h.orders.Create(r.Context(), req.TableID, toNewItems(req.Items), req.DiscountPercent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) transitionOrder(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Code: 400, Message: "invalid JSON body"})
		return
	}

	o, err := h.orders.TransitionOrder(r.Context(), r.PathValue("id"), req.ExpectedVersion, order.Status(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) transitionItem(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Code: 400, Message: "invalid JSON body"})
		return
	}

	o, err := h.orders.TransitionItem(r.Context(),
		r.PathValue("id"), r.PathValue("itemID"),
		req.ExpectedVersion, order.ItemStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) addItems(w http.ResponseWriter, r *http.Request) {
	var req addItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Code: 400, Message: "invalid JSON body"})
		return
	}

	o, err := h.orders.AddItems(r.Context(), r.PathValue("id"), req.ExpectedVersion, toNewItems(req.Items))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	expectedVersion, err := strconv.ParseInt(r.URL.Query().Get("expected_version"), 10, 64)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Code: 400, Message: "expected_version query parameter required"})
		return
	}

	if err := h.orders.Delete(r.Context(), r.PathValue("id"), expectedVersion); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
