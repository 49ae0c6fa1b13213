package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/dinetab/internal/domain/catalog"
	"github.com/xenking/dinetab/internal/domain/dining"
	"github.com/xenking/dinetab/internal/domain/invoice"
	"github.com/xenking/dinetab/internal/domain/order"
	"github.com/xenking/dinetab/internal/domain/payment"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError maps domain errors onto HTTP status codes. The split matters
// for clients: 409 means re-fetch and retry, 422 means the request itself
// is wrong against current state and retrying verbatim will never help.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(r, err)
	writeJSON(w, r, status, errorResponse{Code: status, Message: err.Error()})
}

func statusOf(r *http.Request, err error) int {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, dining.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, invoice.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, payment.ErrInvalidPaymentMethod):
		return http.StatusBadRequest

	case errors.Is(err, order.ErrOrderClosed),
		errors.Is(err, order.ErrTableUnavailable),
		errors.Is(err, order.ErrPaidOrderImmutable),
		errors.Is(err, payment.ErrOrderCancelled):
		return http.StatusUnprocessableEntity
	}

	var (
		conflict    *order.VersionConflictError
		transition  *order.InvalidTransitionError
		invariant   *order.InvariantViolationError
		quantity    *order.InvalidQuantityError
		noItem      *order.ItemNotFoundError
		unavailable *catalog.UnavailableError
	)
	switch {
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &noItem):
		return http.StatusNotFound
	case errors.As(err, &transition), errors.As(err, &invariant),
		errors.As(err, &quantity), errors.As(err, &unavailable):
		return http.StatusUnprocessableEntity
	}

	zctx.From(r.Context()).Error("internal error", zap.Error(err))
	return http.StatusInternalServerError
}
