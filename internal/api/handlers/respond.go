package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/minhtran-dev/vnshop-order-service/internal/repository"
	"github.com/minhtran-dev/vnshop-order-service/internal/service"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]interface{}{"success": false, "message": message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Anything unrecognized is an internal error: log the cause, hide it.
func writeServiceError(w http.ResponseWriter, err error) {
	var belowMin *service.BelowMinimumError
	var insufficient *repository.InsufficientStockError
	var noProduct *repository.ProductNotFoundError

	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrBadAddress),
		errors.Is(err, service.ErrBadPaymentMethod),
		errors.Is(err, service.ErrInvalidCoupon),
		errors.Is(err, service.ErrCouponNotYetValid),
		errors.Is(err, service.ErrCouponExpired),
		errors.Is(err, service.ErrCouponGlobalLimit),
		errors.Is(err, service.ErrCouponUserLimit),
		errors.Is(err, service.ErrDuplicateCoupon),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrInvalidStatus),
		errors.As(err, &belowMin),
		errors.As(err, &insufficient):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrCouponNotFound),
		errors.As(err, &noProduct),
		errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPaymentSession):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func newPagination(page, limit, total int) pagination {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
