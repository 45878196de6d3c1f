package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/minhtran-dev/vnshop-order-service/internal/api/middleware"
	"github.com/minhtran-dev/vnshop-order-service/internal/models"
	"github.com/minhtran-dev/vnshop-order-service/internal/repository"
	"github.com/minhtran-dev/vnshop-order-service/internal/service"
)

type PlaceOrderRequest struct {
	Items          []models.OrderItem   `json:"items"`
	Amount         int64                `json:"amount"`
	OriginalAmount int64                `json:"original_amount"`
	DiscountAmount int64                `json:"discount_amount"`
	ShippingFee    int64                `json:"shipping_fee"`
	CouponCode     string               `json:"coupon_code,omitempty"`
	Address        models.Address       `json:"address"`
	PaymentMethod  models.PaymentMethod `json:"payment_method"`
}

type VerifyRequest struct {
	OrderID string `json:"orderId"`
	Success string `json:"success"` // the gateway sends "true" / "false"
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type OrderHandler struct {
	checkout *service.CheckoutService
	orders   *service.OrderService
}

func NewOrderHandler(checkout *service.CheckoutService, orders *service.OrderService) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.IdentityFrom(r.Context())

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentStripe
	}

	result, err := h.checkout.PlaceOrder(r.Context(), user, service.PlaceOrderInput{
		Items:          req.Items,
		Amount:         req.Amount,
		OriginalAmount: req.OriginalAmount,
		DiscountAmount: req.DiscountAmount,
		ShippingFee:    req.ShippingFee,
		CouponCode:     req.CouponCode,
		Address:        req.Address,
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// Verify handles POST /api/orders/verify, the gateway's callback. It never
// reports a failure body to the gateway beyond the success flag echo; the
// buyer has already left the flow.
func (h *OrderHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "orderId is required")
		return
	}

	success := req.Success == "true"
	if err := h.orders.HandlePaymentResult(r.Context(), req.OrderID, success); err != nil {
		writeServiceError(w, err)
		return
	}
	if success {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "payment confirmed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": "payment failed"})
}

// Mine handles GET /api/orders/mine.
func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.IdentityFrom(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := models.OrderStatus(r.URL.Query().Get("status"))
	if status == "all" || !status.Valid() {
		status = ""
	}

	orders, total, err := h.orders.ListMine(r.Context(), user, status, page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"data":       orders,
		"pagination": newPagination(page, limit, total),
	})
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.IdentityFrom(r.Context())

	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": order})
}

// Cancel handles POST /api/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.IdentityFrom(r.Context())

	if err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"), user); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "order cancelled"})
}

// List handles GET /api/orders (dashboard).
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.IdentityFrom(r.Context())

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	status := models.OrderStatus(q.Get("status"))
	if status == "all" || !status.Valid() {
		status = ""
	}

	orders, total, stats, err := h.orders.ListAll(r.Context(), user, repository.OrderFilter{
		Status:        status,
		PaymentStatus: q.Get("payment_status"),
		Search:        q.Get("search"),
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"data":       orders,
		"stats":      stats,
		"pagination": newPagination(page, limit, total),
	})
}

// UpdateStatus handles PATCH /api/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.IdentityFrom(r.Context())

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, user); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "status updated"})
}
