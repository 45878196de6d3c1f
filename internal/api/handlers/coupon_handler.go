package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minhtran-dev/vnshop-order-service/internal/api/middleware"
	"github.com/minhtran-dev/vnshop-order-service/internal/models"
	"github.com/minhtran-dev/vnshop-order-service/internal/repository"
	"github.com/minhtran-dev/vnshop-order-service/internal/service"
)

type CouponRequest struct {
	Code           string              `json:"code"`
	Description    string              `json:"description"`
	DiscountType   models.DiscountType `json:"discount_type"`
	DiscountValue  float64             `json:"discount_value"`
	MaxDiscount    *int64              `json:"max_discount,omitempty"`
	MinOrderValue  int64               `json:"min_order_value"`
	MaxTotalUses   *int                `json:"max_total_uses,omitempty"`
	MaxUsesPerUser int                 `json:"max_uses_per_user"`
	IsActive       *bool               `json:"is_active,omitempty"`
	StartDate      *time.Time          `json:"start_date,omitempty"`
	ExpiryDate     time.Time           `json:"expiry_date"`
}

func (r CouponRequest) toModel() models.Coupon {
	c := models.Coupon{
		Code:           r.Code,
		Description:    r.Description,
		DiscountType:   r.DiscountType,
		DiscountValue:  r.DiscountValue,
		MaxDiscount:    r.MaxDiscount,
		MinOrderValue:  r.MinOrderValue,
		MaxTotalUses:   r.MaxTotalUses,
		MaxUsesPerUser: r.MaxUsesPerUser,
		IsActive:       true,
		ExpiryDate:     r.ExpiryDate,
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	if r.StartDate != nil {
		c.StartDate = *r.StartDate
	}
	return c
}

type ApplyCouponRequest struct {
	Code       string `json:"code"`
	OrderTotal int64  `json:"order_total"`
}

type ToggleRequest struct {
	IsActive bool `json:"is_active"`
}

type CouponHandler struct {
	coupons *service.CouponService
}

func NewCouponHandler(coupons *service.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// Apply handles POST /api/coupons/apply: a side-effect-free evaluation so
// the storefront can preview the discount before checkout.
func (h *CouponHandler) Apply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.IdentityFrom(r.Context())

	var req ApplyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	grant, err := h.coupons.Evaluate(r.Context(), req.Code, user.UserID, req.OrderTotal)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"discount": grant.DiscountAmount,
		"coupon": map[string]interface{}{
			"id":             grant.Coupon.ID,
			"code":           grant.Coupon.Code,
			"description":    grant.Coupon.Description,
			"discount_type":  grant.Coupon.DiscountType,
			"discount_value": grant.Coupon.DiscountValue,
		},
	})
}

// Available handles GET /api/coupons/available.
func (h *CouponHandler) Available(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.Available(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": coupons})
}

// Create handles POST /api/admin/coupons.
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	coupon := req.toModel()
	if err := h.coupons.Create(r.Context(), &coupon); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": coupon})
}

// List handles GET /api/admin/coupons.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	coupons, total, err := h.coupons.List(r.Context(), repository.CouponFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"data":       coupons,
		"pagination": newPagination(page, limit, total),
	})
}

// Stats handles GET /api/admin/coupons/stats.
func (h *CouponHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.coupons.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "stats": stats})
}

// Get handles GET /api/admin/coupons/{id}.
func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.coupons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": coupon})
}

// Update handles PUT /api/admin/coupons/{id}.
func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	coupon := req.toModel()
	coupon.ID = chi.URLParam(r, "id")
	// An update that doesn't mention is_active keeps the stored flag;
	// activation changes go through the explicit toggle endpoint.
	if req.IsActive == nil {
		current, err := h.coupons.Get(r.Context(), coupon.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		coupon.IsActive = current.IsActive
	}
	if err := h.coupons.Update(r.Context(), &coupon); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "coupon updated"})
}

// Delete handles DELETE /api/admin/coupons/{id}.
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "coupon deleted"})
}

// Toggle handles PATCH /api/admin/coupons/{id}/toggle.
func (h *CouponHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.coupons.SetActive(r.Context(), chi.URLParam(r, "id"), req.IsActive); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "coupon status updated"})
}
