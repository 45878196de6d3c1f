package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
	"github.com/minhtran-dev/vnshop-order-service/internal/repository"
	"github.com/minhtran-dev/vnshop-order-service/internal/service"
)

// stubCoupons is the minimal in-memory coupon store the handler tests need.
type stubCoupons struct {
	mu   sync.Mutex
	byID map[string]*models.Coupon
}

func newStubCoupons() *stubCoupons {
	return &stubCoupons{byID: make(map[string]*models.Coupon)}
}

func (s *stubCoupons) add(c models.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := c
	s.byID[c.ID] = &cp
}

func (s *stubCoupons) get(id string) models.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.byID[id]
}

func (s *stubCoupons) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.byID {
		if strings.EqualFold(c.Code, code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubCoupons) GetByID(_ context.Context, id string) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *stubCoupons) Create(_ context.Context, c *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.byID[c.ID] = &cp
	return nil
}

func (s *stubCoupons) Update(_ context.Context, c *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	s.byID[c.ID] = &cp
	return nil
}

func (s *stubCoupons) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *stubCoupons) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsActive = active
	return nil
}

func (s *stubCoupons) IncrementUseCount(_ context.Context, id string) error { return nil }
func (s *stubCoupons) DecrementUseCount(_ context.Context, id string) error { return nil }

func (s *stubCoupons) List(_ context.Context, _ repository.CouponFilter) ([]models.CouponWithUsage, int, error) {
	return nil, 0, nil
}

func (s *stubCoupons) ListAvailable(_ context.Context, _ time.Time) ([]models.Coupon, error) {
	return nil, nil
}

func (s *stubCoupons) Stats(_ context.Context) (*models.CouponStats, error) {
	return &models.CouponStats{}, nil
}

type stubUsages struct{}

func (stubUsages) Create(_ context.Context, _ *models.CouponUsage) error { return nil }
func (stubUsages) CountByCouponAndUser(_ context.Context, _, _ string) (int, error) {
	return 0, nil
}
func (stubUsages) DeleteByOrderAndCoupon(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func newCouponTestRouter(store *stubCoupons) http.Handler {
	h := NewCouponHandler(service.NewCouponService(store, stubUsages{}))
	r := chi.NewRouter()
	r.Put("/api/admin/coupons/{id}", h.Update)
	r.Patch("/api/admin/coupons/{id}/toggle", h.Toggle)
	return r
}

func inactiveCoupon() models.Coupon {
	return models.Coupon{
		ID:             "c1",
		Code:           "SALE10",
		DiscountType:   models.DiscountPercentage,
		DiscountValue:  10,
		MaxUsesPerUser: 1,
		IsActive:       false,
		StartDate:      time.Now().Add(-time.Hour),
		ExpiryDate:     time.Now().Add(time.Hour),
	}
}

func TestUpdateCouponPreservesInactiveFlag(t *testing.T) {
	store := newStubCoupons()
	store.add(inactiveCoupon())
	router := newCouponTestRouter(store)

	body := `{
		"code": "SALE10",
		"description": "spring sale",
		"discount_type": "percentage",
		"discount_value": 15,
		"max_uses_per_user": 1,
		"expiry_date": "2030-01-01T00:00:00Z"
	}`
	req := httptest.NewRequest(http.MethodPut, "/api/admin/coupons/c1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	got := store.get("c1")
	assert.Equal(t, float64(15), got.DiscountValue)
	assert.False(t, got.IsActive, "update without is_active must not reactivate")
}

func TestUpdateCouponSetsExplicitActiveFlag(t *testing.T) {
	store := newStubCoupons()
	store.add(inactiveCoupon())
	router := newCouponTestRouter(store)

	body := `{
		"code": "SALE10",
		"discount_type": "percentage",
		"discount_value": 10,
		"is_active": true,
		"expiry_date": "2030-01-01T00:00:00Z"
	}`
	req := httptest.NewRequest(http.MethodPut, "/api/admin/coupons/c1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, store.get("c1").IsActive)
}

func TestToggleCoupon(t *testing.T) {
	store := newStubCoupons()
	c := inactiveCoupon()
	c.IsActive = true
	store.add(c)
	router := newCouponTestRouter(store)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/coupons/c1/toggle",
		strings.NewReader(`{"is_active": false}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, store.get("c1").IsActive)
}
