package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minhtran-dev/vnshop-order-service/internal/cache"
	"github.com/minhtran-dev/vnshop-order-service/internal/models"
	"github.com/minhtran-dev/vnshop-order-service/internal/repository"
)

// Stores required by the coupon service (interfaces to allow mocking).
type CouponStore interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	GetByID(ctx context.Context, id string) (*models.Coupon, error)
	Create(ctx context.Context, c *models.Coupon) error
	Update(ctx context.Context, c *models.Coupon) error
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	IncrementUseCount(ctx context.Context, id string) error
	DecrementUseCount(ctx context.Context, id string) error
	List(ctx context.Context, f repository.CouponFilter) ([]models.CouponWithUsage, int, error)
	ListAvailable(ctx context.Context, now time.Time) ([]models.Coupon, error)
	Stats(ctx context.Context) (*models.CouponStats, error)
}

type UsageStore interface {
	Create(ctx context.Context, u *models.CouponUsage) error
	CountByCouponAndUser(ctx context.Context, couponID, userID string) (int, error)
	DeleteByOrderAndCoupon(ctx context.Context, orderID, couponID string) (bool, error)
}

// CouponService owns coupon eligibility, redemption bookkeeping and the
// admin management surface.
type CouponService struct {
	coupons   CouponStore
	usages    UsageStore
	available *cache.AvailableCouponCache
	now       func() time.Time
}

func NewCouponService(coupons CouponStore, usages UsageStore) *CouponService {
	return &CouponService{
		coupons:   coupons,
		usages:    usages,
		available: cache.NewAvailableCouponCache(30 * time.Second),
		now:       time.Now,
	}
}

// Evaluate runs the eligibility checks in order (first failure wins) and
// computes the discount the coupon grants against orderTotal. It has no
// side effects; Redeem does the bookkeeping.
func (s *CouponService) Evaluate(ctx context.Context, code, userID string, orderTotal int64) (*models.CouponGrant, error) {
	c, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCoupon
		}
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	if !c.IsActive {
		return nil, ErrInvalidCoupon
	}

	now := s.now()
	if now.Before(c.StartDate) {
		return nil, ErrCouponNotYetValid
	}
	if now.After(c.ExpiryDate) {
		return nil, ErrCouponExpired
	}

	if orderTotal < c.MinOrderValue {
		return nil, &BelowMinimumError{Minimum: c.MinOrderValue}
	}

	if c.MaxTotalUses != nil && c.CurrentUseCount >= *c.MaxTotalUses {
		return nil, ErrCouponGlobalLimit
	}

	used, err := s.usages.CountByCouponAndUser(ctx, c.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("count coupon usage: %w", err)
	}
	if used >= c.MaxUsesPerUser {
		return nil, ErrCouponUserLimit
	}

	return &models.CouponGrant{
		Coupon:         *c,
		DiscountAmount: discountFor(c, orderTotal),
	}, nil
}

func discountFor(c *models.Coupon, orderTotal int64) int64 {
	var discount int64
	switch c.DiscountType {
	case models.DiscountFixed:
		discount = int64(math.Round(c.DiscountValue))
	case models.DiscountPercentage:
		discount = int64(math.Round(float64(orderTotal) * c.DiscountValue / 100))
		if c.MaxDiscount != nil && discount > *c.MaxDiscount {
			discount = *c.MaxDiscount
		}
	}
	if discount > orderTotal {
		discount = orderTotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// Redeem records one usage and bumps the coupon's counter. It is the second
// step of the placement saga, not atomic with order creation; the caller
// compensates with ReverseUsage if the order later fails.
func (s *CouponService) Redeem(ctx context.Context, couponID, userID, orderID string, discountAmount int64) error {
	usage := &models.CouponUsage{
		ID:             uuid.NewString(),
		CouponID:       couponID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: discountAmount,
		UsedAt:         s.now().UTC(),
	}
	if err := s.usages.Create(ctx, usage); err != nil {
		return fmt.Errorf("record coupon usage: %w", err)
	}
	if err := s.coupons.IncrementUseCount(ctx, couponID); err != nil {
		return fmt.Errorf("increment use count: %w", err)
	}
	return nil
}

// ReverseUsage undoes Redeem for one order. Idempotent: the counter is only
// decremented when a usage record was actually deleted. Errors are logged
// and swallowed; compensation must never fail the surrounding flow.
func (s *CouponService) ReverseUsage(ctx context.Context, orderID, couponID string) {
	deleted, err := s.usages.DeleteByOrderAndCoupon(ctx, orderID, couponID)
	if err != nil {
		log.Printf("coupon reversal: delete usage for order %s: %v", orderID, err)
		return
	}
	if !deleted {
		return // already reversed
	}
	if err := s.coupons.DecrementUseCount(ctx, couponID); err != nil {
		log.Printf("coupon reversal: decrement use count for coupon %s: %v", couponID, err)
	}
}

// --- admin + buyer-facing management, beyond the saga ---

func (s *CouponService) Create(ctx context.Context, c *models.Coupon) error {
	if c.Code == "" || c.DiscountValue <= 0 || !c.DiscountType.Valid() {
		return ErrInvalidInput
	}
	if c.ExpiryDate.IsZero() {
		return ErrInvalidInput
	}
	c.ID = uuid.NewString()
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.CurrentUseCount = 0
	if c.MaxUsesPerUser <= 0 {
		c.MaxUsesPerUser = 1
	}
	if c.StartDate.IsZero() {
		c.StartDate = s.now().UTC()
	}
	c.CreatedAt = s.now().UTC()
	c.UpdatedAt = c.CreatedAt

	err := s.coupons.Create(ctx, c)
	if errors.Is(err, repository.ErrDuplicateCode) {
		return ErrDuplicateCoupon
	}
	if err == nil {
		s.available.Invalidate()
	}
	return err
}

func (s *CouponService) Get(ctx context.Context, id string) (*models.Coupon, error) {
	c, err := s.coupons.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCouponNotFound
	}
	return c, err
}

func (s *CouponService) Update(ctx context.Context, c *models.Coupon) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	err := s.coupons.Update(ctx, c)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrCouponNotFound
	case errors.Is(err, repository.ErrDuplicateCode):
		return ErrDuplicateCoupon
	}
	if err == nil {
		s.available.Invalidate()
	}
	return err
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	err := s.coupons.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCouponNotFound
	}
	if err == nil {
		s.available.Invalidate()
	}
	return err
}

func (s *CouponService) SetActive(ctx context.Context, id string, active bool) error {
	err := s.coupons.SetActive(ctx, id, active)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCouponNotFound
	}
	if err == nil {
		s.available.Invalidate()
	}
	return err
}

func (s *CouponService) List(ctx context.Context, f repository.CouponFilter) ([]models.CouponWithUsage, int, error) {
	return s.coupons.List(ctx, f)
}

func (s *CouponService) Stats(ctx context.Context) (*models.CouponStats, error) {
	return s.coupons.Stats(ctx)
}

// Available lists the coupons a buyer can currently apply; the listing is
// cached briefly since it is purely informational.
func (s *CouponService) Available(ctx context.Context) ([]models.Coupon, error) {
	if cached, ok := s.available.Get(); ok {
		return cached, nil
	}
	coupons, err := s.coupons.ListAvailable(ctx, s.now())
	if err != nil {
		return nil, err
	}
	s.available.Set(coupons)
	return coupons, nil
}
