package cache

import (
	"sync"
	"time"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
)

// AvailableCouponCache holds the buyer-facing "available coupons" listing
// for a short TTL. Only read-only preview paths go through it; eligibility
// checks during checkout always hit the ledger directly.
type AvailableCouponCache struct {
	mu        sync.RWMutex
	coupons   []models.Coupon
	fetchedAt time.Time
	ttl       time.Duration
}

func NewAvailableCouponCache(ttl time.Duration) *AvailableCouponCache {
	return &AvailableCouponCache{ttl: ttl}
}

func (c *AvailableCouponCache) Get() ([]models.Coupon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.coupons == nil || time.Since(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.coupons, true
}

func (c *AvailableCouponCache) Set(coupons []models.Coupon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coupons = coupons
	c.fetchedAt = time.Now()
}

// Invalidate drops the cached listing; called after admin writes.
func (c *AvailableCouponCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coupons = nil
}
