package models

import "time"

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

func (d DiscountType) Valid() bool {
	return d == DiscountFixed || d == DiscountPercentage
}

type Coupon struct {
	ID            string       `json:"id"`
	Code          string       `json:"code"`
	Description   string       `json:"description"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`
	// MaxDiscount caps percentage discounts; nil = uncapped. Ignored for fixed.
	MaxDiscount     *int64    `json:"max_discount,omitempty"`
	MinOrderValue   int64     `json:"min_order_value"`
	MaxTotalUses    *int      `json:"max_total_uses,omitempty"` // nil = unlimited
	CurrentUseCount int       `json:"current_use_count"`
	MaxUsesPerUser  int       `json:"max_uses_per_user"`
	IsActive        bool      `json:"is_active"`
	StartDate       time.Time `json:"start_date"`
	ExpiryDate      time.Time `json:"expiry_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CouponUsage records one redemption of a coupon by one order.
type CouponUsage struct {
	ID             string    `json:"id"`
	CouponID       string    `json:"coupon_id"`
	UserID         string    `json:"user_id"`
	OrderID        string    `json:"order_id"`
	DiscountAmount int64     `json:"discount_amount"`
	UsedAt         time.Time `json:"used_at"`
}

// CouponGrant is the outcome of a successful eligibility evaluation:
// the coupon snapshot plus the discount it grants for the candidate total.
type CouponGrant struct {
	Coupon         Coupon `json:"coupon"`
	DiscountAmount int64  `json:"discount_amount"`
}

// CouponWithUsage is the admin listing row.
type CouponWithUsage struct {
	Coupon
	TotalUsed int `json:"total_used"`
}

type CouponStats struct {
	TotalCoupons   int `json:"total_coupons"`
	ActiveCoupons  int `json:"active_coupons"`
	ExpiredCoupons int `json:"expired_coupons"`
	TotalUsages    int `json:"total_usages"`
}
