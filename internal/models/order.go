package models

import "time"

type PaymentMethod string

const (
	PaymentStripe PaymentMethod = "stripe"
	PaymentCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentStripe || m == PaymentCOD
}

type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "placed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether a buyer may still self-service-cancel.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPlaced || s == OrderStatusProcessing
}

type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

type Address struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`
	Area        string `json:"area"`
	City        string `json:"city"`
	State       string `json:"state"`
}

func (a Address) Complete() bool {
	return a.FullName != "" && a.PhoneNumber != "" && a.Area != "" && a.City != "" && a.State != ""
}

// CouponRef is the order's snapshot of the coupon it redeemed.
type CouponRef struct {
	CouponID       string `json:"coupon_id"`
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
}

type Order struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	Items            []OrderItem   `json:"items"`
	OriginalAmount   int64         `json:"original_amount"`
	DiscountAmount   int64         `json:"discount_amount"`
	ShippingFee      int64         `json:"shipping_fee"`
	Amount           int64         `json:"amount"`
	Coupon           *CouponRef    `json:"coupon,omitempty"`
	Address          Address       `json:"address"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentConfirmed bool          `json:"payment_confirmed"`
	Status           OrderStatus   `json:"status"`
	PlacedAt         time.Time     `json:"placed_at"`
	CancelledAt      *time.Time    `json:"cancelled_at,omitempty"`
}

// FinalAmount is the payable total: original + shipping - discount, floored at 0.
func FinalAmount(originalAmount, shippingFee, discountAmount int64) int64 {
	total := originalAmount + shippingFee - discountAmount
	if total < 0 {
		return 0
	}
	return total
}

type OrderStats struct {
	TotalOrders   int   `json:"total_orders"`
	TotalRevenue  int64 `json:"total_revenue"`
	TotalDiscount int64 `json:"total_discount"`
	AvgOrderValue int64 `json:"avg_order_value"`
}
