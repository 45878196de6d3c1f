package payment

import "context"

type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest describes one checkout session to be created on the
// external gateway. DiscountAmount is advisory: the discount is already
// baked into the order total, a gateway-side discount line is cosmetic.
type SessionRequest struct {
	OrderID        string
	UserID         string
	CouponCode     string
	LineItems      []LineItem
	ShippingFee    int64
	DiscountAmount int64
	SuccessURL     string
	CancelURL      string
}

type Session struct {
	ID  string
	URL string
}

// Gateway is the contract the checkout flow requires of the payment
// provider. It may fail; the caller owns all compensation.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
}
