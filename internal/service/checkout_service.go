package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
	"github.com/minhtran-dev/vnshop-order-service/internal/payment"
)

// Collaborators of the checkout flow, as the coordinator sees them.
type CouponLedger interface {
	Evaluate(ctx context.Context, code, userID string, orderTotal int64) (*models.CouponGrant, error)
	Redeem(ctx context.Context, couponID, userID, orderID string, discountAmount int64) error
	ReverseUsage(ctx context.Context, orderID, couponID string)
}

type Inventory interface {
	Reserve(ctx context.Context, productID string, qty int64) (*models.StockReservation, error)
	Release(ctx context.Context, productID string, qty int64)
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Delete(ctx context.Context, id string) error
	MarkPaid(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, cancelledAt *time.Time) error
}

type CartStore interface {
	ClearCart(ctx context.Context, userID string) error
}

type PlaceOrderInput struct {
	Items          []models.OrderItem
	Amount         int64
	OriginalAmount int64
	DiscountAmount int64
	ShippingFee    int64
	CouponCode     string
	Address        models.Address
	PaymentMethod  models.PaymentMethod
}

type PlaceOrderResult struct {
	OrderID       string               `json:"order_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Message       string               `json:"message,omitempty"`
	SessionURL    string               `json:"session_url,omitempty"`
	Order         *models.Order        `json:"order,omitempty"`
}

// CheckoutService coordinates order placement across the three ledgers and
// the payment gateway. There is no cross-resource transaction; each step is
// followed, on failure, by explicit compensation of everything before it.
type CheckoutService struct {
	coupons     CouponLedger
	inventory   Inventory
	orders      OrderStore
	cart        CartStore
	gateway     payment.Gateway
	frontendURL string
	now         func() time.Time
}

func NewCheckoutService(
	coupons CouponLedger,
	inventory Inventory,
	orders OrderStore,
	cart CartStore,
	gateway payment.Gateway,
	frontendURL string,
) *CheckoutService {
	return &CheckoutService{
		coupons:     coupons,
		inventory:   inventory,
		orders:      orders,
		cart:        cart,
		gateway:     gateway,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

// PlaceOrder runs the placement saga:
//
//	validate input and coupon  -> nothing touched on failure
//	reserve stock per line     -> released line by line on failure
//	persist the order record   -> stock released on failure
//	redeem coupon, clear cart  -> logged, never fatal
//	COD: done; online: create gateway session, compensating everything
//	in reverse order if the gateway call fails.
func (s *CheckoutService) PlaceOrder(ctx context.Context, user models.Identity, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity <= 0 || it.UnitPrice <= 0 || it.Name == "" {
			return nil, ErrInvalidInput
		}
	}
	if !in.PaymentMethod.Valid() {
		return nil, ErrBadPaymentMethod
	}
	if !in.Address.Complete() {
		return nil, ErrBadAddress
	}

	// The submitted amounts come from live cart data; only the coupon's own
	// discount is re-validated server side.
	originalAmount := in.OriginalAmount
	if originalAmount == 0 {
		originalAmount = in.Amount + in.DiscountAmount
	}

	var grant *models.CouponGrant
	if in.CouponCode != "" {
		g, err := s.coupons.Evaluate(ctx, in.CouponCode, user.UserID, originalAmount)
		if err != nil {
			return nil, err
		}
		grant = g
	}

	// Reserve stock line-item by line-item, keeping a rollback list of what
	// has already been taken.
	reserved := make([]*models.StockReservation, 0, len(in.Items))
	releaseReserved := func() {
		for _, res := range reserved {
			s.inventory.Release(ctx, res.ProductID, res.Quantity)
		}
	}
	for _, it := range in.Items {
		res, err := s.inventory.Reserve(ctx, it.ProductID, it.Quantity)
		if err != nil {
			releaseReserved()
			return nil, err
		}
		reserved = append(reserved, res)
	}

	discountAmount := int64(0)
	var couponRef *models.CouponRef
	if grant != nil {
		discountAmount = grant.DiscountAmount
		couponRef = &models.CouponRef{
			CouponID:       grant.Coupon.ID,
			Code:           grant.Coupon.Code,
			DiscountAmount: discountAmount,
		}
	}

	order := &models.Order{
		ID:             uuid.NewString(),
		UserID:         user.UserID,
		Items:          in.Items,
		OriginalAmount: originalAmount,
		DiscountAmount: discountAmount,
		ShippingFee:    in.ShippingFee,
		Amount:         models.FinalAmount(originalAmount, in.ShippingFee, discountAmount),
		Coupon:         couponRef,
		Address:        in.Address,
		PaymentMethod:  in.PaymentMethod,
		Status:         models.OrderStatusPlaced,
		PlacedAt:       s.now().UTC(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		releaseReserved()
		return nil, fmt.Errorf("persist order: %w", err)
	}

	// Usage bookkeeping failure does not undo a placed order; the coupon
	// accounting drifting is the accepted trade-off here.
	if couponRef != nil && discountAmount > 0 {
		if err := s.coupons.Redeem(ctx, couponRef.CouponID, user.UserID, order.ID, discountAmount); err != nil {
			log.Printf("order %s: coupon usage tracking failed: %v", order.ID, err)
		}
	}

	if err := s.cart.ClearCart(ctx, user.UserID); err != nil {
		log.Printf("order %s: clear cart for user %s: %v", order.ID, user.UserID, err)
	}

	if in.PaymentMethod == models.PaymentCOD {
		return &PlaceOrderResult{
			OrderID:       order.ID,
			PaymentMethod: models.PaymentCOD,
			Message:       "Order placed. You will pay on delivery.",
			Order:         order,
		}, nil
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, s.sessionRequest(user, order))
	if err != nil {
		log.Printf("order %s: payment session creation failed, compensating: %v", order.ID, err)
		// Reverse order relative to the steps above.
		if dErr := s.orders.Delete(ctx, order.ID); dErr != nil {
			log.Printf("order %s: compensation: delete order: %v", order.ID, dErr)
		}
		releaseReserved()
		if couponRef != nil {
			s.coupons.ReverseUsage(ctx, order.ID, couponRef.CouponID)
		}
		return nil, ErrPaymentSession
	}

	return &PlaceOrderResult{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentStripe,
		SessionURL:    sess.URL,
	}, nil
}

func (s *CheckoutService) sessionRequest(user models.Identity, order *models.Order) payment.SessionRequest {
	items := make([]payment.LineItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, payment.LineItem{
			Name:       it.Name,
			UnitAmount: it.UnitPrice,
			Quantity:   it.Quantity,
		})
	}
	couponCode := ""
	if order.Coupon != nil {
		couponCode = order.Coupon.Code
	}
	return payment.SessionRequest{
		OrderID:        order.ID,
		UserID:         user.UserID,
		CouponCode:     couponCode,
		LineItems:      items,
		ShippingFee:    order.ShippingFee,
		DiscountAmount: order.DiscountAmount,
		SuccessURL:     fmt.Sprintf("%s/verify?success=true&orderId=%s", s.frontendURL, order.ID),
		CancelURL:      fmt.Sprintf("%s/verify?success=false&orderId=%s", s.frontendURL, order.ID),
	}
}
