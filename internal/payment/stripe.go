package payment

import (
	"context"
	"fmt"
	"log"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

const currency = "vnd"

// StripeGateway creates Stripe Checkout sessions for online payments.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems)+1)
	for _, it := range req.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
				UnitAmount: stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}
	if req.ShippingFee > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Shipping fee"),
				},
				UnitAmount: stripe.Int64(req.ShippingFee),
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("coupon_code", req.CouponCode)

	// A gateway-displayed discount line is nice to have but not worth
	// failing checkout over; the discount is already in the totals.
	if req.DiscountAmount > 0 {
		if couponID, err := g.createDiscountCoupon(ctx, req); err != nil {
			log.Printf("stripe: create discount coupon for order %s: %v", req.OrderID, err)
		} else {
			params.Discounts = []*stripe.CheckoutSessionDiscountParams{
				{Coupon: stripe.String(couponID)},
			}
		}
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) createDiscountCoupon(ctx context.Context, req SessionRequest) (string, error) {
	name := "Discount"
	if req.CouponCode != "" {
		name = "Discount " + req.CouponCode
	}
	c, err := g.api.Coupons.New(&stripe.CouponParams{
		Params:    stripe.Params{Context: ctx},
		AmountOff: stripe.Int64(req.DiscountAmount),
		Currency:  stripe.String(currency),
		Duration:  stripe.String(string(stripe.CouponDurationOnce)),
		Name:      stripe.String(name),
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}
