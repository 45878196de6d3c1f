package service

import (
	"errors"
	"fmt"
)

// Validation-class errors: reported immediately, no side effects.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyCart        = errors.New("order has no items")
	ErrBadAddress       = errors.New("address is incomplete")
	ErrBadPaymentMethod = errors.New("unsupported payment method")

	ErrInvalidCoupon     = errors.New("coupon is invalid or inactive")
	ErrCouponNotYetValid = errors.New("coupon is not yet valid")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponGlobalLimit = errors.New("coupon has no uses left")
	ErrCouponUserLimit   = errors.New("you have used up your quota for this coupon")
	ErrDuplicateCoupon   = errors.New("coupon code already exists")
)

// BelowMinimumError reports the minimum the order must reach.
type BelowMinimumError struct {
	Minimum int64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("order total must be at least %d to use this coupon", e.Minimum)
}

// Lifecycle / authorization errors.
var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrCouponNotFound = errors.New("coupon not found")
	ErrForbidden      = errors.New("forbidden")
	ErrAlreadyPaid    = errors.New("paid orders cannot be cancelled")
	ErrInvalidState   = errors.New("order cannot be cancelled in its current state")
	ErrInvalidStatus  = errors.New("unknown order status")
)

// ErrPaymentSession is the buyer-facing wrapper for gateway failures; the
// underlying cause is logged, full compensation has already run.
var ErrPaymentSession = errors.New("failed to create payment session")
