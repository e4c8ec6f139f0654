package coupon

import "errors"

var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrCouponExpired   = errors.New("coupon expired")
	ErrCouponExhausted = errors.New("coupon redemption cap reached")
	ErrCouponExists    = errors.New("coupon code already exists")
)
