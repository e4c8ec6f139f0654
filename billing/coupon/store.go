package coupon

import "context"

// Store defines coupon persistence.
type Store interface {
	// Get retrieves a coupon by code. Returns ErrCouponNotFound if missing.
	Get(ctx context.Context, code string) (*Coupon, error)

	// Create inserts a new coupon. Returns ErrCouponExists on a taken code.
	Create(ctx context.Context, coupon *Coupon) error

	// Redeem atomically increments the redemption count only while under
	// the cap. Returns ErrCouponExhausted when the cap is reached.
	Redeem(ctx context.Context, code string) error

	// Release returns one redemption, flooring at zero. Compensates a
	// Redeem whose checkout never completed.
	Release(ctx context.Context, code string) error
}
