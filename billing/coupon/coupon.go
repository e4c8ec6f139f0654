package coupon

import (
	"time"

	"github.com/fablepress/fablepress/billing/catalog"
)

// Coupon is a discount applied to a plan's price at checkout.
// Exactly one of PercentOff / AmountOff should be set.
type Coupon struct {
	Code string
	// ProviderID is the payment provider's coupon object ID, passed through
	// to checkout so the provider applies the discount on its side.
	ProviderID string

	PercentOff int   // 1-100
	AmountOff  int64 // smallest currency unit

	ExpiresAt      *time.Time
	MaxRedemptions int64 // 0 means uncapped
	Redeemed       int64

	CreatedAt time.Time
}

// IsExpired reports whether the coupon has lapsed at the given time.
func (c Coupon) IsExpired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(*c.ExpiresAt)
}

// IsExhausted reports whether the redemption cap has been reached.
func (c Coupon) IsExhausted() bool {
	return c.MaxRedemptions > 0 && c.Redeemed >= c.MaxRedemptions
}

// Discount returns the price after applying the coupon, floored at zero.
func (c Coupon) Discount(price catalog.Money) catalog.Money {
	discounted := price
	switch {
	case c.PercentOff > 0:
		discounted.Amount = price.Amount - price.Amount*int64(c.PercentOff)/100
	case c.AmountOff > 0:
		discounted.Amount = price.Amount - c.AmountOff
	}
	if discounted.Amount < 0 {
		discounted.Amount = 0
	}
	return discounted
}
