// Package coupon applies promotion codes at checkout time.
//
// Coupons are a thin extension over the plan catalog: a code maps to a
// percentage or fixed discount off a plan's price, with optional expiry and
// a redemption cap. Redemption uses the same conditional-increment idiom as
// the quota store so a capped code can never be over-redeemed by concurrent
// checkouts.
package coupon
