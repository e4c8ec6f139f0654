// Package checkout creates hosted Stripe checkout and billing-portal
// sessions for upgrading and managing subscriptions.
//
// The account ID travels to Stripe twice: as the session's client reference
// and as subscription metadata, so every later webhook can map provider
// events back to the account without a lookup table. Payment itself stays on
// Stripe's side; this package never touches card data.
package checkout
