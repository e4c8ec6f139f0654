package coupon

import (
	"context"
	"time"
)

// Service validates and redeems coupons at checkout time.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService returns a coupon service over the given store.
// Panics if store is nil to fail fast during initialization.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic("coupon: store is required")
	}
	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source for deterministic expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Lookup returns the coupon for a code if it is still usable.
func (s *Service) Lookup(ctx context.Context, code string) (*Coupon, error) {
	c, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if c.IsExpired(s.now()) {
		return nil, ErrCouponExpired
	}
	if c.IsExhausted() {
		return nil, ErrCouponExhausted
	}
	return c, nil
}

// Redeem consumes one redemption of the code. Validation and the counted
// redemption are separate calls; the store's conditional increment keeps the
// cap safe under concurrent checkouts.
func (s *Service) Redeem(ctx context.Context, code string) (*Coupon, error) {
	c, err := s.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.store.Redeem(ctx, code); err != nil {
		return nil, err
	}
	c.Redeemed++
	return c, nil
}

// Release hands back a redemption consumed by Redeem when the checkout it was
// charged for failed before producing a session.
func (s *Service) Release(ctx context.Context, code string) error {
	return s.store.Release(ctx, code)
}
