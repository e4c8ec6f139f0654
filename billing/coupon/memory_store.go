package coupon

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory coupon store for tests and development.
type MemoryStore struct {
	mu      sync.Mutex
	coupons map[string]*Coupon
}

// NewMemoryStore returns an empty in-memory coupon store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{coupons: make(map[string]*Coupon)}
}

func (s *MemoryStore) Get(ctx context.Context, code string) (*Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.coupons[code]
	if !exists {
		return nil, ErrCouponNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) Create(ctx context.Context, coupon *Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.coupons[coupon.Code]; exists {
		return ErrCouponExists
	}
	cp := *coupon
	s.coupons[coupon.Code] = &cp
	return nil
}

func (s *MemoryStore) Redeem(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.coupons[code]
	if !exists {
		return ErrCouponNotFound
	}
	if c.IsExhausted() {
		return ErrCouponExhausted
	}
	c.Redeemed++
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.coupons[code]
	if !exists {
		return ErrCouponNotFound
	}
	if c.Redeemed > 0 {
		c.Redeemed--
	}
	return nil
}
