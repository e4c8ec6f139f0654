package coupon_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablepress/fablepress/billing/catalog"
	"github.com/fablepress/fablepress/billing/coupon"
)

var couponNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func TestCoupon_Discount(t *testing.T) {
	t.Parallel()

	price := catalog.Money{Amount: 1499, Currency: "USD"}

	tests := []struct {
		name   string
		coupon coupon.Coupon
		want   int64
	}{
		{"percent off", coupon.Coupon{PercentOff: 20}, 1200},
		{"full percent off", coupon.Coupon{PercentOff: 100}, 0},
		{"amount off", coupon.Coupon{AmountOff: 500}, 999},
		{"amount off exceeding price floors at zero", coupon.Coupon{AmountOff: 5000}, 0},
		{"no discount fields", coupon.Coupon{}, 1499},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.coupon.Discount(price)
			assert.Equal(t, tt.want, got.Amount)
			assert.Equal(t, "USD", got.Currency)
		})
	}
}

func TestCoupon_Expiry(t *testing.T) {
	t.Parallel()

	past := couponNow.Add(-time.Hour)
	future := couponNow.Add(time.Hour)

	assert.False(t, coupon.Coupon{}.IsExpired(couponNow), "no expiry never expires")
	assert.False(t, coupon.Coupon{ExpiresAt: &future}.IsExpired(couponNow))
	assert.True(t, coupon.Coupon{ExpiresAt: &past}.IsExpired(couponNow))
	assert.True(t, coupon.Coupon{ExpiresAt: &couponNow}.IsExpired(couponNow), "expiry instant is expired")
}

func TestCoupon_Exhaustion(t *testing.T) {
	t.Parallel()

	assert.False(t, coupon.Coupon{MaxRedemptions: 0, Redeemed: 1000}.IsExhausted(), "zero cap is uncapped")
	assert.False(t, coupon.Coupon{MaxRedemptions: 5, Redeemed: 4}.IsExhausted())
	assert.True(t, coupon.Coupon{MaxRedemptions: 5, Redeemed: 5}.IsExhausted())
}

func TestService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newService := func(t *testing.T, coupons ...*coupon.Coupon) *coupon.Service {
		t.Helper()
		store := coupon.NewMemoryStore()
		for _, c := range coupons {
			require.NoError(t, store.Create(ctx, c))
		}
		return coupon.NewService(store, coupon.WithClock(func() time.Time { return couponNow }))
	}

	t.Run("lookup returns usable coupon", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, &coupon.Coupon{Code: "LAUNCH20", PercentOff: 20, ProviderID: "promo_1"})

		c, err := svc.Lookup(ctx, "LAUNCH20")
		require.NoError(t, err)
		assert.Equal(t, 20, c.PercentOff)
		assert.Equal(t, "promo_1", c.ProviderID)
	})

	t.Run("unknown code", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)

		_, err := svc.Lookup(ctx, "NOPE")
		assert.ErrorIs(t, err, coupon.ErrCouponNotFound)
	})

	t.Run("expired coupon", func(t *testing.T) {
		t.Parallel()
		past := couponNow.Add(-time.Minute)
		svc := newService(t, &coupon.Coupon{Code: "OLD", PercentOff: 10, ExpiresAt: &past})

		_, err := svc.Lookup(ctx, "OLD")
		assert.ErrorIs(t, err, coupon.ErrCouponExpired)
	})

	t.Run("redeem counts against the cap", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, &coupon.Coupon{Code: "CAPPED", PercentOff: 10, MaxRedemptions: 2})

		c, err := svc.Redeem(ctx, "CAPPED")
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.Redeemed)

		_, err = svc.Redeem(ctx, "CAPPED")
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, "CAPPED")
		assert.ErrorIs(t, err, coupon.ErrCouponExhausted)
	})

	t.Run("release hands a redemption back", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, &coupon.Coupon{Code: "ONESHOT", PercentOff: 10, MaxRedemptions: 1})

		_, err := svc.Redeem(ctx, "ONESHOT")
		require.NoError(t, err)
		_, err = svc.Redeem(ctx, "ONESHOT")
		require.ErrorIs(t, err, coupon.ErrCouponExhausted)

		require.NoError(t, svc.Release(ctx, "ONESHOT"))

		c, err := svc.Redeem(ctx, "ONESHOT")
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.Redeemed)
	})

	t.Run("release floors at zero", func(t *testing.T) {
		t.Parallel()
		store := coupon.NewMemoryStore()
		require.NoError(t, store.Create(ctx, &coupon.Coupon{Code: "FRESH"}))

		require.NoError(t, store.Release(ctx, "FRESH"))
		c, err := store.Get(ctx, "FRESH")
		require.NoError(t, err)
		assert.Zero(t, c.Redeemed)

		assert.ErrorIs(t, store.Release(ctx, "NOPE"), coupon.ErrCouponNotFound)
	})
}
