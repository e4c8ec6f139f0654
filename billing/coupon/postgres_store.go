package coupon

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists coupons; Redeem uses the same conditional-update
// idiom as the quota store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given pool.
// Panics if pool is nil to fail fast during initialization.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("coupon: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, code string) (*Coupon, error) {
	var c Coupon
	err := s.pool.QueryRow(ctx, `
		SELECT code, provider_id, percent_off, amount_off, expires_at,
			max_redemptions, redeemed, created_at
		FROM coupons WHERE code = $1`, code,
	).Scan(&c.Code, &c.ProviderID, &c.PercentOff, &c.AmountOff, &c.ExpiresAt,
		&c.MaxRedemptions, &c.Redeemed, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) Create(ctx context.Context, coupon *Coupon) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO coupons (code, provider_id, percent_off, amount_off,
			expires_at, max_redemptions, redeemed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		coupon.Code, coupon.ProviderID, coupon.PercentOff, coupon.AmountOff,
		coupon.ExpiresAt, coupon.MaxRedemptions, coupon.Redeemed, coupon.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCouponExists
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

func (s *PostgresStore) Redeem(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE coupons
		SET redeemed = redeemed + 1
		WHERE code = $1 AND (max_redemptions = 0 OR redeemed < max_redemptions)`,
		code)
	if err != nil {
		return fmt.Errorf("redeem coupon: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No row touched: missing code or exhausted cap.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM coupons WHERE code = $1)`, code,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check coupon: %w", err)
	}
	if !exists {
		return ErrCouponNotFound
	}
	return ErrCouponExhausted
}

func (s *PostgresStore) Release(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE coupons
		SET redeemed = GREATEST(redeemed - 1, 0)
		WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("release coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCouponNotFound
	}
	return nil
}
