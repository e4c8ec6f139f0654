package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresEventStore records processed event IDs in a prunable table.
// First-writer-wins comes from the primary key: a duplicate INSERT affects
// zero rows.
type PostgresEventStore struct {
	pool *pgxpool.Pool
}

// NewPostgresEventStore returns an EventStore backed by the given pool.
// Panics if pool is nil to fail fast during initialization.
func NewPostgresEventStore(pool *pgxpool.Pool) *PostgresEventStore {
	if pool == nil {
		panic("webhook: pgx pool is required")
	}
	return &PostgresEventStore{pool: pool}
}

func (s *PostgresEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO webhook_events (event_id, processed_at)
		VALUES ($1, now())
		ON CONFLICT (event_id) DO NOTHING`, eventID)
	if err != nil {
		return false, fmt.Errorf("mark webhook event processed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresEventStore) Release(ctx context.Context, eventID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM webhook_events WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("release webhook event: %w", err)
	}
	return nil
}

func (s *PostgresEventStore) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM webhook_events WHERE processed_at < now() - make_interval(secs => $1)`,
		age.Seconds())
	if err != nil {
		return 0, fmt.Errorf("prune webhook events: %w", err)
	}
	return tag.RowsAffected(), nil
}
