package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisEventStore records processed event IDs as SETNX keys with a retention
// TTL, so pruning happens through native expiry.
type RedisEventStore struct {
	client    redis.UniversalClient
	retention time.Duration
}

// NewRedisEventStore returns an EventStore over the given redis client.
// Retention <= 0 falls back to DefaultRetention.
// Panics if client is nil to fail fast during initialization.
func NewRedisEventStore(client redis.UniversalClient, retention time.Duration) *RedisEventStore {
	if client == nil {
		panic("webhook: redis client is required")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RedisEventStore{client: client, retention: retention}
}

func (s *RedisEventStore) key(eventID string) string {
	return "webhook:processed:" + eventID
}

func (s *RedisEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	first, err := s.client.SetNX(ctx, s.key(eventID), 1, s.retention).Result()
	if err != nil {
		return false, fmt.Errorf("mark webhook event processed: %w", err)
	}
	return first, nil
}

func (s *RedisEventStore) Release(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, s.key(eventID)).Err(); err != nil {
		return fmt.Errorf("release webhook event: %w", err)
	}
	return nil
}

// PruneOlderThan is a no-op: redis expires entries by TTL.
func (s *RedisEventStore) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return 0, nil
}
