package webhook_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablepress/fablepress/billing/webhook"
)

func newRedisStore(t *testing.T, retention time.Duration) (*webhook.RedisEventStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return webhook.NewRedisEventStore(client, retention), mr
}

func TestRedisEventStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("first writer wins", func(t *testing.T) {
		t.Parallel()
		store, _ := newRedisStore(t, 0)

		first, err := store.MarkProcessed(ctx, "evt_1")
		require.NoError(t, err)
		assert.True(t, first)

		second, err := store.MarkProcessed(ctx, "evt_1")
		require.NoError(t, err)
		assert.False(t, second)
	})

	t.Run("release frees the slot", func(t *testing.T) {
		t.Parallel()
		store, _ := newRedisStore(t, 0)

		_, err := store.MarkProcessed(ctx, "evt_2")
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "evt_2"))

		first, err := store.MarkProcessed(ctx, "evt_2")
		require.NoError(t, err)
		assert.True(t, first)
	})

	t.Run("entries expire after the retention window", func(t *testing.T) {
		t.Parallel()
		store, mr := newRedisStore(t, time.Minute)

		_, err := store.MarkProcessed(ctx, "evt_3")
		require.NoError(t, err)

		mr.FastForward(2 * time.Minute)

		first, err := store.MarkProcessed(ctx, "evt_3")
		require.NoError(t, err)
		assert.True(t, first, "expired entry should be reprocessable")
	})

	t.Run("prune is a no-op under native expiry", func(t *testing.T) {
		t.Parallel()
		store, _ := newRedisStore(t, time.Minute)

		_, err := store.MarkProcessed(ctx, "evt_4")
		require.NoError(t, err)

		pruned, err := store.PruneOlderThan(ctx, time.Nanosecond)
		require.NoError(t, err)
		assert.Zero(t, pruned)

		second, err := store.MarkProcessed(ctx, "evt_4")
		require.NoError(t, err)
		assert.False(t, second)
	})
}
