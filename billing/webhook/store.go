package webhook

import (
	"context"
	"time"
)

// EventStore records processed provider event IDs for idempotency.
//
// Providers do not retry indefinitely, so entries are prunable after a
// retention window (30 days by default).
type EventStore interface {
	// MarkProcessed reserves the event ID, first-writer-wins. Returns true
	// if this call was the first to see the ID.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)

	// Release frees a reservation after a failed application so the
	// provider's retry can apply the event.
	Release(ctx context.Context, eventID string) error

	// PruneOlderThan removes entries older than the given age and returns
	// how many were removed. Stores with native expiry may no-op.
	PruneOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// DefaultRetention is how long processed event IDs are kept before pruning.
const DefaultRetention = 30 * 24 * time.Hour
