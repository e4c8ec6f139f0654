package webhook

import (
	"context"
	"sync"
	"time"
)

// MemoryEventStore is an in-memory EventStore for tests and development.
type MemoryEventStore struct {
	mu        sync.Mutex
	processed map[string]time.Time
	now       func() time.Time
}

// NewMemoryEventStore returns an empty in-memory processed-event store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{
		processed: make(map[string]time.Time),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.processed[eventID]; exists {
		return false, nil
	}
	s.processed[eventID] = s.now()
	return true, nil
}

func (s *MemoryEventStore) Release(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processed, eventID)
	return nil
}

func (s *MemoryEventStore) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-age)
	var pruned int64
	for id, at := range s.processed {
		if at.Before(cutoff) {
			delete(s.processed, id)
			pruned++
		}
	}
	return pruned, nil
}
