package usage

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
)

// accountEntry pairs an account with its own lock so consume, refund, and
// lifecycle updates on one account serialize while other accounts proceed in
// parallel.
type accountEntry struct {
	mu      sync.Mutex
	account Account
}

// MemoryStore is an in-memory Store for tests and development.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*accountEntry
}

// NewMemoryStore returns an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[uuid.UUID]*accountEntry)}
}

func (s *MemoryStore) Create(ctx context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return ErrAccountAlreadyExists
	}
	s.accounts[account.ID] = &accountEntry{account: *account}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, accountID uuid.UUID) (*Account, error) {
	entry, err := s.entry(accountID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	account := entry.account
	return &account, nil
}

func (s *MemoryStore) Update(ctx context.Context, accountID uuid.UUID, fn func(*Account) error) (*Account, error) {
	entry, err := s.entry(accountID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	updated := entry.account
	if err := fn(&updated); err != nil {
		return nil, err
	}
	entry.account = updated

	account := updated
	return &account, nil
}

func (s *MemoryStore) TryConsume(ctx context.Context, accountID uuid.UUID, counter Counter, amount, limit int64) (ConsumeResult, error) {
	if !counter.Valid() {
		return ConsumeResult{}, ErrUnknownCounter
	}
	if amount <= 0 {
		return ConsumeResult{}, ErrInvalidAmount
	}

	entry, err := s.entry(accountID)
	if err != nil {
		return ConsumeResult{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	current := entry.account.UsedFor(counter)
	// Room is computed by subtraction so an oversized amount cannot wrap the
	// counter negative.
	room := limit - current
	if limit == unlimited {
		room = math.MaxInt64 - current
	}
	if amount > room {
		return ConsumeResult{
			Allowed:   false,
			NewValue:  current,
			Remaining: remaining(current, limit),
		}, nil
	}

	setCounter(&entry.account, counter, current+amount)
	return ConsumeResult{
		Allowed:   true,
		NewValue:  current + amount,
		Remaining: remaining(current+amount, limit),
	}, nil
}

func (s *MemoryStore) Refund(ctx context.Context, accountID uuid.UUID, counter Counter, amount int64) error {
	if !counter.Valid() {
		return ErrUnknownCounter
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	entry, err := s.entry(accountID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	current := entry.account.UsedFor(counter)
	next := current - amount
	if next < 0 {
		next = 0
	}
	setCounter(&entry.account, counter, next)
	return nil
}

func (s *MemoryStore) ResetPeriodCounters(ctx context.Context, accountID uuid.UUID) error {
	entry, err := s.entry(accountID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.account.ResetCounters()
	return nil
}

func (s *MemoryStore) entry(accountID uuid.UUID) (*accountEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.accounts[accountID]
	if !exists {
		return nil, ErrAccountNotFound
	}
	return entry, nil
}

const unlimited int64 = -1

func remaining(used, limit int64) int64 {
	if limit == unlimited {
		return unlimited
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

func setCounter(a *Account, c Counter, value int64) {
	switch c {
	case CounterBooks:
		a.BooksUsed = value
	case CounterIllustrations:
		a.IllustrationsUsed = value
	case CounterTemplateBooks:
		a.TemplateBooksUsed = value
	case CounterBonusVariations:
		a.BonusVariationsUsed = value
	}
}
