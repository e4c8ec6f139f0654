package usage

import (
	"context"

	"github.com/google/uuid"
)

// ConsumeResult reports the outcome of a conditional counter increment.
type ConsumeResult struct {
	// Allowed is false when the increment would exceed the limit. Nothing
	// was mutated in that case; the caller must not perform the billable
	// side effect.
	Allowed bool
	// NewValue is the post-increment counter value when Allowed, otherwise
	// the unchanged current value.
	NewValue int64
	// Remaining is the room left under the limit after this call, clamped
	// at zero. -1 when the limit is unlimited.
	Remaining int64
}

// Store defines the persistence contract for accounts and their counters.
//
// TryConsume and Update on the same account must serialize with each other
// so a period reset can never land between a consume's check and its
// increment.
type Store interface {
	// Create inserts a new account. Returns ErrAccountAlreadyExists when the
	// ID is taken.
	Create(ctx context.Context, account *Account) error

	// Get retrieves an account by ID. Returns ErrAccountNotFound if missing.
	Get(ctx context.Context, accountID uuid.UUID) (*Account, error)

	// Update applies fn to the account under a per-account lock and persists
	// the result. fn returning an error aborts the update with no mutation.
	// The returned account reflects the persisted state.
	Update(ctx context.Context, accountID uuid.UUID, fn func(*Account) error) (*Account, error)

	// TryConsume atomically increments the counter by amount only if the
	// resulting value does not exceed limit (limit == -1 means unlimited).
	// The check and increment are a single indivisible operation. On denial
	// it returns Allowed=false with no mutation.
	TryConsume(ctx context.Context, accountID uuid.UUID, counter Counter, amount, limit int64) (ConsumeResult, error)

	// Refund decrements a counter by amount, clamped at zero. Best-effort
	// compensation for a billable side effect that failed after consumption.
	Refund(ctx context.Context, accountID uuid.UUID, counter Counter, amount int64) error

	// ResetPeriodCounters zeroes all four counters as one transaction.
	// Invoked only by billing-period rollover.
	ResetPeriodCounters(ctx context.Context, accountID uuid.UUID) error
}
