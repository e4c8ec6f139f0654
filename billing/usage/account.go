package usage

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the provider-facing state of an account's
// subscription. Access decisions never read this field alone: a past_due
// account keeps access until its period end (the grace rule).
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
)

// Account is a subscriber's billing and usage record. One record per user.
//
// The record is mutated exclusively by checkout completion, webhook
// ingestion, counter increments from quota-consuming handlers, and admin
// overrides.
type Account struct {
	ID     uuid.UUID
	PlanID string
	Status SubscriptionStatus

	CancelAtPeriodEnd  bool
	TrialEndsAt        *time.Time // trial plans only
	CurrentPeriodStart *time.Time // nil until first paid period
	CurrentPeriodEnd   *time.Time
	LastPaymentDate    *time.Time

	BooksUsed           int64
	IllustrationsUsed   int64
	TemplateBooksUsed   int64
	BonusVariationsUsed int64

	ProviderCustomerID string // provider's customer ID (cus_xxx)
	ProviderSubID      string // provider's subscription ID (sub_xxx)

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTrialAccount returns a fresh account on the trial plan with all
// counters at zero and the trial window starting at now.
func NewTrialAccount(id uuid.UUID, trialPlanID string, trialDays int, now time.Time) *Account {
	now = now.UTC()
	trialEnd := now.AddDate(0, 0, trialDays)
	return &Account{
		ID:          id,
		PlanID:      trialPlanID,
		Status:      StatusActive,
		TrialEndsAt: &trialEnd,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UsedFor returns the current value of the given counter.
func (a *Account) UsedFor(c Counter) int64 {
	switch c {
	case CounterBooks:
		return a.BooksUsed
	case CounterIllustrations:
		return a.IllustrationsUsed
	case CounterTemplateBooks:
		return a.TemplateBooksUsed
	case CounterBonusVariations:
		return a.BonusVariationsUsed
	}
	return 0
}

// ResetCounters zeroes all four usage counters. Callers are responsible for
// persisting the change as one transaction.
func (a *Account) ResetCounters() {
	a.BooksUsed = 0
	a.IllustrationsUsed = 0
	a.TemplateBooksUsed = 0
	a.BonusVariationsUsed = 0
}

// IsTrialExpired reports whether the trial window has passed at the given time.
// Accounts without a trial window never expire by trial.
func (a *Account) IsTrialExpired(now time.Time) bool {
	if a.TrialEndsAt == nil {
		return false
	}
	return !now.Before(*a.TrialEndsAt)
}

// PeriodEnded reports whether the current paid period has ended at the given
// time. Accounts with no paid period yet report false.
func (a *Account) PeriodEnded(now time.Time) bool {
	if a.CurrentPeriodEnd == nil {
		return false
	}
	return !now.Before(*a.CurrentPeriodEnd)
}
