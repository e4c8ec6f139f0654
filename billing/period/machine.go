package period

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/fablepress/fablepress/billing/catalog"
	"github.com/fablepress/fablepress/billing/usage"
)

// Transition events. Names match the normalized webhook vocabulary.
const (
	EventCheckoutCompleted    = "checkout_completed"
	EventPaymentSucceeded     = "payment_succeeded"
	EventPaymentFailed        = "payment_failed"
	EventCancelRequested      = "cancel_requested"
	EventSubscriptionCanceled = "subscription_canceled"
)

// transitions guards each event against the derived states it may fire from.
// An event arriving in any other state is rejected with no mutation.
var transitions = map[string][]State{
	EventCheckoutCompleted:    {StateTrialActive, StateTrialExpired, StateCanceled},
	EventPaymentSucceeded:     {StateSubscribedActive, StateSubscribedGrace, StateSubscribedExpired},
	EventPaymentFailed:        {StateSubscribedActive, StateSubscribedGrace},
	EventCancelRequested:      {StateSubscribedActive, StateSubscribedGrace},
	EventSubscriptionCanceled: {StateSubscribedActive, StateSubscribedGrace, StateSubscribedExpired},
}

// Machine applies billing-period transitions to accounts. All mutations run
// inside the store's per-account lock, serializing with quota consumes.
type Machine struct {
	store   usage.Store
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewMachine returns a Machine over the given store and plan catalog.
// Panics on nil dependencies to fail fast during initialization.
func NewMachine(store usage.Store, cat *catalog.Catalog, opts ...MachineOption) *Machine {
	if store == nil {
		panic("period: usage store is required")
	}
	if cat == nil {
		panic("period: plan catalog is required")
	}

	m := &Machine{
		store:   store,
		catalog: cat,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithClock overrides the time source, used by tests for deterministic
// transition guards.
func WithClock(now func() time.Time) MachineOption {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// guard rejects the event unless the account's derived state allows it.
func (m *Machine) guard(account *usage.Account, event string) error {
	state := StateOf(account, m.now())
	if !slices.Contains(transitions[event], state) {
		return newTransitionError(state, event)
	}
	return nil
}

// ActivateCheckout moves an account onto a paid plan after checkout
// completion. Sets the plan and the provider-reported period, resets all
// usage counters, and clears the trial window so trial arithmetic no longer
// applies.
func (m *Machine) ActivateCheckout(ctx context.Context, accountID uuid.UUID, planID string, periodStart, periodEnd time.Time, providerCustomerID, providerSubID string) (*usage.Account, error) {
	plan, err := m.catalog.Get(planID)
	if err != nil {
		return nil, errors.Join(ErrUnknownPlan, err)
	}
	if !periodEnd.After(periodStart) {
		return nil, ErrInvalidPeriod
	}

	return m.store.Update(ctx, accountID, func(account *usage.Account) error {
		if err := m.guard(account, EventCheckoutCompleted); err != nil {
			return err
		}

		now := m.now()
		account.PlanID = plan.ID
		account.Status = usage.StatusActive
		account.CancelAtPeriodEnd = false
		account.TrialEndsAt = nil
		account.CurrentPeriodStart = &periodStart
		account.CurrentPeriodEnd = &periodEnd
		account.LastPaymentDate = &now
		account.ProviderCustomerID = providerCustomerID
		account.ProviderSubID = providerSubID
		account.ResetCounters()
		return nil
	})
}

// RenewPeriod applies a successful recurring payment: advances the period to
// the provider-reported window, records the payment, and zeroes all four
// counters. This is the only place counters reset for paid accounts; webhook
// deduplication upstream guarantees it runs once per provider event.
func (m *Machine) RenewPeriod(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd, paidAt time.Time) (*usage.Account, error) {
	if !periodEnd.After(periodStart) {
		return nil, ErrInvalidPeriod
	}

	return m.store.Update(ctx, accountID, func(account *usage.Account) error {
		if account.CurrentPeriodEnd == nil {
			return ErrNotSubscribed
		}
		if err := m.guard(account, EventPaymentSucceeded); err != nil {
			return err
		}

		account.Status = usage.StatusActive
		account.CurrentPeriodStart = &periodStart
		account.CurrentPeriodEnd = &periodEnd
		account.LastPaymentDate = &paidAt
		account.ResetCounters()
		return nil
	})
}

// MarkPastDue records a failed recurring payment. Entitlement access is
// unchanged until the current period end (the grace rule).
func (m *Machine) MarkPastDue(ctx context.Context, accountID uuid.UUID) (*usage.Account, error) {
	return m.store.Update(ctx, accountID, func(account *usage.Account) error {
		if err := m.guard(account, EventPaymentFailed); err != nil {
			return err
		}
		account.Status = usage.StatusPastDue
		return nil
	})
}

// RequestCancel sets the cancel-at-period-end flag. It never revokes access:
// the plan and limits stay in force until the period ends, at which point the
// derived state becomes canceled.
func (m *Machine) RequestCancel(ctx context.Context, accountID uuid.UUID) (*usage.Account, error) {
	return m.store.Update(ctx, accountID, func(account *usage.Account) error {
		if err := m.guard(account, EventCancelRequested); err != nil {
			return err
		}
		account.CancelAtPeriodEnd = true
		return nil
	})
}

// MarkCanceled applies a provider-side cancellation event. Like
// RequestCancel it only sets the flag; the period end is still honored.
func (m *Machine) MarkCanceled(ctx context.Context, accountID uuid.UUID) (*usage.Account, error) {
	return m.store.Update(ctx, accountID, func(account *usage.Account) error {
		if err := m.guard(account, EventSubscriptionCanceled); err != nil {
			return err
		}
		account.CancelAtPeriodEnd = true
		return nil
	})
}
