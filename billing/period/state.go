package period

import (
	"time"

	"github.com/fablepress/fablepress/billing/usage"
)

// State is the derived billing-period state of an account.
type State string

const (
	StateTrialActive       State = "trial_active"
	StateTrialExpired      State = "trial_expired"
	StateSubscribedActive  State = "subscribed_active"
	StateSubscribedGrace   State = "subscribed_grace" // past_due but before period end
	StateSubscribedExpired State = "subscribed_expired"
	StateCanceled          State = "canceled"
)

// StateOf derives the billing-period state of an account at the given time.
//
// Trial accounts (no paid period yet) expire purely by the trial clock. Paid
// accounts in past_due keep the grace state until period end; only once the
// period has ended with a status other than active does the account expire.
// A fulfilled cancel-at-period-end reverts the account to canceled.
func StateOf(account *usage.Account, now time.Time) State {
	if account.Status == usage.StatusCanceled {
		return StateCanceled
	}

	// No paid period yet: the trial clock is the only authority.
	if account.CurrentPeriodEnd == nil {
		if account.IsTrialExpired(now) {
			return StateTrialExpired
		}
		return StateTrialActive
	}

	if account.PeriodEnded(now) {
		if account.CancelAtPeriodEnd {
			return StateCanceled
		}
		// Grace rule: an active status keeps the account alive even past
		// period end (the renewal webhook may simply not have landed yet).
		if account.Status == usage.StatusActive {
			return StateSubscribedActive
		}
		return StateSubscribedExpired
	}

	if account.Status == usage.StatusPastDue {
		return StateSubscribedGrace
	}
	return StateSubscribedActive
}

// HasAccess reports whether a state grants full product access.
// Grace keeps access; expired, canceled, and lapsed trials do not.
func (s State) HasAccess() bool {
	switch s {
	case StateTrialActive, StateSubscribedActive, StateSubscribedGrace:
		return true
	}
	return false
}

// Subscribed reports whether the state belongs to a paid subscription.
func (s State) Subscribed() bool {
	switch s {
	case StateSubscribedActive, StateSubscribedGrace, StateSubscribedExpired:
		return true
	}
	return false
}
