package period_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fablepress/fablepress/billing/period"
	"github.com/fablepress/fablepress/billing/usage"
)

func TestStateOf(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	periodStart := now.AddDate(0, -1, 0)

	tests := []struct {
		name    string
		account usage.Account
		want    period.State
	}{
		{
			name:    "trial still running",
			account: usage.Account{Status: usage.StatusActive, TrialEndsAt: &future},
			want:    period.StateTrialActive,
		},
		{
			name:    "trial lapsed",
			account: usage.Account{Status: usage.StatusActive, TrialEndsAt: &past},
			want:    period.StateTrialExpired,
		},
		{
			name:    "trial ends exactly now",
			account: usage.Account{Status: usage.StatusActive, TrialEndsAt: &now},
			want:    period.StateTrialExpired,
		},
		{
			name: "paid period running",
			account: usage.Account{
				Status:             usage.StatusActive,
				CurrentPeriodStart: &periodStart,
				CurrentPeriodEnd:   &future,
			},
			want: period.StateSubscribedActive,
		},
		{
			name: "past due inside the period keeps grace",
			account: usage.Account{
				Status:             usage.StatusPastDue,
				CurrentPeriodStart: &periodStart,
				CurrentPeriodEnd:   &future,
			},
			want: period.StateSubscribedGrace,
		},
		{
			name: "past due after period end expires",
			account: usage.Account{
				Status:             usage.StatusPastDue,
				CurrentPeriodStart: &periodStart,
				CurrentPeriodEnd:   &past,
			},
			want: period.StateSubscribedExpired,
		},
		{
			name: "active status survives a lapsed period",
			account: usage.Account{
				Status:             usage.StatusActive,
				CurrentPeriodStart: &periodStart,
				CurrentPeriodEnd:   &past,
			},
			want: period.StateSubscribedActive,
		},
		{
			name: "cancel flag takes effect when the period ends",
			account: usage.Account{
				Status:             usage.StatusActive,
				CancelAtPeriodEnd:  true,
				CurrentPeriodStart: &periodStart,
				CurrentPeriodEnd:   &past,
			},
			want: period.StateCanceled,
		},
		{
			name: "cancel flag alone changes nothing mid-period",
			account: usage.Account{
				Status:             usage.StatusActive,
				CancelAtPeriodEnd:  true,
				CurrentPeriodStart: &periodStart,
				CurrentPeriodEnd:   &future,
			},
			want: period.StateSubscribedActive,
		},
		{
			name:    "canceled status wins over everything",
			account: usage.Account{Status: usage.StatusCanceled, TrialEndsAt: &future},
			want:    period.StateCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.account.ID = uuid.New()
			assert.Equal(t, tt.want, period.StateOf(&tt.account, now))
		})
	}
}

func TestState_HasAccess(t *testing.T) {
	t.Parallel()

	granted := map[period.State]bool{
		period.StateTrialActive:       true,
		period.StateTrialExpired:      false,
		period.StateSubscribedActive:  true,
		period.StateSubscribedGrace:   true,
		period.StateSubscribedExpired: false,
		period.StateCanceled:          false,
	}
	for state, want := range granted {
		assert.Equal(t, want, state.HasAccess(), "state %s", state)
	}
}
