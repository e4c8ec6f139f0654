package entitlement_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablepress/fablepress/billing/catalog"
	"github.com/fablepress/fablepress/billing/entitlement"
	"github.com/fablepress/fablepress/billing/period"
	"github.com/fablepress/fablepress/billing/usage"
)

func planByID(t *testing.T, id string) catalog.Plan {
	t.Helper()
	for _, plan := range catalog.DefaultPlans() {
		if plan.ID == id {
			return plan
		}
	}
	t.Fatalf("no default plan %q", id)
	return catalog.Plan{}
}

func TestEvaluate_Trial(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	trialPlan := planByID(t, catalog.PlanTrial)

	t.Run("fresh trial", func(t *testing.T) {
		t.Parallel()

		account := usage.NewTrialAccount(uuid.New(), trialPlan.ID, trialPlan.TrialDays, now)
		snap := entitlement.Evaluate(account, trialPlan, now)

		assert.Equal(t, period.StateTrialActive, snap.State)
		assert.True(t, snap.HasAccess)
		assert.True(t, snap.CanCreateNewBook)
		assert.False(t, snap.CanUseTemplateBooks, "trial plan has no template slots")
		assert.False(t, snap.CanUseBonusVariations)
		assert.Equal(t, int64(1), snap.BooksRemaining)
		require.NotNil(t, snap.DaysLeftInTrial)
		assert.Equal(t, 7, *snap.DaysLeftInTrial)
		assert.Equal(t, "trial", snap.StatusText)
	})

	t.Run("days left round up", func(t *testing.T) {
		t.Parallel()

		// Started 5 days 2 hours ago: 1d22h remain, displayed as 2 days.
		started := now.Add(-(5*24 + 2) * time.Hour)
		account := usage.NewTrialAccount(uuid.New(), trialPlan.ID, trialPlan.TrialDays, started)
		snap := entitlement.Evaluate(account, trialPlan, now)

		require.NotNil(t, snap.DaysLeftInTrial)
		assert.Equal(t, 2, *snap.DaysLeftInTrial)
	})

	t.Run("trial book spent", func(t *testing.T) {
		t.Parallel()

		account := usage.NewTrialAccount(uuid.New(), trialPlan.ID, trialPlan.TrialDays, now)
		account.BooksUsed = 1
		snap := entitlement.Evaluate(account, trialPlan, now)

		assert.True(t, snap.HasAccess, "access persists, creation does not")
		assert.False(t, snap.CanCreateNewBook)
		assert.Zero(t, snap.BooksRemaining)
	})

	t.Run("trial expired", func(t *testing.T) {
		t.Parallel()

		account := usage.NewTrialAccount(uuid.New(), trialPlan.ID, trialPlan.TrialDays, now.AddDate(0, 0, -8))
		snap := entitlement.Evaluate(account, trialPlan, now)

		assert.Equal(t, period.StateTrialExpired, snap.State)
		assert.False(t, snap.HasAccess)
		assert.False(t, snap.CanCreateNewBook)
		require.NotNil(t, snap.DaysLeftInTrial)
		assert.Zero(t, *snap.DaysLeftInTrial)
		assert.Equal(t, "trial expired", snap.StatusText)
	})
}

func TestEvaluate_PlanSwitch(t *testing.T) {
	t.Parallel()

	// Upgrading trial -> hobbyist hands over the full illustration allowance
	// immediately; book-metering no longer applies.
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	hobbyist := planByID(t, "hobbyist")

	periodStart := now
	periodEnd := now.AddDate(0, 1, 0)
	account := &usage.Account{
		ID:                 uuid.New(),
		PlanID:             hobbyist.ID,
		Status:             usage.StatusActive,
		CurrentPeriodStart: &periodStart,
		CurrentPeriodEnd:   &periodEnd,
		BooksUsed:          0, // reset on activation
	}

	snap := entitlement.Evaluate(account, hobbyist, now.Add(time.Minute))

	assert.Equal(t, period.StateSubscribedActive, snap.State)
	assert.True(t, snap.CanCreateNewBook)
	assert.Equal(t, int64(144), snap.IllustrationsRemaining)
	assert.Equal(t, int64(2), snap.TemplateBooksRemaining)
	assert.True(t, snap.CanUseTemplateBooks)
	assert.Nil(t, snap.DaysLeftInTrial, "trial arithmetic stops after upgrade")
	assert.Equal(t, "active", snap.StatusText)
	assert.Equal(t, 24, snap.PagesPerBook)
}

func TestEvaluate_GraceBoundary(t *testing.T) {
	t.Parallel()

	hobbyist := planByID(t, "hobbyist")
	periodStart := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	pastDue := &usage.Account{
		ID:                 uuid.New(),
		PlanID:             hobbyist.ID,
		Status:             usage.StatusPastDue,
		CurrentPeriodStart: &periodStart,
		CurrentPeriodEnd:   &periodEnd,
	}

	t.Run("one second before period end", func(t *testing.T) {
		t.Parallel()

		snap := entitlement.Evaluate(pastDue, hobbyist, periodEnd.Add(-time.Second))
		assert.Equal(t, period.StateSubscribedGrace, snap.State)
		assert.True(t, snap.HasAccess)
		assert.True(t, snap.CanCreateNewBook)
		assert.Equal(t, "payment failed, grace period", snap.StatusText)
	})

	t.Run("exactly at period end", func(t *testing.T) {
		t.Parallel()

		snap := entitlement.Evaluate(pastDue, hobbyist, periodEnd)
		assert.Equal(t, period.StateSubscribedExpired, snap.State)
		assert.False(t, snap.HasAccess)
		assert.False(t, snap.CanCreateNewBook)
		assert.False(t, snap.CanUseTemplateBooks)
		assert.Equal(t, "expired", snap.StatusText)
	})
}

func TestEvaluate_Clamping(t *testing.T) {
	t.Parallel()

	// An admin lowering a plan limit below accumulated usage must read as
	// zero remaining, never negative.
	hobbyist := planByID(t, "hobbyist")
	periodStart := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	account := &usage.Account{
		ID:                 uuid.New(),
		PlanID:             hobbyist.ID,
		Status:             usage.StatusActive,
		CurrentPeriodStart: &periodStart,
		CurrentPeriodEnd:   &periodEnd,
		IllustrationsUsed:  500,
	}

	snap := entitlement.Evaluate(account, hobbyist, periodStart.Add(time.Hour))
	assert.Zero(t, snap.IllustrationsRemaining)
	assert.False(t, snap.CanCreateNewBook)
}

func TestEvaluate_UnlimitedSlots(t *testing.T) {
	t.Parallel()

	reseller := planByID(t, "reseller")
	periodStart := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	account := &usage.Account{
		ID:                 uuid.New(),
		PlanID:             reseller.ID,
		Status:             usage.StatusActive,
		CurrentPeriodStart: &periodStart,
		CurrentPeriodEnd:   &periodEnd,
		TemplateBooksUsed:  10000,
	}

	snap := entitlement.Evaluate(account, reseller, periodStart.Add(time.Hour))
	assert.Equal(t, catalog.Unlimited, snap.TemplateBooksRemaining)
	assert.True(t, snap.CanUseTemplateBooks)
	assert.True(t, snap.ResellRights)
	assert.True(t, snap.CommercialRights)
}

func TestEvaluate_CancelingStatusText(t *testing.T) {
	t.Parallel()

	hobbyist := planByID(t, "hobbyist")
	periodStart := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	account := &usage.Account{
		ID:                 uuid.New(),
		PlanID:             hobbyist.ID,
		Status:             usage.StatusActive,
		CancelAtPeriodEnd:  true,
		CurrentPeriodStart: &periodStart,
		CurrentPeriodEnd:   &periodEnd,
	}

	snap := entitlement.Evaluate(account, hobbyist, periodStart.Add(time.Hour))
	assert.True(t, snap.HasAccess, "entitlements unchanged until period end")
	assert.Equal(t, "canceling at period end", snap.StatusText)
}

func TestLimitFor(t *testing.T) {
	t.Parallel()

	hobbyist := planByID(t, "hobbyist")
	assert.Equal(t, int64(0), entitlement.LimitFor(hobbyist, usage.CounterBooks))
	assert.Equal(t, int64(144), entitlement.LimitFor(hobbyist, usage.CounterIllustrations))
	assert.Equal(t, int64(2), entitlement.LimitFor(hobbyist, usage.CounterTemplateBooks))
	assert.Equal(t, int64(10), entitlement.LimitFor(hobbyist, usage.CounterBonusVariations))
}
