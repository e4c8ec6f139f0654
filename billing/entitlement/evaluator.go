package entitlement

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/fablepress/fablepress/billing/catalog"
	"github.com/fablepress/fablepress/billing/period"
	"github.com/fablepress/fablepress/billing/usage"
)

// Snapshot is the computed set of entitlements for an account at one point
// in time. The UI renders it directly; the consume handlers gate on it.
type Snapshot struct {
	AccountID uuid.UUID    `json:"account_id"`
	PlanID    string       `json:"plan_id"`
	State     period.State `json:"state"`

	// HasAccess is the grace-period access rule: true while the trial or the
	// current paid period is still running, regardless of a past_due status.
	HasAccess bool `json:"has_access"`

	CanCreateNewBook      bool `json:"can_create_new_book"`
	CanUseTemplateBooks   bool `json:"can_use_template_books"`
	CanUseBonusVariations bool `json:"can_use_bonus_variations"`

	// Remaining counts are clamped at zero; -1 means unlimited.
	BooksRemaining           int64 `json:"books_remaining"`
	IllustrationsRemaining   int64 `json:"illustrations_remaining"`
	TemplateBooksRemaining   int64 `json:"template_books_remaining"`
	BonusVariationsRemaining int64 `json:"bonus_variations_remaining"`

	// DaysLeftInTrial is omitted entirely once the account has upgraded.
	DaysLeftInTrial *int `json:"days_left_in_trial,omitempty"`

	StatusText string `json:"status_text"`

	CommercialRights     bool `json:"commercial_rights"`
	ResellRights         bool `json:"resell_rights"`
	AllFormattingOptions bool `json:"all_formatting_options"`
	PagesPerBook         int  `json:"pages_per_book"`
}

// Evaluate derives the entitlement snapshot for an account on a plan at the
// given time. Pure: no storage reads, no mutation.
func Evaluate(account *usage.Account, plan catalog.Plan, now time.Time) Snapshot {
	state := period.StateOf(account, now)
	hasAccess := state.HasAccess()

	snap := Snapshot{
		AccountID: account.ID,
		PlanID:    plan.ID,
		State:     state,
		HasAccess: hasAccess,

		BooksRemaining:           clampRemaining(account.BooksUsed, plan.BooksPerPeriod),
		IllustrationsRemaining:   clampRemaining(account.IllustrationsUsed, plan.IllustrationsPerPeriod),
		TemplateBooksRemaining:   clampRemaining(account.TemplateBooksUsed, plan.TemplateBookSlots),
		BonusVariationsRemaining: clampRemaining(account.BonusVariationsUsed, plan.BonusVariationSlots),

		StatusText: statusText(state, account),

		CommercialRights:     plan.CommercialRights,
		ResellRights:         plan.ResellRights,
		AllFormattingOptions: plan.AllFormattingOptions,
		PagesPerBook:         plan.PagesPerBook,
	}

	// Book creation follows the plan's authoritative quota dimension.
	switch plan.QuotaDimension() {
	case catalog.DimensionBooks:
		snap.CanCreateNewBook = hasAccess && hasRoom(snap.BooksRemaining)
	case catalog.DimensionIllustrations:
		// Callers budget pagesRequested x illustrationsPerPage against
		// IllustrationsRemaining before committing to a page count.
		snap.CanCreateNewBook = hasAccess && hasRoom(snap.IllustrationsRemaining)
	}

	// Template and bonus slots honor the same access rule as book creation.
	snap.CanUseTemplateBooks = hasAccess && plan.TemplateBookSlots != 0 && hasRoom(snap.TemplateBooksRemaining)
	snap.CanUseBonusVariations = hasAccess && plan.BonusVariationSlots != 0 && hasRoom(snap.BonusVariationsRemaining)

	// Trial arithmetic only applies before the first paid period.
	if account.TrialEndsAt != nil && account.CurrentPeriodEnd == nil {
		days := daysLeft(*account.TrialEndsAt, now)
		snap.DaysLeftInTrial = &days
	}

	return snap
}

// LimitFor returns the plan limit governing the given counter.
func LimitFor(plan catalog.Plan, counter usage.Counter) int64 {
	switch counter {
	case usage.CounterBooks:
		return plan.BooksPerPeriod
	case usage.CounterIllustrations:
		return plan.IllustrationsPerPeriod
	case usage.CounterTemplateBooks:
		return plan.TemplateBookSlots
	case usage.CounterBonusVariations:
		return plan.BonusVariationSlots
	}
	return 0
}

// clampRemaining returns limit - used clamped at zero, or -1 for unlimited.
// A plan limit lowered by an admin below accumulated usage reads as zero
// remaining, never negative and never an error.
func clampRemaining(used, limit int64) int64 {
	if limit == catalog.Unlimited {
		return catalog.Unlimited
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

func hasRoom(remaining int64) bool {
	return remaining > 0 || remaining == catalog.Unlimited
}

// daysLeft rounds the remaining trial window up to whole days, so a trial
// with 1 day and 22 hours left reads as 2 days.
func daysLeft(trialEndsAt, now time.Time) int {
	remaining := trialEndsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

func statusText(state period.State, account *usage.Account) string {
	switch state {
	case period.StateTrialActive:
		return "trial"
	case period.StateTrialExpired:
		return "trial expired"
	case period.StateSubscribedActive:
		if account.CancelAtPeriodEnd {
			return "canceling at period end"
		}
		return "active"
	case period.StateSubscribedGrace:
		return "payment failed, grace period"
	case period.StateSubscribedExpired:
		return "expired"
	case period.StateCanceled:
		return "canceled"
	}
	return string(state)
}
