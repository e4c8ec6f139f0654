package catalog

import "time"

// Unlimited indicates no limit for an allowance (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// Money represents a monetary amount in the smallest currency unit.
// For example, $9.99 USD is Amount: 999, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

// BillingInterval represents the billing frequency for a plan.
type BillingInterval string

const (
	BillingIntervalNone    BillingInterval = "none" // trial and free plans
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalAnnual  BillingInterval = "annual"
)

// QuotaDimension identifies which allowance a plan meters book creation by.
type QuotaDimension string

const (
	// DimensionBooks meters whole books per period (trial-style plans).
	DimensionBooks QuotaDimension = "books"
	// DimensionIllustrations meters individual illustrations per period (paid tiers).
	DimensionIllustrations QuotaDimension = "illustrations"
)

// Plan describes a subscription tier and its allowances and rights.
// For paid tiers the ID should be the payment provider's price ID so that
// checkout and webhook processing can map directly back to the plan.
type Plan struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       Money  `yaml:"price"`

	Interval  BillingInterval `yaml:"interval"`
	TrialDays int             `yaml:"trial_days"`

	// Exactly one of BooksPerPeriod / IllustrationsPerPeriod is authoritative.
	// The other must be zero.
	BooksPerPeriod         int64 `yaml:"books_per_period"`
	IllustrationsPerPeriod int64 `yaml:"illustrations_per_period"`

	TemplateBookSlots   int64 `yaml:"template_book_slots"`
	BonusVariationSlots int64 `yaml:"bonus_variation_slots"`
	PagesPerBook        int   `yaml:"pages_per_book"`

	CommercialRights     bool `yaml:"commercial_rights"`
	ResellRights         bool `yaml:"resell_rights"`
	AllFormattingOptions bool `yaml:"all_formatting_options"`

	// Public plans are available for self-service signup.
	Public bool `yaml:"public"`
}

// QuotaDimension reports which allowance this plan meters book creation by.
func (p Plan) QuotaDimension() QuotaDimension {
	if p.BooksPerPeriod != 0 {
		return DimensionBooks
	}
	return DimensionIllustrations
}

// PeriodQuota returns the limit along the plan's authoritative dimension.
func (p Plan) PeriodQuota() int64 {
	if p.QuotaDimension() == DimensionBooks {
		return p.BooksPerPeriod
	}
	return p.IllustrationsPerPeriod
}

// IsTrial reports whether this is a trial-style plan (book-metered, with a
// trial window and no recurring billing).
func (p Plan) IsTrial() bool {
	return p.TrialDays > 0 && p.Interval == BillingIntervalNone
}

// TrialEndsAt calculates when the trial period ends for an account that
// started this plan at startedAt. Returns startedAt unchanged if the plan has
// no trial.
func (p Plan) TrialEndsAt(startedAt time.Time) time.Time {
	if p.TrialDays <= 0 {
		return startedAt
	}
	return startedAt.AddDate(0, 0, p.TrialDays).UTC()
}
