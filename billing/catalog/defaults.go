package catalog

// PlanTrial is the plan every new account starts on.
const PlanTrial = "trial"

// DefaultPlans returns the built-in FablePress tiers. Deployments normally
// override these with a YAML file carrying the provider price IDs.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:                  PlanTrial,
			Name:                "Free Trial",
			Description:         "Seven days to create your first book",
			Interval:            BillingIntervalNone,
			TrialDays:           7,
			BooksPerPeriod:      1,
			TemplateBookSlots:   0,
			BonusVariationSlots: 0,
			PagesPerBook:        10,
			Public:              true,
		},
		{
			ID:                     "hobbyist",
			Name:                   "Hobbyist",
			Description:            "For families making books together",
			Price:                  Money{Amount: 1499, Currency: "USD"},
			Interval:               BillingIntervalMonthly,
			IllustrationsPerPeriod: 144,
			TemplateBookSlots:      2,
			BonusVariationSlots:    10,
			PagesPerBook:           24,
			Public:                 true,
		},
		{
			ID:                     "pro",
			Name:                   "Pro",
			Description:            "For authors publishing their own titles",
			Price:                  Money{Amount: 3999, Currency: "USD"},
			Interval:               BillingIntervalMonthly,
			IllustrationsPerPeriod: 480,
			TemplateBookSlots:      10,
			BonusVariationSlots:    40,
			PagesPerBook:           32,
			CommercialRights:       true,
			AllFormattingOptions:   true,
			Public:                 true,
		},
		{
			ID:                     "reseller",
			Name:                   "Reseller",
			Description:            "For studios selling books to clients",
			Price:                  Money{Amount: 9999, Currency: "USD"},
			Interval:               BillingIntervalMonthly,
			IllustrationsPerPeriod: 1440,
			TemplateBookSlots:      Unlimited,
			BonusVariationSlots:    120,
			PagesPerBook:           40,
			CommercialRights:       true,
			ResellRights:           true,
			AllFormattingOptions:   true,
			Public:                 true,
		},
	}
}
