package catalog

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Source defines how plans are loaded into the catalog.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// Catalog is a validated, read-only view of the configured plans.
type Catalog struct {
	plans map[string]Plan
}

// New loads plans from the given source and validates them.
// Panics if src is nil to fail fast during initialization.
func New(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("catalog: Source is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	return &Catalog{plans: plans}, nil
}

// Get returns the plan with the given ID.
// Returns ErrPlanNotFound for unknown IDs.
func (c *Catalog) Get(planID string) (Plan, error) {
	plan, exists := c.plans[planID]
	if !exists {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

// Has reports whether a plan ID is known to the catalog.
func (c *Catalog) Has(planID string) bool {
	_, exists := c.plans[planID]
	return exists
}

// All returns a copy of all plans, sorted by ID for stable iteration.
func (c *Catalog) All() []Plan {
	ids := slices.Sorted(maps.Keys(c.plans))
	plans := make([]Plan, 0, len(ids))
	for _, id := range ids {
		plans = append(plans, c.plans[id])
	}
	return plans
}

// validatePlans ensures plan configurations are internally consistent.
// Catches operator mistakes early rather than at first consume.
func validatePlans(plans map[string]Plan) error {
	for planID, plan := range plans {
		if plan.ID != planID {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", planID, plan.ID))
		}

		if plan.TrialDays < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative trial days: %d", planID, plan.TrialDays))
		}

		// Exactly one quota dimension must be authoritative.
		booksSet := plan.BooksPerPeriod != 0
		illustrationsSet := plan.IllustrationsPerPeriod != 0
		if booksSet == illustrationsSet {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s must meter exactly one of books or illustrations", planID))
		}

		for name, limit := range map[string]int64{
			"books_per_period":         plan.BooksPerPeriod,
			"illustrations_per_period": plan.IllustrationsPerPeriod,
			"template_book_slots":      plan.TemplateBookSlots,
			"bonus_variation_slots":    plan.BonusVariationSlots,
		} {
			if limit < Unlimited {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s has invalid %s: %d", planID, name, limit))
			}
		}

		if plan.PagesPerBook < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative pages per book: %d", planID, plan.PagesPerBook))
		}
	}
	return nil
}
