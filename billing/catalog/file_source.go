package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSource loads plans from a YAML file so operators can edit tiers
// without a rebuild. The file is read once per Load call; the catalog
// itself loads at startup and at period-rollover reload points.
type fileSource struct {
	path string
}

// NewFileSource returns a Source reading plans from the YAML file at path.
//
// Expected format:
//
//	plans:
//	  - id: trial
//	    name: Free Trial
//	    trial_days: 7
//	    books_per_period: 1
//	    ...
func NewFileSource(path string) Source {
	if path == "" {
		panic("catalog: file source path is required")
	}
	return &fileSource{path: path}
}

func (s *fileSource) Load(ctx context.Context) (map[string]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	if len(doc.Plans) == 0 {
		return nil, errors.Join(ErrFailedToLoadPlans,
			fmt.Errorf("no plans defined in %s", s.path))
	}

	plans := make(map[string]Plan, len(doc.Plans))
	for _, plan := range doc.Plans {
		if _, exists := plans[plan.ID]; exists {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("duplicate plan ID %q in %s", plan.ID, s.path))
		}
		plans[plan.ID] = plan
	}
	return plans, nil
}
