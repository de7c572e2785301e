package units

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContributionSet is a batch of units and quantity kinds added at runtime by
// catalog-contribution tooling.
type ContributionSet struct {
	Units         []UnitDefinition
	QuantityKinds []QuantityKindDefinition
}

// Receipt identifies an applied contribution.
type Receipt struct {
	ID              uuid.UUID
	AppliedAt       time.Time
	UnitIDs         []string
	QuantityKindIDs []string
}

// Append connects the contribution against the current generation and
// publishes the result. It is all-or-nothing: on error the catalog and its
// label indexes are unchanged. Readers holding an earlier generation keep a
// consistent view.
func (c *Catalog) Append(set ContributionSet) (Receipt, error) {
	if len(set.Units) == 0 && len(set.QuantityKinds) == 0 {
		return Receipt{}, &ArgumentError{Arg: "contribution", Reason: "empty"}
	}
	defs := definitionSet{units: set.Units, kinds: set.QuantityKinds}
	seen := make(map[string]bool)
	rec := Receipt{ID: uuid.New()}
	for _, d := range set.Units {
		if seen[d.ID] {
			return Receipt{}, &ArgumentError{Arg: "unit id", Reason: fmt.Sprintf("%q appears twice in contribution", d.ID)}
		}
		seen[d.ID] = true
		rec.UnitIDs = append(rec.UnitIDs, d.ID)
	}
	for _, d := range set.QuantityKinds {
		if seen[d.ID] {
			return Receipt{}, &ArgumentError{Arg: "quantity kind id", Reason: fmt.Sprintf("%q appears twice in contribution", d.ID)}
		}
		seen[d.ID] = true
		rec.QuantityKindIDs = append(rec.QuantityKindIDs, d.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := connect(c.g, defs, c.opts)
	if err != nil {
		return Receipt{}, fmt.Errorf("contribution %s: %w", rec.ID, err)
	}
	c.g = g
	rec.AppliedAt = time.Now()
	c.metrics.catalogSize(len(g.units))
	logrus.Infof("contribution %s applied: %d units, %d quantity kinds", rec.ID, len(rec.UnitIDs), len(rec.QuantityKindIDs))
	return rec, nil
}
