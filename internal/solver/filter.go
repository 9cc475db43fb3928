package solver

import (
	"github.com/fooddb/diet-service/internal/catalog"
)

// workingSet returns the foods eligible for this request, in catalog
// order so variable indexing is reproducible.
//
// A food is excluded when it is banned (explicit max ≤ ε constraint, or a
// non-nil banned reason) or fails a categorical filter. Forced stack
// entries bypass every filter and ban. Foods with unknown price are only
// excluded when the price weight actually matters to the objective.
func (s *DietSolver) workingSet(req *Request) []*catalog.Food {
	forced := make(map[string]bool, len(req.Stack))
	for _, e := range req.Stack {
		forced[e.FoodID] = true
	}

	allowedSupplement := make(map[string]bool, len(s.config.SupplementAllowlist))
	for _, id := range s.config.SupplementAllowlist {
		allowedSupplement[id] = true
	}

	priceMatters := req.WeightPrice > s.config.BanEpsilon

	var working []*catalog.Food
	for _, f := range s.catalog.Foods() {
		if forced[f.ID] {
			working = append(working, f)
			continue
		}

		if f.BannedReason != nil {
			continue
		}
		if c, ok := req.FoodConstraints[f.ID]; ok && c.Max != nil && *c.Max <= s.config.BanEpsilon {
			continue
		}

		if req.ShelfStableOnly && !f.ShelfStable {
			continue
		}
		if req.BanFrozen && f.Frozen {
			continue
		}
		switch req.SupplementsMode {
		case SupplementsNone:
			if f.Supplement {
				continue
			}
		case SupplementsVitCD:
			if f.Supplement && !allowedSupplement[f.ID] {
				continue
			}
		}
		if priceMatters && f.Price == nil {
			continue
		}

		working = append(working, f)
	}
	return working
}
