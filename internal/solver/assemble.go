package solver

import (
	"math"

	"github.com/fooddb/diet-service/internal/catalog"
)

// assemble builds the full program for one request: objective vector,
// constraint rows, variable bounds and the integrality mask.
func (s *DietSolver) assemble(req *Request, foods []*catalog.Food, nutrients []string, matrix [][]float64) (*Program, *assembly) {
	lay := newLayout(len(foods), len(nutrients), req.Mode)

	lowerVec := make([]float64, len(nutrients))
	upperVec := make([]float64, len(nutrients))
	for j, n := range nutrients {
		lowerVec[j] = req.Lower[n] // missing key yields the 0 default
		if u, ok := req.Upper[n]; ok {
			upperVec[j] = u
		} else {
			upperVec[j] = math.Inf(1)
		}
	}

	a := &assembly{layout: lay, matrix: matrix, lower: lowerVec, upper: upperVec}

	prog := &Program{
		Objective: make([]float64, lay.total()),
		VarLower:  make([]float64, lay.total()),
		VarUpper:  make([]float64, lay.total()),
		Integer:   make([]bool, lay.total()),
	}

	// Objective: per-food marginal cost plus the tie-break epsilon, a
	// fixed cost per selected food in accurate mode, and the soft penalty
	// on every slack unit.
	for i, f := range foods {
		price := 0.0
		if f.Price != nil {
			price = *f.Price
		}
		cals := f.Nutrients[s.config.CalorieNutrient]
		prog.Objective[lay.amount(i)] = req.WeightMass + req.WeightPrice*price +
			req.WeightCalories*cals + s.config.TieBreakEpsilon
		if req.Mode == ModeAccurate {
			prog.Objective[lay.selected(i)] = s.config.SelectionCost
		}
	}
	for j := range nutrients {
		prog.Objective[lay.slack(j)] = req.SoftPenalty
	}

	// Variable bounds. Amounts default to [0, DefaultFoodMax]; explicit
	// food constraints override, forced stack entries raise the lower
	// bound and win over any ban.
	index := make(map[string]int, len(foods))
	for i, f := range foods {
		index[f.ID] = i
		prog.VarLower[lay.amount(i)] = 0
		prog.VarUpper[lay.amount(i)] = s.config.DefaultFoodMax
	}
	for j := range nutrients {
		prog.VarLower[lay.slack(j)] = 0
		prog.VarUpper[lay.slack(j)] = math.Inf(1)
	}

	// linkM is the per-food selection-link constant: the food's explicit
	// upper bound when one is set, the configured default otherwise.
	linkM := make([]float64, len(foods))
	for i := range foods {
		linkM[i] = s.config.BigM
	}

	for id, c := range req.FoodConstraints {
		i, ok := index[id]
		if !ok {
			// Bans did their work in the eligibility filter; anything
			// else references a food outside the working set.
			if c.Max == nil || *c.Max > s.config.BanEpsilon {
				s.logger.Warn().Str("food_id", id).Msg("Food constraint references unavailable food, ignored")
			}
			continue
		}
		prog.VarLower[lay.amount(i)] = c.Min
		if c.Max != nil {
			prog.VarUpper[lay.amount(i)] = *c.Max
			linkM[i] = *c.Max
		}
	}

	stacked := make(map[int]bool, len(req.Stack))
	for _, e := range req.Stack {
		i, ok := index[e.FoodID]
		if !ok {
			s.logger.Warn().Str("food_id", e.FoodID).Msg("Stack entry references unknown food, ignored")
			continue
		}
		stacked[i] = true
		amountIdx := lay.amount(i)
		if e.Amount > prog.VarLower[amountIdx] {
			prog.VarLower[amountIdx] = e.Amount
		}
		// Forced entries override explicit maxima below the forced amount.
		if prog.VarUpper[amountIdx] < prog.VarLower[amountIdx] {
			prog.VarUpper[amountIdx] = prog.VarLower[amountIdx]
		}
		if linkM[i] < prog.VarLower[amountIdx] {
			linkM[i] = prog.VarLower[amountIdx]
		}
	}

	if req.Mode == ModeAccurate {
		for i := range foods {
			sel := lay.selected(i)
			prog.Integer[sel] = true
			prog.VarLower[sel] = 0
			prog.VarUpper[sel] = 1
			if prog.VarLower[lay.amount(i)] > 0 {
				prog.VarLower[sel] = 1
			}
			if prog.VarUpper[lay.amount(i)] <= s.config.BanEpsilon {
				prog.VarUpper[sel] = 0
				prog.VarLower[sel] = 0
			}
			// Stack membership pins the indicator even at amount zero,
			// and wins over a ban on the same food.
			if stacked[i] {
				prog.VarLower[sel] = 1
				prog.VarUpper[sel] = 1
			}
		}
	}

	// Constraint rows.
	var constraints []Constraint
	for j := range nutrients {
		constraints = append(constraints, LowerBound{Nutrient: j}, UpperBoundWithSlack{Nutrient: j})
	}

	nutIndex := make(map[string]int, len(nutrients))
	for j, n := range nutrients {
		nutIndex[n] = j
	}
	for _, r := range req.Ratios {
		num, okN := nutIndex[r.Num]
		den, okD := nutIndex[r.Den]
		if !okN || !okD {
			s.logger.Warn().Str("num", r.Num).Str("den", r.Den).Msg("Ratio constraint references unknown nutrient, ignored")
			continue
		}
		constraints = append(constraints, Ratio{Num: num, Den: den, Op: r.Op, Value: r.Ratio})
	}

	if req.Mode == ModeAccurate {
		for i := range foods {
			constraints = append(constraints, SelectionLink{Food: i, M: linkM[i]})
		}
		constraints = append(constraints, CardinalityCap{Limit: req.MaxFoods})
	}

	prog.Rows = make([]Row, len(constraints))
	for k, c := range constraints {
		prog.Rows[k] = c.Row(a)
	}
	return prog, a
}
