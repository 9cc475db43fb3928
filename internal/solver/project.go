package solver

import (
	"sort"

	"github.com/fooddb/diet-service/internal/catalog"
)

// project maps a raw solution vector back into a shopping list, a
// nutrient achievement report and totals. Achieved amounts are recomputed
// from the nutrient matrix rather than read from the slack variables, for
// exactness.
func (s *DietSolver) project(req *Request, foods []*catalog.Food, nutrients []string, a *assembly, sol *Solution) *Result {
	lay := a.layout

	amounts := make([]float64, len(foods))
	for i := range foods {
		amounts[i] = sol.Values[lay.amount(i)]
	}
	slack := make([]float64, len(nutrients))
	for j := range nutrients {
		slack[j] = sol.Values[lay.slack(j)]
	}

	achieved := achievedVector(a.matrix, amounts)

	type pick struct {
		food   *catalog.Food
		amount float64
	}
	var picks []pick
	for i, f := range foods {
		if amounts[i] > s.config.AmountThreshold {
			picks = append(picks, pick{food: f, amount: amounts[i]})
		}
	}
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].amount != picks[j].amount {
			return picks[i].amount > picks[j].amount
		}
		return picks[i].food.ID < picks[j].food.ID
	})

	result := &Result{Mode: req.Mode}
	for _, p := range picks {
		price := 0.0
		if p.food.Price != nil {
			price = *p.food.Price
		}
		result.ShoppingList = append(result.ShoppingList, ShoppingItem{
			ID:          p.food.ID,
			Name:        p.food.Name,
			Label:       p.food.Label,
			AmountGrams: p.amount * 100,
			Price:       price,
			TotalPrice:  p.amount * price,
		})
		result.Totals.Cost += p.amount * price
		result.Totals.Mass += p.amount * 100
	}

	for j, n := range nutrients {
		report := NutrientReport{
			Nutrient:      n,
			Target:        a.lower[j],
			Max:           a.upper[j],
			Achieved:      achieved[j],
			Violation:     slack[j],
			TargetDefault: req.DefaultLower[n],
			Unit:          s.catalog.Unit(n),
		}
		if d, ok := req.DefaultUpper[n]; ok {
			v := d
			report.MaxDefault = &v
		}
		if report.Target > 0 {
			report.Percent = report.Achieved / report.Target * 100
		}
		result.Nutrients = append(result.Nutrients, report)

		if n == s.config.CalorieNutrient {
			result.Totals.Calories = achieved[j]
		}

		contributions := make(map[string]float64, len(picks))
		for _, p := range picks {
			contributions[p.food.ID] = p.food.Nutrients[n] * p.amount
		}
		result.Breakdown = append(result.Breakdown, Breakdown{Nutrient: n, Contributions: contributions})
	}

	return result
}
