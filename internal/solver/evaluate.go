package solver

import (
	"math"
	"sort"

	"github.com/fooddb/diet-service/internal/catalog"
)

// EvaluateRequest is an evaluate-only call: a fixed menu scored against
// the bound maps, with no optimization involved.
type EvaluateRequest struct {
	Items []MenuItem

	Lower map[string]float64
	Upper map[string]float64

	DefaultLower map[string]float64
	DefaultUpper map[string]float64
}

// Evaluate computes the achieved nutrient vector for a fixed menu. It is
// a pure dot product over the catalog's nutrient matrix: idempotent and
// bit-for-bit reproducible for identical inputs thanks to the
// deterministic nutrient ordering.
func (s *DietSolver) Evaluate(req *EvaluateRequest) *Result {
	known := make(map[string]bool)
	for _, n := range s.catalog.Nutrients() {
		known[n.Name] = true
	}
	names := make(map[string]bool, len(req.Lower)+len(req.Upper))
	for n := range req.Lower {
		names[n] = true
	}
	for n := range req.Upper {
		names[n] = true
	}
	nutrients := make([]string, 0, len(names))
	for n := range names {
		if !known[n] {
			s.logger.Warn().Str("nutrient", n).Msg("Ignoring unknown nutrient in request")
			continue
		}
		nutrients = append(nutrients, n)
	}
	sort.Strings(nutrients)

	// Repeating a food id replaces the earlier amount rather than adding
	// to it; the entry keeps its first position in the list.
	var foods []*catalog.Food
	var amounts []float64
	position := make(map[string]int, len(req.Items))
	for _, item := range req.Items {
		f, ok := s.catalog.Food(item.FoodID)
		if !ok {
			s.logger.Warn().Str("food_id", item.FoodID).Msg("Evaluate references unknown food, ignored")
			continue
		}
		if i, seen := position[item.FoodID]; seen {
			amounts[i] = item.AmountGrams / 100
			continue
		}
		position[item.FoodID] = len(foods)
		foods = append(foods, f)
		amounts = append(amounts, item.AmountGrams/100)
	}

	matrix := nutrientMatrix(nutrients, foods)
	achieved := achievedVector(matrix, amounts)

	result := &Result{}
	for i, f := range foods {
		price := 0.0
		if f.Price != nil {
			price = *f.Price
		}
		result.ShoppingList = append(result.ShoppingList, ShoppingItem{
			ID:          f.ID,
			Name:        f.Name,
			Label:       f.Label,
			AmountGrams: amounts[i] * 100,
			Price:       price,
			TotalPrice:  amounts[i] * price,
		})
		result.Totals.Cost += amounts[i] * price
		result.Totals.Mass += amounts[i] * 100
	}

	for j, n := range nutrients {
		target := req.Lower[n]
		upper := math.Inf(1)
		if u, ok := req.Upper[n]; ok && !math.IsNaN(u) {
			upper = u
		}
		report := NutrientReport{
			Nutrient:      n,
			Target:        target,
			Max:           upper,
			Achieved:      achieved[j],
			Violation:     math.Max(0, achieved[j]-upper),
			TargetDefault: req.DefaultLower[n],
			Unit:          s.catalog.Unit(n),
		}
		if d, ok := req.DefaultUpper[n]; ok {
			v := d
			report.MaxDefault = &v
		}
		if target > 0 {
			report.Percent = achieved[j] / target * 100
		}
		result.Nutrients = append(result.Nutrients, report)

		if n == s.config.CalorieNutrient {
			result.Totals.Calories = achieved[j]
		}

		contributions := make(map[string]float64, len(foods))
		for i, f := range foods {
			contributions[f.ID] = f.Nutrients[n] * amounts[i]
		}
		result.Breakdown = append(result.Breakdown, Breakdown{Nutrient: n, Contributions: contributions})
	}

	return result
}
