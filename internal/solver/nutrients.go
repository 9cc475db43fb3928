package solver

import (
	"sort"

	"github.com/fooddb/diet-service/internal/catalog"
)

// activeNutrients resolves the deterministic set of nutrients that
// participate in this request: the union of the bound-map keys and every
// nutrient referenced by a ratio constraint, restricted to the nutrients
// the catalog actually tracks, deduplicated and sorted lexicographically.
// A name the catalog has no column for would produce an all-zero
// constraint row, so unknown names are dropped with a warning instead.
func (s *DietSolver) activeNutrients(req *Request) []string {
	known := make(map[string]bool)
	for _, n := range s.catalog.Nutrients() {
		known[n.Name] = true
	}

	seen := make(map[string]bool)
	dropped := make(map[string]bool)
	add := func(name string) {
		if !known[name] {
			if !dropped[name] {
				dropped[name] = true
				s.logger.Warn().Str("nutrient", name).Msg("Ignoring unknown nutrient in request")
			}
			return
		}
		seen[name] = true
	}
	for n := range req.Lower {
		add(n)
	}
	for n := range req.Upper {
		add(n)
	}
	for _, r := range req.Ratios {
		add(r.Num)
		add(r.Den)
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// nutrientMatrix builds the dense content matrix A where A[j][i] is
// nutrient j's amount per 100g of food i. Missing entries are zero.
func nutrientMatrix(nutrients []string, foods []*catalog.Food) [][]float64 {
	matrix := make([][]float64, len(nutrients))
	for j, name := range nutrients {
		row := make([]float64, len(foods))
		for i, f := range foods {
			row[i] = f.Nutrients[name]
		}
		matrix[j] = row
	}
	return matrix
}

// achievedVector computes A·x, the per-nutrient totals for the given
// amounts. Pure and deterministic for identical inputs.
func achievedVector(matrix [][]float64, amounts []float64) []float64 {
	achieved := make([]float64, len(matrix))
	for j, row := range matrix {
		var sum float64
		for i, a := range amounts {
			sum += row[i] * a
		}
		achieved[j] = sum
	}
	return achieved
}
