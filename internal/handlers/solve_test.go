package handlers

import (
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddb/diet-service/internal/solver"
)

func TestSolveAppliesDefaults(t *testing.T) {
	stub := &stubSolver{result: emptyResult()}
	r := setup(t, stub)

	w := perform(t, r, http.MethodPost, "/solve", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)

	req := stub.lastSolve
	require.NotNil(t, req)
	assert.Equal(t, 1.0, req.WeightPrice)
	assert.Equal(t, 1.0, req.WeightMass)
	assert.Equal(t, 0.1, req.WeightCalories)
	assert.Equal(t, 15, req.MaxFoods)
	assert.Equal(t, 10000.0, req.SoftPenalty)
	assert.Equal(t, solver.ModeAccurate, req.Mode)
	assert.Equal(t, solver.SupplementsVitCD, req.SupplementsMode)

	// Bounds come from the catalog defaults.
	assert.Equal(t, 50.0, req.Lower["PROTEIN"])
	assert.Equal(t, 2000.0, req.Upper["VITAMIN_C"])
	assert.Equal(t, req.Lower, req.DefaultLower)
	assert.Equal(t, req.Upper, req.DefaultUpper)
}

func TestSolvePassesOverrides(t *testing.T) {
	stub := &stubSolver{result: emptyResult()}
	r := setup(t, stub)

	w := perform(t, r, http.MethodPost, "/solve", map[string]any{
		"w_price":           0.0,
		"w_cals":            2.5,
		"max_foods":         5,
		"solver_mode":       "fast",
		"supplements_mode":  "none",
		"shelf_stable_only": true,
		"ban_frozen":        true,
		"nutrient_overrides": map[string]any{
			"PROTEIN":   map[string]any{"min": 80},
			"VITAMIN_C": map[string]any{"max": 500},
		},
		"ratios":        []map[string]any{{"num": "PROTEIN", "den": "CALORIES"}},
		"current_stack": []map[string]any{{"id": "01001", "amount_100g": 2.0}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := stub.lastSolve
	require.NotNil(t, req)
	// Explicit zero is distinct from absent.
	assert.Equal(t, 0.0, req.WeightPrice)
	assert.Equal(t, 2.5, req.WeightCalories)
	assert.Equal(t, 5, req.MaxFoods)
	assert.Equal(t, solver.ModeFast, req.Mode)
	assert.Equal(t, solver.SupplementsNone, req.SupplementsMode)
	assert.True(t, req.ShelfStableOnly)
	assert.True(t, req.BanFrozen)

	assert.Equal(t, 80.0, req.Lower["PROTEIN"])
	assert.Equal(t, 500.0, req.Upper["VITAMIN_C"])
	// Defaults stay untouched for the report.
	assert.Equal(t, 50.0, req.DefaultLower["PROTEIN"])
	assert.Equal(t, 2000.0, req.DefaultUpper["VITAMIN_C"])

	// Omitted ratio fields default to ">=" at 1.0.
	require.Len(t, req.Ratios, 1)
	assert.Equal(t, solver.OpGE, req.Ratios[0].Op)
	assert.Equal(t, 1.0, req.Ratios[0].Ratio)

	require.Len(t, req.Stack, 1)
	assert.Equal(t, solver.StackEntry{FoodID: "01001", Amount: 2.0}, req.Stack[0])
}

func TestSolveFoldsBansIntoConstraints(t *testing.T) {
	stub := &stubSolver{result: emptyResult()}
	r := setup(t, stub)

	w := perform(t, r, http.MethodPost, "/solve", map[string]any{
		"banned_ids":   []string{"02001"},
		"ban_uncooked": true,
		"food_constraints": []map[string]any{
			{"id": "01001", "min": 0.5, "max": 3.0},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	fc := stub.lastSolve.FoodConstraints
	require.NotNil(t, fc)

	banned, ok := fc["02001"]
	require.True(t, ok)
	require.NotNil(t, banned.Max)
	assert.Equal(t, 0.0, *banned.Max)

	// ban_uncooked turns every uncooked catalog food into a zero-max
	// constraint.
	uncooked, ok := fc["04001"]
	require.True(t, ok)
	require.NotNil(t, uncooked.Max)
	assert.Equal(t, 0.0, *uncooked.Max)

	explicit, ok := fc["01001"]
	require.True(t, ok)
	assert.Equal(t, 0.5, explicit.Min)
	require.NotNil(t, explicit.Max)
	assert.Equal(t, 3.0, *explicit.Max)
}

func TestSolveErrorMapping(t *testing.T) {
	t.Run("no solution", func(t *testing.T) {
		r := setup(t, &stubSolver{err: solver.ErrNoSolution})
		w := perform(t, r, http.MethodPost, "/solve", map[string]any{})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		decodeBody(t, w, &resp)
		assert.Equal(t, "Solver failed to find a solution", resp["error"])
	})

	t.Run("invalid request", func(t *testing.T) {
		r := setup(t, &stubSolver{err: solver.ErrInvalidRequest{Field: "max_foods", Reason: "must be at least 1 in accurate mode"}})
		w := perform(t, r, http.MethodPost, "/solve", map[string]any{})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		decodeBody(t, w, &resp)
		assert.Contains(t, resp["error"], "max_foods")
	})

	t.Run("malformed body", func(t *testing.T) {
		r := setup(t, &stubSolver{result: emptyResult()})
		w := perform(t, r, http.MethodPost, "/solve", "not an object")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSolveResponseShape(t *testing.T) {
	stub := &stubSolver{result: &solver.Result{
		ShoppingList: []solver.ShoppingItem{
			{ID: "01001", Name: "こむぎ ［小麦粉］ 強力粉", AmountGrams: 200, Price: 20, TotalPrice: 40},
		},
		Nutrients: []solver.NutrientReport{
			{Nutrient: "CALORIES", Achieved: 674, Max: math.Inf(1)},
			{Nutrient: "VITAMIN_C", Achieved: 0, Max: 2000, MaxDefault: ptr(2000)},
		},
		Totals: solver.Totals{Cost: 40, Mass: 200, Calories: 674},
	}}
	r := setup(t, stub)

	w := perform(t, r, http.MethodPost, "/solve", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ShoppingList []map[string]any `json:"shopping_list"`
		Nutrients    []struct {
			Nutrient string   `json:"nutrient"`
			Max      *float64 `json:"max"`
		} `json:"nutrients"`
		Breakdown []any          `json:"breakdown"`
		Totals    map[string]any `json:"totals"`
		TimeTaken float64        `json:"time_taken"`
	}
	decodeBody(t, w, &resp)

	require.Len(t, resp.Nutrients, 2)
	// Unlimited maxima serialize as null, finite ones as numbers.
	assert.Nil(t, resp.Nutrients[0].Max)
	require.NotNil(t, resp.Nutrients[1].Max)
	assert.Equal(t, 2000.0, *resp.Nutrients[1].Max)

	// Nil slices render as [], never null.
	assert.NotNil(t, resp.Breakdown)
	assert.Greater(t, resp.TimeTaken, 0.0)
}

func TestEvaluate(t *testing.T) {
	stub := &stubSolver{result: emptyResult()}
	r := setup(t, stub)

	w := perform(t, r, http.MethodPost, "/evaluate", map[string]any{
		"items": []map[string]any{
			{"id": "01001", "amount_g": 150},
		},
		"nutrient_overrides": map[string]any{
			"PROTEIN": map[string]any{"min": 30},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := stub.lastEval
	require.NotNil(t, req)
	require.Len(t, req.Items, 1)
	assert.Equal(t, solver.MenuItem{FoodID: "01001", AmountGrams: 150}, req.Items[0])
	assert.Equal(t, 30.0, req.Lower["PROTEIN"])
	assert.Equal(t, 50.0, req.DefaultLower["PROTEIN"])
}
