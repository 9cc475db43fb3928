package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddb/diet-service/internal/catalog"
)

func ptr(v float64) *float64 { return &v }

// twoFoodCatalog builds the minimal catalog used across the solve tests:
// A is the cheaper source of protein per gram, B the cheaper food per 100g.
func twoFoodCatalog() *catalog.Catalog {
	foods := []*catalog.Food{
		{
			ID:        "A",
			Name:      "Food A",
			Label:     "Food A",
			Nutrients: map[string]float64{"PROTEIN": 5, "CALORIES": 100},
			Price:     ptr(10),
		},
		{
			ID:        "B",
			Name:      "Food B",
			Label:     "Food B",
			Nutrients: map[string]float64{"PROTEIN": 2, "CALORIES": 100},
			Price:     ptr(5),
		},
	}
	nutrients := []catalog.Nutrient{
		{Name: "PROTEIN", Unit: "g", DailyValue: 10},
		{Name: "CALORIES", Unit: "kcal", DailyValue: 0},
	}
	return catalog.New(foods, nutrients)
}

// stubBackend returns a canned solution or error without solving anything.
type stubBackend struct {
	solution *Solution
	err      error
	lastProg *Program
}

func (b *stubBackend) Solve(ctx context.Context, prog *Program) (*Solution, error) {
	b.lastProg = prog
	if b.err != nil {
		return nil, b.err
	}
	return b.solution, nil
}

func baseRequest(mode Mode) *Request {
	return &Request{
		Lower:          map[string]float64{"PROTEIN": 10},
		Upper:          map[string]float64{},
		DefaultLower:   map[string]float64{"PROTEIN": 10},
		DefaultUpper:   map[string]float64{},
		WeightPrice:    1,
		WeightMass:     0,
		WeightCalories: 0,
		MaxFoods:       15,
		SoftPenalty:    10000,

		SupplementsMode: SupplementsNone,
		Mode:            mode,
	}
}

func TestSolveRejectsInvalidRequests(t *testing.T) {
	s, err := New(twoFoodCatalog(), &stubBackend{}, nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"unknown mode", func(r *Request) { r.Mode = "quantum" }, "solver_mode"},
		{"unknown supplements mode", func(r *Request) { r.SupplementsMode = "extra" }, "supplements_mode"},
		{"zero max foods in accurate mode", func(r *Request) { r.MaxFoods = 0 }, "max_foods"},
		{"non-positive soft penalty", func(r *Request) { r.SoftPenalty = 0 }, "soft_penalty"},
		{"negative weight", func(r *Request) { r.WeightPrice = -1 }, "w_price"},
		{"bad ratio operator", func(r *Request) {
			r.Ratios = []RatioConstraint{{Num: "PROTEIN", Den: "CALORIES", Op: "!=", Ratio: 1}}
		}, "ratios"},
		{"empty stack id", func(r *Request) { r.Stack = []StackEntry{{FoodID: "", Amount: 1}} }, "current_stack"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest(ModeAccurate)
			tt.mutate(req)
			_, err := s.Solve(context.Background(), req)
			var invalid ErrInvalidRequest
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestSolveEmptyWorkingSetIsNoSolution(t *testing.T) {
	s, err := New(twoFoodCatalog(), &stubBackend{}, nil)
	require.NoError(t, err)

	req := baseRequest(ModeFast)
	zero := 0.0
	req.FoodConstraints = map[string]FoodConstraint{
		"A": {Max: &zero},
		"B": {Max: &zero},
	}

	_, err = s.Solve(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoSolution)
}

func TestSolveBackendFailurePassesThrough(t *testing.T) {
	s, err := New(twoFoodCatalog(), &stubBackend{err: ErrNoSolution}, nil)
	require.NoError(t, err)

	_, err = s.Solve(context.Background(), baseRequest(ModeFast))
	assert.ErrorIs(t, err, ErrNoSolution)
}

// TestSolveProjection feeds a canned solution vector through the full
// pipeline and checks the shopping list, report and totals line up.
func TestSolveProjection(t *testing.T) {
	// Fast-mode layout over {A, B} and active nutrient {PROTEIN}:
	// [amountA, amountB, slackPROTEIN].
	backend := &stubBackend{solution: &Solution{Values: []float64{2.0, 1e-6, 0}}}
	s, err := New(twoFoodCatalog(), backend, nil)
	require.NoError(t, err)

	res, err := s.Solve(context.Background(), baseRequest(ModeFast))
	require.NoError(t, err)

	// B's amount is below the reporting threshold and must be dropped.
	require.Len(t, res.ShoppingList, 1)
	item := res.ShoppingList[0]
	assert.Equal(t, "A", item.ID)
	assert.InDelta(t, 200.0, item.AmountGrams, 1e-9)
	assert.InDelta(t, 10.0, item.Price, 1e-9)
	assert.InDelta(t, 20.0, item.TotalPrice, 1e-9)

	assert.InDelta(t, 20.0, res.Totals.Cost, 1e-9)
	assert.InDelta(t, 200.0, res.Totals.Mass, 1e-9)

	require.Len(t, res.Nutrients, 1)
	report := res.Nutrients[0]
	assert.Equal(t, "PROTEIN", report.Nutrient)
	assert.InDelta(t, 10.0, report.Target, 1e-9)
	// Achieved is recomputed from the matrix, including sub-threshold B.
	assert.InDelta(t, 10.0+2e-6, report.Achieved, 1e-9)
	assert.InDelta(t, 100.0, report.Percent, 1e-3)
	assert.Equal(t, "g", report.Unit)
	assert.Nil(t, report.MaxDefault)

	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, "PROTEIN", res.Breakdown[0].Nutrient)
	assert.InDelta(t, 10.0, res.Breakdown[0].Contributions["A"], 1e-9)
}

func TestSolveShoppingListSortedByAmount(t *testing.T) {
	backend := &stubBackend{solution: &Solution{Values: []float64{1.0, 3.0, 0}}}
	s, err := New(twoFoodCatalog(), backend, nil)
	require.NoError(t, err)

	res, err := s.Solve(context.Background(), baseRequest(ModeFast))
	require.NoError(t, err)

	require.Len(t, res.ShoppingList, 2)
	assert.Equal(t, "B", res.ShoppingList[0].ID)
	assert.Equal(t, "A", res.ShoppingList[1].ID)
}

// The concrete optimization scenarios below exercise the real HiGHS
// backend end to end.

func newHighsSolver(t *testing.T, cat *catalog.Catalog) *DietSolver {
	t.Helper()
	cfg := Defaults()
	s, err := New(cat, NewHighsBackend(cfg.SolveTimeout), cfg)
	require.NoError(t, err)
	return s
}

// Two-food LP: A delivers protein at 2 yen/g, B at 2.5 yen/g, so the
// optimum is A alone at 200g.
func TestSolveTwoFoodLP(t *testing.T) {
	s := newHighsSolver(t, twoFoodCatalog())

	res, err := s.Solve(context.Background(), baseRequest(ModeFast))
	require.NoError(t, err)

	require.Len(t, res.ShoppingList, 1)
	assert.Equal(t, "A", res.ShoppingList[0].ID)
	assert.InDelta(t, 200.0, res.ShoppingList[0].AmountGrams, 1.0)
	assert.InDelta(t, 20.0, res.Totals.Cost, 0.1)
}

// A misspelled nutrient in the lower bounds must not render the program
// infeasible; it is dropped and the rest solves normally.
func TestSolveIgnoresMisspelledNutrient(t *testing.T) {
	s := newHighsSolver(t, twoFoodCatalog())

	req := baseRequest(ModeFast)
	req.Lower["PORTEIN"] = 50

	res, err := s.Solve(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, res.Nutrients, 1)
	assert.Equal(t, "PROTEIN", res.Nutrients[0].Nutrient)
}

// Forced inclusion: B is banned outright but a stack entry forces it in,
// and the forced food must survive at its forced amount or more.
func TestSolveForcedStackOverridesBan(t *testing.T) {
	s := newHighsSolver(t, twoFoodCatalog())

	req := baseRequest(ModeFast)
	zero := 0.0
	req.FoodConstraints = map[string]FoodConstraint{"B": {Max: &zero}}
	req.Stack = []StackEntry{{FoodID: "B", Amount: 1.0}}

	res, err := s.Solve(context.Background(), req)
	require.NoError(t, err)

	found := false
	for _, item := range res.ShoppingList {
		if item.ID == "B" {
			found = true
			assert.GreaterOrEqual(t, item.AmountGrams, 100.0-1e-6)
		}
	}
	assert.True(t, found, "forced food B missing from shopping list")
}

// Infeasibility: the protein target is impossible under tight per-food
// maxima, and the hard lower bound must make the program infeasible.
func TestSolveInfeasibleTarget(t *testing.T) {
	s := newHighsSolver(t, twoFoodCatalog())

	req := baseRequest(ModeFast)
	req.Lower = map[string]float64{"PROTEIN": 1000}
	one := 1.0
	req.FoodConstraints = map[string]FoodConstraint{
		"A": {Max: &one},
		"B": {Max: &one},
	}

	_, err := s.Solve(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoSolution)
}

// Soft upper bound: a calorie cap below what any protein-satisfying mix
// can stay under must not cause infeasibility, only a reported excess.
func TestSolveSoftUpperBoundViolation(t *testing.T) {
	s := newHighsSolver(t, twoFoodCatalog())

	req := baseRequest(ModeFast)
	// Meeting PROTEIN >= 10 requires at least 200g of food, which is at
	// least 200 kcal; cap calories at 50.
	req.Upper = map[string]float64{"CALORIES": 50}
	req.DefaultUpper = map[string]float64{"CALORIES": 50}

	res, err := s.Solve(context.Background(), req)
	require.NoError(t, err)

	var calories *NutrientReport
	for i := range res.Nutrients {
		if res.Nutrients[i].Nutrient == "CALORIES" {
			calories = &res.Nutrients[i]
		}
	}
	require.NotNil(t, calories)
	assert.Greater(t, calories.Violation, 0.0)
	assert.Greater(t, calories.Achieved, 50.0)
}

// Accurate mode must respect the max-foods cardinality cap.
func TestSolveAccurateModeCardinality(t *testing.T) {
	s := newHighsSolver(t, twoFoodCatalog())

	req := baseRequest(ModeAccurate)
	req.MaxFoods = 1

	res, err := s.Solve(context.Background(), req)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.ShoppingList), 1)
	assert.Equal(t, ModeAccurate, res.Mode)
}
