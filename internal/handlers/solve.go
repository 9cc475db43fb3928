package handlers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fooddb/diet-service/internal/solver"
)

// NutrientOverride overrides the default bounds of one nutrient.
type NutrientOverride struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// RatioSpec is one nutrient ratio constraint in the request body.
type RatioSpec struct {
	Num   string  `json:"num" binding:"required"`
	Den   string  `json:"den" binding:"required"`
	Op    string  `json:"op"`
	Ratio float64 `json:"ratio"`
}

// FoodConstraintSpec bounds one food's amount in 100g units.
type FoodConstraintSpec struct {
	ID  string   `json:"id" binding:"required"`
	Min float64  `json:"min"`
	Max *float64 `json:"max"`
}

// StackItem forces a food into the solution at a minimum amount.
type StackItem struct {
	ID         string  `json:"id" binding:"required"`
	Amount100g float64 `json:"amount_100g"`
}

// SolveRequest is the diet optimization request body. Pointer fields
// distinguish "absent" from zero so absence picks up the default.
type SolveRequest struct {
	NutrientOverrides map[string]NutrientOverride `json:"nutrient_overrides"`

	WPrice      *float64 `json:"w_price"`
	WMass       *float64 `json:"w_mass"`
	WCals       *float64 `json:"w_cals"`
	MaxFoods    *int     `json:"max_foods"`
	SoftPenalty *float64 `json:"soft_penalty"`

	SupplementsMode *string              `json:"supplements_mode"`
	BannedIDs       []string             `json:"banned_ids"`
	FoodConstraints []FoodConstraintSpec `json:"food_constraints"`
	Ratios          []RatioSpec          `json:"ratios"`
	CurrentStack    []StackItem          `json:"current_stack"`
	SolverMode      *string              `json:"solver_mode"`

	ShelfStableOnly bool  `json:"shelf_stable_only"`
	BanInedible     *bool `json:"ban_inedible"`
	BanRare         *bool `json:"ban_rare"`
	BanUncooked     bool  `json:"ban_uncooked"`
	BanFrozen       bool  `json:"ban_frozen"`
}

// NutrientReportEntry is one row of the achievement report. Max is nil
// when the nutrient has no upper limit.
type NutrientReportEntry struct {
	Nutrient      string   `json:"nutrient"`
	Target        float64  `json:"target"`
	Max           *float64 `json:"max"`
	Achieved      float64  `json:"achieved"`
	Violation     float64  `json:"violation_excess"`
	Percent       float64  `json:"pct"`
	TargetDefault float64  `json:"target_default"`
	MaxDefault    *float64 `json:"max_default"`
	Unit          string   `json:"unit"`
}

// DietResponse is the shared response shape of /solve and /evaluate.
type DietResponse struct {
	ShoppingList []solver.ShoppingItem `json:"shopping_list"`
	Nutrients    []NutrientReportEntry `json:"nutrients"`
	Breakdown    []solver.Breakdown    `json:"breakdown"`
	Totals       solver.Totals         `json:"totals"`
	TimeTaken    float64               `json:"time_taken,omitempty"`
}

func toResponse(res *solver.Result) *DietResponse {
	out := &DietResponse{
		ShoppingList: res.ShoppingList,
		Breakdown:    res.Breakdown,
		Totals:       res.Totals,
	}
	if out.ShoppingList == nil {
		out.ShoppingList = []solver.ShoppingItem{}
	}
	if out.Breakdown == nil {
		out.Breakdown = []solver.Breakdown{}
	}
	out.Nutrients = make([]NutrientReportEntry, len(res.Nutrients))
	for i, n := range res.Nutrients {
		entry := NutrientReportEntry{
			Nutrient:      n.Nutrient,
			Target:        n.Target,
			Achieved:      n.Achieved,
			Violation:     n.Violation,
			Percent:       n.Percent,
			TargetDefault: n.TargetDefault,
			MaxDefault:    n.MaxDefault,
			Unit:          n.Unit,
		}
		// +Inf means unlimited; JSON has no representation for it.
		if !math.IsInf(n.Max, 1) {
			v := n.Max
			entry.Max = &v
		}
		out.Nutrients[i] = entry
	}
	return out
}

func floatOr(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

// toEngineRequest resolves defaults and folds banned ids into food
// constraints, producing the sentinel-free engine request.
func (r *SolveRequest) toEngineRequest() *solver.Request {
	lower, upper := foodCatalog.DefaultBounds()
	defaultLower, defaultUpper := foodCatalog.DefaultBounds()

	for nutrient, ov := range r.NutrientOverrides {
		if ov.Min != nil {
			lower[nutrient] = *ov.Min
		}
		if ov.Max != nil {
			upper[nutrient] = *ov.Max
		}
	}

	constraints := make(map[string]solver.FoodConstraint, len(r.FoodConstraints)+len(r.BannedIDs))
	for _, fc := range r.FoodConstraints {
		constraints[fc.ID] = solver.FoodConstraint{Min: fc.Min, Max: fc.Max}
	}
	ban := func(id string) {
		zero := 0.0
		c := constraints[id]
		c.Max = &zero
		constraints[id] = c
	}
	for _, id := range r.BannedIDs {
		ban(id)
	}
	if r.BanUncooked {
		for _, f := range foodCatalog.Foods() {
			if f.Uncooked {
				ban(f.ID)
			}
		}
	}

	ratios := make([]solver.RatioConstraint, 0, len(r.Ratios))
	for _, rs := range r.Ratios {
		op := rs.Op
		if op == "" {
			op = ">="
		}
		ratio := rs.Ratio
		if ratio == 0 {
			ratio = 1.0
		}
		ratios = append(ratios, solver.RatioConstraint{
			Num:   rs.Num,
			Den:   rs.Den,
			Op:    solver.CompareOp(op),
			Ratio: ratio,
		})
	}

	stack := make([]solver.StackEntry, 0, len(r.CurrentStack))
	for _, item := range r.CurrentStack {
		stack = append(stack, solver.StackEntry{FoodID: item.ID, Amount: item.Amount100g})
	}

	mode := solver.ModeAccurate
	if r.SolverMode != nil {
		mode = solver.Mode(*r.SolverMode)
	}
	supplements := solver.SupplementsVitCD
	if r.SupplementsMode != nil {
		supplements = solver.SupplementsMode(*r.SupplementsMode)
	}
	maxFoods := 15
	if r.MaxFoods != nil {
		maxFoods = *r.MaxFoods
	}

	return &solver.Request{
		Lower:           lower,
		Upper:           upper,
		DefaultLower:    defaultLower,
		DefaultUpper:    defaultUpper,
		WeightPrice:     floatOr(r.WPrice, 1.0),
		WeightMass:      floatOr(r.WMass, 1.0),
		WeightCalories:  floatOr(r.WCals, 0.1),
		MaxFoods:        maxFoods,
		SoftPenalty:     floatOr(r.SoftPenalty, 10000.0),
		SupplementsMode: supplements,
		Mode:            mode,
		FoodConstraints: constraints,
		Ratios:          ratios,
		Stack:           stack,
		ShelfStableOnly: r.ShelfStableOnly,
		BanFrozen:       r.BanFrozen,
	}
}

// Solve handles diet optimization requests
// POST /solve
func Solve(c *gin.Context) {
	start := time.Now()

	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := dietSolver.Solve(c.Request.Context(), req.toEngineRequest())
	if err != nil {
		var invalid solver.ErrInvalidRequest
		switch {
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
		case errors.Is(err, solver.ErrNoSolution):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Solver failed to find a solution"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	response := toResponse(result)
	response.TimeTaken = time.Since(start).Seconds()
	c.JSON(http.StatusOK, response)
}
