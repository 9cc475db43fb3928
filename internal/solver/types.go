package solver

import (
	"fmt"
	"math"
	"time"
)

// Mode selects how the diet program is solved.
type Mode string

const (
	// ModeFast relaxes the program to a pure LP: no selection variables,
	// no cardinality cap. Approximate but quick.
	ModeFast Mode = "fast"

	// ModeAccurate solves the full MILP with binary selection variables
	// and the max-foods cap.
	ModeAccurate Mode = "accurate"
)

// SupplementsMode controls which supplements stay in the working set.
type SupplementsMode string

const (
	SupplementsNone  SupplementsMode = "none"
	SupplementsVitCD SupplementsMode = "vit_c_d"
	SupplementsAll   SupplementsMode = "all"
)

// CompareOp is the comparison operator of a ratio constraint.
type CompareOp string

const (
	OpGE CompareOp = ">="
	OpLE CompareOp = "<="
	OpEQ CompareOp = "=="
)

// RatioConstraint requires achieved(Num) Op Ratio·achieved(Den).
type RatioConstraint struct {
	Num   string
	Den   string
	Op    CompareOp
	Ratio float64
}

// FoodConstraint bounds a single food's amount, in 100g units.
// A Max at or below the ban epsilon bans the food outright.
type FoodConstraint struct {
	Min float64
	Max *float64 // nil = default upper bound
}

// StackEntry forces a food into the result at a minimum amount
// (100g units), bypassing every filter and ban.
type StackEntry struct {
	FoodID string
	Amount float64
}

// Request is one fully resolved solve call. Bound maps arrive already
// merged with the caller's overrides; DefaultLower/DefaultUpper keep the
// pre-override values so the report can show both.
type Request struct {
	Lower map[string]float64
	Upper map[string]float64

	DefaultLower map[string]float64
	DefaultUpper map[string]float64

	WeightPrice    float64
	WeightMass     float64
	WeightCalories float64

	MaxFoods    int
	SoftPenalty float64

	SupplementsMode SupplementsMode
	Mode            Mode

	FoodConstraints map[string]FoodConstraint
	Ratios          []RatioConstraint
	Stack           []StackEntry

	ShelfStableOnly bool
	BanFrozen       bool
}

// ShoppingItem is one selected food in the result.
type ShoppingItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	AmountGrams float64 `json:"amount_g"`
	Price       float64 `json:"price"` // per 100g, 0 when unknown
	TotalPrice  float64 `json:"total_price"`
}

// NutrientReport is the achievement report for one active nutrient.
type NutrientReport struct {
	Nutrient  string  `json:"nutrient"`
	Target    float64 `json:"target"`
	Max       float64 `json:"max"` // +Inf when unlimited
	Achieved  float64 `json:"achieved"`
	Violation float64 `json:"violation"` // upper-bound excess
	Percent   float64 `json:"pct"`

	// Pre-override defaults so the caller can flag changed limits
	// without recomputation.
	TargetDefault float64  `json:"target_default"`
	MaxDefault    *float64 `json:"max_default"` // nil = unlimited
	Unit          string   `json:"unit"`
}

// Breakdown lists each selected food's contribution to one nutrient.
type Breakdown struct {
	Nutrient      string             `json:"nutrient"`
	Contributions map[string]float64 `json:"contributions"`
}

// Totals aggregates the shopping list.
type Totals struct {
	Cost     float64 `json:"cost"`
	Mass     float64 `json:"mass"` // grams
	Calories float64 `json:"calories"`
}

// Result is a successful solve or evaluation.
type Result struct {
	ShoppingList []ShoppingItem   `json:"shopping_list"`
	Nutrients    []NutrientReport `json:"nutrients"`
	Breakdown    []Breakdown      `json:"breakdown"`
	Totals       Totals           `json:"totals"`
	Mode         Mode             `json:"mode,omitempty"`
	Elapsed      time.Duration    `json:"-"`
}

// MenuItem is a fixed food amount for evaluate-only calls.
type MenuItem struct {
	FoodID      string
	AmountGrams float64
}

// Validate checks structural validity. Unknown food ids and nutrient
// names are not errors here; they are dropped with a warning during
// assembly.
func (r *Request) Validate(limits *Config) error {
	switch r.Mode {
	case ModeFast, ModeAccurate:
	default:
		return ErrInvalidRequest{Field: "solver_mode", Reason: fmt.Sprintf("unknown mode %q", r.Mode)}
	}
	switch r.SupplementsMode {
	case SupplementsNone, SupplementsVitCD, SupplementsAll:
	default:
		return ErrInvalidRequest{Field: "supplements_mode", Reason: fmt.Sprintf("unknown mode %q", r.SupplementsMode)}
	}
	if r.Mode == ModeAccurate && r.MaxFoods < 1 {
		return ErrInvalidRequest{Field: "max_foods", Reason: "must be at least 1 in accurate mode"}
	}
	if r.SoftPenalty <= 0 || math.IsNaN(r.SoftPenalty) || math.IsInf(r.SoftPenalty, 0) {
		return ErrInvalidRequest{Field: "soft_penalty", Reason: "must be a positive finite number"}
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"w_price", r.WeightPrice},
		{"w_mass", r.WeightMass},
		{"w_cals", r.WeightCalories},
	} {
		if w.value < 0 || math.IsNaN(w.value) || math.IsInf(w.value, 0) {
			return ErrInvalidRequest{Field: w.name, Reason: "must be a non-negative finite number"}
		}
	}
	for i, rc := range r.Ratios {
		switch rc.Op {
		case OpGE, OpLE, OpEQ:
		default:
			return ErrInvalidRequest{Field: "ratios", Reason: fmt.Sprintf("entry %d has unknown operator %q", i, rc.Op)}
		}
	}
	for i, s := range r.Stack {
		if s.FoodID == "" {
			return ErrInvalidRequest{Field: "current_stack", Reason: fmt.Sprintf("entry %d has empty food id", i)}
		}
		if s.Amount < 0 || math.IsNaN(s.Amount) {
			return ErrInvalidRequest{Field: "current_stack", Reason: fmt.Sprintf("entry %d has invalid amount", i)}
		}
	}
	if limits != nil && len(r.Stack) > limits.MaxStackEntries {
		return ErrInvalidRequest{Field: "current_stack", Reason: "exceeds maximum allowed entries"}
	}
	return nil
}

// normalizeBounds replaces NaN and infinite values in the bound maps with
// the engine defaults (0 for lower, +Inf for upper) so sentinel values
// never reach program assembly.
func (r *Request) normalizeBounds() {
	for n, v := range r.Lower {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			r.Lower[n] = 0
		}
	}
	for n, v := range r.Upper {
		if math.IsNaN(v) || math.IsInf(v, -1) {
			r.Upper[n] = math.Inf(1)
		}
	}
}

// ErrInvalidRequest is returned when a solve request is structurally invalid.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return e.Field + ": " + e.Reason
}
