package solver

import "time"

// Config holds the tuning constants of the diet engine.
type Config struct {
	// BigM is the default selection-link constant for foods with no
	// explicit upper bound. Foods with an explicit bound use that bound
	// as their link constant instead.
	BigM float64 `mapstructure:"big_m"`

	// SelectionCost is the fixed objective cost per selected food in
	// accurate mode, discouraging many marginal foods.
	SelectionCost float64 `mapstructure:"selection_cost"`

	// TieBreakEpsilon is added to every amount coefficient so ties break
	// toward smaller total mass.
	TieBreakEpsilon float64 `mapstructure:"tie_break_epsilon"`

	// BanEpsilon: a food constraint with max at or below this value bans
	// the food.
	BanEpsilon float64 `mapstructure:"ban_epsilon"`

	// AmountThreshold: solution amounts at or below this (in 100g units)
	// are dropped from the shopping list. 1e-5 is 1mg, small enough to
	// keep high-density foods like seaweed and spices.
	AmountThreshold float64 `mapstructure:"amount_threshold"`

	// DefaultFoodMax is the default per-food upper bound in 100g units
	// (1000 = 100kg, effectively unbounded).
	DefaultFoodMax float64 `mapstructure:"default_food_max"`

	// SupplementAllowlist are the supplement ids still available in
	// vit_c_d mode.
	SupplementAllowlist []string `mapstructure:"supplement_allowlist"`

	// CalorieNutrient names the nutrient used for the calories total and
	// the calorie objective weight.
	CalorieNutrient string `mapstructure:"calorie_nutrient"`

	// SolveTimeout is the wall-clock budget for one backend solve.
	// Exhausting it yields a no-solution result.
	SolveTimeout time.Duration `mapstructure:"solve_timeout"`

	// MILPConcurrency bounds how many accurate-mode solves may run at
	// once; further requests wait for a slot.
	MILPConcurrency int `mapstructure:"milp_concurrency"`

	// MaxStackEntries caps request size for validation.
	MaxStackEntries int `mapstructure:"max_stack_entries"`
}

// Defaults returns the default engine configuration.
func Defaults() *Config {
	return &Config{
		BigM:                50.0,
		SelectionCost:       5.0,
		TieBreakEpsilon:     1e-6,
		BanEpsilon:          1e-6,
		AmountThreshold:     1e-5,
		DefaultFoodMax:      1000.0,
		SupplementAllowlist: []string{"EXTRA_1", "EXTRA_5"},
		CalorieNutrient:     "CALORIES",
		SolveTimeout:        30 * time.Second,
		MILPConcurrency:     2,
		MaxStackEntries:     200,
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.BigM <= 0 {
		return ErrInvalidConfig{Field: "big_m", Reason: "must be positive"}
	}
	if c.SelectionCost < 0 {
		return ErrInvalidConfig{Field: "selection_cost", Reason: "must be non-negative"}
	}
	if c.TieBreakEpsilon < 0 {
		return ErrInvalidConfig{Field: "tie_break_epsilon", Reason: "must be non-negative"}
	}
	if c.BanEpsilon <= 0 {
		return ErrInvalidConfig{Field: "ban_epsilon", Reason: "must be positive"}
	}
	if c.AmountThreshold <= 0 {
		return ErrInvalidConfig{Field: "amount_threshold", Reason: "must be positive"}
	}
	if c.DefaultFoodMax <= 0 {
		return ErrInvalidConfig{Field: "default_food_max", Reason: "must be positive"}
	}
	if c.CalorieNutrient == "" {
		return ErrInvalidConfig{Field: "calorie_nutrient", Reason: "cannot be empty"}
	}
	if c.SolveTimeout <= 0 {
		return ErrInvalidConfig{Field: "solve_timeout", Reason: "must be positive"}
	}
	if c.MILPConcurrency < 1 {
		return ErrInvalidConfig{Field: "milp_concurrency", Reason: "must be at least 1"}
	}
	if c.MaxStackEntries < 1 {
		return ErrInvalidConfig{Field: "max_stack_entries", Reason: "must be at least 1"}
	}
	return nil
}

// ErrInvalidConfig is returned when the engine configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
