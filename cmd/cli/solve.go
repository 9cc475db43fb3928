package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fooddb/diet-service/internal/solver"
)

var (
	solveWPrice      float64
	solveWMass       float64
	solveWCals       float64
	solveMaxFoods    int
	solveSoftPenalty float64
	solveMode        string
	solveSupplements string
	solveShelfStable bool
	solveBanFrozen   bool
	solveBanned      []string
	solveOutput      string
)

// solveCmd represents the solve command
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve for an optimal diet against the catalog's nutrient targets",
	Long: `Solve for the combination of foods that meets every nutrient's default
daily target at minimal weighted cost. Weights trade off price, mass and
calories; accurate mode additionally caps the number of distinct foods.`,
	Example: `  diet-service solve --data ./data
  diet-service solve --mode fast --w-price 0 --w-mass 1
  diet-service solve --max-foods 10 --ban F01001 --output json`,
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)

	solveCmd.Flags().Float64Var(&solveWPrice, "w-price", 1.0, "objective weight on price")
	solveCmd.Flags().Float64Var(&solveWMass, "w-mass", 1.0, "objective weight on mass")
	solveCmd.Flags().Float64Var(&solveWCals, "w-cals", 0.1, "objective weight on calories")
	solveCmd.Flags().IntVar(&solveMaxFoods, "max-foods", 15, "maximum distinct foods (accurate mode)")
	solveCmd.Flags().Float64Var(&solveSoftPenalty, "soft-penalty", 10000.0, "penalty per unit of upper-bound violation")
	solveCmd.Flags().StringVar(&solveMode, "mode", "accurate", "solver mode: accurate or fast")
	solveCmd.Flags().StringVar(&solveSupplements, "supplements", "vit_c_d", "supplements mode: none, vit_c_d or all")
	solveCmd.Flags().BoolVar(&solveShelfStable, "shelf-stable-only", false, "restrict to shelf-stable foods")
	solveCmd.Flags().BoolVar(&solveBanFrozen, "ban-frozen", false, "exclude frozen foods")
	solveCmd.Flags().StringSliceVar(&solveBanned, "ban", nil, "food ids to exclude")
	solveCmd.Flags().StringVar(&solveOutput, "output", "table", "output format: table or json")
}

func runSolve(cmd *cobra.Command, args []string) error {
	cat, engine, err := loadEngine()
	if err != nil {
		return err
	}

	lower, upper := cat.DefaultBounds()
	defaultLower, defaultUpper := cat.DefaultBounds()

	constraints := make(map[string]solver.FoodConstraint, len(solveBanned))
	zero := 0.0
	for _, id := range solveBanned {
		constraints[id] = solver.FoodConstraint{Max: &zero}
	}

	result, err := engine.Solve(context.Background(), &solver.Request{
		Lower:           lower,
		Upper:           upper,
		DefaultLower:    defaultLower,
		DefaultUpper:    defaultUpper,
		WeightPrice:     solveWPrice,
		WeightMass:      solveWMass,
		WeightCalories:  solveWCals,
		MaxFoods:        solveMaxFoods,
		SoftPenalty:     solveSoftPenalty,
		SupplementsMode: solver.SupplementsMode(solveSupplements),
		Mode:            solver.Mode(solveMode),
		FoodConstraints: constraints,
		ShelfStableOnly: solveShelfStable,
		BanFrozen:       solveBanFrozen,
	})
	if err != nil {
		return err
	}

	return printResult(result)
}

func printResult(result *solver.Result) error {
	if solveOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FOOD\tAMOUNT (g)\tPRICE/100g\tTOTAL")
	for _, item := range result.ShoppingList {
		fmt.Fprintf(w, "%s (%s)\t%.0f\t%.1f\t%.1f\n",
			item.Label, item.ID, item.AmountGrams, item.Price, item.TotalPrice)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nTotal: %.1f yen, %.0f g, %.0f kcal\n",
		result.Totals.Cost, result.Totals.Mass, result.Totals.Calories)
	return nil
}
