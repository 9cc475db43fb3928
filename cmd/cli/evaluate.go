package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fooddb/diet-service/internal/solver"
)

var evaluateItems []string

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a fixed menu against the default nutrient targets",
	Long: `Evaluate a fixed menu of food amounts without running the optimizer.
Each --item takes the form <food-id>=<grams>. The output reports achieved
nutrient amounts against the default targets and limits.`,
	Example: `  diet-service evaluate --item F01083=150 --item F11129=200
  diet-service evaluate --item F03003=30 --output json`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringArrayVar(&evaluateItems, "item", nil, "menu item as <food-id>=<grams> (repeatable)")
	evaluateCmd.Flags().StringVar(&solveOutput, "output", "table", "output format: table or json")
	evaluateCmd.MarkFlagRequired("item")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cat, engine, err := loadEngine()
	if err != nil {
		return err
	}

	items := make([]solver.MenuItem, 0, len(evaluateItems))
	for _, raw := range evaluateItems {
		id, amount, found := strings.Cut(raw, "=")
		if !found {
			return fmt.Errorf("invalid item %q, expected <food-id>=<grams>", raw)
		}
		grams, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			return fmt.Errorf("invalid amount in item %q: %w", raw, err)
		}
		items = append(items, solver.MenuItem{FoodID: id, AmountGrams: grams})
	}

	lower, upper := cat.DefaultBounds()
	defaultLower, defaultUpper := cat.DefaultBounds()

	result := engine.Evaluate(&solver.EvaluateRequest{
		Items:        items,
		Lower:        lower,
		Upper:        upper,
		DefaultLower: defaultLower,
		DefaultUpper: defaultUpper,
	})

	return printResult(result)
}
