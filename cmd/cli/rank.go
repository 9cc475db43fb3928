package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fooddb/diet-service/internal/catalog"
)

var (
	rankLimit         int
	rankByValue       bool
	rankNoSupplements bool
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank <nutrient>",
	Short: "Rank foods by content of one nutrient",
	Long: `Rank catalog foods by their per-100g content of one nutrient, or by
content per yen with --by-value. Foods with negligible content are skipped.`,
	Example: `  diet-service rank VITAMIN_C
  diet-service rank PROTEIN --by-value --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntVar(&rankLimit, "limit", 50, "number of foods to show")
	rankCmd.Flags().BoolVar(&rankByValue, "by-value", false, "rank by content per yen instead of content")
	rankCmd.Flags().BoolVar(&rankNoSupplements, "no-supplements", false, "exclude supplements")
}

func runRank(cmd *cobra.Command, args []string) error {
	nutrient := args[0]

	cat, err := catalog.NewLoader(dataDir).Load()
	if err != nil {
		return fmt.Errorf("loading catalog from %s: %w", dataDir, err)
	}

	if cat.Unit(nutrient) == "" {
		known := false
		for _, n := range cat.Nutrients() {
			if n.Name == nutrient {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown nutrient %q", nutrient)
		}
	}

	type entry struct {
		food  *catalog.Food
		score float64
	}
	var entries []entry
	for _, f := range cat.Foods() {
		amount := f.Nutrients[nutrient]
		if amount <= 1e-5 {
			continue
		}
		if rankNoSupplements && f.Supplement {
			continue
		}
		score := amount
		if rankByValue {
			if f.Price == nil || *f.Price <= 0 {
				continue
			}
			score = amount / *f.Price
		}
		entries = append(entries, entry{food: f, score: score})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].score > entries[j].score })
	if len(entries) > rankLimit {
		entries = entries[:rankLimit]
	}

	unit := cat.Unit(nutrient)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "FOOD\tAMOUNT (%s/100g)\tPRICE/100g\n", unit)
	for _, e := range entries {
		price := "-"
		if e.food.Price != nil {
			price = fmt.Sprintf("%.1f", *e.food.Price)
		}
		fmt.Fprintf(w, "%s (%s)\t%.2f\t%s\n", e.food.Label, e.food.ID, e.food.Nutrients[nutrient], price)
	}
	return w.Flush()
}
