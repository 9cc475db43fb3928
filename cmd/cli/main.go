package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fooddb/diet-service/internal/catalog"
	"github.com/fooddb/diet-service/internal/solver"
)

var (
	dataDir  string
	logLevel string
	logger   zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "diet-service",
	Short: "Diet Service CLI - offline diet optimization tool",
	Long: `A CLI tool for running diet optimizations against a local food
catalog directory. Solves for the cheapest or lightest combination of foods
meeting nutrient targets, evaluates fixed menus and ranks foods by nutrient
density.`,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "./data", "catalog data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}
	logger = initLogger()
	return nil
}

func initLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// loadEngine loads the catalog from the data directory and builds a
// solver over it with default tuning.
func loadEngine() (*catalog.Catalog, *solver.DietSolver, error) {
	cat, err := catalog.NewLoader(dataDir).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog from %s: %w", dataDir, err)
	}
	cfg := solver.Defaults()
	backend := solver.NewHighsBackend(cfg.SolveTimeout)
	engine, err := solver.New(cat, backend, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cat, engine, nil
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
