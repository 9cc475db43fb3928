package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/fooddb/diet-service/internal/catalog"
)

// DietSolver turns nutrition and cost constraints into a linear or
// mixed-integer program over the food catalog and projects the backend's
// solution back into a shopping list.
//
// The catalog is read-only and shared; everything else is created per
// request, so a DietSolver is safe for concurrent use. Accurate-mode
// solves are combinatorial and CPU-bound, so they pass through a bounded
// slot pool instead of running unchecked on request goroutines.
type DietSolver struct {
	catalog   *catalog.Catalog
	backend   Backend
	config    *Config
	metrics   *MetricsRecorder
	logger    zerolog.Logger
	tracer    trace.Tracer
	milpSlots *semaphore.Weighted
}

// New creates a diet solver over an immutable catalog.
func New(cat *catalog.Catalog, backend Backend, cfg *Config) (*DietSolver, error) {
	if cfg == nil {
		cfg = Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid solver config: %w", err)
	}
	return &DietSolver{
		catalog:   cat,
		backend:   backend,
		config:    cfg,
		metrics:   NewMetricsRecorder(),
		logger:    log.With().Str("component", "diet_solver").Logger(),
		tracer:    otel.Tracer("diet-service/solver"),
		milpSlots: semaphore.NewWeighted(int64(cfg.MILPConcurrency)),
	}, nil
}

// Solve runs one optimization request end to end: eligibility filter,
// active-nutrient resolution, program assembly, backend solve, result
// projection. Failure is always ErrNoSolution; the cause (infeasible,
// unbounded, budget exhausted) is deliberately not distinguished.
func (s *DietSolver) Solve(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	mode := string(req.Mode)
	defer func() {
		s.metrics.RecordSolveDuration(mode, time.Since(start))
	}()

	if err := req.Validate(s.config); err != nil {
		return nil, err
	}
	req.normalizeBounds()

	ctx, span := s.tracer.Start(ctx, "diet.solve", trace.WithAttributes(
		attribute.String("solve.mode", mode),
		attribute.Int("solve.ratios", len(req.Ratios)),
		attribute.Int("solve.stack", len(req.Stack)),
	))
	defer span.End()

	foods := s.workingSet(req)
	if len(foods) == 0 {
		s.logger.Warn().Msg("Working food set is empty after filtering")
		s.metrics.RecordNoSolution(mode)
		return nil, ErrNoSolution
	}
	s.metrics.RecordWorkingSetSize(len(foods))

	nutrients := s.activeNutrients(req)
	matrix := nutrientMatrix(nutrients, foods)

	prog, asm := s.assemble(req, foods, nutrients, matrix)
	s.metrics.RecordProgramSize(mode, len(prog.Objective), len(prog.Rows))

	if req.Mode == ModeAccurate {
		if err := s.milpSlots.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("waiting for solve slot: %w", err)
		}
		defer s.milpSlots.Release(1)
	}

	solveCtx, cancel := context.WithTimeout(ctx, s.config.SolveTimeout)
	defer cancel()

	sol, err := s.backend.Solve(solveCtx, prog)
	if err != nil {
		s.metrics.RecordNoSolution(mode)
		s.logger.Info().
			Err(err).
			Int("foods", len(foods)).
			Int("nutrients", len(nutrients)).
			Str("mode", mode).
			Msg("Solve produced no solution")
		return nil, err
	}

	result := s.project(req, foods, nutrients, asm, sol)
	result.Elapsed = time.Since(start)
	s.metrics.RecordSelectedFoods(len(result.ShoppingList))

	s.logger.Info().
		Str("mode", mode).
		Int("selected", len(result.ShoppingList)).
		Float64("cost", result.Totals.Cost).
		Dur("elapsed", result.Elapsed).
		Msg("Solve completed")
	return result, nil
}
