package solver

import (
	"context"
	"time"

	"github.com/bartolsthoorn/gohighs/highs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HighsBackend solves programs with the HiGHS solver.
type HighsBackend struct {
	timeLimit time.Duration
	logger    zerolog.Logger
}

// NewHighsBackend creates a HiGHS-based backend with the given default
// wall-clock budget per solve. A context deadline shorter than the
// budget takes precedence.
func NewHighsBackend(timeLimit time.Duration) *HighsBackend {
	return &HighsBackend{
		timeLimit: timeLimit,
		logger:    log.With().Str("component", "highs_backend").Logger(),
	}
}

// Solve translates the program into a HiGHS model and runs it. All
// failure statuses collapse to ErrNoSolution per the engine contract.
func (b *HighsBackend) Solve(ctx context.Context, prog *Program) (*Solution, error) {
	model := highs.Model{
		ColCosts: prog.Objective,
		ColLower: prog.VarLower,
		ColUpper: prog.VarUpper,
	}

	hasInteger := false
	for _, integer := range prog.Integer {
		if integer {
			hasInteger = true
			break
		}
	}
	if hasInteger {
		varTypes := make([]highs.VariableType, len(prog.Integer))
		for i, integer := range prog.Integer {
			if integer {
				varTypes[i] = highs.Integer
			} else {
				varTypes[i] = highs.Continuous
			}
		}
		model.VarTypes = varTypes
	}

	for _, row := range prog.Rows {
		model.AddDenseRow(row.Lower, row.Coeffs, row.Upper)
	}

	limit := b.timeLimit
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < limit {
			limit = remaining
		}
	}
	if limit <= 0 {
		return nil, ErrNoSolution
	}

	sol, err := model.Solve(
		highs.WithOutput(false),
		highs.WithTimeLimit(limit.Seconds()),
	)
	if err != nil {
		b.logger.Error().Err(err).Msg("HiGHS solve failed")
		return nil, ErrNoSolution
	}

	if !sol.IsOptimal() {
		b.logger.Debug().
			Bool("infeasible", sol.IsInfeasible()).
			Bool("unbounded", sol.IsUnbounded()).
			Bool("time_limit", sol.IsTimeLimit()).
			Msg("HiGHS returned no optimal solution")
		return nil, ErrNoSolution
	}

	return &Solution{Values: sol.ColValues, Objective: sol.Objective}, nil
}
