package solver

import (
	"context"
	"errors"
)

// ErrNoSolution is the single failure outcome of a solve. Infeasible,
// unbounded, solver errors and exhausted time budgets all collapse to it;
// callers must treat it as terminal for the request.
var ErrNoSolution = errors.New("no feasible diet found")

// Solution is the raw solution vector returned by a backend.
type Solution struct {
	Values    []float64
	Objective float64
}

// Backend is the narrow contract with the numerical LP/MILP solver:
// given the assembled program it returns a solution vector or
// ErrNoSolution. The assembler must not depend on anything beyond this,
// so backends can be swapped without touching assembly logic.
type Backend interface {
	Solve(ctx context.Context, prog *Program) (*Solution, error)
}
