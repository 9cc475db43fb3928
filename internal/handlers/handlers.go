// Package handlers implements the HTTP API: diet solving, menu
// evaluation, catalog browsing and profile persistence.
package handlers

import (
	"context"

	"github.com/fooddb/diet-service/internal/catalog"
	"github.com/fooddb/diet-service/internal/profiles"
	"github.com/fooddb/diet-service/internal/solver"
)

// Solver is the engine surface the handlers need. It is an interface so
// tests can substitute a stub.
type Solver interface {
	Solve(ctx context.Context, req *solver.Request) (*solver.Result, error)
	Evaluate(req *solver.EvaluateRequest) *solver.Result
}

// categoryNames maps food composition table category ids to their
// Japanese group names for the detail view.
var categoryNames = map[string]string{
	"01": "穀類",
	"02": "いも及びでん粉類",
	"03": "砂糖及び甘味類",
	"04": "豆類",
	"05": "種実類",
	"06": "野菜類",
	"07": "果実類",
	"08": "きのこ類",
	"09": "藻類",
	"10": "魚介類",
	"11": "肉類",
	"12": "卵類",
	"13": "乳類",
	"14": "油脂類",
	"15": "菓子類",
	"16": "し好飲料類",
	"17": "調味料及び香辛料類",
	"18": "調理加工食品類",
}

// Shared instances (initialized by the application)
var (
	dietSolver   Solver
	foodCatalog  *catalog.Catalog
	profileStore profiles.Store
)

// Init wires the handler package to its collaborators.
// This should be called during application startup, before routing.
func Init(s Solver, cat *catalog.Catalog, store profiles.Store) {
	dietSolver = s
	foodCatalog = cat
	profileStore = store
}
