package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fooddb/diet-service/internal/solver"
)

// EvaluateItem is one fixed menu line, amount in grams.
type EvaluateItem struct {
	ID      string  `json:"id" binding:"required"`
	AmountG float64 `json:"amount_g"`
}

// EvaluateRequest scores a fixed menu against the nutrient bounds
// without running the optimizer.
type EvaluateRequest struct {
	Items             []EvaluateItem              `json:"items"`
	NutrientOverrides map[string]NutrientOverride `json:"nutrient_overrides"`
}

// Evaluate handles fixed-menu evaluation requests
// POST /evaluate
func Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lower, upper := foodCatalog.DefaultBounds()
	defaultLower, defaultUpper := foodCatalog.DefaultBounds()
	for nutrient, ov := range req.NutrientOverrides {
		if ov.Min != nil {
			lower[nutrient] = *ov.Min
		}
		if ov.Max != nil {
			upper[nutrient] = *ov.Max
		}
	}

	items := make([]solver.MenuItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, solver.MenuItem{FoodID: item.ID, AmountGrams: item.AmountG})
	}

	result := dietSolver.Evaluate(&solver.EvaluateRequest{
		Items:        items,
		Lower:        lower,
		Upper:        upper,
		DefaultLower: defaultLower,
		DefaultUpper: defaultUpper,
	})

	c.JSON(http.StatusOK, toResponse(result))
}
