package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Catalog string `json:"catalog"`
	Foods   int    `json:"foods"`
}

// HealthCheck handles the health check endpoint
// GET /health
func HealthCheck(c *gin.Context) {
	response := HealthResponse{Status: "ok"}

	if foodCatalog == nil || len(foodCatalog.Foods()) == 0 {
		response.Status = "error"
		response.Catalog = "not loaded"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response.Catalog = "loaded"
	response.Foods = len(foodCatalog.Foods())

	c.JSON(http.StatusOK, response)
}
