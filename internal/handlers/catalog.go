package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fooddb/diet-service/internal/catalog"
)

// FoodSummary is the list view of one catalog food.
type FoodSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Label         string `json:"label"`
	Category      string `json:"category"`
	BannedReason  string `json:"banned_reason"`
	IsInedible    bool   `json:"is_inedible"`
	IsRare        bool   `json:"is_rare"`
	IsUncooked    bool   `json:"is_uncooked"`
	IsProxy       bool   `json:"is_proxy"`
	EdibilityNote string `json:"edibility_note"`
}

// NutrientInfo is the metadata of one tracked nutrient. Max is nil when
// the nutrient has no default upper limit.
type NutrientInfo struct {
	Name string   `json:"name"`
	Min  float64  `json:"min"`
	Max  *float64 `json:"max"`
	Unit string   `json:"unit"`
}

func bannedReason(f *catalog.Food) string {
	if f.BannedReason == nil {
		return ""
	}
	return *f.BannedReason
}

// ListFoods returns the full catalog for UI filtering and display
// GET /foods
func ListFoods(c *gin.Context) {
	foods := foodCatalog.Foods()
	out := make([]FoodSummary, 0, len(foods))
	for _, f := range foods {
		out = append(out, FoodSummary{
			ID:            f.ID,
			Name:          f.Name,
			Label:         f.Label,
			Category:      f.Category,
			BannedReason:  bannedReason(f),
			IsInedible:    f.Inedible,
			IsRare:        f.Rare,
			IsUncooked:    f.Uncooked,
			IsProxy:       f.ProxyOfEdible,
			EdibilityNote: f.EdibilityNote,
		})
	}
	c.JSON(http.StatusOK, out)
}

// ListNutrients returns nutrient metadata sorted by name
// GET /nutrients
func ListNutrients(c *gin.Context) {
	nutrients := foodCatalog.Nutrients()
	out := make([]NutrientInfo, 0, len(nutrients))
	for _, n := range nutrients {
		info := NutrientInfo{Name: n.Name, Min: n.DailyValue, Unit: n.Unit}
		if n.Maximum != nil {
			v := *n.Maximum
			info.Max = &v
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, out)
}

// RankedFood is one entry of a nutrient density ranking.
type RankedFood struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Label        string  `json:"label"`
	Category     string  `json:"category"`
	Amount       float64 `json:"amount"`
	AmountPerYen float64 `json:"amount_per_yen"`
	Price        float64 `json:"price"`
	Unit         string  `json:"unit"`
	BannedReason string  `json:"banned_reason"`
	IsInedible   bool    `json:"is_inedible"`
	IsRare       bool    `json:"is_rare"`
	IsUncooked   bool    `json:"is_uncooked"`
	IsProxy      bool    `json:"is_proxy"`
}

// rankThreshold keeps only foods with meaningful content; small enough
// that high-density foods like seaweed and spices still qualify.
const rankThreshold = 1e-5

// RankFoods ranks foods by content of one nutrient, optionally by
// content per yen instead
// GET /rank/:nutrient
func RankFoods(c *gin.Context) {
	nutrient := c.Param("nutrient")
	known := false
	for _, n := range foodCatalog.Nutrients() {
		if n.Name == nutrient {
			known = true
			break
		}
	}
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "Nutrient not found"})
		return
	}

	excludeSupplements := c.Query("exclude_supplements") == "true"
	rankByValue := c.Query("rank_by_value") == "true"
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	type candidate struct {
		food  *catalog.Food
		score float64
	}
	var candidates []candidate
	for _, f := range foodCatalog.Foods() {
		amount := f.Nutrients[nutrient]
		if amount <= rankThreshold {
			continue
		}
		if excludeSupplements && f.Supplement {
			continue
		}
		score := amount
		if rankByValue {
			if f.Price == nil || *f.Price <= 0 {
				continue
			}
			score = amount / *f.Price
		}
		candidates = append(candidates, candidate{food: f, score: score})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].food.ID < candidates[j].food.ID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	unit := foodCatalog.Unit(nutrient)
	out := make([]RankedFood, 0, len(candidates))
	for _, cand := range candidates {
		f := cand.food
		price := 0.0
		if f.Price != nil {
			price = *f.Price
		}
		amountPerYen := 0.0
		if price > 0 {
			amountPerYen = f.Nutrients[nutrient] / price
		}
		out = append(out, RankedFood{
			ID:           f.ID,
			Name:         f.Name,
			Label:        f.Label,
			Category:     f.Category,
			Amount:       f.Nutrients[nutrient],
			AmountPerYen: amountPerYen,
			Price:        price,
			Unit:         unit,
			BannedReason: bannedReason(f),
			IsInedible:   f.Inedible,
			IsRare:       f.Rare,
			IsUncooked:   f.Uncooked,
			IsProxy:      f.ProxyOfEdible,
		})
	}
	c.JSON(http.StatusOK, out)
}

// FoodNutrient is one nutrient amount of a food detail view.
type FoodNutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// RecordedPrice is one recorded price observation in a food detail view.
type RecordedPrice struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Package   float64 `json:"package"`
	Unit      string  `json:"unit"`
	PricePerG float64 `json:"price_per_g"`
	Source    string  `json:"source"`
	Note      string  `json:"note"`

	ProxySourceID    string  `json:"proxy_source_id,omitempty"`
	ProxySourceName  string  `json:"proxy_source_name,omitempty"`
	ProxyVia         string  `json:"proxy_via,omitempty"`
	ProxyWeightRatio float64 `json:"proxy_weight_ratio,omitempty"`
}

// FoodDetails is the full detail view of one food.
type FoodDetails struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Label         string          `json:"label"`
	Category      string          `json:"category"`
	CategoryID    string          `json:"category_id"`
	Calories      float64         `json:"CALORIES"`
	Price         *float64        `json:"price"`
	BannedReason  string          `json:"banned_reason"`
	IsInedible    bool            `json:"is_inedible"`
	IsRare        bool            `json:"is_rare"`
	IsUncooked    bool            `json:"is_uncooked"`
	IsProxy       bool            `json:"is_proxy"`
	EdibilityNote string          `json:"edibility_note"`
	Nutrients     []FoodNutrient  `json:"nutrients"`
	Prices        []RecordedPrice `json:"prices"`
}

// GetFood returns the full detail view of one food
// GET /food/:id
func GetFood(c *gin.Context) {
	f, ok := foodCatalog.Food(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
		return
	}

	categoryLabel := categoryNames[f.Category]
	if categoryLabel == "" {
		categoryLabel = "Unknown"
	}

	details := FoodDetails{
		ID:            f.ID,
		Name:          f.Name,
		Label:         f.Label,
		Category:      fmt.Sprintf("%s (%s)", categoryLabel, f.Category),
		CategoryID:    f.Category,
		Calories:      f.Nutrients["CALORIES"],
		Price:         f.Price,
		BannedReason:  bannedReason(f),
		IsInedible:    f.Inedible,
		IsRare:        f.Rare,
		IsUncooked:    f.Uncooked,
		IsProxy:       f.ProxyOfEdible,
		EdibilityNote: f.EdibilityNote,
		Nutrients:     []FoodNutrient{},
		Prices:        []RecordedPrice{},
	}

	for _, n := range foodCatalog.Nutrients() {
		details.Nutrients = append(details.Nutrients, FoodNutrient{
			Name:   n.Name,
			Amount: f.Nutrients[n.Name],
			Unit:   n.Unit,
		})
	}

	for _, p := range foodCatalog.Prices(f.ID) {
		details.Prices = append(details.Prices, RecordedPrice{
			Name:             p.ProductName,
			Price:            p.Price,
			Package:          p.Package,
			Unit:             p.Unit,
			PricePerG:        p.PricePer100g / 100.0,
			Source:           p.Source,
			Note:             p.Note,
			ProxySourceID:    p.ProxySourceID,
			ProxySourceName:  p.ProxySourceName,
			ProxyVia:         p.ProxyVia,
			ProxyWeightRatio: p.ProxyRatio,
		})
	}

	c.JSON(http.StatusOK, details)
}
