package catalog

import "sort"

// Food is a single catalog entry with nutrient content per 100g.
// The catalog is built once at startup and never mutated afterwards,
// so Food values may be shared freely between concurrent requests.
type Food struct {
	ID       string
	Name     string
	Label    string
	Category string

	// Nutrients maps nutrient name to amount per 100g. Missing entries
	// mean zero content.
	Nutrients map[string]float64

	// Price per 100g in yen. Nil means no recorded price.
	Price *float64

	Supplement  bool
	ShelfStable bool
	Frozen      bool

	// BannedReason is non-nil when the food is excluded by default
	// (e.g. "inedible", "rare", or both joined by ", ").
	BannedReason *string

	// Edibility flags kept for display and ranking.
	Inedible      bool
	Rare          bool
	Uncooked      bool
	ProxyOfEdible bool
	EdibilityNote string
}

// Nutrient holds the metadata for one tracked nutrient.
type Nutrient struct {
	Name     string
	ColumnID string // column id used by the food table headers
	Unit     string

	// DailyValue is the default lower target; Maximum the default upper
	// limit (nil = unlimited).
	DailyValue float64
	Maximum    *float64
}

// PriceEntry is one recorded price observation for a food. The cheapest
// entry per food feeds the optimizer; the full list backs the detail view.
type PriceEntry struct {
	FoodID       string
	ProductName  string
	Price        float64 // total package price
	Package      float64 // package size in grams
	Unit         string
	CookedRaw    float64 // cooked/raw weight ratio
	PricePer100g float64
	ShelfStable  bool
	Frozen       bool
	Source       string
	Note         string

	// Proxy provenance, set when the entry was derived from another
	// food's price via price_proxies.csv.
	ProxySourceID   string
	ProxySourceName string
	ProxyVia        string
	ProxyRatio      float64
}

// Catalog is the immutable food and nutrient table shared by all requests.
type Catalog struct {
	foods     []*Food
	byID      map[string]*Food
	nutrients []Nutrient
	units     map[string]string
	prices    map[string][]PriceEntry
}

// New assembles a catalog from loaded foods and nutrient metadata.
// Nutrients are kept sorted by name so iteration order is reproducible.
func New(foods []*Food, nutrients []Nutrient) *Catalog {
	sorted := make([]Nutrient, len(nutrients))
	copy(sorted, nutrients)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	c := &Catalog{
		foods:     foods,
		byID:      make(map[string]*Food, len(foods)),
		nutrients: sorted,
		units:     make(map[string]string, len(sorted)),
		prices:    make(map[string][]PriceEntry),
	}
	for _, f := range foods {
		c.byID[f.ID] = f
	}
	for _, n := range sorted {
		c.units[n.Name] = n.Unit
	}
	return c
}

// SetPriceBook attaches the full list of recorded prices per food id.
func (c *Catalog) SetPriceBook(prices map[string][]PriceEntry) {
	c.prices = prices
}

// Foods returns all foods in catalog order.
func (c *Catalog) Foods() []*Food {
	return c.foods
}

// Food looks up a food by id.
func (c *Catalog) Food(id string) (*Food, bool) {
	f, ok := c.byID[id]
	return f, ok
}

// Nutrients returns nutrient metadata sorted by name.
func (c *Catalog) Nutrients() []Nutrient {
	return c.nutrients
}

// Unit returns the display unit for a nutrient, or "" if unknown.
func (c *Catalog) Unit(name string) string {
	return c.units[name]
}

// Prices returns every recorded price entry for a food, cheapest first.
func (c *Catalog) Prices(foodID string) []PriceEntry {
	return c.prices[foodID]
}

// DefaultBounds builds the default lower-target and upper-limit maps from
// nutrient metadata. Foods with no recorded maximum are omitted from the
// upper map, which callers treat as unlimited.
func (c *Catalog) DefaultBounds() (lower map[string]float64, upper map[string]float64) {
	lower = make(map[string]float64, len(c.nutrients))
	upper = make(map[string]float64)
	for _, n := range c.nutrients {
		lower[n.Name] = n.DailyValue
		if n.Maximum != nil {
			upper[n.Name] = *n.Maximum
		}
	}
	return lower, upper
}
