package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Loader reads the catalog flat files from a data directory.
//
// Required files: nutrients.csv, foods.csv. Everything else (subsidiary
// nutrient tables, supplements, prices, edibility info) is optional and
// simply enriches the catalog when present.
type Loader struct {
	root   string
	logger zerolog.Logger
}

// NewLoader creates a loader rooted at the given data directory.
func NewLoader(root string) *Loader {
	return &Loader{
		root:   root,
		logger: log.With().Str("component", "catalog_loader").Logger(),
	}
}

// table is a parsed sheet with header-indexed column access.
type table struct {
	index map[string]int
	rows  [][]string
}

func (t *table) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) has(col string) bool {
	_, ok := t.index[col]
	return ok
}

func newTable(header []string, rows [][]string) *table {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	return &table{index: index, rows: rows}
}

// readTable loads a CSV file, handling Shift-JIS and UTF-8 BOM input.
func (l *Loader) readTable(name string) (*table, error) {
	data, err := os.ReadFile(filepath.Join(l.root, name))
	if err != nil {
		return nil, err
	}
	decoded, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	r := csv.NewReader(strings.NewReader(decoded))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse %s: empty file", name)
	}
	return newTable(records[0], records[1:]), nil
}

// Load reads every catalog file and assembles the immutable catalog.
func (l *Loader) Load() (*Catalog, error) {
	nutrients, err := l.loadNutrients()
	if err != nil {
		return nil, err
	}

	foods, order, err := l.loadFoods(nutrients)
	if err != nil {
		return nil, err
	}

	// Subsidiary composition tables keyed by the same fooddb column ids.
	for _, name := range []string{
		"foods_amino.csv", "foods_carb.csv", "foods_fatty_acid.csv",
		"foods_fiber.csv", "foods_organic_acid.csv",
	} {
		if err := l.mergeNutrientFile(name, nutrients, foods); err != nil {
			return nil, err
		}
	}
	if err := l.mergeSingleColumn("caffeine.csv", "caffeine", "CAFFEINE", foods); err != nil {
		return nil, err
	}
	if err := l.mergeSingleColumn("isoflavones.csv", "amount", "ISOFLAVONE", foods); err != nil {
		return nil, err
	}

	extra, extraOrder, err := l.loadExtraFoods(nutrients)
	if err != nil {
		return nil, err
	}
	for _, id := range extraOrder {
		if _, dup := foods[id]; dup {
			l.logger.Warn().Str("id", id).Msg("Supplement id collides with a catalog food, skipping")
			continue
		}
		foods[id] = extra[id]
		order = append(order, id)
	}

	priceBook, err := l.loadPrices(foods)
	if err != nil {
		return nil, err
	}

	if err := l.applyEdibility(foods); err != nil {
		return nil, err
	}

	list := make([]*Food, 0, len(order))
	for _, id := range order {
		f := foods[id]
		f.Label = MakeLabel(f.Name)
		list = append(list, f)
	}

	cat := New(list, nutrients)
	cat.SetPriceBook(priceBook)

	l.logger.Info().
		Int("foods", len(list)).
		Int("nutrients", len(nutrients)).
		Int("priced_foods", len(priceBook)).
		Msg("Catalog loaded")
	return cat, nil
}

func (l *Loader) loadNutrients() ([]Nutrient, error) {
	t, err := l.readTable("nutrients.csv")
	if err != nil {
		return nil, fmt.Errorf("load nutrients: %w", err)
	}
	var nutrients []Nutrient
	for _, row := range t.rows {
		name := t.get(row, "name")
		if name == "" || name == "LINOLEIC_ACID" {
			continue
		}
		n := Nutrient{
			Name:       name,
			ColumnID:   t.get(row, "fooddb_id"),
			Unit:       t.get(row, "unit"),
			DailyValue: ParseAmount(t.get(row, "dv")),
		}
		if raw := t.get(row, "maximum"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				n.Maximum = &v
			}
		}
		nutrients = append(nutrients, n)
	}
	return nutrients, nil
}

// columnNames maps a food table header to nutrient names, honoring the
// fooddb column-id renames and the NA → SODIUM special case.
func columnNames(t *table, nutrients []Nutrient) map[string]string {
	byColumn := make(map[string]string, len(nutrients))
	byName := make(map[string]bool, len(nutrients))
	for _, n := range nutrients {
		if n.ColumnID != "" {
			byColumn[n.ColumnID] = n.Name
		}
		byName[n.Name] = true
	}
	byColumn["NA"] = "SODIUM"

	mapping := make(map[string]string)
	for col := range t.index {
		if name, ok := byColumn[col]; ok {
			mapping[col] = name
		} else if byName[col] {
			mapping[col] = col
		}
	}
	return mapping
}

func (l *Loader) loadFoods(nutrients []Nutrient) (map[string]*Food, []string, error) {
	t, err := l.readTable("foods.csv")
	if err != nil {
		return nil, nil, fmt.Errorf("load foods: %w", err)
	}
	mapping := columnNames(t, nutrients)

	foods := make(map[string]*Food, len(t.rows))
	var order []string
	for _, row := range t.rows {
		id := t.get(row, "id")
		if id == "" {
			continue
		}
		f := &Food{
			ID:        id,
			Name:      t.get(row, "name"),
			Category:  t.get(row, "category"),
			Nutrients: make(map[string]float64, len(mapping)),
		}
		for col, name := range mapping {
			f.Nutrients[name] = ParseAmount(t.get(row, col))
		}
		foods[id] = f
		order = append(order, id)
	}
	return foods, order, nil
}

func (l *Loader) mergeNutrientFile(name string, nutrients []Nutrient, foods map[string]*Food) error {
	t, err := l.readTable(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("merge %s: %w", name, err)
	}
	mapping := columnNames(t, nutrients)
	for _, row := range t.rows {
		f, ok := foods[t.get(row, "id")]
		if !ok {
			continue
		}
		for col, nutrient := range mapping {
			// The main table wins when both carry the same nutrient.
			if _, seen := f.Nutrients[nutrient]; !seen {
				f.Nutrients[nutrient] = ParseAmount(t.get(row, col))
			}
		}
	}
	return nil
}

func (l *Loader) mergeSingleColumn(name, fromCol, nutrient string, foods map[string]*Food) error {
	t, err := l.readTable(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("merge %s: %w", name, err)
	}
	for _, row := range t.rows {
		if f, ok := foods[t.get(row, "id")]; ok {
			f.Nutrients[nutrient] = ParseAmount(t.get(row, fromCol))
		}
	}
	return nil
}

// loadExtraFoods reads the supplement table. Amounts there are per
// serving, so they are rescaled to the catalog's per-100g basis.
func (l *Loader) loadExtraFoods(nutrients []Nutrient) (map[string]*Food, []string, error) {
	t, err := l.readTable("foods_extra.csv")
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load extra foods: %w", err)
	}

	byName := make(map[string]bool, len(nutrients))
	for _, n := range nutrients {
		byName[n.Name] = true
	}

	foods := make(map[string]*Food)
	var order []string
	for _, row := range t.rows {
		id := t.get(row, "id")
		if id == "" || !parseBool(t.get(row, "active")) {
			continue
		}
		servingGrams := ParseAmount(t.get(row, "amount_g"))
		if servingGrams <= 0 {
			l.logger.Warn().Str("id", id).Msg("Supplement has no serving size, skipping")
			continue
		}
		scale := 100.0 / servingGrams
		f := &Food{
			ID:         id,
			Name:       t.get(row, "name"),
			Category:   t.get(row, "category"),
			Supplement: true,
			Nutrients:  make(map[string]float64),
		}
		for col := range t.index {
			if byName[col] {
				f.Nutrients[col] = ParseAmount(t.get(row, col)) * scale
			}
		}
		foods[id] = f
		order = append(order, id)
	}
	return foods, order, nil
}

func (l *Loader) applyEdibility(foods map[string]*Food) error {
	rare := make(map[string]bool)
	if t, err := l.readTable("rare.csv"); err == nil {
		for _, row := range t.rows {
			if id := t.get(row, "id"); id != "" {
				rare[id] = true
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load rare foods: %w", err)
	}

	t, err := l.readTable("edibility.csv")
	if errors.Is(err, os.ErrNotExist) {
		if len(rare) == 0 {
			l.logger.Warn().Msg("No edibility or rare data found, ban list is empty")
		}
		t = nil
	} else if err != nil {
		return fmt.Errorf("load edibility: %w", err)
	}

	if t != nil {
		for _, row := range t.rows {
			f, ok := foods[t.get(row, "id")]
			if !ok {
				continue
			}
			f.Inedible = parseBool(t.get(row, "inedible"))
			f.Uncooked = parseBool(t.get(row, "uncooked"))
			f.ProxyOfEdible = parseBool(t.get(row, "proxy of edible form"))
			f.EdibilityNote = t.get(row, "note")
		}
	}

	for id, f := range foods {
		f.Rare = rare[id]
		if f.ProxyOfEdible {
			continue // stands in for an edible form, allowed
		}
		var reasons []string
		if f.Inedible {
			reasons = append(reasons, "inedible")
		}
		if f.Rare {
			reasons = append(reasons, "rare")
		}
		if len(reasons) > 0 {
			reason := strings.Join(reasons, ", ")
			f.BannedReason = &reason
		}
	}
	return nil
}
