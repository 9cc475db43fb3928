package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// loadPrices reads the price sheet (prices.csv, or prices.xlsx when the
// csv is absent), expands proxy-derived entries, attaches the cheapest
// per-100g price to each food and returns the full price book.
func (l *Loader) loadPrices(foods map[string]*Food) (map[string][]PriceEntry, error) {
	t, err := l.readTable("prices.csv")
	if errors.Is(err, os.ErrNotExist) {
		t, err = l.readPriceSheet("prices.xlsx")
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Warn().Msg("No price data found, prices unknown for all foods")
			return map[string][]PriceEntry{}, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}

	var entries []PriceEntry
	for _, row := range t.rows {
		if !parseBool(t.get(row, "active")) {
			continue
		}
		id := t.get(row, "food id")
		if id == "" {
			continue
		}
		price, ok := ParsePrice(t.get(row, "price"))
		if !ok {
			continue
		}
		pkg := ParseAmount(t.get(row, "package"))
		if pkg <= 0 {
			continue
		}
		cookedRaw := ParseAmount(t.get(row, "cooked/raw ratio"))
		if cookedRaw <= 0 {
			cookedRaw = 1
		}
		entries = append(entries, PriceEntry{
			FoodID:       id,
			ProductName:  t.get(row, "food"),
			Price:        price,
			Package:      pkg,
			Unit:         t.get(row, "unit"),
			CookedRaw:    cookedRaw,
			PricePer100g: price / (pkg * cookedRaw) * 100,
			ShelfStable:  parseBool(t.get(row, "shelf stable")),
			Frozen:       parseBool(t.get(row, "frozen")),
			Source:       t.get(row, "source"),
			Note:         t.get(row, "note"),
		})
	}

	entries = append(entries, l.proxyEntries(entries)...)

	book := make(map[string][]PriceEntry)
	for _, e := range entries {
		book[e.FoodID] = append(book[e.FoodID], e)
	}
	for id := range book {
		es := book[id]
		sort.Slice(es, func(i, j int) bool { return es[i].PricePer100g < es[j].PricePer100g })
		if f, ok := foods[id]; ok {
			cheapest := es[0]
			price := cheapest.PricePer100g
			f.Price = &price
			f.ShelfStable = cheapest.ShelfStable
			f.Frozen = cheapest.Frozen
		}
	}
	return book, nil
}

// proxyEntries generates price entries for foods whose price is inferred
// from a related food (e.g. dried form priced via the fresh form), with
// the package size scaled by the weight ratio.
func (l *Loader) proxyEntries(entries []PriceEntry) []PriceEntry {
	t, err := l.readTable("price_proxies.csv")
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		l.logger.Warn().Err(err).Msg("Failed to read price proxies, skipping")
		return nil
	}

	byFood := make(map[string][]PriceEntry)
	for _, e := range entries {
		byFood[e.FoodID] = append(byFood[e.FoodID], e)
	}

	var derived []PriceEntry
	for _, row := range t.rows {
		proxyID := t.get(row, "proxy id")
		targetID := t.get(row, "target id")
		if proxyID == "" || targetID == "" {
			continue
		}
		ratio := ParseAmount(t.get(row, "weight ratio"))
		if ratio <= 0 {
			ratio = 1
		}
		for _, src := range byFood[proxyID] {
			e := src
			e.FoodID = targetID
			e.Package = src.Package * ratio
			e.PricePer100g = src.Price / (e.Package * src.CookedRaw) * 100
			e.ProxySourceID = proxyID
			e.ProxySourceName = t.get(row, "proxy name")
			e.ProxyVia = t.get(row, "proxy via")
			e.ProxyRatio = ratio
			derived = append(derived, e)
		}
	}
	return derived
}

// readPriceSheet loads an xlsx export of the price sheet into the same
// tabular form as the csv variant.
func (l *Loader) readPriceSheet(name string) (*table, error) {
	path := filepath.Join(l.root, name)
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("open %s: no sheets", name)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: empty sheet", name)
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return newTable(header, rows[1:]), nil
}
