package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// fixtureDir builds a minimal but complete data directory: four catalog
// foods, one active supplement, an ancillary amino table, priced entries
// with a proxy, and edibility/rare data.
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "nutrients.csv", `name,fooddb_id,unit,dv,maximum
PROTEIN,PROT-,g,50,
CALORIES,ENERC_KCAL,kcal,0,
SODIUM,,mg,600,
VITAMIN_C,VITC,mg,100,2000
LYSINE,LYS,mg,30,
LINOLEIC_ACID,F18D2N6,mg,10,
`)

	writeFile(t, dir, "foods.csv", `id,name,category,PROT-,ENERC_KCAL,NA,VITC
01001,こむぎ ［小麦粉］ 強力粉,01,11.8,337,Tr,(0)
02001,ふぐ ひれ,10,20.0,90,120,0
03001,ほしいも,02,3.1,303,18,9
04001,だいず もやし 生,04,3.7,29,3,5
`)

	writeFile(t, dir, "foods_amino.csv", `id,PROT-,LYS
01001,99,230
`)

	writeFile(t, dir, "foods_extra.csv", `id,name,category,active,amount_g,VITAMIN_C,CALORIES
EXTRA_1,ビタミンC錠,supplement,TRUE,5,500,2
EXTRA_2,廃番サプリ,supplement,FALSE,5,100,0
EXTRA_3,用量不明,supplement,TRUE,0,100,0
`)

	writeFile(t, dir, "prices.csv", `active,food id,food,price,package,cooked/raw ratio,unit,shelf stable,frozen,source,note
TRUE,01001,強力粉 1kg,¥100,"1,000",,袋,TRUE,FALSE,store-a,
TRUE,01001,強力粉 500g,200,500,,袋,FALSE,FALSE,store-b,
TRUE,04001,もやし ゆで換算,300,100,2,袋,FALSE,FALSE,store-a,boiled
FALSE,02001,ひれ,9999,100,,枚,FALSE,FALSE,store-a,inactive row
`)

	writeFile(t, dir, "price_proxies.csv", `proxy id,target id,proxy name,proxy via,weight ratio
01001,03001,強力粉,dried form,0.5
`)

	writeFile(t, dir, "edibility.csv", `id,inedible,uncooked,proxy of edible form,note
02001,TRUE,FALSE,FALSE,toxic
04001,FALSE,TRUE,FALSE,eat cooked
`)

	writeFile(t, dir, "rare.csv", `id
02001
`)

	return dir
}

func TestLoadAssemblesCatalog(t *testing.T) {
	cat, err := NewLoader(fixtureDir(t)).Load()
	require.NoError(t, err)

	foods := cat.Foods()
	require.Len(t, foods, 5)
	ids := make([]string, len(foods))
	for i, f := range foods {
		ids[i] = f.ID
	}
	// Catalog order, supplements appended last.
	assert.Equal(t, []string{"01001", "02001", "03001", "04001", "EXTRA_1"}, ids)

	names := make([]string, 0)
	for _, n := range cat.Nutrients() {
		names = append(names, n.Name)
	}
	// Sorted by name; LINOLEIC_ACID is dropped at load.
	assert.Equal(t, []string{"CALORIES", "LYSINE", "PROTEIN", "SODIUM", "VITAMIN_C"}, names)

	assert.Equal(t, "g", cat.Unit("PROTEIN"))
	assert.Equal(t, "mg", cat.Unit("SODIUM"))

	lower, upper := cat.DefaultBounds()
	assert.Equal(t, 50.0, lower["PROTEIN"])
	assert.Equal(t, 600.0, lower["SODIUM"])
	assert.Equal(t, map[string]float64{"VITAMIN_C": 2000}, upper)
}

func TestLoadFoodValues(t *testing.T) {
	cat, err := NewLoader(fixtureDir(t)).Load()
	require.NoError(t, err)

	flour, ok := cat.Food("01001")
	require.True(t, ok)
	assert.Equal(t, "こむぎ  強力粉", flour.Label)
	assert.Equal(t, "01", flour.Category)
	assert.Equal(t, 337.0, flour.Nutrients["CALORIES"])
	// NA column feeds SODIUM; Tr and (0) resolve to zero.
	assert.Equal(t, 0.0, flour.Nutrients["SODIUM"])
	assert.Equal(t, 0.0, flour.Nutrients["VITAMIN_C"])
	// New columns from the amino table merge in, existing ones keep the
	// main table's value.
	assert.Equal(t, 230.0, flour.Nutrients["LYSINE"])
	assert.Equal(t, 11.8, flour.Nutrients["PROTEIN"])
}

func TestLoadSupplements(t *testing.T) {
	cat, err := NewLoader(fixtureDir(t)).Load()
	require.NoError(t, err)

	supp, ok := cat.Food("EXTRA_1")
	require.True(t, ok)
	assert.True(t, supp.Supplement)
	// Serving amounts rescale to the per-100g basis: 500mg per 5g serving.
	assert.Equal(t, 10000.0, supp.Nutrients["VITAMIN_C"])
	assert.Equal(t, 40.0, supp.Nutrients["CALORIES"])

	// Inactive and zero-serving rows never make it in.
	_, ok = cat.Food("EXTRA_2")
	assert.False(t, ok)
	_, ok = cat.Food("EXTRA_3")
	assert.False(t, ok)
}

func TestLoadPrices(t *testing.T) {
	cat, err := NewLoader(fixtureDir(t)).Load()
	require.NoError(t, err)

	flour, _ := cat.Food("01001")
	require.NotNil(t, flour.Price)
	// ¥100 per 1000g beats ¥200 per 500g.
	assert.InDelta(t, 10.0, *flour.Price, 1e-9)
	assert.True(t, flour.ShelfStable, "cheapest entry decides the flags")

	entries := cat.Prices("01001")
	require.Len(t, entries, 2)
	assert.LessOrEqual(t, entries[0].PricePer100g, entries[1].PricePer100g)

	// Cooked/raw ratio inflates the effective package size.
	sprouts, _ := cat.Food("04001")
	require.NotNil(t, sprouts.Price)
	assert.InDelta(t, 150.0, *sprouts.Price, 1e-9)

	// Inactive rows contribute nothing.
	fin, _ := cat.Food("02001")
	assert.Nil(t, fin.Price)
}

func TestLoadProxyPrices(t *testing.T) {
	cat, err := NewLoader(fixtureDir(t)).Load()
	require.NoError(t, err)

	dried, _ := cat.Food("03001")
	require.NotNil(t, dried.Price)
	// Proxy at weight ratio 0.5: ¥100 over a 500g effective package.
	assert.InDelta(t, 20.0, *dried.Price, 1e-9)

	entries := cat.Prices("03001")
	require.Len(t, entries, 2)
	assert.Equal(t, "01001", entries[0].ProxySourceID)
	assert.Equal(t, 0.5, entries[0].ProxyRatio)
}

func TestLoadEdibility(t *testing.T) {
	cat, err := NewLoader(fixtureDir(t)).Load()
	require.NoError(t, err)

	fin, _ := cat.Food("02001")
	assert.True(t, fin.Inedible)
	assert.True(t, fin.Rare)
	require.NotNil(t, fin.BannedReason)
	assert.Equal(t, "inedible, rare", *fin.BannedReason)
	assert.Equal(t, "toxic", fin.EdibilityNote)

	sprouts, _ := cat.Food("04001")
	assert.True(t, sprouts.Uncooked)
	assert.Nil(t, sprouts.BannedReason)

	flour, _ := cat.Food("01001")
	assert.Nil(t, flour.BannedReason)
}

func TestLoadOptionalFilesMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nutrients.csv", "name,fooddb_id,unit,dv,maximum\nPROTEIN,PROT-,g,50,\n")
	writeFile(t, dir, "foods.csv", "id,name,category,PROT-\n01001,こめ,01,6.1\n")

	cat, err := NewLoader(dir).Load()
	require.NoError(t, err)
	require.Len(t, cat.Foods(), 1)
	f, _ := cat.Food("01001")
	assert.Nil(t, f.Price)
	assert.Nil(t, f.BannedReason)
}

func TestLoadMissingRequiredFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nutrients.csv", "name,fooddb_id,unit,dv,maximum\nPROTEIN,PROT-,g,50,\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load foods")
}
