package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddb/diet-service/internal/catalog"
)

func filterCatalog() *catalog.Catalog {
	inedible := "inedible"
	foods := []*catalog.Food{
		{ID: "plain", Nutrients: map[string]float64{}, Price: ptr(10)},
		{ID: "banned", Nutrients: map[string]float64{}, Price: ptr(10), BannedReason: &inedible},
		{ID: "frozen", Nutrients: map[string]float64{}, Price: ptr(10), Frozen: true},
		{ID: "perishable", Nutrients: map[string]float64{}, Price: ptr(10), ShelfStable: false},
		{ID: "shelf", Nutrients: map[string]float64{}, Price: ptr(10), ShelfStable: true},
		{ID: "EXTRA_1", Nutrients: map[string]float64{}, Price: ptr(10), Supplement: true, ShelfStable: true},
		{ID: "EXTRA_9", Nutrients: map[string]float64{}, Price: ptr(10), Supplement: true},
		{ID: "unpriced", Nutrients: map[string]float64{}},
	}
	return catalog.New(foods, nil)
}

func ids(foods []*catalog.Food) []string {
	out := make([]string, len(foods))
	for i, f := range foods {
		out[i] = f.ID
	}
	return out
}

func TestWorkingSetFiltering(t *testing.T) {
	s, err := New(filterCatalog(), &stubBackend{}, nil)
	require.NoError(t, err)

	zero := 0.0
	tests := []struct {
		name   string
		mutate func(*Request)
		want   []string
	}{
		{
			"default excludes banned, non-allowlisted supplements and unpriced",
			func(r *Request) {},
			[]string{"plain", "frozen", "perishable", "shelf", "EXTRA_1"},
		},
		{
			"supplements none removes the allowlisted supplement too",
			func(r *Request) { r.SupplementsMode = SupplementsNone },
			[]string{"plain", "frozen", "perishable", "shelf"},
		},
		{
			"supplements all keeps every supplement",
			func(r *Request) { r.SupplementsMode = SupplementsAll },
			[]string{"plain", "frozen", "perishable", "shelf", "EXTRA_1", "EXTRA_9"},
		},
		{
			"constraint max zero bans a food",
			func(r *Request) { r.FoodConstraints = map[string]FoodConstraint{"plain": {Max: &zero}} },
			[]string{"frozen", "perishable", "shelf", "EXTRA_1"},
		},
		{
			"shelf stable only",
			func(r *Request) { r.ShelfStableOnly = true },
			[]string{"shelf", "EXTRA_1"},
		},
		{
			"ban frozen",
			func(r *Request) { r.BanFrozen = true },
			[]string{"plain", "perishable", "shelf", "EXTRA_1"},
		},
		{
			"unpriced foods stay when price weight is zero",
			func(r *Request) { r.WeightPrice = 0 },
			[]string{"plain", "frozen", "perishable", "shelf", "EXTRA_1", "unpriced"},
		},
		{
			"forced stack bypasses bans and filters",
			func(r *Request) {
				r.ShelfStableOnly = true
				r.Stack = []StackEntry{{FoodID: "banned", Amount: 1}, {FoodID: "frozen", Amount: 1}}
			},
			[]string{"banned", "frozen", "shelf", "EXTRA_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{
				WeightPrice:     1,
				SupplementsMode: SupplementsVitCD,
				Mode:            ModeFast,
			}
			tt.mutate(req)
			got := s.workingSet(req)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestActiveNutrientsSortedUnion(t *testing.T) {
	cat := catalog.New(nil, []catalog.Nutrient{
		{Name: "CALCIUM"}, {Name: "IRON"}, {Name: "PROTEIN"}, {Name: "SODIUM"},
	})
	s, err := New(cat, &stubBackend{}, nil)
	require.NoError(t, err)

	req := &Request{
		Lower: map[string]float64{"PROTEIN": 10, "IRON": 5},
		Upper: map[string]float64{"SODIUM": 2},
		Ratios: []RatioConstraint{
			{Num: "CALCIUM", Den: "IRON", Op: OpGE, Ratio: 1},
		},
	}
	assert.Equal(t, []string{"CALCIUM", "IRON", "PROTEIN", "SODIUM"}, s.activeNutrients(req))
}

func TestActiveNutrientsDropsUnknownNames(t *testing.T) {
	cat := catalog.New(nil, []catalog.Nutrient{
		{Name: "IRON"}, {Name: "PROTEIN"},
	})
	s, err := New(cat, &stubBackend{}, nil)
	require.NoError(t, err)

	req := &Request{
		Lower: map[string]float64{"PROTEIN": 10, "PORTEIN": 5},
		Upper: map[string]float64{"UNTRACKED": 2},
		Ratios: []RatioConstraint{
			{Num: "IRON", Den: "MISSING", Op: OpGE, Ratio: 1},
		},
	}
	assert.Equal(t, []string{"IRON", "PROTEIN"}, s.activeNutrients(req))
}
