package solver

// layout maps the program's logical variables onto the flat solution
// vector so assembly and projection never manipulate raw offsets.
//
// Fast mode:     [ amount[0..F) | slack[0..N) ]
// Accurate mode: [ amount[0..F) | selected[0..F) | slack[0..N) ]
type layout struct {
	foods     int
	nutrients int
	mode      Mode
}

func newLayout(foods, nutrients int, mode Mode) layout {
	return layout{foods: foods, nutrients: nutrients, mode: mode}
}

// amount is the index of food i's amount variable (100g units).
func (l layout) amount(i int) int { return i }

// selected is the index of food i's binary selection indicator.
// Only valid in accurate mode.
func (l layout) selected(i int) int { return l.foods + i }

// slack is the index of nutrient j's upper-bound violation variable.
func (l layout) slack(j int) int {
	if l.mode == ModeAccurate {
		return 2*l.foods + j
	}
	return l.foods + j
}

// total is the full variable count.
func (l layout) total() int {
	if l.mode == ModeAccurate {
		return 2*l.foods + l.nutrients
	}
	return l.foods + l.nutrients
}
