package solver

import "math"

// Row is one linear constraint: Lower ≤ Coeffs·x ≤ Upper.
type Row struct {
	Coeffs []float64
	Lower  float64
	Upper  float64
}

// Program is the assembled linear (or mixed-integer) program handed to
// the solver backend. Integer marks which variables are binary.
type Program struct {
	Objective []float64
	Rows      []Row
	VarLower  []float64
	VarUpper  []float64
	Integer   []bool
}

// Constraint is a declarative description of one program row. Each
// variant produces its coefficient row from the assembly context, which
// keeps row construction testable without invoking a solver.
type Constraint interface {
	Row(a *assembly) Row
}

// assembly carries the shared context rows are built from.
type assembly struct {
	layout layout
	matrix [][]float64 // nutrient content, [activeNutrient][food]
	lower  []float64   // per active nutrient
	upper  []float64   // per active nutrient
}

func (a *assembly) zeroRow() []float64 {
	return make([]float64, a.layout.total())
}

// LowerBound requires nutrient j's achieved amount to reach its lower
// target. Lower bounds are hard.
type LowerBound struct {
	Nutrient int
}

func (c LowerBound) Row(a *assembly) Row {
	coeffs := a.zeroRow()
	for i, v := range a.matrix[c.Nutrient] {
		coeffs[a.layout.amount(i)] = v
	}
	return Row{Coeffs: coeffs, Lower: a.lower[c.Nutrient], Upper: math.Inf(1)}
}

// UpperBoundWithSlack caps nutrient j's achieved amount at its upper
// limit, with the nutrient's slack variable absorbing (and the objective
// penalizing) any excess. Upper bounds are soft.
type UpperBoundWithSlack struct {
	Nutrient int
}

func (c UpperBoundWithSlack) Row(a *assembly) Row {
	coeffs := a.zeroRow()
	for i, v := range a.matrix[c.Nutrient] {
		coeffs[a.layout.amount(i)] = v
	}
	coeffs[a.layout.slack(c.Nutrient)] = -1
	return Row{Coeffs: coeffs, Lower: math.Inf(-1), Upper: a.upper[c.Nutrient]}
}

// Ratio requires achieved(Num) Op Value·achieved(Den), expressed as a
// single combined row compared against zero.
type Ratio struct {
	Num   int
	Den   int
	Op    CompareOp
	Value float64
}

func (c Ratio) Row(a *assembly) Row {
	coeffs := a.zeroRow()
	num, den := a.matrix[c.Num], a.matrix[c.Den]
	for i := range num {
		coeffs[a.layout.amount(i)] = num[i] - c.Value*den[i]
	}
	switch c.Op {
	case OpLE:
		return Row{Coeffs: coeffs, Lower: math.Inf(-1), Upper: 0}
	case OpEQ:
		return Row{Coeffs: coeffs, Lower: 0, Upper: 0}
	default: // OpGE
		return Row{Coeffs: coeffs, Lower: 0, Upper: math.Inf(1)}
	}
}

// SelectionLink ties food i's amount to its binary indicator:
// amount ≤ M·selected, so the indicator must be 1 whenever the amount is
// positive. M is sized from the food's own upper bound.
type SelectionLink struct {
	Food int
	M    float64
}

func (c SelectionLink) Row(a *assembly) Row {
	coeffs := a.zeroRow()
	coeffs[a.layout.amount(c.Food)] = 1
	coeffs[a.layout.selected(c.Food)] = -c.M
	return Row{Coeffs: coeffs, Lower: math.Inf(-1), Upper: 0}
}

// CardinalityCap limits how many foods may be selected.
type CardinalityCap struct {
	Limit int
}

func (c CardinalityCap) Row(a *assembly) Row {
	coeffs := a.zeroRow()
	for i := 0; i < a.layout.foods; i++ {
		coeffs[a.layout.selected(i)] = 1
	}
	return Row{Coeffs: coeffs, Lower: math.Inf(-1), Upper: float64(c.Limit)}
}
