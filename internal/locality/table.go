// Package locality implements the statistical core of the GWAS locality
// test: trend fitting, equal-occupancy windowing, lowess-smoothed residual
// standard deviation estimation, z-scoring, and bootstrap FDR estimation.
package locality

import (
	"math"
	"sort"
)

// Iteration label for the empirical (non-bootstrap) population.
const IterEmpirical = "emp"

// Record is one gene's locality measurement within one population.
type Record struct {
	Gene   string
	Term   string
	Iter   string
	Local  float64
	Global float64
	Fitted float64
	Resid  float64
	Window int
	BsStd  float64
	ZScore float64
	FDR    float64 // per-gene FDR, or the term p-value in aggregate mode
}

// Table is the set of records for one population of one term. Bootstrap
// tables hold one record per gene per iteration.
type Table []Record

// Locals returns the local degree column.
func (t Table) Locals() []float64 {
	out := make([]float64, len(t))
	for i := range t {
		out[i] = t[i].Local
	}
	return out
}

// Globals returns the global degree column.
func (t Table) Globals() []float64 {
	out := make([]float64, len(t))
	for i := range t {
		out[i] = t[i].Global
	}
	return out
}

// MaxGlobal returns the largest global degree in the table, or 0 for an
// empty table.
func (t Table) MaxGlobal() float64 {
	max := 0.0
	for i := range t {
		if t[i].Global > max {
			max = t[i].Global
		}
	}
	return max
}

// SortByFitted stable-sorts the table by fitted value ascending. Ties keep
// their input order so window assignment is deterministic.
func (t Table) SortByFitted() {
	sort.SliceStable(t, func(i, j int) bool { return t[i].Fitted < t[j].Fitted })
}

// SortByGlobal stable-sorts the table by global degree ascending.
func (t Table) SortByGlobal() {
	sort.SliceStable(t, func(i, j int) bool { return t[i].Global < t[j].Global })
}

// SortByZScoreDesc stable-sorts the table by z-score descending. Non-finite
// z-scores sort after all finite ones.
func (t Table) SortByZScoreDesc() {
	sort.SliceStable(t, func(i, j int) bool {
		fi, fj := isFinite(t[i].ZScore), isFinite(t[j].ZScore)
		if fi != fj {
			return fi
		}
		return t[i].ZScore > t[j].ZScore
	})
}

// FilterMaxGlobal returns the records whose global degree does not exceed
// limit, preserving order.
func (t Table) FilterMaxGlobal(limit float64) Table {
	out := make(Table, 0, len(t))
	for i := range t {
		if t[i].Global <= limit {
			out = append(out, t[i])
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
