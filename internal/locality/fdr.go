package locality

import (
	"errors"
	"math"

	"github.com/montanaflynn/stats"
)

// Integer z-score thresholds scanned by the gene-specific FDR estimate.
const maxFDRThreshold = 7

// GeneFDR assigns a per-gene empirical FDR to every empirical record. For
// each integer threshold 0..7 it compares the empirical count of genes at or
// above the threshold against the mean per-iteration count in the FDR
// bootstrap population, then writes the ratio into every qualifying
// empirical record. Thresholds are applied in ascending order so each record
// ends up with its FDR at the highest threshold it satisfies. When either
// count is zero the FDR falls back to 1.0. Non-finite z-scores are excluded
// from both counts; records never reaching threshold 0 keep a NaN FDR.
func GeneFDR(loc, fdr Table) {
	for i := range loc {
		loc[i].FDR = math.NaN()
	}

	for threshold := 0; threshold <= maxFDRThreshold; threshold++ {
		z := float64(threshold)

		// Mean qualifying-record count across the bootstrap iterations that
		// have at least one qualifying record.
		perIter := make(map[string]float64)
		for i := range fdr {
			if isFinite(fdr[i].ZScore) && fdr[i].ZScore >= z {
				perIter[fdr[i].Iter]++
			}
		}
		numRandom := 0.0
		if len(perIter) > 0 {
			counts := make([]float64, 0, len(perIter))
			for _, c := range perIter {
				counts = append(counts, c)
			}
			numRandom, _ = stats.Mean(counts)
		}

		numReal := 0
		for i := range loc {
			if isFinite(loc[i].ZScore) && loc[i].ZScore >= z {
				numReal++
			}
		}

		zfdr := 1.0
		if numReal != 0 && numRandom != 0 {
			zfdr = numRandom / float64(numReal)
		}

		for i := range loc {
			if isFinite(loc[i].ZScore) && loc[i].ZScore >= z {
				loc[i].FDR = zfdr
			}
		}
	}
}

// AggregatePValue collapses the empirical table to one mean row for the
// current term and each FDR bootstrap iteration to one mean row, then
// returns the fraction of iteration mean residuals at or above the empirical
// mean residual. The p-value is also stored in the returned empirical row's
// FDR field.
func AggregatePValue(loc, fdr Table) (Record, Table, float64, error) {
	if len(loc) == 0 {
		return Record{}, nil, 0, errors.New("aggregate p-value: empty empirical table")
	}

	empRow := meanRow(loc, loc[0].Term, IterEmpirical)

	// One mean row per bootstrap iteration, in first-seen order.
	var order []string
	groups := make(map[string]Table)
	for i := range fdr {
		if _, ok := groups[fdr[i].Iter]; !ok {
			order = append(order, fdr[i].Iter)
		}
		groups[fdr[i].Iter] = append(groups[fdr[i].Iter], fdr[i])
	}
	if len(order) == 0 {
		return Record{}, nil, 0, errors.New("aggregate p-value: no bootstrap iterations")
	}

	iterRows := make(Table, 0, len(order))
	hits := 0
	for _, iter := range order {
		row := meanRow(groups[iter], loc[0].Term, iter)
		if row.Resid >= empRow.Resid {
			hits++
		}
		iterRows = append(iterRows, row)
	}

	p := float64(hits) / float64(len(iterRows))
	empRow.FDR = p
	return empRow, iterRows, p, nil
}

// meanRow collapses a table to one row holding the mean of every numeric
// column. The window index is averaged too and rounded back to an integer.
func meanRow(t Table, term, iter string) Record {
	n := float64(len(t))
	row := Record{Term: term, Iter: iter}
	windowSum := 0.0
	for i := range t {
		row.Local += t[i].Local
		row.Global += t[i].Global
		row.Fitted += t[i].Fitted
		row.Resid += t[i].Resid
		row.BsStd += t[i].BsStd
		row.ZScore += t[i].ZScore
		windowSum += float64(t[i].Window)
	}
	row.Local /= n
	row.Global /= n
	row.Fitted /= n
	row.Resid /= n
	row.BsStd /= n
	row.ZScore /= n
	row.Window = int(math.Round(windowSum / n))
	return row
}
