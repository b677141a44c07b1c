package locality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneFDR_AscendingOverwrite(t *testing.T) {
	loc := Table{
		{Gene: "a", ZScore: 0.5},
		{Gene: "b", ZScore: 1.5},
		{Gene: "c", ZScore: 3.5},
	}
	// Two bootstrap iterations: counts at threshold 0 are (3, 1), at 1 are
	// (1, 1), nothing at 2 and above.
	fdr := Table{
		{Iter: "fdr0", ZScore: 0.2},
		{Iter: "fdr0", ZScore: 0.4},
		{Iter: "fdr0", ZScore: 1.1},
		{Iter: "fdr1", ZScore: 1.9},
	}

	GeneFDR(loc, fdr)

	// threshold 0: numRandom = (3+1)/2 = 2, numReal = 3 -> 2/3
	// threshold 1: numRandom = (1+1)/2 = 1, numReal = 2 -> 1/2
	// thresholds 2..7: numRandom = 0 -> 1.0 overwrites qualifying records
	assert.InDelta(t, 2.0/3.0, geneFDRValue(t, loc, "a"), 1e-12)
	assert.InDelta(t, 0.5, geneFDRValue(t, loc, "b"), 1e-12)
	assert.Equal(t, 1.0, geneFDRValue(t, loc, "c"))
}

func TestGeneFDR_FallbackWhenNoRealOrRandom(t *testing.T) {
	// No bootstrap record qualifies anywhere: every empirical gene falls
	// back to FDR 1.0.
	loc := Table{
		{Gene: "a", ZScore: 2},
		{Gene: "b", ZScore: 4},
	}
	GeneFDR(loc, Table{{Iter: "fdr0", ZScore: -3}})

	assert.Equal(t, 1.0, geneFDRValue(t, loc, "a"))
	assert.Equal(t, 1.0, geneFDRValue(t, loc, "b"))
}

func TestGeneFDR_MeanOverPresentIterationsOnly(t *testing.T) {
	loc := Table{{Gene: "a", ZScore: 1}}
	// Only one of three iterations has a qualifying record at threshold 1;
	// the mean is taken over iterations present in the filtered subset.
	fdr := Table{
		{Iter: "fdr0", ZScore: 1.5},
		{Iter: "fdr0", ZScore: 1.5},
		{Iter: "fdr1", ZScore: -1},
		{Iter: "fdr2", ZScore: -1},
	}
	GeneFDR(loc, fdr)
	assert.InDelta(t, 2.0, geneFDRValue(t, loc, "a"), 1e-12)
}

func TestGeneFDR_NegativeZScoreKeepsNaN(t *testing.T) {
	loc := Table{{Gene: "a", ZScore: -2}}
	GeneFDR(loc, Table{{Iter: "fdr0", ZScore: 5}})
	assert.True(t, math.IsNaN(loc[0].FDR))
}

func TestGeneFDR_NonFiniteExcluded(t *testing.T) {
	loc := Table{
		{Gene: "a", ZScore: 1},
		{Gene: "inf", ZScore: math.Inf(1)},
	}
	fdr := Table{
		{Iter: "fdr0", ZScore: 1},
		{Iter: "fdr0", ZScore: math.NaN()},
	}
	GeneFDR(loc, fdr)

	// Only the finite records count on both sides: 1/1 at thresholds 0..1.
	assert.Equal(t, 1.0, geneFDRValue(t, loc, "a"))
	assert.True(t, math.IsNaN(geneFDRValue(t, loc, "inf")))
}

func TestAggregatePValue(t *testing.T) {
	loc := Table{
		{Term: "t1", Resid: 1, Local: 2, Global: 4, Window: 1},
		{Term: "t1", Resid: 3, Local: 4, Global: 6, Window: 3},
	}
	// Iteration mean residuals: fdr0 -> 3, fdr1 -> 1, fdr2 -> -2.
	fdr := Table{
		{Iter: "fdr0", Resid: 2, Window: 2},
		{Iter: "fdr0", Resid: 4, Window: 4},
		{Iter: "fdr1", Resid: 1},
		{Iter: "fdr2", Resid: -2},
	}

	empRow, iterRows, p, err := AggregatePValue(loc, fdr)
	require.NoError(t, err)

	// Empirical mean residual is 2; iterations at or above it: fdr0 only.
	assert.InDelta(t, 1.0/3.0, p, 1e-12)
	assert.Equal(t, p, empRow.FDR)
	assert.Equal(t, "t1", empRow.Term)
	assert.Equal(t, IterEmpirical, empRow.Iter)
	assert.InDelta(t, 3.0, empRow.Local, 1e-12)
	assert.InDelta(t, 5.0, empRow.Global, 1e-12)
	assert.Equal(t, 2, empRow.Window)
	require.Len(t, iterRows, 3)
	assert.InDelta(t, 3.0, iterRows[0].Resid, 1e-12)
	assert.Equal(t, 3, iterRows[0].Window)
}

func TestAggregatePValue_Bounds(t *testing.T) {
	loc := Table{{Term: "t", Resid: -10}}
	fdr := Table{
		{Iter: "fdr0", Resid: 0},
		{Iter: "fdr1", Resid: 0},
	}
	_, _, p, err := AggregatePValue(loc, fdr)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)

	loc = Table{{Term: "t", Resid: 10}}
	_, _, p, err = AggregatePValue(loc, fdr)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
}

func TestAggregatePValue_Errors(t *testing.T) {
	_, _, _, err := AggregatePValue(Table{}, Table{{Iter: "fdr0"}})
	assert.Error(t, err)

	_, _, _, err = AggregatePValue(Table{{Term: "t"}}, Table{})
	assert.Error(t, err)
}

func geneFDRValue(t *testing.T, tbl Table, gene string) float64 {
	t.Helper()
	for i := range tbl {
		if tbl[i].Gene == gene {
			return tbl[i].FDR
		}
	}
	t.Fatalf("gene %q not in table", gene)
	return 0
}
