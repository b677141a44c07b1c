package locality

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowess_ConstantSeries(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{7, 7, 7, 7, 7}

	got := Lowess(x, y, DefaultLowessFrac, DefaultLowessIters)
	for i, v := range got {
		assert.InDelta(t, 7.0, v, 1e-9, "index %d", i)
	}
}

func TestLowess_RecoversLinearTrend(t *testing.T) {
	n := 50
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = 3*x[i] + 1
	}

	got := Lowess(x, y, DefaultLowessFrac, DefaultLowessIters)
	for i := range got {
		assert.InDelta(t, y[i], got[i], 1e-6, "index %d", i)
	}
}

func TestLowess_SmoothsNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 100
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = 5 + rng.NormFloat64()
	}

	got := Lowess(x, y, DefaultLowessFrac, DefaultLowessIters)

	// The smoothed curve must have a smaller spread than the raw series.
	rawSpread := spread(y)
	smoothSpread := spread(got)
	assert.Less(t, smoothSpread, rawSpread)
}

func TestLowess_Degenerate(t *testing.T) {
	assert.Nil(t, Lowess(nil, nil, DefaultLowessFrac, DefaultLowessIters))
	assert.Equal(t, []float64{4}, Lowess([]float64{1}, []float64{4}, DefaultLowessFrac, DefaultLowessIters))

	// All x identical: the fit degrades to the mean instead of NaN.
	got := Lowess([]float64{2, 2, 2}, []float64{1, 2, 3}, DefaultLowessFrac, DefaultLowessIters)
	for _, v := range got {
		assert.InDelta(t, 2.0, v, 1e-9)
	}
}

func spread(v []float64) float64 {
	min, max := v[0], v[0]
	for _, x := range v {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return max - min
}
