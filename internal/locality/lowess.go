package locality

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Defaults matching the conventional lowess parameterization: two thirds of
// the data per local fit, three robustness iterations.
const (
	DefaultLowessFrac  = 2.0 / 3.0
	DefaultLowessIters = 3
)

// Lowess smooths y over x using locally-weighted linear regression with
// tricube distance weights and bisquare robustness reweighting. x must be
// sorted ascending; the returned slice holds the smoothed value at each x.
func Lowess(x, y []float64, frac float64, iters int) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []float64{y[0]}
	}

	k := int(math.Ceil(frac * float64(n)))
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}

	robust := make([]float64, n)
	for i := range robust {
		robust[i] = 1
	}

	smoothed := make([]float64, n)
	for it := 0; it <= iters; it++ {
		lo := 0
		for i := 0; i < n; i++ {
			// Slide the window so it always holds the k nearest neighbors
			// of x[i]; both i and lo advance monotonically.
			for lo+k < n && x[i]-x[lo] > x[lo+k]-x[i] {
				lo++
			}
			smoothed[i] = localFit(x[lo:lo+k], y[lo:lo+k], robust[lo:lo+k], x[i])
		}

		if it == iters {
			break
		}

		// Bisquare robustness weights from the residual spread.
		resid := make([]float64, n)
		absResid := make([]float64, n)
		for i := range resid {
			resid[i] = y[i] - smoothed[i]
			absResid[i] = math.Abs(resid[i])
		}
		s, err := stats.Median(absResid)
		if err != nil || s == 0 {
			break
		}
		for i := range robust {
			u := resid[i] / (6 * s)
			if math.Abs(u) >= 1 {
				robust[i] = 0
			} else {
				robust[i] = (1 - u*u) * (1 - u*u)
			}
		}
	}
	return smoothed
}

// localFit evaluates one weighted linear regression at x0 over a neighbor
// window, combining tricube distance weights with robustness weights.
func localFit(xs, ys, robust []float64, x0 float64) float64 {
	dmax := 0.0
	for _, xv := range xs {
		if d := math.Abs(xv - x0); d > dmax {
			dmax = d
		}
	}

	w := make([]float64, len(xs))
	total := 0.0
	for i, xv := range xs {
		t := 1.0
		if dmax > 0 {
			d := math.Abs(xv-x0) / dmax
			t = 1 - d*d*d
			t = t * t * t
		}
		w[i] = t * robust[i]
		total += w[i]
	}
	if total == 0 {
		// Every neighbor was downweighted to zero; fall back to the plain mean.
		return stat.Mean(ys, nil)
	}

	alpha, beta := stat.LinearRegression(xs, ys, w, false)
	v := alpha + beta*x0
	if !isFinite(v) {
		// Degenerate window (all x identical); the weighted mean is the fit.
		return stat.Mean(ys, w)
	}
	return v
}
