package locality

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// FitTrend fits ordinary least squares of local degree on global degree
// through the origin over the whole table and attaches the fitted value and
// residual to every record. The regression has no intercept: a gene with no
// global interactions has no local interactions either.
func FitTrend(t Table) error {
	if len(t) == 0 {
		return errors.New("fit trend: empty table")
	}
	_, beta := stat.LinearRegression(t.Globals(), t.Locals(), nil, true)
	for i := range t {
		t[i].Fitted = beta * t[i].Global
		t[i].Resid = t[i].Local - t[i].Fitted
	}
	return nil
}
