package locality

import "errors"

// Standardizer estimates the residual standard deviation at an arbitrary
// fitted value. It is derived from one bootstrap population's window model:
// the per-window (upper edge, residual SD) pairs are lowess-smoothed into a
// continuous curve queried by nearest-ceiling lookup, clamped outside the
// observed range.
type Standardizer struct {
	curve      *CeilLookup
	ticks      int
	degenerate int // smoothed SD values that are zero or non-finite
}

// NewStandardizer builds the smoothed SD estimator from a window model.
func NewStandardizer(m *WindowModel) (*Standardizer, error) {
	if len(m.Windows) == 0 {
		return nil, errors.New("standardizer: window model has no windows")
	}

	// Window edges ascend by construction, which is what Lowess expects.
	edges := make([]float64, len(m.Windows))
	sds := make([]float64, len(m.Windows))
	for i, w := range m.Windows {
		edges[i] = w.MaxFitted
		sds[i] = w.ResidSD
	}
	smoothed := Lowess(edges, sds, DefaultLowessFrac, DefaultLowessIters)

	s := &Standardizer{
		curve: NewCeilLookup(edges, smoothed),
		ticks: m.Ticks,
	}
	for _, v := range smoothed {
		if v == 0 || !isFinite(v) {
			s.degenerate++
		}
	}
	return s, nil
}

// SD returns the estimated residual standard deviation at a fitted value.
func (s *Standardizer) SD(fitted float64) float64 {
	return s.curve.At(fitted)
}

// Ticks returns the record count per window step of the population the
// standardizer was built from. The FDR population reuses it.
func (s *Standardizer) Ticks() int { return s.ticks }

// DegenerateWindows returns how many points of the smoothed curve carry a
// zero or non-finite SD. Any nonzero count means some z-scores will come out
// non-finite and callers should surface that.
func (s *Standardizer) DegenerateWindows() int { return s.degenerate }
