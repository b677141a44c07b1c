package locality

import (
	"errors"

	"github.com/montanaflynn/stats"
)

// Window summarizes one equal-occupancy slice of the fitted-value axis.
type Window struct {
	Index     int
	MaxFitted float64 // upper edge: largest fitted value observed in the window
	Count     int
	ResidSD   float64 // sample standard deviation of residuals
}

// WindowModel is the read-only windowing derived from one bootstrap
// population. Ticks is the number of records per window index step; the FDR
// population reuses it for its own window assignment.
type WindowModel struct {
	Windows []Window
	Ticks   int
}

// BuildWindows sorts the table by fitted value and partitions it into
// approximately equal-occupancy windows of the requested size, writing the
// window index into each record. A population smaller than one window
// collapses into a single window. A final window holding fewer than half the
// requested size merges into its predecessor.
func BuildWindows(t Table, windowSize int) (*WindowModel, error) {
	if len(t) == 0 {
		return nil, errors.New("build windows: empty table")
	}
	if windowSize <= 0 {
		return nil, errors.New("build windows: window size must be positive")
	}

	t.SortByFitted()

	numWindows := len(t) / windowSize
	if numWindows < 1 {
		numWindows = 1
	}
	ticks := len(t) / numWindows

	for i := range t {
		t[i].Window = i / ticks
	}

	// Merge an under-populated final window into its predecessor.
	maxWindow := t[len(t)-1].Window
	if maxWindow > 0 {
		lastCount := 0
		for i := range t {
			if t[i].Window == maxWindow {
				lastCount++
			}
		}
		// Compare against the real-valued half so odd window sizes merge a
		// final window of exactly floor(windowSize/2) records too.
		if 2*lastCount < windowSize {
			for i := range t {
				if t[i].Window == maxWindow {
					t[i].Window = maxWindow - 1
				}
			}
		}
	}

	m := &WindowModel{Ticks: ticks}
	start := 0
	for start < len(t) {
		end := start
		for end < len(t) && t[end].Window == t[start].Window {
			end++
		}
		resids := make([]float64, 0, end-start)
		for i := start; i < end; i++ {
			resids = append(resids, t[i].Resid)
		}
		// Single-record windows yield a NaN sample SD; downstream z-scoring
		// reports those as non-finite instead of dividing silently.
		sd, _ := stats.StandardDeviationSample(resids)
		m.Windows = append(m.Windows, Window{
			Index:     t[start].Window,
			MaxFitted: t[end-1].Fitted, // sorted, so the last record holds the max
			Count:     end - start,
			ResidSD:   sd,
		})
		start = end
	}
	return m, nil
}

// WindowAt returns the window index for an arbitrary fitted value using the
// nearest-ceiling rule over the window upper edges.
func (m *WindowModel) WindowAt(fitted float64) int {
	keys := make([]float64, len(m.Windows))
	vals := make([]float64, len(m.Windows))
	for i, w := range m.Windows {
		keys[i] = w.MaxFitted
		vals[i] = float64(w.Index)
	}
	return int(NewCeilLookup(keys, vals).At(fitted))
}
