package locality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTrend_ThroughOrigin(t *testing.T) {
	// local = 2 * global exactly: residuals vanish and the line passes
	// through the origin.
	tbl := Table{
		{Gene: "a", Local: 2, Global: 1},
		{Gene: "b", Local: 4, Global: 2},
		{Gene: "c", Local: 8, Global: 4},
	}
	require.NoError(t, FitTrend(tbl))

	for _, r := range tbl {
		assert.InDelta(t, 2*r.Global, r.Fitted, 1e-12)
		assert.InDelta(t, 0, r.Resid, 1e-12)
	}
}

func TestFitTrend_Residuals(t *testing.T) {
	tbl := Table{
		{Gene: "a", Local: 3, Global: 1},
		{Gene: "b", Local: 3, Global: 2},
		{Gene: "c", Local: 3, Global: 3},
	}
	require.NoError(t, FitTrend(tbl))

	// beta = sum(xy)/sum(x^2) = (3+6+9)/(1+4+9) = 18/14
	beta := 18.0 / 14.0
	for _, r := range tbl {
		assert.InDelta(t, beta*r.Global, r.Fitted, 1e-12)
		assert.InDelta(t, r.Local-beta*r.Global, r.Resid, 1e-12)
	}
}

func TestFitTrend_Empty(t *testing.T) {
	assert.Error(t, FitTrend(Table{}))
}
