package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitPolarizationRoundTrip(t *testing.T) {
	c := newTestCell(t)
	const nCells = 100
	const maxCurrent = 1000.0

	fit, err := FitPolarization(c, nCells, maxCurrent)
	require.NoError(t, err)

	// Inverting the fitted surface must recover the grid currents within
	// a few percent of the rated current over the operating range.
	for _, current := range []float64{300, 500, 800} {
		for _, temp := range []float64{45, 50, 55} {
			powerKW := StackPower(c, current, nCells, temp)
			got := fit.Current(powerKW, temp)
			assert.InDelta(t, current, got, 0.05*maxCurrent,
				"current %v temp %v", current, temp)
		}
	}
}

func TestFitPolarizationMonotonicInPower(t *testing.T) {
	c := newTestCell(t)
	fit, err := FitPolarization(c, 100, 1000)
	require.NoError(t, err)
	prev := fit.Current(10, 50)
	for p := 30.0; p <= 150; p += 20 {
		cur := fit.Current(p, 50)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestFitPolarizationClampsNegative(t *testing.T) {
	fit := &PolarizationFit{coeffs: [6]float64{-100, 0, 0, 0, 0, 0}}
	assert.Zero(t, fit.Current(0, 50))
}

func TestFitPolarizationRejectsBadArgs(t *testing.T) {
	c := newTestCell(t)
	_, err := FitPolarization(c, 0, 1000)
	assert.Error(t, err)
	_, err = FitPolarization(c, 100, 0)
	assert.Error(t, err)
}
