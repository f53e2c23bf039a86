// Package sim drives a fleet over a power time series and summarizes
// the run.
package sim

import "math"

// CosineSignal generates a plant power input [W] oscillating around
// half the plant rating, the waveform used by the reference turbine
// coupling examples. ratingMW is the plant rating in MW, cycles the
// number of full oscillations over the series.
func CosineSignal(ratingMW float64, samples, cycles int) []float64 {
	base := ratingMW/2 + 0.2
	variation := ratingMW - base
	signal := make([]float64, samples)
	span := float64(samples - 1)
	if span < 1 {
		span = 1
	}
	for i := range signal {
		angle := float64(cycles) * 2 * math.Pi * float64(i) / span
		signal[i] = (base + variation*math.Cos(angle)) * 1e6
	}
	return signal
}

// ConstantSignal generates a flat power input [W].
func ConstantSignal(powerW float64, samples int) []float64 {
	signal := make([]float64, samples)
	for i := range signal {
		signal[i] = powerW
	}
	return signal
}
