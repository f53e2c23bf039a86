package stack

import (
	"github.com/h2fleet/h2fleet/internal/rainflow"
)

// fatigueBins is the number of range bins used when aggregating
// rainflow cycles.
const fatigueBins = 10

// nonzero filters out zero samples. Transitions to and from V=0 are
// already captured by the on/off cycle term, so they must not be double
// counted as fatigue.
func nonzero(signal []float64) []float64 {
	var out []float64
	for _, v := range signal {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}

// calcFatigueDegradation runs rainflow counting over the last hour's
// voltage signal and returns the cumulative fatigue voltage penalty.
func (s *Stack) calcFatigueDegradation(signal []float64) float64 {
	cycles := rainflow.CountBinned(nonzero(signal), fatigueBins)
	s.rfTrack += rainflow.WeightedSum(cycles)
	return s.cfg.Degradation.RateFatigue * s.rfTrack
}

// calcSteadyDegradation accumulates the voltage-dwell product.
func (s *Stack) calcSteadyDegradation() float64 {
	s.dS += s.cfg.Degradation.RateSteady * s.cellVoltage * s.cfg.Dt
	return s.dS
}

// calcOnOffDegradation is linear in the cumulative cycle count.
func (s *Stack) calcOnOffDegradation() float64 {
	s.dO = s.cfg.Degradation.RateOnOff * float64(s.cycleCount)
	return s.dO
}

// updateDegradation refreshes the three penalty components. Fatigue is
// only evaluated on hour boundaries, and only when the hourly
// peak-to-peak voltage variation exceeds the noise threshold.
func (s *Stack) updateDegradation() {
	if s.hourChange {
		nz := nonzero(s.voltageSignal)
		if len(nz) > 0 {
			vmin, vmax := nz[0], nz[0]
			for _, v := range nz[1:] {
				if v < vmin {
					vmin = v
				}
				if v > vmax {
					vmax = v
				}
			}
			if (vmax-vmin)/vmax > fatigueThreshold {
				s.fatigueHistory = s.calcFatigueDegradation(s.voltageSignal)
			}
		}
	}

	s.vDeg = s.calcSteadyDegradation() + s.calcOnOffDegradation() + s.fatigueHistory
}
