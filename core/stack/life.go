package stack

import (
	"math"

	"github.com/h2fleet/h2fleet/core/cell"
)

// calcEndOfLifeVoltage solves for the voltage penalty that corresponds
// to the configured efficiency loss: the current required to reproduce
// the nameplate mass flow at end-of-life efficiency is found through
// the Faradaic efficiency, and the equivalent voltage gap is inferred
// at rated current.
func (s *Stack) calcEndOfLifeVoltage() float64 {
	cfg := s.cfg
	props := s.cell.Properties()
	eolMult := (100 + cfg.Degradation.EOLEffPercentLoss) / 100

	vBol := s.cell.Voltage(cfg.MaxCurrent, cfg.Temperature)
	mfrBol := s.cell.MassFlowRate(cfg.Temperature, cfg.MaxCurrent) * float64(cfg.Cells)
	mfrEol := mfrBol / eolMult

	// g/s * C/mol / (g/mol) = A, first without Faradaic losses, then
	// corrected with the efficiency at that current.
	iNoLoss := mfrEol * 1e3 * props.Electrons * cell.Faraday / (float64(cfg.Cells) * props.MolarMass)
	nf := s.cell.FaradaicEfficiency(cfg.Temperature, iNoLoss)
	if nf == 0 {
		return 0
	}
	iEol := mfrEol * 1e3 * props.Electrons * cell.Faraday / (nf * float64(cfg.Cells) * props.MolarMass)

	return cfg.MaxCurrent*vBol/iEol - vBol
}

// EndOfLifeVoltage returns the voltage penalty threshold [V] at which
// the stack is considered end of life.
func (s *Stack) EndOfLifeVoltage() float64 { return s.dEol }

// LifeFractionUsed returns V_degradation relative to the end-of-life
// threshold. A zero threshold reports zero, the degenerate healthy
// state.
func (s *Stack) LifeFractionUsed() float64 {
	if s.dEol == 0 {
		return 0
	}
	return s.vDeg / s.dEol
}

// TimeUntilReplacement extrapolates calendar hours between
// replacements from the elapsed simulation time. A stack with no
// degradation returns +Inf.
func (s *Stack) TimeUntilReplacement() float64 {
	frac := s.LifeFractionUsed()
	if frac == 0 {
		return math.Inf(1)
	}
	return (1 / frac) * (s.simTime / 3600)
}

// StackLife extrapolates operating hours until end of life from the
// accumulated uptime. A stack with no degradation returns +Inf.
func (s *Stack) StackLife() float64 {
	frac := s.LifeFractionUsed()
	if frac == 0 {
		return math.Inf(1)
	}
	return (1 / frac) * (s.uptime / 3600)
}

// ElectrolysisEfficiency returns the specific energy [kWh/kg] and the
// HHV/LHV percentage efficiencies for the given power [kW] and mass
// flow [kg/h]. Zero mass flow returns +Inf specific energy and zero
// percentages.
func (s *Stack) ElectrolysisEfficiency(powerKW, mfrKgPerH float64) (kwhPerKg, hhvPct, lhvPct float64) {
	if mfrKgPerH == 0 {
		return math.Inf(1), 0, 0
	}
	props := s.cell.Properties()
	kwhPerKg = powerKW / mfrKgPerH
	hhvPct = props.HHV / kwhPerKg * 100
	lhvPct = props.LHV / kwhPerKg * 100
	return kwhPerKg, hhvPct, lhvPct
}

// YearlyPerformance is the projected performance of one plant year.
type YearlyPerformance struct {
	Refurbished bool
	HydrogenKg  float64
	EnergyKWh   float64
}

// EstimateYearlyPerformance replays the recorded power-input history
// over the given plant life, carrying degradation forward year over
// year. When the projected penalty crosses the end-of-life threshold
// within a year, the stack is refurbished and the remaining steps
// restart from the fresh degradation trajectory.
func (s *Stack) EstimateYearlyPerformance(plantLifeYears int) []YearlyPerformance {
	simLen := len(s.powerHistory)
	if simLen == 0 || plantLifeYears <= 0 {
		return nil
	}

	years := make([]YearlyPerformance, plantLifeYears)
	vdeg0 := 0.0
	for y := 0; y < plantLifeYears; y++ {
		projected := make([]float64, simLen)
		for i, d := range s.degradationHistory {
			projected[i] = vdeg0 + d
		}
		for i, d := range projected {
			if d > s.dEol {
				// refurbish: restart the degradation trajectory mid-year
				copy(projected[i:], s.degradationHistory[i:])
				years[y].Refurbished = true
				break
			}
		}

		for i, powerIn := range s.powerHistory {
			iNom := s.fit.Current(powerIn/1e3, s.cfg.Temperature)
			vCell := s.cell.Voltage(iNom, s.cfg.Temperature)
			iStack := iNom
			if s.cfg.PenaltyMode == PenaltyHydrogen && vCell > 0 {
				iStack = iNom / ((vCell + projected[i]) / vCell)
			}
			years[y].HydrogenKg += s.cell.MassFlowRate(s.cfg.Temperature, iStack) * float64(s.cfg.Cells) * s.cfg.Dt
			powerKW := iStack * (vCell + projected[i]) * float64(s.cfg.Cells) / 1000
			years[y].EnergyKWh += powerKW * s.cfg.Dt / 3600
		}
		vdeg0 = projected[simLen-1]
	}
	return years
}
