package cell

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Fit grid bounds, matching the synthetic polarization table of the
// reference model.
const (
	fitCurrentStep = 10.0
	fitTempMin     = 40.0
	fitTempMax     = 60.0
	fitTempStep    = 5.0
)

// PolarizationFit inverts the polarization curve: it maps requested
// stack power and temperature to stack current. The surface
//
//	I = c0 + c1*P + c2*P^2 + c3*T + c4*P*T + c5*T^2
//
// with P in kW and T in degC is linear in its coefficients, so the fit
// is an ordinary least-squares solve over a synthetic power table.
type PolarizationFit struct {
	coeffs [6]float64
}

func fitRow(powerKW, tempC float64) []float64 {
	return []float64{1, powerKW, powerKW * powerKW, tempC, powerKW * tempC, tempC * tempC}
}

// Current returns the stack current [A] for the requested power [kW] at
// the given temperature. Negative extrapolations clamp to zero.
func (f *PolarizationFit) Current(powerKW, tempC float64) float64 {
	row := fitRow(powerKW, tempC)
	var i float64
	for k, c := range f.coeffs {
		i += c * row[k]
	}
	if i < 0 {
		return 0
	}
	return i
}

// FitPolarization builds the synthetic current/temperature grid for the
// cell, evaluates the stack power at each point and solves for the
// inverse-surface coefficients.
func FitPolarization(c Cell, nCells int, maxCurrent float64) (*PolarizationFit, error) {
	if nCells <= 0 || maxCurrent <= 0 {
		return nil, fmt.Errorf("cell: fit requires positive cell count and max current")
	}
	var currents []float64
	for i := 0.0; i <= maxCurrent; i += fitCurrentStep {
		currents = append(currents, i)
	}
	var rows [][]float64
	var targets []float64
	for temp := fitTempMin; temp <= fitTempMax; temp += fitTempStep {
		for _, cur := range currents {
			powerKW := StackPower(c, cur, float64(nCells), temp)
			rows = append(rows, fitRow(powerKW, temp))
			targets = append(targets, cur)
		}
	}

	x := mat.NewDense(len(rows), 6, nil)
	for r, row := range rows {
		x.SetRow(r, row)
	}
	y := mat.NewVecDense(len(targets), targets)

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return nil, fmt.Errorf("cell: polarization fit failed: %w", err)
	}

	var fit PolarizationFit
	for k := 0; k < 6; k++ {
		fit.coeffs[k] = beta.AtVec(k)
	}
	return &fit, nil
}

// StackPower returns the DC power [kW] drawn by nCells series cells at
// the given current and temperature.
func StackPower(c Cell, currentA, nCells, tempC float64) float64 {
	return currentA * c.Voltage(currentA, tempC) * nCells / 1000
}
