// Package cell models a single electrolysis cell: polarization voltage,
// Faradaic efficiency and hydrogen mass flow. Stacks consume it through
// the Cell interface and never depend on a particular chemistry.
package cell

import "fmt"

// Physical constants.
const (
	// Faraday constant [C/mol].
	Faraday = 96485.33212331001
	// Universal gas constant [J/(mol*K)].
	GasConstant = 8.314462618
)

// Properties groups chemistry constants needed by stack-level
// calculations.
type Properties struct {
	// MolarMass of H2 [g/mol].
	MolarMass float64
	// Electrons transferred per H2 molecule.
	Electrons float64
	// Higher heating value of H2 [kWh/kg].
	HHV float64
	// Lower heating value of H2 [kWh/kg].
	LHV float64
	// TurndownRatio is the minimum operable power fraction.
	TurndownRatio float64
}

// Cell is the electrochemical model of one cell.
type Cell interface {
	// Voltage returns the cell voltage [V] at the given current [A] and
	// temperature [degC].
	Voltage(currentA, tempC float64) float64
	// MassFlowRate returns the hydrogen production of one cell [kg/s].
	MassFlowRate(tempC, currentA float64) float64
	// FaradaicEfficiency returns the current efficiency in [0,1].
	FaradaicEfficiency(tempC, currentA float64) float64
	// Area returns the active cell area [cm^2].
	Area() float64
	Properties() Properties
}

// New builds a Cell for the given chemistry tag. Only "PEM" is
// supported; any other tag is a configuration error.
func New(cellType string, params PEMParams) (Cell, error) {
	switch cellType {
	case "PEM":
		return NewPEMCell(params)
	default:
		return nil, fmt.Errorf("cell: unsupported cell type %q", cellType)
	}
}
