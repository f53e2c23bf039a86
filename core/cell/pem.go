package cell

import (
	"fmt"
	"math"
)

// PEMParams configures a proton-exchange-membrane cell.
type PEMParams struct {
	// CellArea is the active area [cm^2].
	CellArea float64 `json:"cell_area"`
	// TurndownRatio is the minimum operable power fraction of rating.
	TurndownRatio float64 `json:"turndown_ratio"`
	// MembraneThickness [cm].
	MembraneThickness float64 `json:"membrane_thickness"`
	// WaterContent is the membrane hydration number lambda.
	WaterContent float64 `json:"water_content"`
	// AnodeExchangeDensity is the anode exchange current density at the
	// reference temperature [A/cm^2].
	AnodeExchangeDensity float64 `json:"anode_exchange_current_density"`
	// CathodeExchangeDensity is the cathode exchange current density at
	// the reference temperature [A/cm^2].
	CathodeExchangeDensity float64 `json:"cathode_exchange_current_density"`
	// AnodeActivationEnergy and CathodeActivationEnergy [J/mol] drive the
	// Arrhenius temperature correction of the exchange densities.
	AnodeActivationEnergy   float64 `json:"anode_activation_energy"`
	CathodeActivationEnergy float64 `json:"cathode_activation_energy"`
	// FaradaicF1 [mA^2/cm^4] and FaradaicF2 [-] parametrize the current
	// efficiency fit.
	FaradaicF1 float64 `json:"faradaic_f1"`
	FaradaicF2 float64 `json:"faradaic_f2"`
}

// SetDefaults fills zero fields with reference PEM values.
func (p *PEMParams) SetDefaults() {
	if p.TurndownRatio == 0 {
		p.TurndownRatio = 0.1
	}
	if p.MembraneThickness == 0 {
		p.MembraneThickness = 0.0183
	}
	if p.WaterContent == 0 {
		p.WaterContent = 21
	}
	if p.AnodeExchangeDensity == 0 {
		p.AnodeExchangeDensity = 2e-7
	}
	if p.CathodeExchangeDensity == 0 {
		p.CathodeExchangeDensity = 2e-3
	}
	if p.AnodeActivationEnergy == 0 {
		p.AnodeActivationEnergy = 52500
	}
	if p.CathodeActivationEnergy == 0 {
		p.CathodeActivationEnergy = 18000
	}
	if p.FaradaicF1 == 0 {
		p.FaradaicF1 = 250
	}
	if p.FaradaicF2 == 0 {
		p.FaradaicF2 = 0.96
	}
}

// Validate checks mandatory fields.
func (p PEMParams) Validate() error {
	if p.CellArea <= 0 {
		return fmt.Errorf("cell: cell_area must be positive")
	}
	if p.TurndownRatio <= 0 || p.TurndownRatio >= 1 {
		return fmt.Errorf("cell: turndown_ratio must be in (0,1)")
	}
	return nil
}

// PEMCell implements Cell for a PEM electrolysis cell. The voltage is
// the sum of reversible, activation and ohmic overpotentials; the
// Faradaic efficiency follows the usual two-parameter current density
// fit.
type PEMCell struct {
	params PEMParams
}

// NewPEMCell applies defaults, validates and returns the cell.
func NewPEMCell(params PEMParams) (*PEMCell, error) {
	params.SetDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &PEMCell{params: params}, nil
}

// refTemp is the reference temperature for the exchange density
// Arrhenius correction [K].
const refTemp = 303.15

// Voltage returns the cell voltage at the given current and temperature.
func (c *PEMCell) Voltage(currentA, tempC float64) float64 {
	p := c.params
	tk := tempC + 273.15
	i := currentA / p.CellArea

	urev := 1.229 - 0.0009*(tk-298.15)
	i0a := p.AnodeExchangeDensity * math.Exp(p.AnodeActivationEnergy/GasConstant*(1/refTemp-1/tk))
	i0c := p.CathodeExchangeDensity * math.Exp(p.CathodeActivationEnergy/GasConstant*(1/refTemp-1/tk))
	vact := (GasConstant * tk / Faraday) *
		(math.Asinh(i/(2*i0a)) + math.Asinh(i/(2*i0c)))
	sigma := (0.005139*p.WaterContent - 0.00326) * math.Exp(1268*(1/refTemp-1/tk))
	vohm := i * p.MembraneThickness / sigma

	return urev + vact + vohm
}

// FaradaicEfficiency returns the current efficiency. It tends to zero at
// low current density where recombination losses dominate.
func (c *PEMCell) FaradaicEfficiency(tempC, currentA float64) float64 {
	_ = tempC
	if currentA <= 0 {
		return 0
	}
	j := currentA / c.params.CellArea * 1000 // [mA/cm^2]
	return (j * j / (c.params.FaradaicF1 + j*j)) * c.params.FaradaicF2
}

// MassFlowRate returns the hydrogen production of one cell [kg/s] via
// Faraday's law.
func (c *PEMCell) MassFlowRate(tempC, currentA float64) float64 {
	if currentA <= 0 {
		return 0
	}
	props := c.Properties()
	eta := c.FaradaicEfficiency(tempC, currentA)
	return eta * currentA * props.MolarMass / (props.Electrons * Faraday) / 1000
}

// Area returns the active cell area [cm^2].
func (c *PEMCell) Area() float64 { return c.params.CellArea }

// Properties returns the chemistry constants for H2 production.
func (c *PEMCell) Properties() Properties {
	return Properties{
		MolarMass:     2.016,
		Electrons:     2,
		HHV:           39.44,
		LHV:           33.33,
		TurndownRatio: c.params.TurndownRatio,
	}
}
