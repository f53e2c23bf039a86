package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCell(t *testing.T) *PEMCell {
	t.Helper()
	c, err := NewPEMCell(PEMParams{CellArea: 1000})
	require.NoError(t, err)
	return c
}

func TestNewRejectsUnknownChemistry(t *testing.T) {
	_, err := New("alkaline", PEMParams{CellArea: 1000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported cell type")
}

func TestNewPEMCellValidation(t *testing.T) {
	_, err := NewPEMCell(PEMParams{})
	assert.Error(t, err)
	_, err = NewPEMCell(PEMParams{CellArea: 1000, TurndownRatio: 1.5})
	assert.Error(t, err)
}

func TestVoltageMonotonicInCurrent(t *testing.T) {
	c := newTestCell(t)
	prev := c.Voltage(0, 50)
	assert.InDelta(t, 1.2, prev, 0.1, "open-circuit voltage near reversible potential")
	for i := 100.0; i <= 1000; i += 100 {
		v := c.Voltage(i, 50)
		assert.Greater(t, v, prev, "voltage must grow with current")
		prev = v
	}
}

func TestVoltageDropsWithTemperature(t *testing.T) {
	c := newTestCell(t)
	assert.Greater(t, c.Voltage(500, 40), c.Voltage(500, 60))
}

func TestFaradaicEfficiencyBounds(t *testing.T) {
	c := newTestCell(t)
	assert.Zero(t, c.FaradaicEfficiency(50, 0))
	for i := 50.0; i <= 1000; i += 50 {
		eta := c.FaradaicEfficiency(50, i)
		assert.Greater(t, eta, 0.0)
		assert.Less(t, eta, 1.0)
	}
	// efficiency saturates towards F2 at high current density
	assert.InDelta(t, 0.96, c.FaradaicEfficiency(50, 1000), 0.01)
}

func TestMassFlowRate(t *testing.T) {
	c := newTestCell(t)
	assert.Zero(t, c.MassFlowRate(50, 0))
	low := c.MassFlowRate(50, 200)
	high := c.MassFlowRate(50, 800)
	assert.Greater(t, high, 4*low*0.9, "mass flow roughly proportional to current")
	// order of magnitude: eta*I*M/(n*F)/1000 at 800 A is ~8e-6 kg/s
	assert.InDelta(t, 8e-6, high, 2e-6)
}
