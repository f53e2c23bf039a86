package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h2fleet/h2fleet/core/cell"
	"github.com/h2fleet/h2fleet/core/stack"
	"github.com/h2fleet/h2fleet/sim"
)

func testStack(t *testing.T) *stack.Stack {
	t.Helper()
	s, err := stack.New(stack.Config{
		Cells:       100,
		Temperature: 50,
		Dt:          1,
		MaxCurrent:  1000,
		TurnOnDelay: 0.4,
		Cell:        cell.PEMParams{CellArea: 1000},
		Degradation: stack.DegradationConfig{
			RateSteady:        1e-9,
			RateFatigue:       1e-7,
			RateOnOff:         1e-5,
			EOLEffPercentLoss: 10,
		},
	}, nil)
	require.NoError(t, err)
	return s
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	report := sim.Report{RunID: "r1", Policy: "baseline", Steps: 10, HydrogenKg: 1.5}
	require.NoError(t, WriteReportJSON(&buf, report))
	assert.Contains(t, buf.String(), `"run_id": "r1"`)
	assert.Contains(t, buf.String(), `"hydrogen_kg": 1.5`)
}

func TestWriteHistoryCSV(t *testing.T) {
	stk := testStack(t)
	stk.TurnOn()
	for i := 0; i < 5; i++ {
		stk.Run(100e3)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistoryCSV(&buf, []*stack.Stack{stk}, 1))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6) // header + 5 steps
	assert.Equal(t, []string{"step", "time_s", "voltage_0", "degradation_0", "power_w_0"}, rows[0])
	assert.Equal(t, "100000", rows[1][4])
}
