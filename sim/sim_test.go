package sim

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h2fleet/h2fleet/core/cell"
	"github.com/h2fleet/h2fleet/core/fleet"
	"github.com/h2fleet/h2fleet/core/stack"
)

func testSupervisor(t *testing.T) *fleet.Supervisor {
	t.Helper()
	cfg := fleet.Config{
		NStacks: 2,
		Policy:  fleet.PolicyEqualSplitEager,
		Stack: stack.Config{
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
		},
	}
	s, err := fleet.New(cfg, nil, nil, nil)
	require.NoError(t, err)
	return s
}

func TestCosineSignalShape(t *testing.T) {
	signal := CosineSignal(3.4, 100, 4)
	require.Len(t, signal, 100)

	base := (3.4/2 + 0.2) * 1e6
	peak := 3.4 * 1e6
	assert.InDelta(t, peak, signal[0], 1)
	for _, v := range signal {
		assert.GreaterOrEqual(t, v, 2*base-peak-1)
		assert.LessOrEqual(t, v, peak+1)
	}
	// an integer number of cycles ends where it started
	assert.InDelta(t, signal[0], signal[len(signal)-1], 1)
}

func TestCosineSignalSingleSample(t *testing.T) {
	signal := CosineSignal(3.4, 1, 4)
	require.Len(t, signal, 1)
	assert.False(t, math.IsNaN(signal[0]))
	assert.InDelta(t, 3.4e6, signal[0], 1)
}

func TestLoadSeriesFormats(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "series.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("power_w: [100, 200.5, 300]\n"), 0o644))
	got, err := LoadSeries(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200.5, 300}, got)

	jsonPath := filepath.Join(dir, "series.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"power_w":[1,2,3]}`), 0o644))
	got, err = LoadSeries(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got)

	csvPath := filepath.Join(dir, "series.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("power_w\n1000\n2000\n"), 0o644))
	got, err = LoadSeries(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 2000}, got)

	_, err = LoadSeries(filepath.Join(dir, "series.txt"))
	assert.Error(t, err)
}

func TestRunnerAggregatesRun(t *testing.T) {
	r := NewRunner(testSupervisor(t), 1, nil)
	signal := ConstantSignal(150e3, 120)

	report, err := r.Run(context.Background(), signal)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, fleet.PolicyEqualSplitEager, report.Policy)
	assert.Equal(t, 120, report.Steps)
	assert.Greater(t, report.HydrogenKg, 0.0)
	assert.InDelta(t, 150e3*120/3.6e6, report.EnergyInKWh, 1e-6)
	assert.Greater(t, report.ConsumedKWh, 0.0)
	assert.False(t, math.IsInf(report.KWhPerKg, 1))
	require.Len(t, report.Stacks, 2)
	assert.Greater(t, report.Stacks[0].UptimeHours, 0.0)
}

func TestRunnerStopsOnCanceledContext(t *testing.T) {
	r := NewRunner(testSupervisor(t), 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := r.Run(ctx, ConstantSignal(150e3, 100))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Steps)
}
