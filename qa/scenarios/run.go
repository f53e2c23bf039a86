package scenarios

import (
	"testing"

	"github.com/h2fleet/h2fleet/core/fleet"
	coremetrics "github.com/h2fleet/h2fleet/core/metrics"
	"github.com/h2fleet/h2fleet/core/stack"
	"github.com/h2fleet/h2fleet/infra/logger"
	"github.com/h2fleet/h2fleet/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	cfg := fleet.Config{
		NStacks: sc.NStacks,
		Policy:  sc.Policy,
		Stack: stack.Config{
			Cells:       sc.Stack.Cells,
			Temperature: sc.Stack.Temperature,
			Dt:          1,
			MaxCurrent:  sc.Stack.MaxCurrent,
			TurnOnDelay: sc.Stack.TurnOnDelay,
			RatingKW:    sc.Stack.RatingKW,
			MinPowerW:   sc.Stack.MinPowerW,
			Degradation: stack.DegradationConfig{
				RateSteady:        1e-9,
				RateFatigue:       1e-7,
				RateOnOff:         1e-5,
				EOLEffPercentLoss: 10,
			},
		},
	}
	cfg.Stack.Cell.CellArea = sc.Stack.CellArea

	bus := eventbus.New()
	defer bus.Close()
	sup, err := fleet.New(cfg, logger.NopLogger{}, coremetrics.NopSink{}, bus)
	if err != nil {
		t.Fatalf("fleet: %v", err)
	}

	var hydrogen float64
	for _, powerIn := range sc.Signal() {
		res := sup.Control(powerIn)
		hydrogen += res.MassOut
	}

	on := 0
	for _, stk := range sup.Stacks() {
		if stk.On() {
			on++
		}
	}
	if on != sc.Expected.FinalOn {
		t.Errorf("scenario %s expected %d stacks on, got %d", sc.Name, sc.Expected.FinalOn, on)
	}
	if hydrogen < sc.Expected.MinHydrogenKg {
		t.Errorf("scenario %s expected at least %g kg, got %g", sc.Name, sc.Expected.MinHydrogenKg, hydrogen)
	}
}
