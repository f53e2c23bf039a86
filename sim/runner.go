package sim

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/h2fleet/h2fleet/core/fleet"
	"github.com/h2fleet/h2fleet/core/logger"
)

// StackSummary is the end-of-run state of one stack.
type StackSummary struct {
	Index            int     `json:"index"`
	CycleCount       int     `json:"cycle_count"`
	DegradationV     float64 `json:"degradation_v"`
	LifeFractionUsed float64 `json:"life_fraction_used"`
	StackLifeHours   float64 `json:"stack_life_hours"`
	UptimeHours      float64 `json:"uptime_hours"`
}

// Report summarizes a completed run.
type Report struct {
	RunID        string         `json:"run_id"`
	Policy       string         `json:"policy"`
	Steps        int            `json:"steps"`
	Dt           float64        `json:"dt"`
	HydrogenKg   float64        `json:"hydrogen_kg"`
	EnergyInKWh  float64        `json:"energy_in_kwh"`
	ConsumedKWh  float64        `json:"consumed_kwh"`
	CurtailedKWh float64        `json:"curtailed_kwh"`
	KWhPerKg     float64        `json:"kwh_per_kg"`
	Stacks       []StackSummary `json:"stacks"`
}

// Runner steps a fleet through a power series.
type Runner struct {
	sup *fleet.Supervisor
	dt  float64
	log logger.Logger
}

// NewRunner wires a runner around the supervisor. dt must match the
// stack timestep.
func NewRunner(sup *fleet.Supervisor, dt float64, log logger.Logger) *Runner {
	return &Runner{sup: sup, dt: dt, log: log}
}

// Run drives the fleet over the signal [W per step] and returns the
// aggregate report. It stops early when ctx is canceled, returning the
// partial report together with the context error.
func (r *Runner) Run(ctx context.Context, signal []float64) (Report, error) {
	report := Report{
		RunID:  uuid.NewString(),
		Policy: r.sup.Policy(),
		Dt:     r.dt,
	}
	if r.log != nil {
		r.log.Infof("run %s: %d steps, policy %s", report.RunID, len(signal), report.Policy)
	}

	var consumedJ, energyInJ, curtailedJ float64
	for _, powerIn := range signal {
		if err := ctx.Err(); err != nil {
			r.finalize(&report, consumedJ, energyInJ, curtailedJ)
			return report, err
		}
		res := r.sup.Control(powerIn)
		report.Steps++
		report.HydrogenKg += res.MassOut
		energyInJ += powerIn * r.dt
		curtailedJ += res.Curtailed * r.dt
		consumedJ += (powerIn - res.Curtailed - res.PowerLeft) * r.dt
	}

	r.finalize(&report, consumedJ, energyInJ, curtailedJ)
	if r.log != nil {
		r.log.Infof("run %s done: %.2f kg H2, %.1f kWh consumed, %.1f kWh curtailed",
			report.RunID, report.HydrogenKg, report.ConsumedKWh, report.CurtailedKWh)
	}
	return report, nil
}

func (r *Runner) finalize(report *Report, consumedJ, energyInJ, curtailedJ float64) {
	const jPerKWh = 3.6e6
	report.ConsumedKWh = consumedJ / jPerKWh
	report.EnergyInKWh = energyInJ / jPerKWh
	report.CurtailedKWh = curtailedJ / jPerKWh
	if report.HydrogenKg > 0 {
		report.KWhPerKg = report.ConsumedKWh / report.HydrogenKg
	} else {
		report.KWhPerKg = math.Inf(1)
	}

	for i, stk := range r.sup.Stacks() {
		report.Stacks = append(report.Stacks, StackSummary{
			Index:            i,
			CycleCount:       stk.CycleCount(),
			DegradationV:     stk.Degradation(),
			LifeFractionUsed: stk.LifeFractionUsed(),
			StackLifeHours:   stk.StackLife(),
			UptimeHours:      stk.Uptime() / 3600,
		})
	}
}
