package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/h2fleet/h2fleet/core/metrics"
)

// PromSink exposes fleet and per-stack simulation state as Prometheus
// metrics.
type PromSink struct {
	powerIn   prometheus.Gauge
	powerLeft prometheus.Gauge
	curtailed prometheus.Gauge
	stacksOn  prometheus.Gauge
	hydrogen  prometheus.Counter

	stackMode   *prometheus.GaugeVec
	stackTarget *prometheus.GaugeVec
	stackFlow   *prometheus.GaugeVec
	stackDeg    *prometheus.GaugeVec
	stackCycles *prometheus.GaugeVec
}

// NewPromSink registers fleet metrics on the default Prometheus
// registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one; collectors that are
// already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		powerIn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_power_in_watts",
			Help: "Power offered to the fleet this step",
		}),
		powerLeft: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_power_left_watts",
			Help: "Allocated power the stacks did not consume this step",
		}),
		curtailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_curtailed_watts",
			Help: "Available power not allocated to any committed stack",
		}),
		stacksOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_stacks_on",
			Help: "Number of stacks fully producing",
		}),
		hydrogen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_hydrogen_kg_total",
			Help: "Cumulative hydrogen mass produced",
		}),
		stackMode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stack_mode",
			Help: "Operating mode of the stack (0 off, 1 waiting, 2 on)",
		}, []string{"stack"}),
		stackTarget: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stack_power_target_watts",
			Help: "Power target allocated to the stack",
		}, []string{"stack"}),
		stackFlow: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stack_mass_flow_kg_per_s",
			Help: "Hydrogen mass flow rate of the stack",
		}, []string{"stack"}),
		stackDeg: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stack_degradation_volts",
			Help: "Cumulative voltage degradation of the stack",
		}, []string{"stack"}),
		stackCycles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stack_cycles_total",
			Help: "Completed on/off cycles of the stack",
		}, []string{"stack"}),
	}

	collectors := []prometheus.Collector{
		s.powerIn, s.powerLeft, s.curtailed, s.stacksOn, s.hydrogen,
		s.stackMode, s.stackTarget, s.stackFlow, s.stackDeg, s.stackCycles,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				s.powerIn = are.ExistingCollector.(prometheus.Gauge)
			case 1:
				s.powerLeft = are.ExistingCollector.(prometheus.Gauge)
			case 2:
				s.curtailed = are.ExistingCollector.(prometheus.Gauge)
			case 3:
				s.stacksOn = are.ExistingCollector.(prometheus.Gauge)
			case 4:
				s.hydrogen = are.ExistingCollector.(prometheus.Counter)
			case 5:
				s.stackMode = are.ExistingCollector.(*prometheus.GaugeVec)
			case 6:
				s.stackTarget = are.ExistingCollector.(*prometheus.GaugeVec)
			case 7:
				s.stackFlow = are.ExistingCollector.(*prometheus.GaugeVec)
			case 8:
				s.stackDeg = are.ExistingCollector.(*prometheus.GaugeVec)
			case 9:
				s.stackCycles = are.ExistingCollector.(*prometheus.GaugeVec)
			}
		}
	}
	return s, nil
}

func modeValue(mode string) float64 {
	switch mode {
	case "waiting":
		return 1
	case "on":
		return 2
	default:
		return 0
	}
}

// RecordStep updates the fleet gauges and per-stack series.
func (s *PromSink) RecordStep(rec coremetrics.StepRecord) error {
	s.powerIn.Set(rec.PowerInW)
	s.powerLeft.Set(rec.PowerLeftW)
	s.curtailed.Set(rec.CurtailedW)
	s.stacksOn.Set(float64(rec.StacksOn))
	s.hydrogen.Add(rec.HydrogenKg)

	for _, st := range rec.Stacks {
		id := strconv.Itoa(st.Index)
		s.stackMode.WithLabelValues(id).Set(modeValue(st.Mode))
		s.stackTarget.WithLabelValues(id).Set(st.TargetW)
		s.stackFlow.WithLabelValues(id).Set(st.MassFlowKgS)
		s.stackDeg.WithLabelValues(id).Set(st.Degradation)
		s.stackCycles.WithLabelValues(id).Set(float64(st.CycleCount))
	}
	return nil
}
