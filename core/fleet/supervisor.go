package fleet

import (
	"fmt"
	"math"

	"github.com/h2fleet/h2fleet/core/logger"
	"github.com/h2fleet/h2fleet/core/metrics"
	"github.com/h2fleet/h2fleet/core/stack"
	"github.com/h2fleet/h2fleet/internal/eventbus"
)

// Config holds the fleet-level parameters.
type Config struct {
	NStacks    int          `json:"n_stacks"`
	Policy     string       `json:"policy"`
	Thresholds Thresholds   `json:"thresholds"`
	Stack      stack.Config `json:"stack"`
}

// SetDefaults applies the reference defaults.
func (c *Config) SetDefaults() {
	if c.Policy == "" {
		c.Policy = PolicyBaseline
	}
	c.Thresholds.SetDefaults()
	c.Stack.SetDefaults()
}

// Validate checks the fleet parameters.
func (c Config) Validate() error {
	if c.NStacks <= 0 {
		return fmt.Errorf("fleet: n_stacks must be positive")
	}
	if c.Policy != "" && !validPolicy(c.Policy) {
		return fmt.Errorf("fleet: unknown policy %q", c.Policy)
	}
	return c.Stack.Validate()
}

// Result is the outcome of one control step.
type Result struct {
	// MassOut is the hydrogen mass [kg] produced this step.
	MassOut float64
	// MassFlowRate holds each stack's mass flow rate [kg/s].
	MassFlowRate []float64
	// PowerLeft is the power [W] allocated to stacks but not consumed.
	PowerLeft float64
	// Curtailed is the power [W] available but not allocated to any
	// committed stack.
	Curtailed float64
	// Targets is the per-stack power allocation [W].
	Targets []float64
}

// Supervisor owns the stacks and drives them once per timestep: it
// snapshots stack state, runs the allocation policy, reconciles the
// policy's intent against the stacks and steps every stack with its
// target power.
type Supervisor struct {
	cfg    Config
	stacks []*stack.Stack
	alloc  Allocator
	sink   metrics.Sink
	log    logger.Logger
	bus    *eventbus.Bus

	step    int
	simTime float64
}

// New constructs the fleet. sink and bus may be nil.
func New(cfg Config, log logger.Logger, sink metrics.Sink, bus *eventbus.Bus) (*Supervisor, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stacks := make([]*stack.Stack, cfg.NStacks)
	for i := range stacks {
		st, err := stack.New(cfg.Stack, log)
		if err != nil {
			return nil, fmt.Errorf("fleet: stack %d: %w", i, err)
		}
		stacks[i] = st
	}

	alloc, err := NewAllocator(cfg.Policy, Params{
		NStacks:    cfg.NStacks,
		RatingW:    stacks[0].RatingW(),
		MinPowerW:  stacks[0].MinPower(),
		Dt:         cfg.Stack.Dt,
		Thresholds: cfg.Thresholds,
	})
	if err != nil {
		return nil, err
	}

	if sink == nil {
		sink = metrics.NopSink{}
	}
	s := &Supervisor{cfg: cfg, stacks: stacks, alloc: alloc, sink: sink, log: log, bus: bus}
	if log != nil {
		log.Infof("fleet initialized: %d stacks, %.0f kW each, policy %s",
			cfg.NStacks, stacks[0].RatingKW(), alloc.Name())
	}
	return s, nil
}

// Stacks exposes the managed stacks.
func (s *Supervisor) Stacks() []*stack.Stack { return s.stacks }

// Policy returns the active allocation policy name.
func (s *Supervisor) Policy() string { return s.alloc.Name() }

// snapshot queries every stack for its current state.
func (s *Supervisor) snapshot() *State {
	st := NewState(len(s.stacks))
	for i, stk := range s.stacks {
		st.On[i] = stk.On()
		st.Waiting[i] = stk.Waiting()
		st.Deg[i] = stk.Degradation()
		st.Desired[i] = stk.Committed()
	}
	return st
}

// Control allocates powerIn [W] across the fleet and advances every
// stack by one timestep.
func (s *Supervisor) Control(powerIn float64) Result {
	st := s.snapshot()
	targets := s.alloc.Allocate(powerIn, st)

	// reconcile policy intent against actual stack state
	for i, stk := range s.stacks {
		committed := stk.Committed()
		if st.Desired[i] && !committed {
			from := stk.Mode()
			stk.TurnOn()
			s.publishTransition(i, from, stk.Mode())
		} else if !st.Desired[i] && committed {
			from := stk.Mode()
			stk.TurnOff()
			s.publishTransition(i, from, stk.Mode())
		}
	}

	res := Result{
		MassFlowRate: make([]float64, len(s.stacks)),
		Targets:      targets,
	}
	for i, stk := range s.stacks {
		mfr, mass, left := stk.Run(targets[i])
		res.MassFlowRate[i] = mfr
		res.MassOut += mass
		res.PowerLeft += left
	}

	var commanded float64
	for i, stk := range s.stacks {
		if stk.Committed() {
			commanded += targets[i]
		}
	}
	res.Curtailed = math.Max(0, powerIn-commanded)

	s.record(powerIn, res)
	s.step++
	s.simTime += s.cfg.Stack.Dt
	return res
}

func (s *Supervisor) record(powerIn float64, res Result) {
	rec := metrics.StepRecord{
		Step:       s.step,
		SimTime:    s.simTime,
		Policy:     s.alloc.Name(),
		PowerInW:   powerIn,
		PowerLeftW: res.PowerLeft,
		CurtailedW: res.Curtailed,
		HydrogenKg: res.MassOut,
		Stacks:     make([]metrics.StackSample, len(s.stacks)),
	}
	for i, stk := range s.stacks {
		if stk.On() {
			rec.StacksOn++
		}
		if stk.Waiting() {
			rec.StacksWait++
		}
		rec.Stacks[i] = metrics.StackSample{
			Index:         i,
			Mode:          stk.Mode().String(),
			TargetW:       res.Targets[i],
			MassFlowKgS:   res.MassFlowRate[i],
			CellVoltage:   stk.CellVoltage(),
			Current:       stk.Current(),
			Degradation:   stk.Degradation(),
			CycleCount:    stk.CycleCount(),
			UptimeSeconds: stk.Uptime(),
		}
	}
	if err := s.sink.RecordStep(rec); err != nil && s.log != nil {
		s.log.Errorf("metrics sink: %v", err)
	}
	if s.bus != nil {
		s.bus.Publish(StepEvent{Record: rec})
	}
}

func (s *Supervisor) publishTransition(i int, from, to stack.Mode) {
	if s.log != nil {
		s.log.Debugf("stack %d: %s -> %s at t=%.0fs", i, from, to, s.simTime)
	}
	if s.bus != nil {
		s.bus.Publish(StackTransition{Index: i, From: from, To: to, SimTime: s.simTime})
	}
}
