// Package stack models one hydrogen electrolyzer stack: its operating
// state machine with delayed startup, first-order production dynamics
// and multi-mechanism voltage degradation.
package stack

import (
	"fmt"
	"math"

	"github.com/h2fleet/h2fleet/core/cell"
	"github.com/h2fleet/h2fleet/core/logger"
)

// Mode is the operating state of a stack.
type Mode int

const (
	// ModeOff means the stack draws no current.
	ModeOff Mode = iota
	// ModeWaiting means the stack is committed to starting and draws
	// parasitic current while inside its startup delay.
	ModeWaiting
	// ModeOn means the stack is fully producing.
	ModeOn
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeWaiting:
		return "waiting"
	case ModeOn:
		return "on"
	default:
		return "unknown"
	}
}

// PenaltyMode selects how accumulated voltage degradation feeds back
// into operation.
type PenaltyMode string

const (
	// PenaltyHydrogen folds the efficiency loss back into a lower stack
	// current, reducing hydrogen output at constant power.
	PenaltyHydrogen PenaltyMode = "hydrogen"
	// PenaltyPower adds the degraded voltage after the current is solved
	// for, increasing the power drawn at constant hydrogen output.
	PenaltyPower PenaltyMode = "power"
	// PenaltyNone tracks degradation without feeding it back.
	PenaltyNone PenaltyMode = "none"
)

// DegradationConfig holds the degradation rate constants.
type DegradationConfig struct {
	// RateSteady scales the voltage-dwell product [1/s].
	RateSteady float64 `json:"rate_steady"`
	// RateFatigue scales the rainflow-weighted voltage cycle sum [-].
	RateFatigue float64 `json:"rate_fatigue"`
	// RateOnOff is the voltage penalty per on/off cycle [V].
	RateOnOff float64 `json:"rate_onoff"`
	// EOLEffPercentLoss is the efficiency drop [%] declared end of life.
	EOLEffPercentLoss float64 `json:"eol_eff_percent_loss"`
}

// Config holds the static parameters of a stack.
type Config struct {
	CellType    string  `json:"cell_type"`
	Cells       int     `json:"n_cells"`
	Temperature float64 `json:"temperature"` // degC
	Dt          float64 `json:"dt"`          // seconds
	MaxCurrent  float64 `json:"max_current"` // A
	// RatingKW overrides the nameplate rating derived from MaxCurrent.
	RatingKW float64 `json:"stack_rating_kw"`
	// MinPowerW overrides the turndown-derived minimum power.
	MinPowerW float64 `json:"min_power_w"`
	// TurnOnDelay is the nominal startup delay [s].
	TurnOnDelay float64 `json:"turn_on_delay"`
	// Tau is the production dynamics time constant [s].
	Tau float64 `json:"tau"`

	PenaltyMode PenaltyMode       `json:"penalty_mode"`
	Cell        cell.PEMParams    `json:"cell_params"`
	Degradation DegradationConfig `json:"degradation"`
}

// SetDefaults applies the reference defaults.
func (c *Config) SetDefaults() {
	if c.CellType == "" {
		c.CellType = "PEM"
	}
	if c.Dt == 0 {
		c.Dt = 1
	}
	if c.MaxCurrent == 0 {
		c.MaxCurrent = 1000
	}
	if c.TurnOnDelay == 0 {
		c.TurnOnDelay = 600
	}
	if c.Tau == 0 {
		c.Tau = 5
	}
	if c.PenaltyMode == "" {
		c.PenaltyMode = PenaltyHydrogen
	}
	c.Cell.SetDefaults()
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Cells <= 0 {
		return fmt.Errorf("stack: n_cells must be positive")
	}
	if c.Dt <= 0 {
		return fmt.Errorf("stack: dt must be positive")
	}
	if c.MaxCurrent <= 0 {
		return fmt.Errorf("stack: max_current must be positive")
	}
	switch c.PenaltyMode {
	case PenaltyHydrogen, PenaltyPower, PenaltyNone:
	default:
		return fmt.Errorf("stack: unknown penalty_mode %q", c.PenaltyMode)
	}
	d := c.Degradation
	if d.RateSteady < 0 || d.RateFatigue < 0 || d.RateOnOff < 0 {
		return fmt.Errorf("stack: degradation rates must be non-negative")
	}
	if d.EOLEffPercentLoss <= 0 || d.EOLEffPercentLoss > 100 {
		return fmt.Errorf("stack: eol_eff_percent_loss must be in (0,100]")
	}
	return c.Cell.Validate()
}

// fatigueThreshold is the relative hourly voltage peak-to-peak variation
// below which fluctuation is treated as noise rather than fatigue.
const fatigueThreshold = 0.05

// Stack is one electrolyzer unit. It is not safe for concurrent use;
// the supervisor steps every stack sequentially within a timestep.
type Stack struct {
	cfg  Config
	cell cell.Cell
	fit  *cell.PolarizationFit
	log  logger.Logger

	ratingKW float64
	ratingW  float64
	minPower float64
	dEol     float64

	mode        Mode
	uptime      float64
	simTime     float64
	cellVoltage float64
	current     float64

	// degradation accumulators
	dS             float64
	dO             float64
	fatigueHistory float64
	rfTrack        float64
	vDeg           float64
	cycleCount     int

	hourlyCounter int
	hourChange    bool
	voltageWindow []float64
	voltageSignal []float64

	voltageHistory     []float64
	degradationHistory []float64
	powerHistory       []float64

	turnOnDelay float64
	turnOnTime  float64
	turnOffTime float64
	waitTime    float64

	dyn         dynamics
	filterState float64
}

// New constructs a stack, fits its polarization inversion and solves
// the end-of-life voltage threshold.
func New(cfg Config, log logger.Logger) (*Stack, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cl, err := cell.New(cfg.CellType, cfg.Cell)
	if err != nil {
		return nil, err
	}
	fit, err := cell.FitPolarization(cl, cfg.Cells, cfg.MaxCurrent)
	if err != nil {
		return nil, err
	}

	s := &Stack{cfg: cfg, cell: cl, fit: fit, log: log}

	s.ratingKW = cfg.RatingKW
	if s.ratingKW == 0 {
		s.ratingKW = cell.StackPower(cl, cfg.MaxCurrent, float64(cfg.Cells), cfg.Temperature)
	}
	s.ratingW = s.ratingKW * 1e3
	s.minPower = cfg.MinPowerW
	if s.minPower == 0 {
		s.minPower = cl.Properties().TurndownRatio * s.ratingW
	}

	// Startup delay is meaningless below the timestep resolution.
	s.turnOnDelay = cfg.TurnOnDelay
	if cfg.Dt > 2*cfg.TurnOnDelay {
		s.turnOnDelay = 0
	}
	s.turnOnTime = 0
	s.turnOffTime = -s.turnOnDelay
	s.waitTime = math.Min(s.turnOnTime-s.turnOffTime, s.turnOnDelay)

	s.dyn = newDynamics(cfg.Tau, cfg.Dt)
	s.dEol = s.calcEndOfLifeVoltage()
	return s, nil
}

// Mode returns the current operating state.
func (s *Stack) Mode() Mode { return s.mode }

// On reports whether the stack is fully producing.
func (s *Stack) On() bool { return s.mode == ModeOn }

// Waiting reports whether the stack is inside its startup delay.
func (s *Stack) Waiting() bool { return s.mode == ModeWaiting }

// Committed reports whether the stack is on or waiting, i.e. drawing
// power.
func (s *Stack) Committed() bool { return s.mode != ModeOff }

// Degradation returns the cumulative voltage penalty [V].
func (s *Stack) Degradation() float64 { return s.vDeg }

// CycleCount returns the number of completed on/off cycles.
func (s *Stack) CycleCount() int { return s.cycleCount }

// Uptime returns the accumulated operating time [s].
func (s *Stack) Uptime() float64 { return s.uptime }

// SimTime returns the stack's wall-clock simulation time [s].
func (s *Stack) SimTime() float64 { return s.simTime }

// CellVoltage returns the cell voltage recorded on the last step [V].
func (s *Stack) CellVoltage() float64 { return s.cellVoltage }

// Current returns the stack current of the last step [A].
func (s *Stack) Current() float64 { return s.current }

// RatingW returns the nameplate rating [W].
func (s *Stack) RatingW() float64 { return s.ratingW }

// RatingKW returns the nameplate rating [kW].
func (s *Stack) RatingKW() float64 { return s.ratingKW }

// MinPower returns the minimum operable power [W].
func (s *Stack) MinPower() float64 { return s.minPower }

// WaitTime returns the remaining startup-delay credit [s].
func (s *Stack) WaitTime() float64 { return s.waitTime }

// SteadyDegradation returns the steady-operation penalty component [V].
func (s *Stack) SteadyDegradation() float64 { return s.dS }

// FatigueDegradation returns the fatigue penalty component [V].
func (s *Stack) FatigueDegradation() float64 { return s.fatigueHistory }

// OnOffDegradation returns the cycling penalty component [V].
func (s *Stack) OnOffDegradation() float64 { return s.dO }

// History returns the recorded per-step voltage, degradation and power
// input series.
func (s *Stack) History() (voltage, degradation, power []float64) {
	return s.voltageHistory, s.degradationHistory, s.powerHistory
}

// TurnOn commits the stack to starting. A stack that was off only
// briefly keeps part of its startup progress: the wait time credits the
// elapsed off-time, capped at the nominal delay.
func (s *Stack) TurnOn() {
	if s.mode == ModeOn {
		return
	}
	if s.mode != ModeWaiting {
		s.turnOnTime = s.simTime
		if s.log != nil {
			s.log.Debugf("stack turning on at t=%.0fs wait=%.0fs", s.simTime, s.waitTime)
		}
	}
	s.mode = ModeWaiting
	s.waitTime = math.Min(s.waitTime+(s.turnOnTime-s.turnOffTime), s.turnOnDelay)
}

// TurnOff shuts the stack down, counts the cycle and reduces the
// startup credit by the elapsed on-time.
func (s *Stack) TurnOff() {
	if s.mode == ModeOff {
		return
	}
	s.turnOffTime = s.simTime
	s.mode = ModeOff
	s.cycleCount++
	s.waitTime = math.Max(0, s.waitTime-(s.turnOffTime-s.turnOnTime))
	if s.log != nil {
		s.log.Debugf("stack turned off at t=%.0fs cycles=%d", s.simTime, s.cycleCount)
	}
}

// updateStatus promotes a waiting stack once its delay has elapsed.
func (s *Stack) updateStatus() {
	if s.mode != ModeWaiting {
		return
	}
	if s.turnOnTime+s.waitTime <= s.simTime {
		s.mode = ModeOn
		if s.log != nil {
			s.log.Debugf("stack on at t=%.0fs", s.simTime)
		}
	}
}

// currentPowerPenalty solves current from requested power; degradation
// is applied later as extra voltage.
func (s *Stack) currentPowerPenalty(powerIn float64) (float64, float64) {
	i := s.fit.Current(powerIn/1e3, s.cfg.Temperature)
	return i, s.cell.Voltage(i, s.cfg.Temperature)
}

// currentHydrogenPenalty folds the degradation-driven efficiency loss
// back into a lower current before mass flow is computed.
func (s *Stack) currentHydrogenPenalty(powerIn float64) (float64, float64) {
	iNom := s.fit.Current(powerIn/1e3, s.cfg.Temperature)
	vCell := s.cell.Voltage(iNom, s.cfg.Temperature)
	if vCell == 0 {
		return iNom, vCell
	}
	effMult := (vCell + s.vDeg) / vCell // 1 + efficiency drop
	return iNom / effMult, vCell
}

// Run consumes the requested power for one timestep and returns the
// hydrogen mass flow rate [kg/s], the mass produced this step [kg] and
// the difference between requested and consumed power [W].
func (s *Stack) Run(powerIn float64) (mfr, mass, powerLeft float64) {
	s.updateStatus()

	var iStack, vCell float64
	if s.cfg.PenaltyMode == PenaltyHydrogen {
		iStack, vCell = s.currentHydrogenPenalty(powerIn)
	} else {
		iStack, vCell = s.currentPowerPenalty(powerIn)
	}

	switch s.mode {
	case ModeOn:
		powerLeft = powerIn
		s.current = iStack
		if s.cfg.PenaltyMode != PenaltyNone {
			vCell += s.vDeg
		}
		s.updateDegradation()
		powerLeft -= iStack * vCell * float64(s.cfg.Cells)
		mfrSS := s.cell.MassFlowRate(s.cfg.Temperature, iStack) * float64(s.cfg.Cells)
		s.filterState, mfr = s.dyn.step(mfrSS, s.filterState)
		mass = mfr * s.cfg.Dt
		s.uptime += s.cfg.Dt

	case ModeWaiting:
		s.filterState, mfr = s.dyn.step(0, s.filterState)
		s.current = iStack
		s.updateDegradation()
		s.uptime += s.cfg.Dt
		powerLeft = 0

	default: // ModeOff
		s.filterState, mfr = s.dyn.step(0, s.filterState)
		powerLeft = powerIn
		vCell = 0
	}

	s.cellVoltage = vCell
	s.voltageWindow = append(s.voltageWindow, vCell)
	s.voltageHistory = append(s.voltageHistory, vCell)
	s.degradationHistory = append(s.degradationHistory, s.vDeg)
	s.powerHistory = append(s.powerHistory, powerIn)

	// Snapshot the hourly voltage buffer for fatigue evaluation.
	hourly := s.hourlyCounter
	s.simTime += s.cfg.Dt
	s.hourlyCounter = int(s.simTime / 3600)
	if hourly != s.hourlyCounter {
		s.hourChange = true
		s.voltageSignal = s.voltageWindow
		s.voltageWindow = nil
	} else {
		s.hourChange = false
	}

	return mfr, mass, powerLeft
}
