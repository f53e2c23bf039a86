// Package fleet implements the supervisory controller: it owns the
// stacks, snapshots their state each timestep, runs one of the
// interchangeable power-allocation policies and reconciles the policy's
// intent against the stacks before stepping them.
package fleet

import "fmt"

// Policy names accepted by NewAllocator.
const (
	PolicyPowerSharingRotation = "power-sharing-rotation"
	PolicySequentialRotation   = "sequential-rotation"
	PolicyEqualSplitEager      = "equal-split-eager"
	PolicyEqualSplitHesitant   = "equal-split-hesitant"
	PolicySequentialEvenWear   = "sequential-even-wear"
	PolicySequentialSingleWear = "sequential-single-wear"
	PolicyBaseline             = "baseline"
)

// Policies lists every supported allocation policy name.
func Policies() []string {
	return []string{
		PolicyPowerSharingRotation,
		PolicySequentialRotation,
		PolicyEqualSplitEager,
		PolicyEqualSplitHesitant,
		PolicySequentialEvenWear,
		PolicySequentialSingleWear,
		PolicyBaseline,
	}
}

func validPolicy(name string) bool {
	for _, p := range Policies() {
		if p == name {
			return true
		}
	}
	return false
}

// Allocator computes the per-stack power targets [W] for one timestep.
// Implementations mutate st.Desired to express which stacks should be
// committed; auxiliary state (rotation order, slope filter, swing-stack
// index) is private to each variant.
type Allocator interface {
	Name() string
	Allocate(powerIn float64, st *State) []float64
}

// Thresholds are the heuristic constants of the rotation policies,
// expressed as fractions of the stack rating unless noted. The defaults
// reproduce the reference tuning; they carry no stated derivation and
// are exposed so they can be re-tuned per plant.
type Thresholds struct {
	// ShareHigh is the per-stack share above which power sharing adds a
	// stack.
	ShareHigh float64 `json:"share_high"`
	// ShareLow is the per-stack share below which power sharing sheds a
	// stack.
	ShareLow float64 `json:"share_low"`
	// SupportFraction scales the rating when counting how many stacks
	// the input power can support.
	SupportFraction float64 `json:"support_fraction"`
	// LeftoverOn is the leftover power above which sequential rotation
	// catches up on stack count.
	LeftoverOn float64 `json:"leftover_on"`
	// LeftoverOff is the leftover power below which sequential rotation
	// considers shedding.
	LeftoverOff float64 `json:"leftover_off"`
	// LeftoverPreempt is the leftover power above which, on a rising
	// slope, sequential rotation starts a stack ahead of the ramp.
	LeftoverPreempt float64 `json:"leftover_preempt"`
	// SlopeWindow is the moving-average window [s] of the input-power
	// slope estimate.
	SlopeWindow float64 `json:"slope_window"`
}

// SetDefaults applies the reference tuning.
func (t *Thresholds) SetDefaults() {
	if t.ShareHigh == 0 {
		t.ShareHigh = 0.8
	}
	if t.ShareLow == 0 {
		t.ShareLow = 0.2
	}
	if t.SupportFraction == 0 {
		t.SupportFraction = 0.5
	}
	if t.LeftoverOn == 0 {
		t.LeftoverOn = 0.15
	}
	if t.LeftoverOff == 0 {
		t.LeftoverOff = 0.1
	}
	if t.LeftoverPreempt == 0 {
		t.LeftoverPreempt = 0.8
	}
	if t.SlopeWindow == 0 {
		t.SlopeWindow = 1200
	}
}

// Params are the fleet constants shared by every allocator.
type Params struct {
	NStacks    int
	RatingW    float64
	MinPowerW  float64
	Dt         float64
	Thresholds Thresholds
}

// RatingKW is the stack rating in kW.
func (p Params) RatingKW() float64 { return p.RatingW / 1e3 }

// NewAllocator builds the named policy variant.
func NewAllocator(name string, p Params) (Allocator, error) {
	p.Thresholds.SetDefaults()
	switch name {
	case PolicyPowerSharingRotation:
		return newPowerSharing(p), nil
	case PolicySequentialRotation:
		return newSequentialRotation(p), nil
	case PolicyEqualSplitEager:
		return &equalSplit{p: p, eager: true}, nil
	case PolicyEqualSplitHesitant:
		return &equalSplit{p: p}, nil
	case PolicySequentialEvenWear:
		return newSequentialWear(p, true), nil
	case PolicySequentialSingleWear:
		return newSequentialWear(p, false), nil
	case PolicyBaseline:
		return &baseline{p: p}, nil
	default:
		return nil, fmt.Errorf("fleet: unknown policy %q", name)
	}
}

// identityRotation is the initial round-robin order.
func identityRotation(n int) []int {
	rot := make([]int, n)
	for i := range rot {
		rot[i] = i
	}
	return rot
}

// nextInRotation walks the rotation order and returns the first stack
// that is not already desired, or -1 when every stack is committed.
func nextInRotation(rotation []int, st *State) int {
	for _, i := range rotation {
		if !st.Desired[i] {
			return i
		}
	}
	return -1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
