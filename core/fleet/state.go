package fleet

// State is the per-step snapshot of the fleet handed to an allocator.
// On and Waiting reflect what each stack reported at the start of the
// step; Desired is the controller's intent, initialized to the set of
// committed (on or waiting) stacks and mutated by the policy. The
// supervisor reconciles Desired against the stacks after allocation.
type State struct {
	On      []bool
	Waiting []bool
	Deg     []float64
	Desired []bool
}

// NewState allocates an empty snapshot for n stacks.
func NewState(n int) *State {
	return &State{
		On:      make([]bool, n),
		Waiting: make([]bool, n),
		Deg:     make([]float64, n),
		Desired: make([]bool, n),
	}
}

// N returns the fleet size.
func (st *State) N() int { return len(st.Desired) }

// OnCount returns the number of stacks reporting fully on.
func (st *State) OnCount() int { return count(st.On) }

// WaitingCount returns the number of stacks inside their startup delay.
func (st *State) WaitingCount() int { return count(st.Waiting) }

// DesiredCount returns the number of stacks the controller wants
// committed.
func (st *State) DesiredCount() int { return count(st.Desired) }

// Commit marks stack i as wanted. A stack not yet on is considered
// waiting for the remainder of the allocation pass, so threshold checks
// later in the same pass see it.
func (st *State) Commit(i int) {
	st.Desired[i] = true
	if !st.On[i] {
		st.Waiting[i] = true
	}
}

// Release marks stack i as unwanted.
func (st *State) Release(i int) {
	st.Desired[i] = false
	st.On[i] = false
	st.Waiting[i] = false
}

func count(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}
