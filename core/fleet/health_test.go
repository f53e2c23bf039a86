package fleet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rankingState() *State {
	st := NewState(4)
	st.Deg = []float64{0.3, 0.1, 0.2, 0.1}
	st.Desired = []bool{true, false, false, false}
	return st
}

func TestHealthiestInactivePicksLowestDegradation(t *testing.T) {
	st := rankingState()
	assert.Equal(t, []int{1}, healthiestInactive(st, 1))
	// ties break towards the lowest index
	assert.Equal(t, []int{1, 3}, healthiestInactive(st, 2))
	assert.Equal(t, []int{1, 3, 2}, healthiestInactive(st, 3))
}

func TestIllestDesiredPicksHighestDegradation(t *testing.T) {
	st := rankingState()
	st.Desired = []bool{true, true, true, true}
	assert.Equal(t, []int{0}, illestDesired(st, 1))
	assert.Equal(t, []int{0, 2}, illestDesired(st, 2))
	// equal degradation: lowest index first
	assert.Equal(t, []int{0, 2, 1}, illestDesired(st, 3))
}

func TestIllestOfRestrictsToMask(t *testing.T) {
	deg := []float64{0.9, 0.1, 0.5}
	mask := []bool{false, true, true}
	assert.Equal(t, []int{2}, illestOf(mask, deg, 1))
}

func TestRankingPanicsOnOverdraw(t *testing.T) {
	st := rankingState()
	assert.Panics(t, func() { healthiestInactive(st, 4) })
	assert.Panics(t, func() { illestDesired(st, 2) })
}

func TestStateCommitRelease(t *testing.T) {
	st := NewState(2)
	st.On[0] = true
	st.Desired[0] = true

	st.Commit(1)
	assert.True(t, st.Desired[1])
	assert.True(t, st.Waiting[1], "committed stack counts as waiting until it reports on")
	assert.Equal(t, 2, st.DesiredCount())

	st.Commit(0)
	assert.False(t, st.Waiting[0], "an on stack does not regress to waiting")

	st.Release(0)
	assert.False(t, st.Desired[0])
	assert.False(t, st.On[0])
	assert.Equal(t, 1, st.DesiredCount())
}

func TestSlopeTracksRamp(t *testing.T) {
	p := Params{NStacks: 2, RatingW: 5e5, MinPowerW: 5e4, Dt: 1}
	p.Thresholds.SetDefaults()
	p.Thresholds.SlopeWindow = 5 // keep the window shorter than the ramp

	up := newSequentialRotation(p)
	var slope float64
	for i := 0; i < 20; i++ {
		slope = up.slope(float64(i) * 1e4)
	}
	assert.Greater(t, slope, 0.0)

	down := newSequentialRotation(p)
	for i := 0; i < 20; i++ {
		slope = down.slope(2e5 - float64(i)*1e4)
	}
	assert.Less(t, slope, 0.0)
}

// A timestep coarser than the slope window degrades the filter to a
// two-point difference instead of averaging over an empty window.
func TestSlopeFiniteForCoarseTimestep(t *testing.T) {
	p := Params{NStacks: 2, RatingW: 5e5, MinPowerW: 5e4, Dt: 3600}
	p.Thresholds.SetDefaults() // SlopeWindow 1200 < Dt

	a := newSequentialRotation(p)
	assert.Equal(t, 2, a.filterWidth)
	for i := 0; i < 5; i++ {
		slope := a.slope(float64(i) * 1e5)
		assert.False(t, math.IsNaN(slope), "step %d", i)
	}
	assert.Greater(t, a.slope(6e5), 0.0)
}
