package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDynamicsConvergesToInput(t *testing.T) {
	f := newDynamics(5, 1)
	var state, out float64
	for i := 0; i < 100; i++ {
		state, out = f.step(1.0, state)
	}
	assert.InDelta(t, 1.0, out, 1e-6)
}

func TestDynamicsOutputMonotonicOnStep(t *testing.T) {
	f := newDynamics(5, 1)
	var state, out, prev float64
	state, prev = f.step(1.0, state) // first output is zero state
	for i := 0; i < 30; i++ {
		state, out = f.step(1.0, state)
		assert.Greater(t, out, prev)
		assert.Less(t, out, 1.0+1e-9)
		prev = out
	}
}

func TestDynamicsBypassForCoarseTimestep(t *testing.T) {
	f := newDynamics(5, 10)
	assert.True(t, f.bypass)
	state, out := f.step(3.5, 0)
	assert.Equal(t, 3.5, out)
	assert.Zero(t, state)
}

func TestDynamicsDecaysToZero(t *testing.T) {
	f := newDynamics(5, 1)
	state := 5.0 // charged filter
	var out float64
	for i := 0; i < 100; i++ {
		state, out = f.step(0, state)
	}
	assert.InDelta(t, 0, out, 1e-6)
}
