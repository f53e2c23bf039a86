package stack

import "math"

// dynamics is the discrete state-space form of the first-order lag
// 1/(tau*s+1), obtained once at construction through a zero-order-hold
// transform. The filter smooths the steady-state mass flow target into
// the actual output, mimicking physical ramp lag.
type dynamics struct {
	a, b, c, d float64
	bypass     bool
}

// newDynamics derives the four scalars. When the timestep exceeds the
// time constant the lag is not representable and the filter passes the
// input through unchanged.
func newDynamics(tau, dt float64) dynamics {
	if dt > tau {
		return dynamics{bypass: true}
	}
	a := math.Exp(-dt / tau)
	return dynamics{
		a: a,
		b: tau * (1 - a),
		c: 1 / tau,
		d: 0,
	}
}

// step advances the filter: x' = a*x + b*u, y = c*x + d*u.
func (f dynamics) step(input, state float64) (next, output float64) {
	if f.bypass {
		return state, input
	}
	next = f.a*state + f.b*input
	output = f.c*state + f.d*input
	return next, output
}
