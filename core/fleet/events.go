package fleet

import (
	"github.com/h2fleet/h2fleet/core/metrics"
	"github.com/h2fleet/h2fleet/core/stack"
)

// StackTransition is published on the event bus whenever the supervisor
// commands a stack on or off.
type StackTransition struct {
	Index   int
	From    stack.Mode
	To      stack.Mode
	SimTime float64
}

// StepEvent is published after every control step with the full step
// record.
type StepEvent struct {
	Record metrics.StepRecord
}
