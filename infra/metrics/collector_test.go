package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/h2fleet/h2fleet/core/fleet"
	"github.com/h2fleet/h2fleet/core/stack"
	"github.com/h2fleet/h2fleet/internal/eventbus"
)

type countingLogger struct {
	mu    sync.Mutex
	infos int
}

func (l *countingLogger) Debugf(string, ...any)         {}
func (l *countingLogger) Debugw(string, map[string]any) {}
func (l *countingLogger) Infof(string, ...any) {
	l.mu.Lock()
	l.infos++
	l.mu.Unlock()
}
func (l *countingLogger) Warnf(string, ...any)  {}
func (l *countingLogger) Errorf(string, ...any) {}

func (l *countingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.infos
}

func TestEventCollectorLogsTransitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := eventbus.New()
	defer bus.Close()
	log := &countingLogger{}
	StartEventCollector(ctx, bus, log)

	time.Sleep(10 * time.Millisecond)

	bus.Publish(fleet.StackTransition{Index: 1, From: stack.ModeOff, To: stack.ModeWaiting})
	bus.Publish(fleet.StepEvent{}) // not a transition, ignored
	bus.Publish(fleet.StackTransition{Index: 1, From: stack.ModeWaiting, To: stack.ModeOn})

	deadline := time.Now().Add(2 * time.Second)
	for log.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 2, log.count())
}
