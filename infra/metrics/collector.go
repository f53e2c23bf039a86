package metrics

import (
	"context"

	"github.com/h2fleet/h2fleet/core/fleet"
	"github.com/h2fleet/h2fleet/core/logger"
	"github.com/h2fleet/h2fleet/internal/eventbus"
)

// StartEventCollector logs stack transitions published on the bus
// until ctx is canceled. Step records are handled synchronously by the
// supervisor's sink; the collector only consumes the asynchronous
// transition stream.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, log logger.Logger) {
	ch := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if tr, isTransition := ev.(fleet.StackTransition); isTransition && log != nil {
					log.Infof("stack %d: %s -> %s at t=%.0fs", tr.Index, tr.From, tr.To, tr.SimTime)
				}
			}
		}
	}()
}
