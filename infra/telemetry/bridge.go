package telemetry

import (
	"context"

	"github.com/h2fleet/h2fleet/core/fleet"
	"github.com/h2fleet/h2fleet/core/logger"
	"github.com/h2fleet/h2fleet/core/telemetry"
	"github.com/h2fleet/h2fleet/internal/eventbus"
)

// StartBridge forwards StepEvents from the bus to the publisher until
// ctx is canceled. Publish errors are logged and do not stop the
// bridge.
func StartBridge(ctx context.Context, bus eventbus.EventBus, pub telemetry.Publisher, log logger.Logger) {
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
				step, isStep := ev.(fleet.StepEvent)
				if !isStep {
					continue
				}
				if err := pub.PublishStep(step.Record); err != nil && log != nil {
					log.Errorf("telemetry bridge: %v", err)
				}
			}
		}
	}()
}
