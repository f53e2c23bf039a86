package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/h2fleet/h2fleet/core/fleet"
	"github.com/h2fleet/h2fleet/core/metrics"
	coretelemetry "github.com/h2fleet/h2fleet/core/telemetry"
	"github.com/h2fleet/h2fleet/internal/eventbus"
)

func stepRecord(step int) metrics.StepRecord {
	return metrics.StepRecord{Step: step, Policy: "baseline"}
}

func TestBridgeForwardsStepEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := eventbus.New()
	defer bus.Close()
	pub := coretelemetry.NewMockPublisher()
	StartBridge(ctx, bus, pub, nil)

	// Give the bridge goroutine time to subscribe.
	time.Sleep(10 * time.Millisecond)

	bus.Publish(fleet.StackTransition{Index: 0}) // ignored by the bridge
	bus.Publish(fleet.StepEvent{Record: stepRecord(3)})
	bus.Publish(fleet.StepEvent{Record: stepRecord(4)})

	deadline := time.Now().Add(2 * time.Second)
	for pub.Len() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 2, pub.Len())
	assert.Equal(t, 3, pub.Records[0].Step)
	assert.Equal(t, 4, pub.Records[1].Step)
}

func TestBridgeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := eventbus.New()
	defer bus.Close()
	pub := coretelemetry.NewMockPublisher()
	StartBridge(ctx, bus, pub, nil)

	time.Sleep(10 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	bus.Publish(fleet.StepEvent{Record: stepRecord(1)})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, pub.Len())
}
