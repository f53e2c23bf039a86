package telemetry

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h2fleet/h2fleet/core/metrics"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                    { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	connected bool
	published map[string][]byte
}

func (f *fakeClient) IsConnected() bool { return f.connected }
func (f *fakeClient) Connect() paho.Token {
	f.connected = true
	return &fakeToken{}
}
func (f *fakeClient) Disconnect(uint) { f.connected = false }
func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	if f.published == nil {
		f.published = make(map[string][]byte)
	}
	f.published[topic] = payload.([]byte)
	return &fakeToken{}
}

func TestMQTTPublisherPublishesStep(t *testing.T) {
	fake := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fake }
	defer func() { newMQTTClient = orig }()

	pub, err := New(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	require.True(t, fake.connected)
	require.NotEmpty(t, pub.RunID())

	rec := metrics.StepRecord{Step: 7, Policy: "baseline", PowerInW: 6e4}
	require.NoError(t, pub.PublishStep(rec))

	require.Len(t, fake.published, 1)
	for topic, payload := range fake.published {
		assert.True(t, strings.HasPrefix(topic, "h2fleet/"))
		assert.True(t, strings.HasSuffix(topic, "/step"))

		var got metrics.StepRecord
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, 7, got.Step)
		assert.Equal(t, "baseline", got.Policy)
	}

	require.NoError(t, pub.Close())
	assert.False(t, fake.connected)
}
