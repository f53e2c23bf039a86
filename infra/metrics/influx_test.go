package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/h2fleet/h2fleet/core/metrics"
)

type influxServer struct {
	mu      sync.Mutex
	healthy bool
	bodies  []string
}

func (s *influxServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if s.healthy {
			_, _ = w.Write([]byte(`{"name":"influxdb","status":"pass"}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"name":"influxdb","status":"fail"}`))
	})
	mux.HandleFunc("/api/v2/write", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.bodies = append(s.bodies, string(body))
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func TestInfluxSinkWritesStep(t *testing.T) {
	srv := &influxServer{healthy: true}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	sink := NewInfluxSinkWithFallback(ts.URL, "token", "org", "bucket")
	_, isNop := sink.(coremetrics.NopSink)
	require.False(t, isNop)

	rec := coremetrics.StepRecord{
		Step:     3,
		SimTime:  3,
		Policy:   "equal-split-eager",
		PowerInW: 1.2e6,
		Stacks: []coremetrics.StackSample{
			{Index: 0, Mode: "on", TargetW: 6e5},
			{Index: 1, Mode: "waiting", TargetW: 6e5},
		},
	}
	require.NoError(t, sink.RecordStep(rec))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	all := strings.Join(srv.bodies, "\n")
	assert.Contains(t, all, "fleet_step")
	assert.Contains(t, all, "policy=equal-split-eager")
	assert.Contains(t, all, "stack_step")
	assert.Contains(t, all, "mode=waiting")
}

func TestInfluxSinkFallsBackWhenUnhealthy(t *testing.T) {
	srv := &influxServer{healthy: false}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	sink := NewInfluxSinkWithFallback(ts.URL, "token", "org", "bucket")
	_, isNop := sink.(coremetrics.NopSink)
	assert.True(t, isNop)
}
