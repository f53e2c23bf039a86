package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/h2fleet/h2fleet/core/logger"
	coremetrics "github.com/h2fleet/h2fleet/core/metrics"
	infralog "github.com/h2fleet/h2fleet/infra/logger"
)

// InfluxSink writes simulation steps to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	start    time.Time
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint. Step timestamps are derived from the simulation time,
// anchored at the sink's creation.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      infralog.New("influx-sink"),
		start:    time.Now(),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStep writes the fleet summary and one point per stack.
func (s *InfluxSink) RecordStep(rec coremetrics.StepRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ts := s.start.Add(time.Duration(rec.SimTime * float64(time.Second)))

	p := write.NewPointWithMeasurement("fleet_step").
		AddTag("policy", rec.Policy).
		AddField("power_in_w", round3(rec.PowerInW)).
		AddField("power_left_w", round3(rec.PowerLeftW)).
		AddField("curtailed_w", round3(rec.CurtailedW)).
		AddField("hydrogen_kg", rec.HydrogenKg).
		AddField("stacks_on", rec.StacksOn).
		AddField("stacks_waiting", rec.StacksWait).
		SetTime(ts)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}

	for _, st := range rec.Stacks {
		p := write.NewPointWithMeasurement("stack_step").
			AddTag("stack", strconv.Itoa(st.Index)).
			AddTag("mode", st.Mode).
			AddField("target_w", round3(st.TargetW)).
			AddField("mass_flow_kg_s", st.MassFlowKgS).
			AddField("cell_voltage", st.CellVoltage).
			AddField("current_a", round3(st.Current)).
			AddField("degradation_v", st.Degradation).
			AddField("cycles", st.CycleCount).
			AddField("uptime_s", st.UptimeSeconds).
			SetTime(ts)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
