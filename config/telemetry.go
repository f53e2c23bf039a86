package config

import (
	telemetry "github.com/h2fleet/h2fleet/infra/telemetry"
)

// TelemetryConfig enables MQTT streaming of per-step records.
type TelemetryConfig struct {
	Enabled bool             `json:"enabled"`
	MQTT    telemetry.Config `json:"mqtt"`
}
