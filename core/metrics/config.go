package metrics

import "github.com/h2fleet/h2fleet/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PromAddr is the listen address of the Prometheus scrape endpoint.
	// Empty disables the HTTP server.
	PromAddr string `json:"prom_addr"`
}
