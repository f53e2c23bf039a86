// Package config loads the simulator configuration from YAML or JSON
// files with environment-variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/h2fleet/h2fleet/core/fleet"
	"github.com/h2fleet/h2fleet/core/metrics"
)

type Config struct {
	Fleet     fleet.Config    `json:"fleet"`
	Sim       SimConfig       `json:"sim"`
	Metrics   metrics.Config  `json:"metrics"`
	Telemetry TelemetryConfig `json:"telemetry"`
	Logging   LoggingConfig   `json:"logging"`
}

// Load reads the configuration file, applies H2_-prefixed environment
// overrides (H2_FLEET__POLICY=baseline selects fleet.policy) and
// validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("H2_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "h2_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}

	cfg.Fleet.SetDefaults()
	cfg.Sim.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Fleet.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Sim.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
