package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// LoggingConfig controls the global log level.
type LoggingConfig struct {
	Level string `json:"level"`
}

// SetDefaults applies the default "info" level.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level name against zerolog's known levels.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("logging: unknown level %q", c.Level)
	}
	return nil
}
