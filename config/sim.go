package config

import "fmt"

// SignalConfig describes a generated power input signal.
type SignalConfig struct {
	// Type selects the generator: "cosine" or "constant".
	Type string `json:"type"`
	// RatingMW is the plant rating the cosine signal oscillates under.
	RatingMW float64 `json:"rating_mw"`
	// Cycles is the number of full cosine oscillations.
	Cycles int `json:"cycles"`
	// PowerW is the level of a constant signal.
	PowerW float64 `json:"power_w"`
}

// SimConfig describes the run horizon and power input source. When
// SeriesFile is set it takes precedence over the generated signal.
type SimConfig struct {
	Steps      int          `json:"steps"`
	SeriesFile string       `json:"series_file"`
	Signal     SignalConfig `json:"signal"`
	// ReportFile receives the end-of-run JSON report. Empty writes the
	// report to stdout.
	ReportFile string `json:"report_file"`
	// HistoryFile receives the per-step voltage and power history as
	// CSV. Empty disables the export.
	HistoryFile string `json:"history_file"`
}

// SetDefaults applies the reference defaults: eight hours of cosine
// input against a 3.4 MW plant.
func (c *SimConfig) SetDefaults() {
	if c.Steps == 0 {
		c.Steps = 3600*8 + 10
	}
	if c.Signal.Type == "" {
		c.Signal.Type = "cosine"
	}
	if c.Signal.RatingMW == 0 {
		c.Signal.RatingMW = 3.4
	}
	if c.Signal.Cycles == 0 {
		c.Signal.Cycles = 4
	}
}

// Validate checks the signal parameters.
func (c SimConfig) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("sim: steps must be positive")
	}
	if c.SeriesFile != "" {
		return nil
	}
	switch c.Signal.Type {
	case "cosine":
		if c.Signal.RatingMW <= 0 {
			return fmt.Errorf("sim: rating_mw must be positive")
		}
	case "constant":
		if c.Signal.PowerW < 0 {
			return fmt.Errorf("sim: power_w must be non-negative")
		}
	default:
		return fmt.Errorf("sim: unknown signal type %q", c.Signal.Type)
	}
	return nil
}
