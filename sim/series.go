package sim

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// seriesFile is the on-disk shape of a power series in YAML or JSON.
type seriesFile struct {
	// PowerW is the per-step plant power input [W].
	PowerW []float64 `json:"power_w" yaml:"power_w"`
}

// LoadSeries reads a power series from a YAML, JSON or CSV file,
// selected by extension. CSV files carry one power value [W] per line;
// a single header line is tolerated.
func LoadSeries(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sim: read series: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var f seriesFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("sim: parse %s: %w", path, err)
		}
		return f.PowerW, nil
	case ".json":
		var f seriesFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("sim: parse %s: %w", path, err)
		}
		return f.PowerW, nil
	case ".csv":
		return parseCSVSeries(path, data)
	default:
		return nil, fmt.Errorf("sim: unsupported series format %q", ext)
	}
}

func parseCSVSeries(path string, data []byte) ([]float64, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sim: parse %s: %w", path, err)
	}
	var series []float64
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			if i == 0 {
				continue // header line
			}
			return nil, fmt.Errorf("sim: %s line %d: %w", path, i+1, err)
		}
		series = append(series, v)
	}
	return series, nil
}
