// Package scenarios runs YAML-described fleet scenarios as tests: a
// policy, a segmented power profile and the expected end state.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"
)

type StackDef struct {
	Cells       int     `yaml:"n_cells"`
	Temperature float64 `yaml:"temperature"`
	MaxCurrent  float64 `yaml:"max_current"`
	CellArea    float64 `yaml:"cell_area"`
	TurnOnDelay float64 `yaml:"turn_on_delay"`
	RatingKW    float64 `yaml:"stack_rating_kw"`
	MinPowerW   float64 `yaml:"min_power_w"`
}

// SegmentDef is a constant-power stretch of the input profile.
type SegmentDef struct {
	PowerKW float64 `yaml:"power_kw"`
	Steps   int     `yaml:"steps"`
}

type Expected struct {
	// FinalOn is the number of producing stacks after the last step.
	FinalOn int `yaml:"final_on"`
	// MinHydrogenKg is a lower bound on total production.
	MinHydrogenKg float64 `yaml:"min_hydrogen_kg"`
}

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Policy      string       `yaml:"policy"`
	NStacks     int          `yaml:"n_stacks"`
	Stack       StackDef     `yaml:"stack"`
	Segments    []SegmentDef `yaml:"segments"`
	Expected    Expected     `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Signal expands the segments into a per-step power series [W].
func (sc *Scenario) Signal() []float64 {
	var out []float64
	for _, seg := range sc.Segments {
		for i := 0; i < seg.Steps; i++ {
			out = append(out, seg.PowerKW*1e3)
		}
	}
	return out
}
