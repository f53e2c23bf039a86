// Package export writes run results to JSON and CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/h2fleet/h2fleet/core/stack"
	"github.com/h2fleet/h2fleet/sim"
)

// WriteReportJSON writes the run report to w in indented JSON.
func WriteReportJSON(w io.Writer, report sim.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteHistoryCSV writes the per-step series of every stack to w: one
// row per timestep with each stack's cell voltage, degradation and
// power input.
func WriteHistoryCSV(w io.Writer, stacks []*stack.Stack, dt float64) error {
	cw := csv.NewWriter(w)

	header := []string{"step", "time_s"}
	for i := range stacks {
		header = append(header,
			fmt.Sprintf("voltage_%d", i),
			fmt.Sprintf("degradation_%d", i),
			fmt.Sprintf("power_w_%d", i),
		)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	steps := 0
	type history struct{ voltage, degradation, power []float64 }
	histories := make([]history, len(stacks))
	for i, stk := range stacks {
		v, d, p := stk.History()
		histories[i] = history{v, d, p}
		if len(v) > steps {
			steps = len(v)
		}
	}

	fmtFloat := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for step := 0; step < steps; step++ {
		row := []string{
			strconv.Itoa(step),
			fmtFloat(float64(step) * dt),
		}
		for _, h := range histories {
			if step < len(h.voltage) {
				row = append(row, fmtFloat(h.voltage[step]), fmtFloat(h.degradation[step]), fmtFloat(h.power[step]))
			} else {
				row = append(row, "", "", "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
