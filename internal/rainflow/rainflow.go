// Package rainflow implements rainflow cycle counting following the
// ASTM E1049-85 three-point convention. It converts an irregular signal
// into discrete stress-range/count pairs and is used to quantify
// voltage-fluctuation fatigue on electrolyzer stacks.
package rainflow

import "math"

// Cycle is a counted stress cycle. Count is 1 for a full cycle and 0.5
// for a half cycle extracted from the residue.
type Cycle struct {
	Range float64
	Count float64
}

// reversals extracts the turning points of the series, always including
// the first and last samples. Repeated values are collapsed.
func reversals(series []float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	rev := []float64{series[0]}
	prev := series[0]
	var lastDir float64
	for i := 1; i < len(series); i++ {
		d := series[i] - prev
		if d == 0 {
			continue
		}
		dir := 1.0
		if d < 0 {
			dir = -1
		}
		if lastDir != 0 && dir != lastDir {
			rev = append(rev, prev)
		}
		lastDir = dir
		prev = series[i]
	}
	if prev != rev[len(rev)-1] {
		rev = append(rev, prev)
	}
	return rev
}

// Count performs rainflow counting on the series and returns the
// extracted cycles. Full cycles are counted during the stack pass,
// remaining residue transitions count as half cycles.
func Count(series []float64) []Cycle {
	rev := reversals(series)
	var cycles []Cycle
	var stack []float64
	for _, r := range rev {
		stack = append(stack, r)
		for len(stack) >= 3 {
			n := len(stack)
			x := math.Abs(stack[n-1] - stack[n-2])
			y := math.Abs(stack[n-2] - stack[n-3])
			if x < y {
				break
			}
			if n == 3 {
				// range contains the starting point, half cycle
				cycles = append(cycles, Cycle{Range: y, Count: 0.5})
				stack = stack[1:]
			} else {
				cycles = append(cycles, Cycle{Range: y, Count: 1})
				stack = append(stack[:n-3], stack[n-1])
			}
		}
	}
	for i := 0; i+1 < len(stack); i++ {
		cycles = append(cycles, Cycle{Range: math.Abs(stack[i+1] - stack[i]), Count: 0.5})
	}
	return cycles
}

// CountBinned aggregates counted cycles into nbins equal-width range
// bins over (0, maxRange]. The reported Range of each bin is its upper
// edge. Bins with zero count are omitted.
func CountBinned(series []float64, nbins int) []Cycle {
	cycles := Count(series)
	if len(cycles) == 0 || nbins <= 0 {
		return nil
	}
	maxRange := 0.0
	for _, c := range cycles {
		if c.Range > maxRange {
			maxRange = c.Range
		}
	}
	if maxRange == 0 {
		return nil
	}
	width := maxRange / float64(nbins)
	counts := make([]float64, nbins)
	for _, c := range cycles {
		idx := int(math.Ceil(c.Range/width)) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= nbins {
			idx = nbins - 1
		}
		counts[idx] += c.Count
	}
	var out []Cycle
	for i, cnt := range counts {
		if cnt == 0 {
			continue
		}
		out = append(out, Cycle{Range: float64(i+1) * width, Count: cnt})
	}
	return out
}

// WeightedSum returns the sum of range*count over all cycles, the
// scalar fatigue contribution of the signal.
func WeightedSum(cycles []Cycle) float64 {
	var sum float64
	for _, c := range cycles {
		sum += c.Range * c.Count
	}
	return sum
}
