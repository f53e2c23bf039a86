package fleet

import (
	"fmt"
	"sort"
)

// healthiestInactive returns the k non-desired stacks with the lowest
// degradation, ties broken by lowest index. Asking for more stacks than
// are inactive is a policy defect and panics.
func healthiestInactive(st *State, k int) []int {
	var candidates []int
	for i, d := range st.Desired {
		if !d {
			candidates = append(candidates, i)
		}
	}
	return rankByDegradation(candidates, st.Deg, k, false)
}

// illestDesired returns the k desired stacks with the highest
// degradation.
func illestDesired(st *State, k int) []int {
	var candidates []int
	for i, d := range st.Desired {
		if d {
			candidates = append(candidates, i)
		}
	}
	return rankByDegradation(candidates, st.Deg, k, true)
}

// illestOf ranks only the stacks selected by mask, highest degradation
// first.
func illestOf(mask []bool, deg []float64, k int) []int {
	var candidates []int
	for i, m := range mask {
		if m {
			candidates = append(candidates, i)
		}
	}
	return rankByDegradation(candidates, deg, k, true)
}

func rankByDegradation(candidates []int, deg []float64, k int, descending bool) []int {
	if k > len(candidates) {
		panic(fmt.Sprintf("fleet: policy requested %d stacks from %d candidates", k, len(candidates)))
	}
	sorted := append([]int(nil), candidates...)
	sort.SliceStable(sorted, func(a, b int) bool {
		if descending {
			return deg[sorted[a]] > deg[sorted[b]]
		}
		return deg[sorted[a]] < deg[sorted[b]]
	})
	return sorted[:k]
}
