package fleet

import "math"

// sequentialWear fills a "constant" subset of stacks at full rating and
// lets one variable stack absorb the remainder. With rotate set, the
// variable role moves between stacks as the fleet grows and shrinks,
// spreading partial-load wear; without it the role is pinned to stack
// 0, deliberately concentrating the wear.
type sequentialWear struct {
	p        Params
	rotate   bool
	variable int
	constant []bool
}

func newSequentialWear(p Params, rotate bool) *sequentialWear {
	return &sequentialWear{p: p, rotate: rotate, constant: make([]bool, p.NStacks)}
}

func (a *sequentialWear) Name() string {
	if a.rotate {
		return PolicySequentialEvenWear
	}
	return PolicySequentialSingleWear
}

func (a *sequentialWear) Allocate(powerIn float64, st *State) []float64 {
	n := a.p.NStacks
	nActive := int(math.Min(float64(n), math.Ceil((powerIn-a.p.MinPowerW)/a.p.RatingW)))
	diff := nActive - st.DesiredCount()

	if diff > 0 {
		turnOn := healthiestInactive(st, diff)
		if a.rotate {
			a.variable = lowestIndex(turnOn)
		} else {
			a.variable = 0
		}
		for _, i := range turnOn {
			st.Commit(i)
		}
		copy(a.constant, st.Desired)
		a.constant[a.variable] = false
	} else if diff < 0 {
		if a.rotate {
			// shed the variable stack and demote the illest constant
			// into the variable role, one stack at a time
			for k := 0; k < -diff; k++ {
				st.Release(a.variable)
				if count(a.constant) == 0 {
					break
				}
				off := illestOf(a.constant, st.Deg, 1)[0]
				a.variable = off
				a.constant[off] = false
			}
		} else {
			k := minInt(-diff, count(a.constant))
			for _, i := range illestOf(a.constant, st.Deg, k) {
				a.constant[i] = false
				st.Release(i)
			}
		}
	}

	variableP := math.Min(a.p.RatingW, powerIn-float64(count(a.constant))*a.p.RatingW)
	if variableP < a.p.MinPowerW {
		variableP = 0
	}

	targets := make([]float64, n)
	for i, c := range a.constant {
		if c {
			targets[i] = a.p.RatingW
		}
	}
	targets[a.variable] = variableP
	return targets
}

func lowestIndex(indices []int) int {
	low := indices[0]
	for _, i := range indices[1:] {
		if i < low {
			low = i
		}
	}
	return low
}
