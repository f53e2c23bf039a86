package fleet

import "math"

// equalSplit shares power evenly over a health-selected set of stacks.
// The eager variant activates as many stacks as the input can hold at
// minimum power; the hesitant one only grows the set once every running
// stack would exceed rating, and only shrinks once the set cannot all
// stay above minimum power.
type equalSplit struct {
	p     Params
	eager bool
}

func (a *equalSplit) Name() string {
	if a.eager {
		return PolicyEqualSplitEager
	}
	return PolicyEqualSplitHesitant
}

func (a *equalSplit) Allocate(powerIn float64, st *State) []float64 {
	var nActive int
	if a.eager {
		nActive = minInt(a.p.NStacks, int(math.Floor(powerIn/a.p.MinPowerW)))
	} else {
		cur := st.DesiredCount()
		nActive = cur
		if powerIn > a.p.RatingW*float64(cur)+a.p.MinPowerW {
			diff := int(math.Ceil((powerIn - float64(cur)*a.p.RatingW) / a.p.RatingW))
			nActive = cur + minInt(diff, a.p.NStacks-cur)
		} else if powerIn < a.p.MinPowerW*float64(cur) {
			nActive = int(math.Floor(powerIn / a.p.MinPowerW))
		}
	}

	var perStack float64
	if nActive > 0 {
		perStack = math.Min(powerIn/float64(nActive), a.p.RatingW)
	}

	cur := st.DesiredCount()
	if nActive > cur {
		for _, i := range healthiestInactive(st, nActive-cur) {
			st.Commit(i)
		}
	} else if nActive < cur {
		for _, i := range illestDesired(st, cur-nActive) {
			st.Release(i)
		}
	}

	targets := make([]float64, a.p.NStacks)
	for i := range targets {
		if st.Desired[i] {
			targets[i] = perStack
		}
	}
	return targets
}
