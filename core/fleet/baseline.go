package fleet

// baseline adds and removes one stack at a time in index order, only
// when total active capacity under- or over-shoots the input at
// minimum-power granularity. Committed stacks form a prefix of the
// index order; every stack gets its minimum power first and the
// remainder fills them up towards rating in order.
type baseline struct {
	p Params
}

func (a *baseline) Name() string { return PolicyBaseline }

func (a *baseline) Allocate(powerIn float64, st *State) []float64 {
	n := a.p.NStacks
	cur := st.DesiredCount()

	if powerIn > float64(cur)*a.p.RatingW && powerIn > a.p.MinPowerW {
		st.Commit(minInt(cur, n-1))
	} else if cur > 0 && powerIn < float64(cur)*a.p.MinPowerW {
		st.Release(cur - 1)
	}

	targets := make([]float64, n)
	avail := powerIn
	for i := range targets {
		if st.Desired[i] {
			targets[i] = a.p.MinPowerW
			avail -= a.p.MinPowerW
		}
	}
	headroom := a.p.RatingW - a.p.MinPowerW
	for i := range targets {
		if !st.Desired[i] {
			continue
		}
		if avail >= headroom {
			targets[i] += headroom
			avail -= headroom
		} else {
			targets[i] += avail
			avail = 0
		}
	}
	return targets
}
