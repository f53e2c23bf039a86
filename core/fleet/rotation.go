package fleet

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// powerSharing splits the input evenly across committed stacks and
// rotates stacks in and out one at a time as the per-stack share
// crosses the high/low thresholds.
type powerSharing struct {
	p        Params
	rotation []int
}

func newPowerSharing(p Params) *powerSharing {
	return &powerSharing{p: p, rotation: identityRotation(p.NStacks)}
}

func (a *powerSharing) Name() string { return PolicyPowerSharingRotation }

func (a *powerSharing) Allocate(powerIn float64, st *State) []float64 {
	n := a.p.NStacks
	th := a.p.Thresholds

	committed := st.DesiredCount()
	share := powerIn / float64(n)
	if committed > 0 {
		share = powerIn / float64(committed)
	}

	// how many stacks the input can keep above half rating
	supported := minInt(int(math.Floor(powerIn/(th.SupportFraction*a.p.RatingW))), n)
	diff := supported - committed

	if diff > 0 && (diff > 1 || share > th.ShareHigh*a.p.RatingW) {
		if st.WaitingCount() == 0 && st.OnCount() != n {
			for k := 0; k < diff; k++ {
				next := nextInRotation(a.rotation, st)
				if next < 0 {
					break
				}
				st.Commit(next)
			}
		}
	}
	if diff < 0 && share < th.ShareLow*a.p.RatingW && st.OnCount() > 0 {
		off := a.rotation[0]
		st.Release(off)
		a.rotation = append(a.rotation[1:], off)
	}

	targets := make([]float64, n)
	committed = st.DesiredCount()
	if committed == 0 {
		return targets
	}
	share = math.Min(powerIn/float64(committed), a.p.RatingW)
	for i := range targets {
		if st.Desired[i] {
			targets[i] = share
		}
	}
	return targets
}

// sequentialRotation fills stacks to full rating in rotation order and
// lets one swing stack absorb the remainder. A moving-average slope of
// the input power decides whether to start a stack ahead of a ramp or
// shed one on the way down.
type sequentialRotation struct {
	p           Params
	rotation    []int
	window      []float64
	filterWidth int
}

func newSequentialRotation(p Params) *sequentialRotation {
	// a slope needs at least two samples; with a timestep larger than
	// the window the filter degrades to a two-point difference
	width := int(math.Round(p.Thresholds.SlopeWindow / p.Dt))
	if width < 2 {
		width = 2
	}
	return &sequentialRotation{
		p:           p,
		rotation:    identityRotation(p.NStacks),
		window:      []float64{0},
		filterWidth: width,
	}
}

func (a *sequentialRotation) Name() string { return PolicySequentialRotation }

// slope pushes the current input into the window and returns the mean
// first difference of the windowed signal.
func (a *sequentialRotation) slope(powerIn float64) float64 {
	if len(a.window) < a.filterWidth {
		a.window = append(a.window, powerIn)
	} else {
		copy(a.window, a.window[1:])
		a.window[len(a.window)-1] = powerIn
	}
	w := a.window
	return (stat.Mean(w[1:], nil) - stat.Mean(w[:len(w)-1], nil)) / a.p.Dt
}

func (a *sequentialRotation) Allocate(powerIn float64, st *State) []float64 {
	n := a.p.NStacks
	th := a.p.Thresholds
	ratingKW := a.p.RatingKW()

	pInKW := powerIn / 1e3
	nFull := math.Floor(pInKW / ratingKW)
	leftOver := math.Mod(pInKW, ratingKW)
	stackDiff := int(nFull) - st.DesiredCount()
	swing := a.rotation[0]
	slope := a.slope(powerIn)

	targets := make([]float64, n)
	for i := range targets {
		if st.On[i] {
			targets[i] = a.p.RatingW
		}
	}

	if stackDiff >= 0 {
		if st.WaitingCount() == 0 && st.OnCount() != n && leftOver > th.LeftoverOn*ratingKW {
			for k := 0; k < stackDiff; k++ {
				next := nextInRotation(a.rotation, st)
				if next < 0 {
					break
				}
				st.Commit(next)
			}
		}
		return targets
	}

	switch {
	case stackDiff == -1:
		// one stack short of demand: catch up immediately
		if st.WaitingCount() == 0 && st.OnCount() != n {
			if next := nextInRotation(a.rotation, st); next >= 0 {
				st.Commit(next)
				targets[next] = a.p.RatingW
			}
		}

	case (leftOver < th.LeftoverOff*ratingKW && st.WaitingCount() == 0) ||
		(stackDiff < -1 && st.WaitingCount() == 0):
		if st.OnCount() > 0 && slope < 0 {
			off := a.rotation[0]
			st.Release(off)
			a.rotation = append(a.rotation[1:], off)
			targets[swing] = 0
		}

	case leftOver < th.LeftoverOff*ratingKW && st.WaitingCount() > 0:
		// hand the tail over gradually while the replacement warms up
		half := (leftOver + ratingKW) * 1e3 / 2
		for i, w := range st.Waiting {
			if w {
				targets[i] = half
			}
		}
		targets[swing] = half

	case leftOver > th.LeftoverPreempt*ratingKW && slope > 0:
		if st.WaitingCount() == 0 && st.OnCount() != n {
			if next := nextInRotation(a.rotation, st); next >= 0 {
				st.Commit(next)
			}
		}
		if st.WaitingCount() > 0 {
			half := leftOver * 1e3 / 2
			for i, w := range st.Waiting {
				if w {
					targets[i] = half
				}
			}
			targets[swing] = half
		} else {
			targets[swing] = leftOver * 1e3
		}

	default:
		for i, w := range st.Waiting {
			if w {
				targets[i] = a.p.RatingW
			}
		}
		targets[swing] = leftOver * 1e3
	}

	return targets
}
