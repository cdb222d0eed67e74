package meter

import "math"

// Resolution is the candidate chosen for an EV along the fixed axis.
type Resolution struct {
	Candidate Candidate `json:"candidate"`

	// EVDifference is Candidate.EV minus the EV that was resolved.
	EVDifference float64 `json:"ev_difference"`
}

// Resolve picks the candidate on the fixed axis whose EV is closest to ev.
//
// Only candidates whose fixed-axis value equals fixed exactly are considered;
// both sides come from the same literal tables. When two candidates are
// equally close, the one with the smaller opposite-axis value wins, so the
// result does not depend on table order.
//
// found is false when no candidate lies on the axis; the returned Resolution
// is then the zero value.
func Resolve(ev float64, table *CandidateTable, priority PriorityMode, fixed float64) (res Resolution, found bool) {
	if table == nil {
		return Resolution{}, false
	}

	var best float64
	for _, c := range table.entries {
		if fixedValue(c, priority) != fixed {
			continue
		}
		d := math.Abs(c.EV - ev)
		switch {
		case !found || d < best:
		case d == best && oppositeValue(c, priority) < oppositeValue(res.Candidate, priority):
		default:
			continue
		}
		best = d
		res.Candidate = c
		found = true
	}
	if !found {
		return Resolution{}, false
	}
	res.EVDifference = res.Candidate.EV - ev
	return res, true
}
