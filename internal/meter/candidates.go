package meter

import (
	"math"
	"sort"
)

// Candidate is one shutter/aperture combination and its exposure value.
type Candidate struct {
	Shutter  float64 `json:"shutter"`
	Aperture float64 `json:"aperture"`
	EV       float64 `json:"ev"`
}

// NewCandidate builds a candidate with EV = log2(aperture^2 / shutter).
func NewCandidate(shutter, aperture float64) Candidate {
	return Candidate{
		Shutter:  shutter,
		Aperture: aperture,
		EV:       math.Log2(aperture * aperture / shutter),
	}
}

// IsZero reports whether c is the null candidate returned on an axis miss.
func (c Candidate) IsZero() bool {
	return c.Shutter == 0 && c.Aperture == 0
}

// CandidateTable is the immutable set of candidates the resolver searches.
// It is safe for concurrent use.
type CandidateTable struct {
	entries []Candidate
}

// NewCandidateTable builds the cartesian product of shutters and apertures,
// shutter-major.
func NewCandidateTable(shutters, apertures []float64) *CandidateTable {
	entries := make([]Candidate, 0, len(shutters)*len(apertures))
	for _, s := range shutters {
		for _, a := range apertures {
			entries = append(entries, NewCandidate(s, a))
		}
	}
	return &CandidateTable{entries: entries}
}

var defaultTable = NewCandidateTable(shutterSpeeds, apertures)

// DefaultCandidateTable returns the shared 11 x 9 table built from
// ShutterSpeeds and Apertures.
func DefaultCandidateTable() *CandidateTable {
	return defaultTable
}

// Len returns the number of candidates.
func (t *CandidateTable) Len() int { return len(t.entries) }

// All returns a copy of every candidate in table order.
func (t *CandidateTable) All() []Candidate {
	return append([]Candidate(nil), t.entries...)
}

// Axis returns the candidates whose fixed-axis value equals value, sorted by
// the opposite axis ascending.
func (t *CandidateTable) Axis(priority PriorityMode, value float64) []Candidate {
	var out []Candidate
	for _, c := range t.entries {
		if fixedValue(c, priority) == value {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oppositeValue(out[i], priority) < oppositeValue(out[j], priority)
	})
	return out
}

func fixedValue(c Candidate, priority PriorityMode) float64 {
	if priority == ShutterPriority {
		return c.Shutter
	}
	return c.Aperture
}

func oppositeValue(c Candidate, priority PriorityMode) float64 {
	if priority == ShutterPriority {
		return c.Aperture
	}
	return c.Shutter
}
