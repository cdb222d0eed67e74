package meter

import "math"

// Band edges in EV, applied symmetrically around zero.
const (
	SlightBand   = 0.3
	ModerateBand = 0.6
	SevereBand   = 1.0
)

// Severity grades an exposure deviation. Negative values are underexposure.
type Severity int

const (
	SevereUnder   Severity = -3
	ModerateUnder Severity = -2
	SlightUnder   Severity = -1
	Balanced      Severity = 0
	SlightOver    Severity = 1
	ModerateOver  Severity = 2
	SevereOver    Severity = 3
)

var severityNames = map[Severity]string{
	SevereUnder:   "severe_under",
	ModerateUnder: "moderate_under",
	SlightUnder:   "slight_under",
	Balanced:      "none",
	SlightOver:    "slight_over",
	ModerateOver:  "moderate_over",
	SevereOver:    "severe_over",
}

var severityLabels = map[Severity]string{
	SevereUnder:   "severe underexposure",
	ModerateUnder: "moderate underexposure",
	SlightUnder:   "slight underexposure",
	Balanced:      "none",
	SlightOver:    "slight overexposure",
	ModerateOver:  "moderate overexposure",
	SevereOver:    "severe overexposure",
}

var severityAdvice = map[Severity]string{
	SevereUnder:   "Far too dark: open up or slow the shutter by a stop or more.",
	ModerateUnder: "Noticeably dark: open up or slow the shutter by about two thirds of a stop.",
	SlightUnder:   "Slightly dark: consider a third of a stop more exposure.",
	Balanced:      "Exposure is balanced.",
	SlightOver:    "Slightly bright: consider a third of a stop less exposure.",
	ModerateOver:  "Noticeably bright: stop down or speed up the shutter by about two thirds of a stop.",
	SevereOver:    "Far too bright: stop down or speed up the shutter by a stop or more.",
}

// String returns the machine-readable name, e.g. "slight_over".
func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return "unknown"
}

// MarshalText encodes the severity as its name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Label returns the human-readable label, e.g. "slight overexposure".
func (s Severity) Label() string { return severityLabels[s] }

// Under reports whether s is one of the underexposure grades.
func (s Severity) Under() bool { return s < Balanced }

// Over reports whether s is one of the overexposure grades.
func (s Severity) Over() bool { return s > Balanced }

// Classification is the graded deviation for one tick.
type Classification struct {
	Severity  Severity `json:"severity"`
	Label     string   `json:"label"`
	Advice    string   `json:"advice"`
	Deviation float64  `json:"deviation"`
}

// Classify grades evDifference (candidate EV minus metered EV). Negative
// edges are inclusive and positive edges are inclusive from below:
//
//	d <= -1.0         severe under
//	-1.0 < d <= -0.6  moderate under
//	-0.6 < d <= -0.3  slight under
//	-0.3 < d <  0.3   none
//	 0.3 <= d < 0.6   slight over
//	 0.6 <= d < 1.0   moderate over
//	 d >= 1.0         severe over
//
// NaN classifies as balanced.
func Classify(evDifference float64) Classification {
	s := severityOf(evDifference)
	return Classification{
		Severity:  s,
		Label:     s.Label(),
		Advice:    severityAdvice[s],
		Deviation: evDifference,
	}
}

func severityOf(d float64) Severity {
	switch {
	case math.IsNaN(d):
		return Balanced
	case d <= -SevereBand:
		return SevereUnder
	case d <= -ModerateBand:
		return ModerateUnder
	case d <= -SlightBand:
		return SlightUnder
	case d < SlightBand:
		return Balanced
	case d < ModerateBand:
		return SlightOver
	case d < SevereBand:
		return ModerateOver
	default:
		return SevereOver
	}
}
