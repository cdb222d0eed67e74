package meter

import "math"

// Smoother is an exponential moving average over EV samples.
//
// The first sample sets the value directly; each later sample x moves it to
// value*(1-alpha) + x*alpha. Non-finite samples are ignored so a no-signal
// tick never poisons the filter. A Smoother is not safe for concurrent use.
type Smoother struct {
	alpha float64
	value float64
	set   bool
}

// NewSmoother returns an unset smoother with the given factor.
func NewSmoother(alpha float64) *Smoother {
	return &Smoother{alpha: alpha}
}

// SetAlpha changes the smoothing factor without disturbing the current value.
func (s *Smoother) SetAlpha(alpha float64) { s.alpha = alpha }

// Alpha returns the smoothing factor.
func (s *Smoother) Alpha() float64 { return s.alpha }

// Update feeds one sample and returns the new value.
func (s *Smoother) Update(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return s.value
	}
	if !s.set {
		s.value = x
		s.set = true
		return s.value
	}
	s.value = s.value*(1-s.alpha) + x*s.alpha
	return s.value
}

// Value returns the current value and whether any sample has been absorbed.
func (s *Smoother) Value() (float64, bool) {
	return s.value, s.set
}

// Reset returns the smoother to the unset state.
func (s *Smoother) Reset() {
	s.value = 0
	s.set = false
}

// AELock pins the displayed EV while engaged.
//
// The value is captured once, either at Engage or, when nothing has been
// metered yet, from the first sample passed to Pin afterwards.
type AELock struct {
	engaged  bool
	captured float64
	have     bool
}

// Engage locks. value is the EV to hold; have reports whether it is valid.
// Engaging an already-engaged lock keeps the original capture.
func (l *AELock) Engage(value float64, have bool) {
	if l.engaged {
		return
	}
	l.engaged = true
	l.captured = value
	l.have = have
}

// Release unlocks. Releasing an unlocked AELock has no effect.
func (l *AELock) Release() {
	l.engaged = false
	l.have = false
	l.captured = 0
}

// Engaged reports whether the lock is held.
func (l *AELock) Engaged() bool { return l.engaged }

// Captured returns the pinned value and whether one has been captured.
func (l *AELock) Captured() (float64, bool) {
	return l.captured, l.engaged && l.have
}

// Pin returns sample when unlocked and the captured value when locked.
func (l *AELock) Pin(sample float64) float64 {
	if !l.engaged {
		return sample
	}
	if !l.have {
		l.captured = sample
		l.have = true
	}
	return l.captured
}
