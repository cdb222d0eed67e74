package meter

import (
	"math"
	"testing"
)

func TestCalculateEffectiveEVReference(t *testing.T) {
	got := CalculateEffectiveEV(128, 100, 0, 1.0, 128, 7)
	if got != 7.0 {
		t.Errorf("EV = %v, want exactly 7", got)
	}
}

func TestCalculateEffectiveEVNoSignal(t *testing.T) {
	for _, b := range []float64{0, -1, -255} {
		if got := CalculateEffectiveEV(b, 100, 0, 1, 118, 7); !math.IsInf(got, -1) {
			t.Errorf("EV(%g) = %v, want -Inf", b, got)
		}
	}
	if Metered(math.Inf(-1)) {
		t.Error("Metered(-Inf) = true")
	}
}

func TestCalculateEffectiveEVMonotonic(t *testing.T) {
	prev := math.Inf(-1)
	for b := 1.0; b <= 255; b++ {
		ev := CalculateEffectiveEV(b, 100, 0, 1, 118, 7)
		if !(ev > prev) {
			t.Fatalf("EV not increasing at brightness %g: %v <= %v", b, ev, prev)
		}
		prev = ev
	}

	prev = math.Inf(-1)
	for _, iso := range ISOValues() {
		ev := CalculateEffectiveEV(100, iso, 0, 1, 118, 7)
		if !(ev > prev) {
			t.Fatalf("EV not increasing at ISO %d", iso)
		}
		prev = ev
	}
}

func TestCalculateEffectiveEVCompensationSlope(t *testing.T) {
	base := CalculateEffectiveEV(90, 400, 0, 1.2, 118, 7)
	for _, c := range CompensationSteps() {
		got := CalculateEffectiveEV(90, 400, c, 1.2, 118, 7)
		if !near(got-base, c, 1e-12) {
			t.Errorf("compensation %g shifted EV by %g", c, got-base)
		}
	}
}

func TestCalculateEffectiveEVStops(t *testing.T) {
	a := CalculateEffectiveEV(50, 100, 0, 1, 118, 7)
	b := CalculateEffectiveEV(100, 100, 0, 1, 118, 7)
	if !near(b-a, 1, 1e-12) {
		t.Errorf("doubling brightness changed EV by %g, want 1", b-a)
	}
	c := CalculateEffectiveEV(50, 200, 0, 1, 118, 7)
	if !near(c-a, 1, 1e-12) {
		t.Errorf("doubling ISO changed EV by %g, want 1", c-a)
	}
}

func TestProfileEffectiveEV(t *testing.T) {
	cfg := DefaultExposureConfig()
	cfg.ISO = 200
	cfg.Compensation = -1
	if got := testProfile().EffectiveEV(128, cfg); got != 7 {
		t.Errorf("EffectiveEV = %v, want 7", got)
	}
}
