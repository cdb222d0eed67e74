package meter

import "math"

// CalculateEffectiveEV converts a sampled brightness into an Exposure Value:
//
//	referenceEV + log2(brightness*calibrationFactor/referenceGray)
//	            + log2(iso/100) + compensation
//
// A brightness of zero or below cannot be metered and yields -Inf, which the
// engine reports as a sentinel rather than an error.
func CalculateEffectiveEV(brightness float64, iso int, compensation, calibrationFactor, referenceGray, referenceEV float64) float64 {
	if brightness <= 0 {
		return math.Inf(-1)
	}
	return referenceEV +
		math.Log2(brightness*calibrationFactor/referenceGray) +
		math.Log2(float64(iso)/100) +
		compensation
}

// EffectiveEV applies CalculateEffectiveEV with the profile's calibration and
// the config's ISO and compensation.
func (p CalibrationProfile) EffectiveEV(brightness float64, cfg ExposureConfig) float64 {
	return CalculateEffectiveEV(brightness, cfg.ISO, cfg.Compensation,
		p.CalibrationFactor, p.ReferenceGray, p.ReferenceEV)
}

// Metered reports whether ev is a usable value rather than the -Inf sentinel.
func Metered(ev float64) bool {
	return !math.IsInf(ev, 0) && !math.IsNaN(ev)
}
