// Package meter estimates photographic exposure from a frame.
//
// Each call to Engine.Tick runs the full pipeline over one frame:
//
//  1. The Sampler measures the brightness of a centered region for every
//     metering mode (Gaussian-weighted center, uniform spot) in linear light.
//  2. CalculateEffectiveEV maps the configured mode's brightness onto an
//     absolute EV through the calibration profile, ISO and compensation.
//  3. The Smoother filters the EV for display; AE-lock can pin it.
//  4. Resolve picks the shutter or aperture on the fixed priority axis whose
//     candidate EV is closest.
//  5. Classify grades the remaining deviation into severity bands.
//
// The histogram is computed from the same working buffer in the same tick but
// does not depend on any of the above.
//
// Frames that are not ready, or scenes darker or brighter than the usable
// range, are reported through TickResult.Status rather than as errors.
//
// Configuration is passed by value on every tick. The only state an Engine
// keeps is the smoother and the AE-lock; the candidate table is read-only and
// shared.
package meter
