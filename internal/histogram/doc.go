// Package histogram bins the brightness of a frame for display.
//
// The histogram is computed from the same working buffer the meter samples,
// but independently of the exposure pipeline: it reads no metering state and
// produces a self-contained Result every time it runs.
//
// # Modes
//
// Combined mode produces one 256-bin histogram of BT.601 display luma with
// the exposure-compensation gain applied, and classifies every bin as
// under-exposed, neutral or over-exposed against the profile thresholds.
//
// Separate mode produces independent red, green and blue histograms of the
// raw channel values, with no gain and no luma mixing.
//
// # Sampling
//
// Every other pixel of the working buffer, in raster order, is counted. The
// bins of any histogram in a Result therefore always sum to SampledPixels.
//
// # Zone Markers
//
// Markers place photographic zones on the brightness axis at
// referenceGray x 2^(zone-5), zone 5 being middle gray. A marker that lands
// above 255 flags the highlight tail as clipped; one below 1 flags the
// shadow tail.
package histogram
