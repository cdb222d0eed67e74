// Package imaging is the frame layer of the exposure meter.
//
// It turns decoded images into Frame values, bounds the cost of per-tick work
// by resampling frames into a capped working buffer, locates centered
// metering regions, and owns the colour maths shared by the sampler and the
// histogram: luma weight sets and encoded/linear transfer functions.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (X1,Y1) is inclusive and (X2,Y2) is exclusive
//
// # Frames
//
// A Frame is an interleaved 8-bit RGB or RGBA buffer. A nil Frame, a frame
// with a zero dimension, or a frame whose buffer is shorter than its
// geometry is "not ready". Callers treat that as a sentinel rather than an
// error: the meter reports no signal for the tick and tries again on the next.
//
// # Working Buffer
//
// WorkingBuffer scales a frame down to fit within MaxWorkingWidth x
// MaxWorkingHeight, preserving aspect ratio. Frames already inside the cap
// are copied, never upscaled.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Frame values are treated as
// immutable once handed to the meter; every function in this package reads
// them without synchronization.
package imaging
