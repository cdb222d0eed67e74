package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Working buffer cap. Frames larger than this are scaled down before any
// per-pixel work so that tick cost is bounded regardless of camera resolution.
const (
	MaxWorkingWidth  = 640
	MaxWorkingHeight = 480
)

// WorkingBuffer resamples a frame into a buffer no larger than
// MaxWorkingWidth x MaxWorkingHeight, preserving aspect ratio.
//
// Frames that already fit are copied at their native size. The caller must
// check f.Ready() first; WorkingBuffer does not guard against empty frames.
func WorkingBuffer(f *Frame) *image.NRGBA {
	return imaging.Fit(f.Image(), MaxWorkingWidth, MaxWorkingHeight, imaging.Linear)
}

// CropRegion extracts a region of a working buffer as a new image whose
// bounds start at (0,0).
func CropRegion(img image.Image, r Region) *image.NRGBA {
	return imaging.Crop(img, r.Rect())
}
