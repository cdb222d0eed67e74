package imaging

import (
	"image"
	"math"
)

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
//   - Width = X2 - X1, Height = Y2 - Y1
type Region struct {
	X1 int `json:"x1"` // Left edge X coordinate (inclusive)
	Y1 int `json:"y1"` // Top edge Y coordinate (inclusive)
	X2 int `json:"x2"` // Right edge X coordinate (exclusive)
	Y2 int `json:"y2"` // Bottom edge Y coordinate (exclusive)
}

// Width returns the horizontal extent of the region.
func (r Region) Width() int { return r.X2 - r.X1 }

// Height returns the vertical extent of the region.
func (r Region) Height() int { return r.Y2 - r.Y1 }

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// CenteredRegion returns the region covering fraction of each dimension of a
// width x height buffer, centered on the buffer.
//
// Sizes are rounded to the nearest pixel and never drop below 1x1 on a
// non-empty buffer, so a spot fraction on a tiny frame still meters the
// center pixel. An empty buffer yields an empty region.
func CenteredRegion(width, height int, fraction float64) Region {
	if width <= 0 || height <= 0 {
		return Region{}
	}
	w := regionSpan(width, fraction)
	h := regionSpan(height, fraction)
	x1 := (width - w) / 2
	y1 := (height - h) / 2
	return Region{X1: x1, Y1: y1, X2: x1 + w, Y2: y1 + h}
}

func regionSpan(size int, fraction float64) int {
	n := int(math.Round(float64(size) * fraction))
	if n < 1 {
		n = 1
	}
	if n > size {
		n = size
	}
	return n
}
