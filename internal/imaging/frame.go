package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrFrameGeometry is returned when a pixel buffer is too short for the
// width, height and channel count it is declared with.
var ErrFrameGeometry = errors.New("frame buffer does not match geometry")

// Frame is a single decoded frame: interleaved 8-bit samples, rows packed
// without padding.
//
// Channels is 3 for RGB buffers and 4 for RGBA buffers. Alpha is carried but
// never used for metering: RGBX and BGRA-style buffers that leave it at 0
// meter the same as opaque ones. A Frame must not be mutated while a tick is
// reading it.
type Frame struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Channels int     `json:"channels"`
	Pix      []uint8 `json:"-"`
}

// NewFrame wraps an existing pixel buffer without copying it.
//
// Returns an error when channels is not 3 or 4, when a dimension is negative,
// or when pix holds fewer than width*height*channels bytes.
func NewFrame(width, height, channels int, pix []uint8) (*Frame, error) {
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("unsupported channel count %d (want 3 or 4)", channels)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("negative frame size %dx%d", width, height)
	}
	need := width * height * channels
	if len(pix) < need {
		return nil, fmt.Errorf("%w: need %d bytes for %dx%dx%d, have %d",
			ErrFrameGeometry, need, width, height, channels, len(pix))
	}
	return &Frame{Width: width, Height: height, Channels: channels, Pix: pix}, nil
}

// FrameFromImage copies any image.Image into a 4-channel Frame.
//
// The copy is non-premultiplied, so channel values of opaque pixels are the
// encoded values stored in the source.
func FrameFromImage(img image.Image) *Frame {
	dst := imaging.Clone(img)
	b := dst.Bounds()
	return &Frame{Width: b.Dx(), Height: b.Dy(), Channels: 4, Pix: dst.Pix}
}

// Ready reports whether the frame can be metered. A nil receiver is not ready.
func (f *Frame) Ready() bool {
	if f == nil || f.Width <= 0 || f.Height <= 0 {
		return false
	}
	if f.Channels != 3 && f.Channels != 4 {
		return false
	}
	return len(f.Pix) >= f.Width*f.Height*f.Channels
}

// Image exposes the frame as an opaque *image.NRGBA.
//
// Fully opaque RGBA frames share the underlying buffer. RGBA frames with any
// alpha below 0xff, and all RGB frames, are copied into a new buffer with
// alpha forced to 0xff, so resampling never weights colour by alpha.
func (f *Frame) Image() *image.NRGBA {
	rect := image.Rect(0, 0, f.Width, f.Height)
	if f.Channels == 4 {
		pix := f.Pix[:f.Width*f.Height*4]
		if opaque(pix) {
			return &image.NRGBA{Pix: pix, Stride: f.Width * 4, Rect: rect}
		}
		out := image.NewNRGBA(rect)
		copy(out.Pix, pix)
		for i := 3; i < len(out.Pix); i += 4 {
			out.Pix[i] = 0xff
		}
		return out
	}

	out := image.NewNRGBA(rect)
	for i, j := 0, 0; i < f.Width*f.Height*3; i, j = i+3, j+4 {
		out.Pix[j] = f.Pix[i]
		out.Pix[j+1] = f.Pix[i+1]
		out.Pix[j+2] = f.Pix[i+2]
		out.Pix[j+3] = 0xff
	}
	return out
}

func opaque(pix []uint8) bool {
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xff {
			return false
		}
	}
	return true
}
