package meter

import (
	"image"
	"math"

	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
)

// Default region fractions of the working-buffer dimensions.
const (
	DefaultCenterFraction = 0.20
	DefaultSpotFraction   = 0.04
)

// Sampler measures the brightness of a centered region of a frame.
type Sampler struct {
	// Weights combine linear R, G, B. Zero value means BT.709.
	Weights imaging.LumaWeights

	// CenterFraction and SpotFraction size the region per metering mode.
	// Zero means the package default.
	CenterFraction float64
	SpotFraction   float64
}

// DefaultSampler returns a BT.709 sampler with the default fractions.
func DefaultSampler() Sampler {
	return Sampler{
		Weights:        imaging.BT709,
		CenterFraction: DefaultCenterFraction,
		SpotFraction:   DefaultSpotFraction,
	}
}

func (s Sampler) weights() imaging.LumaWeights {
	if s.Weights == (imaging.LumaWeights{}) {
		return imaging.BT709
	}
	return s.Weights
}

func (s Sampler) fraction(mode MeteringMode) float64 {
	if mode == Spot {
		if s.SpotFraction > 0 {
			return s.SpotFraction
		}
		return DefaultSpotFraction
	}
	if s.CenterFraction > 0 {
		return s.CenterFraction
	}
	return DefaultCenterFraction
}

// Region returns the metering region for mode on a width x height buffer.
func (s Sampler) Region(width, height int, mode MeteringMode) imaging.Region {
	return imaging.CenteredRegion(width, height, s.fraction(mode))
}

// Sample meters a frame. A frame that is not ready yields 0.
func (s Sampler) Sample(f *imaging.Frame, mode MeteringMode, transfer imaging.Transfer) float64 {
	if !f.Ready() {
		return 0
	}
	return s.SampleWorking(imaging.WorkingBuffer(f), mode, transfer)
}

// SampleWorking meters an already-resampled working buffer and returns an
// encoded brightness in [0,255].
//
// Each pixel is linearized through transfer and combined with the luma
// weights. Spot mode averages the region uniformly. Center mode weights each
// pixel by a Gaussian centered on the region with sigma = region width / 4.
// The linear mean is re-encoded through the same transfer.
func (s Sampler) SampleWorking(work *image.NRGBA, mode MeteringMode, transfer imaging.Transfer) float64 {
	b := work.Bounds()
	region := s.Region(b.Dx(), b.Dy(), mode)
	if region.Width() <= 0 || region.Height() <= 0 {
		return 0
	}
	block := imaging.CropRegion(work, region)
	w, h := block.Bounds().Dx(), block.Bounds().Dy()
	lw := s.weights()

	var sum, wsum float64
	gaussian := mode != Spot
	cx, cy := float64(w-1)/2, float64(h-1)/2
	sigma := float64(w) / 4
	twoSigma2 := 2 * sigma * sigma

	for y := 0; y < h; y++ {
		row := block.Pix[y*block.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4:]
			l := lw.Luma(transfer.Linearize(p[0]), transfer.Linearize(p[1]), transfer.Linearize(p[2]))
			weight := 1.0
			if gaussian {
				dx, dy := float64(x)-cx, float64(y)-cy
				weight = math.Exp(-(dx*dx + dy*dy) / twoSigma2)
			}
			sum += l * weight
			wsum += weight
		}
	}
	if wsum == 0 {
		return 0
	}
	return transfer.Encode(sum/wsum) * 255
}
