package histogram

import (
	"image"
	"math"

	bildhist "github.com/anthonynsimon/bild/histogram"

	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
)

// BinCount is the number of bins in every histogram.
const BinCount = 256

// SampleStride is the raster-order step between counted pixels.
const SampleStride = 2

// ChannelMode selects between a single luma histogram and per-channel ones.
type ChannelMode string

const (
	Combined ChannelMode = "combined"
	Separate ChannelMode = "separate"
)

// Valid reports whether m is a known channel mode.
func (m ChannelMode) Valid() bool {
	return m == Combined || m == Separate
}

// BinClass is the exposure class of a combined-mode bin.
type BinClass string

const (
	ClassUnder   BinClass = "under"
	ClassNeutral BinClass = "neutral"
	ClassOver    BinClass = "over"
)

// Options controls a histogram computation.
type Options struct {
	// Compensation is the exposure compensation in EV. Combined-mode luma is
	// multiplied by 2^Compensation before binning.
	Compensation float64

	// UnderThreshold and OverThreshold classify combined-mode bins: bins
	// below UnderThreshold are under, bins above OverThreshold are over.
	UnderThreshold uint8
	OverThreshold  uint8

	// Mode selects combined or separate histograms. Empty means Combined.
	Mode ChannelMode

	// ReferenceGray is the 8-bit value of zone 5. Zero disables markers.
	ReferenceGray float64

	// Zones lists the zones to mark. Nil means DefaultZones.
	Zones []int
}

// Result is one histogram computation.
type Result struct {
	Mode ChannelMode `json:"mode"`

	// SampledPixels is the number of pixels counted.
	SampledPixels int `json:"sampled_pixels"`

	// Bins is the combined-mode luma histogram; nil in separate mode.
	Bins []int `json:"bins,omitempty"`

	// Red, Green and Blue are the separate-mode histograms; nil in combined mode.
	Red   []int `json:"red,omitempty"`
	Green []int `json:"green,omitempty"`
	Blue  []int `json:"blue,omitempty"`

	UnderThreshold uint8 `json:"under_threshold"`
	OverThreshold  uint8 `json:"over_threshold"`

	// UnderPixels and OverPixels total the pixels in under and over bins.
	// Only combined mode classifies bins; both are zero in separate mode.
	UnderPixels  int     `json:"under_pixels"`
	OverPixels   int     `json:"over_pixels"`
	UnderPercent float64 `json:"under_percent"`
	OverPercent  float64 `json:"over_percent"`

	Zones             []ZoneMarker `json:"zones,omitempty"`
	ClippedHighlights bool         `json:"clipped_highlights"`
	ClippedShadows    bool         `json:"clipped_shadows"`
}

// Class returns the exposure class of a brightness bin.
func (r *Result) Class(bin int) BinClass {
	switch {
	case bin < int(r.UnderThreshold):
		return ClassUnder
	case bin > int(r.OverThreshold):
		return ClassOver
	default:
		return ClassNeutral
	}
}

// Max returns the largest bin count across every histogram in the result.
func (r *Result) Max() int {
	m := 0
	for _, bins := range [][]int{r.Bins, r.Red, r.Green, r.Blue} {
		for _, v := range bins {
			if v > m {
				m = v
			}
		}
	}
	return m
}

// Compute builds the histogram of a frame. A frame that is not ready yields a
// result with empty bins and zone markers only.
func Compute(f *imaging.Frame, opts Options) *Result {
	if !f.Ready() {
		return ComputeWorking(image.NewNRGBA(image.Rectangle{}), opts)
	}
	return ComputeWorking(imaging.WorkingBuffer(f), opts)
}

// ComputeWorking builds the histogram of an already-resampled working buffer.
func ComputeWorking(work *image.NRGBA, opts Options) *Result {
	mode := opts.Mode
	if mode == "" {
		mode = Combined
	}

	res := &Result{
		Mode:           mode,
		UnderThreshold: opts.UnderThreshold,
		OverThreshold:  opts.OverThreshold,
	}

	if opts.ReferenceGray > 0 {
		zones := opts.Zones
		if zones == nil {
			zones = DefaultZones
		}
		res.Zones, res.ClippedHighlights, res.ClippedShadows = ZoneMarkers(opts.ReferenceGray, zones)
	}

	if mode == Separate {
		computeSeparate(work, res)
	} else {
		computeCombined(work, math.Exp2(opts.Compensation), res)
	}
	return res
}

// forEachSample calls fn with the RGB values of every counted pixel.
func forEachSample(work *image.NRGBA, fn func(r, g, b uint8)) int {
	w, h := work.Bounds().Dx(), work.Bounds().Dy()
	n := 0
	for i := 0; i < w*h; i += SampleStride {
		x, y := i%w, i/w
		p := work.Pix[y*work.Stride+x*4:]
		fn(p[0], p[1], p[2])
		n++
	}
	return n
}

func computeCombined(work *image.NRGBA, gain float64, res *Result) {
	bins := make([]int, BinCount)
	res.SampledPixels = forEachSample(work, func(r, g, b uint8) {
		v := int(float64(imaging.Luma601(r, g, b)) * gain)
		if v < 0 {
			v = 0
		} else if v > BinCount-1 {
			v = BinCount - 1
		}
		bins[v]++
	})
	res.Bins = bins

	for bin, count := range bins {
		switch res.Class(bin) {
		case ClassUnder:
			res.UnderPixels += count
		case ClassOver:
			res.OverPixels += count
		}
	}
	if res.SampledPixels > 0 {
		total := float64(res.SampledPixels)
		res.UnderPercent = math.Round(float64(res.UnderPixels)/total*1000) / 10
		res.OverPercent = math.Round(float64(res.OverPixels)/total*1000) / 10
	}
}

func computeSeparate(work *image.NRGBA, res *Result) {
	w, h := work.Bounds().Dx(), work.Bounds().Dy()
	count := (w*h + SampleStride - 1) / SampleStride

	// Pack the subsample into a one-row opaque strip and let bild count it.
	strip := image.NewRGBA(image.Rect(0, 0, count, 1))
	j := 0
	res.SampledPixels = forEachSample(work, func(r, g, b uint8) {
		strip.Pix[j], strip.Pix[j+1], strip.Pix[j+2], strip.Pix[j+3] = r, g, b, 0xff
		j += 4
	})

	if res.SampledPixels == 0 {
		res.Red = make([]int, BinCount)
		res.Green = make([]int, BinCount)
		res.Blue = make([]int, BinCount)
		return
	}

	hist := bildhist.NewRGBAHistogram(strip)
	res.Red = append([]int(nil), hist.R.Bins...)
	res.Green = append([]int(nil), hist.G.Bins...)
	res.Blue = append([]int(nil), hist.B.Bins...)
}
