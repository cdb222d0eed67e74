package meter

import (
	"testing"

	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
)

func TestSampleUniformFrame(t *testing.T) {
	s := DefaultSampler()
	for _, v := range []uint8{1, 18, 64, 118, 128, 200, 255} {
		f := solidFrame(t, 64, 48, v)
		for _, tr := range []imaging.Transfer{imaging.TransferSRGB, imaging.TransferGamma22} {
			for _, mode := range MeteringModes {
				got := s.Sample(f, mode, tr)
				if !near(got, float64(v), 1e-6) {
					t.Errorf("value %d %s %s: brightness %v", v, tr, mode, got)
				}
			}
		}
	}
}

func TestSampleNotReady(t *testing.T) {
	s := DefaultSampler()
	if got := s.Sample(nil, CenterWeighted, imaging.TransferSRGB); got != 0 {
		t.Errorf("nil frame: %v, want 0", got)
	}
	f := &imaging.Frame{Width: 10, Height: 10, Channels: 3, Pix: make([]uint8, 5)}
	if got := s.Sample(f, Spot, imaging.TransferSRGB); got != 0 {
		t.Errorf("short frame: %v, want 0", got)
	}
	f = &imaging.Frame{Width: 0, Height: 10, Channels: 3}
	if got := s.Sample(f, Spot, imaging.TransferSRGB); got != 0 {
		t.Errorf("zero width: %v, want 0", got)
	}
}

// centerSquareFrame is black with a white square of side n at the center of
// a size x size frame.
func centerSquareFrame(t *testing.T, size, n int) *imaging.Frame {
	t.Helper()
	pix := make([]uint8, size*size*3)
	start := (size - n) / 2
	for y := start; y < start+n; y++ {
		for x := start; x < start+n; x++ {
			i := (y*size + x) * 3
			pix[i], pix[i+1], pix[i+2] = 255, 255, 255
		}
	}
	f, err := imaging.NewFrame(size, size, 3, pix)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	return f
}

func TestSampleSpotVersusCenter(t *testing.T) {
	s := DefaultSampler()
	f := centerSquareFrame(t, 100, 4)

	spot := s.Sample(f, Spot, imaging.TransferSRGB)
	if !near(spot, 255, 1e-6) {
		t.Errorf("spot = %v, want 255", spot)
	}

	center := s.Sample(f, CenterWeighted, imaging.TransferSRGB)
	if center <= 0 || center >= 255 {
		t.Fatalf("center = %v, want strictly between 0 and 255", center)
	}

	// 16 white pixels in a 20x20 region: the uniform mean is 0.04 linear.
	// Gaussian weighting favours the white core, so the center reading is
	// brighter than the plain average.
	uniform := imaging.TransferSRGB.Encode(16.0/400) * 255
	if center <= uniform {
		t.Errorf("center %v not above uniform average %v", center, uniform)
	}
}

func TestSampleTinyFrameUsesCenterPixel(t *testing.T) {
	pix := make([]uint8, 3*3*3)
	i := (1*3 + 1) * 3
	pix[i], pix[i+1], pix[i+2] = 200, 200, 200
	f, err := imaging.NewFrame(3, 3, 3, pix)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}

	s := DefaultSampler()
	if r := s.Region(3, 3, Spot); r.Width() != 1 || r.Height() != 1 {
		t.Fatalf("spot region %+v, want 1x1", r)
	}
	if got := s.Sample(f, Spot, imaging.TransferSRGB); !near(got, 200, 1e-6) {
		t.Errorf("spot = %v, want 200", got)
	}
}

func TestSampleLargeFrameIsBounded(t *testing.T) {
	f := solidFrame(t, 1920, 1080, 90)
	got := DefaultSampler().Sample(f, CenterWeighted, imaging.TransferSRGB)
	if !near(got, 90, 1) {
		t.Errorf("brightness = %v, want about 90", got)
	}
}

func TestSampleIgnoresAlpha(t *testing.T) {
	s := DefaultSampler()
	for _, size := range [][2]int{{640, 480}, {1280, 960}} {
		f := rgbxFrame(t, size[0], size[1], 128)
		for _, mode := range MeteringModes {
			got := s.Sample(f, mode, imaging.TransferSRGB)
			if !near(got, 128, 1) {
				t.Errorf("%dx%d %s: brightness %v, want about 128", size[0], size[1], mode, got)
			}
		}
	}
}

func TestSamplerRegionFractions(t *testing.T) {
	s := DefaultSampler()
	c := s.Region(640, 480, CenterWeighted)
	if c.Width() != 128 || c.Height() != 96 {
		t.Errorf("center region %dx%d, want 128x96", c.Width(), c.Height())
	}
	sp := s.Region(640, 480, Spot)
	if sp.Width() != 26 || sp.Height() != 19 {
		t.Errorf("spot region %dx%d, want 26x19", sp.Width(), sp.Height())
	}
	if c.X1 != 256 || c.Y1 != 192 {
		t.Errorf("center origin (%d,%d), want (256,192)", c.X1, c.Y1)
	}
}
