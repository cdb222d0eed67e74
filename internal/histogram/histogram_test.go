package histogram

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
)

func solidWork(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func gray(v uint8) color.NRGBA { return color.NRGBA{v, v, v, 255} }

func sum(bins []int) int {
	n := 0
	for _, v := range bins {
		n += v
	}
	return n
}

func TestComputeWorking_Combined(t *testing.T) {
	res := ComputeWorking(solidWork(20, 10, gray(128)), Options{UnderThreshold: 10, OverThreshold: 245})

	if res.Mode != Combined {
		t.Errorf("mode: got %s, want combined", res.Mode)
	}
	if res.SampledPixels != 100 {
		t.Errorf("SampledPixels: got %d, want 100", res.SampledPixels)
	}
	if len(res.Bins) != BinCount {
		t.Fatalf("bins: got %d, want %d", len(res.Bins), BinCount)
	}
	if res.Bins[128] != 100 || sum(res.Bins) != 100 {
		t.Errorf("bin 128 = %d, total %d; want 100, 100", res.Bins[128], sum(res.Bins))
	}
	if res.Red != nil || res.Green != nil || res.Blue != nil {
		t.Error("combined mode should not fill channel histograms")
	}
	if res.UnderPixels != 0 || res.OverPixels != 0 {
		t.Errorf("under/over: got %d/%d, want 0/0", res.UnderPixels, res.OverPixels)
	}
}

func TestComputeWorking_SampleStride(t *testing.T) {
	// Raster order over a 3x2 buffer counts pixels 0, 2 and 4.
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	values := []uint8{10, 99, 20, 99, 30, 99}
	for i, v := range values {
		img.SetNRGBA(i%3, i/3, gray(v))
	}

	res := ComputeWorking(img, Options{OverThreshold: 255})
	if res.SampledPixels != 3 {
		t.Fatalf("SampledPixels: got %d, want 3", res.SampledPixels)
	}
	for _, v := range []int{10, 20, 30} {
		if res.Bins[v] != 1 {
			t.Errorf("bin %d = %d, want 1", v, res.Bins[v])
		}
	}
	if res.Bins[99] != 0 {
		t.Errorf("skipped pixels were counted: bin 99 = %d", res.Bins[99])
	}
}

func TestComputeWorking_Compensation(t *testing.T) {
	tests := []struct {
		name string
		comp float64
		v    uint8
		bin  int
	}{
		{"none", 0, 100, 100},
		{"plus one", 1, 100, 200},
		{"minus one", -1, 100, 50},
		{"clamps high", 2, 100, 255},
		{"plus half truncates", 0.5, 100, 141},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ComputeWorking(solidWork(2, 1, gray(tt.v)), Options{Compensation: tt.comp, OverThreshold: 255})
			if res.Bins[tt.bin] != 1 {
				t.Errorf("expected the sample in bin %d", tt.bin)
			}
		})
	}
}

func TestComputeWorking_Classification(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 1))
	// Sampled pixels are x = 0, 2, 4, 6.
	for x, v := range []uint8{5, 0, 128, 0, 250, 0, 255, 0} {
		img.SetNRGBA(x, 0, gray(v))
	}

	res := ComputeWorking(img, Options{UnderThreshold: 10, OverThreshold: 245})
	if res.UnderPixels != 1 || res.OverPixels != 2 {
		t.Errorf("under/over: got %d/%d, want 1/2", res.UnderPixels, res.OverPixels)
	}
	if res.UnderPercent != 25 || res.OverPercent != 50 {
		t.Errorf("percent: got %v/%v, want 25/50", res.UnderPercent, res.OverPercent)
	}
}

func TestResult_Class(t *testing.T) {
	r := &Result{UnderThreshold: 10, OverThreshold: 245}
	tests := []struct {
		bin  int
		want BinClass
	}{
		{0, ClassUnder},
		{9, ClassUnder},
		{10, ClassNeutral},
		{245, ClassNeutral},
		{246, ClassOver},
		{255, ClassOver},
	}
	for _, tt := range tests {
		if got := r.Class(tt.bin); got != tt.want {
			t.Errorf("Class(%d) = %s, want %s", tt.bin, got, tt.want)
		}
	}
}

func TestComputeWorking_Separate(t *testing.T) {
	res := ComputeWorking(solidWork(4, 4, color.NRGBA{10, 20, 30, 255}), Options{
		Mode:           Separate,
		UnderThreshold: 40,
		OverThreshold:  245,
	})

	if res.Bins != nil {
		t.Error("separate mode should not fill the combined histogram")
	}
	if res.SampledPixels != 8 {
		t.Fatalf("SampledPixels: got %d, want 8", res.SampledPixels)
	}
	checks := []struct {
		name string
		bins []int
		bin  int
	}{
		{"red", res.Red, 10},
		{"green", res.Green, 20},
		{"blue", res.Blue, 30},
	}
	for _, c := range checks {
		if len(c.bins) != BinCount {
			t.Fatalf("%s: got %d bins", c.name, len(c.bins))
		}
		if c.bins[c.bin] != 8 || sum(c.bins) != 8 {
			t.Errorf("%s bin %d = %d, total %d; want 8, 8", c.name, c.bin, c.bins[c.bin], sum(c.bins))
		}
	}
	if res.UnderPixels != 0 || res.OverPixels != 0 {
		t.Error("separate mode should not classify bins")
	}
}

func TestComputeWorking_Empty(t *testing.T) {
	for _, mode := range []ChannelMode{Combined, Separate} {
		res := ComputeWorking(image.NewNRGBA(image.Rectangle{}), Options{Mode: mode, ReferenceGray: 118})
		if res.SampledPixels != 0 {
			t.Errorf("%s: SampledPixels = %d", mode, res.SampledPixels)
		}
		if res.Max() != 0 {
			t.Errorf("%s: Max = %d", mode, res.Max())
		}
		if res.UnderPercent != 0 || res.OverPercent != 0 {
			t.Errorf("%s: percentages should be zero", mode)
		}
		if len(res.Zones) != len(DefaultZones) {
			t.Errorf("%s: zones should still be reported", mode)
		}
	}
}

func TestCompute_NotReady(t *testing.T) {
	res := Compute(nil, Options{})
	if res.SampledPixels != 0 || sum(res.Bins) != 0 {
		t.Error("nil frame should produce an empty histogram")
	}

	f := imaging.FrameFromImage(solidWork(4, 2, gray(60)))
	res = Compute(f, Options{OverThreshold: 255})
	if res.Bins[60] != 4 {
		t.Errorf("bin 60 = %d, want 4", res.Bins[60])
	}
}

func TestCompute_IgnoresAlpha(t *testing.T) {
	pix := make([]uint8, 1280*960*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2] = 128, 128, 128
	}
	f, err := imaging.NewFrame(1280, 960, 4, pix)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}

	res := Compute(f, Options{UnderThreshold: 10, OverThreshold: 245})
	if res.SampledPixels != 640*480/2 {
		t.Fatalf("sampled %d, want %d", res.SampledPixels, 640*480/2)
	}
	if res.Bins[128] != res.SampledPixels {
		t.Errorf("bin 128 = %d, want %d", res.Bins[128], res.SampledPixels)
	}
}

func TestComputeWorking_NoReferenceGray(t *testing.T) {
	res := ComputeWorking(solidWork(2, 2, gray(1)), Options{})
	if res.Zones != nil || res.ClippedHighlights || res.ClippedShadows {
		t.Error("zero reference gray should disable markers")
	}
}

func TestChannelMode_Valid(t *testing.T) {
	if !Combined.Valid() || !Separate.Valid() {
		t.Error("known modes should be valid")
	}
	if ChannelMode("luma").Valid() || ChannelMode("").Valid() {
		t.Error("unknown modes should be invalid")
	}
}
