package meter

import (
	"testing"

	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
)

// solidFrame creates an RGB frame filled with one gray value.
func solidFrame(t *testing.T, w, h int, v uint8) *imaging.Frame {
	t.Helper()
	pix := make([]uint8, w*h*3)
	for i := range pix {
		pix[i] = v
	}
	f, err := imaging.NewFrame(w, h, 3, pix)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	return f
}

// rgbxFrame creates an RGBA frame filled with one gray value and alpha 0,
// the layout of RGBX capture buffers.
func rgbxFrame(t *testing.T, w, h int, v uint8) *imaging.Frame {
	t.Helper()
	pix := make([]uint8, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2] = v, v, v
	}
	f, err := imaging.NewFrame(w, h, 4, pix)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	return f
}

// testProfile is a profile whose reference gray is 128 so that a mid-gray
// frame meters at exactly the reference EV.
func testProfile() CalibrationProfile {
	p := DefaultCalibrationProfile()
	p.ReferenceGray = 128
	return p
}

func near(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
