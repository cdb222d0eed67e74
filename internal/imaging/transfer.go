package imaging

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Transfer names the function relating encoded 8-bit values to linear light.
type Transfer string

const (
	// TransferSRGB is the piecewise sRGB curve (IEC 61966-2-1).
	TransferSRGB Transfer = "srgb"

	// TransferGamma22 is a pure power curve with exponent 2.2.
	TransferGamma22 Transfer = "gamma22"
)

const gamma22 = 2.2

// Lookup tables from encoded byte to linear intensity in [0,1].
var (
	srgbLinear = buildLinearTable(func(v float64) float64 {
		r, _, _ := colorful.Color{R: v, G: v, B: v}.LinearRgb()
		return r
	})
	gamma22Linear = buildLinearTable(func(v float64) float64 { return math.Pow(v, gamma22) })
)

func buildLinearTable(linearize func(v float64) float64) [256]float64 {
	var t [256]float64
	for i := range t {
		t[i] = linearize(float64(i) / 255)
	}
	return t
}

// Valid reports whether t is a known transfer function.
func (t Transfer) Valid() bool {
	return t == TransferSRGB || t == TransferGamma22
}

// Linearize converts an encoded 8-bit channel value to linear intensity in
// [0,1]. Unknown transfers fall back to sRGB.
func (t Transfer) Linearize(v uint8) float64 {
	if t == TransferGamma22 {
		return gamma22Linear[v]
	}
	return srgbLinear[v]
}

// Encode converts a linear intensity to an encoded value in [0,1], clamping
// out-of-range input.
func (t Transfer) Encode(linear float64) float64 {
	if linear <= 0 {
		return 0
	}
	if linear >= 1 {
		return 1
	}
	if t == TransferGamma22 {
		return math.Pow(linear, 1/gamma22)
	}
	return colorful.LinearRgb(linear, linear, linear).Clamped().R
}
