package imaging

// LumaWeights combines red, green and blue intensities into a single luma
// value. The weights of each standard set sum to 1.
type LumaWeights struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Standard weight sets.
//
// The sampler meters with BT709 on linear light; the histogram bins display
// luma with the integer BT601 form in Luma601.
var (
	BT709 = LumaWeights{R: 0.2126, G: 0.7152, B: 0.0722}
	BT601 = LumaWeights{R: 0.299, G: 0.587, B: 0.114}
)

// Luma returns the weighted sum of the three components.
func (w LumaWeights) Luma(r, g, b float64) float64 {
	return w.R*r + w.G*g + w.B*b
}

// Luma601 computes BT.601 luma of encoded 8-bit values with integer weights
// (299, 587, 114 per mille), truncating toward zero. The result is in 0-255.
func Luma601(r, g, b uint8) int {
	return (299*int(r) + 587*int(g) + 114*int(b)) / 1000
}
