package histogram

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/anthonynsimon/bild/transform"
)

// Default and maximum rendering parameters.
const (
	DefaultRenderWidth  = 512
	DefaultRenderHeight = 200

	MaxRenderWidth  = 4096
	MaxRenderHeight = 4096
)

// ErrRenderSize is returned when a requested image is larger than
// MaxRenderWidth x MaxRenderHeight.
var ErrRenderSize = errors.New("histogram image size out of range")

// RenderOptions controls histogram rendering. Zero values take defaults.
type RenderOptions struct {
	Width  int
	Height int

	// Colours as "#RRGGBB" or "#RRGGBBAA". Empty keeps the default.
	Background string
	Neutral    string
	Under      string
	Over       string
	Marker     string

	// HideZoneLabels suppresses the zone numbers above marker lines.
	HideZoneLabels bool
}

// ImageResult is a rendered histogram encoded as base64 PNG.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

type palette struct {
	background, neutral, under, over, marker color.RGBA
}

func (o RenderOptions) palette() (palette, error) {
	pal := palette{
		background: color.RGBA{24, 24, 24, 255},
		neutral:    color.RGBA{200, 200, 200, 255},
		under:      color.RGBA{64, 128, 255, 255},
		over:       color.RGBA{255, 64, 64, 255},
		marker:     color.RGBA{255, 210, 0, 255},
	}
	for _, f := range []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"background", o.Background, &pal.background},
		{"neutral", o.Neutral, &pal.neutral},
		{"under", o.Under, &pal.under},
		{"over", o.Over, &pal.over},
		{"marker", o.Marker, &pal.marker},
	} {
		if f.hex == "" {
			continue
		}
		c, err := parseHexColor(f.hex)
		if err != nil {
			return palette{}, fmt.Errorf("invalid %s color %q: %w", f.name, f.hex, err)
		}
		*f.dst = c
	}
	return pal, nil
}

// Render draws a histogram result as a PNG.
//
// Sizes above MaxRenderWidth x MaxRenderHeight return ErrRenderSize and
// malformed colours are rejected rather than replaced.
//
// Bars are drawn one column per bin and the plot is then scaled to the
// requested width. Combined histograms colour each bar by its exposure class;
// separate histograms overlay red, green and blue additively. In-range zone
// markers are drawn as vertical lines labelled with the zone number.
func Render(r *Result, opts RenderOptions) (*ImageResult, error) {
	if r == nil {
		return nil, fmt.Errorf("nil histogram result")
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultRenderWidth
	}
	if height <= 0 {
		height = DefaultRenderHeight
	}
	if width > MaxRenderWidth || height > MaxRenderHeight {
		return nil, fmt.Errorf("%w: %dx%d (max %dx%d)", ErrRenderSize,
			width, height, MaxRenderWidth, MaxRenderHeight)
	}
	pal, err := opts.palette()
	if err != nil {
		return nil, err
	}

	plot := image.NewRGBA(image.Rect(0, 0, BinCount, height))
	draw.Draw(plot, plot.Bounds(), &image.Uniform{C: pal.background}, image.Point{}, draw.Src)

	peak := r.Max()
	if peak > 0 {
		if r.Mode == Separate {
			drawChannel(plot, r.Red, peak, 0)
			drawChannel(plot, r.Green, peak, 1)
			drawChannel(plot, r.Blue, peak, 2)
		} else {
			for bin, count := range r.Bins {
				c := pal.neutral
				switch r.Class(bin) {
				case ClassUnder:
					c = pal.under
				case ClassOver:
					c = pal.over
				}
				drawBar(plot, bin, barHeight(count, peak, height), c)
			}
		}
	}

	for _, m := range r.Zones {
		if !m.InRange {
			continue
		}
		for y := 0; y < height; y++ {
			plot.Set(m.Bin, y, pal.marker)
		}
	}

	out := plot
	if width != BinCount {
		out = transform.Resize(plot, width, height, transform.NearestNeighbor)
	}

	if !opts.HideZoneLabels {
		labelBg := color.RGBA{0, 0, 0, 180}
		for _, m := range r.Zones {
			if !m.InRange {
				continue
			}
			x := m.Bin * width / BinCount
			drawLabel(out, x+2, 2, strconv.Itoa(m.Zone), pal.marker, labelBg)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode histogram image: %w", err)
	}

	return &ImageResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

func barHeight(count, peak, height int) int {
	if count <= 0 {
		return 0
	}
	h := count * height / peak
	if h < 1 {
		h = 1
	}
	return h
}

func drawBar(img *image.RGBA, x, h int, c color.RGBA) {
	height := img.Bounds().Dy()
	for y := height - h; y < height; y++ {
		img.SetRGBA(x, y, c)
	}
}

// drawChannel adds one channel's bars on top of whatever is already drawn.
func drawChannel(img *image.RGBA, bins []int, peak, channel int) {
	height := img.Bounds().Dy()
	for x, count := range bins {
		h := barHeight(count, peak, height)
		for y := height - h; y < height; y++ {
			i := img.PixOffset(x, y)
			img.Pix[i+channel] = 0xff
		}
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}

	switch len(hex) {
	case 6:
		return color.RGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	case 8:
		return color.RGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}
}

// digitGlyphs is a 3x5 pixel font for zone numbers.
var digitGlyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'-': {"000", "000", "111", "000", "000"},
}

// drawLabel draws text in the 3x5 font on a filled background box.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	bounds := img.Bounds()
	const charWidth = 4
	labelWidth := len(text) * charWidth
	const labelHeight = 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if (image.Point{X: x + dx, Y: y + dy}).In(bounds) {
				img.Set(x+dx, y+dy, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := digitGlyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' && (image.Point{X: cx + col, Y: y + row}).In(bounds) {
					img.Set(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
