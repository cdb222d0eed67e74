package histogram

import "math"

// DefaultZones are the zones marked when Options.Zones is nil: deep shadow
// with texture (II) through textured highlight (VII).
var DefaultZones = []int{2, 3, 4, 5, 6, 7}

// MiddleGrayZone is the zone rendered at the reference gray value.
const MiddleGrayZone = 5

// ZoneMarker places one photographic zone on the 0-255 brightness axis.
type ZoneMarker struct {
	Zone       int     `json:"zone"`
	Brightness float64 `json:"brightness"`

	// Bin is the histogram bin the marker falls in, or -1 when out of range.
	Bin     int  `json:"bin"`
	InRange bool `json:"in_range"`
}

// ZoneMarkers computes marker positions at referenceGray x 2^(zone-5).
//
// highClipped is true when any marker lies above 255, shadowClipped when any
// lies below 1.
func ZoneMarkers(referenceGray float64, zones []int) (markers []ZoneMarker, highClipped, shadowClipped bool) {
	markers = make([]ZoneMarker, 0, len(zones))
	for _, z := range zones {
		v := referenceGray * math.Exp2(float64(z-MiddleGrayZone))
		m := ZoneMarker{Zone: z, Brightness: math.Round(v*100) / 100, Bin: -1}
		switch {
		case v > BinCount-1:
			highClipped = true
		case v < 1:
			shadowClipped = true
		default:
			m.InRange = true
			m.Bin = int(math.Round(v))
		}
		markers = append(markers, m)
	}
	return markers, highClipped, shadowClipped
}
