package meter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/exposure-meter-mcp/internal/histogram"
	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
)

// Configuration errors returned by Validate.
var (
	ErrInvalidISO          = errors.New("iso is not a supported value")
	ErrInvalidCompensation = errors.New("compensation is not a supported step")
	ErrInvalidPriority     = errors.New("priority must be shutter or aperture")
	ErrInvalidShutter      = errors.New("shutter speed is not in the shutter table")
	ErrInvalidAperture     = errors.New("aperture is not in the aperture table")
	ErrInvalidMetering     = errors.New("metering mode must be center or spot")
	ErrInvalidSmoothing    = errors.New("smoothing factor must be strictly between 0 and 1")
	ErrInvalidChannelMode  = errors.New("channel mode must be combined or separate")
	ErrInvalidCalibration  = errors.New("calibration factor out of range")
	ErrInvalidReference    = errors.New("reference gray must be positive")
	ErrInvalidThresholds   = errors.New("under-exposure threshold must be below over-exposure threshold")
	ErrInvalidTransfer     = errors.New("transfer must be srgb or gamma22")
)

// PriorityMode selects which exposure axis the user fixes.
type PriorityMode string

const (
	// ShutterPriority fixes the shutter speed and resolves the aperture.
	ShutterPriority PriorityMode = "shutter"

	// AperturePriority fixes the aperture and resolves the shutter speed.
	AperturePriority PriorityMode = "aperture"
)

// MeteringMode selects the sampled region and its weighting.
type MeteringMode string

const (
	// CenterWeighted meters about a fifth of the frame with a Gaussian weight.
	CenterWeighted MeteringMode = "center"

	// Spot meters a few percent of the frame with uniform weight.
	Spot MeteringMode = "spot"
)

// MeteringModes lists every metering mode in the order they are sampled.
var MeteringModes = []MeteringMode{CenterWeighted, Spot}

var isoValues = []int{50, 100, 200, 400, 800, 1600, 3200, 6400}

var compensationSteps = []float64{-3, -2.5, -2, -1.5, -1, -0.5, 0, 0.5, 1, 1.5, 2, 2.5, 3}

var shutterSpeeds = []float64{
	1.0 / 1000, 1.0 / 500, 1.0 / 250, 1.0 / 125, 1.0 / 60, 1.0 / 30,
	1.0 / 15, 1.0 / 8, 1.0 / 4, 1.0 / 2, 1,
}

var apertures = []float64{1.4, 2, 2.8, 4, 5.6, 8, 11, 16, 22}

// ISOValues returns the supported ISO settings.
func ISOValues() []int { return append([]int(nil), isoValues...) }

// CompensationSteps returns the supported exposure compensation values in EV.
func CompensationSteps() []float64 { return append([]float64(nil), compensationSteps...) }

// ShutterSpeeds returns the shutter table in seconds, fastest first.
func ShutterSpeeds() []float64 { return append([]float64(nil), shutterSpeeds...) }

// Apertures returns the aperture table as f-numbers, widest first.
func Apertures() []float64 { return append([]float64(nil), apertures...) }

// FormatShutter renders a shutter speed the way a camera dial does:
// "1/125" for fractions of a second, "1s" and up for whole seconds.
func FormatShutter(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	if seconds < 1 {
		return "1/" + strconv.Itoa(int(math.Round(1/seconds)))
	}
	return strconv.FormatFloat(seconds, 'f', -1, 64) + "s"
}

// FormatAperture renders an f-number as "f/5.6".
func FormatAperture(n float64) string {
	if n <= 0 {
		return "-"
	}
	return "f/" + strconv.FormatFloat(n, 'f', -1, 64)
}

// ParseShutter accepts "1/125", "1s", "1" or a decimal number of seconds and
// returns the matching entry of the shutter table.
func ParseShutter(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, v := range shutterSpeeds {
		label := FormatShutter(v)
		if s == label || s == strings.TrimSuffix(label, "s") {
			return v, nil
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "s"), 64)
	if err == nil && contains(shutterSpeeds, v) {
		return v, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidShutter, s)
}

// ParseAperture accepts "5.6", "f/5.6" or "f5.6" and returns the matching
// entry of the aperture table.
func ParseAperture(s string) (float64, error) {
	t := strings.TrimSpace(strings.ToLower(s))
	t = strings.TrimPrefix(strings.TrimPrefix(t, "f"), "/")
	v, err := strconv.ParseFloat(t, 64)
	if err == nil && contains(apertures, v) {
		return v, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAperture, s)
}

func contains(values []float64, v float64) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// ExposureConfig holds the user's exposure settings. It is owned by the host
// and passed to the engine by value on every tick.
type ExposureConfig struct {
	ISO          int          `json:"iso"`
	Compensation float64      `json:"compensation"`
	Priority     PriorityMode `json:"priority"`

	// Shutter is the fixed shutter speed in seconds under ShutterPriority.
	Shutter float64 `json:"shutter"`

	// Aperture is the fixed f-number under AperturePriority.
	Aperture float64 `json:"aperture"`

	Metering        MeteringMode          `json:"metering"`
	SmoothingFactor float64               `json:"smoothing_factor"`
	ChannelMode     histogram.ChannelMode `json:"channel_mode"`
}

// DefaultExposureConfig returns ISO 100, no compensation, aperture priority
// at f/5.6 with a 1/125 fallback shutter, center-weighted metering.
func DefaultExposureConfig() ExposureConfig {
	return ExposureConfig{
		ISO:             100,
		Compensation:    0,
		Priority:        AperturePriority,
		Shutter:         1.0 / 125,
		Aperture:        5.6,
		Metering:        CenterWeighted,
		SmoothingFactor: 0.2,
		ChannelMode:     histogram.Combined,
	}
}

// FixedAxis returns the value of the axis the priority mode holds constant.
func (c ExposureConfig) FixedAxis() float64 {
	if c.Priority == ShutterPriority {
		return c.Shutter
	}
	return c.Aperture
}

// Validate checks every field against its enumerated set or range. Only the
// axis selected by Priority is required; the other must be zero or a table
// entry.
func (c ExposureConfig) Validate() error {
	if !containsInt(isoValues, c.ISO) {
		return fmt.Errorf("%w: %d", ErrInvalidISO, c.ISO)
	}
	if !contains(compensationSteps, c.Compensation) {
		return fmt.Errorf("%w: %g", ErrInvalidCompensation, c.Compensation)
	}
	switch c.Priority {
	case ShutterPriority:
		if !contains(shutterSpeeds, c.Shutter) {
			return fmt.Errorf("%w: %g", ErrInvalidShutter, c.Shutter)
		}
		if c.Aperture != 0 && !contains(apertures, c.Aperture) {
			return fmt.Errorf("%w: %g", ErrInvalidAperture, c.Aperture)
		}
	case AperturePriority:
		if !contains(apertures, c.Aperture) {
			return fmt.Errorf("%w: %g", ErrInvalidAperture, c.Aperture)
		}
		if c.Shutter != 0 && !contains(shutterSpeeds, c.Shutter) {
			return fmt.Errorf("%w: %g", ErrInvalidShutter, c.Shutter)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPriority, c.Priority)
	}
	if c.Metering != CenterWeighted && c.Metering != Spot {
		return fmt.Errorf("%w: %q", ErrInvalidMetering, c.Metering)
	}
	if !(c.SmoothingFactor > 0 && c.SmoothingFactor < 1) {
		return fmt.Errorf("%w: %g", ErrInvalidSmoothing, c.SmoothingFactor)
	}
	if !c.ChannelMode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChannelMode, c.ChannelMode)
	}
	return nil
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Calibration limits and profile defaults.
const (
	MinCalibrationFactor = 0.5
	MaxCalibrationFactor = 1.5

	// DefaultReferenceGray is the sRGB code value of an 18% gray card.
	DefaultReferenceGray = 118.0

	// DefaultReferenceEV is the EV assigned to reference gray at ISO 100.
	DefaultReferenceEV = 7.0

	DefaultUnderThreshold = 10
	DefaultOverThreshold  = 245
)

// CalibrationProfile maps sampled brightness onto absolute EV and sets the
// histogram clipping thresholds.
type CalibrationProfile struct {
	// CalibrationFactor is a multiplicative correction on sampled brightness.
	CalibrationFactor float64 `json:"calibration_factor"`

	// ReferenceGray is the encoded value of an 18% gray card. It is a
	// constant of the profile, not a user setting.
	ReferenceGray float64 `json:"reference_gray"`

	// ReferenceEV is the EV of ReferenceGray at ISO 100.
	ReferenceEV float64 `json:"reference_ev"`

	UnderExposureThreshold uint8 `json:"under_exposure_threshold"`
	OverExposureThreshold  uint8 `json:"over_exposure_threshold"`

	// Transfer decodes sampled pixels to linear light.
	Transfer imaging.Transfer `json:"transfer"`
}

// DefaultCalibrationProfile returns a neutral profile on the sRGB curve.
func DefaultCalibrationProfile() CalibrationProfile {
	return CalibrationProfile{
		CalibrationFactor:      1.0,
		ReferenceGray:          DefaultReferenceGray,
		ReferenceEV:            DefaultReferenceEV,
		UnderExposureThreshold: DefaultUnderThreshold,
		OverExposureThreshold:  DefaultOverThreshold,
		Transfer:               imaging.TransferSRGB,
	}
}

// Validate checks the profile's ranges.
func (p CalibrationProfile) Validate() error {
	if !(p.CalibrationFactor >= MinCalibrationFactor && p.CalibrationFactor <= MaxCalibrationFactor) {
		return fmt.Errorf("%w: %g (want %g-%g)", ErrInvalidCalibration,
			p.CalibrationFactor, MinCalibrationFactor, MaxCalibrationFactor)
	}
	if !(p.ReferenceGray > 0) {
		return fmt.Errorf("%w: %g", ErrInvalidReference, p.ReferenceGray)
	}
	if p.UnderExposureThreshold >= p.OverExposureThreshold {
		return fmt.Errorf("%w: %d >= %d", ErrInvalidThresholds,
			p.UnderExposureThreshold, p.OverExposureThreshold)
	}
	if !p.Transfer.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransfer, p.Transfer)
	}
	return nil
}
