package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ironsheep/exposure-meter-mcp/internal/histogram"
	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
	"github.com/ironsheep/exposure-meter-mcp/internal/meter"
)

// Settings is the on-disk settings document.
type Settings struct {
	Exposure    Exposure    `toml:"exposure"`
	Calibration Calibration `toml:"calibration"`
	Ticker      Ticker      `toml:"ticker"`
}

// Exposure mirrors meter.ExposureConfig with human-readable axis values.
type Exposure struct {
	ISO             int     `toml:"iso"`
	Compensation    float64 `toml:"compensation"`
	Priority        string  `toml:"priority"`
	Shutter         string  `toml:"shutter"`
	Aperture        string  `toml:"aperture"`
	Metering        string  `toml:"metering"`
	SmoothingFactor float64 `toml:"smoothing_factor"`
	ChannelMode     string  `toml:"channel_mode"`
}

// Calibration mirrors meter.CalibrationProfile.
type Calibration struct {
	CalibrationFactor      float64 `toml:"calibration_factor"`
	ReferenceGray          float64 `toml:"reference_gray"`
	ReferenceEV            float64 `toml:"reference_ev"`
	UnderExposureThreshold int     `toml:"under_exposure_threshold"`
	OverExposureThreshold  int     `toml:"over_exposure_threshold"`
	Transfer               string  `toml:"transfer"`
}

// Ticker holds the host's tick period.
type Ticker struct {
	IntervalMS int `toml:"interval_ms"`
}

// Tick period limits in milliseconds.
const (
	MinIntervalMS = 10
	MaxIntervalMS = 60000
)

// ErrInvalidInterval is returned when the tick period is out of range.
var ErrInvalidInterval = errors.New("ticker interval out of range")

// Default returns settings matching meter's default config and profile.
func Default() Settings {
	return FromConfig(meter.DefaultExposureConfig(), meter.DefaultCalibrationProfile(), meter.DefaultInterval)
}

// FromConfig builds a settings document from engine values.
func FromConfig(cfg meter.ExposureConfig, cal meter.CalibrationProfile, interval time.Duration) Settings {
	return Settings{
		Exposure: Exposure{
			ISO:             cfg.ISO,
			Compensation:    cfg.Compensation,
			Priority:        string(cfg.Priority),
			Shutter:         meter.FormatShutter(cfg.Shutter),
			Aperture:        meter.FormatAperture(cfg.Aperture),
			Metering:        string(cfg.Metering),
			SmoothingFactor: cfg.SmoothingFactor,
			ChannelMode:     string(cfg.ChannelMode),
		},
		Calibration: Calibration{
			CalibrationFactor:      cal.CalibrationFactor,
			ReferenceGray:          cal.ReferenceGray,
			ReferenceEV:            cal.ReferenceEV,
			UnderExposureThreshold: int(cal.UnderExposureThreshold),
			OverExposureThreshold:  int(cal.OverExposureThreshold),
			Transfer:               string(cal.Transfer),
		},
		Ticker: Ticker{IntervalMS: int(interval / time.Millisecond)},
	}
}

// DefaultPath returns the settings file location under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "exposure-mcp", "settings.toml"), nil
}

// Load reads, normalizes and validates a settings file. An empty path means
// DefaultPath. A missing file is not an error: defaults are returned and
// exists is false.
func Load(path string) (s *Settings, resolved string, exists bool, err error) {
	cfg := Default()

	resolved, err = resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		exists = true
		if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse settings: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, "", false, fmt.Errorf("open settings: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPath()
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	return abs, nil
}

func (s *Settings) normalize() {
	def := Default()
	lower := func(v, fallback string) string {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			return fallback
		}
		return v
	}
	s.Exposure.Priority = lower(s.Exposure.Priority, def.Exposure.Priority)
	s.Exposure.Metering = lower(s.Exposure.Metering, def.Exposure.Metering)
	s.Exposure.ChannelMode = lower(s.Exposure.ChannelMode, def.Exposure.ChannelMode)
	s.Calibration.Transfer = lower(s.Calibration.Transfer, def.Calibration.Transfer)
	s.Exposure.Shutter = strings.TrimSpace(s.Exposure.Shutter)
	s.Exposure.Aperture = strings.TrimSpace(s.Exposure.Aperture)
	if s.Ticker.IntervalMS == 0 {
		s.Ticker.IntervalMS = def.Ticker.IntervalMS
	}
}

// Validate checks that the document converts into a valid config and profile.
func (s *Settings) Validate() error {
	cfg, err := s.ExposureConfig()
	if err != nil {
		return fmt.Errorf("exposure: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("exposure: %w", err)
	}
	cal, err := s.CalibrationProfile()
	if err != nil {
		return fmt.Errorf("calibration: %w", err)
	}
	if err := cal.Validate(); err != nil {
		return fmt.Errorf("calibration: %w", err)
	}
	if s.Ticker.IntervalMS < MinIntervalMS || s.Ticker.IntervalMS > MaxIntervalMS {
		return fmt.Errorf("ticker: %w: %d ms (want %d-%d)", ErrInvalidInterval,
			s.Ticker.IntervalMS, MinIntervalMS, MaxIntervalMS)
	}
	return nil
}

// ExposureConfig converts the [exposure] table. The axis not selected by
// priority may be empty.
func (s *Settings) ExposureConfig() (meter.ExposureConfig, error) {
	e := s.Exposure
	cfg := meter.ExposureConfig{
		ISO:             e.ISO,
		Compensation:    e.Compensation,
		Priority:        meter.PriorityMode(e.Priority),
		Metering:        meter.MeteringMode(e.Metering),
		SmoothingFactor: e.SmoothingFactor,
		ChannelMode:     histogram.ChannelMode(e.ChannelMode),
	}
	if e.Shutter != "" && e.Shutter != "-" {
		v, err := meter.ParseShutter(e.Shutter)
		if err != nil {
			return meter.ExposureConfig{}, err
		}
		cfg.Shutter = v
	}
	if e.Aperture != "" && e.Aperture != "-" {
		v, err := meter.ParseAperture(e.Aperture)
		if err != nil {
			return meter.ExposureConfig{}, err
		}
		cfg.Aperture = v
	}
	return cfg, nil
}

// CalibrationProfile converts the [calibration] table.
func (s *Settings) CalibrationProfile() (meter.CalibrationProfile, error) {
	c := s.Calibration
	for _, v := range []int{c.UnderExposureThreshold, c.OverExposureThreshold} {
		if v < 0 || v > 255 {
			return meter.CalibrationProfile{}, fmt.Errorf("%w: %d outside 0-255", meter.ErrInvalidThresholds, v)
		}
	}
	return meter.CalibrationProfile{
		CalibrationFactor:      c.CalibrationFactor,
		ReferenceGray:          c.ReferenceGray,
		ReferenceEV:            c.ReferenceEV,
		UnderExposureThreshold: uint8(c.UnderExposureThreshold),
		OverExposureThreshold:  uint8(c.OverExposureThreshold),
		Transfer:               imaging.Transfer(c.Transfer),
	}, nil
}

// Interval returns the tick period.
func (s *Settings) Interval() time.Duration {
	return time.Duration(s.Ticker.IntervalMS) * time.Millisecond
}

// Encode renders the document as TOML.
func (s *Settings) Encode() ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}
