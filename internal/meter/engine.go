package meter

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/exposure-meter-mcp/internal/histogram"
	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
	"github.com/ironsheep/exposure-meter-mcp/internal/logging"
)

// ErrAxisNotInTable is returned in strict mode when the fixed axis value of
// the configuration has no candidates in the table.
var ErrAxisNotInTable = errors.New("fixed axis value not in candidate table")

// Status describes the outcome of a tick.
type Status string

const (
	// StatusMetered means a reading was produced.
	StatusMetered Status = "metered"

	// StatusNoSignal means the frame was not ready or fully black.
	StatusNoSignal Status = "no_signal"

	// StatusTooDark and StatusTooBright mean the scene is outside the usable
	// brightness range; hosts keep showing the previous reading.
	StatusTooDark   Status = "too_dark"
	StatusTooBright Status = "too_bright"

	// StatusUnresolved means the fixed axis had no candidates and the engine
	// is not in strict mode.
	StatusUnresolved Status = "unresolved"
)

// Usable brightness range on the 0-255 scale.
const (
	DefaultMinBrightness = 5.0
	DefaultMaxBrightness = 250.0
)

// Observer receives every completed tick.
type Observer interface {
	ObserveTick(*TickResult)
}

// Options configures an Engine. Zero values take defaults.
type Options struct {
	Logger   *slog.Logger
	Observer Observer

	// Strict turns a resolver axis miss into ErrAxisNotInTable instead of a
	// logged StatusUnresolved tick.
	Strict bool

	Sampler Sampler

	MinBrightness float64
	MaxBrightness float64

	// Zones lists the histogram zone markers. Nil means histogram.DefaultZones.
	Zones []int

	// Candidates is the resolver table. Nil means DefaultCandidateTable.
	Candidates *CandidateTable
}

// DefaultOptions returns the options New uses for zero fields.
func DefaultOptions() Options {
	return Options{
		Sampler:       DefaultSampler(),
		MinBrightness: DefaultMinBrightness,
		MaxBrightness: DefaultMaxBrightness,
		Candidates:    DefaultCandidateTable(),
	}
}

// ExposureReading is the resolved exposure for one metered tick.
type ExposureReading struct {
	Shutter  float64 `json:"shutter"`
	Aperture float64 `json:"aperture"`

	// EffectiveEV is the raw EV metered this tick.
	EffectiveEV float64 `json:"effective_ev"`

	// SmoothedEV is the displayed EV: the filter output, or the captured
	// value while AE-lock is engaged.
	SmoothedEV float64 `json:"smoothed_ev"`

	// EVDifference is the resolved candidate's EV minus the EV resolved.
	EVDifference float64 `json:"ev_difference"`

	Locked bool `json:"locked"`
}

// ShutterLabel formats the resolved shutter speed.
func (r ExposureReading) ShutterLabel() string { return FormatShutter(r.Shutter) }

// ApertureLabel formats the resolved aperture.
func (r ExposureReading) ApertureLabel() string { return FormatAperture(r.Aperture) }

// TickResult is everything one tick produces.
type TickResult struct {
	Status Status `json:"status"`

	// Brightness is the sample of the configured metering mode.
	Brightness float64 `json:"brightness"`

	// Samples holds the brightness of every metering mode.
	Samples map[MeteringMode]float64 `json:"samples"`

	Metering MeteringMode `json:"metering"`

	// EffectiveEV may be -Inf when nothing could be metered. It is encoded
	// as null in JSON.
	EffectiveEV float64 `json:"-"`

	// Reading and Classification are nil unless Status is StatusMetered.
	Reading        *ExposureReading `json:"reading,omitempty"`
	Classification *Classification  `json:"classification,omitempty"`

	Histogram *histogram.Result `json:"histogram,omitempty"`

	Locked bool `json:"locked"`
}

// MarshalJSON encodes EffectiveEV as null when it is not finite.
func (r TickResult) MarshalJSON() ([]byte, error) {
	type plain TickResult
	var ev *float64
	if Metered(r.EffectiveEV) {
		v := r.EffectiveEV
		ev = &v
	}
	return json.Marshal(struct {
		*plain
		EffectiveEV *float64 `json:"effective_ev"`
	}{plain: (*plain)(&r), EffectiveEV: ev})
}

// Engine runs the metering pipeline tick by tick.
//
// The only state carried between ticks is the smoother and the AE-lock. An
// Engine is not safe for concurrent use; hosts must serialize ticks.
type Engine struct {
	opts     Options
	logger   *slog.Logger
	smoother *Smoother
	lock     AELock
}

// New creates an engine.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.Sampler == (Sampler{}) {
		opts.Sampler = def.Sampler
	}
	if opts.MinBrightness <= 0 {
		opts.MinBrightness = def.MinBrightness
	}
	if opts.MaxBrightness <= 0 {
		opts.MaxBrightness = def.MaxBrightness
	}
	if opts.Candidates == nil {
		opts.Candidates = def.Candidates
	}
	return &Engine{
		opts:     opts,
		logger:   logging.NewComponentLogger(opts.Logger, "meter"),
		smoother: NewSmoother(DefaultExposureConfig().SmoothingFactor),
	}
}

// Candidates returns the engine's candidate table.
func (e *Engine) Candidates() *CandidateTable { return e.opts.Candidates }

// Tick meters one frame.
//
// cfg and cal are snapshots; invalid values are rejected before any state
// changes. Scene-range conditions are reported through Status, never as an
// error. The only error besides validation is ErrAxisNotInTable in strict
// mode.
func (e *Engine) Tick(f *imaging.Frame, cfg ExposureConfig, cal CalibrationProfile) (*TickResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("exposure config: %w", err)
	}
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("calibration profile: %w", err)
	}

	work := image.NewNRGBA(image.Rectangle{})
	if f.Ready() {
		work = imaging.WorkingBuffer(f)
	}

	res := &TickResult{
		Samples:  make(map[MeteringMode]float64, len(MeteringModes)),
		Metering: cfg.Metering,
		Locked:   e.lock.Engaged(),
	}
	for _, mode := range MeteringModes {
		res.Samples[mode] = e.opts.Sampler.SampleWorking(work, mode, cal.Transfer)
	}
	res.Brightness = res.Samples[cfg.Metering]
	res.EffectiveEV = cal.EffectiveEV(res.Brightness, cfg)

	res.Histogram = histogram.ComputeWorking(work, histogram.Options{
		Compensation:   cfg.Compensation,
		UnderThreshold: cal.UnderExposureThreshold,
		OverThreshold:  cal.OverExposureThreshold,
		Mode:           cfg.ChannelMode,
		ReferenceGray:  cal.ReferenceGray,
		Zones:          e.opts.Zones,
	})

	res.Status = e.sceneStatus(res.Brightness, res.EffectiveEV)
	if res.Status != StatusMetered {
		e.logger.Debug("scene out of range",
			logging.String("status", string(res.Status)),
			logging.Float64("brightness", res.Brightness))
		e.observe(res)
		return res, nil
	}

	e.smoother.SetAlpha(cfg.SmoothingFactor)
	smoothed := e.smoother.Update(res.EffectiveEV)
	displayed := e.lock.Pin(smoothed)

	target := res.EffectiveEV
	if e.lock.Engaged() {
		target = displayed
	}

	resolution, found := Resolve(target, e.opts.Candidates, cfg.Priority, cfg.FixedAxis())
	if !found {
		err := fmt.Errorf("%w: %s priority at %g", ErrAxisNotInTable, cfg.Priority, cfg.FixedAxis())
		if e.opts.Strict {
			return nil, err
		}
		logging.WarnWithContext(e.logger, "exposure not resolved", "resolver_axis_miss",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fixed shutter or aperture must come from the candidate table"))
		res.Status = StatusUnresolved
		e.observe(res)
		return res, nil
	}

	reading := &ExposureReading{
		Shutter:      resolution.Candidate.Shutter,
		Aperture:     resolution.Candidate.Aperture,
		EffectiveEV:  res.EffectiveEV,
		SmoothedEV:   displayed,
		EVDifference: resolution.EVDifference,
		Locked:       e.lock.Engaged(),
	}
	class := Classify(reading.EVDifference)
	res.Reading = reading
	res.Classification = &class

	e.logger.Debug("tick metered",
		logging.Float64("brightness", res.Brightness),
		logging.Float64("effective_ev", res.EffectiveEV),
		logging.Float64("smoothed_ev", displayed),
		logging.String("shutter", reading.ShutterLabel()),
		logging.String("aperture", reading.ApertureLabel()),
		logging.String("severity", class.Severity.String()))

	e.observe(res)
	return res, nil
}

func (e *Engine) sceneStatus(brightness, ev float64) Status {
	switch {
	case !Metered(ev):
		return StatusNoSignal
	case brightness < e.opts.MinBrightness:
		return StatusTooDark
	case brightness > e.opts.MaxBrightness:
		return StatusTooBright
	default:
		return StatusMetered
	}
}

func (e *Engine) observe(res *TickResult) {
	if e.opts.Observer != nil {
		e.opts.Observer.ObserveTick(res)
	}
}

// Lock engages AE-lock on the current displayed EV. When nothing has been
// metered yet, the next metered tick's value is captured instead.
func (e *Engine) Lock() {
	v, ok := e.smoother.Value()
	e.lock.Engage(v, ok)
	e.logger.Debug("ae lock engaged", logging.Bool("captured", ok))
}

// Unlock releases AE-lock. It is a no-op when not locked.
func (e *Engine) Unlock() {
	if !e.lock.Engaged() {
		return
	}
	e.lock.Release()
	e.logger.Debug("ae lock released")
}

// Locked reports whether AE-lock is engaged.
func (e *Engine) Locked() bool { return e.lock.Engaged() }

// LockedEV returns the captured EV and whether one is held.
func (e *Engine) LockedEV() (float64, bool) { return e.lock.Captured() }

// SmoothedEV returns the filter value and whether it has been set.
func (e *Engine) SmoothedEV() (float64, bool) { return e.smoother.Value() }

// Reset clears the smoother and releases AE-lock.
func (e *Engine) Reset() {
	e.smoother.Reset()
	e.lock.Release()
}
