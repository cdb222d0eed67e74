package meter

import (
	"context"
	"log/slog"
	"time"

	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
	"github.com/ironsheep/exposure-meter-mcp/internal/logging"
)

// DefaultInterval is the tick period when Runner.Interval is zero.
const DefaultInterval = 250 * time.Millisecond

// FrameSource supplies the frame for each tick. Any waiting for a new frame
// happens here, outside the engine.
type FrameSource interface {
	Frame(ctx context.Context) (*imaging.Frame, error)
}

// ConfigSource returns the configuration snapshot for the next tick.
type ConfigSource func() (ExposureConfig, CalibrationProfile)

// StaticConfig returns a ConfigSource that always yields cfg and cal.
func StaticConfig(cfg ExposureConfig, cal CalibrationProfile) ConfigSource {
	return func() (ExposureConfig, CalibrationProfile) { return cfg, cal }
}

// Runner drives an Engine from a periodic ticker.
type Runner struct {
	Engine *Engine
	Source FrameSource
	Config ConfigSource

	Interval time.Duration

	// Limit stops the runner after that many ticks. Zero runs until the
	// context is cancelled.
	Limit int

	// Sink receives every successful tick result.
	Sink func(*TickResult)

	Logger *slog.Logger
}

// Run ticks once immediately and then every Interval until ctx is cancelled
// or Limit ticks have completed.
//
// A failed tick (frame source error or engine error) is logged and the next
// tick retries. Run returns ctx.Err() on cancellation and nil when Limit is
// reached.
func (r *Runner) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := logging.NewComponentLogger(r.Logger, "runner")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 0; r.Limit <= 0 || n < r.Limit; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		r.tick(ctx, logger)
	}
	return nil
}

func (r *Runner) tick(ctx context.Context, logger *slog.Logger) {
	frame, err := r.Source.Frame(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "frame unavailable", "frame_source_failed",
			logging.Error(err))
		return
	}

	cfg, cal := DefaultExposureConfig(), DefaultCalibrationProfile()
	if r.Config != nil {
		cfg, cal = r.Config()
	}

	res, err := r.Engine.Tick(frame, cfg, cal)
	if err != nil {
		logging.WarnWithContext(logger, "tick failed", "tick_failed", logging.Error(err))
		return
	}
	if r.Sink != nil {
		r.Sink(res)
	}
}
