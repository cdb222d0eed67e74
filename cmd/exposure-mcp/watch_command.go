package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
	"github.com/ironsheep/exposure-meter-mcp/internal/meter"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		flags    exposureFlags
		interval time.Duration
		ticks    int
		lock     bool
	)

	cmd := &cobra.Command{
		Use:   "watch <image>",
		Short: "Meter an image file repeatedly, as a live view would",
		Long: "Re-reads the image on every tick so another process can keep replacing it.\n" +
			"Readings are smoothed across ticks; --lock engages AE-lock on the first metered value.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			s, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			cfg, cal, err := ctx.meterConfig()
			if err != nil {
				return err
			}
			cfg = flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			if !cmd.Flags().Changed("interval") {
				interval = s.Interval()
			}

			observer, stop, err := startMetrics(ctx.flags.metricsAddr, logger)
			if err != nil {
				return err
			}
			defer stop()

			engine := meter.New(meter.Options{
				Logger:   logger,
				Observer: observer,
				Strict:   ctx.flags.strict,
			})
			if lock {
				engine.Lock()
			}

			out := cmd.OutOrStdout()
			sink := newWatchSink(out, flags.jsonOutput, shouldColorize(out))

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runner := &meter.Runner{
				Engine:   engine,
				Source:   imaging.FileSource{Path: args[0]},
				Config:   meter.StaticConfig(cfg, cal),
				Interval: interval,
				Limit:    ticks,
				Sink:     sink,
				Logger:   logger,
			}
			if err := runner.Run(signalCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", meter.DefaultInterval, "Tick period (defaults to the settings file's ticker interval)")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "Stop after this many ticks (0 runs until interrupted)")
	cmd.Flags().BoolVar(&lock, "lock", false, "Engage AE-lock before the first tick")
	return cmd
}

// watchRecord is one JSON line of watch output. Display is the reading to
// show, which is the last metered one when this tick was out of range.
type watchRecord struct {
	Result                *meter.TickResult      `json:"result"`
	Display               *meter.ExposureReading `json:"display,omitempty"`
	DisplayClassification *meter.Classification  `json:"display_classification,omitempty"`
	Stale                 bool                   `json:"stale"`
}

// newWatchSink prints one line per tick, or one JSON object per line. Out of
// range ticks keep showing the last metered reading, marked stale.
func newWatchSink(w io.Writer, jsonOutput, colorize bool) func(*meter.TickResult) {
	var last *meter.TickResult
	enc := json.NewEncoder(w)
	return func(res *meter.TickResult) {
		if res.Reading != nil {
			last = res
		}
		if !jsonOutput {
			fmt.Fprintln(w, formatWatchLine(res, last, colorize))
			return
		}
		rec := watchRecord{Result: res}
		if last != nil {
			rec.Display = last.Reading
			rec.DisplayClassification = last.Classification
			rec.Stale = last != res
		}
		_ = enc.Encode(rec)
	}
}

// formatWatchLine renders res, falling back to last when res carries no
// reading. last may be nil or res itself.
func formatWatchLine(res, last *meter.TickResult, colorize bool) string {
	stamp := time.Now().Format("15:04:05.000")
	if res.Reading == nil {
		line := fmt.Sprintf("%s  %-10s  brightness %5s", stamp, res.Status, formatBrightness(res.Brightness))
		if last == nil || last.Reading == nil {
			return line
		}
		r := last.Reading
		return fmt.Sprintf("%s  last %s %s  EV %s  [stale]",
			line, r.ShutterLabel(), r.ApertureLabel(), formatEV(r.SmoothedEV))
	}
	r := res.Reading
	label := "balanced"
	if c := res.Classification; c != nil {
		label = severityColor(c.Severity.String(), c.Severity.Under(), c.Severity.Over(), colorize)
	}
	lockMark := ""
	if r.Locked {
		lockMark = "  [AE-L]"
	}
	return fmt.Sprintf("%s  %-7s %-6s  EV %5s (raw %5s)  diff %+.2f  %s%s",
		stamp, r.ShutterLabel(), r.ApertureLabel(), formatEV(r.SmoothedEV), formatEV(r.EffectiveEV),
		r.EVDifference, label, lockMark)
}
