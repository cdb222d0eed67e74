package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
	"github.com/ironsheep/exposure-meter-mcp/internal/meter"
)

// exposureFlags override settings for a single CLI run.
type exposureFlags struct {
	iso          int
	compensation float64
	metering     string
	jsonOutput   bool
}

func (f *exposureFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.iso, "iso", 0, "Override the ISO setting")
	cmd.Flags().Float64Var(&f.compensation, "compensation", 0, "Override exposure compensation in EV")
	cmd.Flags().StringVar(&f.metering, "metering", "", "Override the metering mode: center or spot")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Emit JSON instead of a table")
}

func (f *exposureFlags) apply(cmd *cobra.Command, cfg meter.ExposureConfig) meter.ExposureConfig {
	if cmd.Flags().Changed("iso") {
		cfg.ISO = f.iso
	}
	if cmd.Flags().Changed("compensation") {
		cfg.Compensation = f.compensation
	}
	if f.metering != "" {
		cfg.Metering = meter.MeteringMode(f.metering)
	}
	return cfg
}

func newMeterCommand(ctx *commandContext) *cobra.Command {
	var flags exposureFlags

	cmd := &cobra.Command{
		Use:   "meter <image>",
		Short: "Meter one image and print the recommended exposure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cfg, cal, err := ctx.meterConfig()
			if err != nil {
				return err
			}
			cfg = flags.apply(cmd, cfg)

			frame, err := imaging.LoadFrame(imaging.NewImageCache(), args[0], true)
			if err != nil {
				return err
			}

			engine := meter.New(meter.Options{Logger: logger, Strict: ctx.flags.strict})
			res, err := engine.Tick(frame, cfg, cal)
			if err != nil {
				return err
			}

			if flags.jsonOutput {
				return writeJSON(cmd, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTickTable(res, cfg, shouldColorize(cmd.OutOrStdout())))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func formatEV(ev float64) string {
	if !meter.Metered(ev) {
		return "-"
	}
	return strconv.FormatFloat(ev, 'f', 2, 64)
}

func formatSigned(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBrightness(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

func renderTickTable(res *meter.TickResult, cfg meter.ExposureConfig, colorize bool) string {
	rows := [][]string{
		{"Status", string(res.Status)},
		{"Metering", string(res.Metering)},
		{"Brightness (center)", formatBrightness(res.Samples[meter.CenterWeighted])},
		{"Brightness (spot)", formatBrightness(res.Samples[meter.Spot])},
		{"Effective EV", formatEV(res.EffectiveEV)},
		{"ISO", strconv.Itoa(cfg.ISO)},
		{"Compensation", formatSigned(cfg.Compensation)},
		{"Priority", string(cfg.Priority)},
	}

	if r := res.Reading; r != nil {
		rows = append(rows,
			[]string{"Smoothed EV", formatEV(r.SmoothedEV)},
			[]string{"Shutter", r.ShutterLabel()},
			[]string{"Aperture", r.ApertureLabel()},
			[]string{"EV difference", formatSigned(r.EVDifference)},
			[]string{"AE lock", yesNo(r.Locked)},
		)
	}
	if c := res.Classification; c != nil {
		rows = append(rows,
			[]string{"Exposure", severityColor(c.Label, c.Severity.Under(), c.Severity.Over(), colorize)},
			[]string{"Advice", c.Advice},
		)
	}
	if h := res.Histogram; h != nil && h.SampledPixels > 0 && h.Bins != nil {
		rows = append(rows,
			[]string{"Under threshold", strconv.FormatFloat(h.UnderPercent, 'f', 1, 64) + "%"},
			[]string{"Over threshold", strconv.FormatFloat(h.OverPercent, 'f', 1, 64) + "%"},
		)
	}

	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
