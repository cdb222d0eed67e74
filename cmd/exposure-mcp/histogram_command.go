package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironsheep/exposure-meter-mcp/internal/histogram"
	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
)

func newHistogramCommand(ctx *commandContext) *cobra.Command {
	var (
		pngPath     string
		render      histogram.RenderOptions
		channelMode string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "histogram <image>",
		Short: "Compute the brightness histogram of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cal, err := ctx.meterConfig()
			if err != nil {
				return err
			}
			mode := cfg.ChannelMode
			if channelMode != "" {
				mode = histogram.ChannelMode(channelMode)
				if !mode.Valid() {
					return fmt.Errorf("channel mode must be combined or separate, got %q", channelMode)
				}
			}

			frame, err := imaging.LoadFrame(imaging.NewImageCache(), args[0], true)
			if err != nil {
				return err
			}
			res := histogram.Compute(frame, histogram.Options{
				Compensation:   cfg.Compensation,
				UnderThreshold: cal.UnderExposureThreshold,
				OverThreshold:  cal.OverExposureThreshold,
				Mode:           mode,
				ReferenceGray:  cal.ReferenceGray,
			})

			if pngPath != "" {
				if err := writeHistogramPNG(res, pngPath, render); err != nil {
					return err
				}
			}

			if jsonOutput {
				return writeJSON(cmd, res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderHistogramSummary(res))
			if pngPath != "" {
				fmt.Fprintf(out, "Wrote histogram image to %s\n", pngPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pngPath, "png", "", "Render the histogram to this PNG file")
	cmd.Flags().IntVar(&render.Width, "width", histogram.DefaultRenderWidth, "Rendered image width (max 4096)")
	cmd.Flags().IntVar(&render.Height, "height", histogram.DefaultRenderHeight, "Rendered image height (max 4096)")
	cmd.Flags().StringVar(&render.Neutral, "bar-color", "", "Colour of neutral bars, as #RRGGBB")
	cmd.Flags().StringVar(&render.Under, "under-color", "", "Colour of under-exposed bars, as #RRGGBB")
	cmd.Flags().StringVar(&render.Over, "over-color", "", "Colour of over-exposed bars, as #RRGGBB")
	cmd.Flags().StringVar(&render.Marker, "marker-color", "", "Colour of zone markers, as #RRGGBB")
	cmd.Flags().StringVar(&render.Background, "background-color", "", "Plot background colour, as #RRGGBB")
	cmd.Flags().BoolVar(&render.HideZoneLabels, "no-zone-labels", false, "Draw zone markers without their numbers")
	cmd.Flags().StringVar(&channelMode, "channel-mode", "", "Override the channel mode: combined or separate")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func writeHistogramPNG(res *histogram.Result, path string, opts histogram.RenderOptions) error {
	img, err := histogram.Render(res, opts)
	if err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(img.ImageBase64)
	if err != nil {
		return fmt.Errorf("decode rendered histogram: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write histogram image: %w", err)
	}
	return nil
}

func renderHistogramSummary(res *histogram.Result) string {
	rows := [][]string{
		{"Mode", string(res.Mode)},
		{"Sampled pixels", strconv.Itoa(res.SampledPixels)},
		{"Peak bin count", strconv.Itoa(res.Max())},
	}
	if res.Mode == histogram.Combined {
		rows = append(rows,
			[]string{"Under (<" + strconv.Itoa(int(res.UnderThreshold)) + ")", strconv.FormatFloat(res.UnderPercent, 'f', 1, 64) + "%"},
			[]string{"Over (>" + strconv.Itoa(int(res.OverThreshold)) + ")", strconv.FormatFloat(res.OverPercent, 'f', 1, 64) + "%"},
		)
	}
	for _, z := range res.Zones {
		pos := "clipped"
		if z.InRange {
			pos = strconv.Itoa(z.Bin)
		}
		rows = append(rows, []string{"Zone " + strconv.Itoa(z.Zone), pos})
	}
	rows = append(rows,
		[]string{"Clipped highlights", yesNo(res.ClippedHighlights)},
		[]string{"Clipped shadows", yesNo(res.ClippedShadows)},
	)
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
