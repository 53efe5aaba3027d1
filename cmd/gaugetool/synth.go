package main

import (
	"fmt"

	"gauge-tracker/internal/gauge"
	"gauge-tracker/internal/logging"
	"gauge-tracker/internal/shot"

	"github.com/spf13/cobra"
)

var (
	synthPercent  float64
	synthOut      string
	synthSize     int
	synthMarkers  bool
	synthRotation float64
	synthDistance float64
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Render a synthetic gauge image",
	Long: "synth paints a gauge whose filled arc is the given percentage, optionally " +
		"with four calibration markers, for testing thresholds and calibration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if synthOut == "" {
			return fmt.Errorf("--out is required")
		}
		if synthPercent < 0 || synthPercent > 100 {
			return fmt.Errorf("--percent must be in [0,100], got %v", synthPercent)
		}

		spec := gauge.DefaultSynthSpec(synthPercent)
		spec.Width, spec.Height = synthSize, synthSize
		cfg := profile.ReaderConfig()
		if len(cfg.Radii) > 0 {
			spec.Radii = cfg.Radii
		}
		spec.Steps = cfg.Steps

		if synthMarkers {
			m := cfg.Markers
			if m.RadiusScale > 0 && synthDistance == 0 {
				synthDistance = meanOf(spec.Radii) / m.RadiusScale
			}
			if synthDistance <= 0 || len(m.Colors) == 0 {
				return fmt.Errorf("markers need a positive --marker-distance and at least one marker color")
			}
			spec.Markers = &gauge.SynthMarkers{
				Distance: synthDistance,
				Rotation: synthRotation,
				Size:     3,
				Color:    m.Colors[0],
			}
		}

		if err := shot.Save(synthOut, gauge.Synthesize(spec)); err != nil {
			return err
		}
		logging.FromContext(cmd.Context()).Info("synthetic gauge written", "path", synthOut, "percent", synthPercent, "markers", synthMarkers)
		return nil
	},
}

func init() {
	synthCmd.Flags().Float64Var(&synthPercent, "percent", 50, "Filled arc as a percentage of a revolution")
	synthCmd.Flags().StringVar(&synthOut, "out", "", "Output image (.png, .tiff, .bmp, .jpg)")
	synthCmd.Flags().IntVar(&synthSize, "size", 200, "Image width and height in pixels")
	synthCmd.Flags().BoolVar(&synthMarkers, "markers", false, "Draw four calibration markers")
	synthCmd.Flags().Float64Var(&synthRotation, "rotation", 0, "Rotate the marker layout clockwise by this many degrees")
	synthCmd.Flags().Float64Var(&synthDistance, "marker-distance", 0, "Marker distance from center (derived from the radius scale when 0)")
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
