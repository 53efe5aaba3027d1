package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gauge-tracker/internal/gauge"
	"gauge-tracker/internal/logging"
	"gauge-tracker/internal/overlay"
	"gauge-tracker/internal/reading"
	"gauge-tracker/internal/shot"

	"github.com/spf13/cobra"
)

var (
	readJSON       bool
	readMode       string
	readOverlayDir string
	readCropDir    string
	readCropSize   int
	readAt         string
	readSteps      int
)

var readCmd = &cobra.Command{
	Use:   "read <image>...",
	Short: "Read the gauge in one or more screenshots",
	Long: "read decodes each screenshot, cuts the gauge out of its center and prints " +
		"the health reading. Calibration failures are reported per file.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newReader(readMode, readSteps)
		if err != nil {
			return err
		}
		at, err := parseAt(readAt)
		if err != nil {
			return err
		}
		crop := profile.Gauge.CropSize
		if cmd.Flags().Changed("crop-size") {
			crop = readCropSize
		}
		for _, dir := range []string{readOverlayDir, readCropDir} {
			if err := ensureDir(dir); err != nil {
				return err
			}
		}

		log := logging.FromContext(cmd.Context())
		out := cmd.OutOrStdout()
		if !readJSON {
			fmt.Fprintf(out, "%-32s %10s %9s %8s %s\n", "FILE", "HEALTH", "ARC", "SAMPLES", "CENTER")
		}

		failed := 0
		for _, path := range args {
			line, err := readOne(log, r, path, crop, at)
			if err != nil {
				failed++
				if isCalibration(err) {
					log.Warn("calibration failed, retake the screenshot", "file", path, "err", err)
				} else {
					log.Error("read failed", "file", path, "err", err)
				}
				continue
			}
			if err := writeLine(out, line, readJSON); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d images could not be read", failed, len(args))
		}
		return nil
	},
}

func init() {
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Print one JSON object per image")
	readCmd.Flags().StringVar(&readMode, "mode", "", "Calibration mode override: fixed or markers")
	readCmd.Flags().StringVar(&readOverlayDir, "overlay", "", "Directory to write debug overlays into")
	readCmd.Flags().StringVar(&readCropDir, "crop", "", "Directory to write the analyzed crop into")
	readCmd.Flags().IntVar(&readCropSize, "crop-size", 0, "Side of the center crop in pixels, 0 for the whole image (overrides profile)")
	readCmd.Flags().IntVar(&readSteps, "steps", 0, "Samples per revolution (overrides profile)")
	readCmd.Flags().StringVar(&readAt, "at", "", "Reading timestamp (RFC3339); defaults to the file modification time")
}

// readLine is one analyzed screenshot as printed by read and watch.
type readLine struct {
	File    string         `json:"file"`
	Health  reading.Health `json:"health"`
	Time    time.Time      `json:"time"`
	Degrees float64        `json:"arc_degrees"`
	Samples int            `json:"filled_samples"`
	CenterX float64        `json:"center_x"`
	CenterY float64        `json:"center_y"`
	Mode    string         `json:"mode"`
}

// readOne loads, crops and analyzes one screenshot. A zero at uses the file
// modification time.
func readOne(log *slog.Logger, r *gauge.Reader, path string, crop int, at time.Time) (readLine, error) {
	s, err := shot.Load(path)
	if err != nil {
		return readLine{}, err
	}
	if at.IsZero() {
		at = s.TakenAt
	}

	var img image.Image = s.Image
	if crop > 0 {
		img = shot.CenterCrop(s.Image, crop)
	}

	res, err := r.Analyze(img, at)
	if err != nil {
		return readLine{}, err
	}

	if readCropDir != "" {
		enlarged := shot.Scale(img, overlay.DefaultStyle().Scale)
		if err := shot.Save(outputPath(readCropDir, path, "crop"), enlarged); err != nil {
			log.Warn("could not save crop", "file", path, "err", err)
		}
	}
	if readOverlayDir != "" {
		if err := overlay.Save(outputPath(readOverlayDir, path, "overlay"), img, res, overlay.DefaultStyle()); err != nil {
			log.Warn("could not save overlay", "file", path, "err", err)
		}
	}

	log.Debug("analyzed", "file", path, "health", res.Reading.Health.String(),
		"center_x", res.Center.Point.X, "center_y", res.Center.Point.Y, "arc", res.Arc.Degrees)

	return readLine{
		File:    path,
		Health:  res.Reading.Health,
		Time:    res.Reading.Time,
		Degrees: res.Arc.Degrees,
		Samples: res.Arc.FilledCount,
		CenterX: res.Center.Point.X,
		CenterY: res.Center.Point.Y,
		Mode:    r.Config().Mode.String(),
	}, nil
}

func writeLine(w io.Writer, line readLine, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(line)
	}
	_, err := fmt.Fprintf(w, "%-32s %10s %8.2f° %8d (%.1f, %.1f)\n",
		filepath.Base(line.File), line.Health, line.Degrees, line.Samples, line.CenterX, line.CenterY)
	return err
}

// outputPath returns dir/<base>-<suffix>.png for src.
func outputPath(dir, src, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(dir, base+"-"+suffix+".png")
}

func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: %w", err)
	}
	return t, nil
}

// isCalibration reports whether err came from marker calibration.
func isCalibration(err error) bool {
	return errors.Is(err, gauge.ErrCalibration)
}

func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
