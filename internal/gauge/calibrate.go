package gauge

import (
	"image"

	"gauge-tracker/pkg/geometry"
)

// Center is a calibrated gauge center and the radii to sample around it.
type Center struct {
	Point geometry.Point2D
	Radii []float64

	// Markers holds the four quadrant markers (TL, TR, BR, BL) when the
	// center came from marker calibration.
	Markers []geometry.Point2D
}

// Calibrator locates the gauge center in an image.
type Calibrator interface {
	Calibrate(img image.Image) (Center, error)
}

// NewCalibrator returns the calibration strategy selected by cfg.Mode.
func NewCalibrator(cfg Config) Calibrator {
	if cfg.Mode == ModeMarkers {
		return &MarkerCalibrator{Markers: cfg.Markers, AlphaMin: cfg.AlphaMin, Radii: cfg.Radii}
	}
	return FixedCenter{Radii: cfg.Radii}
}

// FixedCenter treats the middle of the image as the gauge center.
// It never fails.
type FixedCenter struct {
	Radii []float64
}

// Calibrate returns the geometric center of img's bounds, using integer
// halving so that even-sized crops land on a pixel.
func (f FixedCenter) Calibrate(img image.Image) (Center, error) {
	b := img.Bounds()
	return Center{
		Point: geometry.Point2D{
			X: float64(b.Min.X + b.Dx()/2),
			Y: float64(b.Min.Y + b.Dy()/2),
		},
		Radii: append([]float64(nil), f.Radii...),
	}, nil
}
