package gauge

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"gauge-tracker/pkg/colorutil"
	"gauge-tracker/pkg/geometry"
)

// SynthSpec describes a synthetic gauge image.
type SynthSpec struct {
	Width, Height int
	Percent       float64 // filled arc, 0-100
	Radii         []float64
	Steps         int // angular resolution used to paint the arc

	Fill       color.NRGBA
	Background color.NRGBA

	// Center overrides the fixed-mode center of the image.
	Center *geometry.Point2D

	// Markers, if set, paints four corner markers around the center.
	Markers *SynthMarkers
}

// SynthMarkers places four round markers on the diagonals around the center.
type SynthMarkers struct {
	Distance float64 // from the gauge center
	Rotation float64 // degrees clockwise applied to the whole configuration
	Size     float64 // marker radius in pixels
	Color    color.NRGBA
}

// DefaultSynthSpec matches DefaultConfig: 200x200, radii 19-21, 1440 steps,
// pure green fill on black.
func DefaultSynthSpec(percent float64) SynthSpec {
	cfg := DefaultConfig()
	return SynthSpec{
		Width:      200,
		Height:     200,
		Percent:    percent,
		Radii:      cfg.Radii,
		Steps:      cfg.Steps,
		Fill:       colorutil.NRGBA(colorutil.Green),
		Background: colorutil.NRGBA(colorutil.Black),
	}
}

// Synthesize paints a gauge whose filled arc is spec.Percent of a revolution,
// sampled at the same angles and radii the Scanner uses.
func Synthesize(spec SynthSpec) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: spec.Background}, image.Point{}, draw.Src)

	center := geometry.Point2D{X: float64(spec.Width / 2), Y: float64(spec.Height / 2)}
	if spec.Center != nil {
		center = *spec.Center
	}

	steps := spec.Steps
	if steps <= 0 {
		steps = DefaultConfig().Steps
	}
	pct := math.Max(0, math.Min(100, spec.Percent))
	count := int(pct/100*float64(steps) + 1e-9)
	step := 360.0 / float64(steps)

	for i := 0; i < count; i++ {
		angle := float64(i) * step
		for _, r := range spec.Radii {
			x, y := geometry.RingPoint(center, r, angle).Round()
			img.SetNRGBA(x, y, spec.Fill)
		}
	}

	if spec.Markers != nil {
		for _, p := range SynthMarkerCenters(center, *spec.Markers) {
			fillDisc(img, p, spec.Markers.Size, spec.Markers.Color)
		}
	}
	return img
}

// SynthMarkerCenters returns where Synthesize puts the markers, ordered
// TR, BR, BL, TL before rotation.
func SynthMarkerCenters(center geometry.Point2D, m SynthMarkers) []geometry.Point2D {
	out := make([]geometry.Point2D, 4)
	for k := range out {
		p := geometry.RingPoint(center, m.Distance, 45+90*float64(k))
		out[k] = p.RotateAround(center, m.Rotation)
	}
	return out
}

func fillDisc(img *image.NRGBA, c geometry.Point2D, radius float64, col color.NRGBA) {
	r2 := radius * radius
	x0, y0 := int(math.Floor(c.X-radius)), int(math.Floor(c.Y-radius))
	x1, y1 := int(math.Ceil(c.X+radius)), int(math.Ceil(c.Y+radius))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x)-c.X, float64(y)-c.Y
			if dx*dx+dy*dy <= r2 {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}
