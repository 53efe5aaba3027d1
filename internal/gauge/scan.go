package gauge

import (
	"image"

	"gauge-tracker/pkg/geometry"
)

// Arc is the outcome of scanning one ring.
type Arc struct {
	// Filled holds one entry per angular sample, starting at 12 o'clock
	// and proceeding clockwise.
	Filled []bool

	// FilledCount is the number of filled samples anywhere on the ring.
	FilledCount int

	// ZeroHit reports whether a filled sample lies within the zero window.
	ZeroHit bool

	// Degrees is the contiguous arc from 12 o'clock, after gap tolerance
	// and full-circle snapping. Zero when ZeroHit is false.
	Degrees float64
}

// Scanner samples concentric rings around a calibrated center.
type Scanner struct {
	classifier   Classifier
	steps        int
	gapTolerance float64
	zeroWindow   float64
}

// NewScanner builds a Scanner from cfg. cfg must already be valid.
func NewScanner(cfg Config) *Scanner {
	return &Scanner{
		classifier:   NewClassifier(cfg),
		steps:        cfg.Steps,
		gapTolerance: cfg.GapTolerance,
		zeroWindow:   cfg.ZeroWindow,
	}
}

// Scan samples every radius at each angle and measures the filled arc.
func (s *Scanner) Scan(img image.Image, center Center) Arc {
	arc := Arc{Filled: s.sample(img, center)}
	step := 360.0 / float64(s.steps)

	for i, f := range arc.Filled {
		if !f {
			continue
		}
		arc.FilledCount++
		if float64(i)*step <= s.zeroWindow {
			arc.ZeroHit = true
		}
	}
	if !arc.ZeroHit {
		return arc
	}

	arc.Degrees = s.continuous(arc.Filled, step)
	return arc
}

// sample classifies the pixel under each ring point. An angle counts as
// filled if any radius hits a fill-colored pixel.
func (s *Scanner) sample(img image.Image, center Center) []bool {
	b := img.Bounds()
	filled := make([]bool, s.steps)
	step := 360.0 / float64(s.steps)

	for i := range filled {
		angle := float64(i) * step
		for _, r := range center.Radii {
			x, y := geometry.RingPoint(center.Point, r, angle).Round()
			if !(image.Point{X: x, Y: y}).In(b) {
				continue
			}
			if s.classifier.Filled(img.At(x, y)) {
				filled[i] = true
				break
			}
		}
	}
	return filled
}

// continuous walks forward from 12 o'clock and returns the last filled angle
// before a gap wider than the tolerance. An arc within tolerance of a full
// revolution snaps to 360.
func (s *Scanner) continuous(filled []bool, step float64) float64 {
	last := 0.0
	for i := 1; i < len(filled); i++ {
		angle := float64(i) * step
		if filled[i] {
			last = angle
			continue
		}
		if angle-last > s.gapTolerance {
			break
		}
	}

	if last > 360-s.gapTolerance {
		return 360
	}
	return last
}
