package gauge

import (
	"image/color"
	"math"

	"gauge-tracker/pkg/colorutil"
)

// Classifier decides whether a single pixel belongs to the filled part of
// the gauge.
type Classifier struct {
	hues     []HueRange
	satMin   float64
	valMin   float64
	alphaMin uint8
}

// NewClassifier builds a classifier from the color thresholds in cfg.
func NewClassifier(cfg Config) Classifier {
	return Classifier{
		hues:     append([]HueRange(nil), cfg.HueRanges...),
		satMin:   cfg.SatMin,
		valMin:   cfg.ValMin,
		alphaMin: cfg.AlphaMin,
	}
}

// Filled reports whether c is a gauge fill color.
func (k Classifier) Filled(c color.Color) bool {
	p := colorutil.NRGBA(c)
	if p.A < k.alphaMin {
		return false
	}

	h, s, v := colorutil.RGBToHSV(float64(p.R), float64(p.G), float64(p.B))
	if s < k.satMin || v < k.valMin {
		return false
	}

	// 8-bit HSV stores whole hue units, so 179.6 reads as 0.
	h = math.Round(h)
	if h >= 180 {
		h -= 180
	}
	for _, r := range k.hues {
		if r.Contains(h) {
			return true
		}
	}
	return false
}
