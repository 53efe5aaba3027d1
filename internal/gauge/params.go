package gauge

import (
	"fmt"
	"image/color"
)

// Mode selects how the gauge center is located.
type Mode int

const (
	// ModeFixed assumes the image or crop is already centered on the gauge.
	ModeFixed Mode = iota
	// ModeMarkers locates the center from four colored corner markers.
	ModeMarkers
)

func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeMarkers:
		return "markers"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "fixed", "":
		return ModeFixed, nil
	case "markers":
		return ModeMarkers, nil
	default:
		return ModeFixed, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
	}
}

// HueRange is an inclusive hue interval on the OpenCV 0-180 scale.
type HueRange struct {
	Min, Max float64
}

// Contains reports whether h lies within the range.
func (r HueRange) Contains(h float64) bool {
	return h >= r.Min && h <= r.Max
}

// Config holds every tunable of the gauge reader.
// See DefaultConfig for values tuned against the in-game gauge art.
type Config struct {
	Mode Mode

	// Sampling radii in pixels; each angle is filled if any radius qualifies.
	Radii []float64

	// Fill color acceptance (HSV, OpenCV scale)
	HueRanges []HueRange
	SatMin    float64 // 0-255
	ValMin    float64 // 0-255
	AlphaMin  uint8   // pixels below this opacity never qualify

	// Angular scan
	Steps        int     // samples per revolution
	GapTolerance float64 // degrees of unfilled arc tolerated inside the bar
	ZeroWindow   float64 // a filled sample must exist in [0, ZeroWindow] degrees
	MinHealth    float64 // readings below this percentage count as destroyed

	Markers MarkerConfig
}

// MarkerConfig tunes robust center calibration.
type MarkerConfig struct {
	Colors           []color.NRGBA
	MaxColorDistance float64 // RGB euclidean distance to any marker color
	MinPixels        int     // fewer marker-colored pixels fails calibration
	JoinDistance     float64 // pixels closer than this join the same cluster
	MinClusterSize   int
	OutlierFactor    float64 // clusters farther than factor*mean distance are dropped

	// RadiusScale derives the sampling radius from the mean marker distance.
	// Zero keeps Config.Radii.
	RadiusScale float64
}

// DefaultConfig returns the reader configuration for the standard gauge asset.
func DefaultConfig() Config {
	return Config{
		Mode:  ModeFixed,
		Radii: []float64{19, 20, 21},

		// Red wraps around 180; the third band covers orange through green.
		HueRanges: []HueRange{{0, 10}, {170, 179}, {20, 70}},
		SatMin:    80,
		ValMin:    70,
		AlphaMin:  200,

		Steps:        1440,
		GapTolerance: 5,
		ZeroWindow:   1,
		MinHealth:    1,

		Markers: DefaultMarkerConfig(),
	}
}

// DefaultMarkerConfig returns marker settings for the pale corner markers
// drawn around the gauge.
func DefaultMarkerConfig() MarkerConfig {
	return MarkerConfig{
		Colors: []color.NRGBA{
			{R: 255, G: 245, B: 230, A: 255},
			{R: 253, G: 255, B: 230, A: 255},
			{R: 240, G: 255, B: 230, A: 255},
			{R: 230, G: 240, B: 255, A: 255},
			{R: 233, G: 230, B: 255, A: 255},
		},
		MaxColorDistance: 45,
		MinPixels:        10,
		JoinDistance:     8,
		MinClusterSize:   3,
		OutlierFactor:    1.5,
		RadiusScale:      2.5,
	}
}

// WithMode returns a copy of c using the given calibration mode.
func (c Config) WithMode(m Mode) Config {
	c.Mode = m
	return c
}

// WithRadii returns a copy of c sampling the given radii.
func (c Config) WithRadii(radii ...float64) Config {
	c.Radii = append([]float64(nil), radii...)
	return c
}

// WithHSV returns a copy of c with custom fill color thresholds.
// Useful when the gauge art has been re-skinned.
func (c Config) WithHSV(satMin, valMin float64, hues ...HueRange) Config {
	c.SatMin = satMin
	c.ValMin = valMin
	c.HueRanges = append([]HueRange(nil), hues...)
	return c
}

// WithResolution returns a copy of c with a different angular resolution.
func (c Config) WithResolution(steps int) Config {
	c.Steps = steps
	return c
}

// StepDegrees returns the angular distance between adjacent samples.
func (c Config) StepDegrees() float64 {
	return 360.0 / float64(c.Steps)
}

// Validate rejects configurations that cannot produce a meaningful reading.
func (c Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps)
	}
	if len(c.HueRanges) == 0 {
		return fmt.Errorf("%w: at least one hue range is required", ErrInvalidConfig)
	}
	for i, r := range c.HueRanges {
		if r.Min > r.Max {
			return fmt.Errorf("%w: hue range %d is inverted (%v > %v)", ErrInvalidConfig, i, r.Min, r.Max)
		}
	}
	if c.GapTolerance < 0 || c.GapTolerance >= 360 {
		return fmt.Errorf("%w: gap tolerance must be in [0,360), got %v", ErrInvalidConfig, c.GapTolerance)
	}
	if c.ZeroWindow < 0 || c.ZeroWindow >= 360 {
		return fmt.Errorf("%w: zero window must be in [0,360), got %v", ErrInvalidConfig, c.ZeroWindow)
	}
	if c.MinHealth < 0 || c.MinHealth > 100 {
		return fmt.Errorf("%w: min health must be in [0,100], got %v", ErrInvalidConfig, c.MinHealth)
	}
	for _, r := range c.Radii {
		if r <= 0 {
			return fmt.Errorf("%w: radii must be positive, got %v", ErrInvalidConfig, r)
		}
	}

	switch c.Mode {
	case ModeFixed:
		if len(c.Radii) == 0 {
			return fmt.Errorf("%w: fixed mode needs at least one radius", ErrInvalidConfig)
		}
	case ModeMarkers:
		return c.Markers.validate(len(c.Radii) > 0)
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, c.Mode)
	}
	return nil
}

func (m MarkerConfig) validate(haveRadii bool) error {
	if len(m.Colors) == 0 {
		return fmt.Errorf("%w: markers need at least one color", ErrInvalidConfig)
	}
	if m.MaxColorDistance <= 0 {
		return fmt.Errorf("%w: marker color distance must be positive", ErrInvalidConfig)
	}
	if m.JoinDistance <= 0 {
		return fmt.Errorf("%w: marker join distance must be positive", ErrInvalidConfig)
	}
	if m.OutlierFactor <= 0 {
		return fmt.Errorf("%w: marker outlier factor must be positive", ErrInvalidConfig)
	}
	if m.RadiusScale < 0 {
		return fmt.Errorf("%w: marker radius scale must not be negative", ErrInvalidConfig)
	}
	if m.RadiusScale == 0 && !haveRadii {
		return fmt.Errorf("%w: markers need a radius scale or explicit radii", ErrInvalidConfig)
	}
	return nil
}
