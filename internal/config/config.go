// Package config loads and watches the gauge profile (gauge.yaml).
//
// A Profile carries every reader and projection tunable so that re-skinned
// gauge art or a different event cycle can be handled without a rebuild.
// Load applies defaults, decodes the YAML over them and validates the
// result. Watch reloads the file with fsnotify.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gauge-tracker/internal/decay"
	"gauge-tracker/internal/gauge"
	"gauge-tracker/internal/shot"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the profile.
const (
	DefaultCropSize    = 50
	DefaultWatchSettle = 250 * time.Millisecond
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// DefaultExtensions are the screenshot types picked up by the watcher.
var DefaultExtensions = shot.SupportedFormats()

// Profile is the top-level configuration.
type Profile struct {
	Gauge      GaugeConfig      `yaml:"gauge"`
	Markers    MarkerConfig     `yaml:"markers"`
	Projection ProjectionConfig `yaml:"projection"`
	Watch      WatchConfig      `yaml:"watch"`
	Log        LogConfig        `yaml:"log"`
}

// GaugeConfig mirrors gauge.Config.
type GaugeConfig struct {
	// Mode is fixed | markers.
	Mode         string     `yaml:"mode"`
	Radii        []float64  `yaml:"radii"`
	HueRanges    []HueRange `yaml:"hue_ranges"`
	SatMin       float64    `yaml:"sat_min"`
	ValMin       float64    `yaml:"val_min"`
	AlphaMin     uint8      `yaml:"alpha_min"`
	Steps        int        `yaml:"steps"`
	GapTolerance float64    `yaml:"gap_tolerance"`
	ZeroWindow   float64    `yaml:"zero_window"`
	MinHealth    float64    `yaml:"min_health"`

	// CropSize is the side of the square cut from the screenshot center
	// before reading. Zero reads the whole image.
	CropSize int `yaml:"crop_size"`
}

// HueRange is an inclusive OpenCV hue interval.
type HueRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// MarkerConfig mirrors gauge.MarkerConfig.
type MarkerConfig struct {
	Colors           []Color `yaml:"colors"`
	MaxColorDistance float64 `yaml:"max_color_distance"`
	MinPixels        int     `yaml:"min_pixels"`
	JoinDistance     float64 `yaml:"join_distance"`
	MinClusterSize   int     `yaml:"min_cluster_size"`
	OutlierFactor    float64 `yaml:"outlier_factor"`
	RadiusScale      float64 `yaml:"radius_scale"`
}

// ProjectionConfig selects and tunes the decay projection.
type ProjectionConfig struct {
	// Strategy is cycle | trend.
	Strategy   string      `yaml:"strategy"`
	Cycle      CycleConfig `yaml:"cycle"`
	WatchLimit int         `yaml:"watch_limit"`
}

// CycleConfig is the duration range of one decay cycle.
type CycleConfig struct {
	Min time.Duration `yaml:"min"`
	Avg time.Duration `yaml:"avg"`
	Max time.Duration `yaml:"max"`
}

// WatchConfig tunes the screenshot directory watcher.
type WatchConfig struct {
	Extensions []string `yaml:"extensions"`

	// Settle is how long a new file must stay unchanged before it is read.
	Settle time.Duration `yaml:"settle"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Color is an opaque RGB color written as "#rrggbb".
type Color struct {
	color.NRGBA
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}}, nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalYAML writes the hex form.
func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// UnmarshalYAML reads the hex form.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = parsed
	return nil
}

// Load reads and parses the YAML profile at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a profile from YAML bytes over the defaults.
func Parse(data []byte) (*Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := validate(p); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return p, nil
}

// Default returns a Profile populated with the reader and projector defaults.
func Default() *Profile {
	g := gauge.DefaultConfig()
	c := decay.DefaultCycleBounds()

	hues := make([]HueRange, len(g.HueRanges))
	for i, h := range g.HueRanges {
		hues[i] = HueRange{Min: h.Min, Max: h.Max}
	}
	colors := make([]Color, len(g.Markers.Colors))
	for i, mc := range g.Markers.Colors {
		colors[i] = Color{mc}
	}

	return &Profile{
		Gauge: GaugeConfig{
			Mode:         g.Mode.String(),
			Radii:        append([]float64(nil), g.Radii...),
			HueRanges:    hues,
			SatMin:       g.SatMin,
			ValMin:       g.ValMin,
			AlphaMin:     g.AlphaMin,
			Steps:        g.Steps,
			GapTolerance: g.GapTolerance,
			ZeroWindow:   g.ZeroWindow,
			MinHealth:    g.MinHealth,
			CropSize:     DefaultCropSize,
		},
		Markers: MarkerConfig{
			Colors:           colors,
			MaxColorDistance: g.Markers.MaxColorDistance,
			MinPixels:        g.Markers.MinPixels,
			JoinDistance:     g.Markers.JoinDistance,
			MinClusterSize:   g.Markers.MinClusterSize,
			OutlierFactor:    g.Markers.OutlierFactor,
			RadiusScale:      g.Markers.RadiusScale,
		},
		Projection: ProjectionConfig{
			Strategy:   "cycle",
			Cycle:      CycleConfig{Min: c.Min, Avg: c.Avg, Max: c.Max},
			WatchLimit: decay.DefaultWatchLimit,
		},
		Watch: WatchConfig{
			Extensions: append([]string(nil), DefaultExtensions...),
			Settle:     DefaultWatchSettle,
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// ReaderConfig converts the profile into a gauge reader configuration.
func (p *Profile) ReaderConfig() gauge.Config {
	mode, _ := gauge.ParseMode(p.Gauge.Mode)

	hues := make([]gauge.HueRange, len(p.Gauge.HueRanges))
	for i, h := range p.Gauge.HueRanges {
		hues[i] = gauge.HueRange{Min: h.Min, Max: h.Max}
	}
	colors := make([]color.NRGBA, len(p.Markers.Colors))
	for i, c := range p.Markers.Colors {
		colors[i] = c.NRGBA
	}

	cfg := gauge.DefaultConfig().
		WithMode(mode).
		WithRadii(p.Gauge.Radii...).
		WithHSV(p.Gauge.SatMin, p.Gauge.ValMin, hues...).
		WithResolution(p.Gauge.Steps)
	cfg.AlphaMin = p.Gauge.AlphaMin
	cfg.GapTolerance = p.Gauge.GapTolerance
	cfg.ZeroWindow = p.Gauge.ZeroWindow
	cfg.MinHealth = p.Gauge.MinHealth
	cfg.Markers = gauge.MarkerConfig{
		Colors:           colors,
		MaxColorDistance: p.Markers.MaxColorDistance,
		MinPixels:        p.Markers.MinPixels,
		JoinDistance:     p.Markers.JoinDistance,
		MinClusterSize:   p.Markers.MinClusterSize,
		OutlierFactor:    p.Markers.OutlierFactor,
		RadiusScale:      p.Markers.RadiusScale,
	}
	return cfg
}

// Cycle returns the configured cycle bounds.
func (p *Profile) Cycle() decay.CycleBounds {
	c := p.Projection.Cycle
	return decay.CycleBounds{Min: c.Min, Avg: c.Avg, Max: c.Max}
}

// Strategy returns the configured projection strategy.
func (p *Profile) Strategy() (decay.Strategy, error) {
	return decay.ParseStrategy(p.Projection.Strategy, p.Cycle())
}

// WantsFile reports whether name has one of the watched extensions.
func (p *Profile) WantsFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range p.Watch.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// validate checks structural constraints. Reader tunables are checked by
// gauge.Config.Validate so the two never drift apart.
func validate(p *Profile) error {
	if _, err := gauge.ParseMode(p.Gauge.Mode); err != nil {
		return fmt.Errorf("gauge.mode: %w", err)
	}
	if err := p.ReaderConfig().Validate(); err != nil {
		return fmt.Errorf("gauge: %w", err)
	}
	if p.Gauge.CropSize < 0 {
		return errors.New("gauge.crop_size must not be negative")
	}
	if err := p.Cycle().Validate(); err != nil {
		return fmt.Errorf("projection.cycle: %w", err)
	}
	if _, err := p.Strategy(); err != nil {
		return fmt.Errorf("projection.strategy: %w", err)
	}
	if p.Projection.WatchLimit < 0 {
		return errors.New("projection.watch_limit must not be negative")
	}
	if len(p.Watch.Extensions) == 0 {
		return errors.New("watch.extensions must list at least one extension")
	}
	for _, ext := range p.Watch.Extensions {
		if !shot.IsSupportedFormat("x" + ext) {
			return fmt.Errorf("watch.extensions: cannot decode %q", ext)
		}
	}
	if p.Watch.Settle < 0 {
		return errors.New("watch.settle must not be negative")
	}
	switch strings.ToLower(p.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", p.Log.Format)
	}
	return nil
}
