// Package gauge reads the circular health gauge out of a screenshot.
//
// A Reader calibrates the gauge center (fixed or marker based), samples
// concentric rings clockwise from 12 o'clock, and converts the contiguous
// filled arc into a health percentage. A gauge with no fill at 12 o'clock
// reads as destroyed rather than as a small percentage.
package gauge

import (
	"fmt"
	"image"
	"time"

	"gauge-tracker/internal/reading"
)

// Result is a reading together with the intermediate geometry that produced
// it. Useful for debug overlays and calibration tuning.
type Result struct {
	Reading reading.Reading
	Center  Center
	Arc     Arc
}

// Reader turns screenshots into readings. It holds no mutable state and is
// safe for concurrent use.
type Reader struct {
	cfg        Config
	calibrator Calibrator
	scanner    *Scanner
}

// NewReader validates cfg and builds a Reader.
func NewReader(cfg Config) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Reader{
		cfg:        cfg,
		calibrator: NewCalibrator(cfg),
		scanner:    NewScanner(cfg),
	}, nil
}

// WithCalibrator returns a copy of r that locates the center with c.
func (r *Reader) WithCalibrator(c Calibrator) *Reader {
	cp := *r
	cp.calibrator = c
	return &cp
}

// Config returns the configuration the reader was built with.
func (r *Reader) Config() Config {
	return r.cfg
}

// Read analyzes img and stamps the reading with at.
func (r *Reader) Read(img image.Image, at time.Time) (reading.Reading, error) {
	res, err := r.Analyze(img, at)
	if err != nil {
		return reading.Reading{}, err
	}
	return res.Reading, nil
}

// Analyze is Read plus the calibrated center and scanned arc.
// Calibration failures are returned as errors wrapping ErrCalibration;
// an empty or broken ring is a destroyed reading, not an error.
func (r *Reader) Analyze(img image.Image, at time.Time) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	center, err := r.calibrator.Calibrate(img)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	if len(center.Radii) == 0 {
		return nil, fmt.Errorf("%w: calibrator produced no sampling radius", ErrInvalidConfig)
	}

	arc := r.scanner.Scan(img, center)
	return &Result{
		Reading: reading.New(r.health(arc), at),
		Center:  center,
		Arc:     arc,
	}, nil
}

// health converts the arc to a percentage, mapping a missing zero-angle
// fill or a sub-threshold arc to destroyed.
func (r *Reader) health(arc Arc) reading.Health {
	if arc.FilledCount == 0 || !arc.ZeroHit {
		return reading.Destroyed()
	}
	pct := arc.Degrees / 360 * 100
	if pct < r.cfg.MinHealth {
		return reading.Destroyed()
	}
	return reading.Percent(pct)
}
