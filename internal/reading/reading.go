// Package reading defines gauge readings and per-object reading histories.
package reading

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrOutOfRange is returned when a health percentage lies outside [0,100].
var ErrOutOfRange = errors.New("health percent out of range")

const destroyedLabel = "destroyed"

// Health is either a percentage in [0,100] or the destroyed state.
// The zero value is 0%, not destroyed.
type Health struct {
	percent   float64
	destroyed bool
}

// Percent returns a numeric health clamped to [0,100]. NaN becomes 0.
func Percent(p float64) Health {
	switch {
	case math.IsNaN(p) || p < 0:
		p = 0
	case p > 100:
		p = 100
	}
	return Health{percent: p}
}

// Destroyed returns the terminal destroyed state.
func Destroyed() Health {
	return Health{destroyed: true}
}

// ParsePercent validates p without clamping.
func ParsePercent(p float64) (Health, error) {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return Health{}, fmt.Errorf("%w: %v", ErrOutOfRange, p)
	}
	return Health{percent: p}, nil
}

// IsDestroyed reports whether h is the destroyed state.
func (h Health) IsDestroyed() bool { return h.destroyed }

// Percent returns the numeric value and true, or 0 and false when destroyed.
func (h Health) Percent() (float64, bool) {
	if h.destroyed {
		return 0, false
	}
	return h.percent, true
}

// Value returns the numeric value, treating destroyed as 0.
func (h Health) Value() float64 {
	if h.destroyed {
		return 0
	}
	return h.percent
}

func (h Health) String() string {
	if h.destroyed {
		return destroyedLabel
	}
	return strconv.FormatFloat(h.percent, 'f', 2, 64) + "%"
}

// MarshalJSON encodes a number, or the string "destroyed".
func (h Health) MarshalJSON() ([]byte, error) {
	if h.destroyed {
		return json.Marshal(destroyedLabel)
	}
	return json.Marshal(h.percent)
}

// UnmarshalJSON accepts a number in [0,100] or the string "destroyed".
func (h *Health) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return h.parseLabel(s)
	}
	var p float64
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	v, err := ParsePercent(p)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// MarshalYAML encodes a number, or the string "destroyed".
func (h Health) MarshalYAML() (interface{}, error) {
	if h.destroyed {
		return destroyedLabel, nil
	}
	return h.percent, nil
}

// UnmarshalYAML accepts a number in [0,100] or the string "destroyed".
func (h *Health) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("health: line %d: expected scalar", node.Line)
	}
	if p, err := strconv.ParseFloat(node.Value, 64); err == nil {
		v, err := ParsePercent(p)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*h = v
		return nil
	}
	return h.parseLabel(node.Value)
}

func (h *Health) parseLabel(s string) error {
	// "wrecked" is what older capture logs wrote for the same state.
	if s == destroyedLabel || s == "wrecked" {
		*h = Destroyed()
		return nil
	}
	return fmt.Errorf("health: unrecognized value %q", s)
}

// Reading is one timestamped health measurement.
type Reading struct {
	Health Health    `json:"health" yaml:"health"`
	Time   time.Time `json:"time" yaml:"time"`
}

// New creates a Reading.
func New(h Health, at time.Time) Reading {
	return Reading{Health: h, Time: at}
}

// Corrected returns a replacement reading with the same timestamp and a
// manually supplied percentage.
func (r Reading) Corrected(p float64) (Reading, error) {
	h, err := ParsePercent(p)
	if err != nil {
		return Reading{}, err
	}
	return Reading{Health: h, Time: r.Time}, nil
}

// History is the sequence of readings for one tracked object.
// Only temporal order matters; use Sorted before relying on order.
type History []Reading

// Sorted returns a copy ordered by timestamp ascending.
func (h History) Sorted() History {
	out := make(History, len(h))
	copy(out, h)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// Usable returns the non-destroyed readings, preserving order.
func (h History) Usable() History {
	out := make(History, 0, len(h))
	for _, r := range h {
		if !r.Health.IsDestroyed() {
			out = append(out, r)
		}
	}
	return out
}

// Latest returns the most recent reading.
func (h History) Latest() (Reading, bool) {
	if len(h) == 0 {
		return Reading{}, false
	}
	latest := h[0]
	for _, r := range h[1:] {
		if r.Time.After(latest.Time) {
			latest = r
		}
	}
	return latest, true
}
