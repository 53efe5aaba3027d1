package decay

import (
	"errors"
	"fmt"
	"time"

	"gauge-tracker/internal/reading"
)

var (
	// ErrInvalidBounds is returned by CycleBounds.Validate.
	ErrInvalidBounds = errors.New("invalid cycle bounds")

	// ErrUndefined is wrapped by every reason ProjectErr gives for not
	// producing a projection.
	ErrUndefined = errors.New("projection undefined")
)

// Projection is the estimated current health and the failure window.
type Projection struct {
	Current  float64
	Earliest time.Time
	Typical  time.Time
	Latest   time.Time

	// RemainingCycles is the number of decay cycles left before failure.
	// Zero for strategies that do not model cycles.
	RemainingCycles float64

	Strategy string
}

// Remaining returns the time left until the earliest failure bound.
func (p Projection) Remaining(now time.Time) time.Duration {
	return p.Earliest.Sub(now)
}

// Strategy turns a usable history and a current health estimate into
// failure bounds. Implementations must return ok=false rather than a
// zero or infinite bound when no usable rate exists.
type Strategy interface {
	Name() string
	Bounds(usable reading.History, current float64, now time.Time) (Projection, bool)
}

// CycleBounds is the range of durations of the recurring event during which
// decay happens.
type CycleBounds struct {
	Min time.Duration
	Avg time.Duration
	Max time.Duration
}

// DefaultCycleBounds returns the observed in-game cycle: 45 to 60 minutes,
// 52.5 on average.
func DefaultCycleBounds() CycleBounds {
	return CycleBounds{
		Min: 45 * time.Minute,
		Avg: 52*time.Minute + 30*time.Second,
		Max: 60 * time.Minute,
	}
}

// Validate requires 0 < Min <= Avg <= Max.
func (b CycleBounds) Validate() error {
	if b.Min <= 0 {
		return fmt.Errorf("%w: min must be positive, got %v", ErrInvalidBounds, b.Min)
	}
	if b.Min > b.Avg || b.Avg > b.Max {
		return fmt.Errorf("%w: need min <= avg <= max, got %v/%v/%v", ErrInvalidBounds, b.Min, b.Avg, b.Max)
	}
	return nil
}

// CycleStrategy models decay as a fixed amount of damage per cycle, where
// cycles recur at a variable interval. The spread of cycle durations gives
// the earliest/typical/latest bounds.
type CycleStrategy struct {
	Cycle CycleBounds
}

// NewCycleStrategy returns a CycleStrategy over b.
func NewCycleStrategy(b CycleBounds) CycleStrategy {
	return CycleStrategy{Cycle: b}
}

func (CycleStrategy) Name() string { return "cycle" }

// Bounds divides total observed damage by the estimated number of elapsed
// cycles, then projects the remaining cycles at min, avg and max duration.
func (s CycleStrategy) Bounds(usable reading.History, current float64, now time.Time) (Projection, bool) {
	if len(usable) < 2 || current <= 0 {
		return Projection{}, false
	}
	first, last := usable[0], usable[len(usable)-1]

	elapsed := last.Time.Sub(first.Time).Hours()
	avg := s.Cycle.Avg.Hours()
	if elapsed <= 0 || avg <= 0 {
		return Projection{}, false
	}
	cycles := elapsed / avg

	damage := first.Health.Value() - last.Health.Value()
	if damage <= 0 {
		return Projection{}, false
	}
	perCycle := damage / cycles
	remaining := current / perCycle

	// Bounds past the time.Duration range are undefined.
	earliest, ok1 := addHours(now, remaining*s.Cycle.Min.Hours())
	typical, ok2 := addHours(now, remaining*avg)
	latest, ok3 := addHours(now, remaining*s.Cycle.Max.Hours())
	if !ok1 || !ok2 || !ok3 {
		return Projection{}, false
	}
	return Projection{
		Current:         current,
		Earliest:        earliest,
		Typical:         typical,
		Latest:          latest,
		RemainingCycles: remaining,
		Strategy:        s.Name(),
	}, true
}

// TrendStrategy projects along the least-squares line through the whole
// history. All three bounds sit at the line's zero crossing.
type TrendStrategy struct{}

func (TrendStrategy) Name() string { return "trend" }

// Bounds uses the regression zero crossing, clamped to now if it already
// lies in the past.
func (s TrendStrategy) Bounds(usable reading.History, current float64, now time.Time) (Projection, bool) {
	if current <= 0 {
		return Projection{}, false
	}
	fit, ok := Trend(usable)
	if !ok {
		return Projection{}, false
	}
	zero, ok := fit.ZeroAt()
	if !ok {
		return Projection{}, false
	}
	if zero.Before(now) {
		zero = now
	}
	return Projection{
		Current:  current,
		Earliest: zero,
		Typical:  zero,
		Latest:   zero,
		Strategy: s.Name(),
	}, true
}

// ParseStrategy returns the named strategy. The cycle strategy uses b.
func ParseStrategy(name string, b CycleBounds) (Strategy, error) {
	switch name {
	case "cycle", "":
		return NewCycleStrategy(b), nil
	case "trend":
		return TrendStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown projection strategy %q", name)
	}
}

// Projector estimates failure windows. It is stateless apart from the
// injectable clock.
type Projector struct {
	Strategy Strategy
	Now      func() time.Time // injectable for deterministic tests
}

// NewProjector returns a Projector using s and the wall clock.
func NewProjector(s Strategy) *Projector {
	return &Projector{Strategy: s, Now: time.Now}
}

// Project estimates the current health of h and when it reaches zero.
//
// ok is false (undefined) when the latest reading is destroyed, when fewer
// than two non-destroyed readings exist, when health did not strictly drop
// between the two most recent readings, when the current estimate has
// already reached zero, or when the strategy finds no usable rate.
func (p *Projector) Project(h reading.History) (Projection, bool) {
	proj, err := p.ProjectErr(h)
	return proj, err == nil
}

// ProjectErr is Project with the reason for an undefined projection.
// Every returned error wraps ErrUndefined.
func (p *Projector) ProjectErr(h reading.History) (Projection, error) {
	sorted := h.Sorted()
	latest, ok := sorted.Latest()
	if !ok {
		return Projection{}, fmt.Errorf("%w: no readings", ErrUndefined)
	}
	if latest.Health.IsDestroyed() {
		return Projection{}, fmt.Errorf("%w: destroyed", ErrUndefined)
	}

	usable := sorted.Usable()
	if len(usable) < 2 {
		return Projection{}, fmt.Errorf("%w: need two readings, have %d", ErrUndefined, len(usable))
	}
	if _, ok := Instantaneous(usable); !ok {
		return Projection{}, fmt.Errorf("%w: health not decreasing", ErrUndefined)
	}

	now := p.Now()
	current, _ := CurrentEstimate(usable, now)
	if current <= 0 {
		return Projection{}, fmt.Errorf("%w: estimated health already zero", ErrUndefined)
	}
	proj, ok := p.Strategy.Bounds(usable, current, now)
	if !ok {
		return Projection{}, fmt.Errorf("%w: %s strategy found no failure time within range", ErrUndefined, p.Strategy.Name())
	}
	return proj, nil
}
