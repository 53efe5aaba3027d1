// Package decay estimates current health and failure times from reading
// histories, and ranks tracked objects by urgency.
package decay

import (
	"math"
	"time"

	"gauge-tracker/internal/reading"

	"gonum.org/v1/gonum/stat"
)

// Rate is health percent lost per hour. Only positive rates are meaningful.
type Rate float64

// PerHour returns the rate as a plain float.
func (r Rate) PerHour() float64 { return float64(r) }

// Instantaneous computes the decay rate between the two most recent
// non-destroyed readings. ok is false unless health strictly decreased over
// a strictly positive interval.
func Instantaneous(h reading.History) (Rate, bool) {
	usable := h.Sorted().Usable()
	if len(usable) < 2 {
		return 0, false
	}
	prev, last := usable[len(usable)-2], usable[len(usable)-1]

	hours := last.Time.Sub(prev.Time).Hours()
	lost := prev.Health.Value() - last.Health.Value()
	if hours <= 0 || lost <= 0 {
		return 0, false
	}
	return Rate(lost / hours), true
}

// CurrentEstimate extrapolates the latest non-destroyed reading to now using
// the instantaneous rate, floored at zero. Without a rate it is the latest
// health unchanged. ok is false when there is no usable reading at all.
func CurrentEstimate(h reading.History, now time.Time) (float64, bool) {
	usable := h.Sorted().Usable()
	if len(usable) == 0 {
		return 0, false
	}
	last := usable[len(usable)-1]
	health := last.Health.Value()

	rate, ok := Instantaneous(usable)
	if !ok {
		return health, true
	}
	since := now.Sub(last.Time).Hours()
	if since < 0 {
		since = 0
	}
	return math.Max(0, health-rate.PerHour()*since), true
}

// TrendFit is an ordinary least-squares line of health against hours since
// Origin.
type TrendFit struct {
	Origin    time.Time
	Intercept float64 // health at Origin
	Slope     float64 // percent per hour, negative for decay
	Points    int
}

// Rate returns the decay rate implied by the fitted slope.
func (f TrendFit) Rate() Rate {
	return Rate(-f.Slope)
}

// At evaluates the fitted line at t.
func (f TrendFit) At(t time.Time) float64 {
	return f.Intercept + f.Slope*t.Sub(f.Origin).Hours()
}

// ZeroAt returns where the fitted line crosses zero health. ok is false
// when the crossing is further from Origin than a time.Duration can hold.
func (f TrendFit) ZeroAt() (time.Time, bool) {
	return addHours(f.Origin, -f.Intercept/f.Slope)
}

// addHours returns t shifted by a fractional number of hours. ok is false
// for NaN or an offset outside the time.Duration range (about 292 years).
func addHours(t time.Time, hours float64) (time.Time, bool) {
	ns := hours * float64(time.Hour)
	if math.IsNaN(ns) || ns >= float64(math.MaxInt64) || ns <= float64(math.MinInt64) {
		return time.Time{}, false
	}
	return t.Add(time.Duration(ns)), true
}

// Trend fits a line through every non-destroyed reading. ok is false with
// fewer than two readings, zero time spread, or a non-negative slope.
func Trend(h reading.History) (TrendFit, bool) {
	usable := h.Sorted().Usable()
	if len(usable) < 2 {
		return TrendFit{}, false
	}

	origin := usable[0].Time
	xs := make([]float64, len(usable))
	ys := make([]float64, len(usable))
	for i, r := range usable {
		xs[i] = r.Time.Sub(origin).Hours()
		ys[i] = r.Health.Value()
	}
	if xs[len(xs)-1] <= 0 {
		return TrendFit{}, false
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(beta) || beta >= 0 {
		return TrendFit{}, false
	}
	return TrendFit{Origin: origin, Intercept: alpha, Slope: beta, Points: len(usable)}, true
}
