// Package timeline turns a short-horizon precipitation forecast series into
// classified time points and rain onset/cessation predictions.
package timeline

import (
	"context"
	"sort"
	"time"
)

// DefaultHorizon is how far ahead the timeline looks.
const DefaultHorizon = 2 * time.Hour

// Empirical rain-detection thresholds carried over from field tuning; change
// only on a product decision.
const (
	rainAmountMm    = 0.1
	rainProbability = 50.0
)

// Intensity is a coarse bucketing of precipitation amount.
type Intensity string

const (
	IntensityNone     Intensity = "none"
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityHeavy    Intensity = "heavy"
)

// Point is one classified precipitation forecast sample.
type Point struct {
	Time          time.Time `json:"time"`
	Precipitation float64   `json:"precipitation"` // mm/hr equivalent
	Probability   float64   `json:"probability"`   // percent, 0-100
}

// IsRaining reports whether this point counts as raining: a measurable
// amount at a likely-enough probability.
func (p Point) IsRaining() bool {
	return p.Precipitation > rainAmountMm && p.Probability >= rainProbability
}

// Intensity buckets the precipitation amount.
func (p Point) Intensity() Intensity {
	switch {
	case p.Precipitation <= 0.1:
		return IntensityNone
	case p.Precipitation <= 0.5:
		return IntensityLight
	case p.Precipitation <= 2.0:
		return IntensityModerate
	default:
		return IntensityHeavy
	}
}

// Timeline is the built precipitation outlook. At most one of RainStart and
// RainEnd is set, matching the mutually exclusive "is it raining now" branch.
type Timeline struct {
	Points       []Point    `json:"points"`
	IsRainingNow bool       `json:"isRainingNow"`
	RainStart    *time.Time `json:"rainStart,omitempty"`
	RainEnd      *time.Time `json:"rainEnd,omitempty"`
	GeneratedAt  time.Time  `json:"generatedAt"`
}

// Source is a forecast feed producing the raw sample series. Providers
// signal an unparsable sample time by leaving it zero; the builder drops
// those rather than failing.
type Source interface {
	Name() string
	Forecast(ctx context.Context, lat, lon float64) ([]Point, error)
}

// Builder constructs timelines from forecast series. Building never fails:
// malformed samples are dropped and a too-short series simply yields no
// transitions.
type Builder struct {
	horizon time.Duration
	now     func() time.Time
}

// NewBuilder creates a Builder with the default 2-hour horizon.
func NewBuilder() *Builder {
	return &Builder{horizon: DefaultHorizon, now: time.Now}
}

// Build classifies the series and detects the next rain transition relative
// to now.
func (b *Builder) Build(samples []Point) Timeline {
	now := b.now()
	cutoff := now.Add(b.horizon)

	points := make([]Point, 0, len(samples))
	for _, s := range samples {
		if s.Time.IsZero() || s.Time.After(cutoff) {
			continue
		}
		points = append(points, s)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	// Enforce strictly increasing times; a duplicate timestamp keeps its
	// first occurrence.
	dedup := points[:0]
	for _, p := range points {
		if len(dedup) > 0 && !p.Time.After(dedup[len(dedup)-1].Time) {
			continue
		}
		dedup = append(dedup, p)
	}
	points = dedup

	tl := Timeline{Points: points, GeneratedAt: now}
	if len(points) == 0 {
		return tl
	}

	tl.IsRainingNow = currentPoint(points, now).IsRaining()

	if !tl.IsRainingNow {
		for _, p := range points {
			if p.Time.After(now) && p.IsRaining() {
				t := p.Time
				tl.RainStart = &t
				break
			}
		}
		return tl
	}

	for i := 0; i+1 < len(points); i++ {
		if points[i].IsRaining() && !points[i+1].IsRaining() && points[i+1].Time.After(now) {
			t := points[i+1].Time
			tl.RainEnd = &t
			break
		}
	}
	return tl
}

// currentPoint picks the sample nearest to now: the first sample at or after
// now, or the literal first sample when the series starts in the past and
// never catches up.
func currentPoint(points []Point, now time.Time) Point {
	for _, p := range points {
		if !p.Time.Before(now) {
			return p
		}
	}
	return points[0]
}
