package weather

import (
	"fmt"
	"time"
)

// Condition is a coarse, derived weather condition label. It is a heuristic
// classification computed from the merged observation, not a mapping of any
// provider's own condition taxonomy.
type Condition string

const (
	ConditionDefault Condition = "default"
	ConditionSunny   Condition = "sunny"
	ConditionSnowy   Condition = "snowy"
	ConditionWindy   Condition = "windy"
	ConditionRainy   Condition = "rainy"
)

// UnitSystem selects the units used at the presentation boundary.
// All internal computation and all provider wire traffic is metric.
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
	// UnitsUK is a display-only variant of imperial.
	UnitsUK UnitSystem = "uk"
)

// ParseUnitSystem normalizes a user-supplied unit string. Empty input
// defaults to metric.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch UnitSystem(s) {
	case UnitsMetric, UnitsImperial, UnitsUK:
		return UnitSystem(s), nil
	case "":
		return UnitsMetric, nil
	}
	return "", fmt.Errorf("unknown unit system %q", s)
}

// imperial reports whether the system displays imperial quantities.
func (u UnitSystem) imperial() bool {
	return u == UnitsImperial || u == UnitsUK
}

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is inside the WGS84 envelope.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Key returns the canonical cache key for this coordinate, rounded so that
// nearby refreshes share an entry.
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.2f:%.2f", c.Lat, c.Lon)
}

// Observation is one provider's raw reading. Every field is optional:
// providers never populate all of them, and absence is meaningful, not an
// error. Units are always metric (degC, percent, hPa, km/h, W/m2).
type Observation struct {
	Temperature    *float64 `json:"temperature,omitempty"`
	TempMin        *float64 `json:"tempMin,omitempty"`
	TempMax        *float64 `json:"tempMax,omitempty"`
	Humidity       *float64 `json:"humidity,omitempty"`
	Pressure       *float64 `json:"pressure,omitempty"`
	WindSpeed      *float64 `json:"windSpeed,omitempty"`
	WindGust       *float64 `json:"windGust,omitempty"`
	UVIndex        *float64 `json:"uvIndex,omitempty"`
	SolarRadiation *float64 `json:"solarRadiation,omitempty"`

	// FeelsLike is a provider-supplied apparent temperature, used only as a
	// fallback when the inputs for our own derivation are incomplete.
	FeelsLike *float64 `json:"feelsLike,omitempty"`
}

// Reading pairs a provider's observation with its identity for merging.
type Reading struct {
	Provider    string      `json:"provider"`
	Observation Observation `json:"observation"`
	Timestamp   time.Time   `json:"timestamp"`
}

// AggregatedObservation is the fully merged view of one refresh cycle: the
// sparse physical fields chosen per-field from the contributing providers,
// plus the derived metrics. It is immutable after construction; unit
// conversion produces a new value.
type AggregatedObservation struct {
	Observation

	DewPoint  *float64  `json:"dewPoint,omitempty"`
	Condition Condition `json:"condition"`

	Units     UnitSystem `json:"units"`
	CreatedAt time.Time  `json:"createdAt"`

	// Providers that contributed at least one field, in priority order.
	Providers []string `json:"providers,omitempty"`
}

// HasData reports whether at least one physical field is populated. An
// aggregation where this is false is an error condition, never a valid
// empty result.
func (o AggregatedObservation) HasData() bool {
	for _, f := range mergeFields {
		if f.get(&o.Observation) != nil {
			return true
		}
	}
	return false
}

func ptr(v float64) *float64 { return &v }

// deref returns the value or 0 when absent. The zero fallback is load-bearing
// for condition classification: a missing input never trips a branch.
func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
