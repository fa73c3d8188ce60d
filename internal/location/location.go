// Package location supplies the best-effort current coordinate consumed by
// the refresh loop. Two sources exist: a fixed configured coordinate and a
// geocoded city lookup.
package location

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/rainward/rainward/internal/weather"
)

// Provider yields the coordinate to aggregate weather for. The result is
// best-effort and may be stale.
type Provider interface {
	Current(ctx context.Context) (weather.Coordinate, error)
}

// Static always returns one configured coordinate.
type Static struct {
	coord weather.Coordinate
}

// NewStatic validates and wraps a fixed coordinate.
func NewStatic(lat, lon float64) (*Static, error) {
	c := weather.Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return nil, fmt.Errorf("coordinate out of range: %.4f, %.4f", lat, lon)
	}
	return &Static{coord: c}, nil
}

func (s *Static) Current(ctx context.Context) (weather.Coordinate, error) {
	return s.coord, nil
}

// Geocoded resolves a configured city/country to a coordinate once and
// serves the cached result afterwards; a tracked city does not move.
type Geocoded struct {
	address geocoder.Address

	mu     sync.Mutex
	cached *weather.Coordinate
}

// NewGeocoded creates a Geocoded provider. The API key is the geocoding
// service key, not a weather provider credential.
func NewGeocoded(apiKey, city, country string) *Geocoded {
	geocoder.ApiKey = apiKey
	return &Geocoded{
		address: geocoder.Address{City: city, Country: country},
	}
}

func (g *Geocoded) Current(ctx context.Context) (weather.Coordinate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cached != nil {
		return *g.cached, nil
	}

	loc, err := geocoder.Geocoding(g.address)
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("geocode %s, %s: %w", g.address.City, g.address.Country, err)
	}

	c := weather.Coordinate{Lat: loc.Latitude, Lon: loc.Longitude}
	if !c.Valid() {
		return weather.Coordinate{}, fmt.Errorf("geocoder returned invalid coordinate for %s, %s", g.address.City, g.address.Country)
	}
	g.cached = &c
	return c, nil
}
