package weather

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds each individual provider call.
const DefaultFetchTimeout = 15 * time.Second

// ObservationCache is the cache contract the service writes aggregated
// observations to. Implemented by the store package.
type ObservationCache interface {
	Get(key string) (AggregatedObservation, bool)
	Put(key string, obs AggregatedObservation)
}

// Service is the aggregation coordinator: it decides which providers are
// eligible, fans the fetches out concurrently, merges the surviving readings
// field by field, derives the secondary metrics, and maintains the cache.
type Service struct {
	providers []Provider
	cache     ObservationCache
	logger    *slog.Logger

	timeout time.Duration
	now     func() time.Time

	// flight collapses concurrent refreshes of the same location key into
	// a single upstream cycle.
	flight singleflight.Group
}

// NewService creates a Service over the configured providers.
func NewService(providers []Provider, cache ObservationCache, logger *slog.Logger) *Service {
	return &Service{
		providers: providers,
		cache:     cache,
		logger:    logger,
		timeout:   DefaultFetchTimeout,
		now:       time.Now,
	}
}

// Current returns the aggregated observation for a coordinate, serving from
// the cache when a fresh entry exists and refreshing otherwise. The cache
// always holds metric values; conversion happens on the way out.
func (s *Service) Current(ctx context.Context, coord Coordinate, units UnitSystem) (AggregatedObservation, error) {
	if cached, ok := s.cache.Get(coord.Key()); ok {
		return Convert(cached, units), nil
	}
	return s.Refresh(ctx, coord, units)
}

// Refresh runs one full aggregation cycle for a coordinate, bypassing any
// cached entry. Concurrent refreshes for the same key share one cycle.
func (s *Service) Refresh(ctx context.Context, coord Coordinate, units UnitSystem) (AggregatedObservation, error) {
	v, err, _ := s.flight.Do(coord.Key(), func() (interface{}, error) {
		return s.refresh(ctx, coord)
	})
	if err != nil {
		return AggregatedObservation{}, err
	}
	return Convert(v.(AggregatedObservation), units), nil
}

// providerResult keeps "provider errored" distinct from "provider absent";
// both collapse to missing fields for the merge, the distinction only feeds
// the log line.
type providerResult struct {
	provider string
	reading  Reading
	err      error
}

func (s *Service) refresh(ctx context.Context, coord Coordinate) (AggregatedObservation, error) {
	eligible := s.eligible()
	if len(eligible) == 0 {
		return AggregatedObservation{}, fmt.Errorf("no eligible providers: %w", ErrNoData)
	}

	results := make([]providerResult, len(eligible))

	var wg sync.WaitGroup
	for i, p := range eligible {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			r, err := p.Fetch(fetchCtx, coord)
			results[i] = providerResult{provider: p.Name(), reading: r, err: err}
		}(i, p)
	}
	wg.Wait()

	var readings []Reading
	var lastErr error
	for _, res := range results {
		if res.err != nil {
			lastErr = res.err
			s.logger.Warn("provider fetch failed",
				"provider", res.provider,
				"location", coord.Key(),
				"error", res.err)
			continue
		}
		readings = append(readings, res.reading)
	}

	// A sole configured provider has nothing to fall back on; surface its
	// error instead of a generic empty-merge failure.
	if len(readings) == 0 && len(eligible) == 1 && lastErr != nil {
		return AggregatedObservation{}, lastErr
	}

	merged, contributors := MergeReadings(readings)
	agg := Derive(merged, contributors, UnitsMetric, s.now())

	if !agg.HasData() {
		return AggregatedObservation{}, ErrNoData
	}

	s.cache.Put(coord.Key(), agg)
	s.logger.Info("aggregated observation refreshed",
		"location", coord.Key(),
		"providers", contributors,
		"condition", string(agg.Condition))
	return agg, nil
}

// eligible returns the providers participating in this cycle. Keyed
// providers take part whenever their credentials are complete; the open-data
// provider is the fallback and joins only when no keyed provider is eligible.
func (s *Service) eligible() []Provider {
	var keyed, open []Provider
	for _, p := range s.providers {
		if p.Name() == ProviderOpenMeteo {
			open = append(open, p)
			continue
		}
		if p.Eligible() {
			keyed = append(keyed, p)
		}
	}
	if len(keyed) > 0 {
		return keyed
	}
	return open
}
