package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainward/rainward/internal/alerts"
	"github.com/rainward/rainward/internal/location"
	"github.com/rainward/rainward/internal/store"
	"github.com/rainward/rainward/internal/timeline"
	"github.com/rainward/rainward/internal/weather"
)

type stubProvider struct {
	reading weather.Reading
	err     error
}

func (s *stubProvider) Name() string   { return weather.ProviderOpenMeteo }
func (s *stubProvider) Eligible() bool { return true }

func (s *stubProvider) Fetch(ctx context.Context, coord weather.Coordinate) (weather.Reading, error) {
	return s.reading, s.err
}

type stubForecast struct {
	points []timeline.Point
	err    error
}

func (s *stubForecast) Name() string { return "stub" }

func (s *stubForecast) Forecast(ctx context.Context, lat, lon float64) ([]timeline.Point, error) {
	return s.points, s.err
}

type stubAlerts struct {
	alerts []alerts.WeatherAlert
	err    error
}

func (s *stubAlerts) Alerts(ctx context.Context, coord weather.Coordinate) ([]alerts.WeatherAlert, error) {
	return s.alerts, s.err
}

func TestRunOnceFullCycle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	temp := 12.0

	cache := store.NewCache(time.Minute)
	svc := weather.NewService([]weather.Provider{&stubProvider{
		reading: weather.Reading{
			Provider:    weather.ProviderOpenMeteo,
			Observation: weather.Observation{Temperature: &temp},
		},
	}}, cache, logger)

	now := time.Now()
	forecast := &stubForecast{points: []timeline.Point{
		{Time: now.Add(15 * time.Minute)},
		{Time: now.Add(30 * time.Minute), Precipitation: 1.0, Probability: 90},
	}}
	alertSrc := &stubAlerts{alerts: []alerts.WeatherAlert{
		{ID: "a1", Type: "Thunderstorm", Severity: alerts.SeveritySevere, Effective: now.Add(6 * time.Hour)},
	}}

	notifier := alerts.NewMemoryNotifier(true, logger)
	loc, err := location.NewStatic(52.52, 13.405)
	require.NoError(t, err)

	s := New(10*time.Minute, svc, timeline.NewBuilder(), forecast, alertSrc, alerts.NewScheduler(notifier, logger), loc, cache, logger)
	s.RunOnce(context.Background())

	// The observation landed in the cache and both notification families
	// were scheduled.
	_, ok := cache.Get(weather.Coordinate{Lat: 52.52, Lon: 13.405}.Key())
	assert.True(t, ok)
	assert.Len(t, notifier.Pending(), 2)
}

func TestRunOnceForecastFailureStillClearsNotifications(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cache := store.NewCache(time.Minute)
	svc := weather.NewService([]weather.Provider{&stubProvider{err: weather.ErrNetwork}}, cache, logger)

	notifier := alerts.NewMemoryNotifier(true, logger)
	require.NoError(t, notifier.Schedule(context.Background(), alerts.Notification{
		ID:     alerts.RainPrefix + "stale",
		FireAt: time.Now().Add(time.Hour),
	}))

	loc, err := location.NewStatic(52.52, 13.405)
	require.NoError(t, err)

	s := New(10*time.Minute, svc, timeline.NewBuilder(), &stubForecast{err: errors.New("feed down")}, &stubAlerts{}, alerts.NewScheduler(notifier, logger), loc, cache, logger)
	s.RunOnce(context.Background())

	// A dead forecast feed yields an empty timeline, which clears the
	// stale rain notification instead of leaving it armed.
	assert.Empty(t, notifier.Pending())
}
