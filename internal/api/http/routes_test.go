package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func newTestApp(p weather.Provider, f timeline.Source) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": true, "message": err.Error()})
		},
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := weather.NewService([]weather.Provider{p}, store.NewCache(time.Minute), logger)
	RegisterRoutes(app, svc, timeline.NewBuilder(), f)
	return app
}

func TestCurrentEndpoint(t *testing.T) {
	temp := 20.0
	p := &stubProvider{reading: weather.Reading{
		Provider:    weather.ProviderOpenMeteo,
		Observation: weather.Observation{Temperature: &temp},
	}}
	app := newTestApp(p, &stubForecast{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?lat=52.52&lon=13.405&units=imperial", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var obs weather.AggregatedObservation
	require.NoError(t, json.Unmarshal(body, &obs))
	assert.Equal(t, weather.UnitsImperial, obs.Units)
	require.NotNil(t, obs.Temperature)
	assert.InDelta(t, 68.0, *obs.Temperature, 1e-9)
}

func TestCurrentEndpointValidation(t *testing.T) {
	app := newTestApp(&stubProvider{}, &stubForecast{})

	for _, target := range []string{
		"/api/v1/weather/current",
		"/api/v1/weather/current?lat=91&lon=0",
		"/api/v1/weather/current?lat=abc&lon=0",
		"/api/v1/weather/current?lat=10&lon=10&units=nautical",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "target %s", target)
	}
}

func TestCurrentEndpointUpstreamFailure(t *testing.T) {
	app := newTestApp(&stubProvider{err: weather.ErrNetwork}, &stubForecast{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?lat=10&lon=10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestCurrentEndpointCredentialFailureIsInternal(t *testing.T) {
	app := newTestApp(&stubProvider{err: weather.ErrInvalidCredentials}, &stubForecast{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?lat=10&lon=10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestTimelineEndpoint(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Minute)
	f := &stubForecast{points: []timeline.Point{
		{Time: now.Add(15 * time.Minute)},
		{Time: now.Add(30 * time.Minute), Precipitation: 0.8, Probability: 75},
	}}
	app := newTestApp(&stubProvider{}, f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/timeline?lat=52.52&lon=13.405", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var tl timeline.Timeline
	require.NoError(t, json.Unmarshal(body, &tl))
	assert.False(t, tl.IsRainingNow)
	require.NotNil(t, tl.RainStart)
	assert.True(t, tl.RainStart.Equal(now.Add(30*time.Minute)))
}

func TestTimelineEndpointUpstreamFailure(t *testing.T) {
	app := newTestApp(&stubProvider{}, &stubForecast{err: errors.New("boom")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/timeline?lat=10&lon=10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
