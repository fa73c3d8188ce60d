package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rainward/rainward/internal/creds"
	"github.com/rainward/rainward/internal/weather"
)

// StationProvider reads a personal weather station's current observation.
// It is the highest-priority source in the merge: when configured, its
// hyper-local readings win every field they populate. Metric units are
// always requested on the wire regardless of the display unit system.
type StationProvider struct {
	baseURL string
	creds   creds.Store
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewStationProvider creates a StationProvider reading its API key and
// station id from the credential store.
func NewStationProvider(client *http.Client, store creds.Store) *StationProvider {
	return &StationProvider{
		baseURL: "https://api.weather.com/v2/pws/observations/current",
		creds:   store,
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker(weather.ProviderStation),
	}
}

func (p *StationProvider) Name() string { return weather.ProviderStation }

// Eligible requires both the API key and the station id.
func (p *StationProvider) Eligible() bool {
	_, okKey := p.creds.Get(creds.ServiceStationAPIKey)
	_, okID := p.creds.Get(creds.ServiceStationID)
	return okKey && okID
}

// stationPayload mirrors the wire shape: a one-element observations array
// with top-level percent/index fields and a nested metric block. Pointer
// fields keep "station does not report this" distinguishable from zero.
type stationPayload struct {
	Observations []struct {
		ObsTimeUTC     string   `json:"obsTimeUtc"`
		Humidity       *float64 `json:"humidity"`
		UV             *float64 `json:"uv"`
		SolarRadiation *float64 `json:"solarRadiation"`
		Metric         struct {
			Temp      *float64 `json:"temp"`
			HeatIndex *float64 `json:"heatIndex"`
			WindChill *float64 `json:"windChill"`
			WindSpeed *float64 `json:"windSpeed"`
			WindGust  *float64 `json:"windGust"`
			Pressure  *float64 `json:"pressure"`
		} `json:"metric"`
	} `json:"observations"`
}

func (p *StationProvider) Fetch(ctx context.Context, coord weather.Coordinate) (weather.Reading, error) {
	apiKey, okKey := p.creds.Get(creds.ServiceStationAPIKey)
	stationID, okID := p.creds.Get(creds.ServiceStationID)
	if !okKey || !okID {
		return weather.Reading{}, fmt.Errorf("%w: station api key or station id missing", weather.ErrInvalidCredentials)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("stationId", stationID)
		values.Set("format", "json")
		values.Set("units", "m")
		values.Set("apiKey", apiKey)
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}

	var payload stationPayload
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.Reading{}, err
	}
	if len(payload.Observations) == 0 {
		return weather.Reading{}, fmt.Errorf("%w: empty observations array", weather.ErrDecode)
	}
	obs := payload.Observations[0]

	ts, err := time.Parse(time.RFC3339, obs.ObsTimeUTC)
	if err != nil {
		ts = time.Now().UTC()
	}

	o := weather.Observation{
		Temperature:    obs.Metric.Temp,
		Humidity:       obs.Humidity,
		Pressure:       obs.Metric.Pressure,
		WindSpeed:      obs.Metric.WindSpeed,
		WindGust:       obs.Metric.WindGust,
		UVIndex:        obs.UV,
		SolarRadiation: obs.SolarRadiation,
		FeelsLike:      stationFeelsLike(obs.Metric.Temp, obs.Metric.HeatIndex, obs.Metric.WindChill),
	}

	return weather.Reading{
		Provider:    weather.ProviderStation,
		Observation: o,
		Timestamp:   ts.UTC(),
	}, nil
}

// stationFeelsLike picks between the station's heat index and wind chill.
// The station reports both around a 16.7 C crossover, matching its own
// display convention.
func stationFeelsLike(temp, heatIndex, windChill *float64) *float64 {
	if temp == nil {
		return nil
	}
	if *temp > 16.7 {
		return heatIndex
	}
	return windChill
}
