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

// mpsToKmh converts the current+daily provider's m/s wind values to the
// canonical km/h.
const mpsToKmh = 3.6

// CurrentDailyProvider is the general-purpose current-conditions API: a flat
// current object plus one daily min/max entry, keyed by lat/lon and API key.
// Metric is always requested on the wire; display units are applied at the
// boundary, not here.
type CurrentDailyProvider struct {
	baseURL string
	creds   creds.Store
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewCurrentDailyProvider creates a CurrentDailyProvider reading its API key
// from the credential store.
func NewCurrentDailyProvider(client *http.Client, store creds.Store) *CurrentDailyProvider {
	return &CurrentDailyProvider{
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		creds:   store,
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker(weather.ProviderCurrentDaily),
	}
}

func (p *CurrentDailyProvider) Name() string { return weather.ProviderCurrentDaily }

func (p *CurrentDailyProvider) Eligible() bool {
	_, ok := p.creds.Get(creds.ServiceCurrentDailyKey)
	return ok
}

type currentDailyPayload struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Pressure  *float64 `json:"pressure"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"` // m/s on the metric wire
		Gust  *float64 `json:"gust"`
	} `json:"wind"`
}

func (p *CurrentDailyProvider) Fetch(ctx context.Context, coord weather.Coordinate) (weather.Reading, error) {
	apiKey, ok := p.creds.Get(creds.ServiceCurrentDailyKey)
	if !ok {
		return weather.Reading{}, fmt.Errorf("%w: api key missing", weather.ErrInvalidCredentials)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", coord.Lat))
		values.Set("lon", fmt.Sprintf("%f", coord.Lon))
		values.Set("units", "metric")
		values.Set("appid", apiKey)
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}

	var payload currentDailyPayload
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.Reading{}, err
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	o := weather.Observation{
		Temperature: payload.Main.Temp,
		TempMin:     payload.Main.TempMin,
		TempMax:     payload.Main.TempMax,
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		WindSpeed:   scale(payload.Wind.Speed, mpsToKmh),
		WindGust:    scale(payload.Wind.Gust, mpsToKmh),
		FeelsLike:   payload.Main.FeelsLike,
	}

	return weather.Reading{
		Provider:    weather.ProviderCurrentDaily,
		Observation: o,
		Timestamp:   ts,
	}, nil
}

func scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}
