package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rainward/rainward/internal/alerts"
	"github.com/rainward/rainward/internal/timeline"
	"github.com/rainward/rainward/internal/weather"
)

// OpenMeteoProvider is the open-data source. It needs no credentials and
// plays three roles: the fallback current-conditions provider, the forecast
// feed behind the precipitation timeline, and the source the per-cycle alert
// set is synthesized from.
type OpenMeteoProvider struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

// NewOpenMeteoProvider creates an OpenMeteoProvider.
func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker(weather.ProviderOpenMeteo),
		now:     time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string { return weather.ProviderOpenMeteo }

// Eligible is always true; the API is keyless.
func (p *OpenMeteoProvider) Eligible() bool { return true }

func (p *OpenMeteoProvider) get(ctx context.Context, values url.Values, payload interface{}) error {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	return decodeJSON(resp, payload)
}

func baseValues(lat, lon float64) url.Values {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("timezone", "UTC")
	values.Set("wind_speed_unit", "kmh")
	return values
}

// parseTime handles the API's ISO8601 minute-resolution timestamps. A zero
// result marks the sample as unparsable; the timeline builder drops those.
func parseTime(s string) time.Time {
	if ts, err := time.ParseInLocation("2006-01-02T15:04", s, time.UTC); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC()
	}
	return time.Time{}
}

type openMeteoCurrentPayload struct {
	Current struct {
		Time             string   `json:"time"`
		Temperature      *float64 `json:"temperature_2m"`
		RelativeHumidity *float64 `json:"relative_humidity_2m"`
		ApparentTemp     *float64 `json:"apparent_temperature"`
		SurfacePressure  *float64 `json:"surface_pressure"`
		WindSpeed        *float64 `json:"wind_speed_10m"`
		WindGusts        *float64 `json:"wind_gusts_10m"`
		UVIndex          *float64 `json:"uv_index"`
	} `json:"current"`
	Daily struct {
		TempMin []float64 `json:"temperature_2m_min"`
		TempMax []float64 `json:"temperature_2m_max"`
	} `json:"daily"`
}

// Fetch retrieves current conditions plus today's min/max.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, coord weather.Coordinate) (weather.Reading, error) {
	values := baseValues(coord.Lat, coord.Lon)
	values.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,surface_pressure,wind_speed_10m,wind_gusts_10m,uv_index")
	values.Set("daily", "temperature_2m_min,temperature_2m_max")
	values.Set("forecast_days", "1")

	var payload openMeteoCurrentPayload
	if err := p.get(ctx, values, &payload); err != nil {
		return weather.Reading{}, err
	}

	ts := parseTime(payload.Current.Time)
	if ts.IsZero() {
		ts = p.now().UTC()
	}

	o := weather.Observation{
		Temperature: payload.Current.Temperature,
		Humidity:    payload.Current.RelativeHumidity,
		Pressure:    payload.Current.SurfacePressure,
		WindSpeed:   payload.Current.WindSpeed,
		WindGust:    payload.Current.WindGusts,
		UVIndex:     payload.Current.UVIndex,
		FeelsLike:   payload.Current.ApparentTemp,
	}
	if len(payload.Daily.TempMin) > 0 {
		o.TempMin = &payload.Daily.TempMin[0]
	}
	if len(payload.Daily.TempMax) > 0 {
		o.TempMax = &payload.Daily.TempMax[0]
	}

	return weather.Reading{
		Provider:    weather.ProviderOpenMeteo,
		Observation: o,
		Timestamp:   ts,
	}, nil
}

type openMeteoForecastPayload struct {
	Minutely struct {
		Time          []string  `json:"time"`
		Precipitation []float64 `json:"precipitation"`
		Probability   []float64 `json:"precipitation_probability"`
	} `json:"minutely_15"`
	Hourly struct {
		Time          []string  `json:"time"`
		Precipitation []float64 `json:"precipitation"`
		Probability   []float64 `json:"precipitation_probability"`
	} `json:"hourly"`
}

// Forecast returns the precipitation sample series for the timeline builder,
// preferring the 15-minute block and falling back to hourly data where the
// fine-grained feed has no coverage. Implements timeline.Source.
func (p *OpenMeteoProvider) Forecast(ctx context.Context, lat, lon float64) ([]timeline.Point, error) {
	values := baseValues(lat, lon)
	values.Set("minutely_15", "precipitation,precipitation_probability")
	values.Set("hourly", "precipitation,precipitation_probability")
	values.Set("forecast_days", "1")

	var payload openMeteoForecastPayload
	if err := p.get(ctx, values, &payload); err != nil {
		return nil, err
	}

	points := toPoints(payload.Minutely.Time, payload.Minutely.Precipitation, payload.Minutely.Probability)
	if len(points) == 0 {
		points = toPoints(payload.Hourly.Time, payload.Hourly.Precipitation, payload.Hourly.Probability)
	}
	return points, nil
}

// toPoints zips the parallel wire arrays into samples. A missing probability
// array means the feed is amount-only; those samples default to full
// probability so the amount threshold alone decides.
func toPoints(times []string, amounts, probabilities []float64) []timeline.Point {
	points := make([]timeline.Point, 0, len(times))
	for i, t := range times {
		if i >= len(amounts) {
			break
		}
		prob := 100.0
		if i < len(probabilities) {
			prob = probabilities[i]
		}
		points = append(points, timeline.Point{
			Time:          parseTime(t),
			Precipitation: amounts[i],
			Probability:   prob,
		})
	}
	return points
}

type openMeteoAlertPayload struct {
	Hourly struct {
		Time        []string `json:"time"`
		WeatherCode []int    `json:"weather_code"`
	} `json:"hourly"`
}

// Alerts synthesizes the per-cycle alert set from the next day of hourly
// weather codes: the first upcoming hour of each hazardous code family
// becomes one alert. The set is rebuilt from scratch every refresh.
func (p *OpenMeteoProvider) Alerts(ctx context.Context, coord weather.Coordinate) ([]alerts.WeatherAlert, error) {
	values := baseValues(coord.Lat, coord.Lon)
	values.Set("hourly", "weather_code")
	values.Set("forecast_days", "2")

	var payload openMeteoAlertPayload
	if err := p.get(ctx, values, &payload); err != nil {
		return nil, err
	}

	now := p.now().UTC()
	seen := make(map[string]bool)
	var out []alerts.WeatherAlert

	for i, t := range payload.Hourly.Time {
		if i >= len(payload.Hourly.WeatherCode) {
			break
		}
		ts := parseTime(t)
		if ts.IsZero() || !ts.After(now) {
			continue
		}

		label, severity, ok := classifyWeatherCode(payload.Hourly.WeatherCode[i])
		if !ok || seen[label] {
			continue
		}
		seen[label] = true

		out = append(out, alerts.WeatherAlert{
			ID:          fmt.Sprintf("openmeteo-%s-%d", label, ts.Unix()),
			Type:        label,
			Severity:    severity,
			Description: fmt.Sprintf("%s conditions expected from %s", label, ts.Format(time.RFC3339)),
			Effective:   ts,
		})
	}
	return out, nil
}

// classifyWeatherCode maps WMO weather codes to alert families.
func classifyWeatherCode(code int) (string, alerts.Severity, bool) {
	switch {
	case code >= 95:
		return "Thunderstorm", alerts.SeveritySevere, true
	case code == 65 || code == 67 || code == 82:
		return "Heavy rain", alerts.SeverityWarning, true
	case code == 75 || code == 86:
		return "Heavy snow", alerts.SeverityWarning, true
	case code == 56 || code == 57 || code == 66:
		return "Freezing precipitation", alerts.SeverityWarning, true
	case code == 45 || code == 48:
		return "Fog", alerts.SeverityAdvisory, true
	}
	return "", "", false
}
