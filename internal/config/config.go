// Package config loads application configuration from the environment.
// Loading sequence: .env via godotenv (non-fatal if absent), envconfig
// struct tags with defaults, then validation.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig is the full runtime configuration.
type AppConfig struct {
	Port string `envconfig:"PORT" default:"8080"`

	// RefreshInterval controls how often the background loop re-aggregates
	// and rebuilds the timeline.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"10m"`

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	// CacheTTL bounds how long an aggregated observation is served without
	// a refresh.
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"300s"`

	// Units is the display unit system: metric, imperial or uk.
	Units string `envconfig:"UNITS" default:"metric" validate:"oneof=metric imperial uk"`

	// Tracked location: either a fixed coordinate, or a city/country pair
	// resolved through the geocoder.
	Latitude  *float64 `envconfig:"LATITUDE" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `envconfig:"LONGITUDE" validate:"omitempty,gte=-180,lte=180"`
	City      string   `envconfig:"LOCATION_CITY"`
	Country   string   `envconfig:"LOCATION_COUNTRY"`

	// GeocoderAPIKey is required only when the location is given as a city.
	GeocoderAPIKey string `envconfig:"GEOCODER_API_KEY"`

	// Provider credentials; absence simply makes a provider ineligible.
	StationAPIKey      string `envconfig:"STATION_API_KEY"`
	StationID          string `envconfig:"STATION_ID"`
	CurrentDailyAPIKey string `envconfig:"CURRENTDAILY_API_KEY"`

	// ProviderRPS caps outbound request rate per provider.
	ProviderRPS float64 `envconfig:"PROVIDER_RPS" default:"1" validate:"gt=0"`

	// NotificationsAuthorized is the capability flag the alert scheduler is
	// gated on.
	NotificationsAuthorized bool `envconfig:"NOTIFICATIONS_AUTHORIZED" default:"true"`
}

// HasStaticLocation reports whether a fixed coordinate was configured.
func (c *AppConfig) HasStaticLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Load reads and validates the configuration.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: no .env file loaded: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if !cfg.HasStaticLocation() && cfg.City == "" {
		return nil, fmt.Errorf("no location configured: set LATITUDE/LONGITUDE or LOCATION_CITY")
	}
	if !cfg.HasStaticLocation() && cfg.GeocoderAPIKey == "" {
		return nil, fmt.Errorf("LOCATION_CITY requires GEOCODER_API_KEY")
	}

	return &cfg, nil
}
