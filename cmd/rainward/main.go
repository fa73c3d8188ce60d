package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/rainward/rainward/internal/alerts"
	httpapi "github.com/rainward/rainward/internal/api/http"
	"github.com/rainward/rainward/internal/config"
	"github.com/rainward/rainward/internal/creds"
	"github.com/rainward/rainward/internal/location"
	"github.com/rainward/rainward/internal/scheduler"
	"github.com/rainward/rainward/internal/store"
	"github.com/rainward/rainward/internal/timeline"
	"github.com/rainward/rainward/internal/weather"
	"github.com/rainward/rainward/internal/weather/providers"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	credStore := creds.NewMemoryStore(map[string]string{
		creds.ServiceStationAPIKey:   cfg.StationAPIKey,
		creds.ServiceStationID:       cfg.StationID,
		creds.ServiceCurrentDailyKey: cfg.CurrentDailyAPIKey,
	})

	openMeteo := providers.NewOpenMeteoProvider(httpClient)

	provs := []weather.Provider{
		providers.NewRateLimitedProvider(providers.NewStationProvider(httpClient, credStore), cfg.ProviderRPS, 2),
		providers.NewRateLimitedProvider(providers.NewCurrentDailyProvider(httpClient, credStore), cfg.ProviderRPS, 2),
		providers.NewRateLimitedProvider(openMeteo, cfg.ProviderRPS, 2),
	}

	cache := store.NewCache(cfg.CacheTTL)
	service := weather.NewService(provs, cache, log)
	builder := timeline.NewBuilder()

	notifier := alerts.NewMemoryNotifier(cfg.NotificationsAuthorized, log)
	alertSched := alerts.NewScheduler(notifier, log)

	loc, err := buildLocation(cfg)
	if err != nil {
		log.Error("failed to configure location", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(cfg.RefreshInterval, service, builder, openMeteo, openMeteo, alertSched, loc, cache, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start refresh loop", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "rainward",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "rainward",
		})
	})

	httpapi.RegisterRoutes(app, service, builder, openMeteo)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	// First cycle immediately so notifications exist before the first tick.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		sched.RunOnce(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}

func buildLocation(cfg *config.AppConfig) (location.Provider, error) {
	if cfg.HasStaticLocation() {
		return location.NewStatic(*cfg.Latitude, *cfg.Longitude)
	}
	return location.NewGeocoded(cfg.GeocoderAPIKey, cfg.City, cfg.Country), nil
}
