// Package scheduler runs the periodic refresh cycle: aggregate current
// conditions, rebuild the precipitation timeline, and reschedule
// notifications.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/rainward/rainward/internal/alerts"
	"github.com/rainward/rainward/internal/location"
	"github.com/rainward/rainward/internal/timeline"
	"github.com/rainward/rainward/internal/weather"
)

// AlertSource produces the per-cycle alert set for a coordinate.
type AlertSource interface {
	Alerts(ctx context.Context, coord weather.Coordinate) ([]alerts.WeatherAlert, error)
}

// Purger is the slice of the cache the loop needs for housekeeping.
type Purger interface {
	Purge() int
}

// Scheduler owns the background refresh job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	interval  time.Duration

	service     *weather.Service
	builder     *timeline.Builder
	forecast    timeline.Source
	alertSource AlertSource
	alertSched  *alerts.Scheduler
	location    location.Provider
	cache       Purger
	logger      *slog.Logger
}

// New creates a Scheduler; Start must be called to begin the loop.
func New(
	interval time.Duration,
	service *weather.Service,
	builder *timeline.Builder,
	forecast timeline.Source,
	alertSource AlertSource,
	alertSched *alerts.Scheduler,
	loc location.Provider,
	cache Purger,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		interval:    interval,
		service:     service,
		builder:     builder,
		forecast:    forecast,
		alertSource: alertSource,
		alertSched:  alertSched,
		location:    loc,
		cache:       cache,
		logger:      logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 10
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce executes one full refresh cycle. Partial failure is tolerated
// throughout: a dead observation refresh does not block the timeline, and a
// dead forecast feed still clears stale notifications.
func (s *Scheduler) RunOnce(ctx context.Context) {
	coord, err := s.location.Current(ctx)
	if err != nil {
		s.logger.Error("refresh skipped, no location", "error", err)
		return
	}

	if _, err := s.service.Refresh(ctx, coord, weather.UnitsMetric); err != nil {
		s.logger.Warn("observation refresh failed", "location", coord.Key(), "error", err)
	}

	samples, err := s.forecast.Forecast(ctx, coord.Lat, coord.Lon)
	if err != nil {
		s.logger.Warn("forecast fetch failed", "location", coord.Key(), "error", err)
		samples = nil
	}
	tl := s.builder.Build(samples)

	alertList, err := s.alertSource.Alerts(ctx, coord)
	if err != nil {
		s.logger.Warn("alert fetch failed", "location", coord.Key(), "error", err)
		alertList = nil
	}

	if err := s.alertSched.Apply(ctx, tl, alertList); err != nil {
		s.logger.Warn("notification scheduling incomplete", "error", err)
	}

	if removed := s.cache.Purge(); removed > 0 {
		s.logger.Debug("purged expired cache entries", "count", removed)
	}

	s.logger.Info("refresh cycle complete",
		"location", coord.Key(),
		"rainingNow", tl.IsRainingNow,
		"alerts", len(alertList))
}
