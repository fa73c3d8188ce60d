package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rainward/rainward/internal/timeline"
)

// Notification ID prefixes; each family is cleared and rebuilt as a unit.
const (
	RainPrefix  = "rain."
	AlertPrefix = "alert."
)

const (
	// rainWindow bounds how far ahead a rain transition may be to still
	// warrant a notification.
	rainWindow = 120 * time.Minute

	rainStartLead = 5 * time.Minute
	rainStopDelay = 1 * time.Minute

	// alertWindow and alertLead control severe-weather alert scheduling.
	alertWindow = 24 * time.Hour
	alertLead   = 3 * time.Hour
)

// Scheduler converts timelines and alert sets into scheduled notifications.
// Rescheduling is clear-then-recreate per family, which makes a refresh
// cycle idempotent.
type Scheduler struct {
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewScheduler creates a Scheduler over the given notifier.
func NewScheduler(n Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{notifier: n, logger: logger, now: time.Now}
}

// Apply replaces all rain notifications from the timeline and all alert
// notifications from the alert list. When notifications are not authorized
// it does nothing.
func (s *Scheduler) Apply(ctx context.Context, tl timeline.Timeline, alerts []WeatherAlert) error {
	if !s.notifier.Authorized(ctx) {
		s.logger.Debug("notifications not authorized, skipping scheduling")
		return nil
	}
	return errors.Join(
		s.applyRain(ctx, tl),
		s.applyAlerts(ctx, alerts),
	)
}

func (s *Scheduler) applyRain(ctx context.Context, tl timeline.Timeline) error {
	if err := s.notifier.CancelAll(ctx, RainPrefix); err != nil {
		return fmt.Errorf("cancel rain notifications: %w", err)
	}

	now := s.now()

	if tl.RainStart != nil && tl.RainStart.Sub(now) <= rainWindow {
		fireAt := tl.RainStart.Add(-rainStartLead)
		if fireAt.Before(now) {
			fireAt = now
		}
		n := Notification{
			ID:     RainPrefix + uuid.NewString(),
			FireAt: fireAt,
			Title:  "Rain starting soon",
			Body:   fmt.Sprintf("Rain is expected around %s.", tl.RainStart.Local().Format("15:04")),
		}
		if err := s.notifier.Schedule(ctx, n); err != nil {
			return fmt.Errorf("schedule rain start: %w", err)
		}
		s.logger.Info("scheduled rain start notification", "fireAt", fireAt, "rainStart", *tl.RainStart)
	}

	if tl.RainEnd != nil && tl.RainEnd.Sub(now) <= rainWindow {
		n := Notification{
			ID:     RainPrefix + uuid.NewString(),
			FireAt: now.Add(rainStopDelay),
			Title:  "Rain stopping",
			Body:   fmt.Sprintf("Rain should stop around %s.", tl.RainEnd.Local().Format("15:04")),
		}
		if err := s.notifier.Schedule(ctx, n); err != nil {
			return fmt.Errorf("schedule rain stop: %w", err)
		}
		s.logger.Info("scheduled rain stop notification", "rainEnd", *tl.RainEnd)
	}

	return nil
}

func (s *Scheduler) applyAlerts(ctx context.Context, alerts []WeatherAlert) error {
	if err := s.notifier.CancelAll(ctx, AlertPrefix); err != nil {
		return fmt.Errorf("cancel alert notifications: %w", err)
	}

	now := s.now()
	var errs []error

	for _, a := range alerts {
		if a.Severity == SeverityInformation {
			continue
		}
		if !a.Effective.After(now) || a.Effective.After(now.Add(alertWindow)) {
			continue
		}

		fireAt := a.Effective.Add(-alertLead)
		if fireAt.Before(now) {
			fireAt = now
		}
		n := Notification{
			ID:     AlertPrefix + uuid.NewString(),
			FireAt: fireAt,
			Title:  fmt.Sprintf("%s %s", a.Type, a.Severity),
			Body:   a.Description,
		}
		if err := s.notifier.Schedule(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("schedule alert %s: %w", a.ID, err))
			continue
		}
		s.logger.Info("scheduled weather alert notification",
			"alert", a.ID, "severity", string(a.Severity), "fireAt", fireAt)
	}

	return errors.Join(errs...)
}
