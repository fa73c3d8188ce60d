// Package alerts schedules local rain and severe-weather notifications from
// a built precipitation timeline and the current alert set.
package alerts

import (
	"context"
	"time"
)

// Severity ranks a weather alert.
type Severity string

const (
	SeverityInformation Severity = "information"
	SeverityAdvisory    Severity = "advisory"
	SeverityWarning     Severity = "warning"
	SeveritySevere      Severity = "severe"
)

// WeatherAlert is one discrete alert for the tracked location. The alert set
// is rebuilt from provider data on every refresh cycle and replaced
// wholesale, never merged.
type WeatherAlert struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	Effective   time.Time `json:"effective"`
}

// Notification is one scheduled local notification request.
type Notification struct {
	ID     string    `json:"id"`
	FireAt time.Time `json:"fireAt"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
}

// Notifier is the local notification collaborator consumed by the scheduler.
type Notifier interface {
	// Authorized reports whether the user has granted notification
	// permission; scheduling is skipped entirely when false.
	Authorized(ctx context.Context) bool
	Schedule(ctx context.Context, n Notification) error
	// CancelAll removes every pending notification whose ID starts with
	// the given prefix.
	CancelAll(ctx context.Context, idPrefix string) error
}
