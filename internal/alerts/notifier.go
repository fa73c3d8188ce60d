package alerts

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// MemoryNotifier is an in-process Notifier. It stands in for the platform
// notification service at the interface boundary: pending requests are held
// in memory and logged when scheduled.
type MemoryNotifier struct {
	mu         sync.Mutex
	pending    map[string]Notification
	authorized bool
	logger     *slog.Logger
}

// NewMemoryNotifier creates a MemoryNotifier.
func NewMemoryNotifier(authorized bool, logger *slog.Logger) *MemoryNotifier {
	return &MemoryNotifier{
		pending:    make(map[string]Notification),
		authorized: authorized,
		logger:     logger,
	}
}

func (m *MemoryNotifier) Authorized(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authorized
}

// SetAuthorized flips the capability flag.
func (m *MemoryNotifier) SetAuthorized(v bool) {
	m.mu.Lock()
	m.authorized = v
	m.mu.Unlock()
}

func (m *MemoryNotifier) Schedule(ctx context.Context, n Notification) error {
	m.mu.Lock()
	m.pending[n.ID] = n
	m.mu.Unlock()

	m.logger.Info("notification scheduled",
		"id", n.ID, "fireAt", n.FireAt, "title", n.Title)
	return nil
}

func (m *MemoryNotifier) CancelAll(ctx context.Context, idPrefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.pending {
		if strings.HasPrefix(id, idPrefix) {
			delete(m.pending, id)
		}
	}
	return nil
}

// Pending returns the scheduled notifications ordered by fire time.
func (m *MemoryNotifier) Pending() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Notification, 0, len(m.pending))
	for _, n := range m.pending {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}
