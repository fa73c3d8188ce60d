package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainward/rainward/internal/weather"
)

func TestCacheTTL(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	c := NewCache(0) // default 300 s
	c.now = func() time.Time { return now }

	obs := weather.AggregatedObservation{Units: weather.UnitsMetric, CreatedAt: now}
	c.Put("52.52:13.41", obs)

	// Still alive just inside the TTL.
	now = now.Add(299 * time.Second)
	_, ok := c.Get("52.52:13.41")
	assert.True(t, ok)

	// Expired just past it.
	now = now.Add(2 * time.Second)
	_, ok = c.Get("52.52:13.41")
	assert.False(t, ok)
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	c := NewCache(time.Minute)
	_, ok := c.Get("nowhere")
	assert.False(t, ok)
}

func TestCachePutReplaces(t *testing.T) {
	c := NewCache(time.Minute)

	first := weather.AggregatedObservation{Condition: weather.ConditionRainy}
	second := weather.AggregatedObservation{Condition: weather.ConditionSunny}
	c.Put("k", first)
	c.Put("k", second)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, weather.ConditionSunny, got.Condition)
}

func TestCachePurge(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Put("old", weather.AggregatedObservation{})
	now = now.Add(2 * time.Minute)
	c.Put("fresh", weather.AggregatedObservation{})

	assert.Equal(t, 1, c.Purge())

	_, ok := c.Get("fresh")
	assert.True(t, ok)
	_, ok = c.Get("old")
	assert.False(t, ok)
}
