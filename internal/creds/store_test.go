package creds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreSeedDropsEmpty(t *testing.T) {
	s := NewMemoryStore(map[string]string{
		ServiceStationAPIKey: "k1",
		ServiceStationID:     "",
	})

	v, ok := s.Get(ServiceStationAPIKey)
	assert.True(t, ok)
	assert.Equal(t, "k1", v)

	_, ok = s.Get(ServiceStationID)
	assert.False(t, ok)
}

func TestMemoryStoreSetGetDelete(t *testing.T) {
	s := NewMemoryStore(nil)

	assert.False(t, s.Set(ServiceCurrentDailyKey, ""))
	assert.True(t, s.Set(ServiceCurrentDailyKey, "secret"))

	v, ok := s.Get(ServiceCurrentDailyKey)
	assert.True(t, ok)
	assert.Equal(t, "secret", v)

	assert.True(t, s.Delete(ServiceCurrentDailyKey))
	assert.False(t, s.Delete(ServiceCurrentDailyKey))

	_, ok = s.Get(ServiceCurrentDailyKey)
	assert.False(t, ok)
}
