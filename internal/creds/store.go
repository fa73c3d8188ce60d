// Package creds provides the credential store consumed by the provider
// clients. The core only reads secrets; writing and deleting exist for the
// surrounding application (settings flows live outside this module).
package creds

import "sync"

// Service names under which provider secrets are stored.
const (
	ServiceStationAPIKey   = "station.apikey"
	ServiceStationID       = "station.stationid"
	ServiceCurrentDailyKey = "currentdaily.apikey"
)

// Store is a string secret store keyed by service name.
type Store interface {
	// Get returns the secret for a service and whether it is present and
	// non-empty.
	Get(service string) (string, bool)
	Set(service, secret string) bool
	Delete(service string) bool
}

// MemoryStore is a concurrency-safe in-memory Store, typically seeded from
// the environment at startup.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemoryStore creates a MemoryStore seeded with the given secrets.
// Empty seed values are dropped so absence stays observable.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	s := &MemoryStore{secrets: make(map[string]string, len(seed))}
	for k, v := range seed {
		if v != "" {
			s.secrets[k] = v
		}
	}
	return s
}

func (s *MemoryStore) Get(service string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.secrets[service]
	return v, ok && v != ""
}

func (s *MemoryStore) Set(service, secret string) bool {
	if secret == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[service] = secret
	return true
}

func (s *MemoryStore) Delete(service string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.secrets[service]; !ok {
		return false
	}
	delete(s.secrets, service)
	return true
}
