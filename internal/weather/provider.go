package weather

import (
	"context"
)

// Canonical provider names. The order of providerPriority is the merge
// priority: the station provider wins any field it populates, the open-data
// provider participates only when no keyed provider is eligible.
const (
	ProviderStation      = "station"
	ProviderCurrentDaily = "currentdaily"
	ProviderOpenMeteo    = "openmeteo"
)

var providerPriority = []string{ProviderStation, ProviderCurrentDaily, ProviderOpenMeteo}

// priorityRank returns the merge rank for a provider name; unknown providers
// sort last so a misconfigured name can never shadow a known one.
func priorityRank(name string) int {
	for i, p := range providerPriority {
		if p == name {
			return i
		}
	}
	return len(providerPriority)
}

// Provider abstracts one current-conditions weather source.
type Provider interface {
	Name() string

	// Eligible reports whether every credential the provider requires is
	// present and non-empty. Keyless providers are always eligible.
	Eligible() bool

	// Fetch retrieves the provider's current reading. A provider having no
	// opinion on a field is represented by a nil field, never an error;
	// errors are reserved for request construction, transport, and
	// decoding failures.
	Fetch(ctx context.Context, coord Coordinate) (Reading, error)
}
