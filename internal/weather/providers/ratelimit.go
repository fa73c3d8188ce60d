package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/rainward/rainward/internal/weather"
)

// RateLimitedProvider wraps a weather.Provider with a token-bucket limiter so
// a rapid-refresh loop cannot exhaust an upstream quota. Waiting is bounded
// by the caller's context, so the per-fetch timeout still holds.
type RateLimitedProvider struct {
	provider weather.Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider wraps provider with the given request rate.
// rps may be fractional for slower-than-one-per-second quotas.
func NewRateLimitedProvider(provider weather.Provider, rps float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedProvider) Name() string { return r.provider.Name() }

func (r *RateLimitedProvider) Eligible() bool { return r.provider.Eligible() }

func (r *RateLimitedProvider) Fetch(ctx context.Context, coord weather.Coordinate) (weather.Reading, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return weather.Reading{}, fmt.Errorf("%w: rate limit wait: %v", weather.ErrNetwork, err)
	}
	return r.provider.Fetch(ctx, coord)
}

var _ weather.Provider = (*RateLimitedProvider)(nil)
