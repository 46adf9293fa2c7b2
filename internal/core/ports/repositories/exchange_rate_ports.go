package repositories

import (
	"context"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
)

// RateCache is the cache-aside store consulted before hitting the external
// rate provider. Implementations set their own TTL policy.
type RateCache interface {
	// GetRates returns the cached quote for a base currency, or
	// apperrors.ErrNotFound on a cache miss.
	GetRates(ctx context.Context, baseCurrency string) (*domain.RateQuote, error)

	// SetRates caches a quote for its base currency.
	SetRates(ctx context.Context, quote domain.RateQuote) error
}

// RateProvider fetches live exchange rates from an external API.
type RateProvider interface {
	// FetchLatest retrieves the latest rates for a base currency.
	FetchLatest(ctx context.Context, baseCurrency string) (*domain.RateQuote, error)
}
