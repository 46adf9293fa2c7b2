package redis

import (
	"context"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
)

// NoopCache is the cache used when no redis instance is configured. Every
// read misses and writes are discarded, so callers always hit the provider.
type NoopCache struct{}

// NewNoopCache creates a cache that never stores anything.
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (*NoopCache) GetRates(ctx context.Context, baseCurrency string) (*domain.RateQuote, error) {
	return nil, apperrors.ErrNotFound
}

func (*NoopCache) SetRates(ctx context.Context, quote domain.RateQuote) error {
	return nil
}
