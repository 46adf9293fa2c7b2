package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portsrepo "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/repositories"
)

// latestRatesTTL keeps live rates fresh enough for the simulation without
// hammering the upstream provider.
const latestRatesTTL = 5 * time.Minute

// RateCache is a Redis-backed cache for exchange rate quotes.
type RateCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRateCache creates a rate cache using the given Redis client.
func NewRateCache(client redis.UniversalClient, prefix string) *RateCache {
	trimmed := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		trimmed = "swiftsim:rates"
	}
	return &RateCache{client: client, prefix: trimmed}
}

var _ portsrepo.RateCache = (*RateCache)(nil)

func (c *RateCache) key(baseCurrency string) string {
	return fmt.Sprintf("%s:%s", c.prefix, strings.ToUpper(baseCurrency))
}

func (c *RateCache) GetRates(ctx context.Context, baseCurrency string) (*domain.RateQuote, error) {
	raw, err := c.client.Get(ctx, c.key(baseCurrency)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("rate cache get: %w", err)
	}

	var quote domain.RateQuote
	if err := json.Unmarshal([]byte(raw), &quote); err != nil {
		return nil, fmt.Errorf("rate cache unmarshal: %w", err)
	}
	return &quote, nil
}

func (c *RateCache) SetRates(ctx context.Context, quote domain.RateQuote) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("rate cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.key(quote.BaseCurrency), payload, latestRatesTTL).Err(); err != nil {
		return fmt.Errorf("rate cache set: %w", err)
	}
	return nil
}
