package services

import (
	"context"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	"github.com/k3rn3l808/swift_sim_backend/internal/dto"
)

// ExchangeRateSvcFacade provides cached exchange rates and conversions.
type ExchangeRateSvcFacade interface {
	// GetLatestRates returns the live (or cached, or fallback) rates for a
	// base currency.
	GetLatestRates(ctx context.Context, baseCurrency string) (*domain.RateQuote, error)

	// Convert converts an amount between two currencies.
	Convert(ctx context.Context, req dto.ConvertRequest) (*domain.Conversion, error)

	// ConvertBulk converts up to dto.MaxBulkConversions amounts in one call.
	ConvertBulk(ctx context.Context, req dto.BulkConvertRequest) ([]domain.Conversion, error)

	// SupportedCurrencies lists the currency codes the simulation supports.
	SupportedCurrencies() []string

	// RefreshPopularBases re-primes the cache for commonly requested bases.
	// Invoked periodically by the cron scheduler.
	RefreshPopularBases(ctx context.Context)
}
