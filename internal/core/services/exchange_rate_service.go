package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portsrepo "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/repositories"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/dto"
	"github.com/k3rn3l808/swift_sim_backend/internal/middleware"
)

const fallbackProvider = "static-fallback"

// popularBases are the bases the cron refresh keeps warm in the cache.
var popularBases = []string{"USD", "EUR", "GBP"}

// fallbackRates is the last-resort USD-based table used when both the cache
// and the provider are unavailable. Values are indicative only.
var fallbackRates = map[string]string{
	"USD": "1.0",
	"EUR": "0.92",
	"GBP": "0.79",
	"JPY": "149.50",
	"CHF": "0.88",
	"CAD": "1.36",
	"AUD": "1.52",
	"CNY": "7.24",
	"HKD": "7.82",
	"SGD": "1.34",
	"INR": "83.10",
	"AED": "3.67",
	"SAR": "3.75",
	"BRL": "4.97",
	"MXN": "17.15",
	"ZAR": "18.60",
	"SEK": "10.45",
	"NOK": "10.60",
	"DKK": "6.86",
	"PLN": "3.98",
}

// exchangeRateService serves rates cache-aside: cache, then provider, then the
// static fallback table.
type exchangeRateService struct {
	cache    portsrepo.RateCache
	provider portsrepo.RateProvider
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(cache portsrepo.RateCache, provider portsrepo.RateProvider) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{cache: cache, provider: provider}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// fallbackQuote derives a quote for any supported base by cross-rating the
// static USD table.
func fallbackQuote(baseCurrency string) (*domain.RateQuote, error) {
	baseRateStr, ok := fallbackRates[baseCurrency]
	if !ok {
		return nil, fmt.Errorf("unsupported base currency %s: %w", baseCurrency, apperrors.ErrValidation)
	}
	baseRate, err := decimal.NewFromString(baseRateStr)
	if err != nil {
		return nil, fmt.Errorf("bad fallback rate for %s: %w", baseCurrency, err)
	}

	rates := make(map[string]decimal.Decimal, len(fallbackRates))
	for code, s := range fallbackRates {
		r, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("bad fallback rate for %s: %w", code, err)
		}
		rates[code] = r.DivRound(baseRate, 6)
	}

	return &domain.RateQuote{
		BaseCurrency: baseCurrency,
		Rates:        rates,
		Timestamp:    time.Now().UTC(),
		Provider:     fallbackProvider,
	}, nil
}

func (s *exchangeRateService) GetLatestRates(ctx context.Context, baseCurrency string) (*domain.RateQuote, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	base := strings.ToUpper(baseCurrency)

	if _, ok := fallbackRates[base]; !ok {
		return nil, fmt.Errorf("unsupported base currency %s: %w", base, apperrors.ErrValidation)
	}

	if quote, err := s.cache.GetRates(ctx, base); err == nil {
		return quote, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		logger.Warn("Rate cache read failed, falling through to provider", slog.String("error", err.Error()))
	}

	quote, err := s.provider.FetchLatest(ctx, base)
	if err != nil {
		logger.Warn("Rate provider unavailable, serving static fallback rates",
			slog.String("base", base), slog.String("error", err.Error()))
		return fallbackQuote(base)
	}

	if err := s.cache.SetRates(ctx, *quote); err != nil {
		logger.Warn("Failed to cache rates", slog.String("base", base), slog.String("error", err.Error()))
	}
	return quote, nil
}

func (s *exchangeRateService) Convert(ctx context.Context, req dto.ConvertRequest) (*domain.Conversion, error) {
	from := strings.ToUpper(req.FromCurrency)
	to := strings.ToUpper(req.ToCurrency)

	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative: %w", apperrors.ErrValidation)
	}

	quote, err := s.GetLatestRates(ctx, from)
	if err != nil {
		return nil, err
	}
	rate, ok := quote.Rates[to]
	if !ok {
		return nil, fmt.Errorf("unsupported target currency %s: %w", to, apperrors.ErrValidation)
	}

	return &domain.Conversion{
		FromCurrency:    from,
		ToCurrency:      to,
		OriginalAmount:  req.Amount,
		ConvertedAmount: req.Amount.Mul(rate).Round(2),
		ExchangeRate:    rate,
		Timestamp:       time.Now().UTC(),
	}, nil
}

func (s *exchangeRateService) ConvertBulk(ctx context.Context, req dto.BulkConvertRequest) ([]domain.Conversion, error) {
	if len(req.Conversions) > dto.MaxBulkConversions {
		return nil, fmt.Errorf("at most %d conversions per request: %w", dto.MaxBulkConversions, apperrors.ErrValidation)
	}

	out := make([]domain.Conversion, 0, len(req.Conversions))
	for _, c := range req.Conversions {
		conv, err := s.Convert(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("conversion %s->%s: %w", c.FromCurrency, c.ToCurrency, err)
		}
		out = append(out, *conv)
	}
	return out, nil
}

func (s *exchangeRateService) SupportedCurrencies() []string {
	codes := make([]string, 0, len(fallbackRates))
	for code := range fallbackRates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// RefreshPopularBases re-primes the cache for the most requested bases. Cache
// and provider failures are logged and skipped; the next read falls back.
func (s *exchangeRateService) RefreshPopularBases(ctx context.Context) {
	logger := middleware.GetLoggerFromCtx(ctx)

	for _, base := range popularBases {
		quote, err := s.provider.FetchLatest(ctx, base)
		if err != nil {
			logger.Warn("Scheduled rate refresh failed", slog.String("base", base), slog.String("error", err.Error()))
			continue
		}
		if err := s.cache.SetRates(ctx, *quote); err != nil {
			logger.Warn("Scheduled rate cache write failed", slog.String("base", base), slog.String("error", err.Error()))
		}
	}
}
