package rateapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portsrepo "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/repositories"
)

// Client fetches live exchange rates from an ExchangeRate-API style endpoint
// (GET {base_url}/{BASE} returning {"base_code": ..., "rates": {...}}).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a rate API client for the given provider base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

var _ portsrepo.RateProvider = (*Client)(nil)

type latestRatesPayload struct {
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

func (c *Client) FetchLatest(ctx context.Context, baseCurrency string) (*domain.RateQuote, error) {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("rate provider request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate provider fetch for %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate provider returned status %d for %s", resp.StatusCode, base)
	}

	var payload latestRatesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("rate provider decode: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(payload.Rates))
	for code, rate := range payload.Rates {
		rates[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}

	return &domain.RateQuote{
		BaseCurrency: base,
		Rates:        rates,
		Timestamp:    time.Now().UTC(),
		Provider:     "ExchangeRate-API",
	}, nil
}
