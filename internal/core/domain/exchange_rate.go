package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateQuote is a snapshot of exchange rates for one base currency.
type RateQuote struct {
	BaseCurrency string                     `json:"base_currency"`
	Rates        map[string]decimal.Decimal `json:"rates"`
	Timestamp    time.Time                  `json:"timestamp"`
	Provider     string                     `json:"provider"`
}

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	FromCurrency    string          `json:"from_currency"`
	ToCurrency      string          `json:"to_currency"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	Timestamp       time.Time       `json:"timestamp"`
}
