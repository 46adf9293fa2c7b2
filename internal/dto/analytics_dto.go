package dto

import "github.com/shopspring/decimal"

// AnalyticsSummaryResponse aggregates volume and risk statistics for the
// back-office dashboard.
type AnalyticsSummaryResponse struct {
	TotalTransfers       int64            `json:"total_transfers"`
	TotalVolume          decimal.Decimal  `json:"total_volume"`
	AvgTransferSize      decimal.Decimal  `json:"avg_transfer_size"`
	StatusBreakdown      map[string]int64 `json:"status_breakdown"`
	RiskDistribution     map[string]int64 `json:"risk_distribution"`
	HighRiskTransfers    int64            `json:"high_risk_transfers"`
	CurrencyDistribution map[string]int64 `json:"currency_distribution"`
}
