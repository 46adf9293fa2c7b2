package services

import (
	"context"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	"github.com/k3rn3l808/swift_sim_backend/internal/dto"
)

// RiskSvcFacade scores transfers for fraud/risk and aggregates analytics.
type RiskSvcFacade interface {
	// ScoreTransfer evaluates one transfer snapshot. Deterministic: the same
	// snapshot always produces the same score and factors.
	ScoreTransfer(transfer *domain.Transfer) domain.RiskAssessment

	// AssessTransferByID loads a transfer and scores it.
	AssessTransferByID(ctx context.Context, transferID string) (*domain.RiskAssessment, error)

	// GetAnalyticsSummary aggregates volume and risk statistics.
	GetAnalyticsSummary(ctx context.Context) (*dto.AnalyticsSummaryResponse, error)
}
