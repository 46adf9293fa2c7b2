package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
)

// TransferFilter narrows list and count queries. Empty fields match all.
type TransferFilter struct {
	Status       string
	TransferType string
}

// StatusAggregate is one row of the per-status breakdown.
type StatusAggregate struct {
	Count       int64
	TotalAmount decimal.Decimal
}

// TransferReader defines read operations for transfer records.
type TransferReader interface {
	// FindTransferByID retrieves a transfer by its ID.
	// Returns apperrors.ErrNotFound when no record exists.
	FindTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error)

	// ListTransfers retrieves transfers matching the filter, newest first.
	ListTransfers(ctx context.Context, filter TransferFilter, limit int) ([]domain.Transfer, error)

	// CountTransfers counts transfers matching the filter.
	CountTransfers(ctx context.Context, filter TransferFilter) (int64, error)

	// AggregateByStatus groups all transfers by status, summing amounts.
	AggregateByStatus(ctx context.Context) (map[domain.TransferStatus]StatusAggregate, error)
}

// TransferWriter defines write operations for transfer records.
type TransferWriter interface {
	// SaveTransfer persists a new transfer record.
	SaveTransfer(ctx context.Context, transfer domain.Transfer) error

	// UpdateTransfer replaces an existing record, guarded by the record's
	// version counter. Returns apperrors.ErrConflict when the stored version
	// no longer matches, apperrors.ErrNotFound when the record is gone.
	UpdateTransfer(ctx context.Context, transfer domain.Transfer) error
}

// TransferRepositoryFacade combines all transfer repository interfaces.
type TransferRepositoryFacade interface {
	TransferReader
	TransferWriter
}
