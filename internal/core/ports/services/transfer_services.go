package services

import (
	"context"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	"github.com/k3rn3l808/swift_sim_backend/internal/dto"
)

// TransferReaderSvc defines read operations on transfers.
type TransferReaderSvc interface {
	// GetTransferByID retrieves a transfer by ID.
	GetTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error)

	// ListTransfers retrieves transfers matching the optional filters, newest first.
	ListTransfers(ctx context.Context, params dto.ListTransfersParams) ([]domain.Transfer, error)

	// GetTransferStats aggregates counts and amounts across all transfers.
	GetTransferStats(ctx context.Context) (*dto.TransferStatsResponse, error)
}

// TransferWriterSvc defines the mutating state-machine operations. All of
// them require the actor to hold the admin or officer role.
type TransferWriterSvc interface {
	// CreateTransfer validates the request, initializes the nine-stage
	// pipeline and kicks off auto-progression.
	CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, creatorUserID string) (*domain.Transfer, error)

	// AdvanceStage moves a transfer forward by exactly one stage.
	AdvanceStage(ctx context.Context, transferID string, actorUserID string) (*dto.AdvanceStageResponse, error)

	// ApplyAction applies a manual approve/hold/reject decision.
	ApplyAction(ctx context.Context, req dto.TransferActionRequest, actorUserID string) (*dto.ActionResponse, error)

	// ApplyBulkAction applies the same action across several transfers,
	// continuing past per-id not-found errors.
	ApplyBulkAction(ctx context.Context, req dto.BulkTransferActionRequest, actorUserID string) (*dto.BulkActionResponse, error)

	// ToggleAutoProgression enables or disables the background scheduler for
	// one transfer.
	ToggleAutoProgression(ctx context.Context, transferID string, enable bool, actorUserID string) (*dto.ToggleAutoProgressionResponse, error)
}

// TransferAutoAdvancer is the narrow surface the progression scheduler drives.
type TransferAutoAdvancer interface {
	// AutoAdvanceStage advances one stage on behalf of the scheduler. It
	// applies the same stage, status and log transitions as AdvanceStage but
	// carries the system actor tag instead of a user.
	AutoAdvanceStage(ctx context.Context, transferID string) (*domain.Transfer, error)
}

// TransferSvcFacade combines all transfer service interfaces.
type TransferSvcFacade interface {
	TransferReaderSvc
	TransferWriterSvc
	TransferAutoAdvancer
}

// ProgressionScheduler manages the per-transfer auto-progression tasks.
type ProgressionScheduler interface {
	// Start launches (or restarts) the auto-progression task for a transfer.
	Start(transferID string)

	// Stop cancels the task for a transfer, if one is running.
	Stop(transferID string) bool

	// Shutdown cancels every task and waits for them to drain, bounded by ctx.
	Shutdown(ctx context.Context) error
}
