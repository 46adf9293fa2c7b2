package services

import (
	"context"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
)

// TransferEventPublisher fans transfer lifecycle events out to the message
// broker. Implementations must be safe to call from the scheduler goroutines;
// a nil-safe no-op implementation is used when no broker is configured.
type TransferEventPublisher interface {
	// PublishTransferCreated announces a freshly created transfer.
	PublishTransferCreated(ctx context.Context, transfer *domain.Transfer)

	// PublishStageAdvanced announces a stage transition, manual or automatic.
	PublishStageAdvanced(ctx context.Context, transfer *domain.Transfer, previousStage string, automatic bool)

	// PublishActionApplied announces a manual approve/hold/reject decision.
	PublishActionApplied(ctx context.Context, transfer *domain.Transfer, action domain.TransferAction, actorUserID string)
}
