package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portsrepo "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/repositories"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/dto"
	"github.com/k3rn3l808/swift_sim_backend/internal/middleware"
)

// systemActor tags log entries written by the background scheduler rather
// than a human operator.
const systemActor = "SYSTEM"

// TransferService implements the transfer state machine on top of the
// repository, the risk scorer and the event publisher. The progression
// scheduler is attached after construction because the two depend on each
// other.
type TransferService struct {
	transferRepo portsrepo.TransferRepositoryFacade
	userRepo     portsrepo.UserRepositoryFacade
	riskSvc      portssvc.RiskSvcFacade
	publisher    portssvc.TransferEventPublisher
	scheduler    portssvc.ProgressionScheduler
}

// NewTransferService creates a new transfer service. Call SetScheduler before
// serving traffic.
func NewTransferService(
	transferRepo portsrepo.TransferRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
	riskSvc portssvc.RiskSvcFacade,
	publisher portssvc.TransferEventPublisher,
) *TransferService {
	return &TransferService{
		transferRepo: transferRepo,
		userRepo:     userRepo,
		riskSvc:      riskSvc,
		publisher:    publisher,
	}
}

var _ portssvc.TransferSvcFacade = (*TransferService)(nil)

// SetScheduler attaches the progression scheduler. The scheduler itself is
// built on top of this service, so the wiring happens in two phases.
func (s *TransferService) SetScheduler(sched portssvc.ProgressionScheduler) {
	s.scheduler = sched
}

// requireOperator loads the acting user and verifies a transfer-managing role.
func (s *TransferService) requireOperator(ctx context.Context, actorUserID string) (*domain.User, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, fmt.Errorf("failed to load acting user: %w", err)
	}
	if !actor.Role.CanManageTransfers() {
		return nil, fmt.Errorf("%w: transfer management requires admin or officer role", apperrors.ErrForbidden)
	}
	return actor, nil
}

func (s *TransferService) CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, creatorUserID string) (*domain.Transfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	actor, err := s.requireOperator(ctx, creatorUserID)
	if err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive: %w", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	first, _ := domain.StageAt(0)

	transfer := domain.Transfer{
		TransferID:   uuid.NewString(),
		Date:         now,
		SenderName:   req.SenderName,
		SenderBIC:    req.SenderBIC,
		ReceiverName: req.ReceiverName,
		ReceiverBIC:  req.ReceiverBIC,
		TransferType: domain.TransferType(req.TransferType),
		Amount:       req.Amount,
		Currency:     req.Currency,
		Reference:    req.Reference,
		Purpose:      req.Purpose,
		Status:       domain.StatusForStage(first.Code),
		CreatedBy:    actor.UserID,

		CurrentStage:      first.Name,
		CurrentStageIndex: 0,
		Location:          first.Location,

		EstimatedCompletion: now.Add(domain.TotalPipelineDuration()),
		AutoProgression:     true,
	}
	transfer.Stages = domain.InitStageProgress(&transfer, now)
	transfer.SwiftLogs = domain.FlattenStageLogs(transfer.Stages)

	assessment := s.riskSvc.ScoreTransfer(&transfer)
	transfer.RiskScore = assessment.Score
	transfer.RiskLevel = string(assessment.Level)

	if err := s.transferRepo.SaveTransfer(ctx, transfer); err != nil {
		logger.Error("Failed to save transfer", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	s.publisher.PublishTransferCreated(ctx, &transfer)
	if s.scheduler != nil {
		s.scheduler.Start(transfer.TransferID)
	}

	logger.Info("Transfer created",
		slog.String("transfer_id", transfer.TransferID),
		slog.String("transfer_type", string(transfer.TransferType)),
		slog.String("risk_level", transfer.RiskLevel))
	return &transfer, nil
}

func (s *TransferService) GetTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error) {
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer %s: %w", transferID, err)
	}
	return transfer, nil
}

func (s *TransferService) ListTransfers(ctx context.Context, params dto.ListTransfersParams) ([]domain.Transfer, error) {
	filter := portsrepo.TransferFilter{
		Status:       params.Status,
		TransferType: params.TransferType,
	}
	// "all" is the UI's synonym for no filter.
	if filter.Status == "all" {
		filter.Status = ""
	}
	if filter.TransferType == "all" {
		filter.TransferType = ""
	}

	transfers, err := s.transferRepo.ListTransfers(ctx, filter, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

func (s *TransferService) GetTransferStats(ctx context.Context) (*dto.TransferStatsResponse, error) {
	aggregates, err := s.transferRepo.AggregateByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transfer stats: %w", err)
	}

	stats := dto.TransferStatsResponse{
		StatusBreakdown: make(map[string]int64, len(aggregates)),
	}
	for status, agg := range aggregates {
		stats.TotalTransfers += agg.Count
		stats.TotalAmount = stats.TotalAmount.Add(agg.TotalAmount)
		stats.StatusBreakdown[string(status)] = agg.Count

		switch status {
		case domain.TransferStatusPending:
			stats.Pending = agg.Count
		case domain.TransferStatusCompleted:
			stats.Completed = agg.Count
		case domain.TransferStatusRejected:
			stats.Rejected = agg.Count
		case domain.TransferStatusHeld:
			stats.Held = agg.Count
		}
	}
	return &stats, nil
}

// advanceOneStage mutates the transfer in place: it moves the index forward by
// one, completes the new stage with its generated logs, re-derives the status
// and appends the audit entry. The caller persists the result.
func advanceOneStage(t *domain.Transfer, now time.Time, auditMessage string) (previous domain.StageDefinition, current domain.StageDefinition) {
	previous, _ = t.CurrentStageDefinition()

	t.CurrentStageIndex++
	current, _ = domain.StageAt(t.CurrentStageIndex)

	ts := now
	sp := &t.Stages[t.CurrentStageIndex]
	sp.Timestamp = &ts
	sp.Status = domain.StageStatusCompleted
	sp.Logs = domain.BuildStageLogs(current, t, now)

	t.CurrentStage = current.Name
	t.Location = current.Location
	t.Status = domain.StatusForStage(current.Code)

	t.SwiftLogs = append(t.SwiftLogs, sp.Logs...)
	t.SwiftLogs = append(t.SwiftLogs, domain.SwiftLogEntry{
		Timestamp: now,
		Message:   auditMessage,
		Level:     domain.LogLevelInfo,
	})
	return previous, current
}

func (s *TransferService) AdvanceStage(ctx context.Context, transferID string, actorUserID string) (*dto.AdvanceStageResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	actor, err := s.requireOperator(ctx, actorUserID)
	if err != nil {
		return nil, err
	}

	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfer for advancement: %w", err)
	}
	if transfer.Status.IsTerminal() || transfer.AtFinalStage() {
		return nil, fmt.Errorf("transfer %s: %w", transferID, apperrors.ErrTerminalStage)
	}

	now := time.Now().UTC()
	next, _ := domain.StageAt(transfer.CurrentStageIndex + 1)
	previous, current := advanceOneStage(transfer, now,
		fmt.Sprintf("STAGE ADVANCED: %s by %s", next.Name, actor.Username))

	if err := s.transferRepo.UpdateTransfer(ctx, *transfer); err != nil {
		logger.Error("Failed to persist stage advancement", slog.String("transfer_id", transferID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to advance transfer: %w", err)
	}

	s.publisher.PublishStageAdvanced(ctx, transfer, previous.Code, false)
	if transfer.Status.IsTerminal() && s.scheduler != nil {
		s.scheduler.Stop(transferID)
	}

	logger.Info("Stage advanced",
		slog.String("transfer_id", transferID),
		slog.String("from", previous.Code),
		slog.String("to", current.Code))

	return &dto.AdvanceStageResponse{
		TransferID:    transferID,
		PreviousStage: previous.Name,
		NewStage:      current.Name,
		StageIndex:    transfer.CurrentStageIndex,
		Status:        transfer.Status,
	}, nil
}

func (s *TransferService) AutoAdvanceStage(ctx context.Context, transferID string) (*domain.Transfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfer for auto advancement: %w", err)
	}
	if transfer.Status.IsTerminal() || transfer.AtFinalStage() {
		return nil, fmt.Errorf("transfer %s: %w", transferID, apperrors.ErrTerminalStage)
	}

	now := time.Now().UTC()
	next, _ := domain.StageAt(transfer.CurrentStageIndex + 1)
	previous, _ := advanceOneStage(transfer, now,
		fmt.Sprintf("AUTO STAGE ADVANCED: %s by %s", next.Name, systemActor))

	if err := s.transferRepo.UpdateTransfer(ctx, *transfer); err != nil {
		return nil, fmt.Errorf("failed to persist auto advancement: %w", err)
	}

	s.publisher.PublishStageAdvanced(ctx, transfer, previous.Code, true)

	logger.Debug("Stage auto-advanced",
		slog.String("transfer_id", transferID),
		slog.String("stage", transfer.CurrentStage),
		slog.Int("index", transfer.CurrentStageIndex))
	return transfer, nil
}

func (s *TransferService) ApplyAction(ctx context.Context, req dto.TransferActionRequest, actorUserID string) (*dto.ActionResponse, error) {
	actor, err := s.requireOperator(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	return s.applyActionAs(ctx, req, actor)
}

// applyActionAs performs the action for an already-authorized actor. Bulk
// processing reuses it to avoid reloading the actor per transfer.
func (s *TransferService) applyActionAs(ctx context.Context, req dto.TransferActionRequest, actor *domain.User) (*dto.ActionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transfer, err := s.transferRepo.FindTransferByID(ctx, req.TransferID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfer for action: %w", err)
	}
	if transfer.Status.IsTerminal() {
		return nil, fmt.Errorf("transfer %s already %s: %w", req.TransferID, transfer.Status, apperrors.ErrTerminalStage)
	}

	now := time.Now().UTC()
	action := domain.TransferAction(req.Action)
	var message string

	switch action {
	case domain.ActionApprove:
		final, _ := domain.StageAt(domain.FinalStageIndex())
		for i := transfer.CurrentStageIndex + 1; i < domain.StageCount(); i++ {
			ts := now
			transfer.Stages[i].Timestamp = &ts
			transfer.Stages[i].Status = domain.StageStatusCompleted
		}
		transfer.CurrentStageIndex = domain.FinalStageIndex()
		transfer.CurrentStage = final.Name
		transfer.Location = final.Location
		transfer.Status = domain.TransferStatusCompleted
		transfer.SwiftLogs = append(transfer.SwiftLogs,
			domain.SwiftLogEntry{Timestamp: now, Message: fmt.Sprintf("TRANSFER APPROVED by %s: fast-tracked to completion", actor.Username), Level: domain.LogLevelSuccess},
			domain.SwiftLogEntry{Timestamp: now, Message: "PIPELINE: Processing -> In Transit -> Completed", Level: domain.LogLevelInfo},
		)
		message = "Transfer approved and completed"

	case domain.ActionHold:
		transfer.Status = domain.TransferStatusHeld
		transfer.SwiftLogs = append(transfer.SwiftLogs,
			domain.SwiftLogEntry{Timestamp: now, Message: withNotes(fmt.Sprintf("TRANSFER PLACED ON HOLD by %s", actor.Username), req.Notes), Level: domain.LogLevelWarning})
		message = "Transfer placed on hold"

	case domain.ActionReject:
		transfer.Status = domain.TransferStatusRejected
		transfer.SwiftLogs = append(transfer.SwiftLogs,
			domain.SwiftLogEntry{Timestamp: now, Message: withNotes(fmt.Sprintf("TRANSFER REJECTED by %s", actor.Username), req.Notes), Level: domain.LogLevelWarning})
		message = "Transfer rejected"

	default:
		return nil, fmt.Errorf("%w: unknown action %q", apperrors.ErrValidation, req.Action)
	}

	if err := s.transferRepo.UpdateTransfer(ctx, *transfer); err != nil {
		logger.Error("Failed to persist action", slog.String("transfer_id", req.TransferID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to apply action: %w", err)
	}

	// Every manual decision yields a terminal status, so the background task
	// has nothing further to do.
	if s.scheduler != nil {
		s.scheduler.Stop(req.TransferID)
	}
	s.publisher.PublishActionApplied(ctx, transfer, action, actor.UserID)

	logger.Info("Action applied",
		slog.String("transfer_id", req.TransferID),
		slog.String("action", req.Action),
		slog.String("status", string(transfer.Status)))

	return &dto.ActionResponse{
		Action:     req.Action,
		TransferID: req.TransferID,
		Status:     "success",
		Message:    message,
	}, nil
}

func (s *TransferService) ApplyBulkAction(ctx context.Context, req dto.BulkTransferActionRequest, actorUserID string) (*dto.BulkActionResponse, error) {
	actor, err := s.requireOperator(ctx, actorUserID)
	if err != nil {
		return nil, err
	}

	resp := dto.BulkActionResponse{
		Action:         req.Action,
		TotalRequested: len(req.TransferIDs),
		Results:        make([]dto.ActionResponse, 0, len(req.TransferIDs)),
	}

	for _, id := range req.TransferIDs {
		single := dto.TransferActionRequest{TransferID: id, Action: req.Action, Notes: req.Notes}
		result, err := s.applyActionAs(ctx, single, actor)
		if err != nil {
			resp.Failed++
			resp.Results = append(resp.Results, dto.ActionResponse{
				Action:     req.Action,
				TransferID: id,
				Status:     "error",
				Message:    err.Error(),
				ErrorCode:  errorCodeFor(err),
			})
			continue
		}
		resp.Successful++
		resp.Results = append(resp.Results, *result)
	}

	resp.Message = fmt.Sprintf("%s applied to %d of %d transfers", req.Action, resp.Successful, resp.TotalRequested)
	return &resp, nil
}

func (s *TransferService) ToggleAutoProgression(ctx context.Context, transferID string, enable bool, actorUserID string) (*dto.ToggleAutoProgressionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	actor, err := s.requireOperator(ctx, actorUserID)
	if err != nil {
		return nil, err
	}

	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfer for toggle: %w", err)
	}

	now := time.Now().UTC()
	transfer.AutoProgression = enable

	verb := "DISABLED"
	if enable {
		verb = "ENABLED"
	}
	transfer.SwiftLogs = append(transfer.SwiftLogs, domain.SwiftLogEntry{
		Timestamp: now,
		Message:   fmt.Sprintf("AUTO-PROGRESSION %s by %s", verb, actor.Username),
		Level:     domain.LogLevelInfo,
	})

	if err := s.transferRepo.UpdateTransfer(ctx, *transfer); err != nil {
		logger.Error("Failed to persist auto-progression toggle", slog.String("transfer_id", transferID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to toggle auto-progression: %w", err)
	}

	if s.scheduler != nil {
		if enable && !transfer.Status.IsTerminal() {
			s.scheduler.Start(transferID)
		} else if !enable {
			s.scheduler.Stop(transferID)
		}
	}

	message := "Auto-progression disabled"
	if enable {
		message = "Auto-progression enabled"
	}
	logger.Info("Auto-progression toggled", slog.String("transfer_id", transferID), slog.Bool("enabled", enable))

	return &dto.ToggleAutoProgressionResponse{
		TransferID:      transferID,
		AutoProgression: enable,
		Status:          "success",
		Message:         message,
	}, nil
}

func withNotes(message, notes string) string {
	if notes == "" {
		return message
	}
	return message + " - " + notes
}

// errorCodeFor maps service errors to the stable codes surfaced in bulk
// results.
func errorCodeFor(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, apperrors.ErrTerminalStage):
		return "TERMINAL_STAGE"
	case errors.Is(err, apperrors.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, apperrors.ErrValidation):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}
