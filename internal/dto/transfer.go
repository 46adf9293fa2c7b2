package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
)

// CreateTransferRequest carries the immutable creation attributes of a transfer.
type CreateTransferRequest struct {
	SenderName   string          `json:"sender_name" binding:"required"`
	SenderBIC    string          `json:"sender_bic" binding:"required,bic"`
	ReceiverName string          `json:"receiver_name" binding:"required"`
	ReceiverBIC  string          `json:"receiver_bic" binding:"required,bic"`
	TransferType string          `json:"transfer_type" binding:"required,transfertype"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Currency     string          `json:"currency" binding:"required,len=3"`
	Reference    string          `json:"reference" binding:"required"`
	Purpose      string          `json:"purpose" binding:"required"`
}

// ListTransfersParams defines query parameters for listing transfers.
// Status/TransferType accept "all" as a synonym for no filter.
type ListTransfersParams struct {
	Status       string `form:"status"`
	TransferType string `form:"transfer_type"`
	Limit        int    `form:"limit,default=100"`
}

// TransferActionRequest applies a manual decision to one transfer.
type TransferActionRequest struct {
	TransferID string `json:"transfer_id" binding:"required"`
	Action     string `json:"action" binding:"required,oneof=approve hold reject"`
	Notes      string `json:"notes"`
}

// BulkTransferActionRequest applies the same decision to several transfers.
type BulkTransferActionRequest struct {
	TransferIDs []string `json:"transfer_ids" binding:"required,min=1"`
	Action      string   `json:"action" binding:"required,oneof=approve hold reject"`
	Notes       string   `json:"notes"`
}

// ActionResponse reports the outcome of one manual action.
type ActionResponse struct {
	Action     string `json:"action"`
	TransferID string `json:"transfer_id"`
	Status     string `json:"status"` // "success" or "error"
	Message    string `json:"message"`
	ErrorCode  string `json:"error_code,omitempty"`
}

// BulkActionResponse aggregates per-transfer results of a bulk action.
type BulkActionResponse struct {
	Action         string           `json:"action"`
	TotalRequested int              `json:"total_requested"`
	Successful     int              `json:"successful"`
	Failed         int              `json:"failed"`
	Results        []ActionResponse `json:"results"`
	Message        string           `json:"message"`
}

// AdvanceStageResponse reports a single manual stage advancement.
type AdvanceStageResponse struct {
	TransferID    string                `json:"transfer_id"`
	PreviousStage string                `json:"previous_stage"`
	NewStage      string                `json:"new_stage"`
	StageIndex    int                   `json:"current_stage_index"`
	Status        domain.TransferStatus `json:"status"`
}

// ToggleAutoProgressionRequest enables or disables the background scheduler
// for one transfer. The pointer makes an explicit false distinguishable from
// an omitted field.
type ToggleAutoProgressionRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// ToggleAutoProgressionResponse reports the new auto-progression state.
type ToggleAutoProgressionResponse struct {
	TransferID      string `json:"transfer_id"`
	AutoProgression bool   `json:"auto_progression"`
	Status          string `json:"status"`
	Message         string `json:"message"`
}

// TransferStatsResponse is the aggregate view over all transfers.
type TransferStatsResponse struct {
	TotalTransfers  int64            `json:"total_transfers"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	StatusBreakdown map[string]int64 `json:"status_breakdown"`
	Pending         int64            `json:"pending"`
	Completed       int64            `json:"completed"`
	Rejected        int64            `json:"rejected"`
	Held            int64            `json:"held"`
}

// TransferResponse is the API shape of a transfer.
type TransferResponse struct {
	TransferID          string                 `json:"transfer_id"`
	Date                time.Time              `json:"date"`
	SenderName          string                 `json:"sender_name"`
	SenderBIC           string                 `json:"sender_bic"`
	ReceiverName        string                 `json:"receiver_name"`
	ReceiverBIC         string                 `json:"receiver_bic"`
	TransferType        domain.TransferType    `json:"transfer_type"`
	Amount              decimal.Decimal        `json:"amount"`
	Currency            string                 `json:"currency"`
	Reference           string                 `json:"reference"`
	Purpose             string                 `json:"purpose"`
	Status              domain.TransferStatus  `json:"status"`
	CreatedBy           string                 `json:"created_by"`
	SwiftLogs           []domain.SwiftLogEntry `json:"swift_logs"`
	CurrentStage        string                 `json:"current_stage"`
	CurrentStageIndex   int                    `json:"current_stage_index"`
	Location            string                 `json:"location"`
	Stages              []domain.StageProgress `json:"stages"`
	EstimatedCompletion time.Time              `json:"estimated_completion"`
	AutoProgression     bool                   `json:"auto_progression"`
	RiskScore           float64                `json:"risk_score"`
	RiskLevel           string                 `json:"risk_level"`
}

// ToTransferResponse converts a domain transfer to its API shape.
func ToTransferResponse(t *domain.Transfer) TransferResponse {
	return TransferResponse{
		TransferID:          t.TransferID,
		Date:                t.Date,
		SenderName:          t.SenderName,
		SenderBIC:           t.SenderBIC,
		ReceiverName:        t.ReceiverName,
		ReceiverBIC:         t.ReceiverBIC,
		TransferType:        t.TransferType,
		Amount:              t.Amount,
		Currency:            t.Currency,
		Reference:           t.Reference,
		Purpose:             t.Purpose,
		Status:              t.Status,
		CreatedBy:           t.CreatedBy,
		SwiftLogs:           t.SwiftLogs,
		CurrentStage:        t.CurrentStage,
		CurrentStageIndex:   t.CurrentStageIndex,
		Location:            t.Location,
		Stages:              t.Stages,
		EstimatedCompletion: t.EstimatedCompletion,
		AutoProgression:     t.AutoProgression,
		RiskScore:           t.RiskScore,
		RiskLevel:           t.RiskLevel,
	}
}

// ToTransferResponses converts a slice of domain transfers.
func ToTransferResponses(transfers []domain.Transfer) []TransferResponse {
	out := make([]TransferResponse, len(transfers))
	for i := range transfers {
		out[i] = ToTransferResponse(&transfers[i])
	}
	return out
}
