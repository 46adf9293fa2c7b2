package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is the database row shape for a wire transfer. Stages and
// SwiftLogs are stored as JSONB documents; the repository marshals them.
type Transfer struct {
	TransferID          string          `db:"transfer_id"`
	Date                time.Time       `db:"date"`
	SenderName          string          `db:"sender_name"`
	SenderBIC           string          `db:"sender_bic"`
	ReceiverName        string          `db:"receiver_name"`
	ReceiverBIC         string          `db:"receiver_bic"`
	TransferType        string          `db:"transfer_type"`
	Amount              decimal.Decimal `db:"amount"`
	Currency            string          `db:"currency"`
	Reference           string          `db:"reference"`
	Purpose             string          `db:"purpose"`
	Status              string          `db:"status"`
	CreatedBy           string          `db:"created_by"`
	SwiftLogs           []byte          `db:"swift_logs"`
	CurrentStage        string          `db:"current_stage"`
	CurrentStageIndex   int             `db:"current_stage_index"`
	Location            string          `db:"location"`
	Stages              []byte          `db:"stages"`
	EstimatedCompletion time.Time       `db:"estimated_completion"`
	AutoProgression     bool            `db:"auto_progression"`
	RiskScore           float64         `db:"risk_score"`
	RiskLevel           string          `db:"risk_level"`
	Version             int64           `db:"version"`
}
