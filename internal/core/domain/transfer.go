package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the coarse lifecycle status of a transfer. It is derived
// from the stage index via StatusForStage, except for the terminal manual
// outcomes rejected and held which freeze progression wherever it stands.
type TransferStatus string

const (
	TransferStatusPending    TransferStatus = "pending"
	TransferStatusProcessing TransferStatus = "processing"
	TransferStatusInTransit  TransferStatus = "in_transit"
	TransferStatusCompleted  TransferStatus = "completed"
	TransferStatusRejected   TransferStatus = "rejected"
	TransferStatusHeld       TransferStatus = "held"
)

// IsTerminal reports whether no further stage advancement may occur.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusRejected || s == TransferStatusHeld
}

// TransferType is the wire message family of a transfer.
type TransferType string

const (
	TransferTypeM0      TransferType = "M0"
	TransferTypeM1      TransferType = "M1"
	TransferTypeSwiftMT TransferType = "SWIFT-MT"
	TransferTypeSwiftMX TransferType = "SWIFT-MX"
)

// TransferAction is a manual back-office decision applied to a transfer.
type TransferAction string

const (
	ActionApprove TransferAction = "approve"
	ActionHold    TransferAction = "hold"
	ActionReject  TransferAction = "reject"
)

// LogLevel classifies a SWIFT terminal log entry.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelSuccess LogLevel = "SUCCESS"
	LogLevelWarning LogLevel = "WARNING"
)

// SwiftLogEntry is one line of the user-facing SWIFT terminal view.
type SwiftLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Level     LogLevel  `json:"level"`
}

// StageStatus is the per-stage completion marker.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusCompleted StageStatus = "completed"
)

// StageProgress tracks one pipeline stage of one transfer. The catalog fields
// are copied in at creation time so a persisted transfer is self-describing.
type StageProgress struct {
	StageName   string          `json:"stage_name"`
	StageCode   string          `json:"stage_code"`
	Location    string          `json:"location"`
	Timestamp   *time.Time      `json:"timestamp,omitempty"` // set when the stage completes
	Status      StageStatus     `json:"status"`
	Description string          `json:"description"`
	Logs        []SwiftLogEntry `json:"logs"`
}

// Transfer is the central entity: a simulated international wire transfer
// moving through the fixed nine-stage pipeline.
//
// Invariants: CurrentStageIndex is monotonically non-decreasing and always in
// [0, StageCount()-1]; SwiftLogs is append-only.
type Transfer struct {
	TransferID   string          `json:"transfer_id"`
	Date         time.Time       `json:"date"`
	SenderName   string          `json:"sender_name"`
	SenderBIC    string          `json:"sender_bic"`
	ReceiverName string          `json:"receiver_name"`
	ReceiverBIC  string          `json:"receiver_bic"`
	TransferType TransferType    `json:"transfer_type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Reference    string          `json:"reference"`
	Purpose      string          `json:"purpose"`
	Status       TransferStatus  `json:"status"`
	CreatedBy    string          `json:"created_by"`

	SwiftLogs         []SwiftLogEntry `json:"swift_logs"`
	CurrentStage      string          `json:"current_stage"`
	CurrentStageIndex int             `json:"current_stage_index"`
	Location          string          `json:"location"`
	Stages            []StageProgress `json:"stages"`

	EstimatedCompletion time.Time `json:"estimated_completion"`

	// AutoProgression gates the background scheduler: it is checked on every
	// wake, so disabling it actually stops auto-advancement.
	AutoProgression bool `json:"auto_progression"`

	RiskScore float64 `json:"risk_score"`
	RiskLevel string  `json:"risk_level"`

	// Version supports optimistic concurrency on the backing record.
	Version int64 `json:"-"`
}

// CurrentStageDefinition resolves the catalog entry for the transfer's
// current stage index.
func (t *Transfer) CurrentStageDefinition() (StageDefinition, bool) {
	return StageAt(t.CurrentStageIndex)
}

// AtFinalStage reports whether the transfer sits on the terminal stage.
func (t *Transfer) AtFinalStage() bool {
	return t.CurrentStageIndex >= FinalStageIndex()
}

// InitStageProgress builds the nine StageProgress entries for a new transfer:
// stage 0 completed with its logs generated immediately, the rest pending.
func InitStageProgress(t *Transfer, now time.Time) []StageProgress {
	stages := make([]StageProgress, 0, StageCount())
	for i, def := range Stages() {
		sp := StageProgress{
			StageName:   def.Name,
			StageCode:   def.Code,
			Location:    def.Location,
			Status:      StageStatusPending,
			Description: def.Description,
			Logs:        []SwiftLogEntry{},
		}
		if i == 0 {
			ts := now
			sp.Timestamp = &ts
			sp.Status = StageStatusCompleted
			sp.Logs = BuildStageLogs(def, t, now)
		}
		stages = append(stages, sp)
	}
	return stages
}

// FlattenStageLogs concatenates, in pipeline order, each completed stage's
// log entries. The full terminal view equals this plus any appended action
// entries; it is used to seed SwiftLogs at creation and by the re-derivation
// checks in tests.
func FlattenStageLogs(stages []StageProgress) []SwiftLogEntry {
	var out []SwiftLogEntry
	for _, sp := range stages {
		if sp.Status != StageStatusCompleted {
			continue
		}
		out = append(out, sp.Logs...)
	}
	return out
}
