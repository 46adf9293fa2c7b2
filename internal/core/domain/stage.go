package domain

import "time"

// Stage codes for the nine-step transfer pipeline, in pipeline order.
const (
	StageInitiated    = "INIT"
	StageValidation   = "VAL"
	StageCompliance   = "AML"
	StageAuthorization = "AUTH"
	StageProcessing   = "PROC"
	StageNetwork      = "NET"
	StageIntermediary = "INT"
	StageSettlement   = "SETT"
	StageCompleted    = "COMP"
)

// StageDefinition describes one fixed step of the transfer pipeline.
// Delay is how long a transfer dwells on the stage before auto-progression
// moves it along; the terminal stage has no delay.
type StageDefinition struct {
	Code        string
	Name        string
	Location    string
	Description string
	Delay       time.Duration
}

// stageCatalog is the fixed nine-stage pipeline. Order matters: the index of a
// definition in this slice is the stage index carried by every transfer.
var stageCatalog = []StageDefinition{
	{Code: StageInitiated, Name: "Initiated", Location: "sending_bank", Description: "Transfer instruction received and queued", Delay: 2 * time.Second},
	{Code: StageValidation, Name: "Validation", Location: "sending_bank", Description: "BIC codes and message format verified", Delay: 15 * time.Second},
	{Code: StageCompliance, Name: "Compliance Check", Location: "sending_bank", Description: "AML and sanctions screening", Delay: 30 * time.Second},
	{Code: StageAuthorization, Name: "Authorization", Location: "sending_bank", Description: "Awaiting officer authorization", Delay: 45 * time.Second},
	{Code: StageProcessing, Name: "Processing", Location: "clearing_house", Description: "Payment instruction processed and funds earmarked", Delay: 20 * time.Second},
	{Code: StageNetwork, Name: "Network Transmission", Location: "swift_network", Description: "Message transmitted over the SWIFT network", Delay: 25 * time.Second},
	{Code: StageIntermediary, Name: "Intermediary Bank", Location: "intermediary_bank", Description: "Routed through correspondent banking chain", Delay: 35 * time.Second},
	{Code: StageSettlement, Name: "Final Settlement", Location: "receiving_bank", Description: "Funds settled at the receiving institution", Delay: 40 * time.Second},
	{Code: StageCompleted, Name: "Completed", Location: "receiving_bank", Description: "Beneficiary credited, transfer complete", Delay: 0},
}

// Stages returns the ordered stage catalog. Callers must not mutate the result.
func Stages() []StageDefinition {
	return stageCatalog
}

// StageCount is the number of pipeline stages.
func StageCount() int {
	return len(stageCatalog)
}

// FinalStageIndex is the index of the terminal pipeline stage.
func FinalStageIndex() int {
	return len(stageCatalog) - 1
}

// StageAt returns the definition at the given pipeline index.
// It returns false when the index is out of range.
func StageAt(index int) (StageDefinition, bool) {
	if index < 0 || index >= len(stageCatalog) {
		return StageDefinition{}, false
	}
	return stageCatalog[index], true
}

// TotalPipelineDuration sums every per-stage delay. Used to compute the
// estimated completion timestamp at transfer creation.
func TotalPipelineDuration() time.Duration {
	var total time.Duration
	for _, s := range stageCatalog {
		total += s.Delay
	}
	return total
}

// StatusForStage is the single source of the stage-code to transfer-status
// mapping, consulted by both the manual and the automatic advancement paths.
// Authorization deliberately maps back to pending: the pipeline stalls there
// until an officer acts.
func StatusForStage(code string) TransferStatus {
	switch code {
	case StageProcessing, StageNetwork, StageIntermediary:
		return TransferStatusProcessing
	case StageSettlement:
		return TransferStatusInTransit
	case StageCompleted:
		return TransferStatusCompleted
	default:
		// INIT, VAL, AML and AUTH all present as pending to the back office.
		return TransferStatusPending
	}
}
