package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
)

func sampleTransfer() *domain.Transfer {
	return &domain.Transfer{
		TransferID:   "tr-001",
		Date:         time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
		SenderName:   "Acme Industries",
		SenderBIC:    "DEUTDEFF",
		ReceiverName: "Globex Corp",
		ReceiverBIC:  "CHASUS33",
		TransferType: domain.TransferTypeSwiftMT,
		Amount:       decimal.NewFromInt(5000),
		Currency:     "USD",
		Reference:    "INV-2025-001",
		Purpose:      "Invoice payment",
	}
}

func TestStageCatalog(t *testing.T) {
	stages := domain.Stages()
	require.Len(t, stages, 9)
	assert.Equal(t, 9, domain.StageCount())
	assert.Equal(t, 8, domain.FinalStageIndex())

	wantOrder := []string{
		domain.StageInitiated, domain.StageValidation, domain.StageCompliance,
		domain.StageAuthorization, domain.StageProcessing, domain.StageNetwork,
		domain.StageIntermediary, domain.StageSettlement, domain.StageCompleted,
	}
	for i, def := range stages {
		assert.Equal(t, wantOrder[i], def.Code)
		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Location)
	}

	// Only the terminal stage has no dwell time.
	for i, def := range stages {
		if i == domain.FinalStageIndex() {
			assert.Zero(t, def.Delay)
		} else {
			assert.Positive(t, def.Delay, "stage %s", def.Code)
		}
	}
}

func TestStageAt(t *testing.T) {
	def, ok := domain.StageAt(0)
	require.True(t, ok)
	assert.Equal(t, domain.StageInitiated, def.Code)

	def, ok = domain.StageAt(domain.FinalStageIndex())
	require.True(t, ok)
	assert.Equal(t, domain.StageCompleted, def.Code)

	_, ok = domain.StageAt(-1)
	assert.False(t, ok)
	_, ok = domain.StageAt(domain.StageCount())
	assert.False(t, ok)
}

func TestTotalPipelineDuration(t *testing.T) {
	assert.Equal(t, 212*time.Second, domain.TotalPipelineDuration())
}

func TestStatusForStage(t *testing.T) {
	tests := []struct {
		code string
		want domain.TransferStatus
	}{
		{domain.StageInitiated, domain.TransferStatusPending},
		{domain.StageValidation, domain.TransferStatusPending},
		{domain.StageCompliance, domain.TransferStatusPending},
		{domain.StageAuthorization, domain.TransferStatusPending},
		{domain.StageProcessing, domain.TransferStatusProcessing},
		{domain.StageNetwork, domain.TransferStatusProcessing},
		{domain.StageIntermediary, domain.TransferStatusProcessing},
		{domain.StageSettlement, domain.TransferStatusInTransit},
		{domain.StageCompleted, domain.TransferStatusCompleted},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, domain.StatusForStage(tc.code), "stage %s", tc.code)
	}
}

func TestTransferStatusIsTerminal(t *testing.T) {
	assert.True(t, domain.TransferStatusCompleted.IsTerminal())
	assert.True(t, domain.TransferStatusRejected.IsTerminal())
	assert.True(t, domain.TransferStatusHeld.IsTerminal())
	assert.False(t, domain.TransferStatusPending.IsTerminal())
	assert.False(t, domain.TransferStatusProcessing.IsTerminal())
	assert.False(t, domain.TransferStatusInTransit.IsTerminal())
}

func TestInitStageProgress(t *testing.T) {
	tr := sampleTransfer()
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	stages := domain.InitStageProgress(tr, now)
	require.Len(t, stages, domain.StageCount())

	first := stages[0]
	assert.Equal(t, domain.StageStatusCompleted, first.Status)
	require.NotNil(t, first.Timestamp)
	assert.Equal(t, now, *first.Timestamp)
	assert.NotEmpty(t, first.Logs)

	for _, sp := range stages[1:] {
		assert.Equal(t, domain.StageStatusPending, sp.Status)
		assert.Nil(t, sp.Timestamp)
		assert.Empty(t, sp.Logs)
	}
}

func TestFlattenStageLogs(t *testing.T) {
	tr := sampleTransfer()
	now := time.Now().UTC()
	stages := domain.InitStageProgress(tr, now)

	// Only the completed first stage contributes.
	flat := domain.FlattenStageLogs(stages)
	assert.Equal(t, stages[0].Logs, flat)

	// Complete the second stage and flatten again: order follows the pipeline.
	second, _ := domain.StageAt(1)
	stages[1].Status = domain.StageStatusCompleted
	stages[1].Logs = domain.BuildStageLogs(second, tr, now)
	flat = domain.FlattenStageLogs(stages)
	require.Len(t, flat, len(stages[0].Logs)+len(stages[1].Logs))
	assert.Equal(t, stages[0].Logs, flat[:len(stages[0].Logs)])
	assert.Equal(t, stages[1].Logs, flat[len(stages[0].Logs):])
}

func TestBuildStageLogsDeterministic(t *testing.T) {
	tr := sampleTransfer()
	now := time.Now().UTC()

	for _, def := range domain.Stages() {
		a := domain.BuildStageLogs(def, tr, now)
		b := domain.BuildStageLogs(def, tr, now)
		assert.Equal(t, a, b, "stage %s", def.Code)
		assert.GreaterOrEqual(t, len(a), 2, "stage %s", def.Code)
		assert.LessOrEqual(t, len(a), 3, "stage %s", def.Code)
	}
}

func TestBuildStageLogsComplianceThreshold(t *testing.T) {
	now := time.Now().UTC()
	def, _ := domain.StageAt(2)
	require.Equal(t, domain.StageCompliance, def.Code)

	small := sampleTransfer()
	small.Amount = decimal.NewFromInt(9_000)
	logs := domain.BuildStageLogs(def, small, now)
	require.Len(t, logs, 3)
	assert.Equal(t, domain.LogLevelInfo, logs[2].Level)
	assert.Contains(t, logs[2].Message, "WITHIN REPORTING THRESHOLD")

	large := sampleTransfer()
	large.Amount = decimal.NewFromInt(250_000)
	logs = domain.BuildStageLogs(def, large, now)
	require.Len(t, logs, 3)
	assert.Equal(t, domain.LogLevelWarning, logs[2].Level)
	assert.Contains(t, logs[2].Message, "CTR FILED")
}

func TestCurrentStageDefinition(t *testing.T) {
	tr := sampleTransfer()
	tr.CurrentStageIndex = 3

	def, ok := tr.CurrentStageDefinition()
	require.True(t, ok)
	assert.Equal(t, domain.StageAuthorization, def.Code)

	assert.False(t, tr.AtFinalStage())
	tr.CurrentStageIndex = domain.FinalStageIndex()
	assert.True(t, tr.AtFinalStage())
}
