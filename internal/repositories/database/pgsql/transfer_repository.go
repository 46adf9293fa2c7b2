package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portsrepo "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/repositories"
	"github.com/k3rn3l808/swift_sim_backend/internal/models"
)

type PgxTransferRepository struct {
	db *pgxpool.Pool
}

// NewTransferRepository creates a Postgres-backed transfer repository.
func NewTransferRepository(db *pgxpool.Pool) portsrepo.TransferRepositoryFacade {
	return &PgxTransferRepository{db: db}
}

var _ portsrepo.TransferRepositoryFacade = (*PgxTransferRepository)(nil)

func toModelTransfer(d domain.Transfer) (models.Transfer, error) {
	stages, err := json.Marshal(d.Stages)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("failed to marshal stages: %w", err)
	}
	logs, err := json.Marshal(d.SwiftLogs)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("failed to marshal swift logs: %w", err)
	}
	return models.Transfer{
		TransferID:          d.TransferID,
		Date:                d.Date,
		SenderName:          d.SenderName,
		SenderBIC:           d.SenderBIC,
		ReceiverName:        d.ReceiverName,
		ReceiverBIC:         d.ReceiverBIC,
		TransferType:        string(d.TransferType),
		Amount:              d.Amount,
		Currency:            d.Currency,
		Reference:           d.Reference,
		Purpose:             d.Purpose,
		Status:              string(d.Status),
		CreatedBy:           d.CreatedBy,
		SwiftLogs:           logs,
		CurrentStage:        d.CurrentStage,
		CurrentStageIndex:   d.CurrentStageIndex,
		Location:            d.Location,
		Stages:              stages,
		EstimatedCompletion: d.EstimatedCompletion,
		AutoProgression:     d.AutoProgression,
		RiskScore:           d.RiskScore,
		RiskLevel:           d.RiskLevel,
		Version:             d.Version,
	}, nil
}

func toDomainTransfer(m models.Transfer) (domain.Transfer, error) {
	var stages []domain.StageProgress
	if len(m.Stages) > 0 {
		if err := json.Unmarshal(m.Stages, &stages); err != nil {
			return domain.Transfer{}, fmt.Errorf("failed to unmarshal stages for %s: %w", m.TransferID, err)
		}
	}
	var logs []domain.SwiftLogEntry
	if len(m.SwiftLogs) > 0 {
		if err := json.Unmarshal(m.SwiftLogs, &logs); err != nil {
			return domain.Transfer{}, fmt.Errorf("failed to unmarshal swift logs for %s: %w", m.TransferID, err)
		}
	}
	return domain.Transfer{
		TransferID:          m.TransferID,
		Date:                m.Date,
		SenderName:          m.SenderName,
		SenderBIC:           m.SenderBIC,
		ReceiverName:        m.ReceiverName,
		ReceiverBIC:         m.ReceiverBIC,
		TransferType:        domain.TransferType(m.TransferType),
		Amount:              m.Amount,
		Currency:            m.Currency,
		Reference:           m.Reference,
		Purpose:             m.Purpose,
		Status:              domain.TransferStatus(m.Status),
		CreatedBy:           m.CreatedBy,
		SwiftLogs:           logs,
		CurrentStage:        m.CurrentStage,
		CurrentStageIndex:   m.CurrentStageIndex,
		Location:            m.Location,
		Stages:              stages,
		EstimatedCompletion: m.EstimatedCompletion,
		AutoProgression:     m.AutoProgression,
		RiskScore:           m.RiskScore,
		RiskLevel:           m.RiskLevel,
		Version:             m.Version,
	}, nil
}

const transferColumns = `transfer_id, date, sender_name, sender_bic, receiver_name, receiver_bic,
	transfer_type, amount, currency, reference, purpose, status, created_by, swift_logs,
	current_stage, current_stage_index, location, stages, estimated_completion,
	auto_progression, risk_score, risk_level, version`

func scanTransfer(row pgx.Row) (*models.Transfer, error) {
	var m models.Transfer
	err := row.Scan(
		&m.TransferID,
		&m.Date,
		&m.SenderName,
		&m.SenderBIC,
		&m.ReceiverName,
		&m.ReceiverBIC,
		&m.TransferType,
		&m.Amount,
		&m.Currency,
		&m.Reference,
		&m.Purpose,
		&m.Status,
		&m.CreatedBy,
		&m.SwiftLogs,
		&m.CurrentStage,
		&m.CurrentStageIndex,
		&m.Location,
		&m.Stages,
		&m.EstimatedCompletion,
		&m.AutoProgression,
		&m.RiskScore,
		&m.RiskLevel,
		&m.Version,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxTransferRepository) SaveTransfer(ctx context.Context, transfer domain.Transfer) error {
	m, err := toModelTransfer(transfer)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO transfers (` + transferColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
    `
	_, err = r.db.Exec(ctx, query,
		m.TransferID, m.Date, m.SenderName, m.SenderBIC, m.ReceiverName, m.ReceiverBIC,
		m.TransferType, m.Amount, m.Currency, m.Reference, m.Purpose, m.Status, m.CreatedBy, m.SwiftLogs,
		m.CurrentStage, m.CurrentStageIndex, m.Location, m.Stages, m.EstimatedCompletion,
		m.AutoProgression, m.RiskScore, m.RiskLevel, m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save transfer %s: %w", transfer.TransferID, err)
	}
	return nil
}

// UpdateTransfer replaces the stored record guarded by the version counter:
// the UPDATE only matches when the stored version equals the version the
// caller read, which turns concurrent lost updates into ErrConflict.
func (r *PgxTransferRepository) UpdateTransfer(ctx context.Context, transfer domain.Transfer) error {
	m, err := toModelTransfer(transfer)
	if err != nil {
		return err
	}
	query := `
        UPDATE transfers SET
            status = $2,
            swift_logs = $3,
            current_stage = $4,
            current_stage_index = $5,
            location = $6,
            stages = $7,
            auto_progression = $8,
            risk_score = $9,
            risk_level = $10,
            version = version + 1
        WHERE transfer_id = $1 AND version = $11;
    `
	tag, err := r.db.Exec(ctx, query,
		m.TransferID, m.Status, m.SwiftLogs, m.CurrentStage, m.CurrentStageIndex,
		m.Location, m.Stages, m.AutoProgression, m.RiskScore, m.RiskLevel, m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer %s: %w", transfer.TransferID, err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing record from a stale version.
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transfers WHERE transfer_id = $1)`, m.TransferID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check transfer %s existence: %w", transfer.TransferID, err)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("transfer %s version %d: %w", transfer.TransferID, transfer.Version, apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE transfer_id = $1;`
	m, err := scanTransfer(r.db.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer by ID %s: %w", transferID, err)
	}
	d, err := toDomainTransfer(*m)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgxTransferRepository) ListTransfers(ctx context.Context, filter portsrepo.TransferFilter, limit int) ([]domain.Transfer, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + transferColumns + ` FROM transfers WHERE 1=1`
	args := []interface{}{}
	argPos := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}
	if filter.TransferType != "" {
		query += fmt.Sprintf(" AND transfer_type = $%d", argPos)
		args = append(args, filter.TransferType)
		argPos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d;", argPos)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		m, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer row: %w", err)
		}
		d, err := toDomainTransfer(*m)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer rows: %w", err)
	}
	return transfers, nil
}

func (r *PgxTransferRepository) CountTransfers(ctx context.Context, filter portsrepo.TransferFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM transfers WHERE 1=1`
	args := []interface{}{}
	argPos := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}
	if filter.TransferType != "" {
		query += fmt.Sprintf(" AND transfer_type = $%d", argPos)
		args = append(args, filter.TransferType)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	return count, nil
}

func (r *PgxTransferRepository) AggregateByStatus(ctx context.Context) (map[domain.TransferStatus]portsrepo.StatusAggregate, error) {
	query := `SELECT status, COUNT(*), COALESCE(SUM(amount), 0) FROM transfers GROUP BY status;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transfers by status: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.TransferStatus]portsrepo.StatusAggregate)
	for rows.Next() {
		var status string
		var count int64
		var total decimal.Decimal
		if err := rows.Scan(&status, &count, &total); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		out[domain.TransferStatus(status)] = portsrepo.StatusAggregate{Count: count, TotalAmount: total}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregate rows: %w", err)
	}
	return out, nil
}
