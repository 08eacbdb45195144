package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medtrack/medtrack-api/internal/model"
)

type medicationLogRepository struct {
	BaseRepository
}

func NewMedicationLogRepository(db *sqlx.DB) *medicationLogRepository {
	return &medicationLogRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *medicationLogRepository) Create(ctx context.Context, log *model.MedicationLog) error {
	query := `
		INSERT INTO medication_logs (
			id, user_id, medication_id, status,
			scheduled_time, taken_time, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	log.ID = uuid.New()
	log.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.MedicationID,
		log.Status,
		log.ScheduledTime,
		log.TakenTime,
		log.Notes,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication log: %w", err)
	}
	return nil
}

func (r *medicationLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, filters *model.LogFilters) ([]*model.MedicationLog, error) {
	query := `
		SELECT id, user_id, medication_id, status,
			   scheduled_time, taken_time, notes, created_at
		FROM medication_logs
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	argCount := 2

	if filters != nil {
		if filters.MedicationID != uuid.Nil {
			query += fmt.Sprintf(" AND medication_id = $%d", argCount)
			args = append(args, filters.MedicationID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND scheduled_time >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND scheduled_time <= $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY scheduled_time DESC"

	var logs []*model.MedicationLog
	err := r.db.SelectContext(ctx, &logs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list medication logs: %w", err)
	}
	return logs, nil
}

func (r *medicationLogRepository) ListByMedication(ctx context.Context, medicationID, userID uuid.UUID) ([]*model.MedicationLog, error) {
	query := `
		SELECT id, user_id, medication_id, status,
			   scheduled_time, taken_time, notes, created_at
		FROM medication_logs
		WHERE medication_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`
	var logs []*model.MedicationLog
	err := r.db.SelectContext(ctx, &logs, query, medicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medication logs: %w", err)
	}
	return logs, nil
}
