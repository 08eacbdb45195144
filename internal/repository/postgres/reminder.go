package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/medtrack/medtrack-api/internal/model"
)

const uniqueViolation = pq.ErrorCode("23505")

type reminderRepository struct {
	BaseRepository
}

func NewReminderRepository(db *sqlx.DB) *reminderRepository {
	return &reminderRepository{BaseRepository: NewBaseRepository(db)}
}

// CreateIfAbsent relies on the idx_reminders_unique_slot unique index on
// (user_id, medication_id, scheduled_time, type): ON CONFLICT DO NOTHING
// makes the check-and-insert a single atomic statement, so overlapping
// scheduler ticks cannot race each other into a duplicate.
func (r *reminderRepository) CreateIfAbsent(ctx context.Context, reminder *model.Reminder) (bool, error) {
	query := `
		INSERT INTO reminders (
			id, user_id, medication_id, scheduled_time,
			status, type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, medication_id, scheduled_time, type) DO NOTHING
	`
	reminder.ID = uuid.New()
	reminder.CreatedAt = time.Now()
	if reminder.Status == "" {
		reminder.Status = model.ReminderStatusPending
	}

	result, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.UserID,
		reminder.MedicationID,
		reminder.ScheduledTime,
		reminder.Status,
		reminder.Type,
		reminder.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *reminderRepository) Get(ctx context.Context, id, userID uuid.UUID) (*model.Reminder, error) {
	query := `
		SELECT id, user_id, medication_id, scheduled_time,
			   status, type, created_at
		FROM reminders
		WHERE id = $1 AND user_id = $2
	`
	var reminder model.Reminder
	err := r.db.GetContext(ctx, &reminder, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return &reminder, nil
}

func (r *reminderRepository) List(ctx context.Context, userID uuid.UUID, filters *model.ReminderFilters) ([]*model.Reminder, error) {
	query := `
		SELECT id, user_id, medication_id, scheduled_time,
			   status, type, created_at
		FROM reminders
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	argCount := 2

	limit := 20
	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.Type != "" {
			query += fmt.Sprintf(" AND type = $%d", argCount)
			args = append(args, filters.Type)
			argCount++
		}
		if filters.Limit > 0 {
			limit = filters.Limit
		}
	}

	query += fmt.Sprintf(" ORDER BY scheduled_time DESC LIMIT $%d", argCount)
	args = append(args, limit)

	var reminders []*model.Reminder
	err := r.db.SelectContext(ctx, &reminders, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// UpdateStatus mutates status (and scheduledTime when snoozing) scoped by
// (id, owner) in a single statement; concurrent transitions on the same
// reminder serialize on the row update, last write wins. A rewritten time
// can collide with idx_reminders_unique_slot; that surfaces as
// ErrDuplicateSlot so the caller can nudge and retry.
func (r *reminderRepository) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status model.ReminderStatus, scheduledTime *time.Time) error {
	query := `
		UPDATE reminders
		SET status = $1, scheduled_time = COALESCE($2, scheduled_time)
		WHERE id = $3 AND user_id = $4
	`
	result, err := r.db.ExecContext(ctx, query, status, scheduledTime, id, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListDue returns reminders waiting for delivery. Snoozed reminders re-enter
// the active pool once their rewritten scheduled_time comes due.
func (r *reminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	query := `
		SELECT id, user_id, medication_id, scheduled_time,
			   status, type, created_at
		FROM reminders
		WHERE status IN ('pending', 'snoozed')
		AND scheduled_time <= $1
		ORDER BY scheduled_time ASC
		LIMIT $2
	`
	var reminders []*model.Reminder
	err := r.db.SelectContext(ctx, &reminders, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reminders
		SET status = $1
		WHERE id = $2 AND status IN ('pending', 'snoozed')
	`
	_, err := r.db.ExecContext(ctx, query, model.ReminderStatusSent, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}
