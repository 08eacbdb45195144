package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medtrack/medtrack-api/internal/model"
)

type medicationRepository struct {
	BaseRepository
}

func NewMedicationRepository(db *sqlx.DB) *medicationRepository {
	return &medicationRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *medicationRepository) Create(ctx context.Context, medication *model.Medication) error {
	query := `
		INSERT INTO medications (
			id, user_id, name, dosage, frequency,
			schedule, is_active, interactions,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	medication.ID = uuid.New()
	medication.CreatedAt = time.Now()
	medication.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		medication.ID,
		medication.UserID,
		medication.Name,
		medication.Dosage,
		medication.Frequency,
		medication.Schedule,
		medication.IsActive,
		medication.Interactions,
		medication.CreatedAt,
		medication.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) Get(ctx context.Context, id, userID uuid.UUID) (*model.Medication, error) {
	query := `
		SELECT id, user_id, name, dosage, frequency,
			   schedule, is_active, interactions,
			   created_at, updated_at
		FROM medications
		WHERE id = $1 AND user_id = $2
	`
	var medication model.Medication
	err := r.db.GetContext(ctx, &medication, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return &medication, nil
}

func (r *medicationRepository) Update(ctx context.Context, medication *model.Medication) error {
	query := `
		UPDATE medications
		SET name = $1, dosage = $2, frequency = $3, schedule = $4,
			is_active = $5, interactions = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9
	`
	medication.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		medication.Name,
		medication.Dosage,
		medication.Frequency,
		medication.Schedule,
		medication.IsActive,
		medication.Interactions,
		medication.UpdatedAt,
		medication.ID,
		medication.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
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

func (r *medicationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `
		DELETE FROM medications
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
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

func (r *medicationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Medication, error) {
	query := `
		SELECT id, user_id, name, dosage, frequency,
			   schedule, is_active, interactions,
			   created_at, updated_at
		FROM medications
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	var medications []*model.Medication
	err := r.db.SelectContext(ctx, &medications, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}

func (r *medicationRepository) ListActive(ctx context.Context) ([]*model.Medication, error) {
	query := `
		SELECT id, user_id, name, dosage, frequency,
			   schedule, is_active, interactions,
			   created_at, updated_at
		FROM medications
		WHERE is_active = true
		ORDER BY created_at ASC
	`
	var medications []*model.Medication
	err := r.db.SelectContext(ctx, &medications, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active medications: %w", err)
	}
	return medications, nil
}
