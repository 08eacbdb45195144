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

type renewalRepository struct {
	BaseRepository
}

func NewRenewalRepository(db *sqlx.DB) *renewalRepository {
	return &renewalRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *renewalRepository) Create(ctx context.Context, renewal *model.RenewalRequest) error {
	query := `
		INSERT INTO renewal_requests (
			id, medication_id, user_id, status,
			message, requested_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	renewal.ID = uuid.New()
	renewal.RequestedAt = time.Now()
	if renewal.Status == "" {
		renewal.Status = model.RenewalStatusPending
	}

	_, err := r.db.ExecContext(ctx, query,
		renewal.ID,
		renewal.MedicationID,
		renewal.UserID,
		renewal.Status,
		renewal.Message,
		renewal.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create renewal request: %w", err)
	}
	return nil
}

func (r *renewalRepository) Get(ctx context.Context, id, userID uuid.UUID) (*model.RenewalRequest, error) {
	query := `
		SELECT id, medication_id, user_id, status,
			   message, response, requested_at, responded_at
		FROM renewal_requests
		WHERE id = $1 AND user_id = $2
	`
	var renewal model.RenewalRequest
	err := r.db.GetContext(ctx, &renewal, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get renewal request: %w", err)
	}
	return &renewal, nil
}

func (r *renewalRepository) ListByMedication(ctx context.Context, medicationID uuid.UUID) ([]*model.RenewalRequest, error) {
	query := `
		SELECT id, medication_id, user_id, status,
			   message, response, requested_at, responded_at
		FROM renewal_requests
		WHERE medication_id = $1
		ORDER BY requested_at DESC
	`
	var renewals []*model.RenewalRequest
	err := r.db.SelectContext(ctx, &renewals, query, medicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list renewal requests: %w", err)
	}
	return renewals, nil
}

func (r *renewalRepository) Update(ctx context.Context, renewal *model.RenewalRequest) error {
	query := `
		UPDATE renewal_requests
		SET status = $1, response = $2, responded_at = $3
		WHERE id = $4 AND user_id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		renewal.Status,
		renewal.Response,
		renewal.RespondedAt,
		renewal.ID,
		renewal.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update renewal request: %w", err)
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

func (r *renewalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.RenewalRequest, error) {
	query := `
		SELECT id, medication_id, user_id, status,
			   message, response, requested_at, responded_at
		FROM renewal_requests
		WHERE user_id = $1
		ORDER BY requested_at DESC
	`
	var renewals []*model.RenewalRequest
	err := r.db.SelectContext(ctx, &renewals, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list renewal requests: %w", err)
	}
	return renewals, nil
}
