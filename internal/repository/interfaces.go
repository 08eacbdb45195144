package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/medtrack-api/internal/model"
)

// ErrNotFound is the store-agnostic sentinel for owner-scoped lookups that
// match nothing. Missing and not-owned are indistinguishable by design.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateSlot is returned when rewriting a reminder's scheduled time
// would land on a (user, medication, time, type) slot another reminder
// already occupies.
var ErrDuplicateSlot = errors.New("reminder slot already occupied")

// All repository interfaces in one file
type (
	// UserRepository handles user records and their stored timezone
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	// MedicationRepository is owner-scoped except for ListActive, which the
	// scheduler uses to scan every user's active medications.
	MedicationRepository interface {
		Create(ctx context.Context, medication *model.Medication) error
		Get(ctx context.Context, id, userID uuid.UUID) (*model.Medication, error)
		Update(ctx context.Context, medication *model.Medication) error
		Delete(ctx context.Context, id, userID uuid.UUID) error
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Medication, error)
		ListActive(ctx context.Context) ([]*model.Medication, error)
	}

	// MedicationLogRepository is append-only; there is no update path.
	MedicationLogRepository interface {
		Create(ctx context.Context, log *model.MedicationLog) error
		ListByUser(ctx context.Context, userID uuid.UUID, filters *model.LogFilters) ([]*model.MedicationLog, error)
		ListByMedication(ctx context.Context, medicationID, userID uuid.UUID) ([]*model.MedicationLog, error)
	}

	ReminderRepository interface {
		// CreateIfAbsent inserts the reminder unless one already exists for
		// the same (user, medication, scheduled_time, type) tuple. Returns
		// false when the insert was a no-op. Must be atomic: repeated or
		// concurrent calls for the same tuple never create duplicates.
		CreateIfAbsent(ctx context.Context, reminder *model.Reminder) (bool, error)
		Get(ctx context.Context, id, userID uuid.UUID) (*model.Reminder, error)
		List(ctx context.Context, userID uuid.UUID, filters *model.ReminderFilters) ([]*model.Reminder, error)
		// UpdateStatus returns ErrDuplicateSlot when the rewritten
		// scheduledTime collides with an existing reminder's slot.
		UpdateStatus(ctx context.Context, id, userID uuid.UUID, status model.ReminderStatus, scheduledTime *time.Time) error
		ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error)
		MarkSent(ctx context.Context, id uuid.UUID) error
	}

	// RenewalRepository is owner-scoped throughout; a renewal request is
	// visible and mutable only to the user who filed it.
	RenewalRepository interface {
		Create(ctx context.Context, renewal *model.RenewalRequest) error
		Get(ctx context.Context, id, userID uuid.UUID) (*model.RenewalRequest, error)
		ListByMedication(ctx context.Context, medicationID uuid.UUID) ([]*model.RenewalRequest, error)
		Update(ctx context.Context, renewal *model.RenewalRequest) error
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.RenewalRequest, error)
	}
)
