package model

import (
	"time"

	"github.com/google/uuid"
)

type LogStatus string

const (
	LogStatusTaken   LogStatus = "taken"
	LogStatusMissed  LogStatus = "missed"
	LogStatusSkipped LogStatus = "skipped"
)

// MedicationLog is one medication-taking event. Logs are append-only and are
// never updated after creation.
type MedicationLog struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	MedicationID  uuid.UUID  `db:"medication_id" json:"medication_id"`
	Status        LogStatus  `db:"status" json:"status"`
	ScheduledTime time.Time  `db:"scheduled_time" json:"scheduled_time"`
	TakenTime     *time.Time `db:"taken_time" json:"taken_time,omitempty"`
	Notes         string     `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

type LogIntakeRequest struct {
	Status        LogStatus  `json:"status" binding:"required,oneof=taken missed skipped"`
	ScheduledTime time.Time  `json:"scheduled_time" binding:"required"`
	TakenTime     *time.Time `json:"taken_time"`
	Notes         string     `json:"notes" binding:"max=1000"`
}

type LogFilters struct {
	MedicationID uuid.UUID
	Status       LogStatus
	StartDate    time.Time
	EndDate      time.Time
}
