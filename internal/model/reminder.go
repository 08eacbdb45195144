package model

import (
	"time"

	"github.com/google/uuid"
)

type ReminderStatus string

const (
	ReminderStatusPending      ReminderStatus = "pending"
	ReminderStatusSent         ReminderStatus = "sent"
	ReminderStatusAcknowledged ReminderStatus = "acknowledged"
	ReminderStatusSnoozed      ReminderStatus = "snoozed"
	ReminderStatusMissed       ReminderStatus = "missed"
)

// Terminal reports whether no further transitions are permitted.
func (s ReminderStatus) Terminal() bool {
	return s == ReminderStatusAcknowledged || s == ReminderStatusMissed
}

type ReminderType string

const (
	ReminderTypeMedication ReminderType = "medication"
	ReminderTypeRenewal    ReminderType = "renewal"
)

// Reminder is one scheduled notification instance. At most one reminder
// exists per (user, medication, scheduled_time, type).
type Reminder struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	UserID        uuid.UUID      `db:"user_id" json:"user_id"`
	MedicationID  uuid.UUID      `db:"medication_id" json:"medication_id"`
	ScheduledTime time.Time      `db:"scheduled_time" json:"scheduled_time"`
	Status        ReminderStatus `db:"status" json:"status"`
	Type          ReminderType   `db:"type" json:"type"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

type UpdateReminderRequest struct {
	Status        ReminderStatus `json:"status" binding:"required"`
	SnoozeMinutes int            `json:"snooze_minutes"`
}

type ReminderFilters struct {
	Status ReminderStatus
	Type   ReminderType
	Limit  int
}

// ReminderView decorates a reminder with the owner's local rendering of the
// scheduled time. Display only; scheduling itself is tick-local.
type ReminderView struct {
	Reminder
	ScheduledTimeLocal string `json:"scheduled_time_local"`
	Timezone           string `json:"timezone"`
}
