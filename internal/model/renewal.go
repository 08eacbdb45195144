package model

import (
	"time"

	"github.com/google/uuid"
)

type RenewalStatus string

const (
	RenewalStatusPending  RenewalStatus = "pending"
	RenewalStatusApproved RenewalStatus = "approved"
	RenewalStatusDenied   RenewalStatus = "denied"
)

// RenewalRequest lives in its own table keyed by medication id rather than
// nested inside the medication record, so a long-lived prescription cannot
// grow its document without bound.
type RenewalRequest struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	MedicationID uuid.UUID     `db:"medication_id" json:"medication_id"`
	UserID       uuid.UUID     `db:"user_id" json:"user_id"`
	Status       RenewalStatus `db:"status" json:"status"`
	Message      string        `db:"message" json:"message,omitempty"`
	Response     string        `db:"response" json:"response,omitempty"`
	RequestedAt  time.Time     `db:"requested_at" json:"requested_at"`
	RespondedAt  *time.Time    `db:"responded_at" json:"responded_at,omitempty"`
}

type CreateRenewalRequest struct {
	Message string `json:"message" binding:"max=1000"`
}

type UpdateRenewalRequest struct {
	Status   RenewalStatus `json:"status" binding:"omitempty,oneof=pending approved denied"`
	Response string        `json:"response" binding:"max=1000"`
}
