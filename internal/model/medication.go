package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ScheduleType string

const (
	ScheduleTypeFixed    ScheduleType = "fixed"
	ScheduleTypeInterval ScheduleType = "interval"
	ScheduleTypeCustom   ScheduleType = "custom"
)

// Schedule describes when a medication should be taken. Times are "HH:MM"
// strings, days are long weekday names ("Monday").
type Schedule struct {
	Type          ScheduleType `json:"type"`
	Times         []string     `json:"times,omitempty"`
	Days          []string     `json:"days,omitempty"`
	StartDate     *time.Time   `json:"start_date,omitempty"`
	EndDate       *time.Time   `json:"end_date,omitempty"`
	IntervalHours int          `json:"interval_hours,omitempty"`
	CustomRules   JSONMap      `json:"custom_rules,omitempty"`
}

func (s Schedule) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Schedule) Scan(src interface{}) error {
	if src == nil {
		*s = Schedule{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for Schedule: %T", src)
	}
	return json.Unmarshal(b, s)
}

// EffectiveDays returns the weekday set the schedule applies to, falling
// back to custom_rules.days when the top-level field is empty.
func (s *Schedule) EffectiveDays() []string {
	if len(s.Days) > 0 {
		return s.Days
	}
	return s.CustomRules.StringList("days")
}

// EffectiveTimes returns the time-of-day set, with the same custom_rules
// fallback as EffectiveDays.
func (s *Schedule) EffectiveTimes() []string {
	if len(s.Times) > 0 {
		return s.Times
	}
	return s.CustomRules.StringList("times")
}

type Medication struct {
	Base
	UserID       uuid.UUID      `db:"user_id" json:"user_id"`
	Name         string         `db:"name" json:"name"`
	Dosage       string         `db:"dosage" json:"dosage,omitempty"`
	Frequency    string         `db:"frequency" json:"frequency,omitempty"`
	Schedule     Schedule       `db:"schedule" json:"schedule"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	Interactions pq.StringArray `db:"interactions" json:"interactions,omitempty"`
}

type CreateMedicationRequest struct {
	Name         string   `json:"name" binding:"required,max=200"`
	Dosage       string   `json:"dosage" binding:"max=100"`
	Frequency    string   `json:"frequency" binding:"max=100"`
	Schedule     Schedule `json:"schedule" binding:"required"`
	IsActive     *bool    `json:"is_active"`
	Interactions []string `json:"interactions"`
}

type UpdateMedicationRequest struct {
	Name         *string   `json:"name"`
	Dosage       *string   `json:"dosage"`
	Frequency    *string   `json:"frequency"`
	Schedule     *Schedule `json:"schedule"`
	IsActive     *bool     `json:"is_active"`
	Interactions []string  `json:"interactions"`
}

// MedicationRef is the shape medications take inside derived reports.
type MedicationRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ScheduleConflict is one same-day same-time overlap between two medications.
type ScheduleConflict struct {
	Med1 MedicationRef `json:"med1"`
	Med2 MedicationRef `json:"med2"`
	Day  string        `json:"day"`
	Time string        `json:"time"`
}

type InteractionSeverity string

const (
	SeverityModerate InteractionSeverity = "moderate"
	SeverityHigh     InteractionSeverity = "high"
)

// InteractionWarning is a directed name-based interaction flag. The relation
// is declared on med1 only, so a physically symmetric interaction may appear
// once or twice depending on which sides declared it.
type InteractionWarning struct {
	Med1     MedicationRef       `json:"med1"`
	Med2     MedicationRef       `json:"med2"`
	Severity InteractionSeverity `json:"severity"`
}
