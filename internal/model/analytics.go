package model

import "github.com/google/uuid"

// AdherenceStats is the all-time (or windowed) taken/missed/skipped rollup.
type AdherenceStats struct {
	Total            int `json:"total"`
	Taken            int `json:"taken"`
	Missed           int `json:"missed"`
	Skipped          int `json:"skipped"`
	AdherencePercent int `json:"adherence_percent"`
}

// TrendPoint is one time bucket of adherence counts. Period is "YYYY-MM-DD"
// for daily, "YYYY-Www" for weekly and "YYYY-MM" for monthly buckets.
type TrendPoint struct {
	Period  string `json:"period"`
	Taken   int    `json:"taken"`
	Missed  int    `json:"missed"`
	Skipped int    `json:"skipped"`
	Total   int    `json:"total"`
}

type Trends struct {
	Daily   []TrendPoint `json:"daily"`
	Weekly  []TrendPoint `json:"weekly"`
	Monthly []TrendPoint `json:"monthly"`
}

const (
	RiskLevelGood   = "good"
	RiskLevelAtRisk = "at risk"
)

// RiskReport is the 30-day adherence risk assessment.
type RiskReport struct {
	AdherencePercent int            `json:"adherence_percent"`
	Total            int            `json:"total"`
	Taken            int            `json:"taken"`
	Missed           int            `json:"missed"`
	Skipped          int            `json:"skipped"`
	RiskLevel        string         `json:"risk_level"`
	Reasons          []string       `json:"reasons"`
	MissedByDay      map[string]int `json:"missed_by_day"`
	MissedByHour     map[int]int    `json:"missed_by_hour"`
	Summary          string         `json:"summary"`
}

type MedicationSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name,omitempty"`
	Dosage string    `json:"dosage,omitempty"`
}

// ReminderShift suggests moving a reminder off an hour with repeated misses.
type ReminderShift struct {
	Medication  MedicationSummary `json:"medication"`
	MissedHour  int               `json:"missed_hour"`
	MissedCount int               `json:"missed_count"`
	Suggestion  string            `json:"suggestion"`
}

// SchedulePlan recommends the hours with the best historical adherence.
type SchedulePlan struct {
	Recommended []string `json:"recommended"`
	Explanation string   `json:"explanation"`
}

type StreakReport struct {
	CurrentStreak int      `json:"current_streak"`
	LongestStreak int      `json:"longest_streak"`
	Badges        []string `json:"badges"`
}

type Suggestion struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
