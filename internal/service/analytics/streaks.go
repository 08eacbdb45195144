package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/medtrack-api/internal/model"
)

var badgeThresholds = []struct {
	days  int
	label string
}{
	{3, "3-day Streak"},
	{7, "7-day Streak"},
	{30, "30-day Streak"},
}

// GetStreaks walks the user's logs grouped by calendar day. A day counts
// toward a streak only when every log that day is "taken"; the counter
// continues only across consecutive calendar days, and a day with any
// missed or skipped dose resets it to zero. Badges accumulate at 3, 7 and
// 30 days of the longest streak.
func (s *Service) GetStreaks(ctx context.Context, userID uuid.UUID) (*model.StreakReport, error) {
	logs, err := s.logRepo.ListByUser(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	byDay := map[string][]*model.MedicationLog{}
	for _, log := range logs {
		key := dayKey(log.ScheduledTime)
		byDay[key] = append(byDay[key], log)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	streak, longest := 0, 0
	var prevFullDay string
	for _, day := range days {
		allTaken := true
		for _, log := range byDay[day] {
			if log.Status != model.LogStatusTaken {
				allTaken = false
				break
			}
		}

		if !allTaken {
			streak = 0
			prevFullDay = day
			continue
		}

		if prevFullDay != "" && isNextDay(prevFullDay, day) {
			streak++
		} else {
			streak = 1
		}
		if streak > longest {
			longest = streak
		}
		prevFullDay = day
	}

	report := &model.StreakReport{
		CurrentStreak: streak,
		LongestStreak: longest,
		Badges:        []string{},
	}
	for _, badge := range badgeThresholds {
		if longest >= badge.days {
			report.Badges = append(report.Badges, badge.label)
		}
	}
	return report, nil
}

func isNextDay(prev, curr string) bool {
	prevDay, err := time.Parse("2006-01-02", prev)
	if err != nil {
		return false
	}
	currDay, err := time.Parse("2006-01-02", curr)
	if err != nil {
		return false
	}
	return currDay.Sub(prevDay) == 24*time.Hour
}
