package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/repository"
)

// Service computes read-only aggregations over a user's medication logs.
// There is no caching; each report is one bounded query pass over a fixed
// lookback window. Empty data always resolves to zero values, never errors.
type Service struct {
	logRepo repository.MedicationLogRepository
	medRepo repository.MedicationRepository
	now     func() time.Time
}

func NewService(logRepo repository.MedicationLogRepository, medRepo repository.MedicationRepository) *Service {
	return &Service{
		logRepo: logRepo,
		medRepo: medRepo,
		now:     time.Now,
	}
}

// GetAdherence returns the all-time taken/missed/skipped rollup. Adherence
// percent is 0 when there are no logs.
func (s *Service) GetAdherence(ctx context.Context, userID uuid.UUID) (*model.AdherenceStats, error) {
	logs, err := s.logRepo.ListByUser(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return tally(logs), nil
}

func (s *Service) ListLogs(ctx context.Context, userID uuid.UUID, filters *model.LogFilters) ([]*model.MedicationLog, error) {
	logs, err := s.logRepo.ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return logs, nil
}

// GetTrends buckets the last year of logs three ways: the last 30 calendar
// days, the last 12 week buckets and the last 12 calendar months. Buckets
// are pre-seeded so periods with no logs still appear with zero counts, and
// each series is sorted ascending by its key string.
func (s *Service) GetTrends(ctx context.Context, userID uuid.UUID) (*model.Trends, error) {
	now := s.now()
	logs, err := s.logRepo.ListByUser(ctx, userID, &model.LogFilters{
		StartDate: now.AddDate(-1, 0, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	dayBuckets := make(map[string]*model.TrendPoint, 30)
	for i := 0; i < 30; i++ {
		key := dayKey(now.AddDate(0, 0, -i))
		dayBuckets[key] = &model.TrendPoint{Period: key}
	}

	weekBuckets := make(map[string]*model.TrendPoint, 12)
	for i := 0; i < 12; i++ {
		key := weekKey(now.AddDate(0, 0, -i*7))
		weekBuckets[key] = &model.TrendPoint{Period: key}
	}

	monthBuckets := make(map[string]*model.TrendPoint, 12)
	for i := 0; i < 12; i++ {
		key := monthKey(now.AddDate(0, -i, 0))
		monthBuckets[key] = &model.TrendPoint{Period: key}
	}

	for _, log := range logs {
		accumulate(dayBuckets, dayKey(log.ScheduledTime), log.Status)
		accumulate(weekBuckets, weekKey(log.ScheduledTime), log.Status)
		accumulate(monthBuckets, monthKey(log.ScheduledTime), log.Status)
	}

	return &model.Trends{
		Daily:   sortedPoints(dayBuckets),
		Weekly:  sortedPoints(weekBuckets),
		Monthly: sortedPoints(monthBuckets),
	}, nil
}

func tally(logs []*model.MedicationLog) *model.AdherenceStats {
	stats := &model.AdherenceStats{Total: len(logs)}
	for _, log := range logs {
		switch log.Status {
		case model.LogStatusTaken:
			stats.Taken++
		case model.LogStatusMissed:
			stats.Missed++
		case model.LogStatusSkipped:
			stats.Skipped++
		}
	}
	if stats.Total > 0 {
		stats.AdherencePercent = int(math.Round(float64(stats.Taken) / float64(stats.Total) * 100))
	}
	return stats
}

func accumulate(buckets map[string]*model.TrendPoint, key string, status model.LogStatus) {
	point, ok := buckets[key]
	if !ok {
		// Outside the seeded trailing window.
		return
	}
	point.Total++
	switch status {
	case model.LogStatusTaken:
		point.Taken++
	case model.LogStatusMissed:
		point.Missed++
	case model.LogStatusSkipped:
		point.Skipped++
	}
}

func sortedPoints(buckets map[string]*model.TrendPoint) []model.TrendPoint {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	points := make([]model.TrendPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, *buckets[key])
	}
	return points
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// weekKey computes a Jan-1-anchored week number, not strict ISO-8601: week 1
// starts on January 1st regardless of weekday. Stored report keys depend on
// this shape, so it must not be "corrected" to ISO weeks.
func weekKey(t time.Time) string {
	t = t.UTC()
	firstJan := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(t.Sub(firstJan).Hours() / 24)
	week := (days + int(firstJan.Weekday()) + 1 + 6) / 7
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}
