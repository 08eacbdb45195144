package worker

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/repository"
	"github.com/medtrack/medtrack-api/pkg/logger"
	"github.com/medtrack/medtrack-api/pkg/messaging"
	"github.com/medtrack/medtrack-api/pkg/metrics"
)

// ReminderScheduler scans all active medications once per minute and
// materializes due reminders. Ticks are idempotent under at-least-once
// execution: the conditional insert is the only concurrency guard, so
// overlapping or repeated ticks for the same minute are safe. There is no
// catch-up — a minute skipped during downtime is lost.
type ReminderScheduler struct {
	medicationRepo repository.MedicationRepository
	reminderRepo   repository.ReminderRepository
	broker         messaging.Broker
	logger         *logger.Logger
	metrics        *metrics.Metrics
	tickInterval   time.Duration
	now            func() time.Time
}

func NewReminderScheduler(
	medicationRepo repository.MedicationRepository,
	reminderRepo repository.ReminderRepository,
	broker messaging.Broker,
	logger *logger.Logger,
	m *metrics.Metrics,
) *ReminderScheduler {
	return &ReminderScheduler{
		medicationRepo: medicationRepo,
		reminderRepo:   reminderRepo,
		broker:         broker,
		logger:         logger,
		metrics:        m,
		tickInterval:   time.Minute,
		now:            time.Now,
	}
}

func (s *ReminderScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler shutting down")
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.Error(err, "reminder scheduler tick failed")
			}
		}
	}
}

// Tick runs one scan. A failure on one medication is logged and does not
// abort the rest of the scan; only a failure to load the medication set
// fails the whole tick.
func (s *ReminderScheduler) Tick(ctx context.Context) error {
	if s.metrics != nil {
		s.metrics.SchedulerTicks.Inc()
		timer := prometheus.NewTimer(s.metrics.SchedulerTickDuration)
		defer timer.ObserveDuration()
	}

	now := s.now().Truncate(time.Minute)
	weekday := now.Weekday().String()

	medications, err := s.medicationRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, med := range medications {
		if err := s.processMedication(ctx, med, now, weekday); err != nil {
			if s.metrics != nil {
				s.metrics.MedicationScanErrors.Inc()
			}
			s.logger.ZL.Error().
				Err(err).
				Str("medication_id", med.ID.String()).
				Msg("failed to process medication, continuing scan")
		}
	}
	return nil
}

func (s *ReminderScheduler) processMedication(ctx context.Context, med *model.Medication, now time.Time, weekday string) error {
	schedule := med.Schedule
	if schedule.Type != model.ScheduleTypeFixed || len(schedule.Times) == 0 || len(schedule.Days) == 0 {
		return nil
	}

	// The tick's local calendar decides "today", not the owning user's
	// timezone. Display localizes later; the fire time does not.
	if !containsString(schedule.Days, weekday) {
		return nil
	}

	for _, timeStr := range schedule.Times {
		hour, minute, ok := parseTimeOfDay(timeStr)
		if !ok {
			s.logger.ZL.Warn().
				Str("medication_id", med.ID.String()).
				Str("time", timeStr).
				Msg("skipping malformed schedule time")
			continue
		}
		if hour != now.Hour() || minute != now.Minute() {
			continue
		}

		created, err := s.reminderRepo.CreateIfAbsent(ctx, &model.Reminder{
			UserID:        med.UserID,
			MedicationID:  med.ID,
			ScheduledTime: now,
			Status:        model.ReminderStatusPending,
			Type:          model.ReminderTypeMedication,
		})
		if err != nil {
			return err
		}
		if !created {
			if s.metrics != nil {
				s.metrics.RemindersDeduplicated.Inc()
			}
			continue
		}

		if s.metrics != nil {
			s.metrics.RemindersCreated.Inc()
		}
		s.publishCreated(ctx, med, now)
	}
	return nil
}

func (s *ReminderScheduler) publishCreated(ctx context.Context, med *model.Medication, scheduledTime time.Time) {
	if s.broker == nil {
		return
	}
	err := s.broker.Publish(ctx, "reminders", map[string]interface{}{
		"type":           "reminder.created",
		"user_id":        med.UserID,
		"medication_id":  med.ID,
		"scheduled_time": scheduledTime,
	})
	if err != nil {
		s.logger.Error(err, "failed to publish reminder event")
	}
}

func parseTimeOfDay(value string) (hour, minute int, ok bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
