package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medtrack/medtrack-api/internal/email"
	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/repository"
	"github.com/medtrack/medtrack-api/pkg/logger"
	"github.com/medtrack/medtrack-api/pkg/metrics"
)

// ReminderDispatcher delivers due reminders and moves them to "sent". It is
// the delivery mechanism the lifecycle treats as external: users never set
// "sent" themselves. Snoozed reminders come back through here once their
// rewritten time is due.
type ReminderDispatcher struct {
	reminderRepo   repository.ReminderRepository
	medicationRepo repository.MedicationRepository
	userRepo       repository.UserRepository
	emailSvc       email.Service
	logger         *logger.Logger
	metrics        *metrics.Metrics
	pollInterval   time.Duration
	batchSize      int
	now            func() time.Time
}

type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

func NewReminderDispatcher(
	reminderRepo repository.ReminderRepository,
	medicationRepo repository.MedicationRepository,
	userRepo repository.UserRepository,
	emailSvc email.Service,
	logger *logger.Logger,
	m *metrics.Metrics,
	cfg DispatcherConfig,
) *ReminderDispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &ReminderDispatcher{
		reminderRepo:   reminderRepo,
		medicationRepo: medicationRepo,
		userRepo:       userRepo,
		emailSvc:       emailSvc,
		logger:         logger,
		metrics:        m,
		pollInterval:   cfg.PollInterval,
		batchSize:      cfg.BatchSize,
		now:            time.Now,
	}
}

func (d *ReminderDispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	d.logger.Info("reminder dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("reminder dispatcher shutting down")
			return
		case <-ticker.C:
			if err := d.dispatchDue(ctx); err != nil {
				d.logger.Error(err, "reminder dispatch pass failed")
			}
		}
	}
}

func (d *ReminderDispatcher) dispatchDue(ctx context.Context) error {
	if d.metrics != nil {
		timer := prometheus.NewTimer(d.metrics.DispatchDuration)
		defer timer.ObserveDuration()
	}

	due, err := d.reminderRepo.ListDue(ctx, d.now(), d.batchSize)
	if err != nil {
		return err
	}

	for _, reminder := range due {
		if err := d.deliver(ctx, reminder); err != nil {
			if d.metrics != nil {
				d.metrics.RemindersDispatched.WithLabelValues("failed").Inc()
			}
			d.logger.ZL.Error().
				Err(err).
				Str("reminder_id", reminder.ID.String()).
				Msg("failed to deliver reminder, continuing")
			continue
		}
		if d.metrics != nil {
			d.metrics.RemindersDispatched.WithLabelValues("sent").Inc()
		}
	}
	return nil
}

func (d *ReminderDispatcher) deliver(ctx context.Context, reminder *model.Reminder) error {
	user, err := d.userRepo.Get(ctx, reminder.UserID)
	if err != nil {
		return err
	}

	medicationName := "your medication"
	if med, err := d.medicationRepo.Get(ctx, reminder.MedicationID, reminder.UserID); err == nil {
		medicationName = med.Name
	}

	if d.emailSvc != nil {
		when := reminder.ScheduledTime.Format(time.RFC3339)
		if err := d.emailSvc.SendReminder(ctx, user.Email, medicationName, when); err != nil {
			return err
		}
	}

	return d.reminderRepo.MarkSent(ctx, reminder.ID)
}
