package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/repository"
	apperrors "github.com/medtrack/medtrack-api/pkg/errors"
)

const DefaultSnoozeMinutes = 10

// How many one-second nudges a snooze gets when its rewritten time lands
// exactly on another reminder's slot.
const snoozeNudgeAttempts = 3

// The only statuses a user may request. Anything else, including "pending"
// and "sent", is rejected without touching the reminder.
var allowedTransitions = map[model.ReminderStatus]bool{
	model.ReminderStatusAcknowledged: true,
	model.ReminderStatusSnoozed:      true,
	model.ReminderStatusMissed:       true,
}

type Service struct {
	repo     repository.ReminderRepository
	userRepo repository.UserRepository
	tzCache  *cache.Cache
	now      func() time.Time
}

func NewService(repo repository.ReminderRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		tzCache:  cache.New(5*time.Minute, 10*time.Minute),
		now:      time.Now,
	}
}

// ListReminders returns the user's reminders decorated with the scheduled
// time rendered in their stored timezone. The localization is display only;
// it has no bearing on when the scheduler fires.
func (s *Service) ListReminders(ctx context.Context, userID uuid.UUID, filters *model.ReminderFilters) ([]model.ReminderView, error) {
	reminders, err := s.repo.List(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	tz := s.userTimezone(ctx, userID)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		tz = "UTC"
		loc = time.UTC
	}

	views := make([]model.ReminderView, 0, len(reminders))
	for _, r := range reminders {
		views = append(views, model.ReminderView{
			Reminder:           *r,
			ScheduledTimeLocal: r.ScheduledTime.In(loc).Format(time.RFC3339),
			Timezone:           tz,
		})
	}
	return views, nil
}

// UpdateStatus drives the reminder lifecycle. Transitions are permitted only
// on reminders owned by the caller and only into the allow-list; terminal
// reminders reject every request. Snoozing rewrites the scheduled time to
// now plus the requested minutes (default 10 when missing or non-positive)
// on the same record, so the scheduler's uniqueness check will not
// regenerate it. A rewritten time that lands on an occupied slot is nudged
// forward a second at a time before the snooze is rejected.
func (s *Service) UpdateStatus(ctx context.Context, id, userID uuid.UUID, req *model.UpdateReminderRequest) (*model.Reminder, error) {
	if !allowedTransitions[req.Status] {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("status %q is not a permitted transition", req.Status))
	}

	reminder, err := s.repo.Get(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("reminder", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}

	if reminder.Status.Terminal() {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("reminder is already %s", reminder.Status))
	}

	var newTime *time.Time
	if req.Status == model.ReminderStatusSnoozed {
		minutes := req.SnoozeMinutes
		if minutes <= 0 {
			minutes = DefaultSnoozeMinutes
		}
		t := s.now().Add(time.Duration(minutes) * time.Minute)
		newTime = &t
	}

	for attempt := 0; ; attempt++ {
		err := s.repo.UpdateStatus(ctx, id, userID, req.Status, newTime)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateSlot) && newTime != nil && attempt < snoozeNudgeAttempts {
			t := newTime.Add(time.Second)
			newTime = &t
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("reminder", err)
		}
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return nil, apperrors.InvalidTransition("snoozed time collides with an existing reminder")
		}
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	reminder.Status = req.Status
	if newTime != nil {
		reminder.ScheduledTime = *newTime
	}
	return reminder, nil
}

func (s *Service) userTimezone(ctx context.Context, userID uuid.UUID) string {
	key := userID.String()
	if tz, found := s.tzCache.Get(key); found {
		return tz.(string)
	}

	tz := "UTC"
	if user, err := s.userRepo.Get(ctx, userID); err == nil && user.Timezone != "" {
		tz = user.Timezone
	}
	s.tzCache.Set(key, tz, cache.DefaultExpiration)
	return tz
}
