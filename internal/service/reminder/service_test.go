package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/repository"
	apperrors "github.com/medtrack/medtrack-api/pkg/errors"
)

type fakeReminderRepo struct {
	reminders map[uuid.UUID]*model.Reminder

	updatedStatus model.ReminderStatus
	updatedTime   *time.Time
	updateCalls   int

	// Number of UpdateStatus calls to fail with ErrDuplicateSlot before
	// accepting one.
	occupiedSlots int
}

func newFakeReminderRepo(reminders ...*model.Reminder) *fakeReminderRepo {
	repo := &fakeReminderRepo{reminders: map[uuid.UUID]*model.Reminder{}}
	for _, r := range reminders {
		repo.reminders[r.ID] = r
	}
	return repo
}

func (f *fakeReminderRepo) CreateIfAbsent(ctx context.Context, reminder *model.Reminder) (bool, error) {
	return true, nil
}

func (f *fakeReminderRepo) Get(ctx context.Context, id, userID uuid.UUID) (*model.Reminder, error) {
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return nil, repository.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReminderRepo) List(ctx context.Context, userID uuid.UUID, filters *model.ReminderFilters) ([]*model.Reminder, error) {
	out := []*model.Reminder{}
	for _, r := range f.reminders {
		if r.UserID == userID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status model.ReminderStatus, scheduledTime *time.Time) error {
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return repository.ErrNotFound
	}
	f.updateCalls++
	f.updatedStatus = status
	f.updatedTime = scheduledTime
	if f.occupiedSlots > 0 {
		f.occupiedSlots--
		return repository.ErrDuplicateSlot
	}
	r.Status = status
	if scheduledTime != nil {
		r.ScheduledTime = *scheduledTime
	}
	return nil
}

func (f *fakeReminderRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	return nil, nil
}

func (f *fakeReminderRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func newTestService(repo *fakeReminderRepo, users *fakeUserRepo, now time.Time) *Service {
	if users == nil {
		users = &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
	}
	svc := NewService(repo, users)
	svc.now = func() time.Time { return now }
	return svc
}

func pendingReminder(userID uuid.UUID) *model.Reminder {
	return &model.Reminder{
		ID:            uuid.New(),
		UserID:        userID,
		MedicationID:  uuid.New(),
		ScheduledTime: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Status:        model.ReminderStatusPending,
		Type:          model.ReminderTypeMedication,
	}
}

func TestUpdateStatus_Acknowledge(t *testing.T) {
	userID := uuid.New()
	r := pendingReminder(userID)
	repo := newFakeReminderRepo(r)
	svc := newTestService(repo, nil, time.Now())

	updated, err := svc.UpdateStatus(context.Background(), r.ID, userID, &model.UpdateReminderRequest{
		Status: model.ReminderStatusAcknowledged,
	})

	require.NoError(t, err)
	assert.Equal(t, model.ReminderStatusAcknowledged, updated.Status)
	assert.Nil(t, repo.updatedTime)
}

func TestUpdateStatus_RejectsDisallowedTargets(t *testing.T) {
	userID := uuid.New()
	r := pendingReminder(userID)
	repo := newFakeReminderRepo(r)
	svc := newTestService(repo, nil, time.Now())

	for _, status := range []model.ReminderStatus{
		model.ReminderStatusPending,
		model.ReminderStatusSent,
		"bogus",
	} {
		_, err := svc.UpdateStatus(context.Background(), r.ID, userID, &model.UpdateReminderRequest{
			Status: status,
		})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition), "status %q should be rejected", status)
	}
	assert.Zero(t, repo.updateCalls)
}

func TestUpdateStatus_TerminalReminderRejectsEverything(t *testing.T) {
	userID := uuid.New()
	for _, terminal := range []model.ReminderStatus{
		model.ReminderStatusAcknowledged,
		model.ReminderStatusMissed,
	} {
		r := pendingReminder(userID)
		r.Status = terminal
		repo := newFakeReminderRepo(r)
		svc := newTestService(repo, nil, time.Now())

		_, err := svc.UpdateStatus(context.Background(), r.ID, userID, &model.UpdateReminderRequest{
			Status: model.ReminderStatusSnoozed,
		})

		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
		assert.Zero(t, repo.updateCalls)
	}
}

func TestUpdateStatus_SnoozeRewritesScheduledTime(t *testing.T) {
	userID := uuid.New()
	r := pendingReminder(userID)
	repo := newFakeReminderRepo(r)
	now := time.Date(2024, 3, 1, 8, 2, 0, 0, time.UTC)
	svc := newTestService(repo, nil, now)

	updated, err := svc.UpdateStatus(context.Background(), r.ID, userID, &model.UpdateReminderRequest{
		Status:        model.ReminderStatusSnoozed,
		SnoozeMinutes: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, model.ReminderStatusSnoozed, updated.Status)
	assert.Equal(t, now.Add(5*time.Minute), updated.ScheduledTime)
}

func TestUpdateStatus_SnoozeDefaultsToTenMinutes(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 3, 1, 8, 2, 0, 0, time.UTC)

	for _, minutes := range []int{0, -5} {
		r := pendingReminder(userID)
		repo := newFakeReminderRepo(r)
		svc := newTestService(repo, nil, now)

		updated, err := svc.UpdateStatus(context.Background(), r.ID, userID, &model.UpdateReminderRequest{
			Status:        model.ReminderStatusSnoozed,
			SnoozeMinutes: minutes,
		})

		require.NoError(t, err)
		assert.Equal(t, now.Add(DefaultSnoozeMinutes*time.Minute), updated.ScheduledTime)
	}
}

func TestUpdateStatus_SnoozeNudgesPastOccupiedSlot(t *testing.T) {
	userID := uuid.New()
	r := pendingReminder(userID)
	repo := newFakeReminderRepo(r)
	repo.occupiedSlots = 1
	now := time.Date(2024, 3, 1, 8, 2, 0, 0, time.UTC)
	svc := newTestService(repo, nil, now)

	updated, err := svc.UpdateStatus(context.Background(), r.ID, userID, &model.UpdateReminderRequest{
		Status:        model.ReminderStatusSnoozed,
		SnoozeMinutes: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, repo.updateCalls)
	assert.Equal(t, now.Add(5*time.Minute+time.Second), updated.ScheduledTime)
}

func TestUpdateStatus_SnoozeGivesUpAfterRepeatedCollisions(t *testing.T) {
	userID := uuid.New()
	r := pendingReminder(userID)
	repo := newFakeReminderRepo(r)
	repo.occupiedSlots = 10
	svc := newTestService(repo, nil, time.Now())

	_, err := svc.UpdateStatus(context.Background(), r.ID, userID, &model.UpdateReminderRequest{
		Status: model.ReminderStatusSnoozed,
	})

	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
	assert.Equal(t, snoozeNudgeAttempts+1, repo.updateCalls)
}

func TestUpdateStatus_NotOwnedLooksMissing(t *testing.T) {
	r := pendingReminder(uuid.New())
	repo := newFakeReminderRepo(r)
	svc := newTestService(repo, nil, time.Now())

	_, err := svc.UpdateStatus(context.Background(), r.ID, uuid.New(), &model.UpdateReminderRequest{
		Status: model.ReminderStatusAcknowledged,
	})

	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestListReminders_LocalizesDisplayTime(t *testing.T) {
	userID := uuid.New()
	r := pendingReminder(userID)
	repo := newFakeReminderRepo(r)
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		userID: {Base: model.Base{ID: userID}, Timezone: "America/New_York"},
	}}
	svc := newTestService(repo, users, time.Now())

	views, err := svc.ListReminders(context.Background(), userID, nil)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "America/New_York", views[0].Timezone)
	// 08:00 UTC in March is 03:00 in New York (EST).
	assert.Equal(t, "2024-03-01T03:00:00-05:00", views[0].ScheduledTimeLocal)
	// The stored scheduled time is untouched.
	assert.Equal(t, r.ScheduledTime, views[0].ScheduledTime)
}

func TestListReminders_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	userID := uuid.New()
	r := pendingReminder(userID)
	repo := newFakeReminderRepo(r)
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		userID: {Base: model.Base{ID: userID}, Timezone: "Not/AZone"},
	}}
	svc := newTestService(repo, users, time.Now())

	views, err := svc.ListReminders(context.Background(), userID, nil)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "UTC", views[0].Timezone)
}
