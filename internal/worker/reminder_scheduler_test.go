package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/repository"
	"github.com/medtrack/medtrack-api/pkg/logger"
)

type fakeMedicationRepo struct {
	active  []*model.Medication
	listErr error
}

func (f *fakeMedicationRepo) Create(ctx context.Context, m *model.Medication) error { return nil }
func (f *fakeMedicationRepo) Get(ctx context.Context, id, userID uuid.UUID) (*model.Medication, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeMedicationRepo) Update(ctx context.Context, m *model.Medication) error    { return nil }
func (f *fakeMedicationRepo) Delete(ctx context.Context, id, userID uuid.UUID) error   { return nil }
func (f *fakeMedicationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Medication, error) {
	return nil, nil
}
func (f *fakeMedicationRepo) ListActive(ctx context.Context) ([]*model.Medication, error) {
	return f.active, f.listErr
}

type createdKey struct {
	medicationID uuid.UUID
	scheduled    time.Time
}

type fakeReminderStore struct {
	created map[createdKey]bool
	failFor uuid.UUID
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{created: map[createdKey]bool{}}
}

func (f *fakeReminderStore) CreateIfAbsent(ctx context.Context, r *model.Reminder) (bool, error) {
	if r.MedicationID == f.failFor {
		return false, errors.New("insert failed")
	}
	key := createdKey{medicationID: r.MedicationID, scheduled: r.ScheduledTime}
	if f.created[key] {
		return false, nil
	}
	f.created[key] = true
	return true, nil
}

func (f *fakeReminderStore) Get(ctx context.Context, id, userID uuid.UUID) (*model.Reminder, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeReminderStore) List(ctx context.Context, userID uuid.UUID, filters *model.ReminderFilters) ([]*model.Reminder, error) {
	return nil, nil
}
func (f *fakeReminderStore) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status model.ReminderStatus, scheduledTime *time.Time) error {
	return nil
}
func (f *fakeReminderStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	return nil, nil
}
func (f *fakeReminderStore) MarkSent(ctx context.Context, id uuid.UUID) error { return nil }

func activeMedication(days, times []string) *model.Medication {
	return &model.Medication{
		Base:   model.Base{ID: uuid.New()},
		UserID: uuid.New(),
		Name:   "Aspirin",
		Schedule: model.Schedule{
			Type:  model.ScheduleTypeFixed,
			Days:  days,
			Times: times,
		},
		IsActive: true,
	}
}

func newTestScheduler(meds *fakeMedicationRepo, reminders *fakeReminderStore, now time.Time) *ReminderScheduler {
	s := NewReminderScheduler(meds, reminders, nil, &logger.Logger{ZL: zerolog.Nop()}, nil)
	s.now = func() time.Time { return now }
	return s
}

// Friday 2024-03-01 08:00:30 UTC; the tick truncates to 08:00.
var tickTime = time.Date(2024, 3, 1, 8, 0, 30, 0, time.UTC)

func TestTick_CreatesReminderForMatchingSlot(t *testing.T) {
	med := activeMedication([]string{"Friday"}, []string{"08:00"})
	meds := &fakeMedicationRepo{active: []*model.Medication{med}}
	store := newFakeReminderStore()
	s := newTestScheduler(meds, store, tickTime)

	require.NoError(t, s.Tick(context.Background()))

	key := createdKey{medicationID: med.ID, scheduled: tickTime.Truncate(time.Minute)}
	assert.True(t, store.created[key])
	assert.Len(t, store.created, 1)
}

func TestTick_RepeatedTicksSameMinuteAreIdempotent(t *testing.T) {
	med := activeMedication([]string{"Friday"}, []string{"08:00"})
	meds := &fakeMedicationRepo{active: []*model.Medication{med}}
	store := newFakeReminderStore()
	s := newTestScheduler(meds, store, tickTime)

	require.NoError(t, s.Tick(context.Background()))
	require.NoError(t, s.Tick(context.Background()))
	require.NoError(t, s.Tick(context.Background()))

	assert.Len(t, store.created, 1)
}

func TestTick_SkipsNonMatchingSlots(t *testing.T) {
	otherDay := activeMedication([]string{"Monday"}, []string{"08:00"})
	otherTime := activeMedication([]string{"Friday"}, []string{"08:01"})
	meds := &fakeMedicationRepo{active: []*model.Medication{otherDay, otherTime}}
	store := newFakeReminderStore()
	s := newTestScheduler(meds, store, tickTime)

	require.NoError(t, s.Tick(context.Background()))

	assert.Empty(t, store.created)
}

func TestTick_SkipsNonFixedAndEmptySchedules(t *testing.T) {
	interval := activeMedication([]string{"Friday"}, []string{"08:00"})
	interval.Schedule.Type = model.ScheduleTypeInterval
	noDays := activeMedication(nil, []string{"08:00"})
	noTimes := activeMedication([]string{"Friday"}, nil)
	meds := &fakeMedicationRepo{active: []*model.Medication{interval, noDays, noTimes}}
	store := newFakeReminderStore()
	s := newTestScheduler(meds, store, tickTime)

	require.NoError(t, s.Tick(context.Background()))

	assert.Empty(t, store.created)
}

func TestTick_MalformedTimeDoesNotAbortOthers(t *testing.T) {
	med := activeMedication([]string{"Friday"}, []string{"8am", "25:00", "08:00"})
	meds := &fakeMedicationRepo{active: []*model.Medication{med}}
	store := newFakeReminderStore()
	s := newTestScheduler(meds, store, tickTime)

	require.NoError(t, s.Tick(context.Background()))

	assert.Len(t, store.created, 1)
}

func TestTick_FailedMedicationDoesNotAbortScan(t *testing.T) {
	failing := activeMedication([]string{"Friday"}, []string{"08:00"})
	healthy := activeMedication([]string{"Friday"}, []string{"08:00"})
	meds := &fakeMedicationRepo{active: []*model.Medication{failing, healthy}}
	store := newFakeReminderStore()
	store.failFor = failing.ID
	s := newTestScheduler(meds, store, tickTime)

	require.NoError(t, s.Tick(context.Background()))

	key := createdKey{medicationID: healthy.ID, scheduled: tickTime.Truncate(time.Minute)}
	assert.True(t, store.created[key])
}

func TestTick_ListFailureFailsTheTick(t *testing.T) {
	meds := &fakeMedicationRepo{listErr: errors.New("db down")}
	s := newTestScheduler(meds, newFakeReminderStore(), tickTime)

	assert.Error(t, s.Tick(context.Background()))
}

func TestParseTimeOfDay(t *testing.T) {
	hour, minute, ok := parseTimeOfDay("08:30")
	require.True(t, ok)
	assert.Equal(t, 8, hour)
	assert.Equal(t, 30, minute)

	for _, bad := range []string{"", "8am", "24:00", "08:60", "08", "08:30:00", "-1:00"} {
		_, _, ok := parseTimeOfDay(bad)
		assert.False(t, ok, "expected %q to be rejected", bad)
	}
}
