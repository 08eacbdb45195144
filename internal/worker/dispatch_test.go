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

type fakeDispatchStore struct {
	fakeReminderStore
	due  []*model.Reminder
	sent []uuid.UUID
}

func (f *fakeDispatchStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	return f.due, nil
}

func (f *fakeDispatchStore) MarkSent(ctx context.Context, id uuid.UUID) error {
	f.sent = append(f.sent, id)
	return nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserStore) Create(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserStore) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}
func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

type fakeEmailService struct {
	sent    []string
	failFor string
}

func (f *fakeEmailService) SendReminder(ctx context.Context, to, medicationName, scheduledTime string) error {
	if to == f.failFor {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeEmailService) SendCustom(ctx context.Context, to, subject, body string) error {
	return nil
}

func dueReminder(userID uuid.UUID) *model.Reminder {
	return &model.Reminder{
		ID:            uuid.New(),
		UserID:        userID,
		MedicationID:  uuid.New(),
		ScheduledTime: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Status:        model.ReminderStatusPending,
		Type:          model.ReminderTypeMedication,
	}
}

func TestDispatchDue_DeliversAndMarksSent(t *testing.T) {
	userID := uuid.New()
	r := dueReminder(userID)
	store := &fakeDispatchStore{due: []*model.Reminder{r}}
	users := &fakeUserStore{users: map[uuid.UUID]*model.User{
		userID: {Base: model.Base{ID: userID}, Email: "user@example.com"},
	}}
	emails := &fakeEmailService{}

	d := NewReminderDispatcher(store, &fakeMedicationRepo{}, users, emails,
		&logger.Logger{ZL: zerolog.Nop()}, nil, DispatcherConfig{})

	require.NoError(t, d.dispatchDue(context.Background()))

	assert.Equal(t, []string{"user@example.com"}, emails.sent)
	assert.Equal(t, []uuid.UUID{r.ID}, store.sent)
}

func TestDispatchDue_FailedDeliveryIsNotMarkedSent(t *testing.T) {
	failingUser := uuid.New()
	okUser := uuid.New()
	failing := dueReminder(failingUser)
	healthy := dueReminder(okUser)
	store := &fakeDispatchStore{due: []*model.Reminder{failing, healthy}}
	users := &fakeUserStore{users: map[uuid.UUID]*model.User{
		failingUser: {Base: model.Base{ID: failingUser}, Email: "down@example.com"},
		okUser:      {Base: model.Base{ID: okUser}, Email: "up@example.com"},
	}}
	emails := &fakeEmailService{failFor: "down@example.com"}

	d := NewReminderDispatcher(store, &fakeMedicationRepo{}, users, emails,
		&logger.Logger{ZL: zerolog.Nop()}, nil, DispatcherConfig{})

	require.NoError(t, d.dispatchDue(context.Background()))

	// The failed reminder stays due and will be retried next pass.
	assert.Equal(t, []uuid.UUID{healthy.ID}, store.sent)
	assert.Equal(t, []string{"up@example.com"}, emails.sent)
}

func TestDispatchDue_UnknownUserSkipsReminder(t *testing.T) {
	r := dueReminder(uuid.New())
	store := &fakeDispatchStore{due: []*model.Reminder{r}}
	users := &fakeUserStore{users: map[uuid.UUID]*model.User{}}
	emails := &fakeEmailService{}

	d := NewReminderDispatcher(store, &fakeMedicationRepo{}, users, emails,
		&logger.Logger{ZL: zerolog.Nop()}, nil, DispatcherConfig{})

	require.NoError(t, d.dispatchDue(context.Background()))

	assert.Empty(t, store.sent)
	assert.Empty(t, emails.sent)
}
