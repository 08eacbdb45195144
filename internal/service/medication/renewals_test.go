package medication

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/repository"
	apperrors "github.com/medtrack/medtrack-api/pkg/errors"
)

type fakeMedicationStore struct {
	meds map[uuid.UUID]*model.Medication
}

func (f *fakeMedicationStore) Create(ctx context.Context, m *model.Medication) error { return nil }

func (f *fakeMedicationStore) Get(ctx context.Context, id, userID uuid.UUID) (*model.Medication, error) {
	m, ok := f.meds[id]
	if !ok || m.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeMedicationStore) Update(ctx context.Context, m *model.Medication) error { return nil }
func (f *fakeMedicationStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return nil
}
func (f *fakeMedicationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Medication, error) {
	return nil, nil
}
func (f *fakeMedicationStore) ListActive(ctx context.Context) ([]*model.Medication, error) {
	return nil, nil
}

type fakeLogStore struct{}

func (f *fakeLogStore) Create(ctx context.Context, log *model.MedicationLog) error { return nil }
func (f *fakeLogStore) ListByUser(ctx context.Context, userID uuid.UUID, filters *model.LogFilters) ([]*model.MedicationLog, error) {
	return nil, nil
}
func (f *fakeLogStore) ListByMedication(ctx context.Context, medicationID, userID uuid.UUID) ([]*model.MedicationLog, error) {
	return nil, nil
}

type fakeRenewalRepo struct {
	renewals    map[uuid.UUID]*model.RenewalRequest
	updateCalls int
}

func newFakeRenewalRepo(renewals ...*model.RenewalRequest) *fakeRenewalRepo {
	repo := &fakeRenewalRepo{renewals: map[uuid.UUID]*model.RenewalRequest{}}
	for _, r := range renewals {
		repo.renewals[r.ID] = r
	}
	return repo
}

func (f *fakeRenewalRepo) Create(ctx context.Context, renewal *model.RenewalRequest) error {
	renewal.ID = uuid.New()
	f.renewals[renewal.ID] = renewal
	return nil
}

func (f *fakeRenewalRepo) Get(ctx context.Context, id, userID uuid.UUID) (*model.RenewalRequest, error) {
	r, ok := f.renewals[id]
	if !ok || r.UserID != userID {
		return nil, repository.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRenewalRepo) ListByMedication(ctx context.Context, medicationID uuid.UUID) ([]*model.RenewalRequest, error) {
	out := []*model.RenewalRequest{}
	for _, r := range f.renewals {
		if r.MedicationID == medicationID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRenewalRepo) Update(ctx context.Context, renewal *model.RenewalRequest) error {
	existing, ok := f.renewals[renewal.ID]
	if !ok || existing.UserID != renewal.UserID {
		return repository.ErrNotFound
	}
	f.updateCalls++
	f.renewals[renewal.ID] = renewal
	return nil
}

func (f *fakeRenewalRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.RenewalRequest, error) {
	out := []*model.RenewalRequest{}
	for _, r := range f.renewals {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func pendingRenewal(userID uuid.UUID) *model.RenewalRequest {
	return &model.RenewalRequest{
		ID:           uuid.New(),
		MedicationID: uuid.New(),
		UserID:       userID,
		Status:       model.RenewalStatusPending,
		Message:      "running low",
	}
}

func newRenewalService(renewals *fakeRenewalRepo, meds *fakeMedicationStore) *Service {
	if meds == nil {
		meds = &fakeMedicationStore{meds: map[uuid.UUID]*model.Medication{}}
	}
	return NewService(meds, &fakeLogStore{}, renewals)
}

func TestRespondToRenewal_OwnerRecordsResponse(t *testing.T) {
	userID := uuid.New()
	renewal := pendingRenewal(userID)
	repo := newFakeRenewalRepo(renewal)
	svc := newRenewalService(repo, nil)

	updated, err := svc.RespondToRenewal(context.Background(), renewal.ID, userID, &model.UpdateRenewalRequest{
		Status:   model.RenewalStatusApproved,
		Response: "refill sent to pharmacy",
	})

	require.NoError(t, err)
	assert.Equal(t, model.RenewalStatusApproved, updated.Status)
	assert.Equal(t, "refill sent to pharmacy", updated.Response)
	assert.NotNil(t, updated.RespondedAt)
	assert.Equal(t, 1, repo.updateCalls)
}

func TestRespondToRenewal_OtherUsersRequestLooksMissing(t *testing.T) {
	renewal := pendingRenewal(uuid.New())
	repo := newFakeRenewalRepo(renewal)
	svc := newRenewalService(repo, nil)

	_, err := svc.RespondToRenewal(context.Background(), renewal.ID, uuid.New(), &model.UpdateRenewalRequest{
		Status: model.RenewalStatusApproved,
	})

	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
	assert.Zero(t, repo.updateCalls)
	assert.Equal(t, model.RenewalStatusPending, repo.renewals[renewal.ID].Status)
}

func TestListUserRenewals_ReturnsOnlyCallers(t *testing.T) {
	userID := uuid.New()
	mine := pendingRenewal(userID)
	theirs := pendingRenewal(uuid.New())
	repo := newFakeRenewalRepo(mine, theirs)
	svc := newRenewalService(repo, nil)

	renewals, err := svc.ListUserRenewals(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, renewals, 1)
	assert.Equal(t, mine.ID, renewals[0].ID)
}

func TestRequestRenewal_RequiresOwnedMedication(t *testing.T) {
	ownerID := uuid.New()
	med := &model.Medication{
		Base:   model.Base{ID: uuid.New()},
		UserID: ownerID,
		Name:   "Aspirin",
	}
	meds := &fakeMedicationStore{meds: map[uuid.UUID]*model.Medication{med.ID: med}}
	repo := newFakeRenewalRepo()
	svc := newRenewalService(repo, meds)

	_, err := svc.RequestRenewal(context.Background(), med.ID, uuid.New(), "please renew")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
	assert.Empty(t, repo.renewals)

	renewal, err := svc.RequestRenewal(context.Background(), med.ID, ownerID, "please renew")
	require.NoError(t, err)
	assert.Equal(t, model.RenewalStatusPending, renewal.Status)
}
