package medication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/repository"
	apperrors "github.com/medtrack/medtrack-api/pkg/errors"
	"github.com/medtrack/medtrack-api/pkg/validator"
)

type Service struct {
	repo        repository.MedicationRepository
	logRepo     repository.MedicationLogRepository
	renewalRepo repository.RenewalRepository
	schedules   *validator.ScheduleValidator
}

func NewService(repo repository.MedicationRepository, logRepo repository.MedicationLogRepository, renewalRepo repository.RenewalRepository) *Service {
	return &Service{
		repo:        repo,
		logRepo:     logRepo,
		renewalRepo: renewalRepo,
		schedules:   validator.NewScheduleValidator(),
	}
}

func (s *Service) ListMedications(ctx context.Context, userID uuid.UUID) ([]*model.Medication, error) {
	medications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}

func (s *Service) GetMedication(ctx context.Context, id, userID uuid.UUID) (*model.Medication, error) {
	medication, err := s.repo.Get(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("medication", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return medication, nil
}

func (s *Service) CreateMedication(ctx context.Context, userID uuid.UUID, req *model.CreateMedicationRequest) (*model.Medication, error) {
	if err := s.schedules.Validate(&req.Schedule); err != nil {
		return nil, err
	}

	medication := &model.Medication{
		UserID:       userID,
		Name:         req.Name,
		Dosage:       req.Dosage,
		Frequency:    req.Frequency,
		Schedule:     req.Schedule,
		IsActive:     true,
		Interactions: req.Interactions,
	}
	if req.IsActive != nil {
		medication.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, medication); err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}
	return medication, nil
}

func (s *Service) UpdateMedication(ctx context.Context, id, userID uuid.UUID, req *model.UpdateMedicationRequest) (*model.Medication, error) {
	medication, err := s.GetMedication(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		medication.Name = *req.Name
	}
	if req.Dosage != nil {
		medication.Dosage = *req.Dosage
	}
	if req.Frequency != nil {
		medication.Frequency = *req.Frequency
	}
	if req.Schedule != nil {
		if err := s.schedules.Validate(req.Schedule); err != nil {
			return nil, err
		}
		medication.Schedule = *req.Schedule
	}
	if req.IsActive != nil {
		medication.IsActive = *req.IsActive
	}
	if req.Interactions != nil {
		medication.Interactions = req.Interactions
	}

	if err := s.repo.Update(ctx, medication); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("medication", err)
		}
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}
	return medication, nil
}

func (s *Service) DeleteMedication(ctx context.Context, id, userID uuid.UUID) error {
	err := s.repo.Delete(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("medication", err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	return nil
}

// LogIntake appends one medication-taking event. Logs are immutable once
// written.
func (s *Service) LogIntake(ctx context.Context, medicationID, userID uuid.UUID, req *model.LogIntakeRequest) (*model.MedicationLog, error) {
	if _, err := s.GetMedication(ctx, medicationID, userID); err != nil {
		return nil, err
	}

	log := &model.MedicationLog{
		UserID:        userID,
		MedicationID:  medicationID,
		Status:        req.Status,
		ScheduledTime: req.ScheduledTime,
		TakenTime:     req.TakenTime,
		Notes:         req.Notes,
	}
	if err := s.logRepo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to log intake: %w", err)
	}
	return log, nil
}

func (s *Service) GetLogs(ctx context.Context, medicationID, userID uuid.UUID) ([]*model.MedicationLog, error) {
	if _, err := s.GetMedication(ctx, medicationID, userID); err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListByMedication(ctx, medicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return logs, nil
}

// CheckConflicts scans all of the user's medications regardless of active
// state. Detection never errors on schedule contents; only the load can fail.
func (s *Service) CheckConflicts(ctx context.Context, userID uuid.UUID) ([]model.ScheduleConflict, error) {
	medications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return DetectConflicts(medications), nil
}

func (s *Service) CheckInteractions(ctx context.Context, userID uuid.UUID) ([]model.InteractionWarning, error) {
	medications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return DetectInteractions(medications), nil
}

func (s *Service) RequestRenewal(ctx context.Context, medicationID, userID uuid.UUID, message string) (*model.RenewalRequest, error) {
	if _, err := s.GetMedication(ctx, medicationID, userID); err != nil {
		return nil, err
	}

	renewal := &model.RenewalRequest{
		MedicationID: medicationID,
		UserID:       userID,
		Status:       model.RenewalStatusPending,
		Message:      message,
	}
	if err := s.renewalRepo.Create(ctx, renewal); err != nil {
		return nil, fmt.Errorf("failed to create renewal request: %w", err)
	}
	return renewal, nil
}

func (s *Service) ListRenewals(ctx context.Context, medicationID, userID uuid.UUID) ([]*model.RenewalRequest, error) {
	if _, err := s.GetMedication(ctx, medicationID, userID); err != nil {
		return nil, err
	}

	renewals, err := s.renewalRepo.ListByMedication(ctx, medicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list renewal requests: %w", err)
	}
	return renewals, nil
}

// RespondToRenewal records an answer on the caller's own renewal request.
// Requests filed by other users are indistinguishable from missing ones.
func (s *Service) RespondToRenewal(ctx context.Context, renewalID, userID uuid.UUID, req *model.UpdateRenewalRequest) (*model.RenewalRequest, error) {
	renewal, err := s.renewalRepo.Get(ctx, renewalID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("renewal request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get renewal request: %w", err)
	}

	if req.Status != "" {
		renewal.Status = req.Status
	}
	if req.Response != "" {
		renewal.Response = req.Response
	}
	now := time.Now()
	renewal.RespondedAt = &now

	if err := s.renewalRepo.Update(ctx, renewal); err != nil {
		return nil, fmt.Errorf("failed to update renewal request: %w", err)
	}
	return renewal, nil
}

func (s *Service) ListUserRenewals(ctx context.Context, userID uuid.UUID) ([]*model.RenewalRequest, error) {
	renewals, err := s.renewalRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list renewal requests: %w", err)
	}
	return renewals, nil
}
