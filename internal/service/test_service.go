package service

import (
	"context"
	"errors"
	"time"

	"labqc/internal/model"
	"labqc/internal/repository"
	"labqc/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateTestResultRequest struct {
	SampleBatchNumber string  `json:"sample_batch_number" binding:"required"`
	Parameter         string  `json:"parameter" binding:"required"`
	Value             float64 `json:"value"`
	Unit              string  `json:"unit" binding:"required"`
	Status            string  `json:"status" binding:"required"`
	Notes             string  `json:"notes"`
}

// UpdateTestResultRequest is a partial merge; nil fields are left unchanged.
type UpdateTestResultRequest struct {
	Value  *float64 `json:"value"`
	Unit   *string  `json:"unit"`
	Status *string  `json:"status"`
	Notes  *string  `json:"notes"`
}

// --- Interface ---

type TestResultService interface {
	Create(ctx context.Context, req CreateTestResultRequest, caller model.Identity) (*model.TestResult, error)
	GetByID(ctx context.Context, id uuid.UUID, caller model.Identity) (*model.TestResult, error)
	ListBySample(ctx context.Context, batchNumber string, caller model.Identity) ([]model.TestResult, error)
	ListByUser(ctx context.Context, employeeID string, page, limit int) ([]model.TestResult, int64, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateTestResultRequest, caller model.Identity) (*model.TestResult, error)
	Delete(ctx context.Context, id uuid.UUID, caller model.Identity) error
}

type testResultService struct {
	tests    repository.TestResultRepository
	samples  repository.SampleRepository
	notifier Notifier
}

func NewTestResultService(
	tests repository.TestResultRepository,
	samples repository.SampleRepository,
	notifier Notifier,
) TestResultService {
	return &testResultService{tests: tests, samples: samples, notifier: notifier}
}

// --- Implementation ---

// Create runs its preconditions in a fixed order; the first failure wins:
// sample exists, caller is chemist-tier, no duplicate parameter on the
// sample, then structural validity of value/unit/status.
func (s *testResultService) Create(ctx context.Context, req CreateTestResultRequest, caller model.Identity) (*model.TestResult, error) {
	if _, err := s.samples.GetByBatchNumber(ctx, req.SampleBatchNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sample %s not found", req.SampleBatchNumber)
		}
		return nil, err
	}

	if !caller.Role.In(model.QCTier) {
		return nil, apperror.Forbidden("role %s may not enter test results", caller.Role)
	}

	parameter := model.TestParameter(req.Parameter)
	exists, err := s.tests.ExistsForParameter(ctx, req.SampleBatchNumber, parameter)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("test result for parameter %s already exists on sample %s",
			req.Parameter, req.SampleBatchNumber)
	}

	if !parameter.Valid() {
		return nil, apperror.Validation("unknown test parameter %q", req.Parameter)
	}
	unit := model.Unit(req.Unit)
	if !unit.Valid() {
		return nil, apperror.Validation("unknown unit %q", req.Unit)
	}
	status := model.TestStatus(req.Status)
	if !status.Valid() {
		return nil, apperror.Validation("unknown test status %q", req.Status)
	}

	result := &model.TestResult{
		SampleBatchNumber: req.SampleBatchNumber,
		Parameter:         parameter,
		Value:             req.Value,
		Unit:              unit,
		Status:            status,
		Notes:             req.Notes,
		EnteredBy:         caller.EmployeeID,
		EnteredAt:         time.Now().UTC(),
	}

	if err := s.tests.Create(ctx, result); err != nil {
		// The composite unique index backs the creation-time check against
		// a concurrent insert of the same (sample, parameter).
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("test result for parameter %s already exists on sample %s",
				req.Parameter, req.SampleBatchNumber)
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish("test.created", result)
	}
	return result, nil
}

func (s *testResultService) GetByID(ctx context.Context, id uuid.UUID, caller model.Identity) (*model.TestResult, error) {
	result, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("test result %s not found", id)
		}
		return nil, err
	}
	if !caller.Role.In(model.QCTier) {
		return nil, apperror.Forbidden("role %s may not read test results", caller.Role)
	}
	return result, nil
}

func (s *testResultService) ListBySample(ctx context.Context, batchNumber string, caller model.Identity) ([]model.TestResult, error) {
	sample, err := s.samples.GetByBatchNumber(ctx, batchNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sample %s not found", batchNumber)
		}
		return nil, err
	}
	if !caller.Role.In(model.OversightTier) && sample.AssignedTo != caller.EmployeeID {
		return nil, apperror.Forbidden("not authorized to access sample %s", batchNumber)
	}
	return s.tests.ListBySample(ctx, batchNumber)
}

func (s *testResultService) ListByUser(ctx context.Context, employeeID string, page, limit int) ([]model.TestResult, int64, error) {
	return s.tests.ListByUser(ctx, employeeID, page, limit)
}

func (s *testResultService) Update(ctx context.Context, id uuid.UUID, req UpdateTestResultRequest, caller model.Identity) (*model.TestResult, error) {
	result, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("test result %s not found", id)
		}
		return nil, err
	}
	if !caller.Role.In(model.QCTier) {
		return nil, apperror.Forbidden("role %s may not update test results", caller.Role)
	}

	if req.Value != nil {
		result.Value = *req.Value
	}
	if req.Unit != nil {
		unit := model.Unit(*req.Unit)
		if !unit.Valid() {
			return nil, apperror.Validation("unknown unit %q", *req.Unit)
		}
		result.Unit = unit
	}
	if req.Status != nil {
		status := model.TestStatus(*req.Status)
		if !status.Valid() {
			return nil, apperror.Validation("unknown test status %q", *req.Status)
		}
		result.Status = status
	}
	if req.Notes != nil {
		result.Notes = *req.Notes
	}

	if err := s.tests.Update(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *testResultService) Delete(ctx context.Context, id uuid.UUID, caller model.Identity) error {
	result, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("test result %s not found", id)
		}
		return err
	}
	if !caller.Role.In(model.QCTier) {
		return apperror.Forbidden("role %s may not delete test results", caller.Role)
	}
	return s.tests.Delete(ctx, result.ID)
}
