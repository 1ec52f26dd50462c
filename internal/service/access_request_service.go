package service

import (
	"context"
	"errors"

	"labqc/internal/model"
	"labqc/internal/repository"
	"labqc/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateAccessRequestInput struct {
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	EmployeeID string `json:"employee_id" binding:"required"`
	Reason     string `json:"reason"`
}

// --- Interface ---

// AccessRequestService handles registration intake: prospective users file
// a request, the admin tier reviews it. Account creation on approval goes
// through UserService separately.
type AccessRequestService interface {
	Create(ctx context.Context, input CreateAccessRequestInput) (*model.AccessRequest, error)
	List(ctx context.Context, caller model.Identity) ([]model.AccessRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string, caller model.Identity) (*model.AccessRequest, error)
}

type accessRequestService struct {
	requests repository.AccessRequestRepository
}

func NewAccessRequestService(requests repository.AccessRequestRepository) AccessRequestService {
	return &accessRequestService{requests: requests}
}

// --- Implementation ---

// Create is unauthenticated: it is the front door for people without an
// account.
func (s *accessRequestService) Create(ctx context.Context, input CreateAccessRequestInput) (*model.AccessRequest, error) {
	request := &model.AccessRequest{
		FullName:   input.FullName,
		Email:      input.Email,
		EmployeeID: input.EmployeeID,
		Reason:     input.Reason,
		Status:     model.RequestPending,
	}

	if err := s.requests.Create(ctx, request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("an access request for %s already exists", input.EmployeeID)
		}
		return nil, err
	}
	return request, nil
}

func (s *accessRequestService) List(ctx context.Context, caller model.Identity) ([]model.AccessRequest, error) {
	if !caller.Role.In(model.AdminTier) {
		return nil, apperror.Forbidden("role %s may not list access requests", caller.Role)
	}
	return s.requests.List(ctx)
}

func (s *accessRequestService) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string, caller model.Identity) (*model.AccessRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("access request %s not found", id)
		}
		return nil, err
	}

	if !caller.Role.In(model.AdminTier) {
		return nil, apperror.Forbidden("role %s may not review access requests", caller.Role)
	}

	target := model.RequestStatus(newStatus)
	if !target.Valid() {
		return nil, apperror.Validation("unknown status %q", newStatus)
	}
	if request.Status.Terminal() {
		return nil, apperror.Conflict("access request %s is already %s", id, request.Status)
	}
	if target == request.Status {
		return nil, apperror.Validation("access request %s is already %s", id, target)
	}

	request.Status = target
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}
