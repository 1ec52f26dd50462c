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

// CreateRequestInput carries a new inter-department request. The direction
// (to QC or from QC) is fixed by the endpoint, not by the payload; the
// non-QC department name comes from the payload or the caller.
type CreateRequestInput struct {
	SampleBatchNumber string `json:"sample_batch_number" binding:"required"`
	RequestedBy       string `json:"requested_by" binding:"required"` // must equal the caller
	Type              string `json:"type" binding:"required"`
	Department        string `json:"department"` // counterpart department; caller's own when empty
}

// RequestDirection selects which way a request crosses the QC boundary.
type RequestDirection int

const (
	// DirectionToQC is a request from another department into the QC lab.
	DirectionToQC RequestDirection = iota
	// DirectionFromQC is a request from the QC lab to another department.
	DirectionFromQC
)

// --- Interface ---

type RequestService interface {
	Create(ctx context.Context, direction RequestDirection, input CreateRequestInput, caller model.Identity) (*model.Request, error)
	GetByID(ctx context.Context, id uuid.UUID, caller model.Identity) (*model.Request, error)
	ListToQC(ctx context.Context, caller model.Identity, page, limit int) ([]model.Request, int64, error)
	ListFromQC(ctx context.Context, caller model.Identity, page, limit int) ([]model.Request, int64, error)
	ListMine(ctx context.Context, caller model.Identity) ([]model.Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string, caller model.Identity) (*model.Request, error)
}

type requestService struct {
	requests repository.RequestRepository
	samples  repository.SampleRepository
	notifier Notifier
}

func NewRequestService(
	requests repository.RequestRepository,
	samples repository.SampleRepository,
	notifier Notifier,
) RequestService {
	return &requestService{requests: requests, samples: samples, notifier: notifier}
}

// --- Implementation ---

// Create validates, in order: the requester attribution (a caller may never
// file a request as someone else — checked before the role gate), the
// direction-specific role gate, the request type, and the referenced sample.
func (s *requestService) Create(ctx context.Context, direction RequestDirection, input CreateRequestInput, caller model.Identity) (*model.Request, error) {
	if input.RequestedBy != caller.EmployeeID {
		return nil, apperror.Forbidden("requested_by must match the authenticated caller")
	}

	switch direction {
	case DirectionToQC:
		if !caller.Role.In(model.RequesterTier) {
			return nil, apperror.Forbidden("role %s may not create requests to the QC department", caller.Role)
		}
	case DirectionFromQC:
		if !caller.Role.In(model.QCTier) {
			return nil, apperror.Forbidden("role %s may not create requests from the QC department", caller.Role)
		}
	default:
		return nil, apperror.Validation("unknown request direction")
	}

	reqType := model.RequestType(input.Type)
	if !reqType.Valid() {
		return nil, apperror.Validation("unknown request type %q", input.Type)
	}

	if _, err := s.samples.GetByBatchNumber(ctx, input.SampleBatchNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sample %s not found", input.SampleBatchNumber)
		}
		return nil, err
	}

	counterpart := input.Department
	if counterpart == "" {
		counterpart = caller.Department
	}

	request := &model.Request{
		SampleBatchNumber: input.SampleBatchNumber,
		RequestedBy:       caller.EmployeeID,
		Type:              reqType,
		Status:            model.RequestPending,
	}
	if direction == DirectionToQC {
		request.SourceDepartment = counterpart
		request.TargetDepartment = model.DepartmentQC
	} else {
		request.SourceDepartment = model.DepartmentQC
		request.TargetDepartment = counterpart
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish("request.created", request)
	}
	return request, nil
}

func (s *requestService) GetByID(ctx context.Context, id uuid.UUID, caller model.Identity) (*model.Request, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("request %s not found", id)
		}
		return nil, err
	}
	if !s.canView(caller, request) {
		return nil, apperror.Forbidden("not authorized to access request %s", id)
	}
	return request, nil
}

// ListToQC is visible to QC-tier roles: they are the audience of inbound
// requests.
func (s *requestService) ListToQC(ctx context.Context, caller model.Identity, page, limit int) ([]model.Request, int64, error) {
	if !caller.Role.In(model.QCTier) {
		return nil, 0, apperror.Forbidden("role %s may not list requests to the QC department", caller.Role)
	}
	return s.requests.ListToQC(ctx, page, limit)
}

// ListFromQC is visible to the requester tier: outbound QC requests are
// addressed to them.
func (s *requestService) ListFromQC(ctx context.Context, caller model.Identity, page, limit int) ([]model.Request, int64, error) {
	if !caller.Role.In(model.RequesterTier) {
		return nil, 0, apperror.Forbidden("role %s may not list requests from the QC department", caller.Role)
	}
	return s.requests.ListFromQC(ctx, page, limit)
}

func (s *requestService) ListMine(ctx context.Context, caller model.Identity) ([]model.Request, error) {
	return s.requests.ListByRequester(ctx, caller.EmployeeID)
}

// UpdateStatus applies a caller-supplied transition. Terminal states accept
// no further transitions and pending→pending is rejected as a no-op.
func (s *requestService) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string, caller model.Identity) (*model.Request, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("request %s not found", id)
		}
		return nil, err
	}

	if !caller.Role.In(model.QCTier) {
		return nil, apperror.Forbidden("role %s may not update request status", caller.Role)
	}

	target := model.RequestStatus(newStatus)
	if !target.Valid() {
		return nil, apperror.Validation("unknown request status %q", newStatus)
	}
	if request.Status.Terminal() {
		return nil, apperror.Conflict("request %s is already %s", id, request.Status)
	}
	if target == request.Status {
		return nil, apperror.Validation("request %s is already %s", id, target)
	}

	request.Status = target
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish("request.status_changed", request)
	}
	return request, nil
}

// canView mirrors the listing gates: QC tier sees inbound requests, the
// requester tier sees outbound ones, and a requester always sees their own.
func (s *requestService) canView(caller model.Identity, request *model.Request) bool {
	if request.RequestedBy == caller.EmployeeID {
		return true
	}
	if request.ToQC() && caller.Role.In(model.QCTier) {
		return true
	}
	if request.FromQC() && caller.Role.In(model.RequesterTier) {
		return true
	}
	return false
}
