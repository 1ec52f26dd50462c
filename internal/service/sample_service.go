package service

import (
	"context"
	"errors"
	"log"
	"time"

	"labqc/internal/blobstore"
	"labqc/internal/model"
	"labqc/internal/repository"
	"labqc/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateSampleRequest struct {
	SampleType  string    `json:"sample_type" binding:"required"`
	CollectedAt time.Time `json:"collected_at" binding:"required"`
	Location    string    `json:"location"`
	Notes       string    `json:"notes"`
	AssignedTo  string    `json:"assigned_to" binding:"required"` // employee_id
}

// UpdateSampleRequest is a partial patch; nil fields are left unchanged.
// BatchNumber and SampleType are immutable and deliberately absent.
type UpdateSampleRequest struct {
	CollectedAt *time.Time `json:"collected_at"`
	Location    *string    `json:"location"`
	Notes       *string    `json:"notes"`
	AssignedTo  *string    `json:"assigned_to"`
}

// Notifier publishes lifecycle events to connected dashboards. The
// websocket hub satisfies it; a nil notifier disables publishing.
type Notifier interface {
	Publish(kind string, payload interface{})
}

// --- Interface ---

type SampleService interface {
	Create(ctx context.Context, req CreateSampleRequest, caller model.Identity) (*model.Sample, error)
	GetByBatchNumber(ctx context.Context, batchNumber string, caller model.Identity) (*model.Sample, error)
	List(ctx context.Context, sampleType string, caller model.Identity, page, limit int) ([]model.Sample, int64, error)
	LatestFor(ctx context.Context, caller model.Identity) (*model.Sample, error)
	Update(ctx context.Context, batchNumber string, req UpdateSampleRequest, caller model.Identity) (*model.Sample, error)
	Delete(ctx context.Context, id uuid.UUID, caller model.Identity) error
}

type sampleService struct {
	samples     repository.SampleRepository
	tests       repository.TestResultRepository
	attachments repository.AttachmentRepository
	users       repository.UserRepository
	allocator   *BatchAllocator
	txManager   repository.TransactionManager
	blobs       blobstore.Store
	notifier    Notifier
}

func NewSampleService(
	samples repository.SampleRepository,
	tests repository.TestResultRepository,
	attachments repository.AttachmentRepository,
	users repository.UserRepository,
	allocator *BatchAllocator,
	txManager repository.TransactionManager,
	blobs blobstore.Store,
	notifier Notifier,
) SampleService {
	return &sampleService{
		samples:     samples,
		tests:       tests,
		attachments: attachments,
		users:       users,
		allocator:   allocator,
		txManager:   txManager,
		blobs:       blobs,
		notifier:    notifier,
	}
}

// --- Implementation ---

func (s *sampleService) Create(ctx context.Context, req CreateSampleRequest, caller model.Identity) (*model.Sample, error) {
	sampleType := model.SampleType(req.SampleType)
	if !sampleType.Valid() {
		return nil, apperror.Validation("unknown sample type %q", req.SampleType)
	}
	if !caller.Role.In(model.QCTier) {
		return nil, apperror.Forbidden("role %s may not create samples", caller.Role)
	}
	if _, err := s.users.GetByEmployeeID(ctx, req.AssignedTo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("assignee %s not found", req.AssignedTo)
		}
		return nil, err
	}

	sample := &model.Sample{
		SampleType:  sampleType,
		CollectedAt: req.CollectedAt,
		Location:    req.Location,
		Notes:       req.Notes,
		AssignedTo:  req.AssignedTo,
		RequestedBy: caller.UserID,
	}

	if err := s.allocator.AllocateAndCreate(ctx, sample); err != nil {
		return nil, err
	}

	s.publish("sample.created", sample)
	return sample, nil
}

func (s *sampleService) GetByBatchNumber(ctx context.Context, batchNumber string, caller model.Identity) (*model.Sample, error) {
	sample, err := s.samples.GetByBatchNumber(ctx, batchNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sample %s not found", batchNumber)
		}
		return nil, err
	}
	if !s.canView(caller, sample) {
		return nil, apperror.Forbidden("not authorized to access sample %s", batchNumber)
	}
	return sample, nil
}

func (s *sampleService) List(ctx context.Context, sampleType string, caller model.Identity, page, limit int) ([]model.Sample, int64, error) {
	filter := repository.SampleFilter{}
	if sampleType != "" {
		st := model.SampleType(sampleType)
		if !st.Valid() {
			return nil, 0, apperror.Validation("unknown sample type %q", sampleType)
		}
		filter.SampleType = st
	}
	// Oversight roles see everything; everyone else only their assignments.
	if !caller.Role.In(model.OversightTier) {
		filter.AssignedTo = caller.EmployeeID
	}

	return s.samples.List(ctx, filter, page, limit)
}

func (s *sampleService) LatestFor(ctx context.Context, caller model.Identity) (*model.Sample, error) {
	assignedTo := ""
	if !caller.Role.In(model.OversightTier) {
		assignedTo = caller.EmployeeID
	}

	sample, err := s.samples.LatestCollected(ctx, assignedTo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no samples found")
		}
		return nil, err
	}
	return sample, nil
}

func (s *sampleService) Update(ctx context.Context, batchNumber string, req UpdateSampleRequest, caller model.Identity) (*model.Sample, error) {
	sample, err := s.samples.GetByBatchNumber(ctx, batchNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sample %s not found", batchNumber)
		}
		return nil, err
	}
	if !s.canMutate(caller, sample) {
		return nil, apperror.Forbidden("not authorized to update sample %s", batchNumber)
	}

	if req.CollectedAt != nil {
		sample.CollectedAt = *req.CollectedAt
	}
	if req.Location != nil {
		sample.Location = *req.Location
	}
	if req.Notes != nil {
		sample.Notes = *req.Notes
	}
	if req.AssignedTo != nil {
		if _, err := s.users.GetByEmployeeID(ctx, *req.AssignedTo); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("assignee %s not found", *req.AssignedTo)
			}
			return nil, err
		}
		sample.AssignedTo = *req.AssignedTo
	}

	if err := s.samples.Update(ctx, sample); err != nil {
		return nil, err
	}
	return sample, nil
}

// Delete removes the sample and cascades to its test results and attachment
// rows in one transaction, then best-effort deletes the attachment blobs.
// A blob-delete failure after the metadata commit is logged as a
// data-integrity concern, not surfaced as an operation failure.
func (s *sampleService) Delete(ctx context.Context, id uuid.UUID, caller model.Identity) error {
	sample, err := s.samples.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("sample %s not found", id)
		}
		return err
	}
	if !s.canMutate(caller, sample) {
		return apperror.Forbidden("not authorized to delete sample %s", sample.BatchNumber)
	}

	var blobKeys []string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		attachments, listErr := s.attachments.ListBySample(txCtx, sample.ID)
		if listErr != nil {
			return listErr
		}
		for _, a := range attachments {
			blobKeys = append(blobKeys, a.FileName)
		}

		if delErr := s.tests.DeleteBySample(txCtx, sample.BatchNumber); delErr != nil {
			return delErr
		}
		if delErr := s.attachments.DeleteBySample(txCtx, sample.ID); delErr != nil {
			return delErr
		}
		return s.samples.Delete(txCtx, sample.ID)
	})
	if err != nil {
		return err
	}

	for _, key := range blobKeys {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			log.Printf("DATA INTEGRITY: orphan blob %s after deleting sample %s: %v",
				key, sample.BatchNumber, delErr)
		}
	}

	s.publish("sample.deleted", map[string]string{"batch_number": sample.BatchNumber})
	return nil
}

// canView: oversight roles see every sample, others only their assignments.
func (s *sampleService) canView(caller model.Identity, sample *model.Sample) bool {
	return caller.Role.In(model.OversightTier) || sample.AssignedTo == caller.EmployeeID
}

// canMutate: admin tier may update or delete any sample, others only their
// own assignment.
func (s *sampleService) canMutate(caller model.Identity, sample *model.Sample) bool {
	return caller.Role.In(model.AdminTier) || sample.AssignedTo == caller.EmployeeID
}

func (s *sampleService) publish(kind string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Publish(kind, payload)
	}
}
