package service

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	"labqc/internal/blobstore"
	"labqc/internal/model"
	"labqc/internal/repository"
	"labqc/internal/tagging"
	"labqc/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// presignTTL bounds how long a download link stays valid.
const presignTTL = 15 * time.Minute

// UploadAttachmentInput carries one uploaded file. Filename is the original
// upload name, used only for classification; storage keys are opaque.
type UploadAttachmentInput struct {
	SampleID    uuid.UUID
	Filename    string
	ContentType string
	Content     []byte
}

// --- Interface ---

type AttachmentService interface {
	Upload(ctx context.Context, input UploadAttachmentInput, caller model.Identity) (*model.SampleAttachment, error)
	ListBySample(ctx context.Context, sampleID uuid.UUID, caller model.Identity) ([]model.SampleAttachment, error)
	DownloadURL(ctx context.Context, id uuid.UUID, caller model.Identity) (string, error)
	Delete(ctx context.Context, id uuid.UUID, caller model.Identity) error
}

type attachmentService struct {
	attachments repository.AttachmentRepository
	samples     repository.SampleRepository
	blobs       blobstore.Store
}

func NewAttachmentService(
	attachments repository.AttachmentRepository,
	samples repository.SampleRepository,
	blobs blobstore.Store,
) AttachmentService {
	return &attachmentService{attachments: attachments, samples: samples, blobs: blobs}
}

// --- Implementation ---

// Upload stores the blob under an opaque <uuid>.<ext> key, classifies the
// file, and persists the metadata row. A blob-store failure aborts the
// operation before any metadata is written.
func (s *attachmentService) Upload(ctx context.Context, input UploadAttachmentInput, caller model.Identity) (*model.SampleAttachment, error) {
	sample, err := s.samples.GetByID(ctx, input.SampleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sample %s not found", input.SampleID)
		}
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Filename), "."))
	key := uuid.NewString()
	if ext != "" {
		key = key + "." + ext
	}

	if err := s.blobs.Put(ctx, key, input.Content, input.ContentType); err != nil {
		return nil, apperror.UpstreamUnavailable(err, "blob store put failed")
	}

	attachment := &model.SampleAttachment{
		SampleID:       sample.ID,
		FileName:       key,
		FileType:       input.ContentType,
		Tag:            tagging.Classify(input.Filename, input.Content),
		AttachmentType: tagging.AttachmentTypeFor(input.ContentType),
		UploadedBy:     caller.EmployeeID,
		UploadedAt:     time.Now().UTC(),
	}

	if err := s.attachments.Create(ctx, attachment); err != nil {
		// Roll the blob back so a failed metadata write leaves no orphan.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			log.Printf("DATA INTEGRITY: orphan blob %s after failed attachment insert: %v", key, delErr)
		}
		return nil, err
	}
	return attachment, nil
}

func (s *attachmentService) ListBySample(ctx context.Context, sampleID uuid.UUID, caller model.Identity) ([]model.SampleAttachment, error) {
	sample, err := s.samples.GetByID(ctx, sampleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sample %s not found", sampleID)
		}
		return nil, err
	}
	if !caller.Role.In(model.OversightTier) && sample.AssignedTo != caller.EmployeeID {
		return nil, apperror.Forbidden("not authorized to access sample %s", sample.BatchNumber)
	}
	return s.attachments.ListBySample(ctx, sampleID)
}

func (s *attachmentService) DownloadURL(ctx context.Context, id uuid.UUID, caller model.Identity) (string, error) {
	attachment, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.NotFound("attachment %s not found", id)
		}
		return "", err
	}

	url, err := s.blobs.PresignedURL(ctx, attachment.FileName, presignTTL)
	if err != nil {
		return "", apperror.UpstreamUnavailable(err, "blob store presign failed")
	}
	return url, nil
}

// Delete removes the metadata row and the blob in one logical operation.
// Only the uploader (or the admin tier) may delete. The metadata row goes
// first; a blob-delete failure afterwards is logged as a data-integrity
// concern rather than failing the whole operation.
func (s *attachmentService) Delete(ctx context.Context, id uuid.UUID, caller model.Identity) error {
	attachment, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("attachment %s not found", id)
		}
		return err
	}
	if attachment.UploadedBy != caller.EmployeeID && !caller.Role.In(model.AdminTier) {
		return apperror.Forbidden("not authorized to delete attachment %s", id)
	}

	if err := s.attachments.Delete(ctx, attachment.ID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, attachment.FileName); err != nil {
		log.Printf("DATA INTEGRITY: orphan blob %s after deleting attachment %s: %v",
			attachment.FileName, id, err)
	}
	return nil
}
