package repository

import (
	"context"

	"labqc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttachmentRepository defines data access for SampleAttachment metadata.
// Blob bytes live in the blob store, keyed by FileName.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.SampleAttachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SampleAttachment, error)
	ListBySample(ctx context.Context, sampleID uuid.UUID) ([]model.SampleAttachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySample(ctx context.Context, sampleID uuid.UUID) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.SampleAttachment) error {
	return GetDB(ctx, r.db).Create(attachment).Error
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SampleAttachment, error) {
	var attachment model.SampleAttachment
	if err := GetDB(ctx, r.db).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListBySample(ctx context.Context, sampleID uuid.UUID) ([]model.SampleAttachment, error) {
	var attachments []model.SampleAttachment
	err := GetDB(ctx, r.db).
		Where("sample_id = ?", sampleID).
		Order("uploaded_at DESC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.SampleAttachment{}).Error
}

func (r *attachmentRepository) DeleteBySample(ctx context.Context, sampleID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("sample_id = ?", sampleID).Delete(&model.SampleAttachment{}).Error
}
