package repository

import (
	"context"
	"strconv"
	"strings"

	"labqc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SampleFilter narrows sample listings. AssignedTo scopes non-oversight
// callers to their own samples; empty means no scoping.
type SampleFilter struct {
	SampleType model.SampleType
	AssignedTo string
}

// SampleRepository defines data access for Sample entities.
type SampleRepository interface {
	Create(ctx context.Context, sample *model.Sample) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Sample, error)
	GetByBatchNumber(ctx context.Context, batchNumber string) (*model.Sample, error)
	List(ctx context.Context, filter SampleFilter, page, limit int) ([]model.Sample, int64, error)
	LatestCollected(ctx context.Context, assignedTo string) (*model.Sample, error)
	MaxBatchSequence(ctx context.Context, prefix string) (int, error)
	Update(ctx context.Context, sample *model.Sample) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type sampleRepository struct {
	db *gorm.DB
}

func NewSampleRepository(db *gorm.DB) SampleRepository {
	return &sampleRepository{db: db}
}

func (r *sampleRepository) Create(ctx context.Context, sample *model.Sample) error {
	return GetDB(ctx, r.db).Create(sample).Error
}

func (r *sampleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Sample, error) {
	var sample model.Sample
	if err := GetDB(ctx, r.db).First(&sample, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sample, nil
}

func (r *sampleRepository) GetByBatchNumber(ctx context.Context, batchNumber string) (*model.Sample, error) {
	var sample model.Sample
	if err := GetDB(ctx, r.db).First(&sample, "batch_number = ?", batchNumber).Error; err != nil {
		return nil, err
	}
	return &sample, nil
}

func (r *sampleRepository) List(ctx context.Context, filter SampleFilter, page, limit int) ([]model.Sample, int64, error) {
	var samples []model.Sample
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Sample{})
	if filter.SampleType != "" {
		query = query.Where("sample_type = ?", filter.SampleType)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("collected_at DESC").Offset(offset).Limit(limit).Find(&samples).Error; err != nil {
		return nil, 0, err
	}

	return samples, total, nil
}

func (r *sampleRepository) LatestCollected(ctx context.Context, assignedTo string) (*model.Sample, error) {
	var sample model.Sample
	query := GetDB(ctx, r.db).Model(&model.Sample{})
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	if err := query.Order("collected_at DESC").First(&sample).Error; err != nil {
		return nil, err
	}
	return &sample, nil
}

// MaxBatchSequence returns the highest numeric suffix among batch numbers
// with the given prefix, or 0 when none exist. Candidates whose remainder
// after the prefix is not all digits belong to a longer prefix (W vs WW)
// and are skipped.
func (r *sampleRepository) MaxBatchSequence(ctx context.Context, prefix string) (int, error) {
	var numbers []string
	err := GetDB(ctx, r.db).Model(&model.Sample{}).
		Where("batch_number LIKE ?", prefix+"%").
		Pluck("batch_number", &numbers).Error
	if err != nil {
		return 0, err
	}

	max := 0
	for _, n := range numbers {
		suffix := strings.TrimPrefix(n, prefix)
		seq, convErr := strconv.Atoi(suffix)
		if convErr != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

func (r *sampleRepository) Update(ctx context.Context, sample *model.Sample) error {
	return GetDB(ctx, r.db).Save(sample).Error
}

func (r *sampleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Sample{}).Error
}
