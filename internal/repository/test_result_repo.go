package repository

import (
	"context"

	"labqc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestResultRepository defines data access for TestResult entities.
type TestResultRepository interface {
	Create(ctx context.Context, result *model.TestResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TestResult, error)
	ListBySample(ctx context.Context, batchNumber string) ([]model.TestResult, error)
	ListByUser(ctx context.Context, employeeID string, page, limit int) ([]model.TestResult, int64, error)
	ExistsForParameter(ctx context.Context, batchNumber string, parameter model.TestParameter) (bool, error)
	CountByUser(ctx context.Context, employeeID string) (int64, error)
	Update(ctx context.Context, result *model.TestResult) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySample(ctx context.Context, batchNumber string) error
}

type testResultRepository struct {
	db *gorm.DB
}

func NewTestResultRepository(db *gorm.DB) TestResultRepository {
	return &testResultRepository{db: db}
}

func (r *testResultRepository) Create(ctx context.Context, result *model.TestResult) error {
	return GetDB(ctx, r.db).Create(result).Error
}

func (r *testResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestResult, error) {
	var result model.TestResult
	if err := GetDB(ctx, r.db).First(&result, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) ListBySample(ctx context.Context, batchNumber string) ([]model.TestResult, error) {
	var results []model.TestResult
	err := GetDB(ctx, r.db).
		Where("sample_batch_number = ?", batchNumber).
		Order("entered_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *testResultRepository) ListByUser(ctx context.Context, employeeID string, page, limit int) ([]model.TestResult, int64, error) {
	var results []model.TestResult
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.TestResult{}).Where("entered_by = ?", employeeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("entered_at DESC").Offset(offset).Limit(limit).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *testResultRepository) ExistsForParameter(ctx context.Context, batchNumber string, parameter model.TestParameter) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.TestResult{}).
		Where("sample_batch_number = ? AND parameter = ?", batchNumber, parameter).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *testResultRepository) CountByUser(ctx context.Context, employeeID string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.TestResult{}).
		Where("entered_by = ?", employeeID).
		Count(&count).Error
	return count, err
}

func (r *testResultRepository) Update(ctx context.Context, result *model.TestResult) error {
	return GetDB(ctx, r.db).Save(result).Error
}

func (r *testResultRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TestResult{}).Error
}

func (r *testResultRepository) DeleteBySample(ctx context.Context, batchNumber string) error {
	return GetDB(ctx, r.db).Where("sample_batch_number = ?", batchNumber).Delete(&model.TestResult{}).Error
}
