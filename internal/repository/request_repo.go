package repository

import (
	"context"

	"labqc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestRepository defines data access for inter-department Request
// entities.
type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	ListToQC(ctx context.Context, page, limit int) ([]model.Request, int64, error)
	ListFromQC(ctx context.Context, page, limit int) ([]model.Request, int64, error)
	ListByRequester(ctx context.Context, employeeID string) ([]model.Request, error)
	Update(ctx context.Context, req *model.Request) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) listByDepartment(ctx context.Context, column string, page, limit int) ([]model.Request, int64, error) {
	var requests []model.Request
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Request{}).Where(column+" = ?", model.DepartmentQC)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *requestRepository) ListToQC(ctx context.Context, page, limit int) ([]model.Request, int64, error) {
	return r.listByDepartment(ctx, "target_department", page, limit)
}

func (r *requestRepository) ListFromQC(ctx context.Context, page, limit int) ([]model.Request, int64, error) {
	return r.listByDepartment(ctx, "source_department", page, limit)
}

func (r *requestRepository) ListByRequester(ctx context.Context, employeeID string) ([]model.Request, error) {
	var requests []model.Request
	err := GetDB(ctx, r.db).
		Where("requested_by = ?", employeeID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Save(req).Error
}
