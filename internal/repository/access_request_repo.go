package repository

import (
	"context"

	"labqc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessRequestRepository defines data access for registration access
// requests.
type AccessRequestRepository interface {
	Create(ctx context.Context, req *model.AccessRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.AccessRequest, error)
	List(ctx context.Context) ([]model.AccessRequest, error)
	Update(ctx context.Context, req *model.AccessRequest) error
}

type accessRequestRepository struct {
	db *gorm.DB
}

func NewAccessRequestRepository(db *gorm.DB) AccessRequestRepository {
	return &accessRequestRepository{db: db}
}

func (r *accessRequestRepository) Create(ctx context.Context, req *model.AccessRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *accessRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AccessRequest, error) {
	var req model.AccessRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *accessRequestRepository) List(ctx context.Context) ([]model.AccessRequest, error) {
	var requests []model.AccessRequest
	if err := GetDB(ctx, r.db).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *accessRequestRepository) Update(ctx context.Context, req *model.AccessRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}
