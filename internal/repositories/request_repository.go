package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/attendance_system/internal/models"
)

// RequestRepository persists the workflow request models (leave,
// regularization, resignation, offline attendance). dest arguments are
// pointers to a model or to a slice of models, as with gorm itself.
type RequestRepository interface {
	WithTx(tx *gorm.DB) RequestRepository
	Create(ctx context.Context, req models.WorkflowRequest) error
	ListByUser(ctx context.Context, dest interface{}, userID uint, limit int) error
	// ListAll returns every request newest first, optionally filtered by status.
	ListAll(ctx context.Context, dest interface{}, status models.RequestStatus) error
	GetByID(ctx context.Context, dest models.WorkflowRequest, id uint) error
	// LockByID selects the request FOR UPDATE. Must run inside a transaction.
	LockByID(ctx context.Context, dest models.WorkflowRequest, id uint) error
	Save(ctx context.Context, req models.WorkflowRequest) error
}

type gormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) RequestRepository {
	return &gormRequestRepository{db: db}
}

func (r *gormRequestRepository) WithTx(tx *gorm.DB) RequestRepository {
	return &gormRequestRepository{db: tx}
}

func (r *gormRequestRepository) Create(ctx context.Context, req models.WorkflowRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *gormRequestRepository) ListByUser(ctx context.Context, dest interface{}, userID uint, limit int) error {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query.Find(dest).Error
}

func (r *gormRequestRepository) ListAll(ctx context.Context, dest interface{}, status models.RequestStatus) error {
	query := r.db.WithContext(ctx).Preload("User").Order("created_at DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return query.Find(dest).Error
}

func (r *gormRequestRepository) GetByID(ctx context.Context, dest models.WorkflowRequest, id uint) error {
	return r.db.WithContext(ctx).First(dest, id).Error
}

func (r *gormRequestRepository) LockByID(ctx context.Context, dest models.WorkflowRequest, id uint) error {
	return r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(dest, id).Error
}

func (r *gormRequestRepository) Save(ctx context.Context, req models.WorkflowRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(req).Error
}
