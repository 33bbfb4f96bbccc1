package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/attendance_system/internal/models"
)

// DocumentRepository covers uploaded documents and the ESIC profile.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.EmployeeDocument) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.EmployeeDocument, error)
	GetForUser(ctx context.Context, id, userID uint) (*models.EmployeeDocument, error)
	Delete(ctx context.Context, doc *models.EmployeeDocument) error
	GetOrCreateESIC(ctx context.Context, userID uint) (*models.ESICProfile, error)
	SaveESIC(ctx context.Context, profile *models.ESICProfile) error
}

type gormDocumentRepository struct {
	db *gorm.DB
}

func NewGormDocumentRepository(db *gorm.DB) DocumentRepository {
	return &gormDocumentRepository{db: db}
}

func (r *gormDocumentRepository) Create(ctx context.Context, doc *models.EmployeeDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *gormDocumentRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.EmployeeDocument, error) {
	var docs []models.EmployeeDocument
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("uploaded_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *gormDocumentRepository) GetForUser(ctx context.Context, id, userID uint) (*models.EmployeeDocument, error) {
	var doc models.EmployeeDocument
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *gormDocumentRepository) Delete(ctx context.Context, doc *models.EmployeeDocument) error {
	return r.db.WithContext(ctx).Delete(doc).Error
}

func (r *gormDocumentRepository) GetOrCreateESIC(ctx context.Context, userID uint) (*models.ESICProfile, error) {
	profile := models.ESICProfile{UserID: userID}
	if err := r.db.WithContext(ctx).Where(models.ESICProfile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *gormDocumentRepository) SaveESIC(ctx context.Context, profile *models.ESICProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
