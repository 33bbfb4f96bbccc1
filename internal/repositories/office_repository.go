package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/attendance_system/internal/models"
)

// OfficeRepository 定义了办公地点及其二维码的数据访问接口
type OfficeRepository interface {
	WithTx(tx *gorm.DB) OfficeRepository
	List(ctx context.Context) ([]models.OfficeLocation, error)
	GetByID(ctx context.Context, id uint) (*models.OfficeLocation, error)
	Create(ctx context.Context, office *models.OfficeLocation) error
	Save(ctx context.Context, office *models.OfficeLocation) error
	GetQR(ctx context.Context, officeID uint) (*models.OfficeQRToken, error)
	// UpsertQR replaces the office's token in place, creating the row if needed.
	UpsertQR(ctx context.Context, officeID uint, token string) (*models.OfficeQRToken, error)
	// FindActiveQR resolves a token to an active QR row whose office is active too.
	FindActiveQR(ctx context.Context, token string) (*models.OfficeQRToken, error)
}

type gormOfficeRepository struct {
	db *gorm.DB
}

func NewGormOfficeRepository(db *gorm.DB) OfficeRepository {
	return &gormOfficeRepository{db: db}
}

func (r *gormOfficeRepository) WithTx(tx *gorm.DB) OfficeRepository {
	return &gormOfficeRepository{db: tx}
}

func (r *gormOfficeRepository) List(ctx context.Context) ([]models.OfficeLocation, error) {
	var offices []models.OfficeLocation
	if err := r.db.WithContext(ctx).Preload("QR").Order("id DESC").Find(&offices).Error; err != nil {
		return nil, err
	}
	return offices, nil
}

func (r *gormOfficeRepository) GetByID(ctx context.Context, id uint) (*models.OfficeLocation, error) {
	var office models.OfficeLocation
	if err := r.db.WithContext(ctx).Preload("QR").First(&office, id).Error; err != nil {
		return nil, err
	}
	return &office, nil
}

func (r *gormOfficeRepository) Create(ctx context.Context, office *models.OfficeLocation) error {
	return translate(r.db.WithContext(ctx).Create(office).Error)
}

func (r *gormOfficeRepository) Save(ctx context.Context, office *models.OfficeLocation) error {
	return translate(r.db.WithContext(ctx).Omit("QR").Save(office).Error)
}

func (r *gormOfficeRepository) GetQR(ctx context.Context, officeID uint) (*models.OfficeQRToken, error) {
	var qr models.OfficeQRToken
	if err := r.db.WithContext(ctx).Where("office_id = ?", officeID).First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *gormOfficeRepository) UpsertQR(ctx context.Context, officeID uint, token string) (*models.OfficeQRToken, error) {
	var qr models.OfficeQRToken
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("office_id = ?", officeID).
		First(&qr).Error
	switch {
	case err == nil:
		qr.Token = token
		qr.IsActive = true
		if err := r.db.WithContext(ctx).Omit("Office").Save(&qr).Error; err != nil {
			return nil, translate(err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		qr = models.OfficeQRToken{OfficeID: officeID, Token: token, IsActive: true}
		if err := r.db.WithContext(ctx).Omit("Office").Create(&qr).Error; err != nil {
			return nil, translate(err)
		}
	default:
		return nil, err
	}
	return &qr, nil
}

func (r *gormOfficeRepository) FindActiveQR(ctx context.Context, token string) (*models.OfficeQRToken, error) {
	var qr models.OfficeQRToken
	err := r.db.WithContext(ctx).
		InnerJoins("Office", r.db.Where(&models.OfficeLocation{IsActive: true})).
		Where("office_qr_tokens.token = ? AND office_qr_tokens.is_active = ?", token, true).
		First(&qr).Error
	if err != nil {
		return nil, err
	}
	return &qr, nil
}
