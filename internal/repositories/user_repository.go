package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/attendance_system/internal/models"
)

// UserRepository 定义了用户数据仓库的接口
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// EnsureProfile creates the profile row when missing and returns it.
	EnsureProfile(ctx context.Context, userID uint) (*models.EmployeeProfile, error)
	SaveProfile(ctx context.Context, profile *models.EmployeeProfile) error
	// ListEmployees returns non-admin users ordered by id. q filters on email or full name.
	ListEmployees(ctx context.Context, q string, ids []uint) ([]models.User, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository 创建一个新的 gormUserRepository 实例
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) WithTx(tx *gorm.DB) UserRepository {
	return &gormUserRepository{db: tx}
}

func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *gormUserRepository) Save(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit("Profile").Save(user).Error)
}

func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) EnsureProfile(ctx context.Context, userID uint) (*models.EmployeeProfile, error) {
	profile := models.EmployeeProfile{UserID: userID}
	err := r.db.WithContext(ctx).
		Where(models.EmployeeProfile{UserID: userID}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *gormUserRepository) SaveProfile(ctx context.Context, profile *models.EmployeeProfile) error {
	return translate(r.db.WithContext(ctx).Save(profile).Error)
}

func (r *gormUserRepository) ListEmployees(ctx context.Context, q string, ids []uint) ([]models.User, error) {
	query := r.db.WithContext(ctx).Preload("Profile").Where("is_admin = ?", false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
	}
	var users []models.User
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
