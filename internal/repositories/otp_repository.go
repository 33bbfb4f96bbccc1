package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/attendance_system/internal/models"
)

// OTPRepository stores issued one-time codes. Throttle counters are derived
// from created_at rather than kept in a separate table.
type OTPRepository interface {
	WithTx(tx *gorm.DB) OTPRepository
	Create(ctx context.Context, otp *models.EmailOTP) error
	// LatestIssued returns the most recent code, used or not.
	LatestIssued(ctx context.Context, email string, purpose models.OTPPurpose) (*models.EmailOTP, error)
	// LatestUnused returns the most recent code that has not been consumed.
	LatestUnused(ctx context.Context, email string, purpose models.OTPPurpose) (*models.EmailOTP, error)
	CountIssuedSince(ctx context.Context, email string, purpose models.OTPPurpose, since time.Time) (int64, error)
	// EarliestIssuedSince returns the oldest code inside the window.
	EarliestIssuedSince(ctx context.Context, email string, purpose models.OTPPurpose, since time.Time) (*models.EmailOTP, error)
	MarkUsed(ctx context.Context, id string) error
}

type gormOTPRepository struct {
	db *gorm.DB
}

func NewGormOTPRepository(db *gorm.DB) OTPRepository {
	return &gormOTPRepository{db: db}
}

func (r *gormOTPRepository) WithTx(tx *gorm.DB) OTPRepository {
	return &gormOTPRepository{db: tx}
}

func (r *gormOTPRepository) scope(ctx context.Context, email string, purpose models.OTPPurpose) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.EmailOTP{}).
		Where("email = ? AND purpose = ?", email, purpose)
}

func (r *gormOTPRepository) Create(ctx context.Context, otp *models.EmailOTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

func (r *gormOTPRepository) LatestIssued(ctx context.Context, email string, purpose models.OTPPurpose) (*models.EmailOTP, error) {
	var otp models.EmailOTP
	if err := r.scope(ctx, email, purpose).Order("created_at DESC").First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *gormOTPRepository) LatestUnused(ctx context.Context, email string, purpose models.OTPPurpose) (*models.EmailOTP, error) {
	var otp models.EmailOTP
	err := r.scope(ctx, email, purpose).
		Where("is_used = ?", false).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *gormOTPRepository) CountIssuedSince(ctx context.Context, email string, purpose models.OTPPurpose, since time.Time) (int64, error) {
	var n int64
	err := r.scope(ctx, email, purpose).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *gormOTPRepository) EarliestIssuedSince(ctx context.Context, email string, purpose models.OTPPurpose, since time.Time) (*models.EmailOTP, error) {
	var otp models.EmailOTP
	err := r.scope(ctx, email, purpose).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *gormOTPRepository) MarkUsed(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.EmailOTP{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
