package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/attendance_system/internal/models"
)

// DailyReportFilter narrows daily report listings. Zero values are ignored.
type DailyReportFilter struct {
	UserID uint
	From   string
	To     string
	Limit  int
	// Ascending orders by date then user email for exports.
	Ascending bool
}

type DailyReportRepository interface {
	Create(ctx context.Context, r *models.DailyReport) error
	GetForUser(ctx context.Context, id, userID uint) (*models.DailyReport, error)
	Save(ctx context.Context, r *models.DailyReport) error
	List(ctx context.Context, f DailyReportFilter) ([]models.DailyReport, error)
}

type gormDailyReportRepository struct {
	db *gorm.DB
}

func NewGormDailyReportRepository(db *gorm.DB) DailyReportRepository {
	return &gormDailyReportRepository{db: db}
}

func (r *gormDailyReportRepository) Create(ctx context.Context, report *models.DailyReport) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
}

func (r *gormDailyReportRepository) GetForUser(ctx context.Context, id, userID uint) (*models.DailyReport, error) {
	var report models.DailyReport
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *gormDailyReportRepository) Save(ctx context.Context, report *models.DailyReport) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(report).Error
}

func (r *gormDailyReportRepository) List(ctx context.Context, f DailyReportFilter) ([]models.DailyReport, error) {
	query := r.db.WithContext(ctx).Model(&models.DailyReport{}).Preload("User")
	if f.UserID != 0 {
		query = query.Where("daily_reports.user_id = ?", f.UserID)
	}
	if f.From != "" {
		query = query.Where("daily_reports.report_date >= ?", f.From)
	}
	if f.To != "" {
		query = query.Where("daily_reports.report_date <= ?", f.To)
	}
	if f.Ascending {
		query = query.Joins("JOIN users ON users.id = daily_reports.user_id").
			Order("daily_reports.report_date ASC, users.email ASC, daily_reports.created_at ASC")
	} else {
		query = query.Order("daily_reports.report_date DESC, daily_reports.created_at DESC")
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	var out []models.DailyReport
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
