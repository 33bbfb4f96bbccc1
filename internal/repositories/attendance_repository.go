package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/attendance_system/internal/models"
)

// AttendanceRepository 定义了考勤记录的数据访问接口
type AttendanceRepository interface {
	WithTx(tx *gorm.DB) AttendanceRepository
	// LockDay makes sure the (user, date) row exists and selects it FOR UPDATE.
	// Must run inside a transaction.
	LockDay(ctx context.Context, userID uint, workDate string) (*models.AttendanceRecord, error)
	GetDay(ctx context.Context, userID uint, workDate string) (*models.AttendanceRecord, error)
	Save(ctx context.Context, rec *models.AttendanceRecord) error
	// ListByUser returns records newest first. Empty bounds are open; limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID uint, from, to string, limit int) ([]models.AttendanceRecord, error)
	// ListRange returns records with a date in [from, to] for reporting.
	ListRange(ctx context.Context, from, to string, userIDs []uint, officeID *uint) ([]models.AttendanceRecord, error)
}

type gormAttendanceRepository struct {
	db *gorm.DB
}

func NewGormAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &gormAttendanceRepository{db: db}
}

func (r *gormAttendanceRepository) WithTx(tx *gorm.DB) AttendanceRepository {
	return &gormAttendanceRepository{db: tx}
}

func (r *gormAttendanceRepository) LockDay(ctx context.Context, userID uint, workDate string) (*models.AttendanceRecord, error) {
	seed := models.AttendanceRecord{UserID: userID, WorkDate: workDate, Source: models.AttendanceSourceOnline}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "work_date"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&seed).Error
	if err != nil {
		return nil, err
	}

	var rec models.AttendanceRecord
	err = r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND work_date = ?", userID, workDate).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *gormAttendanceRepository) GetDay(ctx context.Context, userID uint, workDate string) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Office").
		Where("user_id = ? AND work_date = ?", userID, workDate).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *gormAttendanceRepository) Save(ctx context.Context, rec *models.AttendanceRecord) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error
}

func (r *gormAttendanceRepository) ListByUser(ctx context.Context, userID uint, from, to string, limit int) ([]models.AttendanceRecord, error) {
	query := r.db.WithContext(ctx).Preload("Office").Where("user_id = ?", userID)
	if from != "" {
		query = query.Where("work_date >= ?", from)
	}
	if to != "" {
		query = query.Where("work_date <= ?", to)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recs []models.AttendanceRecord
	if err := query.Order("work_date DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *gormAttendanceRepository) ListRange(ctx context.Context, from, to string, userIDs []uint, officeID *uint) ([]models.AttendanceRecord, error) {
	query := r.db.WithContext(ctx).Preload("Office").
		Where("work_date >= ? AND work_date <= ?", from, to)
	if len(userIDs) > 0 {
		query = query.Where("user_id IN ?", userIDs)
	}
	if officeID != nil {
		query = query.Where("office_id = ?", *officeID)
	}
	var recs []models.AttendanceRecord
	if err := query.Order("work_date ASC, user_id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
