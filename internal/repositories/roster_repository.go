package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/attendance_system/internal/models"
)

// RosterRepository 定义了排班相关的数据访问接口
type RosterRepository interface {
	ListShifts(ctx context.Context) ([]models.RosterShift, error)
	CreateShift(ctx context.Context, shift *models.RosterShift) error
	GetShift(ctx context.Context, id uint) (*models.RosterShift, error)
	// UpsertAssignment keeps one assignment per (user, date).
	UpsertAssignment(ctx context.Context, a *models.RosterAssignment) (*models.RosterAssignment, error)
	ListAssignments(ctx context.Context, userID uint, from, to string, limit int) ([]models.RosterAssignment, error)
}

type gormRosterRepository struct {
	db *gorm.DB
}

func NewGormRosterRepository(db *gorm.DB) RosterRepository {
	return &gormRosterRepository{db: db}
}

func (r *gormRosterRepository) ListShifts(ctx context.Context) ([]models.RosterShift, error) {
	var shifts []models.RosterShift
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *gormRosterRepository) CreateShift(ctx context.Context, shift *models.RosterShift) error {
	return translate(r.db.WithContext(ctx).Create(shift).Error)
}

func (r *gormRosterRepository) GetShift(ctx context.Context, id uint) (*models.RosterShift, error) {
	var shift models.RosterShift
	if err := r.db.WithContext(ctx).First(&shift, id).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *gormRosterRepository) UpsertAssignment(ctx context.Context, a *models.RosterAssignment) (*models.RosterAssignment, error) {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"office_id", "shift_id", "note", "updated_at"}),
		}).
		Create(a).Error
	if err != nil {
		return nil, err
	}

	var saved models.RosterAssignment
	err = r.db.WithContext(ctx).
		Preload("Office").Preload("Shift").
		Where("user_id = ? AND date = ?", a.UserID, a.Date).
		First(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *gormRosterRepository) ListAssignments(ctx context.Context, userID uint, from, to string, limit int) ([]models.RosterAssignment, error) {
	query := r.db.WithContext(ctx).Preload("Office").Preload("Shift").Where("user_id = ?", userID)
	if from != "" {
		query = query.Where("date >= ?", from)
	}
	if to != "" {
		query = query.Where("date <= ?", to)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var out []models.RosterAssignment
	if err := query.Order("date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
