package models

import "time"

// RosterShift is a named working window, times in HH:MM local.
type RosterShift struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;uniqueIndex;not null;size:80"`
	StartTime string    `json:"start_time" gorm:"column:start_time;type:varchar(5);not null"`
	EndTime   string    `json:"end_time" gorm:"column:end_time;type:varchar(5);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
}

func (RosterShift) TableName() string {
	return "roster_shifts"
}

// RosterAssignment places a user on a shift at an office for one day.
type RosterAssignment struct {
	ID        uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint            `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_roster_user_date,priority:1"`
	User      *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Date      string          `json:"date" gorm:"column:date;type:varchar(10);not null;uniqueIndex:idx_roster_user_date,priority:2"`
	OfficeID  *uint           `json:"office_id" gorm:"column:office_id"`
	Office    *OfficeLocation `json:"office,omitempty" gorm:"foreignKey:OfficeID"`
	ShiftID   *uint           `json:"shift_id" gorm:"column:shift_id"`
	Shift     *RosterShift    `json:"shift,omitempty" gorm:"foreignKey:ShiftID"`
	Note      string          `json:"note" gorm:"column:note;not null;default:'';size:255"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (RosterAssignment) TableName() string {
	return "roster_assignments"
}
