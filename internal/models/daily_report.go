package models

import "time"

type DailyReportStatus string

const (
	DailyReportTodo       DailyReportStatus = "TODO"
	DailyReportInProgress DailyReportStatus = "IN_PROGRESS"
	DailyReportDone       DailyReportStatus = "DONE"
)

// DailyReport is an employee's work log entry for a date.
type DailyReport struct {
	ID          uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uint              `json:"user_id" gorm:"column:user_id;not null;index"`
	User        *User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ReportDate  string            `json:"report_date" gorm:"column:report_date;type:varchar(10);not null;index"`
	Title       string            `json:"title" gorm:"column:title;not null;size:200"`
	Description string            `json:"description" gorm:"column:description;not null;default:''"`
	Status      DailyReportStatus `json:"status" gorm:"column:status;type:varchar(16);not null;default:'IN_PROGRESS'"`
	CreatedAt   time.Time         `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (DailyReport) TableName() string {
	return "daily_reports"
}
