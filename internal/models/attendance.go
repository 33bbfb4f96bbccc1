package models

import "time"

// AttendanceSource tells how a record was produced.
type AttendanceSource string

const (
	AttendanceSourceOnline  AttendanceSource = "ONLINE"
	AttendanceSourceOffline AttendanceSource = "OFFLINE"
)

// WorkDateLayout is the layout of AttendanceRecord.WorkDate and every other
// calendar-date column.
const WorkDateLayout = "2006-01-02"

// AttendanceRecord is unique per (user, local calendar date). Instants are stored in UTC.
type AttendanceRecord struct {
	ID       uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   uint            `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_attendance_user_date,priority:1"`
	User     *User           `json:"-" gorm:"foreignKey:UserID"`
	WorkDate string          `json:"date" gorm:"column:work_date;type:varchar(10);not null;uniqueIndex:idx_attendance_user_date,priority:2;index"`
	OfficeID *uint           `json:"office_id" gorm:"column:office_id;index"`
	Office   *OfficeLocation `json:"office,omitempty" gorm:"foreignKey:OfficeID"`

	CheckInAt        *time.Time `json:"check_in_time" gorm:"column:check_in_at"`
	CheckInLat       *float64   `json:"check_in_lat" gorm:"column:check_in_lat"`
	CheckInLng       *float64   `json:"check_in_lng" gorm:"column:check_in_lng"`
	CheckInAccuracyM *float64   `json:"check_in_accuracy_m" gorm:"column:check_in_accuracy_m"`

	CheckOutAt        *time.Time `json:"check_out_time" gorm:"column:check_out_at"`
	CheckOutLat       *float64   `json:"check_out_lat" gorm:"column:check_out_lat"`
	CheckOutLng       *float64   `json:"check_out_lng" gorm:"column:check_out_lng"`
	CheckOutAccuracyM *float64   `json:"check_out_accuracy_m" gorm:"column:check_out_accuracy_m"`
	// CheckOutOfficeID records the office scanned at checkout, which may differ from OfficeID.
	CheckOutOfficeID *uint `json:"check_out_office_id" gorm:"column:check_out_office_id"`

	Source    AttendanceSource `json:"source" gorm:"column:source;type:varchar(16);not null;default:'ONLINE'"`
	CreatedAt time.Time        `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time        `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// CheckedIn reports whether a check-in time is recorded.
func (a *AttendanceRecord) CheckedIn() bool { return a.CheckInAt != nil }

// CheckedOut reports whether a check-out time is recorded.
func (a *AttendanceRecord) CheckedOut() bool { return a.CheckOutAt != nil }
