package models

// AttendanceStatus is the per-day classification produced by the report.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

// ReportRow is one (user, day) line of an attendance report.
type ReportRow struct {
	Date         string           `json:"date"`
	UserID       uint             `json:"user_id"`
	Email        string           `json:"email"`
	FullName     string           `json:"full_name"`
	Office       string           `json:"office"`
	CheckInTime  string           `json:"check_in_time"`
	CheckOutTime string           `json:"check_out_time"`
	Status       AttendanceStatus `json:"status"`
	LateMinutes  int              `json:"late_minutes"`
}

// UserSummary aggregates a user's rows over the report range.
type UserSummary struct {
	UserID      uint   `json:"user_id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	TotalDays   int    `json:"total_days"`
	PresentDays int    `json:"present_days"`
	AbsentDays  int    `json:"absent_days"`
	LateDays    int    `json:"late_days"`
}

type OverallSummary struct {
	TotalUsers       int `json:"total_users"`
	TotalPresentDays int `json:"total_present_days"`
	TotalAbsentDays  int `json:"total_absent_days"`
	TotalLateDays    int `json:"total_late_days"`
}

// AttendanceReport is the full result handed to handlers and exporters.
type AttendanceReport struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Days     int            `json:"days"`
	UserIDs  []uint         `json:"user_ids,omitempty"`
	OfficeID *uint          `json:"office_id,omitempty"`
	Overall  OverallSummary `json:"overall"`
	Summary  []UserSummary  `json:"summary"`
	Rows     []ReportRow    `json:"rows"`
}
