package models

import "time"

// RequestStatus is the workflow state shared by every employee request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// RequestDecision is embedded in every request. The decision fields are only
// populated on the single transition out of PENDING.
type RequestDecision struct {
	Status       RequestStatus `json:"status" gorm:"column:status;type:varchar(16);not null;default:'PENDING';index"`
	AdminComment string        `json:"admin_comment" gorm:"column:admin_comment;not null;default:''"`
	DecidedByID  *uint         `json:"decided_by_id" gorm:"column:decided_by_id"`
	DecidedAt    *time.Time    `json:"decided_at" gorm:"column:decided_at"`
}

// WorkflowRequest is implemented by every request model.
type WorkflowRequest interface {
	GetID() uint
	OwnerID() uint
	Decision() *RequestDecision
}

type LeaveRequest struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"user_id" gorm:"column:user_id;not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	LeaveType string    `json:"leave_type" gorm:"column:leave_type;type:varchar(32);not null"`
	FromDate  string    `json:"from_date" gorm:"column:from_date;type:varchar(10);not null"`
	ToDate    string    `json:"to_date" gorm:"column:to_date;type:varchar(10);not null"`
	Reason    string    `json:"reason" gorm:"column:reason;not null;default:''"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
	RequestDecision
}

func (LeaveRequest) TableName() string { return "leave_requests" }

func (r *LeaveRequest) GetID() uint                { return r.ID }
func (r *LeaveRequest) OwnerID() uint              { return r.UserID }
func (r *LeaveRequest) Decision() *RequestDecision { return &r.RequestDecision }

// RegularizationRequest asks to correct the recorded times of a past day.
type RegularizationRequest struct {
	ID                uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID            uint      `json:"user_id" gorm:"column:user_id;not null;index"`
	User              *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Date              string    `json:"date" gorm:"column:date;type:varchar(10);not null"`
	RequestedCheckIn  string    `json:"requested_check_in" gorm:"column:requested_check_in;type:varchar(8);not null;default:''"`
	RequestedCheckOut string    `json:"requested_check_out" gorm:"column:requested_check_out;type:varchar(8);not null;default:''"`
	Reason            string    `json:"reason" gorm:"column:reason;not null;default:''"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
	RequestDecision
}

func (RegularizationRequest) TableName() string { return "regularization_requests" }

func (r *RegularizationRequest) GetID() uint                { return r.ID }
func (r *RegularizationRequest) OwnerID() uint              { return r.UserID }
func (r *RegularizationRequest) Decision() *RequestDecision { return &r.RequestDecision }

type ResignationRequest struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint      `json:"user_id" gorm:"column:user_id;not null;index"`
	User            *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	LastWorkingDate string    `json:"last_working_date" gorm:"column:last_working_date;type:varchar(10);not null"`
	Reason          string    `json:"reason" gorm:"column:reason;not null;default:''"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
	RequestDecision
}

func (ResignationRequest) TableName() string { return "resignation_requests" }

func (r *ResignationRequest) GetID() uint                { return r.ID }
func (r *ResignationRequest) OwnerID() uint              { return r.UserID }
func (r *ResignationRequest) Decision() *RequestDecision { return &r.RequestDecision }

// OfflineAttendanceRequest asks an admin to record a day that could not be
// marked online. Approval writes the AttendanceRecord with source OFFLINE.
type OfflineAttendanceRequest struct {
	ID           uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       uint            `json:"user_id" gorm:"column:user_id;not null;index"`
	User         *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Date         string          `json:"date" gorm:"column:date;type:varchar(10);not null"`
	OfficeID     uint            `json:"office_id" gorm:"column:office_id;not null"`
	Office       *OfficeLocation `json:"office,omitempty" gorm:"foreignKey:OfficeID"`
	CheckInTime  string          `json:"check_in_time" gorm:"column:check_in_time;type:varchar(8);not null;default:''"`
	CheckOutTime string          `json:"check_out_time" gorm:"column:check_out_time;type:varchar(8);not null;default:''"`
	Reason       string          `json:"reason" gorm:"column:reason;not null;default:''"`
	CreatedAt    time.Time       `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
	RequestDecision
}

func (OfflineAttendanceRequest) TableName() string { return "offline_attendance_requests" }

func (r *OfflineAttendanceRequest) GetID() uint                { return r.ID }
func (r *OfflineAttendanceRequest) OwnerID() uint              { return r.UserID }
func (r *OfflineAttendanceRequest) Decision() *RequestDecision { return &r.RequestDecision }
