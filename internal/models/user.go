package models

import (
	"time"
)

// User 对应于数据库中的 users 表. An unverified user cannot log in; only a
// successful OTP verification flips IsVerified and IsActive together.
type User struct {
	ID           uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string           `json:"email" gorm:"column:email;uniqueIndex;not null;size:254"`
	PasswordHash string           `json:"-" gorm:"column:password_hash;not null;size:255"`
	FullName     string           `json:"full_name" gorm:"column:full_name;not null;default:'';size:255"`
	IsVerified   bool             `json:"is_verified" gorm:"column:is_verified;not null;default:false"`
	IsActive     bool             `json:"is_active" gorm:"column:is_active;not null;default:false"`
	IsAdmin      bool             `json:"is_admin" gorm:"column:is_admin;not null;default:false;index"`
	CreatedAt    time.Time        `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt    time.Time        `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
	Profile      *EmployeeProfile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

// TableName 指定 User 结构体对应的数据库表名
func (User) TableName() string {
	return "users"
}

// EmployeeProfile holds the optional HR attributes of a user.
type EmployeeProfile struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       uint      `json:"user_id" gorm:"column:user_id;uniqueIndex;not null"`
	Phone        string    `json:"phone" gorm:"column:phone;not null;default:'';size:20"`
	Department   string    `json:"department" gorm:"column:department;not null;default:'';size:100"`
	Designation  string    `json:"designation" gorm:"column:designation;not null;default:'';size:100"`
	EmployeeCode string    `json:"employee_code" gorm:"column:employee_code;not null;default:'';size:50"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (EmployeeProfile) TableName() string {
	return "employee_profiles"
}
