package models

import "time"

// EmployeeDocument is a file uploaded by an employee. Path is relative to the upload root.
type EmployeeDocument struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint      `json:"user_id" gorm:"column:user_id;not null;index"`
	DocType    string    `json:"doc_type" gorm:"column:doc_type;type:varchar(32);not null"`
	Title      string    `json:"title" gorm:"column:title;not null;default:'';size:200"`
	Path       string    `json:"-" gorm:"column:path;not null;size:500"`
	FileURL    string    `json:"file_url" gorm:"-"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"column:uploaded_at;not null;autoCreateTime"`
}

func (EmployeeDocument) TableName() string {
	return "employee_documents"
}

// ESICProfile stores the employee's state insurance details.
type ESICProfile struct {
	ID           uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID       uint      `json:"-" gorm:"column:user_id;uniqueIndex;not null"`
	ESICNumber   string    `json:"esic_number" gorm:"column:esic_number;not null;default:'';size:30"`
	Dispensary   string    `json:"dispensary" gorm:"column:dispensary;not null;default:'';size:150"`
	BranchOffice string    `json:"branch_office" gorm:"column:branch_office;not null;default:'';size:150"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (ESICProfile) TableName() string {
	return "esic_profiles"
}
