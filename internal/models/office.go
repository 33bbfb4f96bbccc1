package models

import "time"

// OfficeLocation is an office with the geofence used for attendance.
type OfficeLocation struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string         `json:"name" gorm:"column:name;not null;size:150"`
	Address        string         `json:"address" gorm:"column:address;not null;default:'';size:500"`
	Latitude       float64        `json:"latitude" gorm:"column:latitude;not null"`
	Longitude      float64        `json:"longitude" gorm:"column:longitude;not null"`
	AllowedRadiusM int            `json:"allowed_radius_m" gorm:"column:allowed_radius_m;not null;default:100"`
	IsActive       bool           `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time      `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
	QR             *OfficeQRToken `json:"qr,omitempty" gorm:"foreignKey:OfficeID"`
}

func (OfficeLocation) TableName() string {
	return "office_locations"
}

// OfficeQRToken is the single scannable token of an office. Rotation
// replaces Token in place so the previous value stops matching at once.
type OfficeQRToken struct {
	ID        uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	OfficeID  uint            `json:"office_id" gorm:"column:office_id;uniqueIndex;not null"`
	Office    *OfficeLocation `json:"-" gorm:"foreignKey:OfficeID"`
	Token     string          `json:"token" gorm:"column:token;uniqueIndex;not null;size:64"`
	IsActive  bool            `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (OfficeQRToken) TableName() string {
	return "office_qr_tokens"
}
