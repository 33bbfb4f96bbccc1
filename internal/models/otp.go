package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPPurpose scopes a one-time code to the flow that issued it.
type OTPPurpose string

const (
	OTPPurposeRegisterVerify OTPPurpose = "REGISTER_VERIFY"
	OTPPurposePasswordReset  OTPPurpose = "PASSWORD_RESET"
)

// EmailOTP is one issued code for an (email, purpose) pair. Only the salted
// hash is stored. Older rows are superseded by newer ones, never deleted.
type EmailOTP struct {
	ID         string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email      string     `json:"email" gorm:"column:email;not null;size:254;index:idx_email_otps_lookup,priority:1"`
	Purpose    OTPPurpose `json:"purpose" gorm:"column:purpose;type:varchar(32);not null;index:idx_email_otps_lookup,priority:2"`
	OTPHash    string     `json:"-" gorm:"column:otp_hash;not null;size:64"`
	Salt       string     `json:"-" gorm:"column:salt;not null;size:32"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"column:expires_at;not null"`
	IsUsed     bool       `json:"is_used" gorm:"column:is_used;not null;default:false"`
	SendCount  int        `json:"send_count" gorm:"column:send_count;not null;default:1"`
	LastSentAt time.Time  `json:"last_sent_at" gorm:"column:last_sent_at;not null"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at;not null;index:idx_email_otps_lookup,priority:3"`
}

func (EmailOTP) TableName() string {
	return "email_otps"
}

// BeforeCreate GORM hook 为 EmailOTP 生成 UUID
func (o *EmailOTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
