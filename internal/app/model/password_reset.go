package model

import (
	"time"
)

// PasswordResetToken holds at most one outstanding reset per e-mail address.
type PasswordResetToken struct {
	Email     string    `gorm:"primaryKey;size:255" json:"email"`
	Token     string    `gorm:"size:255;not null" json:"-"` // bcrypt hash of the mailed token
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
