package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SocialLinks holds the optional profile links shown on the author page.
type SocialLinks struct {
	Twitter  *string `json:"twitter,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
	GitHub   *string `json:"github,omitempty"`
}

// Value stores the links as a JSON document.
func (s SocialLinks) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads the JSON document written by Value.
func (s *SocialLinks) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = SocialLinks{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for SocialLinks")
	}
}

type User struct {
	ID              uint         `gorm:"primarykey" json:"id"`
	Name            string       `gorm:"size:255;not null" json:"name"`
	Email           string       `gorm:"size:255;uniqueIndex;not null" json:"email"` // always lower-case
	PasswordHash    string       `gorm:"column:password;not null" json:"-"`
	Avatar          *string      `gorm:"size:255" json:"avatar"`
	Bio             *string      `gorm:"type:text" json:"bio"`
	Website         *string      `gorm:"size:255" json:"website"`
	SocialLinks     *SocialLinks `gorm:"type:text" json:"social_links"`
	IsAdmin         bool         `gorm:"default:false;index" json:"is_admin"`
	LastActiveAt    *time.Time   `gorm:"index" json:"last_active_at"`
	EmailVerifiedAt *time.Time   `json:"email_verified_at"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	Tokens []AccessToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Media  []Media       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}
