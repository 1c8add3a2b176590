package model

import (
	"time"

	"github.com/lib/pq"
)

// AbilityAll grants every ability.
const AbilityAll = "*"

const (
	AbilityRead  = "read"
	AbilityWrite = "write"
)

// AccessToken is a personal API token. Only the SHA-256 of the secret is stored;
// the client receives "<id>|<secret>" once, at creation.
type AccessToken struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index;not null" json:"-"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	Token      string         `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Abilities  pq.StringArray `gorm:"type:text" json:"abilities"`
	ExpiresAt  *time.Time     `gorm:"index" json:"expires_at"`
	LastUsedAt *time.Time     `json:"last_used_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (AccessToken) TableName() string {
	return "personal_access_tokens"
}

// Can reports whether the token carries the ability, "*" matching everything.
func (t *AccessToken) Can(ability string) bool {
	for _, a := range t.Abilities {
		if a == AbilityAll || a == ability {
			return true
		}
	}
	return false
}

// Expired reports whether the token has an expiry in the past.
func (t *AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}
