package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type MediaMetadata map[string]string

func (m MediaMetadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *MediaMetadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for MediaMetadata")
	}
}

// Media is a file uploaded by a user to object storage.
type Media struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       uint          `gorm:"index:idx_media_user_created,priority:1;not null" json:"user_id"`
	OriginalName string        `gorm:"size:255;not null" json:"original_name"`
	FileName     string        `gorm:"size:255;index;not null" json:"file_name"`
	MimeType     string        `gorm:"size:100;index;not null" json:"mime_type"`
	Path         string        `gorm:"size:512;not null" json:"path"`
	Disk         string        `gorm:"size:32;default:'s3'" json:"disk"`
	Size         int64         `gorm:"not null" json:"size"`
	Metadata     MediaMetadata `gorm:"type:text" json:"metadata,omitempty"`
	AltText      *string       `gorm:"size:255" json:"alt_text"`
	URL          string        `gorm:"size:1024" json:"url"`
	CreatedAt    time.Time     `gorm:"index:idx_media_user_created,priority:2" json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (Media) TableName() string {
	return "media"
}
