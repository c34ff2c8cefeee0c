package token

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadToken represents upload_tokens. The Value column carries the full
// "[64 hex].[16 hex]" capability string embedded in guest links and QR
// codes; it is the lookup key at admission time.
type UploadToken struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Value          string         `gorm:"uniqueIndex;not null" json:"value"`
	Name           string         `gorm:"not null" json:"name"`
	MaxUploads     int            `gorm:"not null" json:"max_uploads"`
	CurrentUploads int            `gorm:"default:0" json:"current_uploads"`
	Used           bool           `gorm:"default:false" json:"used"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	CreatedAt      time.Time      `gorm:"default:now()" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UploadToken) TableName() string {
	return "upload_tokens"
}

// Expired reports whether the token's expiry, if set, lies before now.
func (t UploadToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Remaining returns how many uploads the token can still admit.
func (t UploadToken) Remaining() int {
	if r := t.MaxUploads - t.CurrentUploads; r > 0 {
		return r
	}
	return 0
}
