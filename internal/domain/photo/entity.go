package photo

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle of a relayed photo. Transitions are forward-only:
// pending_local -> stored, or pending_local -> failed -> pending_local on
// the next relay pass.
type State string

const (
	StatePendingLocal State = "PENDING_LOCAL"
	StateStored       State = "STORED"
	StateFailed       State = "FAILED"
)

// Photo represents photos. One row per admitted file; the row is the
// single source of truth for the file's relay lifecycle.
type Photo struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TokenID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"token_id"`
	OriginalFilename string     `gorm:"not null" json:"original_filename"`
	StoredFilename   string     `gorm:"uniqueIndex;not null" json:"stored_filename"`
	SizeBytes        int64      `gorm:"not null" json:"size_bytes"`
	MimeType         string     `gorm:"not null" json:"mime_type"`
	GuestName        string     `json:"guest_name,omitempty"`
	GuestMessage     string     `json:"guest_message,omitempty"`
	State            State      `gorm:"type:varchar(20);default:'PENDING_LOCAL';index" json:"state"`
	RemoteHandle     string     `json:"remote_handle,omitempty"`
	StoredAt         *time.Time `json:"stored_at,omitempty"`
	CreatedAt        time.Time  `gorm:"default:now()" json:"created_at"`
}

func (Photo) TableName() string {
	return "photos"
}
