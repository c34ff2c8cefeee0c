package plan

import (
	"time"

	"github.com/google/uuid"
)

// Subscription represents subscriptions. MaxFileCount nil means the plan
// does not cap the number of stored files.
type Subscription struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Plan            string    `gorm:"not null" json:"plan"`
	MaxStorageBytes int64     `gorm:"not null" json:"max_storage_bytes"`
	MaxFileCount    *int64    `json:"max_file_count,omitempty"`
	PeriodStart     time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd       time.Time `gorm:"not null" json:"period_end"`
	Status          string    `gorm:"default:'ACTIVE'" json:"status"`
	CreatedAt       time.Time `gorm:"default:now()" json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Active reports whether the subscription covers the given instant. A
// stored ACTIVE status does not override an elapsed period.
func (s Subscription) Active(now time.Time) bool {
	return s.Status == "ACTIVE" && !now.Before(s.PeriodStart) && !now.After(s.PeriodEnd)
}

// Usage represents usages: the per-user consumption counters a quota
// decision reads fresh on every admission.
type Usage struct {
	UserID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FileCount        int64     `gorm:"default:0" json:"file_count"`
	StorageBytesUsed int64     `gorm:"default:0" json:"storage_bytes_used"`
	UpdatedAt        time.Time `gorm:"default:now()" json:"updated_at"`
}

func (Usage) TableName() string {
	return "usages"
}
