package httpdto

import "time"

// CreateTokenRequest is used for POST /tokens
type CreateTokenRequest struct {
	Name       string     `json:"name" binding:"required"`
	MaxUploads int        `json:"max_uploads" binding:"required,gt=0"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}
