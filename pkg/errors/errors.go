package lumo_errors

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("already exists")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Admission errors. Guests only ever see these, never storage or
// database internals.
var (
	ErrInvalidTokenFormat   = errors.New("invalid token format")
	ErrTokenNotFound        = errors.New("token not found")
	ErrTokenExpired         = errors.New("token expired")
	ErrUploadLimitExceeded  = errors.New("upload limit exceeded")
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrEmptyBatch           = errors.New("no files in upload")
)

// Quota errors, surfaced by the evaluator as-is.
var (
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrFileLimitExceeded    = errors.New("file limit exceeded")
	ErrStorageLimitExceeded = errors.New("storage limit exceeded")
)

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now()
	return &now
}
