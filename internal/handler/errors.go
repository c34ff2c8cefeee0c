package handler

import (
	"errors"
	"net/http"

	lumo_errors "lumo/pkg/errors"
)

// statusAndCode maps service errors onto an HTTP status and a stable
// machine-readable code for the response envelope.
func statusAndCode(err error) (int, string) {
	switch {
	case errors.Is(err, lumo_errors.ErrInvalidInput),
		errors.Is(err, lumo_errors.ErrInvalidTokenFormat),
		errors.Is(err, lumo_errors.ErrEmptyBatch):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, lumo_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, lumo_errors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, lumo_errors.ErrNotFound),
		errors.Is(err, lumo_errors.ErrTokenNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, lumo_errors.ErrTokenExpired):
		return http.StatusGone, "TOKEN_EXPIRED"
	case errors.Is(err, lumo_errors.ErrAlreadyExists):
		return http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, lumo_errors.ErrUploadLimitExceeded):
		return http.StatusConflict, "UPLOAD_LIMIT_EXCEEDED"
	case errors.Is(err, lumo_errors.ErrNoActiveSubscription):
		return http.StatusPaymentRequired, "NO_ACTIVE_SUBSCRIPTION"
	case errors.Is(err, lumo_errors.ErrFileLimitExceeded):
		return http.StatusPaymentRequired, "FILE_LIMIT_EXCEEDED"
	case errors.Is(err, lumo_errors.ErrStorageLimitExceeded):
		return http.StatusPaymentRequired, "STORAGE_LIMIT_EXCEEDED"
	case errors.Is(err, lumo_errors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	case errors.Is(err, lumo_errors.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
