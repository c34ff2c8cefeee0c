package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lumo/internal/domain/token"
	"lumo/internal/repository"
	"lumo/internal/tokencodec"
	lumo_errors "lumo/pkg/errors"
)

// TokenService mints and manages upload tokens for organizers.
type TokenService struct {
	repo   repository.TokenRepository
	secret []byte
	now    func() time.Time
}

func NewTokenService(repo repository.TokenRepository, secret []byte) *TokenService {
	return &TokenService{repo: repo, secret: secret, now: time.Now}
}

type CreateTokenInput struct {
	UserID     uuid.UUID
	Name       string
	MaxUploads int
	ExpiresAt  *time.Time
}

func (s *TokenService) Create(ctx context.Context, input CreateTokenInput) (token.UploadToken, error) {
	if input.UserID == uuid.Nil || input.Name == "" || input.MaxUploads <= 0 {
		return token.UploadToken{}, lumo_errors.ErrInvalidInput
	}
	if input.ExpiresAt != nil && input.ExpiresAt.Before(s.now()) {
		return token.UploadToken{}, lumo_errors.ErrInvalidInput
	}

	value, err := tokencodec.Mint(s.secret, tokencodec.Payload{
		UserID:   input.UserID,
		Name:     input.Name,
		IssuedAt: s.now(),
	})
	if err != nil {
		return token.UploadToken{}, err
	}

	t := token.UploadToken{
		ID:         uuid.New(),
		UserID:     input.UserID,
		Value:      value,
		Name:       input.Name,
		MaxUploads: input.MaxUploads,
		ExpiresAt:  input.ExpiresAt,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, &t); err != nil {
		return token.UploadToken{}, err
	}
	return t, nil
}

func (s *TokenService) ListByUser(ctx context.Context, userID uuid.UUID) ([]token.UploadToken, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Delete soft-deletes an owner's token. A deleted token never admits
// another upload.
func (s *TokenService) Delete(ctx context.Context, userID, tokenID uuid.UUID) error {
	t, err := s.repo.GetByID(ctx, tokenID)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return lumo_errors.ErrForbidden
	}
	return s.repo.Delete(ctx, tokenID)
}

// TokenInfo is the public, guest-facing view of a token.
type TokenInfo struct {
	Name             string     `json:"name"`
	RemainingUploads int        `json:"remaining_uploads"`
	MaxUploads       int        `json:"max_uploads"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	Expired          bool       `json:"expired"`
}

// Info resolves a token string for the guest upload page. Expired tokens
// are reported as expired, not hidden: the guest-facing UX distinguishes
// "event is over" from "bad link".
func (s *TokenService) Info(ctx context.Context, value string) (TokenInfo, error) {
	if !tokencodec.VerifyShape(value) {
		return TokenInfo{}, lumo_errors.ErrInvalidTokenFormat
	}
	t, err := s.repo.GetByValue(ctx, value)
	if err != nil {
		if err == lumo_errors.ErrNotFound {
			return TokenInfo{}, lumo_errors.ErrTokenNotFound
		}
		return TokenInfo{}, err
	}
	return TokenInfo{
		Name:             t.Name,
		RemainingUploads: t.Remaining(),
		MaxUploads:       t.MaxUploads,
		ExpiresAt:        t.ExpiresAt,
		Expired:          t.Expired(s.now()),
	}, nil
}
