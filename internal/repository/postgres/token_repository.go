package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lumo/internal/domain/token"
	"lumo/internal/repository"
	lumo_errors "lumo/pkg/errors"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, t *token.UploadToken) error {
	res := r.db.WithContext(ctx).Create(t)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return lumo_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *TokenRepository) GetByValue(ctx context.Context, value string) (token.UploadToken, error) {
	var t token.UploadToken
	err := r.db.WithContext(ctx).Where("value = ?", value).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return token.UploadToken{}, lumo_errors.ErrNotFound
		}
		return token.UploadToken{}, err
	}
	return t, nil
}

func (r *TokenRepository) GetByID(ctx context.Context, id uuid.UUID) (token.UploadToken, error) {
	var t token.UploadToken
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return token.UploadToken{}, lumo_errors.ErrNotFound
		}
		return token.UploadToken{}, err
	}
	return t, nil
}

func (r *TokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]token.UploadToken, error) {
	var tokens []token.UploadToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *TokenRepository) IncrementUploadCount(ctx context.Context, id uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&token.UploadToken{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_uploads": gorm.Expr("current_uploads + ?", delta),
			"used":            true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return lumo_errors.ErrNotFound
	}
	return nil
}

func (r *TokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&token.UploadToken{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return lumo_errors.ErrNotFound
	}
	return nil
}
