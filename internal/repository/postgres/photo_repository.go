package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lumo/internal/domain/photo"
	"lumo/internal/repository"
	lumo_errors "lumo/pkg/errors"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) repository.PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(ctx context.Context, p *photo.Photo) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return lumo_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (photo.Photo, error) {
	var p photo.Photo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return photo.Photo{}, lumo_errors.ErrNotFound
		}
		return photo.Photo{}, err
	}
	return p, nil
}

func (r *PhotoRepository) ListByState(ctx context.Context, state photo.State) ([]photo.Photo, error) {
	var photos []photo.Photo
	err := r.db.WithContext(ctx).
		Where("state = ?", state).
		Order("created_at ASC").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *PhotoRepository) ListByToken(ctx context.Context, tokenID uuid.UUID) ([]photo.Photo, error) {
	var photos []photo.Photo
	err := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Order("created_at ASC").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *PhotoRepository) UpdateState(ctx context.Context, id uuid.UUID, state photo.State) error {
	res := r.db.WithContext(ctx).
		Model(&photo.Photo{}).
		Where("id = ?", id).
		Update("state", state)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return lumo_errors.ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) MarkStored(ctx context.Context, id uuid.UUID, remoteHandle string, storedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&photo.Photo{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"state":         photo.StateStored,
			"remote_handle": remoteHandle,
			"stored_at":     storedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return lumo_errors.ErrNotFound
	}
	return nil
}
