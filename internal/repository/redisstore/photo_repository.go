package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"lumo/internal/domain/photo"
	lumo_errors "lumo/pkg/errors"
)

type PhotoRepository struct {
	client *goredis.Client
}

func photoKey(id uuid.UUID) string            { return fmt.Sprintf("photo:%s", id) }
func photosStateKey(s photo.State) string     { return fmt.Sprintf("photos:state:%s", s) }
func tokenPhotosKey(tokenID uuid.UUID) string { return fmt.Sprintf("token:%s:photos", tokenID) }

func (r *PhotoRepository) Create(ctx context.Context, p *photo.Photo) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	score := float64(p.CreatedAt.UnixNano())
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, photoKey(p.ID), data, 0)
	pipe.ZAdd(ctx, photosStateKey(p.State), goredis.Z{Score: score, Member: p.ID.String()})
	pipe.ZAdd(ctx, tokenPhotosKey(p.TokenID), goredis.Z{Score: score, Member: p.ID.String()})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *PhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (photo.Photo, error) {
	data, err := r.client.Get(ctx, photoKey(id)).Result()
	if err == goredis.Nil {
		return photo.Photo{}, lumo_errors.ErrNotFound
	}
	if err != nil {
		return photo.Photo{}, err
	}
	var p photo.Photo
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return photo.Photo{}, err
	}
	return p, nil
}

func (r *PhotoRepository) ListByState(ctx context.Context, state photo.State) ([]photo.Photo, error) {
	// ZRange over a created_at-scored set keeps relay order stable
	// (oldest first), matching the postgres implementation.
	ids, err := r.client.ZRange(ctx, photosStateKey(state), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, ids)
}

func (r *PhotoRepository) ListByToken(ctx context.Context, tokenID uuid.UUID) ([]photo.Photo, error) {
	ids, err := r.client.ZRange(ctx, tokenPhotosKey(tokenID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, ids)
}

func (r *PhotoRepository) UpdateState(ctx context.Context, id uuid.UUID, state photo.State) error {
	return r.update(ctx, id, func(p *photo.Photo) {
		p.State = state
	})
}

func (r *PhotoRepository) MarkStored(ctx context.Context, id uuid.UUID, remoteHandle string, storedAt time.Time) error {
	return r.update(ctx, id, func(p *photo.Photo) {
		p.State = photo.StateStored
		p.RemoteHandle = remoteHandle
		p.StoredAt = &storedAt
	})
}

func (r *PhotoRepository) update(ctx context.Context, id uuid.UUID, mutate func(*photo.Photo)) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	oldState := p.State
	mutate(&p)
	state := p.State
	data, err := json.Marshal(&p)
	if err != nil {
		return err
	}

	score := float64(p.CreatedAt.UnixNano())
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, photoKey(id), data, 0)
	if oldState != state {
		pipe.ZRem(ctx, photosStateKey(oldState), id.String())
		pipe.ZAdd(ctx, photosStateKey(state), goredis.Z{Score: score, Member: id.String()})
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *PhotoRepository) collect(ctx context.Context, ids []string) ([]photo.Photo, error) {
	photos := make([]photo.Photo, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		p, err := r.GetByID(ctx, id)
		if err != nil {
			continue
		}
		photos = append(photos, p)
	}
	return photos, nil
}
