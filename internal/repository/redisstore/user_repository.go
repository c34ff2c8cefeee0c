package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"lumo/internal/domain/user"
	lumo_errors "lumo/pkg/errors"
)

type UserRepository struct {
	client *goredis.Client
}

func userKey(id uuid.UUID) string        { return fmt.Sprintf("user:%s", id) }
func userEmailKey(email string) string   { return fmt.Sprintf("user:email:%s", email) }

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	ok, err := r.client.SetNX(ctx, userEmailKey(u.Email), u.ID.String(), 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return lumo_errors.ErrAlreadyExists
	}

	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, userKey(u.ID), data, 0).Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	data, err := r.client.Get(ctx, userKey(id)).Result()
	if err == goredis.Nil {
		return user.User{}, lumo_errors.ErrNotFound
	}
	if err != nil {
		return user.User{}, err
	}
	var u user.User
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	id, err := r.client.Get(ctx, userEmailKey(email)).Result()
	if err == goredis.Nil {
		return user.User{}, lumo_errors.ErrNotFound
	}
	if err != nil {
		return user.User{}, err
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		return user.User{}, lumo_errors.ErrNotFound
	}
	return r.GetByID(ctx, userID)
}
