package redisstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"lumo/internal/domain/token"
	lumo_errors "lumo/pkg/errors"
)

type TokenRepository struct {
	client *goredis.Client
}

func tokenKey(id uuid.UUID) string      { return fmt.Sprintf("token:%s", id) }
func tokenValueKey(value string) string { return fmt.Sprintf("token:value:%s", value) }
func userTokensKey(id uuid.UUID) string { return fmt.Sprintf("user:%s:tokens", id) }

func (r *TokenRepository) Create(ctx context.Context, t *token.UploadToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	// The value index doubles as the uniqueness guard.
	ok, err := r.client.SetNX(ctx, tokenValueKey(t.Value), t.ID.String(), 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return lumo_errors.ErrAlreadyExists
	}

	fields := map[string]interface{}{
		"id":              t.ID.String(),
		"user_id":         t.UserID.String(),
		"value":           t.Value,
		"name":            t.Name,
		"max_uploads":     t.MaxUploads,
		"current_uploads": t.CurrentUploads,
		"used":            strconv.FormatBool(t.Used),
		"created_at":      formatTime(t.CreatedAt),
		"deleted":         "false",
	}
	if t.ExpiresAt != nil {
		fields["expires_at"] = formatTime(*t.ExpiresAt)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, tokenKey(t.ID), fields)
	pipe.ZAdd(ctx, userTokensKey(t.UserID), goredis.Z{
		Score:  float64(t.CreatedAt.UnixNano()),
		Member: t.ID.String(),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *TokenRepository) GetByValue(ctx context.Context, value string) (token.UploadToken, error) {
	id, err := r.client.Get(ctx, tokenValueKey(value)).Result()
	if err == goredis.Nil {
		return token.UploadToken{}, lumo_errors.ErrNotFound
	}
	if err != nil {
		return token.UploadToken{}, err
	}
	tokenID, err := uuid.Parse(id)
	if err != nil {
		return token.UploadToken{}, lumo_errors.ErrNotFound
	}
	return r.GetByID(ctx, tokenID)
}

func (r *TokenRepository) GetByID(ctx context.Context, id uuid.UUID) (token.UploadToken, error) {
	fields, err := r.client.HGetAll(ctx, tokenKey(id)).Result()
	if err != nil {
		return token.UploadToken{}, err
	}
	if len(fields) == 0 || fields["deleted"] == "true" {
		return token.UploadToken{}, lumo_errors.ErrNotFound
	}
	return tokenFromFields(fields)
}

func (r *TokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]token.UploadToken, error) {
	ids, err := r.client.ZRevRange(ctx, userTokensKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	tokens := make([]token.UploadToken, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		t, err := r.GetByID(ctx, id)
		if err != nil {
			continue // soft-deleted
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func (r *TokenRepository) IncrementUploadCount(ctx context.Context, id uuid.UUID, delta int) error {
	exists, err := r.client.Exists(ctx, tokenKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return lumo_errors.ErrNotFound
	}
	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, tokenKey(id), "current_uploads", int64(delta))
	pipe.HSet(ctx, tokenKey(id), "used", "true")
	_, err = pipe.Exec(ctx)
	return err
}

func (r *TokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	fields, err := r.client.HGetAll(ctx, tokenKey(id)).Result()
	if err != nil {
		return err
	}
	if len(fields) == 0 || fields["deleted"] == "true" {
		return lumo_errors.ErrNotFound
	}

	// Soft delete: photos still reference the token, so the document
	// stays; only the value index goes away so admission stops matching.
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, tokenKey(id), "deleted", "true")
	pipe.Del(ctx, tokenValueKey(fields["value"]))
	_, err = pipe.Exec(ctx)
	return err
}

func tokenFromFields(fields map[string]string) (token.UploadToken, error) {
	id, err := uuid.Parse(fields["id"])
	if err != nil {
		return token.UploadToken{}, err
	}
	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		return token.UploadToken{}, err
	}
	maxUploads, _ := strconv.Atoi(fields["max_uploads"])
	currentUploads, _ := strconv.Atoi(fields["current_uploads"])
	used, _ := strconv.ParseBool(fields["used"])

	t := token.UploadToken{
		ID:             id,
		UserID:         userID,
		Value:          fields["value"],
		Name:           fields["name"],
		MaxUploads:     maxUploads,
		CurrentUploads: currentUploads,
		Used:           used,
	}
	if raw := fields["created_at"]; raw != "" {
		if createdAt, err := parseTime(raw); err == nil {
			t.CreatedAt = createdAt
		}
	}
	if raw := fields["expires_at"]; raw != "" {
		if expiresAt, err := parseTime(raw); err == nil {
			t.ExpiresAt = &expiresAt
		}
	}
	return t, nil
}
