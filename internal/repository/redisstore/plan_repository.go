package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"lumo/internal/domain/plan"
	lumo_errors "lumo/pkg/errors"
)

type PlanRepository struct {
	client *goredis.Client
}

func subKey(userID uuid.UUID) string   { return fmt.Sprintf("sub:%s", userID) }
func usageKey(userID uuid.UUID) string { return fmt.Sprintf("usage:%s", userID) }

func (r *PlanRepository) CreateSubscription(ctx context.Context, s *plan.Subscription) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, subKey(s.UserID), data, 0).Err()
}

func (r *PlanRepository) GetActiveSubscription(ctx context.Context, userID uuid.UUID, now time.Time) (plan.Subscription, error) {
	data, err := r.client.Get(ctx, subKey(userID)).Result()
	if err == goredis.Nil {
		return plan.Subscription{}, lumo_errors.ErrNotFound
	}
	if err != nil {
		return plan.Subscription{}, err
	}
	var s plan.Subscription
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return plan.Subscription{}, err
	}
	if !s.Active(now) {
		return plan.Subscription{}, lumo_errors.ErrNotFound
	}
	return s, nil
}

func (r *PlanRepository) GetUsage(ctx context.Context, userID uuid.UUID) (plan.Usage, error) {
	fields, err := r.client.HGetAll(ctx, usageKey(userID)).Result()
	if err != nil {
		return plan.Usage{}, err
	}
	if len(fields) == 0 {
		return plan.Usage{}, lumo_errors.ErrNotFound
	}
	fileCount, _ := strconv.ParseInt(fields["file_count"], 10, 64)
	storageBytes, _ := strconv.ParseInt(fields["storage_bytes_used"], 10, 64)
	return plan.Usage{
		UserID:           userID,
		FileCount:        fileCount,
		StorageBytesUsed: storageBytes,
	}, nil
}

func (r *PlanRepository) IncrementUsage(ctx context.Context, userID uuid.UUID, files, bytes int64) error {
	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, usageKey(userID), "file_count", files)
	pipe.HIncrBy(ctx, usageKey(userID), "storage_bytes_used", bytes)
	_, err := pipe.Exec(ctx)
	return err
}
