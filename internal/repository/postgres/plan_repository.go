package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lumo/internal/domain/plan"
	"lumo/internal/repository"
	lumo_errors "lumo/pkg/errors"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) repository.PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) CreateSubscription(ctx context.Context, s *plan.Subscription) error {
	res := r.db.WithContext(ctx).Create(s)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return lumo_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PlanRepository) GetActiveSubscription(ctx context.Context, userID uuid.UUID, now time.Time) (plan.Subscription, error) {
	var s plan.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = 'ACTIVE' AND period_start <= ? AND period_end >= ?", userID, now, now).
		Order("period_end DESC").
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return plan.Subscription{}, lumo_errors.ErrNotFound
		}
		return plan.Subscription{}, err
	}
	return s, nil
}

func (r *PlanRepository) GetUsage(ctx context.Context, userID uuid.UUID) (plan.Usage, error) {
	var u plan.Usage
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return plan.Usage{}, lumo_errors.ErrNotFound
		}
		return plan.Usage{}, err
	}
	return u, nil
}

func (r *PlanRepository) IncrementUsage(ctx context.Context, userID uuid.UUID, files, bytes int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"file_count":         gorm.Expr("usages.file_count + ?", files),
				"storage_bytes_used": gorm.Expr("usages.storage_bytes_used + ?", bytes),
				"updated_at":         time.Now(),
			}),
		}).
		Create(&plan.Usage{
			UserID:           userID,
			FileCount:        files,
			StorageBytesUsed: bytes,
			UpdatedAt:        time.Now(),
		}).Error
}
