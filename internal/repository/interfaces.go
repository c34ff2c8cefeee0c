package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lumo/internal/domain/photo"
	"lumo/internal/domain/plan"
	"lumo/internal/domain/token"
	"lumo/internal/domain/user"
)

// The metadata store is selected once at process start (postgres or
// redisstore); nothing above this package branches on the backend.

type TokenRepository interface {
	Create(ctx context.Context, t *token.UploadToken) error
	GetByValue(ctx context.Context, value string) (token.UploadToken, error)
	GetByID(ctx context.Context, id uuid.UUID) (token.UploadToken, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]token.UploadToken, error)
	IncrementUploadCount(ctx context.Context, id uuid.UUID, delta int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PhotoRepository interface {
	Create(ctx context.Context, p *photo.Photo) error
	GetByID(ctx context.Context, id uuid.UUID) (photo.Photo, error)
	// ListByState returns records oldest-first so relay passes are stable.
	ListByState(ctx context.Context, state photo.State) ([]photo.Photo, error)
	ListByToken(ctx context.Context, tokenID uuid.UUID) ([]photo.Photo, error)
	UpdateState(ctx context.Context, id uuid.UUID, state photo.State) error
	// MarkStored is the terminal transition: state, transition time and
	// the durable-storage handle in one update. An empty handle records a
	// force-resolved record whose local file vanished.
	MarkStored(ctx context.Context, id uuid.UUID, remoteHandle string, storedAt time.Time) error
}

type PlanRepository interface {
	CreateSubscription(ctx context.Context, s *plan.Subscription) error
	// GetActiveSubscription returns ErrNotFound when the user has no
	// subscription whose period covers now.
	GetActiveSubscription(ctx context.Context, userID uuid.UUID, now time.Time) (plan.Subscription, error)
	GetUsage(ctx context.Context, userID uuid.UUID) (plan.Usage, error)
	IncrementUsage(ctx context.Context, userID uuid.UUID, files, bytes int64) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// Store bundles the per-entity repositories behind one backend choice.
type Store struct {
	Tokens TokenRepository
	Photos PhotoRepository
	Plans  PlanRepository
	Users  UserRepository
}
