package quota

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lumo/internal/domain/plan"
	"lumo/internal/repository/mocks"
	lumo_errors "lumo/pkg/errors"
)

func activeSub(userID uuid.UUID, now time.Time, maxBytes int64, maxFiles *int64) plan.Subscription {
	return plan.Subscription{
		ID:              uuid.New(),
		UserID:          userID,
		Plan:            "standard",
		MaxStorageBytes: maxBytes,
		MaxFileCount:    maxFiles,
		PeriodStart:     now.Add(-time.Hour),
		PeriodEnd:       now.Add(time.Hour),
		Status:          "ACTIVE",
	}
}

func TestEvaluate_AdmitsWithinLimits(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	plans := new(mocks.MockPlanRepository)
	plans.On("GetActiveSubscription", mock.Anything, userID, now).
		Return(activeSub(userID, now, 100, nil), nil)
	plans.On("GetUsage", mock.Anything, userID).
		Return(plan.Usage{UserID: userID, FileCount: 3, StorageBytesUsed: 50}, nil)

	e := NewEvaluator(plans).WithClock(func() time.Time { return now })

	// 50 used + 50 new fills the plan exactly; an exact fit is admitted.
	snap, err := e.Evaluate(context.Background(), userID, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, "standard", snap.Plan)
	assert.Equal(t, int64(50), snap.RemainingBytes())
	assert.Nil(t, snap.RemainingFiles())
	plans.AssertExpectations(t)
}

func TestEvaluate_StorageLimitExceeded(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	plans := new(mocks.MockPlanRepository)
	plans.On("GetActiveSubscription", mock.Anything, userID, now).
		Return(activeSub(userID, now, 100, nil), nil)
	plans.On("GetUsage", mock.Anything, userID).
		Return(plan.Usage{UserID: userID, StorageBytesUsed: 50}, nil)

	e := NewEvaluator(plans).WithClock(func() time.Time { return now })

	snap, err := e.Evaluate(context.Background(), userID, 1, 51)
	assert.ErrorIs(t, err, lumo_errors.ErrStorageLimitExceeded)
	// The snapshot still reflects current usage so the caller can report it.
	assert.Equal(t, int64(50), snap.StorageBytesUsed)
}

func TestEvaluate_FileLimitExceeded(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	maxFiles := int64(10)

	plans := new(mocks.MockPlanRepository)
	plans.On("GetActiveSubscription", mock.Anything, userID, now).
		Return(activeSub(userID, now, 1<<30, &maxFiles), nil)
	plans.On("GetUsage", mock.Anything, userID).
		Return(plan.Usage{UserID: userID, FileCount: 9}, nil)

	e := NewEvaluator(plans).WithClock(func() time.Time { return now })

	_, err := e.Evaluate(context.Background(), userID, 2, 10)
	assert.ErrorIs(t, err, lumo_errors.ErrFileLimitExceeded)
}

func TestEvaluate_NoSubscription(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	plans := new(mocks.MockPlanRepository)
	plans.On("GetActiveSubscription", mock.Anything, userID, now).
		Return(plan.Subscription{}, lumo_errors.ErrNotFound)

	e := NewEvaluator(plans).WithClock(func() time.Time { return now })

	_, err := e.Evaluate(context.Background(), userID, 1, 1)
	assert.ErrorIs(t, err, lumo_errors.ErrNoActiveSubscription)
}

func TestEvaluate_LapsedPeriodDeniesDespiteActiveStatus(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	sub := activeSub(userID, now, 100, nil)
	sub.PeriodEnd = now.Add(-time.Minute)

	plans := new(mocks.MockPlanRepository)
	plans.On("GetActiveSubscription", mock.Anything, userID, now).Return(sub, nil)

	e := NewEvaluator(plans).WithClock(func() time.Time { return now })

	_, err := e.Evaluate(context.Background(), userID, 1, 1)
	assert.ErrorIs(t, err, lumo_errors.ErrNoActiveSubscription)
}

func TestEvaluate_MissingUsageCountsAsZero(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	plans := new(mocks.MockPlanRepository)
	plans.On("GetActiveSubscription", mock.Anything, userID, now).
		Return(activeSub(userID, now, 100, nil), nil)
	plans.On("GetUsage", mock.Anything, userID).
		Return(plan.Usage{}, lumo_errors.ErrNotFound)

	e := NewEvaluator(plans).WithClock(func() time.Time { return now })

	snap, err := e.Evaluate(context.Background(), userID, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.StorageBytesUsed)
}
