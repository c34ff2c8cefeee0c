package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lumo/internal/domain/plan"
)

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) CreateSubscription(ctx context.Context, s *plan.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockPlanRepository) GetActiveSubscription(ctx context.Context, userID uuid.UUID, now time.Time) (plan.Subscription, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(plan.Subscription), args.Error(1)
}

func (m *MockPlanRepository) GetUsage(ctx context.Context, userID uuid.UUID) (plan.Usage, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(plan.Usage), args.Error(1)
}

func (m *MockPlanRepository) IncrementUsage(ctx context.Context, userID uuid.UUID, files, bytes int64) error {
	args := m.Called(ctx, userID, files, bytes)
	return args.Error(0)
}
