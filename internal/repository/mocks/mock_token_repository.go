package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lumo/internal/domain/token"
)

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, t *token.UploadToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByValue(ctx context.Context, value string) (token.UploadToken, error) {
	args := m.Called(ctx, value)
	return args.Get(0).(token.UploadToken), args.Error(1)
}

func (m *MockTokenRepository) GetByID(ctx context.Context, id uuid.UUID) (token.UploadToken, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(token.UploadToken), args.Error(1)
}

func (m *MockTokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]token.UploadToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]token.UploadToken), args.Error(1)
}

func (m *MockTokenRepository) IncrementUploadCount(ctx context.Context, id uuid.UUID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
