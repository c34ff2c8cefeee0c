package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lumo/internal/domain/photo"
)

type MockPhotoRepository struct {
	mock.Mock
}

func (m *MockPhotoRepository) Create(ctx context.Context, p *photo.Photo) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (photo.Photo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(photo.Photo), args.Error(1)
}

func (m *MockPhotoRepository) ListByState(ctx context.Context, state photo.State) ([]photo.Photo, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]photo.Photo), args.Error(1)
}

func (m *MockPhotoRepository) ListByToken(ctx context.Context, tokenID uuid.UUID) ([]photo.Photo, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]photo.Photo), args.Error(1)
}

func (m *MockPhotoRepository) UpdateState(ctx context.Context, id uuid.UUID, state photo.State) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *MockPhotoRepository) MarkStored(ctx context.Context, id uuid.UUID, remoteHandle string, storedAt time.Time) error {
	args := m.Called(ctx, id, remoteHandle, storedAt)
	return args.Error(0)
}
