package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lumo/internal/storage"
)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) EnsureContainer(ctx context.Context, name string) (storage.Container, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(storage.Container), args.Error(1)
}

func (m *MockBlobStore) Put(ctx context.Context, c storage.Container, localPath, filename, mimeType string) (string, error) {
	args := m.Called(ctx, c, localPath, filename, mimeType)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Get(ctx context.Context, handle, destPath string) error {
	args := m.Called(ctx, handle, destPath)
	return args.Error(0)
}

func (m *MockBlobStore) Delete(ctx context.Context, handle string) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}
