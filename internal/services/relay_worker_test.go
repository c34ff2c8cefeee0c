package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lumo/internal/domain/photo"
	"lumo/internal/repository/mocks"
	"lumo/internal/storage"
	storagemocks "lumo/internal/storage/mocks"
)

type relayFixture struct {
	worker  *RelayWorker
	photos  *mocks.MockPhotoRepository
	blobs   *storagemocks.MockBlobStore
	staging *storage.Staging
	now     time.Time
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()

	staging, err := storage.NewStaging(t.TempDir())
	require.NoError(t, err)

	photos := new(mocks.MockPhotoRepository)
	blobs := new(storagemocks.MockBlobStore)
	now := time.Date(2026, 6, 21, 9, 0, 0, 0, time.UTC)

	worker := NewRelayWorker(photos, staging, blobs, "lumo-photos", time.Minute, 2*time.Minute, nil).
		WithClock(func() time.Time { return now })

	return &relayFixture{worker: worker, photos: photos, blobs: blobs, staging: staging, now: now}
}

func (f *relayFixture) stagePhoto(t *testing.T, storedName, originalName string) photo.Photo {
	t.Helper()
	_, err := f.staging.Save(storedName, strings.NewReader("image-bytes"))
	require.NoError(t, err)
	return photo.Photo{
		ID:               uuid.New(),
		TokenID:          uuid.New(),
		OriginalFilename: originalName,
		StoredFilename:   storedName,
		MimeType:         "image/jpeg",
		State:            photo.StatePendingLocal,
	}
}

func TestRunPass_MigratesPendingPhotos(t *testing.T) {
	f := newRelayFixture(t)
	p1 := f.stagePhoto(t, "a.jpg", "IMG_0001.jpg")
	p2 := f.stagePhoto(t, "b.jpg", "IMG_0002.jpg")

	f.blobs.On("EnsureContainer", mock.Anything, "lumo-photos").
		Return(storage.Container("lumo-photos"), nil).Once()
	f.photos.On("ListByState", mock.Anything, photo.StatePendingLocal).
		Return([]photo.Photo{p1, p2}, nil).Once()
	// The durable object carries the guest's original filename, not the
	// random staging name the bytes were read from.
	f.blobs.On("Put", mock.Anything, storage.Container("lumo-photos"),
		f.staging.Path("a.jpg"), "IMG_0001.jpg", "image/jpeg").Return("lumo-photos/IMG_0001.jpg", nil)
	f.blobs.On("Put", mock.Anything, storage.Container("lumo-photos"),
		f.staging.Path("b.jpg"), "IMG_0002.jpg", "image/jpeg").Return("lumo-photos/IMG_0002.jpg", nil)
	f.photos.On("MarkStored", mock.Anything, p1.ID, "lumo-photos/IMG_0001.jpg", f.now).Return(nil)
	f.photos.On("MarkStored", mock.Anything, p2.ID, "lumo-photos/IMG_0002.jpg", f.now).Return(nil)

	summary, err := f.worker.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	assert.False(t, f.staging.Exists("a.jpg"))
	assert.False(t, f.staging.Exists("b.jpg"))
	f.photos.AssertExpectations(t)
	f.blobs.AssertExpectations(t)
}

func TestRunPass_SecondPassIsIdempotent(t *testing.T) {
	f := newRelayFixture(t)
	p := f.stagePhoto(t, "a.jpg", "IMG_0001.jpg")

	f.blobs.On("EnsureContainer", mock.Anything, "lumo-photos").
		Return(storage.Container("lumo-photos"), nil).Once()
	f.photos.On("ListByState", mock.Anything, photo.StatePendingLocal).
		Return([]photo.Photo{p}, nil).Once()
	f.blobs.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("lumo-photos/IMG_0001.jpg", nil).Once()
	f.photos.On("MarkStored", mock.Anything, p.ID, "lumo-photos/IMG_0001.jpg", f.now).Return(nil).Once()

	_, err := f.worker.RunPass(context.Background())
	require.NoError(t, err)

	// Everything is resolved; the next pass finds nothing and resolves
	// the container from memory instead of the store.
	f.photos.On("ListByState", mock.Anything, photo.StatePendingLocal).
		Return([]photo.Photo{}, nil).Once()

	summary, err := f.worker.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	f.blobs.AssertNumberOfCalls(t, "EnsureContainer", 1)
}

func TestRunPass_UploadFailureLeavesRecordForRetry(t *testing.T) {
	f := newRelayFixture(t)
	ok := f.stagePhoto(t, "a.jpg", "IMG_0001.jpg")
	bad := f.stagePhoto(t, "b.jpg", "IMG_0002.jpg")

	f.blobs.On("EnsureContainer", mock.Anything, "lumo-photos").
		Return(storage.Container("lumo-photos"), nil).Once()
	f.photos.On("ListByState", mock.Anything, photo.StatePendingLocal).
		Return([]photo.Photo{ok, bad}, nil).Once()
	f.blobs.On("Put", mock.Anything, storage.Container("lumo-photos"),
		f.staging.Path("a.jpg"), "IMG_0001.jpg", "image/jpeg").Return("lumo-photos/IMG_0001.jpg", nil)
	f.blobs.On("Put", mock.Anything, storage.Container("lumo-photos"),
		f.staging.Path("b.jpg"), "IMG_0002.jpg", "image/jpeg").Return("", errors.New("connection reset"))
	f.photos.On("MarkStored", mock.Anything, ok.ID, "lumo-photos/IMG_0001.jpg", f.now).Return(nil)

	summary, err := f.worker.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	// The failed file stays staged so the next pass can retry it.
	assert.True(t, f.staging.Exists("b.jpg"))
	f.photos.AssertNotCalled(t, "MarkStored", mock.Anything, bad.ID, mock.Anything, mock.Anything)
}

func TestRunPass_MissingLocalFileIsResolvedAndCountedFailed(t *testing.T) {
	f := newRelayFixture(t)
	ghost := photo.Photo{
		ID:               uuid.New(),
		OriginalFilename: "IMG_0003.jpg",
		StoredFilename:   "vanished.jpg",
		MimeType:         "image/jpeg",
		State:            photo.StatePendingLocal,
	}

	f.blobs.On("EnsureContainer", mock.Anything, "lumo-photos").
		Return(storage.Container("lumo-photos"), nil).Once()
	f.photos.On("ListByState", mock.Anything, photo.StatePendingLocal).
		Return([]photo.Photo{ghost}, nil).Once()
	f.photos.On("MarkStored", mock.Anything, ghost.ID, "", f.now).Return(nil)

	summary, err := f.worker.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	f.blobs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.photos.AssertExpectations(t)
}

func TestRunPass_ContainerFailureAbortsPass(t *testing.T) {
	f := newRelayFixture(t)

	f.blobs.On("EnsureContainer", mock.Anything, "lumo-photos").
		Return(storage.Container(""), errors.New("access denied")).Once()

	_, err := f.worker.RunPass(context.Background())
	require.Error(t, err)
	assert.Nil(t, f.worker.LastSummary())
	f.photos.AssertNotCalled(t, "ListByState", mock.Anything, mock.Anything)
}

func TestLastSummary_ReflectsMostRecentPass(t *testing.T) {
	f := newRelayFixture(t)

	f.blobs.On("EnsureContainer", mock.Anything, "lumo-photos").
		Return(storage.Container("lumo-photos"), nil).Once()
	f.photos.On("ListByState", mock.Anything, photo.StatePendingLocal).
		Return([]photo.Photo{}, nil).Once()

	require.Nil(t, f.worker.LastSummary())

	_, err := f.worker.RunPass(context.Background())
	require.NoError(t, err)

	summary := f.worker.LastSummary()
	require.NotNil(t, summary)
	assert.Equal(t, f.now, summary.RanAt)
}
