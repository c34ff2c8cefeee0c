package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lumo/internal/domain/plan"
	"lumo/internal/domain/token"
	"lumo/internal/quota"
	"lumo/internal/repository"
	"lumo/internal/repository/mocks"
	"lumo/internal/storage"
	"lumo/internal/tokencodec"
	lumo_errors "lumo/pkg/errors"
)

type admissionFixture struct {
	service *AdmissionService
	tokens  *mocks.MockTokenRepository
	photos  *mocks.MockPhotoRepository
	plans   *mocks.MockPlanRepository
	staging *storage.Staging
	dir     string
	now     time.Time
}

func newAdmissionFixture(t *testing.T) *admissionFixture {
	t.Helper()

	dir := t.TempDir()
	staging, err := storage.NewStaging(dir)
	require.NoError(t, err)

	tokens := new(mocks.MockTokenRepository)
	photos := new(mocks.MockPhotoRepository)
	plans := new(mocks.MockPlanRepository)
	now := time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)

	clock := func() time.Time { return now }
	evaluator := quota.NewEvaluator(plans).WithClock(clock)
	store := repository.Store{Tokens: tokens, Photos: photos, Plans: plans}
	service := NewAdmissionService(store, evaluator, staging, 10<<20, nil).WithClock(clock)

	return &admissionFixture{
		service: service,
		tokens:  tokens,
		photos:  photos,
		plans:   plans,
		staging: staging,
		dir:     dir,
		now:     now,
	}
}

func (f *admissionFixture) mintToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	value, err := tokencodec.Mint([]byte("test-secret"), tokencodec.Payload{
		UserID:   userID,
		Name:     "wedding",
		IssuedAt: f.now,
	})
	require.NoError(t, err)
	return value
}

func (f *admissionFixture) expectQuota(userID uuid.UUID, maxBytes, usedBytes int64) {
	f.plans.On("GetActiveSubscription", mock.Anything, userID, f.now).
		Return(plan.Subscription{
			UserID:          userID,
			Plan:            "standard",
			MaxStorageBytes: maxBytes,
			PeriodStart:     f.now.Add(-time.Hour),
			PeriodEnd:       f.now.Add(time.Hour),
			Status:          "ACTIVE",
		}, nil)
	f.plans.On("GetUsage", mock.Anything, userID).
		Return(plan.Usage{UserID: userID, StorageBytesUsed: usedBytes}, nil)
}

func incoming(name, mimeType, content string) IncomingFile {
	return IncomingFile{
		Filename: name,
		MimeType: mimeType,
		Size:     int64(len(content)),
		Reader:   strings.NewReader(content),
	}
}

func stagedFileCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestAdmit_HappyPathBatch(t *testing.T) {
	f := newAdmissionFixture(t)
	userID := uuid.New()
	value := f.mintToken(t, userID)

	tok := token.UploadToken{
		ID:         uuid.New(),
		UserID:     userID,
		Value:      value,
		MaxUploads: 10,
	}
	f.tokens.On("GetByValue", mock.Anything, value).Return(tok, nil)
	f.tokens.On("IncrementUploadCount", mock.Anything, tok.ID, 2).Return(nil)
	f.expectQuota(userID, 1<<30, 0)
	f.plans.On("IncrementUsage", mock.Anything, userID, int64(2), int64(10)).Return(nil)
	f.photos.On("Create", mock.Anything, mock.AnythingOfType("*photo.Photo")).Return(nil).Times(2)

	result, err := f.service.Admit(context.Background(), value, []IncomingFile{
		incoming("one.jpg", "image/jpeg", "aaaaa"),
		incoming("two.png", "image/png", "bbbbb"),
	}, GuestInfo{Name: "Ada"})

	require.NoError(t, err)
	assert.Len(t, result.PhotoIDs, 2)
	assert.Equal(t, 8, result.RemainingUploads)
	assert.Equal(t, int64(10), result.Quota.StorageBytesUsed)
	assert.Equal(t, 2, stagedFileCount(t, f.dir))
	f.tokens.AssertExpectations(t)
	f.plans.AssertExpectations(t)
	f.photos.AssertExpectations(t)
}

func TestAdmit_MalformedTokenSkipsRepositories(t *testing.T) {
	f := newAdmissionFixture(t)

	_, err := f.service.Admit(context.Background(), "not-a-token", []IncomingFile{
		incoming("one.jpg", "image/jpeg", "aaaaa"),
	}, GuestInfo{})

	assert.ErrorIs(t, err, lumo_errors.ErrInvalidTokenFormat)
	f.tokens.AssertNotCalled(t, "GetByValue", mock.Anything, mock.Anything)
}

func TestAdmit_EmptyBatch(t *testing.T) {
	f := newAdmissionFixture(t)
	value := f.mintToken(t, uuid.New())

	_, err := f.service.Admit(context.Background(), value, nil, GuestInfo{})
	assert.ErrorIs(t, err, lumo_errors.ErrEmptyBatch)
}

func TestAdmit_RejectsOversizeFile(t *testing.T) {
	f := newAdmissionFixture(t)
	value := f.mintToken(t, uuid.New())

	big := incoming("one.jpg", "image/jpeg", "x")
	big.Size = 11 << 20

	_, err := f.service.Admit(context.Background(), value, []IncomingFile{big}, GuestInfo{})
	assert.ErrorIs(t, err, lumo_errors.ErrFileTooLarge)
	assert.Equal(t, 0, stagedFileCount(t, f.dir))
}

func TestAdmit_RejectsUnsupportedMediaType(t *testing.T) {
	f := newAdmissionFixture(t)
	value := f.mintToken(t, uuid.New())

	_, err := f.service.Admit(context.Background(), value, []IncomingFile{
		incoming("malware.exe", "application/octet-stream", "xx"),
	}, GuestInfo{})
	assert.ErrorIs(t, err, lumo_errors.ErrUnsupportedMediaType)
}

func TestAdmit_RejectsMismatchedExtension(t *testing.T) {
	f := newAdmissionFixture(t)
	value := f.mintToken(t, uuid.New())

	_, err := f.service.Admit(context.Background(), value, []IncomingFile{
		incoming("photo.png", "image/jpeg", "xx"),
	}, GuestInfo{})
	assert.ErrorIs(t, err, lumo_errors.ErrUnsupportedMediaType)
}

func TestAdmit_ExpiredToken(t *testing.T) {
	f := newAdmissionFixture(t)
	userID := uuid.New()
	value := f.mintToken(t, userID)
	expiry := f.now.Add(-time.Minute)

	f.tokens.On("GetByValue", mock.Anything, value).Return(token.UploadToken{
		ID:         uuid.New(),
		UserID:     userID,
		Value:      value,
		MaxUploads: 10,
		ExpiresAt:  &expiry,
	}, nil)

	_, err := f.service.Admit(context.Background(), value, []IncomingFile{
		incoming("one.jpg", "image/jpeg", "aaaaa"),
	}, GuestInfo{})
	assert.ErrorIs(t, err, lumo_errors.ErrTokenExpired)
}

func TestAdmit_UnknownToken(t *testing.T) {
	f := newAdmissionFixture(t)
	value := f.mintToken(t, uuid.New())

	f.tokens.On("GetByValue", mock.Anything, value).
		Return(token.UploadToken{}, lumo_errors.ErrNotFound)

	_, err := f.service.Admit(context.Background(), value, []IncomingFile{
		incoming("one.jpg", "image/jpeg", "aaaaa"),
	}, GuestInfo{})
	assert.ErrorIs(t, err, lumo_errors.ErrTokenNotFound)
}

func TestAdmit_BatchOverUploadLimitLeavesNoState(t *testing.T) {
	f := newAdmissionFixture(t)
	userID := uuid.New()
	value := f.mintToken(t, userID)

	// 9 of 10 used; a batch of 2 must be rejected whole, not trimmed to 1.
	f.tokens.On("GetByValue", mock.Anything, value).Return(token.UploadToken{
		ID:             uuid.New(),
		UserID:         userID,
		Value:          value,
		MaxUploads:     10,
		CurrentUploads: 9,
	}, nil)

	_, err := f.service.Admit(context.Background(), value, []IncomingFile{
		incoming("one.jpg", "image/jpeg", "aaaaa"),
		incoming("two.jpg", "image/jpeg", "bbbbb"),
	}, GuestInfo{})

	assert.ErrorIs(t, err, lumo_errors.ErrUploadLimitExceeded)
	assert.Equal(t, 0, stagedFileCount(t, f.dir))
	f.tokens.AssertNotCalled(t, "IncrementUploadCount", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdmit_QuotaDenialBeforeStaging(t *testing.T) {
	f := newAdmissionFixture(t)
	userID := uuid.New()
	value := f.mintToken(t, userID)

	f.tokens.On("GetByValue", mock.Anything, value).Return(token.UploadToken{
		ID:         uuid.New(),
		UserID:     userID,
		Value:      value,
		MaxUploads: 10,
	}, nil)
	f.expectQuota(userID, 100, 98)

	_, err := f.service.Admit(context.Background(), value, []IncomingFile{
		incoming("one.jpg", "image/jpeg", "aaaaa"),
	}, GuestInfo{})

	assert.ErrorIs(t, err, lumo_errors.ErrStorageLimitExceeded)
	assert.Equal(t, 0, stagedFileCount(t, f.dir))
	f.photos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdmit_RecordFailureRollsBackStagedFiles(t *testing.T) {
	f := newAdmissionFixture(t)
	userID := uuid.New()
	value := f.mintToken(t, userID)

	f.tokens.On("GetByValue", mock.Anything, value).Return(token.UploadToken{
		ID:         uuid.New(),
		UserID:     userID,
		Value:      value,
		MaxUploads: 10,
	}, nil)
	f.expectQuota(userID, 1<<30, 0)
	f.photos.On("Create", mock.Anything, mock.AnythingOfType("*photo.Photo")).Return(nil).Once()
	f.photos.On("Create", mock.Anything, mock.AnythingOfType("*photo.Photo")).
		Return(errors.New("db down")).Once()

	_, err := f.service.Admit(context.Background(), value, []IncomingFile{
		incoming("one.jpg", "image/jpeg", "aaaaa"),
		incoming("two.jpg", "image/jpeg", "bbbbb"),
	}, GuestInfo{})

	require.Error(t, err)
	assert.Equal(t, 0, stagedFileCount(t, f.dir))
	f.tokens.AssertNotCalled(t, "IncrementUploadCount", mock.Anything, mock.Anything, mock.Anything)
	f.plans.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
