package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"lumo/internal/domain/photo"
	"lumo/internal/metrics"
	"lumo/internal/quota"
	"lumo/internal/repository"
	"lumo/internal/storage"
	"lumo/internal/tokencodec"
	lumo_errors "lumo/pkg/errors"
	"lumo/pkg/logger"
)

// allowedImageTypes maps the admissible MIME types to their expected
// file extensions.
var allowedImageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
	"image/heic": {".heic"},
}

// IncomingFile is one file of a guest's upload batch.
type IncomingFile struct {
	Filename string
	MimeType string
	Size     int64
	Reader   io.Reader
}

// GuestInfo carries the uploader-supplied display fields.
type GuestInfo struct {
	Name    string
	Message string
}

// AdmissionResult reports what a successful admission created and what
// capacity remains.
type AdmissionResult struct {
	PhotoIDs         []uuid.UUID    `json:"photo_ids"`
	RemainingUploads int            `json:"remaining_uploads"`
	Quota            quota.Snapshot `json:"quota"`
}

// Feed receives admitted photos for live distribution. Implemented by the
// gallery hub; nil disables it.
type Feed interface {
	PhotoAdmitted(tokenValue string, p photo.Photo)
}

// AdmissionService is the synchronous gate between an inbound guest batch
// and persisted state. All checks happen before the first byte is staged;
// a staging failure mid-batch rolls back the batch's files.
type AdmissionService struct {
	tokens      repository.TokenRepository
	photos      repository.PhotoRepository
	plans       repository.PlanRepository
	evaluator   *quota.Evaluator
	locks       *quota.UserLocks
	staging     *storage.Staging
	maxFileSize int64
	log         *logger.Logger
	metrics     *metrics.Metrics
	feed        Feed
	now         func() time.Time
}

func NewAdmissionService(
	store repository.Store,
	evaluator *quota.Evaluator,
	staging *storage.Staging,
	maxFileSize int64,
	log *logger.Logger,
) *AdmissionService {
	return &AdmissionService{
		tokens:      store.Tokens,
		photos:      store.Photos,
		plans:       store.Plans,
		evaluator:   evaluator,
		locks:       quota.NewUserLocks(),
		staging:     staging,
		maxFileSize: maxFileSize,
		log:         log,
		now:         time.Now,
	}
}

// WithMetrics attaches prometheus collectors.
func (s *AdmissionService) WithMetrics(m *metrics.Metrics) *AdmissionService {
	s.metrics = m
	return s
}

// WithFeed attaches the live gallery feed.
func (s *AdmissionService) WithFeed(f Feed) *AdmissionService {
	s.feed = f
	return s
}

// WithClock overrides the service clock. Used in tests.
func (s *AdmissionService) WithClock(now func() time.Time) *AdmissionService {
	s.now = now
	return s
}

// Admit validates the token and quota, stages the batch and records one
// photo per file. The batch is all-or-nothing: any rejection leaves no
// state behind.
func (s *AdmissionService) Admit(ctx context.Context, tokenValue string, files []IncomingFile, guest GuestInfo) (AdmissionResult, error) {
	result, err := s.admit(ctx, tokenValue, files, guest)
	s.count(err)
	return result, err
}

func (s *AdmissionService) admit(ctx context.Context, tokenValue string, files []IncomingFile, guest GuestInfo) (AdmissionResult, error) {
	// Cheap rejections before any storage or database access.
	if !tokencodec.VerifyShape(tokenValue) {
		return AdmissionResult{}, lumo_errors.ErrInvalidTokenFormat
	}
	if len(files) == 0 {
		return AdmissionResult{}, lumo_errors.ErrEmptyBatch
	}
	var totalBytes int64
	for _, f := range files {
		if f.Size <= 0 || f.Size > s.maxFileSize {
			return AdmissionResult{}, lumo_errors.ErrFileTooLarge
		}
		if !allowedImage(f.Filename, f.MimeType) {
			return AdmissionResult{}, lumo_errors.ErrUnsupportedMediaType
		}
		totalBytes += f.Size
	}

	t, err := s.tokens.GetByValue(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, lumo_errors.ErrNotFound) {
			return AdmissionResult{}, lumo_errors.ErrTokenNotFound
		}
		return AdmissionResult{}, err
	}
	if t.Expired(s.now()) {
		return AdmissionResult{}, lumo_errors.ErrTokenExpired
	}
	if t.CurrentUploads+len(files) > t.MaxUploads {
		return AdmissionResult{}, lumo_errors.ErrUploadLimitExceeded
	}

	// Quota check and usage increment are serialized per owner so
	// concurrent batches cannot jointly overshoot the plan.
	s.locks.Lock(t.UserID)
	defer s.locks.Unlock(t.UserID)

	snap, err := s.evaluator.Evaluate(ctx, t.UserID, int64(len(files)), totalBytes)
	if err != nil {
		return AdmissionResult{}, err
	}

	created, err := s.stageBatch(ctx, t.ID, files, guest)
	if err != nil {
		return AdmissionResult{}, err
	}

	if err := s.tokens.IncrementUploadCount(ctx, t.ID, len(files)); err != nil {
		return AdmissionResult{}, err
	}
	if err := s.plans.IncrementUsage(ctx, t.UserID, int64(len(files)), totalBytes); err != nil {
		return AdmissionResult{}, err
	}

	snap.FileCount += int64(len(files))
	snap.StorageBytesUsed += totalBytes

	ids := make([]uuid.UUID, 0, len(created))
	for _, p := range created {
		ids = append(ids, p.ID)
		if s.metrics != nil {
			s.metrics.PhotosAdmitted.Inc()
		}
		if s.feed != nil {
			s.feed.PhotoAdmitted(tokenValue, p)
		}
	}

	return AdmissionResult{
		PhotoIDs:         ids,
		RemainingUploads: t.MaxUploads - t.CurrentUploads - len(files),
		Quota:            snap,
	}, nil
}

// stageBatch writes every file to the staging area and records it. A
// failure part-way deletes this batch's already-staged files so no
// orphaned bytes survive a rejected admission.
func (s *AdmissionService) stageBatch(ctx context.Context, tokenID uuid.UUID, files []IncomingFile, guest GuestInfo) ([]photo.Photo, error) {
	staged := make([]string, 0, len(files))
	rollback := func() {
		for _, name := range staged {
			if err := s.staging.Remove(name); err != nil && s.log != nil {
				s.log.Errorf("rollback: failed to remove staged file %s: %s", name, err)
			}
		}
	}

	created := make([]photo.Photo, 0, len(files))
	for _, f := range files {
		storedName := uuid.New().String() + strings.ToLower(path.Ext(f.Filename))
		if _, err := s.staging.Save(storedName, f.Reader); err != nil {
			rollback()
			return nil, err
		}
		staged = append(staged, storedName)

		p := photo.Photo{
			ID:               uuid.New(),
			TokenID:          tokenID,
			OriginalFilename: f.Filename,
			StoredFilename:   storedName,
			SizeBytes:        f.Size,
			MimeType:         f.MimeType,
			GuestName:        guest.Name,
			GuestMessage:     guest.Message,
			State:            photo.StatePendingLocal,
			CreatedAt:        s.now(),
		}
		if err := s.photos.Create(ctx, &p); err != nil {
			rollback()
			return nil, err
		}
		created = append(created, p)
	}
	return created, nil
}

func (s *AdmissionService) count(err error) {
	if s.metrics == nil {
		return
	}
	outcome := "admitted"
	switch {
	case err == nil:
	case errors.Is(err, lumo_errors.ErrInvalidTokenFormat),
		errors.Is(err, lumo_errors.ErrEmptyBatch),
		errors.Is(err, lumo_errors.ErrFileTooLarge),
		errors.Is(err, lumo_errors.ErrUnsupportedMediaType):
		outcome = "malformed"
	case errors.Is(err, lumo_errors.ErrTokenNotFound):
		outcome = "token_not_found"
	case errors.Is(err, lumo_errors.ErrTokenExpired):
		outcome = "token_expired"
	case errors.Is(err, lumo_errors.ErrUploadLimitExceeded):
		outcome = "upload_limit"
	case errors.Is(err, lumo_errors.ErrNoActiveSubscription),
		errors.Is(err, lumo_errors.ErrFileLimitExceeded),
		errors.Is(err, lumo_errors.ErrStorageLimitExceeded):
		outcome = "quota"
	default:
		outcome = "error"
	}
	s.metrics.AdmissionsTotal.WithLabelValues(outcome).Inc()
}

func allowedImage(filename, mimeType string) bool {
	exts, ok := allowedImageTypes[strings.ToLower(mimeType)]
	if !ok {
		return false
	}
	ext := strings.ToLower(path.Ext(filename))
	for _, allowed := range exts {
		if ext == allowed {
			return true
		}
	}
	return false
}
