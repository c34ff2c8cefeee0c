package quota

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"lumo/internal/repository"
	lumo_errors "lumo/pkg/errors"
)

// Snapshot carries the limits and usage behind a decision, for display to
// organizers and guests.
type Snapshot struct {
	Plan             string `json:"plan"`
	MaxStorageBytes  int64  `json:"max_storage_bytes"`
	MaxFileCount     *int64 `json:"max_file_count,omitempty"`
	FileCount        int64  `json:"file_count"`
	StorageBytesUsed int64  `json:"storage_bytes_used"`
}

// RemainingBytes returns how many bytes the user can still store.
func (s Snapshot) RemainingBytes() int64 {
	if r := s.MaxStorageBytes - s.StorageBytesUsed; r > 0 {
		return r
	}
	return 0
}

// RemainingFiles returns the remaining file budget, or nil when unlimited.
func (s Snapshot) RemainingFiles() *int64 {
	if s.MaxFileCount == nil {
		return nil
	}
	r := *s.MaxFileCount - s.FileCount
	if r < 0 {
		r = 0
	}
	return &r
}

// Evaluator decides whether a prospective upload fits the owner's plan.
// It reads subscription and usage fresh on every call; callers that go on
// to increment usage must hold the user's lock across both operations.
type Evaluator struct {
	plans repository.PlanRepository
	now   func() time.Time
}

func NewEvaluator(plans repository.PlanRepository) *Evaluator {
	return &Evaluator{plans: plans, now: time.Now}
}

// WithClock overrides the evaluator's clock. Used in tests.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Evaluate admits or denies fileCount new files totalling sizeBytes for
// userID. A denial is one of ErrNoActiveSubscription,
// ErrFileLimitExceeded or ErrStorageLimitExceeded; the snapshot is
// returned alongside admissions for display purposes.
func (e *Evaluator) Evaluate(ctx context.Context, userID uuid.UUID, fileCount int64, sizeBytes int64) (Snapshot, error) {
	now := e.now()

	sub, err := e.plans.GetActiveSubscription(ctx, userID, now)
	if err != nil {
		if errors.Is(err, lumo_errors.ErrNotFound) {
			return Snapshot{}, lumo_errors.ErrNoActiveSubscription
		}
		return Snapshot{}, err
	}
	if !sub.Active(now) {
		return Snapshot{}, lumo_errors.ErrNoActiveSubscription
	}

	usage, err := e.plans.GetUsage(ctx, userID)
	if err != nil && !errors.Is(err, lumo_errors.ErrNotFound) {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Plan:             sub.Plan,
		MaxStorageBytes:  sub.MaxStorageBytes,
		MaxFileCount:     sub.MaxFileCount,
		FileCount:        usage.FileCount,
		StorageBytesUsed: usage.StorageBytesUsed,
	}

	if sub.MaxFileCount != nil && usage.FileCount+fileCount > *sub.MaxFileCount {
		return snap, lumo_errors.ErrFileLimitExceeded
	}
	if usage.StorageBytesUsed+sizeBytes > sub.MaxStorageBytes {
		return snap, lumo_errors.ErrStorageLimitExceeded
	}
	return snap, nil
}
