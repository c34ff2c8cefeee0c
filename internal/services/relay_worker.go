package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"lumo/internal/domain/photo"
	"lumo/internal/metrics"
	"lumo/internal/repository"
	"lumo/internal/storage"
	"lumo/pkg/logger"
)

// ErrPassInProgress is returned by RunPass when another pass holds the
// single-flight lock.
var ErrPassInProgress = errors.New("relay pass already running")

// PassSummary is the operational result of one relay pass.
type PassSummary struct {
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	RanAt     time.Time     `json:"ran_at"`
	Duration  time.Duration `json:"duration"`
}

// RelayWorker moves admitted files from the staging area into durable
// storage on a fixed interval. Passes never overlap: the ticker path and
// the manual-trigger path share one single-flight lock, and a pass that
// outlives the interval delays the next firing instead of stacking.
type RelayWorker struct {
	photos         repository.PhotoRepository
	staging        *storage.Staging
	blobs          storage.BlobStore
	containerName  string
	interval       time.Duration
	perFileTimeout time.Duration
	log            *logger.Logger
	metrics        *metrics.Metrics
	now            func() time.Time

	// container is resolved once and reused across passes.
	containerMu sync.Mutex
	container   storage.Container
	resolved    bool

	passMu      sync.Mutex
	summaryMu   sync.RWMutex
	lastSummary *PassSummary

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewRelayWorker(
	photos repository.PhotoRepository,
	staging *storage.Staging,
	blobs storage.BlobStore,
	containerName string,
	interval time.Duration,
	perFileTimeout time.Duration,
	log *logger.Logger,
) *RelayWorker {
	return &RelayWorker{
		photos:         photos,
		staging:        staging,
		blobs:          blobs,
		containerName:  containerName,
		interval:       interval,
		perFileTimeout: perFileTimeout,
		log:            log,
		now:            time.Now,
		stopChan:       make(chan struct{}),
	}
}

// WithMetrics attaches prometheus collectors.
func (w *RelayWorker) WithMetrics(m *metrics.Metrics) *RelayWorker {
	w.metrics = m
	return w
}

// WithClock overrides the worker clock. Used in tests.
func (w *RelayWorker) WithClock(now func() time.Time) *RelayWorker {
	w.now = now
	return w
}

// Start begins the worker loop
func (w *RelayWorker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop gracefully shuts down
func (w *RelayWorker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
}

func (w *RelayWorker) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			if _, err := w.RunPass(context.Background()); err != nil && !errors.Is(err, ErrPassInProgress) {
				if w.log != nil {
					w.log.Errorf("relay pass failed: %s", err)
				}
			}
		}
	}
}

// RunPass executes one relay pass. Per-file failures are isolated; only a
// failure to resolve the destination container aborts the pass, since
// that invalidates every transfer in it.
func (w *RelayWorker) RunPass(ctx context.Context) (PassSummary, error) {
	if !w.passMu.TryLock() {
		return PassSummary{}, ErrPassInProgress
	}
	defer w.passMu.Unlock()

	start := w.now()

	container, err := w.resolveContainer(ctx)
	if err != nil {
		return PassSummary{}, err
	}

	pending, err := w.photos.ListByState(ctx, photo.StatePendingLocal)
	if err != nil {
		return PassSummary{}, err
	}

	summary := PassSummary{RanAt: start}
	for _, p := range pending {
		if w.relayOne(ctx, container, p) {
			summary.Processed++
		} else {
			summary.Failed++
		}
	}
	summary.Duration = w.now().Sub(start)

	w.summaryMu.Lock()
	w.lastSummary = &summary
	w.summaryMu.Unlock()

	if w.metrics != nil {
		w.metrics.RelayPassesTotal.Inc()
		w.metrics.RelayProcessed.Add(float64(summary.Processed))
		w.metrics.RelayFailed.Add(float64(summary.Failed))
		w.metrics.RelayPassDuration.Observe(summary.Duration.Seconds())
	}
	if w.log != nil && (summary.Processed > 0 || summary.Failed > 0) {
		w.log.Infof("relay pass: processed=%d failed=%d duration=%s", summary.Processed, summary.Failed, summary.Duration)
	}
	return summary, nil
}

// relayOne migrates a single record and reports success. Errors are
// logged and swallowed: a pendingLocal record left behind is retried on
// the next pass.
func (w *RelayWorker) relayOne(ctx context.Context, container storage.Container, p photo.Photo) bool {
	if !w.staging.Exists(p.StoredFilename) {
		// Stop-loss: the local copy is gone, so retrying forever is
		// pointless. Force-resolve the record and surface the anomaly
		// through the failure counter and logs.
		if err := w.photos.MarkStored(ctx, p.ID, "", w.now()); err != nil {
			if w.log != nil {
				w.log.Errorf("relay: failed to resolve photo %s with missing local file: %s", p.ID, err)
			}
		} else if w.log != nil {
			w.log.Warnf("relay: gave up on photo %s, local file %s missing", p.ID, p.StoredFilename)
		}
		return false
	}

	fileCtx, cancel := context.WithTimeout(ctx, w.perFileTimeout)
	defer cancel()

	// The durable object keeps the guest's original filename; the random
	// stored name exists only to keep the staging directory collision-free.
	handle, err := w.blobs.Put(fileCtx, container, w.staging.Path(p.StoredFilename), p.OriginalFilename, p.MimeType)
	if err != nil {
		if w.log != nil {
			w.log.Errorf("relay: upload of photo %s failed, will retry: %s", p.ID, err)
		}
		return false
	}

	if err := w.photos.MarkStored(ctx, p.ID, handle, w.now()); err != nil {
		// The object is durable but the record still says pendingLocal;
		// the next pass re-uploads under the same name, which the
		// adapters treat as an overwrite.
		if w.log != nil {
			w.log.Errorf("relay: failed to mark photo %s stored: %s", p.ID, err)
		}
		return false
	}

	if err := w.staging.Remove(p.StoredFilename); err != nil && w.log != nil {
		w.log.Errorf("relay: failed to remove staged file %s: %s", p.StoredFilename, err)
	}
	return true
}

func (w *RelayWorker) resolveContainer(ctx context.Context) (storage.Container, error) {
	w.containerMu.Lock()
	defer w.containerMu.Unlock()

	if w.resolved {
		return w.container, nil
	}
	container, err := w.blobs.EnsureContainer(ctx, w.containerName)
	if err != nil {
		return "", err
	}
	w.container = container
	w.resolved = true
	return container, nil
}

// LastSummary returns the most recent pass result, or nil before the
// first pass.
func (w *RelayWorker) LastSummary() *PassSummary {
	w.summaryMu.RLock()
	defer w.summaryMu.RUnlock()
	if w.lastSummary == nil {
		return nil
	}
	s := *w.lastSummary
	return &s
}
