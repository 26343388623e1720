// Package worker runs the orphan reconciler: a background sweep that heals
// the gap between the metadata commit and the blob upload.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voicebank/backend/pkg/storage"
)

// PendingStore lists and removes rows stuck in the pending state.
// Satisfied by *recordings.Repository.
type PendingStore interface {
	StalePending(ctx context.Context, grace time.Duration) ([]uuid.UUID, error)
	DeletePending(ctx context.Context, id uuid.UUID) error
}

// BlobDeleter removes uploaded objects. Satisfied by *storage.S3.
type BlobDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// Reconciler periodically deletes recording rows whose blob upload never
// completed, along with any object that did land (an upload that succeeded
// but whose commit flip failed).
type Reconciler struct {
	store    PendingStore
	blobs    BlobDeleter
	interval time.Duration
	grace    time.Duration
	logger   *zap.Logger
}

// NewReconciler creates an orphan reconciler.
func NewReconciler(store PendingStore, blobs BlobDeleter, interval, grace time.Duration, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, blobs: blobs, interval: interval, grace: grace, logger: logger}
}

// Run sweeps until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("orphan reconciler started",
		zap.Duration("interval", r.interval), zap.Duration("grace", r.grace))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("orphan reconciler stopped")
			return
		case <-ticker.C:
			if n := r.Sweep(ctx); n > 0 {
				r.logger.Warn("reaped orphaned recordings", zap.Int("count", n))
			}
		}
	}
}

// Sweep runs one reconciliation pass and returns how many rows were reaped.
func (r *Reconciler) Sweep(ctx context.Context) int {
	ids, err := r.store.StalePending(ctx, r.grace)
	if err != nil {
		r.logger.Error("list stale pending failed", zap.Error(err))
		return 0
	}

	reaped := 0
	for _, id := range ids {
		// Object delete is best effort and idempotent; the usual case is
		// that the object was never written.
		if r.blobs != nil {
			if err := r.blobs.DeleteObject(ctx, storage.RecordingKey(id.String())); err != nil {
				r.logger.Warn("delete orphan object failed", zap.String("id", id.String()), zap.Error(err))
			}
		}
		if err := r.store.DeletePending(ctx, id); err != nil {
			r.logger.Error("delete orphan row failed", zap.String("id", id.String()), zap.Error(err))
			continue
		}
		reaped++
	}
	return reaped
}
