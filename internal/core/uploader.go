package core

// uploader.go replaces the otc_orders table with a freshly normalized set.
//
// The replace is NOT atomic. The table is emptied first, then batches are
// inserted one remote call at a time with no wrapping transaction. A failed
// batch leaves every earlier batch committed, and running the import again
// starts over from an empty table.

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultBatchSize is the number of records inserted per call.
const DefaultBatchSize = 100

// DefaultBatchPause is the pause after each inserted batch.
const DefaultBatchPause = 50 * time.Millisecond

// OrderStore is the remote table the uploader writes to.
type OrderStore interface {
	// TruncateOrders empties the table and restarts its identity sequence.
	TruncateOrders(ctx context.Context) error
	// DeleteAllOrders empties the table without touching the sequence.
	DeleteAllOrders(ctx context.Context) error
	// InsertOrders inserts one batch.
	InsertOrders(ctx context.Context, batch []OrderRecord) error
}

// Uploader runs the truncate-then-insert sequence against an OrderStore.
type Uploader struct {
	Store      OrderStore
	BatchSize  int
	BatchPause time.Duration
	Logger     *slog.Logger

	// sleep is replaced in tests.
	sleep func(context.Context, time.Duration)
}

// NewUploader returns an uploader with the default batch size and pause.
func NewUploader(store OrderStore) *Uploader {
	return &Uploader{
		Store:      store,
		BatchSize:  DefaultBatchSize,
		BatchPause: DefaultBatchPause,
	}
}

// Replace deletes every stored order and inserts records in batches.
//
// progress, when non-nil, is called with (inserted, total) before each
// batch and once more with (total, total) after the last batch. The first
// failing batch stops the import with a *BatchError; nothing is rolled back.
// It returns the number of records inserted.
func (u *Uploader) Replace(ctx context.Context, records []OrderRecord, progress ProgressFunc) (int, error) {
	total := len(records)
	if total == 0 {
		return 0, ErrNoValidRows
	}

	logger := u.logger()
	batchSize := u.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if progress == nil {
		progress = func(int, int) {}
	}

	if err := u.Store.TruncateOrders(ctx); err != nil {
		logger.Warn("truncate failed, falling back to delete", "error", err)
		if err := u.Store.DeleteAllOrders(ctx); err != nil {
			return 0, fmt.Errorf("clear orders: %w", err)
		}
	}

	inserted := 0
	for start := 0; start < total; start += batchSize {
		end := min(start+batchSize, total)

		progress(inserted, total)
		if err := u.Store.InsertOrders(ctx, records[start:end]); err != nil {
			logger.Error("batch insert failed",
				"batch_start", start,
				"batch_size", end-start,
				"imported", inserted,
				"total", total,
				"error", err,
			)
			return inserted, &BatchError{Imported: inserted, Total: total, Err: err}
		}
		inserted = end

		u.pause(ctx)
	}

	progress(total, total)
	return inserted, nil
}

func (u *Uploader) pause(ctx context.Context) {
	if u.BatchPause <= 0 {
		return
	}
	if u.sleep != nil {
		u.sleep(ctx, u.BatchPause)
		return
	}
	t := time.NewTimer(u.BatchPause)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (u *Uploader) logger() *slog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return slog.Default()
}
