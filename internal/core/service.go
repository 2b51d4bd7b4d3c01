package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	db "github.com/JonMunkholm/otc/internal/database"
	"github.com/JonMunkholm/otc/internal/logging"
)

// importRetention is how long a finished import stays queryable.
const importRetention = 5 * time.Minute

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	MaxFileSize    int64
	BatchSize      int
	BatchPause     time.Duration
	MaxConcurrent  int
	MaxWait        time.Duration
	ImportTimeout  time.Duration
	RefreshTimeout time.Duration

	// Orders and Projects replace the Postgres-backed stores.
	Orders   OrderRepository
	Projects ProjectStore
}

// Service provides the dashboard's business operations: order import,
// order search and deletion, and project calculation settings.
type Service struct {
	orders   OrderRepository
	projects ProjectStore
	opts     Options
	limiter  *ImportLimiter
	metrics  *Metrics

	mu      sync.RWMutex
	imports map[string]*activeImport
}

type activeImport struct {
	id       string
	fileName string
	done     chan struct{}

	mu        sync.Mutex
	progress  ImportProgress
	result    *ImportResult
	listeners []chan ImportProgress
}

// NewService creates a Service. conn may be nil when opts supplies both
// stores.
func NewService(conn db.DBTX, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchPause < 0 {
		opts.BatchPause = 0
	}
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = 10 * time.Minute
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 2 * time.Minute
	}
	if opts.Orders == nil || opts.Projects == nil {
		pg := NewPostgresStore(conn)
		if opts.Orders == nil {
			opts.Orders = pg
		}
		if opts.Projects == nil {
			opts.Projects = pg
		}
	}

	metrics := NewMetrics()
	limiter := NewImportLimiter(opts.MaxConcurrent, opts.MaxWait)
	limiter.observe(metrics.ActiveImports)

	return &Service{
		orders:   opts.Orders,
		projects: opts.Projects,
		opts:     opts,
		limiter:  limiter,
		metrics:  metrics,
		imports:  make(map[string]*activeImport),
	}
}

// Metrics returns the service's Prometheus collectors.
func (s *Service) Metrics() *Metrics { return s.metrics }

// ImportLimiterStatus reports import slot usage.
func (s *Service) ImportLimiterStatus() ImportLimiterStatus { return s.limiter.Status() }

// WaitForImports blocks until running imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error { return s.limiter.WaitForDrain(ctx) }

// ImportTicket is returned once an import has been accepted.
type ImportTicket struct {
	ImportID string `json:"import_id"`
	Total    int    `json:"total"`
	Rejected int    `json:"rejected"`
}

// prepare reads and normalizes an upload. Schema, encoding and empty-input
// errors surface here, before anything is deleted.
func (s *Service) prepare(ctx context.Context, fileName string, r io.Reader) ([]OrderRecord, NormalizeStats, error) {
	text, err := ReadText(r, s.opts.MaxFileSize)
	if err != nil {
		return nil, NormalizeStats{}, err
	}

	records, stats, err := NormalizeOrders(text)
	s.metrics.RowsRejected.Add(float64(stats.Rejected))
	if err != nil {
		logging.FromContext(ctx).Warn("import rejected",
			"file", fileName,
			"rejected_rows", stats.Rejected,
			"error", err,
		)
		return nil, stats, err
	}
	return records, stats, nil
}

// replace runs the uploader and records metrics.
func (s *Service) replace(ctx context.Context, logger *slog.Logger, records []OrderRecord, progress ProgressFunc) (int, error) {
	u := &Uploader{
		Store:      instrumentedStore{OrderStore: s.orders, metrics: s.metrics},
		BatchSize:  s.opts.BatchSize,
		BatchPause: s.opts.BatchPause,
		Logger:     logger,
	}

	start := time.Now()
	n, err := u.Replace(ctx, records, progress)
	s.metrics.ImportDuration.Observe(time.Since(start).Seconds())
	s.metrics.Imports.WithLabelValues(resultLabel(err)).Inc()
	return n, err
}

// Import normalizes r and replaces the stored orders, returning once the
// last batch is written. It is the synchronous form of StartImport.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader, progress ProgressFunc) (*ImportResult, error) {
	records, stats, err := s.prepare(ctx, fileName, r)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	logger := logging.WithFields(ctx, "file", fileName)
	start := time.Now()
	n, err := s.replace(ctx, logger, records, progress)

	result := newImportResult("", fileName, len(records), n, stats.Rejected, time.Since(start), err)
	if err != nil {
		return result, err
	}
	logger.Info("import completed", "imported", n, "rejected", stats.Rejected)
	return result, nil
}

// StartImport validates the upload synchronously and runs the replace in
// the background. Use SubscribeProgress and GetImportResult to follow it.
//
// Returns ErrTooManyImports if another import holds the slot for longer
// than the configured wait.
func (s *Service) StartImport(ctx context.Context, fileName string, r io.Reader) (ImportTicket, error) {
	records, stats, err := s.prepare(ctx, fileName, r)
	if err != nil {
		return ImportTicket{}, err
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportTicket{}, err
	}

	imp := &activeImport{
		id:       uuid.New().String(),
		fileName: fileName,
		done:     make(chan struct{}),
	}
	imp.progress = ImportProgress{
		ImportID: imp.id,
		FileName: fileName,
		Phase:    PhaseStarting,
		Total:    len(records),
		Rejected: stats.Rejected,
	}

	s.mu.Lock()
	s.imports[imp.id] = imp
	s.mu.Unlock()

	logger := logging.WithFields(ctx, "import_id", imp.id, "file", fileName).With("client_ip", ClientIPFromContext(ctx))
	logger.Info("import started", "rows", len(records), "rejected", stats.Rejected)

	importCtx, cancel := context.WithTimeout(context.Background(), s.opts.ImportTimeout)
	go func() {
		defer cancel()
		defer s.limiter.Release()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in import", "panic", r)
				s.finish(imp, &ImportResult{
					ImportID: imp.id,
					FileName: fileName,
					Total:    len(records),
					Error:    fmt.Sprintf("internal error: %v", r),
					Code:     defaultMessage.Code,
				})
			}
		}()
		s.runImport(importCtx, logger, imp, records, stats)
	}()

	return ImportTicket{ImportID: imp.id, Total: len(records), Rejected: stats.Rejected}, nil
}

func (s *Service) runImport(ctx context.Context, logger *slog.Logger, imp *activeImport, records []OrderRecord, stats NormalizeStats) {
	imp.update(func(p *ImportProgress) { p.Phase = PhaseReplacing })

	start := time.Now()
	n, err := s.replace(ctx, logger, records, func(inserted, total int) {
		imp.update(func(p *ImportProgress) {
			p.Phase = PhaseInserting
			p.Inserted = inserted
			p.Total = total
		})
	})

	result := newImportResult(imp.id, imp.fileName, len(records), n, stats.Rejected, time.Since(start), err)
	if err != nil {
		logger.Error("import failed", "imported", n, "total", len(records), "error", err)
	} else {
		logger.Info("import completed", "imported", n, "duration_ms", result.Duration.Milliseconds())
	}
	s.finish(imp, result)
}

func newImportResult(id, fileName string, total, imported, rejected int, d time.Duration, err error) *ImportResult {
	result := &ImportResult{
		ImportID: id,
		FileName: fileName,
		Total:    total,
		Imported: imported,
		Rejected: rejected,
		Duration: d,
	}
	if err != nil {
		result.Error = err.Error()
		result.Code = MapError(err).Code
		var re *RemoteError
		if errors.As(err, &re) {
			result.Remote = re
		}
	}
	return result
}

// finish publishes the final state and schedules cleanup.
func (s *Service) finish(imp *activeImport, result *ImportResult) {
	imp.mu.Lock()
	imp.result = result
	imp.progress.Inserted = result.Imported
	if result.Error != "" {
		imp.progress.Phase = PhaseFailed
		imp.progress.Error = result.Error
	} else {
		imp.progress.Phase = PhaseComplete
	}
	for _, ch := range imp.listeners {
		sendLatest(ch, imp.progress)
		close(ch)
	}
	imp.listeners = nil
	close(imp.done)
	imp.mu.Unlock()

	s.cleanup(imp.id, importRetention)
}

func (s *Service) lookup(importID string) (*activeImport, error) {
	s.mu.RLock()
	imp, ok := s.imports[importID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, importID)
	}
	return imp, nil
}

// SubscribeProgress returns a channel of progress updates, starting with
// the current state. The channel closes when the import finishes.
func (s *Service) SubscribeProgress(importID string) (<-chan ImportProgress, error) {
	imp, err := s.lookup(importID)
	if err != nil {
		return nil, err
	}

	ch := make(chan ImportProgress, 16)

	imp.mu.Lock()
	defer imp.mu.Unlock()
	ch <- imp.progress
	if imp.result != nil {
		close(ch)
		return ch, nil
	}
	imp.listeners = append(imp.listeners, ch)
	return ch, nil
}

// GetImportProgress returns the current progress without blocking.
func (s *Service) GetImportProgress(importID string) (ImportProgress, error) {
	imp, err := s.lookup(importID)
	if err != nil {
		return ImportProgress{}, err
	}
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.progress, nil
}

// GetImportResult waits for the import to finish, or for ctx to end.
func (s *Service) GetImportResult(ctx context.Context, importID string) (*ImportResult, error) {
	imp, err := s.lookup(importID)
	if err != nil {
		return nil, err
	}

	select {
	case <-imp.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.result, nil
}

func (imp *activeImport) update(fn func(*ImportProgress)) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	fn(&imp.progress)
	imp.broadcastLocked()
}

// broadcastLocked sends progress to every listener; slow listeners miss
// intermediate updates. imp.mu must be held.
func (imp *activeImport) broadcastLocked() {
	for _, ch := range imp.listeners {
		select {
		case ch <- imp.progress:
		default:
		}
	}
}

// sendLatest delivers p even when ch is full by dropping the oldest
// buffered update. Only the holder of imp.mu sends, so the retry has room.
func sendLatest(ch chan ImportProgress, p ImportProgress) {
	select {
	case ch <- p:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- p:
	default:
	}
}

// cleanup removes the import from tracking after a delay.
func (s *Service) cleanup(importID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.imports, importID)
		s.mu.Unlock()
	})
}
