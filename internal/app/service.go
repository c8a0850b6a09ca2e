// Package service wires the analysis pipeline to the job queue, the worker
// pool and the snapshot store.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/minestats/internal/adapters/mq/queue"
	"github.com/okian/minestats/internal/adapters/mq/worker"
	"github.com/okian/minestats/internal/adapters/repository"
	"github.com/okian/minestats/internal/adapters/source"
	"github.com/okian/minestats/internal/domain/dedupe"
	"github.com/okian/minestats/internal/domain/ingest"
	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/pareto"
	"github.com/okian/minestats/internal/domain/types"
	"github.com/okian/minestats/pkg/logger"
	"github.com/okian/minestats/pkg/metrics"
)

// SubmitResult acknowledges an uploaded results payload.
type SubmitResult struct {
	JobID     string `json:"job_id,omitempty"`
	Digest    string `json:"digest"`
	Duplicate bool   `json:"duplicate"`
}

// Service owns the analysis pipeline and its snapshots.
type Service struct {
	mu sync.RWMutex

	pipeline *Pipeline
	store    repository.Store
	deduper  dedupe.Deduper
	jobs     *queue.InMemoryQueue
	pool     *worker.Pool

	workerCount int
	queueSize   int
	dedupeSize  int
	storeDriver string
	sqlitePath  string
	retention   int
	paretoCfg   pareto.Config
	parallel    bool

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many payload digests are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStore selects the snapshot store driver and, for sqlite, its path.
func WithStore(driver, path string) Option {
	return func(s *Service) {
		s.storeDriver = driver
		s.sqlitePath = path
	}
}

// WithSnapshotRetention caps the number of stored snapshots.
func WithSnapshotRetention(n int) Option {
	return func(s *Service) {
		s.retention = n
	}
}

// WithPareto sets the Pareto metrics used by every analysis.
func WithPareto(cfg pareto.Config) Option {
	return func(s *Service) {
		s.paretoCfg = cfg
	}
}

// WithParallelViews evaluates aggregation views concurrently.
func WithParallelViews(parallel bool) Option {
	return func(s *Service) {
		s.parallel = parallel
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   64,
		dedupeSize:  4096,
		storeDriver: repository.DriverMemory,
		retention:   32,
		paretoCfg:   pareto.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if err := s.paretoCfg.Validate(); err != nil {
		metrics.RecordParetoConfigError()
		return err
	}

	store, err := repository.Open(s.storeDriver, s.sqlitePath, repository.WithRetention(s.retention))
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	s.store = store
	s.pipeline = NewPipeline(
		WithParetoConfig(s.paretoCfg),
		WithParallel(s.parallel),
		WithPipelineLogger(s.logger.Named("pipeline")),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobs, worker.ProcessorFunc(s.process))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("store", s.storeDriver),
	)
	return nil
}

// Stop drains pending jobs and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping analysis service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing snapshot store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Analyze runs the pipeline on frame and stores the result as the newest
// snapshot.
func (s *Service) Analyze(ctx context.Context, src string, frame types.Frame) (*repository.Snapshot, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.analyze(ctx, uuid.NewString(), src, "", frame)
}

// AnalyzeFile reads a CSV or XLSX results file and analyzes it.
func (s *Service) AnalyzeFile(ctx context.Context, path string) (*repository.Snapshot, error) {
	frame, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, path, frame)
}

func (s *Service) analyze(ctx context.Context, id, src, digest string, frame types.Frame) (*repository.Snapshot, error) {
	start := time.Now()
	res, err := s.pipeline.Run(ctx, frame)
	if err != nil {
		return nil, err
	}
	snap := &repository.Snapshot{
		ID:         id,
		Source:     src,
		Digest:     digest,
		CreatedAt:  time.Now().UTC(),
		DurationMs: sinceMs(start),
		Report:     res.Report,
		Tables:     res.Tables(),
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot %s: %w", id, err)
	}
	metrics.RecordSnapshot(snap.CreatedAt, res.Report.Retained, snap.DurationMs)
	s.logger.Info(ctx, "snapshot stored",
		logger.String("id", id),
		logger.String("source", src),
		logger.Int("runs", res.Report.Retained),
		logger.Int("dropped", res.Report.Dropped),
	)
	return snap, nil
}

// Submit queues a CSV payload for analysis. A payload identical to a
// recently accepted one is acknowledged as a duplicate and not recomputed.
func (s *Service) Submit(ctx context.Context, src string, payload []byte) (SubmitResult, error) {
	if !s.running() {
		return SubmitResult{}, ErrNotStarted
	}
	digest := dedupe.Digest(payload)
	if s.deduper.SeenAndRecord(ctx, digest) {
		metrics.RecordDuplicateSubmission()
		s.logger.Debug(ctx, "duplicate payload", logger.String("digest", digest))
		return SubmitResult{Digest: digest, Duplicate: true}, nil
	}

	frame, err := source.ParseCSV(payload)
	if err != nil {
		s.deduper.Unrecord(ctx, digest)
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := ingest.CheckSchema(frame); err != nil {
		s.deduper.Unrecord(ctx, digest)
		metrics.RecordSchemaError()
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	job := queue.Job{
		ID:          uuid.NewString(),
		Source:      src,
		Digest:      digest,
		Frame:       frame,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		s.deduper.Unrecord(ctx, digest)
		if errors.Is(err, queue.ErrFull) {
			return SubmitResult{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return SubmitResult{}, err
	}
	return SubmitResult{JobID: job.ID, Digest: digest}, nil
}

// process is the worker pool's job handler. A failed job forgets its digest
// so the same payload can be resubmitted.
func (s *Service) process(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	if _, err := s.analyze(ctx, job.ID, job.Source, job.Digest, job.Frame); err != nil {
		s.deduper.Unrecord(ctx, job.Digest)
		s.logger.Error(ctx, "analysis job failed",
			logger.String("job_id", job.ID),
			logger.String("source", job.Source),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// Latest returns the newest snapshot.
func (s *Service) Latest(ctx context.Context) (*repository.Snapshot, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.store.Latest(ctx)
}

// Snapshot returns the snapshot with id.
func (s *Service) Snapshot(ctx context.Context, id string) (*repository.Snapshot, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.store.Get(ctx, id)
}

// Snapshots lists stored snapshots, newest first.
func (s *Service) Snapshots(ctx context.Context) ([]repository.Info, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.store.List(ctx)
}

// Table returns the named table of the newest snapshot.
func (s *Service) Table(ctx context.Context, name string) (types.Table, error) {
	if !slices.Contains(model.TableNames, name) {
		return types.Table{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	snap, err := s.Latest(ctx)
	if err != nil {
		return types.Table{}, err
	}
	t, ok := snap.Table(name)
	if !ok {
		return types.Table{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// Pareto returns the newest Pareto fronts, restricted to dims when non-empty.
func (s *Service) Pareto(ctx context.Context, dims string) (types.Table, error) {
	t, err := s.Table(ctx, model.TablePareto)
	if err != nil || dims == "" {
		return t, err
	}
	col := slices.Index(t.Columns, model.ColDims)
	out := types.Table{Name: t.Name, Columns: t.Columns, Rows: [][]any{}}
	for _, row := range t.Rows {
		if col >= 0 && col < len(row) && types.FormatCell(row[col]) == dims {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"store":       s.storeDriver,
		"parallel":    s.parallel,
		"pareto":      s.paretoCfg.Directions(),
	}
	if s.started {
		queueLen := s.jobs.Len(ctx)
		snapshots := s.store.Count(ctx)
		stats["queueLength"] = queueLen
		stats["processed"] = s.pool.Processed()
		stats["snapshots"] = snapshots
		stats["digests"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateSnapshotsStored(snapshots)
	}
	return stats
}
