// Package ingest populates the similarity index from the attraction corpus in
// small, rate-limited batches.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bkkguide/bkkguide/internal/corpus"
	"github.com/bkkguide/bkkguide/internal/retrieval"
	"github.com/bkkguide/bkkguide/internal/storage"
	"github.com/google/uuid"
)

// Defaults keep the hosted embedding API under its free-tier rate limit.
const (
	DefaultBatchSize = 3
	DefaultDelay     = 2 * time.Second
)

// BatchIndexer embeds and stores one batch of documents.
type BatchIndexer interface {
	IndexBatch(ctx context.Context, docs []retrieval.Document) error
}

// RunRecorder persists ingestion history. *storage.Store implements it.
type RunRecorder interface {
	StartIngestRun(ctx context.Context, id, backend string, startedAt time.Time) error
	FinishIngestRun(ctx context.Context, run storage.IngestRun) error
}

// BatchError reports the first batch that failed. Batches before it were
// stored; the failing batch and everything after it were not.
type BatchError struct {
	Batch int // 1-based
	Total int
	Size  int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("ingesting batch %d/%d (%d documents): %v", e.Batch, e.Total, e.Size, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Report summarises a successful run.
type Report struct {
	RunID     string
	Documents int
	Batches   int
	Duration  time.Duration
}

// Runner feeds documents to a BatchIndexer sequentially, pausing between
// batches. It assumes exclusive write access to the index for the run.
type Runner struct {
	indexer   BatchIndexer
	recorder  RunRecorder
	backend   string
	batchSize int
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithBatchSize overrides DefaultBatchSize. Values <= 0 are ignored.
func WithBatchSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithDelay overrides DefaultDelay. Negative values are ignored.
func WithDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithRecorder records every run under the given backend name.
func WithRecorder(rec RunRecorder, backend string) Option {
	return func(r *Runner) {
		r.recorder = rec
		r.backend = backend
	}
}

// NewRunner creates a Runner with the default batch size and delay.
func NewRunner(indexer BatchIndexer, opts ...Option) *Runner {
	r := &Runner{
		indexer:   indexer,
		batchSize: DefaultBatchSize,
		delay:     DefaultDelay,
		sleep:     sleepContext,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run validates the attractions and indexes them in order. It stops at the
// first failing batch and returns a *BatchError.
func (r *Runner) Run(ctx context.Context, attractions []corpus.Attraction) (Report, error) {
	if err := corpus.Validate(attractions); err != nil {
		return Report{}, fmt.Errorf("invalid corpus: %w", err)
	}

	docs := make([]retrieval.Document, len(attractions))
	for i, a := range attractions {
		docs[i] = retrieval.NewDocument(a)
	}
	return r.RunDocuments(ctx, docs)
}

// RunDocuments indexes already-built documents.
func (r *Runner) RunDocuments(ctx context.Context, docs []retrieval.Document) (Report, error) {
	start := r.now()
	report := Report{RunID: uuid.New().String()}
	total := (len(docs) + r.batchSize - 1) / r.batchSize

	if r.recorder != nil {
		if err := r.recorder.StartIngestRun(ctx, report.RunID, r.backend, start); err != nil {
			return Report{}, fmt.Errorf("recording ingest run: %w", err)
		}
	}

	r.logger.Info("ingestion started", "run_id", report.RunID, "documents", len(docs), "batches", total, "batch_size", r.batchSize)

	var runErr error
	for b := 0; b < total; b++ {
		lo := b * r.batchSize
		hi := min(lo+r.batchSize, len(docs))
		batch := docs[lo:hi]

		if err := r.indexer.IndexBatch(ctx, batch); err != nil {
			runErr = &BatchError{Batch: b + 1, Total: total, Size: len(batch), Err: err}
			break
		}
		report.Batches++
		report.Documents += len(batch)
		r.logger.Info("batch indexed", "run_id", report.RunID, "batch", b+1, "of", total, "documents", len(batch))

		if b < total-1 && r.delay > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				runErr = fmt.Errorf("waiting before batch %d: %w", b+2, err)
				break
			}
		}
	}
	report.Duration = r.now().Sub(start)

	r.finish(ctx, report, runErr)
	if runErr != nil {
		r.logger.Error("ingestion failed", "run_id", report.RunID, "indexed", report.Documents, "error", runErr)
		return report, runErr
	}
	r.logger.Info("ingestion completed", "run_id", report.RunID, "documents", report.Documents, "duration", report.Duration)
	return report, nil
}

func (r *Runner) finish(ctx context.Context, report Report, runErr error) {
	if r.recorder == nil {
		return
	}
	run := storage.IngestRun{
		ID:         report.RunID,
		FinishedAt: r.now(),
		Status:     storage.RunCompleted,
		Documents:  report.Documents,
		Batches:    report.Batches,
	}
	if runErr != nil {
		run.Status = storage.RunFailed
		run.LastError = runErr.Error()
		var be *BatchError
		if errors.As(runErr, &be) {
			run.FailedBatch = be.Batch
		}
	}
	// Record the outcome even if ctx was cancelled mid-run.
	if err := r.recorder.FinishIngestRun(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Warn("failed to record ingest run", "run_id", report.RunID, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
