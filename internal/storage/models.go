package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Ingest run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// IngestRun records one execution of the ingestion procedure.
type IngestRun struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time // zero while running
	Status      string
	Backend     string // index backend written to, e.g. "sqlite" or "supabase"
	Documents   int
	Batches     int
	FailedBatch int // 1-based, 0 when no batch failed
	LastError   string
}
