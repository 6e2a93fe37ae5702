package retrieval

import (
	"context"
	"time"

	"github.com/bkkguide/bkkguide/internal/corpus"
)

// VectorStore is the interface for document storage and similarity search
// backends. SQLiteStore keeps the index in the local database; SupabaseStore
// talks to a hosted Postgres with pgvector.
//
// Implementations must treat Upsert as insert-or-replace keyed by Record.ID so
// re-ingesting the corpus overwrites rather than duplicates.
type VectorStore interface {
	// Upsert writes records, replacing any existing record with the same ID.
	Upsert(ctx context.Context, records []Record) error

	// Search returns the k records most similar to vector, best first.
	// A nil or empty filter matches every record.
	Search(ctx context.Context, vector []float32, k int, filter Filter) ([]ScoredRecord, error)

	// GetByIDs returns records matching the given IDs. Missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]Record, error)

	// Count returns the number of indexed records.
	Count(ctx context.Context) (int, error)
}

// Record is one indexed document.
type Record struct {
	ID        string
	Content   string
	Metadata  corpus.Metadata
	Embedding []float32
	CreatedAt time.Time
}

// ScoredRecord is a Record with a cosine similarity score attached.
type ScoredRecord struct {
	Record
	Score float32
}
