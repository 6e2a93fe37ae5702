package retrieval

import (
	"context"
	"fmt"

	"github.com/bkkguide/bkkguide/internal/corpus"
)

// Document is the indexed form of an attraction.
type Document struct {
	ID       string
	Content  string
	Metadata corpus.Metadata
}

// NewDocument builds the indexed representation of a.
func NewDocument(a corpus.Attraction) Document {
	return Document{ID: a.ID, Content: corpus.Content(a), Metadata: a.Metadata()}
}

// Indexer writes documents into a VectorStore.
type Indexer struct {
	embedder *Embedder
	store    VectorStore
}

// NewIndexer creates an Indexer.
func NewIndexer(embedder *Embedder, store VectorStore) *Indexer {
	return &Indexer{embedder: embedder, store: store}
}

// Index persists doc with a precomputed vector. Indexing an existing id
// replaces it.
func (ix *Indexer) Index(ctx context.Context, doc Document, vec []float32) error {
	if d := ix.embedder.Dimensions(); d > 0 && len(vec) != d {
		return fmt.Errorf("indexing %s: got %d dimensions, want %d", doc.ID, len(vec), d)
	}
	if err := ix.store.Upsert(ctx, []Record{toRecord(doc, vec)}); err != nil {
		return fmt.Errorf("indexing %s: %w", doc.ID, err)
	}
	return nil
}

// IndexBatch embeds every document, then upserts them with one store call.
// Nothing is written if any embedding fails.
func (ix *Indexer) IndexBatch(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vecs, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	records := make([]Record, len(docs))
	for i, d := range docs {
		records[i] = toRecord(d, vecs[i])
	}
	if err := ix.store.Upsert(ctx, records); err != nil {
		return fmt.Errorf("storing %d documents: %w", len(docs), err)
	}
	return nil
}

func toRecord(d Document, vec []float32) Record {
	return Record{ID: d.ID, Content: d.Content, Metadata: d.Metadata, Embedding: vec}
}
