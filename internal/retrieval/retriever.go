package retrieval

import (
	"context"
	"errors"
	"fmt"
)

// ErrContextRetrievalFailed wraps any failure to embed a query or search the
// index.
var ErrContextRetrievalFailed = errors.New("context retrieval failed")

// ScoredDocument is a search hit with its cosine similarity.
type ScoredDocument struct {
	Document
	Score float32
}

// Retriever combines embedding and vector search to find relevant documents.
type Retriever struct {
	embedder *Embedder
	store    VectorStore
}

// NewRetriever creates a Retriever backed by the given Embedder and VectorStore.
func NewRetriever(embedder *Embedder, store VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// FindRelevant returns at most k documents most similar to query, best first.
// An empty result is not an error.
func (r *Retriever) FindRelevant(ctx context.Context, query string, k int) ([]Document, error) {
	scored, err := r.Search(ctx, query, k, nil)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, len(scored))
	for i, s := range scored {
		docs[i] = s.Document
	}
	return docs, nil
}

// Search is FindRelevant with a metadata filter and scores attached.
func (r *Retriever) Search(ctx context.Context, query string, k int, filter Filter) ([]ScoredDocument, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextRetrievalFailed, err)
	}

	scored, err := r.store.Search(ctx, vec, k, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextRetrievalFailed, err)
	}

	docs := make([]ScoredDocument, 0, len(scored))
	for _, s := range scored {
		docs = append(docs, ScoredDocument{
			Document: Document{ID: s.ID, Content: s.Content, Metadata: s.Metadata},
			Score:    s.Score,
		})
	}
	if k > 0 && len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

// Count returns the number of indexed documents.
func (r *Retriever) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}
