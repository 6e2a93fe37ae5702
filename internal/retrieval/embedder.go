package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/bkkguide/bkkguide/internal/embedding"
)

// ErrEmbeddingUnavailable is wrapped by every Embedder failure: an upstream
// error, or a vector of the wrong length.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// DefaultDimensions matches thenlper/gte-large and the hosted index column.
const DefaultDimensions = 1024

// Embedder wraps an embedding.Provider and enforces the index dimensionality.
type Embedder struct {
	provider embedding.Provider
	dims     int
}

// NewEmbedder creates an Embedder. dims <= 0 disables the length check.
func NewEmbedder(p embedding.Provider, dims int) *Embedder {
	return &Embedder{provider: p, dims: dims}
}

// Dimensions returns the configured vector length.
func (e *Embedder) Dimensions() int { return e.dims }

// Embed returns the embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}
	if e.dims > 0 && len(vec) != e.dims {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d", ErrEmbeddingUnavailable, len(vec), e.dims)
	}
	return vec, nil
}

// EmbedBatch returns embedding vectors for multiple texts in input order,
// one upstream request at a time. It stops at the first failure. Returns nil
// (not error) for empty/nil input.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	results := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		results[i] = vec
	}
	return results, nil
}
