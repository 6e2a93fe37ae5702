package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
)

// mockProvider implements embedding.Provider for testing.
type mockProvider struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.embedFn(ctx, text)
}

func makeVector(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(i) * 0.001
	}
	return v
}

func TestEmbed_ReturnsDimension(t *testing.T) {
	mock := &mockProvider{
		embedFn: func(_ context.Context, _ string) ([]float32, error) {
			return makeVector(DefaultDimensions), nil
		},
	}
	e := NewEmbedder(mock, DefaultDimensions)

	vec, err := e.Embed(context.Background(), "Buddhist temple Bangkok")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != DefaultDimensions {
		t.Errorf("got %d dimensions, want %d", len(vec), DefaultDimensions)
	}
}

func TestEmbed_UpstreamError(t *testing.T) {
	mock := &mockProvider{
		embedFn: func(_ context.Context, _ string) ([]float32, error) {
			return nil, errors.New("connection refused")
		},
	}
	e := NewEmbedder(mock, DefaultDimensions)

	_, err := e.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("error = %v, want ErrEmbeddingUnavailable", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error %q does not carry the cause", err)
	}
}

func TestEmbed_WrongDimension(t *testing.T) {
	mock := &mockProvider{
		embedFn: func(_ context.Context, _ string) ([]float32, error) {
			return makeVector(384), nil
		},
	}
	e := NewEmbedder(mock, DefaultDimensions)

	if _, err := e.Embed(context.Background(), "hello"); !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestEmbed_NoDimensionCheck(t *testing.T) {
	mock := &mockProvider{
		embedFn: func(_ context.Context, _ string) ([]float32, error) {
			return makeVector(3), nil
		},
	}
	if _, err := NewEmbedder(mock, 0).Embed(context.Background(), "x"); err != nil {
		t.Errorf("Embed: %v", err)
	}
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	mock := &mockProvider{
		embedFn: func(_ context.Context, text string) ([]float32, error) {
			var n float32
			fmt.Sscanf(text, "text-%f", &n)
			return []float32{n}, nil
		},
	}
	e := NewEmbedder(mock, 1)

	texts := []string{"text-0", "text-1", "text-2", "text-3", "text-4", "text-5"}
	vecs, err := e.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vecs), len(texts))
	}
	for i, v := range vecs {
		if v[0] != float32(i) {
			t.Errorf("vecs[%d] = %v, want [%d]", i, v, i)
		}
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	var calls atomic.Int32
	mock := &mockProvider{
		embedFn: func(_ context.Context, _ string) ([]float32, error) {
			calls.Add(1)
			return nil, nil
		},
	}
	vecs, err := NewEmbedder(mock, 1).EmbedBatch(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("EmbedBatch(nil) = %v, %v; want nil, nil", vecs, err)
	}
	if calls.Load() != 0 {
		t.Errorf("provider called %d times, want 0", calls.Load())
	}
}

func TestEmbedBatch_OneFailureFailsBatch(t *testing.T) {
	mock := &mockProvider{
		embedFn: func(_ context.Context, text string) ([]float32, error) {
			if text == "bad" {
				return nil, errors.New("rate limited")
			}
			return []float32{1}, nil
		},
	}
	_, err := NewEmbedder(mock, 1).EmbedBatch(context.Background(), []string{"ok", "bad", "ok"})
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestEmbedBatch_StopsAtFirstFailure(t *testing.T) {
	var seen []string
	mock := &mockProvider{
		embedFn: func(_ context.Context, text string) ([]float32, error) {
			seen = append(seen, text)
			if text == "bad" {
				return nil, errors.New("status 429")
			}
			return []float32{1}, nil
		},
	}
	_, err := NewEmbedder(mock, 1).EmbedBatch(context.Background(), []string{"a", "bad", "c"})
	if err == nil || !strings.Contains(err.Error(), "embedding text 1") {
		t.Fatalf("error = %v, want failure at text 1", err)
	}
	if strings.Join(seen, ",") != "a,bad" {
		t.Errorf("provider saw %v, want [a bad]", seen)
	}
}
