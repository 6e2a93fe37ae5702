// Package embedding provides clients for the upstream text-embedding
// capabilities the guide indexes and searches with.
package embedding

import (
	"context"
	"fmt"
)

// Provider turns text into an embedding vector.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Provider names accepted by New.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"
)

// Options configures New. Fields that do not apply to the selected provider
// are ignored.
type Options struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
}

// New builds the Provider named by opts.Provider.
func New(opts Options) (Provider, error) {
	switch opts.Provider {
	case "", ProviderHuggingFace:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("huggingface: API key is required")
		}
		c := NewHuggingFace(opts.APIKey, opts.Model)
		if opts.BaseURL != "" {
			c = NewHuggingFaceWithBaseURL(opts.APIKey, opts.Model, opts.BaseURL)
		}
		return c, nil
	case ProviderOllama:
		return NewOllama(opts.BaseURL, opts.Model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
}
