package main

import (
	"fmt"
	"log/slog"

	"github.com/bkkguide/bkkguide/internal/chat"
	"github.com/bkkguide/bkkguide/internal/config"
	"github.com/bkkguide/bkkguide/internal/corpus"
	"github.com/bkkguide/bkkguide/internal/embedding"
	"github.com/bkkguide/bkkguide/internal/llm"
	"github.com/bkkguide/bkkguide/internal/recommend"
	"github.com/bkkguide/bkkguide/internal/retrieval"
	"github.com/bkkguide/bkkguide/internal/storage"
)

// app holds the components shared by the commands that touch the index.
type app struct {
	cfg       config.Config
	store     *storage.Store
	provider  embedding.Provider
	embedder  *retrieval.Embedder
	vectors   retrieval.VectorStore
	retriever *retrieval.Retriever
}

// openApp opens the local database and builds the embedding and index
// clients selected by cfg. The caller must Close it.
func openApp(cfg config.Config) (*app, error) {
	provider, err := embedding.New(embedding.Options{
		Provider: cfg.Embedding.Provider,
		BaseURL:  cfg.Embedding.BaseURL,
		APIKey:   cfg.Embedding.APIKey,
		Model:    cfg.Embedding.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	embedder := retrieval.NewEmbedder(provider, cfg.Embedding.Dimensions)
	vectors := newVectorStore(cfg, store)
	return &app{
		cfg:       cfg,
		store:     store,
		provider:  provider,
		embedder:  embedder,
		vectors:   vectors,
		retriever: retrieval.NewRetriever(embedder, vectors),
	}, nil
}

func newVectorStore(cfg config.Config, store *storage.Store) retrieval.VectorStore {
	if cfg.Index.Backend == config.BackendSupabase {
		return retrieval.NewSupabaseStore(cfg.Index.SupabaseURL, cfg.Index.SupabaseServiceKey, cfg.Index.Table, cfg.Index.MatchFunction)
	}
	return retrieval.NewSQLiteStore(store.DB())
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("closing storage", "error", err)
	}
}

func newChatModel(cfg config.Config) *llm.Client {
	return llm.NewClient(cfg.Chat.APIKey,
		llm.WithBaseURL(cfg.Chat.BaseURL),
		llm.WithModel(cfg.Chat.Model),
		llm.WithSampling(cfg.Chat.Temperature, cfg.Chat.MaxTokens),
	)
}

func (a *app) chatService() *chat.Service {
	return chat.NewService(
		a.retriever,
		newChatModel(a.cfg),
		recommend.New(recommend.WithGrounding(a.cfg.Recommend.Grounded)),
		a.cfg.Retrieval.TopK,
	)
}

func loadCorpus(cfg config.Config) ([]corpus.Attraction, error) {
	attractions, err := corpus.Load(cfg.Corpus.File)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return attractions, nil
}
