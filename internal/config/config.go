// Package config loads bkkguide settings from defaults, a YAML file and the
// environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Index backends.
const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

type Config struct {
	Server    ServerConfig
	Embedding EmbeddingConfig
	Chat      ChatConfig
	Index     IndexConfig
	Storage   StorageConfig
	Retrieval RetrievalConfig
	Ingest    IngestConfig
	Recommend RecommendConfig
	Corpus    CorpusConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port               int
	RateLimitPerMinute int
}

type EmbeddingConfig struct {
	Provider   string
	BaseURL    string
	APIKey     string
	Model      string // empty selects the provider default
	Dimensions int
}

type ChatConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

type IndexConfig struct {
	Backend            string
	SupabaseURL        string
	SupabaseServiceKey string
	Table              string
	MatchFunction      string
}

type StorageConfig struct {
	DataDir string
}

type RetrievalConfig struct {
	TopK int
}

type IngestConfig struct {
	BatchSize  int
	BatchDelay time.Duration
}

type RecommendConfig struct {
	Grounded bool
}

type CorpusConfig struct {
	File string // empty uses the compiled-in Bangkok corpus
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:               3000,
			RateLimitPerMinute: 30,
		},
		Embedding: EmbeddingConfig{
			Provider:   "huggingface",
			Dimensions: 1024,
		},
		Chat: ChatConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			Model:       "moonshotai/kimi-k2:free",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Index: IndexConfig{
			Backend:       BackendSQLite,
			Table:         "documents",
			MatchFunction: "match_documents",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Ingest: IngestConfig{
			BatchSize:  3,
			BatchDelay: 2 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the config file and environment variables.
//
// The file lives at $XDG_CONFIG_HOME/bkkguide/config.yaml. Environment
// variables (BKK_*, plus the aliases listed in keys.go) override file
// values. Secrets are read from the environment only.
//
// Load does not check that credentials are present; use ValidateServe or
// ValidateIngest for the command at hand.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// ValidateServe checks what the chat server needs: an embedding provider for
// queries, a chat model key and a reachable index.
func (c Config) ValidateServe() error {
	errs := c.validateCommon()
	if c.Chat.APIKey == "" {
		errs = append(errs, errors.New("missing required config: OpenRouter API key. Set OPENROUTER_API_KEY or BKK_CHAT_API_KEY"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if c.Server.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("server.rate_limit_per_minute must not be negative"))
	}
	if c.Retrieval.TopK <= 0 {
		errs = append(errs, errors.New("retrieval.top_k must be positive"))
	}
	return errors.Join(errs...)
}

// ValidateIngest checks what the ingestion procedure needs.
func (c Config) ValidateIngest() error {
	errs := c.validateCommon()
	if c.Ingest.BatchSize <= 0 {
		errs = append(errs, errors.New("ingest.batch_size must be positive"))
	}
	if c.Ingest.BatchDelay < 0 {
		errs = append(errs, errors.New("ingest.batch_delay must not be negative"))
	}
	return errors.Join(errs...)
}

// ValidateSearch checks what a similarity search needs.
func (c Config) ValidateSearch() error {
	return errors.Join(c.validateCommon()...)
}

func (c Config) validateCommon() []error {
	var errs []error
	switch c.Embedding.Provider {
	case "", "huggingface":
		if c.Embedding.APIKey == "" {
			errs = append(errs, errors.New("missing required config: Hugging Face API key. Set HUGGINGFACEHUB_API_KEY or BKK_EMBEDDING_API_KEY"))
		}
	case "ollama":
	default:
		errs = append(errs, fmt.Errorf("embedding.provider %q is not one of huggingface, ollama", c.Embedding.Provider))
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, errors.New("embedding.dimensions must be positive"))
	}

	switch c.Index.Backend {
	case BackendSQLite:
	case BackendSupabase:
		if c.Index.SupabaseURL == "" {
			errs = append(errs, errors.New("missing required config: Supabase URL. Set SUPABASE_URL or BKK_INDEX_SUPABASE_URL"))
		}
		if c.Index.SupabaseServiceKey == "" {
			errs = append(errs, errors.New("missing required config: Supabase service key. Set SUPABASE_SERVICE_ROLE_KEY or BKK_INDEX_SUPABASE_SERVICE_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("index.backend %q is not one of sqlite, supabase", c.Index.Backend))
	}
	return errs
}

// SlogLevel maps log.level to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
