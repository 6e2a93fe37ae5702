package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
	kFloat
	kDuration
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	aliases []string // fallback env vars, consulted in order when env is unset
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "BKK_SERVER_PORT", aliases: []string{"PORT"},
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.rate_limit_per_minute", typ: kInt, env: "BKK_SERVER_RATE_LIMIT_PER_MINUTE",
		apply:   func(cfg *Config, v any) { cfg.Server.RateLimitPerMinute = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.RateLimitPerMinute },
	},
	{
		key: "embedding.provider", typ: kString, env: "BKK_EMBEDDING_PROVIDER",
		apply:   func(cfg *Config, v any) { cfg.Embedding.Provider = v.(string) },
		extract: func(cfg Config) any { return cfg.Embedding.Provider },
	},
	{
		key: "embedding.base_url", typ: kString, env: "BKK_EMBEDDING_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Embedding.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Embedding.BaseURL },
	},
	{
		key: "embedding.api_key", typ: kString, env: "BKK_EMBEDDING_API_KEY", aliases: []string{"HUGGINGFACEHUB_API_KEY"},
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Embedding.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Embedding.APIKey },
	},
	{
		key: "embedding.model", typ: kString, env: "BKK_EMBEDDING_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Embedding.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Embedding.Model },
	},
	{
		key: "embedding.dimensions", typ: kInt, env: "BKK_EMBEDDING_DIMENSIONS",
		apply:   func(cfg *Config, v any) { cfg.Embedding.Dimensions = v.(int) },
		extract: func(cfg Config) any { return cfg.Embedding.Dimensions },
	},
	{
		key: "chat.base_url", typ: kString, env: "BKK_CHAT_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Chat.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Chat.BaseURL },
	},
	{
		key: "chat.api_key", typ: kString, env: "BKK_CHAT_API_KEY", aliases: []string{"OPENROUTER_API_KEY"},
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Chat.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Chat.APIKey },
	},
	{
		key: "chat.model", typ: kString, env: "BKK_CHAT_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Chat.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Chat.Model },
	},
	{
		key: "chat.temperature", typ: kFloat, env: "BKK_CHAT_TEMPERATURE",
		apply:   func(cfg *Config, v any) { cfg.Chat.Temperature = v.(float64) },
		extract: func(cfg Config) any { return cfg.Chat.Temperature },
	},
	{
		key: "chat.max_tokens", typ: kInt, env: "BKK_CHAT_MAX_TOKENS",
		apply:   func(cfg *Config, v any) { cfg.Chat.MaxTokens = v.(int) },
		extract: func(cfg Config) any { return cfg.Chat.MaxTokens },
	},
	{
		key: "index.backend", typ: kString, env: "BKK_INDEX_BACKEND",
		apply:   func(cfg *Config, v any) { cfg.Index.Backend = v.(string) },
		extract: func(cfg Config) any { return cfg.Index.Backend },
	},
	{
		key: "index.supabase_url", typ: kString, env: "BKK_INDEX_SUPABASE_URL", aliases: []string{"SUPABASE_URL"},
		apply:   func(cfg *Config, v any) { cfg.Index.SupabaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Index.SupabaseURL },
	},
	{
		key: "index.supabase_service_key", typ: kString, env: "BKK_INDEX_SUPABASE_SERVICE_KEY", aliases: []string{"SUPABASE_SERVICE_ROLE_KEY"},
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Index.SupabaseServiceKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Index.SupabaseServiceKey },
	},
	{
		key: "index.table", typ: kString, env: "BKK_INDEX_TABLE",
		apply:   func(cfg *Config, v any) { cfg.Index.Table = v.(string) },
		extract: func(cfg Config) any { return cfg.Index.Table },
	},
	{
		key: "index.match_function", typ: kString, env: "BKK_INDEX_MATCH_FUNCTION",
		apply:   func(cfg *Config, v any) { cfg.Index.MatchFunction = v.(string) },
		extract: func(cfg Config) any { return cfg.Index.MatchFunction },
	},
	{
		key: "storage.data_dir", typ: kString, env: "BKK_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "retrieval.top_k", typ: kInt, env: "BKK_RETRIEVAL_TOP_K",
		apply:   func(cfg *Config, v any) { cfg.Retrieval.TopK = v.(int) },
		extract: func(cfg Config) any { return cfg.Retrieval.TopK },
	},
	{
		key: "ingest.batch_size", typ: kInt, env: "BKK_INGEST_BATCH_SIZE",
		apply:   func(cfg *Config, v any) { cfg.Ingest.BatchSize = v.(int) },
		extract: func(cfg Config) any { return cfg.Ingest.BatchSize },
	},
	{
		key: "ingest.batch_delay", typ: kDuration, env: "BKK_INGEST_BATCH_DELAY",
		apply:   func(cfg *Config, v any) { cfg.Ingest.BatchDelay = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Ingest.BatchDelay },
	},
	{
		key: "recommend.grounded", typ: kBool, env: "BKK_RECOMMEND_GROUNDED",
		apply:   func(cfg *Config, v any) { cfg.Recommend.Grounded = v.(bool) },
		extract: func(cfg Config) any { return cfg.Recommend.Grounded },
	},
	{
		key: "corpus.file", typ: kString, env: "BKK_CORPUS_FILE",
		apply:   func(cfg *Config, v any) { cfg.Corpus.File = v.(string) },
		extract: func(cfg Config) any { return cfg.Corpus.File },
	},
	{
		key: "log.level", typ: kString, env: "BKK_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

// parseValue converts raw text into the Go type expected by apply.
func parseValue(typ keyType, raw string) (any, error) {
	switch typ {
	case kInt:
		return strconv.Atoi(raw)
	case kBool:
		return strconv.ParseBool(raw)
	case kFloat:
		return strconv.ParseFloat(raw, 64)
	case kDuration:
		return time.ParseDuration(raw)
	default:
		return raw, nil
	}
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		default:
			raw, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if !ok || (raw == "" && s.typ != kString) {
				continue
			}
			v, err := parseValue(s.typ, raw)
			if err != nil {
				slog.Warn("could not parse config value, using default", "key", s.key, "value", raw, "error", err)
				continue
			}
			s.apply(cfg, v)
		}
	}
	return nil
}

// lookupEnv returns the first non-empty value among a key's env var and
// its aliases.
func (s keySpec) lookupEnv() (name, value string) {
	for _, n := range append([]string{s.env}, s.aliases...) {
		if n == "" {
			continue
		}
		if v := os.Getenv(n); v != "" {
			return n, v
		}
	}
	return "", ""
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		name, raw := s.lookupEnv()
		if raw == "" {
			continue
		}
		v, err := parseValue(s.typ, raw)
		if err != nil {
			slog.Warn("could not parse env var, using default", "env", name, "value", raw, "error", err)
			continue
		}
		s.apply(cfg, v)
	}
}
