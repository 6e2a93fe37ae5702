package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// allEnv lists every env var the loader reads so tests start from a clean
// environment.
func allEnv() []string {
	var names []string
	for _, s := range specs {
		names = append(names, s.env)
		names = append(names, s.aliases...)
	}
	return names
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, n := range allEnv() {
		t.Setenv(n, "")
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestDefaults verifies all default values are applied when no file exists.
func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "missing.json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Embedding.Provider != "huggingface" || cfg.Embedding.Dimensions != 1024 {
		t.Errorf("Embedding = %+v", cfg.Embedding)
	}
	if cfg.Chat.Model != "moonshotai/kimi-k2:free" || cfg.Chat.Temperature != 0.7 || cfg.Chat.MaxTokens != 2000 {
		t.Errorf("Chat = %+v", cfg.Chat)
	}
	if cfg.Index.Backend != BackendSQLite || cfg.Index.Table != "documents" || cfg.Index.MatchFunction != "match_documents" {
		t.Errorf("Index = %+v", cfg.Index)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("Retrieval.TopK = %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Ingest.BatchSize != 3 || cfg.Ingest.BatchDelay != 2*time.Second {
		t.Errorf("Ingest = %+v", cfg.Ingest)
	}
	if cfg.Recommend.Grounded {
		t.Error("Recommend.Grounded should default to false")
	}
	if cfg.Corpus.File != "" {
		t.Errorf("Corpus.File = %q, want empty", cfg.Corpus.File)
	}
}

// TestFileParsing verifies that typed fields are read from the JSON file.
func TestFileParsing(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `{
  "server.port": 8080,
  "embedding.provider": "ollama",
  "embedding.model": "mxbai-embed-large",
  "chat.temperature": "0.2",
  "index.backend": "supabase",
  "index.supabase_url": "https://example.supabase.co",
  "storage.data_dir": "/tmp/bkkguide-test",
  "ingest.batch_delay": "500ms",
  "recommend.grounded": "true",
  "corpus.file": "/etc/bkkguide/corpus.yaml",
  "chat.api_key": "ignored-secret"
}`)

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
	if cfg.Embedding.Provider != "ollama" || cfg.Embedding.Model != "mxbai-embed-large" {
		t.Errorf("Embedding = %+v", cfg.Embedding)
	}
	if cfg.Chat.Temperature != 0.2 {
		t.Errorf("Chat.Temperature = %v", cfg.Chat.Temperature)
	}
	if cfg.Index.Backend != BackendSupabase || cfg.Index.SupabaseURL != "https://example.supabase.co" {
		t.Errorf("Index = %+v", cfg.Index)
	}
	if cfg.Storage.DataDir != "/tmp/bkkguide-test" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Ingest.BatchDelay != 500*time.Millisecond {
		t.Errorf("Ingest.BatchDelay = %v", cfg.Ingest.BatchDelay)
	}
	if !cfg.Recommend.Grounded {
		t.Error("Recommend.Grounded = false, want true")
	}
	if cfg.Corpus.File != "/etc/bkkguide/corpus.yaml" {
		t.Errorf("Corpus.File = %q", cfg.Corpus.File)
	}
	if cfg.Chat.APIKey != "" {
		t.Errorf("secret read from file: %q", cfg.Chat.APIKey)
	}
}

func TestFileParsing_BadInt(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `{"server.port": 80.5}`)
	if _, err := loadWith(newFileBackend(path)); err == nil {
		t.Fatal("expected error for non-integer port")
	}
}

func TestFileParsing_BadValueKeepsDefault(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `{"ingest.batch_delay": "soon"}`)
	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Ingest.BatchDelay != 2*time.Second {
		t.Errorf("BatchDelay = %v, want default", cfg.Ingest.BatchDelay)
	}
}

// TestEnvOverride verifies that environment variables override file values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `{"chat.model": "file-model", "retrieval.top_k": 3}`)

	t.Setenv("BKK_CHAT_MODEL", "env-model")
	t.Setenv("BKK_RETRIEVAL_TOP_K", "7")
	t.Setenv("BKK_RECOMMEND_GROUNDED", "1")
	t.Setenv("BKK_CHAT_API_KEY", "env-key")

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chat.Model != "env-model" {
		t.Errorf("Chat.Model = %q, want env-model", cfg.Chat.Model)
	}
	if cfg.Retrieval.TopK != 7 {
		t.Errorf("Retrieval.TopK = %d, want 7", cfg.Retrieval.TopK)
	}
	if !cfg.Recommend.Grounded {
		t.Error("Recommend.Grounded = false, want true")
	}
	if cfg.Chat.APIKey != "env-key" {
		t.Errorf("Chat.APIKey = %q", cfg.Chat.APIKey)
	}
}

// TestEnvAliases verifies the deployment-style variable names are honoured
// and that the BKK_ names win when both are set.
func TestEnvAliases(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("HUGGINGFACEHUB_API_KEY", "hf-key")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")
	t.Setenv("BKK_EMBEDDING_API_KEY", "bkk-hf-key")

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "none.json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chat.APIKey != "or-key" {
		t.Errorf("Chat.APIKey = %q", cfg.Chat.APIKey)
	}
	if cfg.Embedding.APIKey != "bkk-hf-key" {
		t.Errorf("Embedding.APIKey = %q, want BKK_ value to win", cfg.Embedding.APIKey)
	}
	if cfg.Index.SupabaseURL != "https://abc.supabase.co" || cfg.Index.SupabaseServiceKey != "service-key" {
		t.Errorf("Index = %+v", cfg.Index)
	}
}

func TestEnvOverride_InvalidKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("BKK_SERVER_PORT", "not-a-port")

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "none.json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want default 3000", cfg.Server.Port)
	}
}

func TestValidateServe(t *testing.T) {
	cfg := defaults()
	err := cfg.ValidateServe()
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	for _, want := range []string{"OpenRouter API key", "Hugging Face API key"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}

	cfg.Chat.APIKey = "k"
	cfg.Embedding.APIKey = "k"
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Server.Port = 0
	cfg.Retrieval.TopK = 0
	if err := cfg.ValidateServe(); err == nil {
		t.Error("expected error for bad port and top_k")
	}
}

func TestValidateIngest(t *testing.T) {
	cfg := defaults()
	cfg.Embedding.Provider = "ollama"
	if err := cfg.ValidateIngest(); err != nil {
		t.Errorf("ollama needs no key: %v", err)
	}

	cfg.Index.Backend = BackendSupabase
	err := cfg.ValidateIngest()
	if err == nil || !strings.Contains(err.Error(), "Supabase URL") || !strings.Contains(err.Error(), "Supabase service key") {
		t.Errorf("error = %v, want both Supabase credentials reported", err)
	}

	cfg.Index.SupabaseURL = "https://abc.supabase.co"
	cfg.Index.SupabaseServiceKey = "s"
	cfg.Ingest.BatchSize = 0
	if err := cfg.ValidateIngest(); err == nil {
		t.Error("expected error for zero batch size")
	}

	cfg.Ingest.BatchSize = 3
	cfg.Index.Backend = "pinecone"
	if err := cfg.ValidateIngest(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestValidateSearch_UnknownProvider(t *testing.T) {
	cfg := defaults()
	cfg.Embedding.Provider = "openai"
	if err := cfg.ValidateSearch(); err == nil || !strings.Contains(err.Error(), "openai") {
		t.Errorf("error = %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (Config{Log: LogConfig{Level: in}}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestShowAll_HidesSecrets(t *testing.T) {
	cfg := defaults()
	cfg.Chat.APIKey = "super-secret"

	for _, k := range ShowAll(cfg) {
		if strings.Contains(k.Key, "api_key") || strings.Contains(k.Key, "service_key") {
			t.Errorf("secret key %q listed", k.Key)
		}
		if k.Value == "super-secret" {
			t.Error("secret value leaked")
		}
	}

	secrets := Secrets(cfg)
	if len(secrets) != 3 {
		t.Fatalf("Secrets = %d entries, want 3", len(secrets))
	}
	for _, s := range secrets {
		if s.Value == "super-secret" {
			t.Error("secret value leaked")
		}
		if s.Key == "chat.api_key" && s.Value != "(set)" {
			t.Errorf("chat.api_key = %q, want (set)", s.Value)
		}
		if s.Key == "chat.api_key" && !strings.Contains(s.EnvVar, "OPENROUTER_API_KEY") {
			t.Errorf("chat.api_key env = %q", s.EnvVar)
		}
	}
}

func TestSetKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	b := newFileBackend(path)

	if err := setKey(b, "server.port", "8081"); err != nil {
		t.Fatalf("setKey int: %v", err)
	}
	if err := setKey(b, "ingest.batch_delay", "1s"); err != nil {
		t.Fatalf("setKey duration: %v", err)
	}
	if err := setKey(b, "recommend.grounded", "yes"); err == nil {
		t.Error("expected error for invalid bool")
	}
	if err := setKey(b, "server.port", "eighty"); err == nil {
		t.Error("expected error for invalid int")
	}
	if err := setKey(b, "chat.api_key", "x"); err == nil || !strings.Contains(err.Error(), "BKK_CHAT_API_KEY") {
		t.Errorf("secret error = %v", err)
	}
	if err := setKey(b, "nope.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	var data struct {
		Server map[string]any `yaml:"server"`
		Ingest map[string]any `yaml:"ingest"`
		Chat   map[string]any `yaml:"chat"`
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		t.Fatalf("parsing saved config: %v", err)
	}
	if data.Server["port"] != 8081 || data.Ingest["batch_delay"] != "1s" {
		t.Errorf("saved = %s", raw)
	}
	if _, ok := data.Chat["api_key"]; ok {
		t.Error("secret persisted")
	}

	clearEnv(t)
	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Server.Port != 8081 || cfg.Ingest.BatchDelay != time.Second {
		t.Errorf("reloaded = %+v / %+v", cfg.Server, cfg.Ingest)
	}
}

func TestValidKeys(t *testing.T) {
	keys := ValidKeys()
	seen := make(map[string]bool)
	for _, k := range keys {
		if seen[k] {
			t.Errorf("duplicate key %q", k)
		}
		seen[k] = true
	}
	for _, want := range []string{"server.port", "retrieval.top_k", "ingest.batch_delay", "recommend.grounded"} {
		if !seen[want] {
			t.Errorf("missing key %q", want)
		}
	}
	if seen["chat.api_key"] {
		t.Error("secret listed as settable")
	}
}

func TestFileParsing_Sections(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
server:
  port: 4100
  rate_limit_per_minute: 0
chat:
  model: openai/gpt-4o-mini
  temperature: 0.3
ingest:
  batch_size: 5
  batch_delay: 250ms
recommend:
  grounded: true
`)

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 4100 || cfg.Server.RateLimitPerMinute != 0 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Chat.Model != "openai/gpt-4o-mini" || cfg.Chat.Temperature != 0.3 {
		t.Errorf("chat = %+v", cfg.Chat)
	}
	if cfg.Ingest.BatchSize != 5 || cfg.Ingest.BatchDelay != 250*time.Millisecond {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
	if !cfg.Recommend.Grounded {
		t.Error("recommend.grounded not applied")
	}
}
