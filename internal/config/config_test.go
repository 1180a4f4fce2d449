// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies defaults, YAML file loading, environment precedence and validation
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/docchat/internal/models"
)

var envKeys = []string{
	EnvConfigFile, "OPENAI_API_KEY", "OPENAI_BASE_URL", "DOCCHAT_CHAT_MODEL",
	"DOCCHAT_EMBEDDING_MODEL", "DOCCHAT_TEMPERATURE", "OPENAI_TIMEOUT",
	"OPENAI_MAX_RETRIES", "OPENAI_RETRY_DELAY", "OPENAI_REQUESTS_PER_SECOND",
	"DOCCHAT_CHUNK_SIZE", "DOCCHAT_CHUNK_OVERLAP", "DOCCHAT_SEPARATOR",
	"DOCCHAT_TOP_K", "DOCCHAT_RECORDS_DB", "DOCCHAT_ACCESS_TOKEN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("ChatModel = %s, want gpt-4o-mini", cfg.ChatModel)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if cfg.Temperature != 0.2 {
		t.Errorf("Temperature = %f, want 0.2", cfg.Temperature)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Errorf("chunking = %d/%d, want 1000/200", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.Separator != "\n" {
		t.Errorf("Separator = %q, want newline", cfg.Separator)
	}
	if cfg.TopK != 4 {
		t.Errorf("TopK = %d, want 4", cfg.TopK)
	}
	if cfg.OpenAIKey != "" {
		t.Errorf("OpenAIKey = %q, want empty", cfg.OpenAIKey)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("DOCCHAT_CHAT_MODEL", "gpt-4")
	t.Setenv("DOCCHAT_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("OPENAI_TIMEOUT", "90s")
	t.Setenv("OPENAI_MAX_RETRIES", "5")
	t.Setenv("DOCCHAT_CHUNK_SIZE", "500")
	t.Setenv("DOCCHAT_CHUNK_OVERLAP", "50")
	t.Setenv("DOCCHAT_SEPARATOR", `\n\n`)
	t.Setenv("DOCCHAT_TOP_K", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.OpenAIKey != "test-key" {
		t.Errorf("OpenAIKey = %s, want test-key", cfg.OpenAIKey)
	}
	if cfg.OpenAIBaseURL != "http://localhost:8080/v1" {
		t.Errorf("OpenAIBaseURL = %s", cfg.OpenAIBaseURL)
	}
	if cfg.ChatModel != "gpt-4" {
		t.Errorf("ChatModel = %s, want gpt-4", cfg.ChatModel)
	}
	if cfg.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-large", cfg.EmbeddingModel)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.ChunkSize != 500 || cfg.ChunkOverlap != 50 {
		t.Errorf("chunking = %d/%d, want 500/50", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.Separator != "\n\n" {
		t.Errorf("Separator = %q, want blank line", cfg.Separator)
	}
	if cfg.TopK != 6 {
		t.Errorf("TopK = %d, want 6", cfg.TopK)
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docchat.yaml")
	yaml := `chat_model: file-model
chunk_size: 300
chunk_overlap: 30
top_k: 2
timeout: 15s
records_db: /tmp/records.db
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCCHAT_TOP_K", "3")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.ChatModel != "file-model" {
		t.Errorf("ChatModel = %s, want file-model", cfg.ChatModel)
	}
	if cfg.ChunkSize != 300 || cfg.ChunkOverlap != 30 {
		t.Errorf("chunking = %d/%d, want 300/30", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d, want env value 3", cfg.TopK)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Timeout)
	}
	if cfg.RecordsDB != "/tmp/records.db" {
		t.Errorf("RecordsDB = %s", cfg.RecordsDB)
	}
	// untouched keys keep defaults
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %s, want default", cfg.EmbeddingModel)
	}
}

func TestLoad_UsesConfigEnvVar(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docchat.yaml")
	if err := os.WriteFile(path, []byte("top_k: 9\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TopK != 9 {
		t.Errorf("TopK = %d, want 9", cfg.TopK)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("missing file: got %v, want ErrInvalidConfiguration", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("chunk_size: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = LoadFile(bad)
	if !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("bad yaml: got %v, want ErrInvalidConfiguration", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"overlap equals size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"zero top k", func(c *Config) { c.TopK = 0 }},
		{"too many retries", func(c *Config) { c.MaxRetries = 15 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero rps", func(c *Config) { c.RequestsPerSecond = 0 }},
		{"temperature", func(c *Config) { c.Temperature = 3 }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, models.ErrInvalidConfiguration) {
				t.Errorf("Validate() = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCCHAT_CHUNK_SIZE", "100")
	t.Setenv("DOCCHAT_CHUNK_OVERLAP", "100")

	if _, err := Load(); !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("Load() = %v, want ErrInvalidConfiguration", err)
	}
}

func TestRequireOpenAIKey(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireOpenAIKey(); !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("RequireOpenAIKey() = %v, want ErrInvalidConfiguration", err)
	}
	cfg.OpenAIKey = "k"
	if err := cfg.RequireOpenAIKey(); err != nil {
		t.Errorf("RequireOpenAIKey() = %v, want nil", err)
	}
}

func TestClientConfig(t *testing.T) {
	cfg := Default()
	cfg.OpenAIKey = "k"
	cfg.OpenAIBaseURL = "http://example/v1"

	cc := cfg.ClientConfig()
	if cc.APIKey != "k" || cc.BaseURL != "http://example/v1" {
		t.Errorf("ClientConfig() = %+v", cc)
	}
	if cc.Temperature != float32(0.2) {
		t.Errorf("Temperature = %f, want 0.2", cc.Temperature)
	}
	if len(cfg.SessionOptions()) != 4 {
		t.Errorf("SessionOptions() returned %d options, want 4", len(cfg.SessionOptions()))
	}
}
