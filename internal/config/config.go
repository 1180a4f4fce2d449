// ABOUTME: Centralized configuration for the docchat CLI and MCP server
// ABOUTME: Loads an optional YAML file, then environment variables, with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/docchat/internal/core"
	"github.com/harper/docchat/internal/llm"
	"github.com/harper/docchat/internal/models"
)

// EnvConfigFile names the YAML config file when --config is not given
const EnvConfigFile = "DOCCHAT_CONFIG"

// Config holds all configuration for docchat
type Config struct {
	// OpenAI settings
	OpenAIKey         string        `yaml:"openai_api_key"`
	OpenAIBaseURL     string        `yaml:"openai_base_url"`
	ChatModel         string        `yaml:"chat_model"`
	EmbeddingModel    string        `yaml:"embedding_model"`
	Temperature       float64       `yaml:"temperature"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`

	// Chunking and retrieval settings
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	Separator    string `yaml:"separator"`
	TopK         int    `yaml:"top_k"`

	// Record store and access
	RecordsDB   string `yaml:"records_db"`
	AccessToken string `yaml:"access_token"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ChatModel:         llm.DefaultChatModel,
		EmbeddingModel:    llm.DefaultEmbeddingModel,
		Temperature:       llm.DefaultTemperature,
		Timeout:           core.DefaultRequestTimeout,
		MaxRetries:        3,
		RetryDelay:        2 * time.Second,
		RequestsPerSecond: 5,
		ChunkSize:         core.DefaultChunkSize,
		ChunkOverlap:      core.DefaultChunkOverlap,
		Separator:         core.DefaultSeparator,
		TopK:              core.DefaultTopK,
	}
}

// Load reads the file named by DOCCHAT_CONFIG (if any) and environment variables
func Load() (*Config, error) {
	return LoadFile(os.Getenv(EnvConfigFile))
}

// LoadFile reads configuration from a YAML file, then lets environment variables
// override it. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading config file: %w", models.ErrInvalidConfiguration, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing config file %s: %w", models.ErrInvalidConfiguration, path, err)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.ChatModel = getEnv("DOCCHAT_CHAT_MODEL", c.ChatModel)
	c.EmbeddingModel = getEnv("DOCCHAT_EMBEDDING_MODEL", c.EmbeddingModel)
	c.Temperature = getEnvFloat("DOCCHAT_TEMPERATURE", c.Temperature)
	c.Timeout = getEnvDuration("OPENAI_TIMEOUT", c.Timeout)
	c.MaxRetries = getEnvInt("OPENAI_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("OPENAI_RETRY_DELAY", c.RetryDelay)
	c.RequestsPerSecond = getEnvFloat("OPENAI_REQUESTS_PER_SECOND", c.RequestsPerSecond)
	c.ChunkSize = getEnvInt("DOCCHAT_CHUNK_SIZE", c.ChunkSize)
	c.ChunkOverlap = getEnvInt("DOCCHAT_CHUNK_OVERLAP", c.ChunkOverlap)
	c.Separator = getEnvEscaped("DOCCHAT_SEPARATOR", c.Separator)
	c.TopK = getEnvInt("DOCCHAT_TOP_K", c.TopK)
	c.RecordsDB = getEnv("DOCCHAT_RECORDS_DB", c.RecordsDB)
	c.AccessToken = getEnv("DOCCHAT_ACCESS_TOKEN", c.AccessToken)
}

// Validate checks ranges; failures wrap ErrInvalidConfiguration
func (c *Config) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return invalid("DOCCHAT_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	case c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize:
		return invalid("DOCCHAT_CHUNK_OVERLAP must be 0 <= overlap < %d, got %d", c.ChunkSize, c.ChunkOverlap)
	case c.TopK <= 0:
		return invalid("DOCCHAT_TOP_K must be positive, got %d", c.TopK)
	case c.MaxRetries < 0 || c.MaxRetries > 10:
		return invalid("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	case c.RequestsPerSecond <= 0:
		return invalid("OPENAI_REQUESTS_PER_SECOND must be positive, got %g", c.RequestsPerSecond)
	case c.Temperature < 0 || c.Temperature > 2:
		return invalid("DOCCHAT_TEMPERATURE must be 0-2, got %g", c.Temperature)
	case c.Timeout < 0:
		return invalid("OPENAI_TIMEOUT cannot be negative, got %v", c.Timeout)
	}
	return nil
}

// RequireOpenAIKey fails when no API key is configured
func (c *Config) RequireOpenAIKey() error {
	if c.OpenAIKey == "" {
		return invalid("OPENAI_API_KEY environment variable not set")
	}
	return nil
}

// ClientConfig maps the OpenAI settings onto the llm client configuration
func (c *Config) ClientConfig() *llm.ClientConfig {
	return &llm.ClientConfig{
		APIKey:            c.OpenAIKey,
		BaseURL:           c.OpenAIBaseURL,
		ChatModel:         c.ChatModel,
		EmbeddingModel:    c.EmbeddingModel,
		Temperature:       float32(c.Temperature),
		MaxRetries:        c.MaxRetries,
		RetryDelay:        c.RetryDelay,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// SessionOptions maps chunking and retrieval settings onto session options
func (c *Config) SessionOptions() []core.SessionOption {
	return []core.SessionOption{
		core.WithChunking(c.ChunkSize, c.ChunkOverlap),
		core.WithChunkSeparator(c.Separator),
		core.WithTopK(c.TopK),
		core.WithRequestTimeout(c.Timeout),
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getEnvEscaped accepts Go escape sequences so "\n" can be set from a shell
func getEnvEscaped(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if s, err := strconv.Unquote(`"` + v + `"`); err == nil {
		return s
	}
	return v
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
