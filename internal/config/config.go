package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration. Loaded and validated once at startup;
// read-only afterwards.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Generation model
	GenProvider  string `env:"GEN_PROVIDER" envDefault:"openai"` // "openai" (uses OpenAI API)
	OpenAIKey    string `env:"OPENAI_API_KEY"`
	GenModel     string `env:"GEN_MODEL" envDefault:"gpt-4o-mini"`
	ModelName    string `env:"MODEL_NAME" envDefault:"gpt-4o-mini"` // reported by /get_model_name
	MinNewTokens int    `env:"MIN_NEW_TOKENS" envDefault:"500"`
	MaxNewTokens int    `env:"MAX_NEW_TOKENS" envDefault:"900"`

	// Classification gate
	ClassifierURL       string  `env:"CLASSIFIER_URL"`
	ClassifierThreshold float64 `env:"CLASSIFIER_THRESHOLD" envDefault:"0.5"`
	TechnicalLabel      string  `env:"TECHNICAL_LABEL" envDefault:"Technical"`
	PLSLabel            string  `env:"PLS_LABEL" envDefault:"PLS"`

	// Embeddings
	EmbeddingModel     string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingMaxTokens int    `env:"EMBEDDING_MAX_TOKENS" envDefault:"512"`

	// Cache (optional; no-op when REDIS_ADDR is empty)
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds

	// Events (optional; no-op when NATS_URL is empty)
	NATSURL string `env:"NATS_URL"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// Validate checks invariants the pipeline depends on.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in (0,65535], got %d", c.Port)
	}
	if c.ClassifierThreshold <= 0 || c.ClassifierThreshold >= 1 {
		return fmt.Errorf("CLASSIFIER_THRESHOLD must be in (0,1), got %v", c.ClassifierThreshold)
	}
	if c.TechnicalLabel == "" || c.PLSLabel == "" {
		return fmt.Errorf("TECHNICAL_LABEL and PLS_LABEL must be non-empty")
	}
	if c.MinNewTokens < 0 || c.MaxNewTokens <= 0 || c.MinNewTokens > c.MaxNewTokens {
		return fmt.Errorf("token bounds invalid: min %d, max %d", c.MinNewTokens, c.MaxNewTokens)
	}
	if c.EmbeddingMaxTokens <= 0 {
		return fmt.Errorf("EMBEDDING_MAX_TOKENS must be positive, got %d", c.EmbeddingMaxTokens)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %d", c.CacheTTL)
	}
	return nil
}
