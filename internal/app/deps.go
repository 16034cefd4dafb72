package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"pls-engine/internal/cache"
	"pls-engine/internal/classifier"
	"pls-engine/internal/config"
	"pls-engine/internal/embeddings"
	"pls-engine/internal/events"
	"pls-engine/internal/llm"
	"pls-engine/internal/logger"
	"pls-engine/internal/pipeline"
	"pls-engine/internal/scoring"
)

// Deps bundles the process-wide dependencies. Everything here is built
// once at startup and read-only afterwards; the orchestrator is shared
// across concurrent requests.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Gate      *classifier.Gate
	Generator llm.Generator
	Embedder  embeddings.Embedder
	Cache     cache.Cache
	Events    events.Publisher
	Pipeline  *pipeline.Orchestrator
}

// Build loads env, config, and wires the pipeline.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return Deps{}, fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	gate, err := buildGate(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize classification gate: %w", err)
	}
	generator, err := buildGenerator(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize generator: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	evalCache, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	publisher, err := buildEvents(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize events: %w", err)
	}

	orch := pipeline.New(
		gate,
		generator,
		scoring.New(embedder),
		evalCache,
		publisher,
		time.Duration(cfg.CacheTTL)*time.Second,
		log,
	)

	return Deps{
		Config:    cfg,
		Log:       log,
		Gate:      gate,
		Generator: generator,
		Embedder:  embedder,
		Cache:     evalCache,
		Events:    publisher,
		Pipeline:  orch,
	}, nil
}

func buildGate(cfg config.Config, log *slog.Logger) (*classifier.Gate, error) {
	if cfg.ClassifierURL == "" {
		return nil, fmt.Errorf("CLASSIFIER_URL is required")
	}
	cls, err := classifier.NewHTTPClassifier(cfg.ClassifierURL)
	if err != nil {
		return nil, err
	}
	log.Info("using HTTP classifier", "url", cfg.ClassifierURL, "threshold", cfg.ClassifierThreshold)
	return classifier.NewGate(cls, cfg.ClassifierThreshold, cfg.TechnicalLabel, cfg.PLSLabel)
}

func buildGenerator(cfg config.Config, log *slog.Logger) (llm.Generator, error) {
	switch cfg.GenProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when GEN_PROVIDER=openai")
		}
		gen, err := llm.NewOpenAIGenerator(cfg.OpenAIKey, openai.ChatModel(cfg.GenModel), cfg.MinNewTokens, cfg.MaxNewTokens)
		if err != nil {
			return nil, err
		}
		log.Info("using OpenAI generator", "model", cfg.GenModel, "min_new_tokens", cfg.MinNewTokens, "max_new_tokens", cfg.MaxNewTokens)
		return gen, nil
	default:
		return nil, fmt.Errorf("invalid GEN_PROVIDER: %s (valid option: openai)", cfg.GenProvider)
	}
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	switch cfg.GenProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when GEN_PROVIDER=openai")
		}
		embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel), cfg.EmbeddingMaxTokens)
		if err != nil {
			return nil, err
		}
		log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
		return embedder, nil
	default:
		return nil, fmt.Errorf("invalid GEN_PROVIDER: %s (valid option: openai)", cfg.GenProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		log.Info("no REDIS_ADDR configured; evaluation cache disabled")
		return cache.NewNoOpCache(), nil
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}
	log.Info("using Redis evaluation cache", "addr", cfg.RedisAddr)
	return c, nil
}

func buildEvents(cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		log.Info("no NATS_URL configured; event publishing disabled")
		return events.NewNoOpPublisher(), nil
	}
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("using NATS event publisher", "url", cfg.NATSURL)
	return events.NewNATS(nc), nil
}
