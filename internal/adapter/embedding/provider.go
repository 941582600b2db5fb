package embedding

import (
	"fmt"

	"inventory/config"
	"inventory/internal/adapter/analyzer"
	"inventory/internal/port"
)

// New builds the embedder named by cfg.Provider.
func New(cfg config.EmbeddingConfig) (port.Embedder, error) {
	var (
		e   port.Embedder
		err error
	)
	switch cfg.Provider {
	case "hash", "":
		e, err = NewHashEmbedder(cfg.Dimension, analyzer.NewTokenizer(true))
	case "openai":
		e, err = NewOpenAIEmbedder(cfg.APIKeyEnv, cfg.Model, cfg.BaseURL, cfg.Timeout)
	case "ollama":
		e = NewOllamaEmbedder(cfg.Model, cfg.BaseURL, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	if cfg.RateLimit > 0 {
		e = NewRateLimited(e, cfg.RateLimit, cfg.Burst)
	}
	return e, nil
}
