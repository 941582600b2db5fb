package embedding

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"inventory/internal/domain"
)

const (
	defaultOpenAIModel = "text-embedding-3-small"
	defaultOllamaModel = "nomic-embed-text"
	defaultOllamaURL   = "http://localhost:11434/v1"
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
	timeout   time.Duration
}

func NewOpenAIEmbedder(apiKeyEnv, model, baseURL string, timeout time.Duration) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return newOpenAICompatible(apiKey, model, baseURL, timeout), nil
}

func NewOllamaEmbedder(model, baseURL string, timeout time.Duration) *OpenAIEmbedder {
	if model == "" {
		model = defaultOllamaModel
	}
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return newOpenAICompatible("ollama", model, baseURL, timeout)
}

func newOpenAICompatible(apiKey, model, baseURL string, timeout time.Duration) *OpenAIEmbedder {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIEmbedder{
		client:    openai.NewClient(opts...),
		model:     model,
		dimension: dimensionForModel(model),
		timeout:   timeout,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", domain.ErrProviderUnavailable)
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

func dimensionForModel(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	case "nomic-embed-text":
		return 768
	case "mxbai-embed-large":
		return 1024
	case "all-minilm":
		return 384
	default:
		return 1536
	}
}
