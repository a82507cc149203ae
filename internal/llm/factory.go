package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/tempo/internal/config"
)

const ollamaPlaceholderKey = "ollama"

// NewClient builds the narration client and the goal embedder for the configured provider.
// An empty provider, or a hosted provider without an API key, disables both. Claude has no
// embeddings, so its embedder is nil.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (LLMClient, EmbedderClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case "":
		return nil, nil, nil
	case "openai", "gemini", "google", "claude", "anthropic":
		if cfg.APIKey == "" {
			logger.Warn("llm provider has no api key; narration and goal alignment disabled", zap.String("provider", provider))
			return nil, nil, nil
		}
	}

	switch provider {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		return c, c, nil

	case "gemini", "google":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	case "claude", "anthropic":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil, nil

	case "ollama":
		baseURL := OllamaBaseURL(cfg.BaseURL)
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = ollamaPlaceholderKey
		}
		logger.Info("using ollama through its OpenAI-compatible API", zap.String("base_url", baseURL))
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// OllamaBaseURL points at the /v1 API, defaulting to a local daemon.
func OllamaBaseURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}
	return baseURL
}
