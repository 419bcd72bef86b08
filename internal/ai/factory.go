// factory.go - Model provider factory for creating provider instances

package ai

import (
	"context"
	"fmt"

	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
)

// CreateProvider creates a model provider based on configuration
func CreateProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		logger.WithField("model", cfg.GeminiModel).Info("Creating Gemini provider")
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)

	case "openai", "mistral":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%s provider requires an API key", cfg.Provider)
		}
		logger.WithField("model", cfg.OpenAIModel).Info("Creating OpenAI-compatible provider")
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil

	default:
		return nil, fmt.Errorf("unsupported model provider: %s (supported: gemini, openai)", cfg.Provider)
	}
}
