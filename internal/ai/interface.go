// interface.go - Model provider interface for supporting multiple AI providers

package ai

import "context"

// Provider sends one prompt plus zero or more images to a hosted model and returns its text.
// Implementations make exactly one remote call per Generate and never retry.
type Provider interface {
	// Generate sends the prompt first and then the images in the given order.
	// Failures are *AnalysisError with a gateway kind.
	Generate(ctx context.Context, prompt string, images ...ImagePayload) (*Completion, error)

	// GetProviderName returns the name of the provider (e.g., "gemini", "openai")
	GetProviderName() string

	Close() error
}

// Completion is the raw model answer before extraction
type Completion struct {
	Text             string
	ModelName        string
	PromptTokens     int
	CompletionTokens int
	// Truncated is set when the model stopped at its output token limit
	Truncated bool
}

// ProviderConfig contains configuration for model providers
type ProviderConfig struct {
	// Provider name: "gemini" or "openai"
	Provider string

	// Gemini configuration
	GeminiAPIKey string
	GeminiModel  string

	// OpenAI-compatible configuration (OpenAI, Mistral, local gateways)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}
