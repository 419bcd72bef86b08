// openai.go - OpenAI-compatible chat completions provider (OpenAI, Mistral, local gateways)

package ai

import (
	"context"

	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIProvider implements Provider over any OpenAI-compatible chat completions endpoint
type OpenAIProvider struct {
	client    *openai.Client
	modelName string
}

// NewOpenAIProvider creates a provider. An empty baseURL targets api.openai.com.
func NewOpenAIProvider(apiKey, baseURL, modelName string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(cfg),
		modelName: modelName,
	}
}

// GetProviderName returns the provider name
func (o *OpenAIProvider) GetProviderName() string {
	return "openai"
}

// Generate sends one user message holding the prompt followed by the images as data URLs
func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, images ...ImagePayload) (*Completion, error) {
	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(images) == 0 {
		message.Content = prompt
	} else {
		parts := make([]openai.ChatMessagePart, 0, len(images)+1)
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: prompt,
		})
		for _, img := range images {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    img.DataURL(),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
		message.MultiContent = parts
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.modelName,
		Messages: []openai.ChatCompletionMessage{message},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &AnalysisError{Kind: ErrorUnknown, Message: "empty completion"}
	}

	choice := resp.Choices[0]
	completion := &Completion{
		Text:             choice.Message.Content,
		ModelName:        resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Truncated:        choice.FinishReason == openai.FinishReasonLength,
	}
	if completion.ModelName == "" {
		completion.ModelName = o.modelName
	}

	if completion.Truncated {
		logger.WithFields(logrus.Fields{
			"provider": "openai",
			"model":    completion.ModelName,
		}).Warn("Completion truncated at output token limit")
	}

	return completion, nil
}

// Close is a no-op; the HTTP client holds no long-lived resources
func (o *OpenAIProvider) Close() error {
	return nil
}
