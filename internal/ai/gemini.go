// gemini.go - Gemini provider backed by the generative-ai-go SDK

package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const geminiMaxOutputTokens = 8192

// GeminiProvider implements Provider for Google Gemini. The client is created once and
// shared by all requests.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider creates a Gemini provider. Extra client options are appended after the
// API key and HTTP client (tests use them to point at a local endpoint).
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiProvider, error) {
	// An explicit HTTP client replaces the SDK transport, so the key is attached here
	httpClient := &http.Client{
		Transport: &singleAttemptTransport{
			base: &transport.APIKey{Key: apiKey, Transport: http.DefaultTransport},
		},
	}
	clientOpts := append([]option.ClientOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	}, opts...)
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}, nil
}

// GetProviderName returns the provider name
func (g *GeminiProvider) GetProviderName() string {
	return "gemini"
}

// Generate sends the prompt and images to Gemini in a single call
func (g *GeminiProvider) Generate(ctx context.Context, prompt string, images ...ImagePayload) (*Completion, error) {
	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(prompt))
	for i, img := range images {
		data, err := img.Bytes()
		if err != nil {
			return nil, &AnalysisError{
				Kind:    ErrorUnknown,
				Message: fmt.Sprintf("image %d is not valid base64", i+1),
				Cause:   err,
			}
		}
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: data})
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetMaxOutputTokens(geminiMaxOutputTokens)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	if len(resp.Candidates) == 0 {
		return nil, &AnalysisError{Kind: ErrorUnknown, Message: "empty completion"}
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	completion := &Completion{
		Text:      sb.String(),
		ModelName: g.modelName,
		Truncated: candidate.FinishReason == genai.FinishReasonMaxTokens,
	}
	if resp.UsageMetadata != nil {
		completion.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		completion.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	if completion.Truncated {
		logger.WithFields(logrus.Fields{
			"provider": "gemini",
			"model":    g.modelName,
		}).Warn("Completion truncated at output token limit")
	}

	return completion, nil
}

// Close releases the underlying client
func (g *GeminiProvider) Close() error {
	return g.client.Close()
}

// ListGenerateContentModels returns the names of models that support generateContent
func (g *GeminiProvider) ListGenerateContentModels(ctx context.Context) ([]string, error) {
	var names []string
	it := g.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classifyGeminiError(err)
		}
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				names = append(names, m.Name)
				break
			}
		}
	}
	return names, nil
}

// upstreamStatusError reports a remote status that ended the call on its first attempt.
// It must not wrap *googleapi.Error: the SDK retryer matches on that type.
type upstreamStatusError struct {
	StatusCode int
	Message    string
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// singleAttemptTransport turns a 503 into a transport error. The generativelanguage REST
// client retries 503 with backoff until the deadline; a transport error is never retried.
type singleAttemptTransport struct {
	base http.RoundTripper
}

func (t *singleAttemptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusServiceUnavailable {
		return resp, err
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	message := http.StatusText(resp.StatusCode)
	var apiErr *googleapi.Error
	if errors.As(googleapi.CheckResponse(resp), &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	return nil, &upstreamStatusError{StatusCode: resp.StatusCode, Message: message}
}
