package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Generate(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"verdict\":\"SAFE\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 8, "total_tokens": 128}
		}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", server.URL, "gpt-4o-mini")
	oldStrip := EncodeImage([]byte("old"), "image/jpeg")
	newStrip := EncodeImage([]byte("new"), "image/png")

	completion, err := provider.Generate(context.Background(), "compare", oldStrip, newStrip)
	require.NoError(t, err)
	assert.Equal(t, `{"verdict":"SAFE"}`, completion.Text)
	assert.Equal(t, 120, completion.PromptTokens)
	assert.Equal(t, 8, completion.CompletionTokens)
	assert.False(t, completion.Truncated)

	messages := received["messages"].([]interface{})
	require.Len(t, messages, 1)
	content := messages[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, content, 3)
	assert.Equal(t, "compare", content[0].(map[string]interface{})["text"])
	assert.Equal(t, oldStrip.DataURL(), content[1].(map[string]interface{})["image_url"].(map[string]interface{})["url"])
	assert.Equal(t, newStrip.DataURL(), content[2].(map[string]interface{})["image_url"].(map[string]interface{})["url"])
}

func TestOpenAIProvider_TextOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		msg := body["messages"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "find generics", msg["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{}"},"finish_reason":"length"}]}`))
	}))
	defer server.Close()

	completion, err := NewOpenAIProvider("k", server.URL, "mistral-small").Generate(context.Background(), "find generics")
	require.NoError(t, err)
	assert.True(t, completion.Truncated)
	assert.Equal(t, "mistral-small", completion.ModelName)
}

func TestOpenAIProvider_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorKind
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`, ErrorRateLimited},
		{"overloaded", http.StatusServiceUnavailable, `upstream unavailable`, ErrorServiceUnavailable},
		{"bad key", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`, ErrorUnauthenticated},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"internal","type":"server_error"}}`, ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewOpenAIProvider("k", server.URL, "gpt-4o-mini").Generate(context.Background(), "p")
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
			assert.Equal(t, tt.status, StatusCodeOf(err))
		})
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := NewOpenAIProvider("k", server.URL, "m").Generate(context.Background(), "p")
	assert.Equal(t, ErrorUnknown, KindOf(err))
}

func TestCreateProvider(t *testing.T) {
	p, err := CreateProvider(context.Background(), ProviderConfig{Provider: "openai", OpenAIAPIKey: "k", OpenAIModel: "m"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.GetProviderName())

	_, err = CreateProvider(context.Background(), ProviderConfig{Provider: "gemini"})
	assert.Error(t, err)

	_, err = CreateProvider(context.Background(), ProviderConfig{Provider: "claude"})
	assert.Error(t, err)
}
