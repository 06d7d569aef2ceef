package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LunaroNews/internal/config"
)

func newTestServer(t *testing.T, content string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func testConfig(baseURL string) config.OpenAIConfig {
	return config.OpenAIConfig{
		BaseURL:     baseURL + "/v1",
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		Timeout:     time.Second,
	}
}

func TestGenerateSendsPromptAndTrims(t *testing.T) {
	t.Parallel()

	var body map[string]any
	server := newTestServer(t, "  Здравей, свят  \n", &body)
	defer server.Close()

	client := NewChatGPTClient(testConfig(server.URL), nil)
	got, err := client.Generate(context.Background(), "Преведи: Hello, world")
	require.NoError(t, err)
	assert.Equal(t, "Здравей, свят", got)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	user := messages[1].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.NotEmpty(t, system["content"])
	assert.Equal(t, "Преведи: Hello, world", user["content"])
}

func TestGenerateRejectsEmptyCompletion(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, "   ", nil)
	defer server.Close()

	_, err := NewChatGPTClient(testConfig(server.URL), nil).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGenerateWrapsAPIErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	_, err := NewChatGPTClient(testConfig(server.URL), nil).Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}

func TestSafePrompt(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, safePrompt("   "))
	assert.Equal(t, "custom", safePrompt(" custom "))
}
