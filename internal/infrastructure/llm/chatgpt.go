package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"LunaroNews/internal/config"
	"LunaroNews/internal/ports"
)

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("chatgpt returned an empty completion")

// ChatGPTClient implements ports.Enricher backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	client       *openai.Client
	model        string
	systemPrompt string
	temperature  float32
	maxTokens    int
	logger       *slog.Logger
}

var _ ports.Enricher = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.OpenAIConfig, logger *slog.Logger) *ChatGPTClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	if logger == nil {
		logger = slog.Default()
	}

	return &ChatGPTClient{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		logger:       logger,
	}
}

// Generate sends a single prompt and returns the trimmed completion text.
func (c *ChatGPTClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}
	if c.model == "" {
		return "", fmt.Errorf("chatgpt client misconfigured")
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: safePrompt(c.systemPrompt)},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	choice := resp.Choices[0]
	c.logger.Debug("completion received",
		"model", resp.Model,
		"finish_reason", string(choice.FinishReason),
		"total_tokens", resp.Usage.TotalTokens,
		"elapsed", time.Since(start),
	)

	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a helpful editorial assistant."
	}
	return prompt
}
