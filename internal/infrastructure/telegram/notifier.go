package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"LunaroNews/internal/config"
	"LunaroNews/internal/ports"
	"LunaroNews/internal/textutil"
)

// Telegram rejects messages longer than this many characters.
const maxMessageRunes = 4096

// Notifier sends run digests to a Telegram chat via bot API.
type Notifier struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(cfg config.TelegramConfig, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Notifier{
		baseURL:  baseURL,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   client,
	}
}

// PublishDigest posts a plain-text message to Telegram.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", textutil.Truncate(digest, maxMessageRunes))
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Description != "" {
			return fmt.Errorf("telegram error: %s: %s", resp.Status, body.Description)
		}
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
