package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LunaroNews/internal/config"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "123:abc", ChatID: "-100", BaseURL: server.URL}, server.Client())
	require.NoError(t, n.PublishDigest(context.Background(), "Публикувани: 3"))

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "-100", gotChat)
	assert.Equal(t, "Публикувани: 3", gotText)
}

func TestPublishDigestTruncatesLongMessages(t *testing.T) {
	t.Parallel()

	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotText = r.PostForm.Get("text")
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "t", ChatID: "c", BaseURL: server.URL}, server.Client())
	require.NoError(t, n.PublishDigest(context.Background(), strings.Repeat("дума ", 2000)))
	assert.LessOrEqual(t, utf8.RuneCountInString(gotText), maxMessageRunes)
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "t", ChatID: "c", BaseURL: server.URL}, server.Client())
	err := n.PublishDigest(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")

	assert.Error(t, NewNotifier(config.TelegramConfig{}, nil).PublishDigest(context.Background(), "x"))
}
