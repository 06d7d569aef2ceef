package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"LunaroNews/internal/category"
	"LunaroNews/internal/config"
	"LunaroNews/internal/domain"
	"LunaroNews/internal/infrastructure/lock"
	"LunaroNews/internal/infrastructure/media"
	"LunaroNews/internal/infrastructure/newsapi"
	"LunaroNews/internal/infrastructure/wordpress"
	"LunaroNews/internal/infrastructure/wordpress/wordpresstest"
)

type enricherFunc func(ctx context.Context, prompt string) (string, error)

func (f enricherFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// echoEnricher answers every prompt with the prompt itself.
var echoEnricher = enricherFunc(func(_ context.Context, prompt string) (string, error) {
	return prompt, nil
})

type promptKind int

const (
	kindUnknown promptKind = iota
	kindTranslate
	kindExpand
	kindSummary
	kindSEO
	kindTags
)

func classify(prompt string) promptKind {
	switch {
	case strings.HasPrefix(prompt, "Преведи следния текст"):
		return kindTranslate
	case strings.HasPrefix(prompt, "Напиши кратко резюме"):
		return kindSummary
	case strings.HasPrefix(prompt, "Създай SEO метаданни"):
		return kindSEO
	case strings.HasPrefix(prompt, "Предложи между 5 и 7"):
		return kindTags
	case strings.Contains(prompt, "Съдържание:"):
		return kindExpand
	}
	return kindUnknown
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTransformer(enricher enricherFunc) *Transformer {
	return NewTransformer(enricher, category.Default(), discardLogger())
}

func newStore(t *testing.T) (*wordpress.Client, *wordpresstest.Server) {
	t.Helper()
	server := wordpresstest.NewServer()
	t.Cleanup(server.Close)
	client := wordpress.NewClient(config.WordPressConfig{
		BaseURL:  server.URL,
		Username: wordpresstest.Username,
		Password: wordpresstest.Password,
		Timeout:  5 * time.Second,
	}, nil, discardLogger())
	return client, server
}

func newTestPublisher(t *testing.T) (*Publisher, *wordpresstest.Server) {
	t.Helper()
	store, server := newStore(t)
	return NewPublisher(PublisherDeps{
		Store:  store,
		Images: media.NewFetcher(config.PipelineConfig{MaxImageBytes: 1 << 20}, nil),
		Locker: lock.NewMemory(),
		Logger: discardLogger(),
	}), server
}

func sourceArticles(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, map[string]any{
			"source":      map[string]any{"id": nil, "name": "Wire"},
			"author":      "Reporter",
			"title":       fmt.Sprintf("Story %d", i),
			"description": fmt.Sprintf("Description of story %d", i),
			"url":         fmt.Sprintf("https://news.example.com/story-%d", i),
			"urlToImage":  fmt.Sprintf("/images/%d.jpg", i),
			"publishedAt": "2025-03-01T10:00:00Z",
			"content":     fmt.Sprintf("Body of story %d… [+999 chars]", i),
		})
	}
	return out
}

// newNewsServer serves n articles regardless of the requested page size.
func newNewsServer(t *testing.T, n int) (*newsapi.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":       "ok",
			"totalResults": n,
			"articles":     sourceArticles(n),
		})
	}))
	t.Cleanup(server.Close)
	client := newsapi.NewClient(config.NewsAPIConfig{
		BaseURL:    server.URL,
		APIKey:     "key",
		Language:   "en",
		MaxRetries: 1,
	}, server.Client(), discardLogger())
	return client, server
}

type recordingLedger struct {
	mu      sync.Mutex
	reports []domain.RunReport
	err     error
}

func (l *recordingLedger) RecordRun(_ context.Context, report domain.RunReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reports = append(l.reports, report)
	return l.err
}

type recordingNotifier struct {
	digests []string
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return nil
}

type recordingEvents struct {
	ids []int
}

func (e *recordingEvents) ArticlePublished(_ context.Context, article domain.ProcessedArticle) error {
	e.ids = append(e.ids, article.WordPressID)
	return nil
}
