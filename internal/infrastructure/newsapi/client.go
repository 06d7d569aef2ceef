package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"LunaroNews/internal/config"
	"LunaroNews/internal/domain"
	"LunaroNews/internal/ports"
)

const everythingPath = "/v2/everything"

// ErrMissingAPIKey is returned before any request when no key is configured.
var ErrMissingAPIKey = errors.New("newsapi: api key is missing")

// APIError is a non-2xx answer from NewsAPI.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("newsapi: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("newsapi: unexpected status %d", e.StatusCode)
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Client queries the NewsAPI "everything" endpoint.
type Client struct {
	baseURL        string
	apiKey         string
	language       string
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	http           *http.Client
	logger         *slog.Logger
}

var _ ports.NewsSource = (*Client)(nil)

// NewClient builds a client from configuration; httpClient may be nil.
func NewClient(cfg config.NewsAPIConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		language:       cfg.Language,
		maxRetries:     retries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		http:           httpClient,
		logger:         logger,
	}
}

// Search runs a keyword query and maps results to raw articles.
func (c *Client) Search(ctx context.Context, q ports.NewsQuery) ([]domain.RawArticle, error) {
	resp, err := c.Everything(ctx, q)
	if err != nil {
		return nil, err
	}

	articles := make([]domain.RawArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, a.toDomain())
	}
	return articles, nil
}

// Everything calls GET /v2/everything, retrying rate limits and server errors.
func (c *Client) Everything(ctx context.Context, q ports.NewsQuery) (*Response, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint, err := c.buildURL(q)
	if err != nil {
		return nil, err
	}

	backoff := c.initialBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		c.logger.Debug("fetch everything", "attempt", attempt, "q", q.Q, "page_size", q.PageSize)

		resp, err := c.do(ctx, endpoint)
		if err == nil {
			c.logger.Info("fetched articles", "total_results", resp.TotalResults, "returned", len(resp.Articles))
			return resp, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == c.maxRetries {
			break
		}

		c.logger.Warn("newsapi request failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if c.maxBackoff > 0 && backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}

	return nil, fmt.Errorf("newsapi: failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) buildURL(q ports.NewsQuery) (string, error) {
	parsed, err := url.Parse(c.baseURL + everythingPath)
	if err != nil {
		return "", fmt.Errorf("invalid newsapi base url %s: %w", c.baseURL, err)
	}

	language := q.Language
	if language == "" {
		language = c.language
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "publishedAt"
	}

	query := parsed.Query()
	query.Set("q", q.Q)
	if language != "" {
		query.Set("language", language)
	}
	if q.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	query.Set("sortBy", sortBy)
	query.Set("apiKey", c.apiKey)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) do(ctx context.Context, endpoint string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "LunaroNews/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request everything: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var payload Response
	if resp.StatusCode != http.StatusOK {
		_ = json.Unmarshal(body, &payload)
		return nil, &APIError{StatusCode: resp.StatusCode, Code: payload.Code, Message: payload.Message}
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Status != "" && payload.Status != "ok" {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: payload.Code, Message: payload.Message}
	}
	return &payload, nil
}
