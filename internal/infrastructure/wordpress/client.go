package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"LunaroNews/internal/config"
	"LunaroNews/internal/domain"
	"LunaroNews/internal/ports"
)

const (
	apiPrefix       = "/wp-json/wp/v2"
	categoryPerPage = 100
	totalPagesHdr   = "X-WP-TotalPages"
)

// ErrNotFound is returned when a lookup matches no post.
var ErrNotFound = errors.New("wordpress: not found")

// APIError is a non-2xx answer from the REST API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("wordpress: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("wordpress: unexpected status %d", e.Status)
}

// Client talks to the WordPress REST API with HTTP Basic credentials.
type Client struct {
	endpoint string
	username string
	password string
	http     *http.Client
	logger   *slog.Logger
}

var _ ports.ContentStore = (*Client)(nil)

// NewClient creates a reusable HTTP client. httpClient may be nil.
func NewClient(cfg config.WordPressConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasSuffix(endpoint, apiPrefix) {
		endpoint += apiPrefix
	}
	return &Client{
		endpoint: endpoint,
		username: cfg.Username,
		password: cfg.Password,
		http:     httpClient,
		logger:   logger,
	}
}

// CreatePost stores a new post.
func (c *Client) CreatePost(ctx context.Context, draft domain.PostDraft) (domain.Post, error) {
	var resp postResponse
	if _, err := c.sendJSON(ctx, http.MethodPost, "/posts", toPostRequest(draft), &resp); err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return resp.toDomain(), nil
}

// UpdatePost replaces the fields of an existing post.
func (c *Client) UpdatePost(ctx context.Context, id int, draft domain.PostDraft) (domain.Post, error) {
	var resp postResponse
	path := "/posts/" + strconv.Itoa(id)
	if _, err := c.sendJSON(ctx, http.MethodPost, path, toPostRequest(draft), &resp); err != nil {
		return domain.Post{}, fmt.Errorf("update post %d: %w", id, err)
	}
	return resp.toDomain(), nil
}

// DeletePost trashes a post, or removes it permanently when force is set.
func (c *Client) DeletePost(ctx context.Context, id int, force bool) error {
	q := url.Values{}
	if force {
		q.Set("force", "true")
	}
	path := "/posts/" + strconv.Itoa(id)
	if _, err := c.do(ctx, http.MethodDelete, path, q, nil, "", nil); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}

// GetPostBySlug returns the post with the given slug in any status.
func (c *Client) GetPostBySlug(ctx context.Context, slug string) (domain.Post, error) {
	q := url.Values{}
	q.Set("slug", slug)
	q.Set("status", "publish,draft,pending,future,private")
	q.Set("_embed", "1")

	var posts []postResponse
	if _, err := c.do(ctx, http.MethodGet, "/posts", q, nil, "", &posts); err != nil {
		return domain.Post{}, fmt.Errorf("get post %q: %w", slug, err)
	}
	if len(posts) == 0 {
		return domain.Post{}, fmt.Errorf("get post %q: %w", slug, ErrNotFound)
	}
	return posts[0].toDomain(), nil
}

// ListCategories walks every page of the category collection.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for page, total := 1, 1; page <= total; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(categoryPerPage))
		q.Set("page", strconv.Itoa(page))

		var batch []categoryResponse
		header, err := c.do(ctx, http.MethodGet, "/categories", q, nil, "", &batch)
		if err != nil {
			return nil, fmt.Errorf("list categories page %d: %w", page, err)
		}
		for _, cat := range batch {
			out = append(out, cat.toDomain())
		}
		if n, err := strconv.Atoi(header.Get(totalPagesHdr)); err == nil {
			total = n
		}
	}
	return out, nil
}

// CreateCategory adds a taxonomy term.
func (c *Client) CreateCategory(ctx context.Context, name, slug string) (domain.Category, error) {
	var resp categoryResponse
	if _, err := c.sendJSON(ctx, http.MethodPost, "/categories", categoryRequest{Name: name, Slug: slug}, &resp); err != nil {
		return domain.Category{}, fmt.Errorf("create category %q: %w", name, err)
	}
	return resp.toDomain(), nil
}

// UploadMedia stores a binary attachment as a multipart "file" part.
func (c *Client) UploadMedia(ctx context.Context, filename, contentType string, data []byte) (domain.Media, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part := textproto.MIMEHeader{}
	part.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	part.Set("Content-Type", contentType)
	w, err := form.CreatePart(part)
	if err != nil {
		return domain.Media{}, fmt.Errorf("create form part: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return domain.Media{}, fmt.Errorf("write form part: %w", err)
	}
	if err := form.Close(); err != nil {
		return domain.Media{}, fmt.Errorf("close form: %w", err)
	}

	var resp mediaResponse
	if _, err := c.do(ctx, http.MethodPost, "/media", nil, &body, form.FormDataContentType(), &resp); err != nil {
		return domain.Media{}, fmt.Errorf("upload media %q: %w", filename, err)
	}
	return domain.Media{ID: resp.ID, SourceURL: resp.SourceURL}, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, v any) (http.Header, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(body), "application/json", v)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, v any) (http.Header, error) {
	target := c.endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, decodeError(resp)
	}

	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.Header, fmt.Errorf("decode response: %w", err)
	}
	return resp.Header, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var body errorResponse
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}
