package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"LunaroNews/internal/config"
	"LunaroNews/internal/ports"
	"LunaroNews/internal/textutil"
)

// ErrNotAbsolute rejects relative or non-http(s) image references.
var ErrNotAbsolute = errors.New("image url is not an absolute http(s) url")

// ErrTooLarge is returned when an image exceeds the configured limit.
var ErrTooLarge = errors.New("image exceeds size limit")

const fallbackContentType = "image/jpeg"

// Fetcher downloads featured images.
type Fetcher struct {
	http     *http.Client
	maxBytes int64
}

var _ ports.ImageFetcher = (*Fetcher)(nil)

// NewFetcher builds a fetcher from pipeline settings. httpClient may be nil.
func NewFetcher(cfg config.PipelineConfig, httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		timeout := cfg.ImageTimeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Fetcher{http: httpClient, maxBytes: maxBytes}
}

// Fetch downloads the image at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (ports.Image, error) {
	if !textutil.IsHTTPURL(rawURL) {
		return ports.Image{}, fmt.Errorf("%w: %q", ErrNotAbsolute, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(rawURL), nil)
	if err != nil {
		return ports.Image{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.http.Do(req)
	if err != nil {
		return ports.Image{}, fmt.Errorf("download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ports.Image{}, fmt.Errorf("download image: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return ports.Image{}, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return ports.Image{}, fmt.Errorf("%w (%d bytes)", ErrTooLarge, f.maxBytes)
	}
	if len(data) == 0 {
		return ports.Image{}, errors.New("image body is empty")
	}

	contentType := detectContentType(resp.Header.Get("Content-Type"), resp.Request.URL.Path)
	return ports.Image{
		Filename:    filename(resp.Request.URL.Path, contentType),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func detectContentType(header, urlPath string) string {
	if mediaType, _, err := mime.ParseMediaType(header); err == nil && strings.HasPrefix(mediaType, "image/") {
		return mediaType
	}
	if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(urlPath))); strings.HasPrefix(byExt, "image/") {
		mediaType, _, _ := mime.ParseMediaType(byExt)
		return mediaType
	}
	return fallbackContentType
}

func filename(urlPath, contentType string) string {
	name := path.Base(urlPath)
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	if path.Ext(name) == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			name += preferredExt(contentType, exts)
		}
	}
	return name
}

// mime.ExtensionsByType sorts alphabetically, which yields ".jfif" for JPEG.
func preferredExt(contentType string, exts []string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return exts[0]
}
