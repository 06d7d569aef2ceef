package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LunaroNews/internal/config"
)

func TestFetchUsesHeaderContentType(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png; charset=binary")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	img, err := NewFetcher(config.PipelineConfig{}, server.Client()).Fetch(context.Background(), server.URL+"/cover")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "cover.png", img.Filename)
	assert.Equal(t, []byte("png-bytes"), img.Data)
}

func TestFetchFallsBackToExtension(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("gif"))
	}))
	defer server.Close()

	img, err := NewFetcher(config.PipelineConfig{}, server.Client()).Fetch(context.Background(), server.URL+"/img/anim.GIF")
	require.NoError(t, err)
	assert.Equal(t, "image/gif", img.ContentType)
	assert.Equal(t, "anim.GIF", img.Filename)
}

func TestFetchRejectsOversizedAndRelative(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	fetcher := NewFetcher(config.PipelineConfig{MaxImageBytes: 16}, server.Client())
	_, err := fetcher.Fetch(context.Background(), server.URL+"/big.jpg")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = fetcher.Fetch(context.Background(), "/relative.jpg")
	assert.ErrorIs(t, err, ErrNotAbsolute)
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewFetcher(config.PipelineConfig{}, server.Client()).Fetch(context.Background(), server.URL+"/missing.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
