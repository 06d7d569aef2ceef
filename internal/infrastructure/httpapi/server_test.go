package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LunaroNews/internal/apperr"
	"LunaroNews/internal/config"
	"LunaroNews/internal/domain"
)

type runnerFunc func(ctx context.Context, category string, limit int) (domain.RunReport, error)

func (f runnerFunc) Run(ctx context.Context, category string, limit int) (domain.RunReport, error) {
	return f(ctx, category, limit)
}

func newTestServer(token string, runner Runner) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(config.AdminConfig{Addr: ":0", Token: token, CorsOrigins: []string{"*"}}, 5, runner, logger)
}

func do(s *Server, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := do(newTestServer("secret", nil), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRunPipeline(t *testing.T) {
	t.Parallel()

	var gotCategory string
	var gotLimit int
	runner := runnerFunc(func(_ context.Context, category string, limit int) (domain.RunReport, error) {
		gotCategory, gotLimit = category, limit
		return domain.RunReport{
			Category: category,
			Fetched:  3,
			Published: []domain.ProcessedArticle{
				{WordPressID: 11, Slug: "a", TranslatedTitle: "А"},
				{WordPressID: 12, Slug: "b", TranslatedTitle: "Б"},
			},
			Failures: []domain.ItemFailure{{Index: 2, Stage: domain.StagePublish, Err: "boom"}},
		}, nil
	})

	rec := do(newTestServer("secret", runner), http.MethodPost, "/admin/pipeline/run", `{"category":"seo","limit":3}`, "secret")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "seo", gotCategory)
	assert.Equal(t, 3, gotLimit)

	var resp runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Fetched)
	assert.Equal(t, 2, resp.Published)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, []postSummary{{WordPressID: 11, Slug: "a", Title: "А"}, {WordPressID: 12, Slug: "b", Title: "Б"}}, resp.Posts)
}

func TestRunPipelineDefaultsLimit(t *testing.T) {
	t.Parallel()

	var gotLimit int
	runner := runnerFunc(func(_ context.Context, category string, limit int) (domain.RunReport, error) {
		gotLimit = limit
		return domain.RunReport{Category: category}, nil
	})

	rec := do(newTestServer("", runner), http.MethodPost, "/admin/pipeline/run", `{"category":"cybersecurity"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotLimit)
	assert.JSONEq(t, `{"category":"cybersecurity","fetched":0,"published":0,"failed":0,"posts":[]}`, rec.Body.String())
}

func TestRunPipelineAuth(t *testing.T) {
	t.Parallel()

	runner := runnerFunc(func(context.Context, string, int) (domain.RunReport, error) {
		t.Fatal("runner must not be called")
		return domain.RunReport{}, nil
	})
	s := newTestServer("secret", runner)

	rec := do(s, http.MethodPost, "/admin/pipeline/run", `{"category":"seo"}`, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(s, http.MethodPost, "/admin/pipeline/run", `{"category":"seo"}`, "")
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusUnauthorized}, rec.Code)
}

func TestRunPipelineErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{name: "missing category", body: `{}`, status: http.StatusBadRequest, msg: "category"},
		{name: "malformed body", body: `{"category":`, status: http.StatusBadRequest, msg: "body"},
		{name: "validation from runner", body: `{"category":"sports"}`, err: apperr.Validation("category", "unknown"), status: http.StatusBadRequest, msg: "unknown"},
		{name: "fetch failure", body: `{"category":"seo"}`, err: errors.New("newsapi: 401 apiKeyInvalid"), status: http.StatusInternalServerError, msg: "pipeline run failed"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			runner := runnerFunc(func(context.Context, string, int) (domain.RunReport, error) {
				return domain.RunReport{}, tc.err
			})
			rec := do(newTestServer("", runner), http.MethodPost, "/admin/pipeline/run", tc.body, "")
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.msg)
			assert.NotContains(t, rec.Body.String(), "apiKeyInvalid")
		})
	}
}
