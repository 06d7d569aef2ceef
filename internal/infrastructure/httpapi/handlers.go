package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"LunaroNews/internal/apperr"
	"LunaroNews/internal/domain"
)

type runRequest struct {
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

type postSummary struct {
	WordPressID int    `json:"wordpressId"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
}

type runResponse struct {
	Category  string        `json:"category"`
	Fetched   int           `json:"fetched"`
	Published int           `json:"published"`
	Failed    int           `json:"failed"`
	Posts     []postSummary `json:"posts"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) runPipeline(c echo.Context) error {
	var req runRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("body", "expected JSON object with category and limit")
	}
	if req.Category == "" {
		return apperr.Validation("category", "is required")
	}
	if req.Limit == 0 {
		req.Limit = s.defaultLimit
	}

	report, err := s.runner.Run(c.Request().Context(), req.Category, req.Limit)
	if err != nil {
		return fmt.Errorf("pipeline run %s: %w", req.Category, err)
	}
	return c.JSON(http.StatusOK, toRunResponse(report))
}

func toRunResponse(report domain.RunReport) runResponse {
	posts := make([]postSummary, 0, len(report.Published))
	for _, a := range report.Published {
		posts = append(posts, postSummary{WordPressID: a.WordPressID, Slug: a.Slug, Title: a.TranslatedTitle})
	}
	return runResponse{
		Category:  report.Category,
		Fetched:   report.Fetched,
		Published: report.PublishedCount(),
		Failed:    report.FailedCount(),
		Posts:     posts,
	}
}

func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Error(), "title": "validation error"})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, map[string]string{"error": fmt.Sprintf("%v", he.Message)})
			return
		}

		logger.Error("unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "pipeline run failed"})
	}
}
