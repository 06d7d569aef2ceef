package wordpress

import (
	"bytes"
	"encoding/json"
	"html"

	"LunaroNews/internal/domain"
	"LunaroNews/internal/infrastructure/parser"
)

// rendered is the {"raw": ..., "rendered": ...} envelope WordPress uses for
// title, content and excerpt.
type rendered struct {
	Raw      string `json:"raw,omitempty"`
	Rendered string `json:"rendered"`
}

type postRequest struct {
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Excerpt       string          `json:"excerpt,omitempty"`
	Slug          string          `json:"slug,omitempty"`
	Status        string          `json:"status,omitempty"`
	Categories    []int           `json:"categories,omitempty"`
	FeaturedMedia int             `json:"featured_media,omitempty"`
	Meta          domain.PostMeta `json:"meta"`
}

type postResponse struct {
	ID            int             `json:"id"`
	Slug          string          `json:"slug"`
	Status        string          `json:"status"`
	Link          string          `json:"link"`
	Title         rendered        `json:"title"`
	Content       rendered        `json:"content"`
	Excerpt       rendered        `json:"excerpt"`
	Categories    []int           `json:"categories"`
	FeaturedMedia int             `json:"featured_media"`
	Meta          json.RawMessage `json:"meta"`
}

type categoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type categoryResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type mediaResponse struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

// errorResponse is the body WordPress sends with non-2xx statuses.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toPostRequest(draft domain.PostDraft) postRequest {
	return postRequest{
		Title:         draft.Title,
		Content:       draft.Content,
		Excerpt:       draft.Excerpt,
		Slug:          draft.Slug,
		Status:        string(draft.Status),
		Categories:    draft.Categories,
		FeaturedMedia: draft.FeaturedMedia,
		Meta:          draft.Meta,
	}
}

func (p postResponse) toDomain() domain.Post {
	post := domain.Post{
		ID:            p.ID,
		Slug:          p.Slug,
		Status:        domain.PostStatus(p.Status),
		Title:         pick(p.Title),
		Content:       p.Content.Rendered,
		Excerpt:       parser.PlainText(p.Excerpt.Rendered),
		Link:          p.Link,
		Categories:    p.Categories,
		FeaturedMedia: p.FeaturedMedia,
	}
	// Sites without registered meta answer with an empty array.
	if meta := bytes.TrimSpace(p.Meta); len(meta) > 0 && meta[0] == '{' {
		_ = json.Unmarshal(meta, &post.Meta)
	}
	return post
}

func (c categoryResponse) toDomain() domain.Category {
	return domain.Category{ID: c.ID, Name: html.UnescapeString(c.Name), Slug: c.Slug}
}

func pick(r rendered) string {
	if r.Raw != "" {
		return r.Raw
	}
	return parser.PlainText(r.Rendered)
}
