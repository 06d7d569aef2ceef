package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/russross/blackfriday/v2"

	"LunaroNews/internal/apperr"
	"LunaroNews/internal/category"
	"LunaroNews/internal/domain"
	"LunaroNews/internal/infrastructure/parser"
	"LunaroNews/internal/ports"
	"LunaroNews/internal/textutil"
)

const (
	minTags           = 4
	maxTags           = 7
	seoTitleLimit     = 60
	seoDescLimit      = 160
	slugFallbackIDLen = 8
)

// Transformer localizes and enriches raw news items.
type Transformer struct {
	enricher   ports.Enricher
	categories *category.Registry
	logger     *slog.Logger
	newID      func() string
}

// NewTransformer wires the enrichment service with category profiles.
func NewTransformer(enricher ports.Enricher, categories *category.Registry, logger *slog.Logger) *Transformer {
	if categories == nil {
		categories = category.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		enricher:   enricher,
		categories: categories,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Transform turns one raw article into a processed article for the given
// category discriminator. Enrichment failures abort the article except in
// the tag step, which falls back to the category defaults.
func (t *Transformer) Transform(ctx context.Context, raw domain.RawArticle, categoryKey string) (domain.ProcessedArticle, error) {
	profile, err := t.categories.Resolve(categoryKey)
	if err != nil {
		return domain.ProcessedArticle{}, apperr.Validation("category", "%q is not one of %v", categoryKey, t.categories.Keys())
	}
	if strings.TrimSpace(raw.Title) == "" {
		return domain.ProcessedArticle{}, apperr.Validation("title", "source article has no title")
	}
	if t.enricher == nil {
		return domain.ProcessedArticle{}, errors.New("transformer has no enricher")
	}

	out := domain.ProcessedArticle{
		Raw:      raw,
		ID:       t.newID(),
		Category: profile.Label,
	}

	if out.TranslatedTitle, err = t.translate(ctx, raw.Title); err != nil {
		return domain.ProcessedArticle{}, fmt.Errorf("translate title: %w", err)
	}
	if strings.TrimSpace(raw.Description) != "" {
		if out.TranslatedDescription, err = t.translate(ctx, raw.Description); err != nil {
			return domain.ProcessedArticle{}, fmt.Errorf("translate description: %w", err)
		}
	}

	snippet := parser.CleanSnippet(raw.Content)
	body, err := t.enricher.Generate(ctx, buildExpandPrompt(profile.ExpandPrompt, out.TranslatedTitle, out.TranslatedDescription, snippet))
	if err != nil {
		return domain.ProcessedArticle{}, fmt.Errorf("expand body: %w", err)
	}
	out.TranslatedContent = strings.TrimSpace(body)
	out.ContentHTML = renderMarkdown(out.TranslatedContent)

	summary, err := t.enricher.Generate(ctx, buildSummaryPrompt(out.TranslatedContent))
	if err != nil {
		return domain.ProcessedArticle{}, fmt.Errorf("summarize: %w", err)
	}
	out.Summary = strings.TrimSpace(summary)

	seoRaw, err := t.enricher.Generate(ctx, buildSEOPrompt(out.TranslatedTitle, out.TranslatedContent))
	if err != nil {
		return domain.ProcessedArticle{}, fmt.Errorf("generate seo: %w", err)
	}
	seo := resolveSEO(seoRaw, out, profile)
	if seo.IsFallback() {
		t.logger.Warn("seo metadata fallback", "url", raw.URL, "reason", seo.Err)
	}
	out.SEO = seo.Value

	tags := t.tags(ctx, out, profile)
	if tags.IsFallback() {
		t.logger.Warn("tags fallback", "url", raw.URL, "reason", tags.Err)
	}
	out.Tags = tags.Value

	out.Slug = t.slug(out)
	out.ReadingTime = textutil.ReadingTime(out.TranslatedContent)
	out.Author = profile.PickAuthor(authorSeed(raw))

	return out, nil
}

func (t *Transformer) translate(ctx context.Context, text string) (string, error) {
	translated, err := t.enricher.Generate(ctx, buildTranslatePrompt(text))
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(translated), `"„“`), nil
}

func (t *Transformer) tags(ctx context.Context, article domain.ProcessedArticle, profile category.Profile) Resolution[[]string] {
	fallback := append([]string(nil), profile.FallbackTags...)

	raw, err := t.enricher.Generate(ctx, buildTagsPrompt(article.TranslatedTitle, article.TranslatedContent))
	if err != nil {
		return Fallback(fallback, fmt.Errorf("generate tags: %w", err))
	}
	return resolveJSON(raw, checkTags, fallback)
}

func checkTags(tags []string) ([]string, error) {
	tags = textutil.Dedupe(tags)
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	if len(tags) < minTags {
		return nil, fmt.Errorf("got %d usable tags, need at least %d", len(tags), minTags)
	}
	return tags, nil
}

type seoPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

func resolveSEO(raw string, article domain.ProcessedArticle, profile category.Profile) Resolution[domain.SEO] {
	description := article.TranslatedDescription
	if description == "" {
		description = article.Summary
	}
	fallback := domain.SEO{
		Title:       textutil.Truncate(article.TranslatedTitle, seoTitleLimit),
		Description: textutil.Truncate(description, seoDescLimit),
		Keywords:    append([]string(nil), profile.FallbackKeywords...),
	}

	parsed := resolveJSON(raw, func(p seoPayload) (seoPayload, error) {
		if strings.TrimSpace(p.Title) == "" {
			return p, errors.New("seo title is empty")
		}
		return p, nil
	}, seoPayload{})
	if parsed.IsFallback() {
		return Fallback(fallback, parsed.Err)
	}

	seo := domain.SEO{
		Title:       textutil.Truncate(parsed.Value.Title, seoTitleLimit),
		Description: textutil.Truncate(parsed.Value.Description, seoDescLimit),
		Keywords:    textutil.Dedupe(parsed.Value.Keywords),
	}
	if seo.Description == "" {
		seo.Description = fallback.Description
	}
	if len(seo.Keywords) == 0 {
		seo.Keywords = fallback.Keywords
	}
	return Parsed(seo)
}

func (t *Transformer) slug(article domain.ProcessedArticle) string {
	if s := textutil.Slug(article.TranslatedTitle); s != "" {
		return s
	}
	if s := textutil.Slug(article.Raw.Title); s != "" {
		return s
	}
	id := strings.ReplaceAll(article.ID, "-", "")
	if len(id) > slugFallbackIDLen {
		id = id[:slugFallbackIDLen]
	}
	return "article-" + strings.ToLower(id)
}

func authorSeed(raw domain.RawArticle) string {
	if raw.URL != "" {
		return raw.URL
	}
	return raw.Title
}

func renderMarkdown(md string) string {
	return string(blackfriday.Run([]byte(md)))
}
