package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"LunaroNews/internal/domain"
	"LunaroNews/internal/ports"
	"LunaroNews/internal/textutil"
)

// PublisherDeps wires the content store and its helpers.
type PublisherDeps struct {
	Store  ports.ContentStore
	Images ports.ImageFetcher
	Locker ports.Locker
	Status domain.PostStatus
	Logger *slog.Logger
}

// Publisher persists processed articles as content store drafts.
type Publisher struct {
	store  ports.ContentStore
	images ports.ImageFetcher
	locker ports.Locker
	status domain.PostStatus
	logger *slog.Logger
}

// NewPublisher constructs the publishing component.
func NewPublisher(deps PublisherDeps) *Publisher {
	status := deps.Status
	if status == "" {
		status = domain.StatusDraft
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		store:  deps.Store,
		images: deps.Images,
		locker: deps.Locker,
		status: status,
		logger: logger,
	}
}

// Publish stores the article and returns it bound to the new post id.
// A media upload is not rolled back when post creation fails.
func (p *Publisher) Publish(ctx context.Context, article domain.ProcessedArticle) (domain.ProcessedArticle, error) {
	if p.store == nil {
		return domain.ProcessedArticle{}, errors.New("publisher has no content store")
	}

	categoryID, err := p.GetOrCreateCategory(ctx, article.Category)
	if err != nil {
		return domain.ProcessedArticle{}, err
	}

	mediaID := p.featuredImage(ctx, article)

	post, err := p.store.CreatePost(ctx, buildDraft(article, p.status, categoryID, mediaID))
	if err != nil {
		if mediaID > 0 {
			p.logger.Warn("post creation failed after media upload, media left orphaned",
				"media_id", mediaID, "slug", article.Slug)
		}
		return domain.ProcessedArticle{}, err
	}

	p.logger.Info("post created", "post_id", post.ID, "slug", article.Slug, "status", post.Status)
	return article.WithWordPressID(post.ID), nil
}

// GetOrCreateCategory resolves a category label to its id, creating it
// when absent. Calls for the same label are serialized by the locker.
func (p *Publisher) GetOrCreateCategory(ctx context.Context, label string) (int, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, errors.New("category label is empty")
	}

	if p.locker != nil {
		unlock, err := p.locker.Lock(ctx, label)
		if err != nil {
			return 0, fmt.Errorf("lock category %q: %w", label, err)
		}
		defer unlock()
	}

	categories, err := p.store.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve category %q: %w", label, err)
	}
	for _, c := range categories {
		if c.Name == label {
			return c.ID, nil
		}
	}

	created, err := p.store.CreateCategory(ctx, label, strings.ToLower(label))
	if err != nil {
		return 0, fmt.Errorf("resolve category %q: %w", label, err)
	}
	p.logger.Info("category created", "category_id", created.ID, "name", label)
	return created.ID, nil
}

func (p *Publisher) featuredImage(ctx context.Context, article domain.ProcessedArticle) int {
	imageURL := strings.TrimSpace(article.Raw.ImageURL)
	if p.images == nil || !textutil.IsHTTPURL(imageURL) {
		return 0
	}

	img, err := p.images.Fetch(ctx, imageURL)
	if err != nil {
		p.logger.Warn("featured image download failed, continuing without it", "url", imageURL, "error", err)
		return 0
	}
	uploaded, err := p.store.UploadMedia(ctx, img.Filename, img.ContentType, img.Data)
	if err != nil {
		p.logger.Warn("featured image upload failed, continuing without it", "url", imageURL, "error", err)
		return 0
	}
	return uploaded.ID
}

func buildDraft(article domain.ProcessedArticle, status domain.PostStatus, categoryID, mediaID int) domain.PostDraft {
	var publishedAt string
	if !article.Raw.PublishedAt.IsZero() {
		publishedAt = article.Raw.PublishedAt.UTC().Format(time.RFC3339)
	}

	return domain.PostDraft{
		Title:         article.TranslatedTitle,
		Content:       article.ContentHTML,
		Excerpt:       article.TranslatedDescription,
		Slug:          article.Slug,
		Status:        status,
		Categories:    []int{categoryID},
		FeaturedMedia: mediaID,
		Meta: domain.PostMeta{
			ReadingTime:           article.ReadingTime,
			OriginalTitle:         article.Raw.Title,
			OriginalContent:       article.Raw.Content,
			OriginalDescription:   article.Raw.Description,
			TranslatedTitle:       article.TranslatedTitle,
			TranslatedContent:     article.TranslatedContent,
			TranslatedDescription: article.TranslatedDescription,
			Summary:               article.Summary,
			SourceName:            article.Raw.SourceName,
			SourceURL:             article.Raw.URL,
			SEOTitle:              article.SEO.Title,
			SEODescription:        article.SEO.Description,
			SEOKeywords:           article.SEO.Keywords,
			Tags:                  article.Tags,
			AuthorName:            article.Author.Name,
			AuthorBio:             article.Author.Bio,
			PublishedAt:           publishedAt,
		},
	}
}
