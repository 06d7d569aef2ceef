package ports

import (
	"context"
	"time"

	"LunaroNews/internal/domain"
)

// NewsQuery describes a keyword search against the news source.
type NewsQuery struct {
	Q        string
	Language string
	PageSize int
	SortBy   string
}

// NewsSource pulls raw articles from the upstream news search API.
type NewsSource interface {
	Search(ctx context.Context, q NewsQuery) ([]domain.RawArticle, error)
}

// Enricher is the LLM text-generation service: one prompt in, text out.
type Enricher interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ContentStore persists posts, categories and media in the headless CMS.
type ContentStore interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name, slug string) (domain.Category, error)
	UploadMedia(ctx context.Context, filename, contentType string, data []byte) (domain.Media, error)
	CreatePost(ctx context.Context, draft domain.PostDraft) (domain.Post, error)
	UpdatePost(ctx context.Context, id int, draft domain.PostDraft) (domain.Post, error)
	DeletePost(ctx context.Context, id int, force bool) error
	GetPostBySlug(ctx context.Context, slug string) (domain.Post, error)
}

// ImageFetcher downloads featured images referenced by source articles.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (Image, error)
}

// Image is a downloaded binary with its detected metadata.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Locker serializes work keyed by a string (category resolution).
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// PublicationLedger keeps an audit trail of pipeline outcomes.
// It is never consulted to skip articles.
type PublicationLedger interface {
	RecordRun(ctx context.Context, report domain.RunReport) error
}

// Notifier delivers a human-readable run digest (Telegram, etc.).
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// EventSink emits machine-readable events for published articles.
type EventSink interface {
	ArticlePublished(ctx context.Context, article domain.ProcessedArticle) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
