package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"LunaroNews/internal/apperr"
	"LunaroNews/internal/category"
	"LunaroNews/internal/domain"
	"LunaroNews/internal/ports"
)

// StageError ties an item failure to the pipeline step that produced it.
type StageError struct {
	Stage domain.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// DefaultItemDelay spaces out consecutive items of one run.
const DefaultItemDelay = 2 * time.Second

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.NewsSource
	Transformer *Transformer
	Publisher   *Publisher
	Categories  *category.Registry
	Ledger      ports.PublicationLedger
	Notifier    ports.Notifier
	Events      ports.EventSink
	Logger      *slog.Logger

	Language string
	// ItemDelay is the pause between items. Zero selects the 2s default,
	// a negative value disables the pause.
	ItemDelay time.Duration
	MaxLimit  int
}

// Pipeline implements the fetch, transform and publish workflow.
type Pipeline struct {
	source      ports.NewsSource
	transformer *Transformer
	publisher   *Publisher
	categories  *category.Registry
	ledger      ports.PublicationLedger
	notifier    ports.Notifier
	events      ports.EventSink
	logger      *slog.Logger

	language  string
	itemDelay time.Duration
	maxLimit  int
	now       func() time.Time
	wait      func(context.Context, time.Duration) error
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	categories := deps.Categories
	if categories == nil {
		categories = category.Default()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	language := deps.Language
	if language == "" {
		language = "en"
	}
	itemDelay := deps.ItemDelay
	if itemDelay == 0 {
		itemDelay = DefaultItemDelay
	}
	return &Pipeline{
		source:      deps.Source,
		transformer: deps.Transformer,
		publisher:   deps.Publisher,
		categories:  categories,
		ledger:      deps.Ledger,
		notifier:    deps.Notifier,
		events:      deps.Events,
		logger:      logger,
		language:    language,
		itemDelay:   itemDelay,
		maxLimit:    deps.MaxLimit,
		now:         time.Now,
		wait:        sleep,
	}
}

// Run fetches up to limit articles for the category and publishes them in
// source order. Item failures are recorded in the report and skipped; only
// invalid input, the initial fetch or cancellation make Run return an error.
func (p *Pipeline) Run(ctx context.Context, categoryKey string, limit int) (domain.RunReport, error) {
	report := domain.RunReport{Category: categoryKey, Limit: limit, StartedAt: p.now()}

	profile, err := p.categories.Resolve(categoryKey)
	if err != nil {
		return report, apperr.Validation("category", "%q is not one of %v", categoryKey, p.categories.Keys())
	}
	if limit < 1 || (p.maxLimit > 0 && limit > p.maxLimit) {
		return report, apperr.Validation("limit", "must be between 1 and %d, got %d", p.maxLimit, limit)
	}
	if p.source == nil || p.transformer == nil || p.publisher == nil {
		return report, errors.New("pipeline is not fully wired")
	}
	report.Category = profile.Key

	logger := p.logger.With("category", profile.Key)
	logger.Info("pipeline run started", "limit", limit)

	articles, err := p.source.Search(ctx, ports.NewsQuery{
		Q:        profile.Query,
		Language: p.language,
		PageSize: limit,
		SortBy:   "publishedAt",
	})
	if err != nil {
		report.FinishedAt = p.now()
		return report, fmt.Errorf("fetch %s news: %w", profile.Key, err)
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	report.Fetched = len(articles)

	var runErr error
	for i, raw := range articles {
		if i > 0 {
			if err := p.wait(ctx, p.itemDelay); err != nil {
				runErr = err
				break
			}
		} else if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		published, err := p.processItem(ctx, raw, profile.Key)
		if err != nil {
			failure := domain.ItemFailure{Index: i, SourceURL: raw.URL, Title: raw.Title, Err: err.Error()}
			var stageErr *StageError
			if errors.As(err, &stageErr) {
				failure.Stage = stageErr.Stage
			}
			report.Failures = append(report.Failures, failure)
			logger.Error("article skipped", "index", i, "url", raw.URL, "stage", failure.Stage, "error", err)
			continue
		}

		report.Published = append(report.Published, published)
		logger.Info("article published", "index", i, "post_id", published.WordPressID, "slug", published.Slug)
	}

	report.FinishedAt = p.now()
	logger.Info("pipeline run finished",
		"fetched", report.Fetched,
		"published", report.PublishedCount(),
		"failed", report.FailedCount(),
		"elapsed", report.Duration(),
	)

	// Sinks still run after cancellation so partial runs are recorded.
	p.emit(context.WithoutCancel(ctx), report, logger)

	return report, runErr
}

func (p *Pipeline) processItem(ctx context.Context, raw domain.RawArticle, categoryKey string) (domain.ProcessedArticle, error) {
	processed, err := p.transformer.Transform(ctx, raw, categoryKey)
	if err != nil {
		return domain.ProcessedArticle{}, &StageError{Stage: domain.StageTransform, Err: err}
	}
	published, err := p.publisher.Publish(ctx, processed)
	if err != nil {
		return domain.ProcessedArticle{}, &StageError{Stage: domain.StagePublish, Err: err}
	}
	return published, nil
}

func (p *Pipeline) emit(ctx context.Context, report domain.RunReport, logger *slog.Logger) {
	if p.ledger != nil {
		if err := p.ledger.RecordRun(ctx, report); err != nil {
			logger.Warn("ledger record failed", "error", err)
		}
	}

	if p.events != nil {
		for _, article := range report.Published {
			if err := p.events.ArticlePublished(ctx, article); err != nil {
				logger.Warn("publish event failed", "post_id", article.WordPressID, "error", err)
			}
		}
	}

	if p.notifier != nil && report.Fetched > 0 {
		if err := p.notifier.PublishDigest(ctx, buildDigestMessage(report)); err != nil {
			logger.Warn("digest delivery failed", "error", err)
		}
	}
}

func buildDigestMessage(report domain.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lunaro News: %s\nПубликувани: %d, пропуснати: %d от %d\n\n",
		report.Category, report.PublishedCount(), report.FailedCount(), report.Fetched)

	for _, article := range report.Published {
		fmt.Fprintf(&b, "- %s\n  #%d %s\n", article.TranslatedTitle, article.WordPressID, article.Raw.URL)
	}
	for _, failure := range report.Failures {
		fmt.Fprintf(&b, "! %s (%s)\n  %s\n", failure.Title, failure.Stage, failure.Err)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
