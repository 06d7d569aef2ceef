package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"LunaroNews/internal/category"
	"LunaroNews/internal/config"
	"LunaroNews/internal/domain"
	"LunaroNews/internal/infrastructure/events"
	"LunaroNews/internal/infrastructure/httpapi"
	"LunaroNews/internal/infrastructure/llm"
	"LunaroNews/internal/infrastructure/lock"
	"LunaroNews/internal/infrastructure/media"
	"LunaroNews/internal/infrastructure/newsapi"
	"LunaroNews/internal/infrastructure/scheduler"
	"LunaroNews/internal/infrastructure/storage"
	"LunaroNews/internal/infrastructure/telegram"
	"LunaroNews/internal/infrastructure/wordpress"
	"LunaroNews/internal/logging"
	"LunaroNews/internal/ports"
	"LunaroNews/internal/usecase"
	"LunaroNews/pkg/logger"
)

const gracefulStopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	admin     *httpapi.Server
	closers   []func() error
}

// New builds the application. Optional backends (ledger, Telegram, Kafka,
// Valkey) are wired only when configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	categories := category.Default()

	locker, err := a.locker(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var ledger ports.PublicationLedger
	if cfg.Database.DSN != "" {
		db, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		pg := storage.NewPostgresLedger(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
		ledger = pg
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram, nil)
	}

	var sink ports.EventSink
	if len(cfg.Kafka.Brokers) > 0 {
		sarama.Logger = logger.New(baseLogger, "kafka", slog.LevelDebug)
		producer, err := events.NewSyncProducer(cfg.Kafka)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		kafka := events.NewKafkaSink(producer, cfg.Kafka.Topic)
		a.closers = append(a.closers, kafka.Close)
		sink = kafka
	}

	transformer := usecase.NewTransformer(
		llm.NewChatGPTClient(cfg.OpenAI, baseLogger.With("component", "llm")),
		categories,
		baseLogger.With("component", "transformer"),
	)
	publisher := usecase.NewPublisher(usecase.PublisherDeps{
		Store:  wordpress.NewClient(cfg.WordPress, nil, baseLogger.With("component", "wordpress")),
		Images: media.NewFetcher(cfg.Pipeline, nil),
		Locker: locker,
		Status: domain.PostStatus(cfg.WordPress.PostStatus),
		Logger: baseLogger.With("component", "publisher"),
	})

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:      newsapi.NewClient(cfg.NewsAPI, nil, baseLogger.With("component", "newsapi")),
		Transformer: transformer,
		Publisher:   publisher,
		Categories:  categories,
		Ledger:      ledger,
		Notifier:    notifier,
		Events:      sink,
		Logger:      baseLogger.With("component", "pipeline"),
		Language:    cfg.NewsAPI.Language,
		ItemDelay:   cfg.Pipeline.ItemDelay,
		MaxLimit:    cfg.Pipeline.MaxLimit,
	})

	a.scheduler = usecase.NewScheduler(
		scheduler.NewIntervalScheduler(cfg.Scheduler.Interval, cfg.Scheduler.Location()),
		a.pipeline,
		cfg.Pipeline.Categories,
		cfg.Pipeline.DefaultLimit,
		baseLogger.With("component", "scheduler"),
	)

	a.admin = httpapi.NewServer(cfg.Admin, cfg.Pipeline.DefaultLimit, a.pipeline, baseLogger.With("component", "admin"))
	a.admin.Echo.Server.ErrorLog = logger.New(baseLogger, "http", slog.LevelWarn)

	return a, nil
}

func (a *Application) locker(ctx context.Context) (ports.Locker, error) {
	if a.cfg.Valkey.Address == "" {
		return lock.NewMemory(), nil
	}
	client, err := lock.NewValkeyClient(ctx, a.cfg.Valkey)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		client.Close()
		return nil
	})
	return lock.NewValkey(client, a.cfg.Valkey.LockTTL, a.logger.With("component", "lock")), nil
}

// RunOnce executes one pipeline run. A limit of zero uses the default.
func (a *Application) RunOnce(ctx context.Context, categoryKey string, limit int) (domain.RunReport, error) {
	if limit == 0 {
		limit = a.cfg.Pipeline.DefaultLimit
	}
	return a.pipeline.Run(ctx, categoryKey, limit)
}

// RunAll executes one run per configured category.
func (a *Application) RunAll(ctx context.Context) {
	a.scheduler.RunAll(ctx, a.now())
}

// Serve starts the scheduler and the admin API and blocks until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := a.admin.Start(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), gracefulStopTimeout)
	defer cancel()
	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler did not stop cleanly", "error", err)
	}
	return serveErr
}

// Close releases optional backends.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *Application) now() time.Time {
	return time.Now().In(a.cfg.Scheduler.Location())
}
