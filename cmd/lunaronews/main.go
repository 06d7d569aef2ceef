package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"LunaroNews/internal/app"
	"LunaroNews/internal/config"
	"LunaroNews/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	category := flag.String("category", "", "run the pipeline once for this category (cybersecurity, seo)")
	limit := flag.Int("limit", 0, "number of articles to process; 0 uses the configured default")
	all := flag.Bool("all", false, "run every configured category once and exit")
	serve := flag.Bool("serve", false, "start the admin API and the scheduler")
	flag.Parse()

	if !*serve && !*all && *category == "" {
		flag.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 2
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	switch {
	case *serve:
		err = application.Serve(ctx)
	case *all:
		application.RunAll(ctx)
	default:
		report, runErr := application.RunOnce(ctx, *category, *limit)
		logger.Info("run complete",
			"category", report.Category,
			"fetched", report.Fetched,
			"published", report.PublishedCount(),
			"failed", report.FailedCount(),
		)
		err = runErr
	}

	if err != nil {
		logger.Error("application stopped", "error", err)
		return 1
	}
	return 0
}
