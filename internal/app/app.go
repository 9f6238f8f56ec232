package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/AaronLPS/ai4news/internal/config"
	"github.com/AaronLPS/ai4news/internal/infrastructure/extractor"
	"github.com/AaronLPS/ai4news/internal/infrastructure/scheduler"
	"github.com/AaronLPS/ai4news/internal/infrastructure/storage"
	"github.com/AaronLPS/ai4news/internal/logging"
	"github.com/AaronLPS/ai4news/internal/usecase"
)

// Application wires config to the recurring spool-ingest job.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Run ingests the spool once, then keeps doing so on the configured cron
// schedule until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression)

	job := func(trigger time.Time) {
		a.ingestSpool(ctx)
	}

	job(time.Now())

	if err := driver.Start(ctx, job); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return driver.Stop(stopCtx)
}

// ingestSpool runs one ingest session. Each session opens and closes its own
// store handle; the spool job never holds the database across ticks.
func (a *Application) ingestSpool(ctx context.Context) {
	logger := a.logger.With("component", "ingest")

	targets, err := config.LoadTargets(a.cfg.Targets.Path)
	if err != nil {
		logger.Error("load targets mirror", "error", err)
		return
	}

	store, err := storage.Open(a.cfg.Database.Path)
	if err != nil {
		logger.Error("open store", "error", err)
		return
	}
	defer store.Close()

	ingester := usecase.NewIngester(usecase.IngestDeps{
		Registry:  store,
		Posts:     store,
		Extractor: extractor.NewFeedExtractor(a.logger.With("component", "extractor")),
		Logger:    logger,
	})

	result, err := ingester.IngestSpool(ctx, a.cfg.Ingest.SpoolDir, targets)
	if err != nil {
		logger.Error("ingest spool", "error", err)
		return
	}

	logger.Info("spool ingested", "scraped", result.Scraped, "new", result.New, "errors", len(result.Errors))
	for _, msg := range result.Errors {
		logger.Warn("ingest item failed", "detail", msg)
	}
}
