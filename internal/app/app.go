package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"HamptonCollector/internal/config"
	"HamptonCollector/internal/infrastructure/browser"
	"HamptonCollector/internal/infrastructure/fetch"
	"HamptonCollector/internal/infrastructure/llm"
	"HamptonCollector/internal/infrastructure/scheduler"
	"HamptonCollector/internal/infrastructure/scrape"
	"HamptonCollector/internal/infrastructure/storage"
	"HamptonCollector/internal/infrastructure/telegram"
	"HamptonCollector/internal/logging"
	"HamptonCollector/internal/ports"
	"HamptonCollector/internal/sources"
	"HamptonCollector/internal/usecase"
)

// Application wires configuration to the collection pipeline and its
// lifecycle.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	renderer := browser.NewRenderer(cfg.Browser)

	registry, err := sources.BuildRegistry(cfg.Sources, sources.Deps{
		API:     fetch.NewClient(nil),
		Pages:   scrape.NewClient(nil),
		Browser: renderer,
		Search:  renderer,
	})
	if err != nil {
		return nil, fmt.Errorf("build source registry: %w", err)
	}

	analyzer := llm.NewAnalyzer(cfg.AI, baseLogger.With("component", "analyzer"))

	var (
		db         *sql.DB
		repository ports.RecordRepository
	)
	if cfg.Database.DSN != "" {
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repository = storage.NewPostgresRepository(db)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:    registry,
		Analyzer:    analyzer,
		Repository:  repository,
		Notifier:    notifier,
		Logger:      baseLogger.With("component", "pipeline"),
		Concurrency: cfg.Collector.Concurrency,
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, db: db}, nil
}

// Run executes one collection pass, or keeps collecting on an interval when
// the scheduler is configured.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if a.cfg.Scheduler.Interval > 0 {
		driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval)
		runner := usecase.NewScheduler(driver, a.pipeline)
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		<-ctx.Done()
		return runner.Stop(context.Background())
	}

	collection, err := a.pipeline.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	a.logger.Info("collection complete",
		"run_id", collection.RunID,
		"permits", len(collection.Permits),
		"planning_documents", len(collection.PlanningDocuments),
		"economic_reports", len(collection.EconomicReports),
		"government_documents", len(collection.GovernmentDocuments),
	)
	return nil
}

func (a *Application) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
