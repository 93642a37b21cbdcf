package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"CreatorProfiler/internal/aggregate"
	"CreatorProfiler/internal/config"
	"CreatorProfiler/internal/enrich"
	"CreatorProfiler/internal/infrastructure/archive"
	"CreatorProfiler/internal/infrastructure/llm"
	"CreatorProfiler/internal/infrastructure/parser"
	"CreatorProfiler/internal/infrastructure/scheduler"
	"CreatorProfiler/internal/infrastructure/search"
	"CreatorProfiler/internal/infrastructure/storage"
	"CreatorProfiler/internal/infrastructure/telegram"
	"CreatorProfiler/internal/infrastructure/youtube"
	"CreatorProfiler/internal/logging"
	"CreatorProfiler/internal/ports"
	"CreatorProfiler/internal/scoring"
	"CreatorProfiler/internal/server"
	"CreatorProfiler/internal/signals"
	"CreatorProfiler/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	profiler *usecase.Profiler
}

// New builds the profiling use case from configuration. Optional enrichments
// are enabled only when their API keys are present.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	lexicon := signals.DefaultLexicon()
	if cfg.Lexicon.Path != "" {
		loaded, err := signals.LoadLexicon(cfg.Lexicon.Path)
		if err != nil {
			baseLogger.Warn("lexicon extension ignored", "path", cfg.Lexicon.Path, "error", err)
		}
		lexicon = loaded
	}

	registry := scoring.NewRegistry()
	strategy, err := registry.Resolve(cfg.Scoring.Strategy)
	if err != nil {
		return nil, fmt.Errorf("resolve scoring strategy: %w", err)
	}

	feeds := parser.NewFeedNormalizer(
		&http.Client{Timeout: cfg.Feeds.Timeout},
		cfg.Feeds.UserAgent,
		baseLogger.With("component", "feeds"),
	)

	var reach ports.ReachProvider
	if cfg.YouTube.APIKey != "" {
		reach = youtube.NewClient(cfg.YouTube.Endpoint, cfg.YouTube.APIKey)
	}

	var reception ports.ReceptionSearcher
	if cfg.Search.APIKey != "" {
		reception = search.NewSerpClient(cfg.Search.Endpoint, cfg.Search.APIKey, cfg.Search.ResultsPerQuery,
			baseLogger.With("component", "search"))
	}

	var narrator ports.NarrativeWriter
	if cfg.ChatGPT.APIKey != "" {
		narrator = llm.NewChatGPTClient(cfg.ChatGPT)
	}

	baseLogger.Info("profiler configured",
		"scoring", strategy.Name(),
		"reach", reach != nil,
		"reception", reception != nil,
		"narrative", narrator != nil)

	profiler := usecase.NewProfiler(usecase.ProfilerDeps{
		Feeds:      feeds,
		Enricher:   enrich.NewEnricher(signals.NewExtractor(lexicon)),
		Aggregator: aggregate.NewAggregator(strategy),
		Reach:      reach,
		Reception:  reception,
		Narrator:   narrator,
		FeedLimit:  cfg.Feeds.Limit,
		Logger:     baseLogger.With("component", "profiler"),
	})

	return &Application{cfg: cfg, logger: baseLogger, profiler: profiler}, nil
}

// Run connects to Postgres, serves the HTTP API and polls the queue until ctx
// is cancelled.
func (a *Application) Run(ctx context.Context) error {
	db, repo, err := a.openRepository(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline := a.pipeline(repo)
	driver := scheduler.NewPoller(a.cfg.Scheduler.PollInterval, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	srv := server.NewServer(a.cfg.HTTP, repo, a.logger.With("component", "http"))
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http api listening", "addr", a.cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", "error", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler shutdown", "error", err)
	}
	return runErr
}

// RunOnce drains the pending queue a single time and returns.
func (a *Application) RunOnce(ctx context.Context) error {
	db, repo, err := a.openRepository(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline(repo).ProcessPending(ctx, now)
}

func (a *Application) openRepository(ctx context.Context) (*sql.DB, *storage.PostgresRepository, error) {
	db, err := storage.Open(ctx, a.cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	repo := storage.NewPostgresRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, repo, nil
}

func (a *Application) pipeline(repo ports.JobRepository) *usecase.Pipeline {
	var notifier ports.Notifier
	tg := a.cfg.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier("", tg.BotToken, tg.ChatID)
	}

	var reports ports.ReportArchive
	if a.cfg.Reports.Dir != "" {
		reports = archive.NewFileArchive(a.cfg.Reports.Dir)
	}

	return usecase.NewPipeline(usecase.PipelineDeps{
		Repository: repo,
		Profiler:   a.profiler,
		Archive:    reports,
		Notifier:   notifier,
		Logger:     a.logger.With("component", "pipeline"),
	})
}
