package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"NewsIndexer/internal/background"
	"NewsIndexer/internal/config"
	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/engine"
	"NewsIndexer/internal/feed"
	"NewsIndexer/internal/httpapi"
	"NewsIndexer/internal/infrastructure/googleauth"
	"NewsIndexer/internal/infrastructure/scheduler"
	"NewsIndexer/internal/infrastructure/searchengine"
	"NewsIndexer/internal/infrastructure/storage"
	"NewsIndexer/internal/infrastructure/telegram"
	"NewsIndexer/internal/logging"
	"NewsIndexer/internal/metadata"
	"NewsIndexer/internal/ports"
	"NewsIndexer/internal/retry"
	"NewsIndexer/internal/siteurl"
	"NewsIndexer/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sqlx.DB

	store     ports.ArticleStore
	tasks     *background.Group
	registry  *engine.Registry
	sitemaps  *usecase.SitemapService
	notifier  *usecase.Notifier
	scheduler *usecase.Scheduler
	server    *httpapi.Server
}

// New validates cfg, connects to Postgres and builds the application.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Database.DSN == "" {
		return nil, errors.New("database dsn is required")
	}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	a, err := NewWithStore(cfg, storage.NewPostgresRepository(db), baseLogger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.db = db
	return a, nil
}

// NewWithStore builds the application on top of an existing article store.
func NewWithStore(cfg config.Config, store ports.ArticleStore, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.NewWithFormat(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	}

	cron := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(), false)
	if err := cron.Validate(); err != nil {
		return nil, err
	}

	urls := siteurl.New(cfg.Site)
	tasks := background.NewGroup(baseLogger.With("component", "background"))

	generator := feed.NewGenerator(cfg.Site, cfg.Feed, nil)
	sitemaps := usecase.NewSitemapService(store, generator, baseLogger.With("component", "sitemap"))

	engineOpts := func(component string) searchengine.Options {
		return searchengine.Options{
			Retry:             retryPolicy(cfg.SEO.Retry),
			RequestsPerSecond: cfg.SEO.RequestsPerSecond,
			RequestTimeout:    cfg.SEO.RequestTimeout,
			Logger:            baseLogger.With("component", component),
		}
	}

	auth := googleauth.NewLoader(cfg.SEO.Google, baseLogger.With("component", "googleauth"))

	registry := engine.NewRegistry()
	registry.Register(searchengine.NewGoogleSubmitter(cfg.SEO, urls.Sitemap(), auth, tasks, engineOpts("searchengine.google")))
	registry.Register(searchengine.NewBingSubmitter(cfg.SEO, urls.Base(), urls.Sitemap(), engineOpts("searchengine.bing")))

	pingers := make([]engine.Pinger, 0, 3)
	if cfg.SEO.EnableSitemapPing {
		pingers = append(pingers, searchengine.NewYandexPinger(cfg.SEO.Yandex, urls.Sitemap(), engineOpts("searchengine.yandex")))
	}
	pingers = append(pingers,
		searchengine.NewIndexNowPinger(cfg.SEO.IndexNow, urls.Base(), engineOpts("searchengine.indexnow")),
		searchengine.NewWebhookPinger(cfg.SEO.Webhook, urls.Sitemap(), engineOpts("searchengine.webhook")),
	)
	sitemapTask := usecase.NewSitemapTask(sitemaps, urls.Sitemap(), pingers, tasks, baseLogger.With("component", "sitemap"))

	var alerter ports.Alerter
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram); tg.Configured() {
		alerter = tg
	}

	notifier := usecase.NewNotifier(usecase.NotifierDeps{
		Primary:             registry.All(),
		Secondary:           []engine.Submitter{sitemapTask},
		URLs:                urls,
		Alerter:             alerter,
		Logger:              baseLogger.With("component", "notifier"),
		EngineTimeout:       cfg.SEO.EngineTimeout,
		MinPrimarySuccesses: cfg.SEO.MinPrimarySuccesses,
	})

	server := httpapi.New(httpapi.Deps{
		Addr:      cfg.Server.Addr,
		Store:     store,
		Notifier:  notifier,
		Documents: sitemaps,
		Metadata:  metadata.NewGenerator(cfg.Site),
		Tasks:     tasks,
		Logger:    baseLogger,
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		tasks:     tasks,
		registry:  registry,
		sitemaps:  sitemaps,
		notifier:  notifier,
		scheduler: usecase.NewScheduler(cron, sitemaps, baseLogger.With("component", "scheduler")),
		server:    server,
	}, nil
}

func retryPolicy(cfg config.RetryConfig) retry.Policy {
	return retry.Policy{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		Multiplier:   cfg.Multiplier,
		MaxDelay:     cfg.MaxDelay,
	}
}

// Engines lists the engine names a notification reports on, in order.
func (a *Application) Engines() []string {
	return a.notifier.Engines()
}

// Serve runs the HTTP API and the sitemap cron until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.sitemaps.Refresh(ctx); err != nil {
		a.logger.Warn("initial sitemap build failed", "error", err)
	}
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.server.Start() }()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Error("scheduler shutdown", "error", err)
	}
	a.tasks.Shutdown(shutdownCtx)

	return runErr
}

// NotifySlug loads an article and runs the indexing fan-out synchronously.
// A non-empty engine restricts the run to that primary engine.
func (a *Application) NotifySlug(ctx context.Context, slug, engineName string) (domain.Report, error) {
	article, err := a.store.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Report{}, err
	}

	notifier := a.notifier
	if engineName != "" {
		submitter, err := a.registry.Resolve(engineName)
		if err != nil {
			return domain.Report{}, err
		}
		notifier = usecase.NewNotifier(usecase.NotifierDeps{
			Primary:             []engine.Submitter{submitter},
			URLs:                siteurl.New(a.cfg.Site),
			Logger:              a.logger.With("component", "notifier"),
			EngineTimeout:       a.cfg.SEO.EngineTimeout,
			MinPrimarySuccesses: a.cfg.SEO.MinPrimarySuccesses,
		})
	}

	report, err := notifier.Notify(ctx, article)
	a.tasks.Wait()
	return report, err
}

// WriteDocuments refreshes and writes sitemap.xml and rss.xml into dir.
func (a *Application) WriteDocuments(ctx context.Context, dir string) error {
	if err := a.sitemaps.Refresh(ctx); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	sitemap, err := a.sitemaps.Sitemap(ctx)
	if err != nil {
		return err
	}
	rss, err := a.sitemaps.Feed(ctx)
	if err != nil {
		return err
	}

	for name, doc := range map[string][]byte{"sitemap.xml": sitemap, "rss.xml": rss} {
		if err := os.WriteFile(filepath.Join(dir, name), doc, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// Close drains detached tasks and releases the database.
func (a *Application) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.tasks.Shutdown(ctx)
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
