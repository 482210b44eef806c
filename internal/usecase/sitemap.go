package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"NewsIndexer/internal/background"
	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/engine"
	"NewsIndexer/internal/feed"
	"NewsIndexer/internal/ports"
)

// SitemapTaskName is the service name of the sitemap refresh inside reports.
const SitemapTaskName = "Sitemap"

// SitemapService rebuilds sitemap.xml and rss.xml from the article store and caches them.
type SitemapService struct {
	store     ports.ArticleStore
	generator *feed.Generator
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	sitemap []byte
	rss     []byte
	builtAt time.Time
}

// NewSitemapService wires the store and the XML generator.
func NewSitemapService(store ports.ArticleStore, generator *feed.Generator, logger *slog.Logger) *SitemapService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapService{store: store, generator: generator, logger: logger, now: time.Now}
}

// Refresh regenerates both documents; the previous versions stay cached on error.
func (s *SitemapService) Refresh(ctx context.Context) error {
	articles, err := s.store.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published articles: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	sitemap := s.generator.Sitemap(articles, categories)
	rss := s.generator.RSS(articles)

	s.mu.Lock()
	s.sitemap, s.rss, s.builtAt = sitemap, rss, s.now()
	s.mu.Unlock()

	s.logger.Info("sitemap refreshed",
		"articles", len(articles),
		"categories", len(categories),
		"sitemap_bytes", len(sitemap),
		"rss_bytes", len(rss))
	return nil
}

// Sitemap returns the cached sitemap, building it on first use.
func (s *SitemapService) Sitemap(ctx context.Context) ([]byte, error) {
	return s.cached(ctx, func() []byte { return s.sitemap })
}

// Feed returns the cached RSS document, building it on first use.
func (s *SitemapService) Feed(ctx context.Context) ([]byte, error) {
	return s.cached(ctx, func() []byte { return s.rss })
}

// BuiltAt reports when the cache was last rebuilt; zero before the first build.
func (s *SitemapService) BuiltAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.builtAt
}

func (s *SitemapService) cached(ctx context.Context, pick func() []byte) ([]byte, error) {
	s.mu.RLock()
	doc := pick()
	s.mu.RUnlock()
	if doc != nil {
		return doc, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return pick(), nil
}

// SitemapRefresh is the response recorded for a successful sitemap task.
type SitemapRefresh struct {
	SitemapURL string    `json:"sitemapUrl"`
	Pinged     []string  `json:"pinged"`
	BuiltAt    time.Time `json:"builtAt"`
}

// SitemapTask is the "Sitemap" engine: it refreshes the cached documents and
// tells secondary engines about the page in the background.
type SitemapTask struct {
	sitemaps   *SitemapService
	sitemapURL string
	pingers    []engine.Pinger
	tasks      *background.Group
	logger     *slog.Logger
}

var _ engine.Submitter = (*SitemapTask)(nil)

// NewSitemapTask builds the task; pingers run detached on tasks when it is set.
func NewSitemapTask(sitemaps *SitemapService, sitemapURL string, pingers []engine.Pinger, tasks *background.Group, logger *slog.Logger) *SitemapTask {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapTask{
		sitemaps:   sitemaps,
		sitemapURL: sitemapURL,
		pingers:    pingers,
		tasks:      tasks,
		logger:     logger,
	}
}

// Name identifies the task inside reports.
func (t *SitemapTask) Name() string {
	return SitemapTaskName
}

// Submit refreshes the sitemap and fires the secondary pings.
func (t *SitemapTask) Submit(ctx context.Context, pageURL string) domain.IndexingResult {
	if err := t.sitemaps.Refresh(ctx); err != nil {
		return domain.Failed(SitemapTaskName, err)
	}

	names := make([]string, 0, len(t.pingers))
	for _, p := range t.pingers {
		names = append(names, p.Name())
		if t.tasks != nil {
			t.tasks.Go(ctx, p.Name(), func(ctx context.Context) error {
				return p.Ping(ctx, pageURL)
			})
			continue
		}
		if err := p.Ping(ctx, pageURL); err != nil {
			t.logger.Warn("secondary ping failed", "service", p.Name(), "error", err)
		}
	}

	return domain.Succeeded(SitemapTaskName, SitemapRefresh{
		SitemapURL: t.sitemapURL,
		Pinged:     names,
		BuiltAt:    t.sitemaps.BuiltAt(),
	})
}
