package searchengine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"NewsIndexer/internal/config"
	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/engine"
	"NewsIndexer/internal/retry"
)

// Service names reported by the sitemap pingers.
const (
	GoogleSitemapPingService = "Google Sitemap Ping"
	BingSitemapPingService   = "Bing Sitemap Ping"
	YandexPingService        = "Yandex Ping"
)

// PingResponse is the narrowed result of a sitemap ping.
type PingResponse struct {
	Endpoint   string `json:"endpoint"`
	SitemapURL string `json:"sitemapUrl"`
}

// SitemapPinger tells an engine to re-crawl the sitemap via GET <endpoint>?sitemap=<url>.
type SitemapPinger struct {
	name       string
	endpoint   string
	sitemapURL string
	client     *client
	retry      retry.Policy
	logger     *slog.Logger
}

var (
	_ engine.Submitter = (*SitemapPinger)(nil)
	_ engine.Pinger    = (*SitemapPinger)(nil)
)

// NewSitemapPinger builds a pinger reporting under the given service name.
func NewSitemapPinger(name, endpoint, sitemapURL string, opts Options) *SitemapPinger {
	return &SitemapPinger{
		name:       name,
		endpoint:   endpoint,
		sitemapURL: sitemapURL,
		client:     newClient(opts),
		retry:      opts.Retry,
		logger:     opts.Logger,
	}
}

// Name identifies the engine inside results and logs.
func (p *SitemapPinger) Name() string {
	return p.name
}

// Submit pings the sitemap; the page URL reaches the engine through the sitemap itself.
func (p *SitemapPinger) Submit(ctx context.Context, pageURL string) domain.IndexingResult {
	resp, err := retry.Do(ctx, p.retry, p.logger, func(ctx context.Context) (PingResponse, error) {
		return p.ping(ctx)
	})
	if err != nil {
		return domain.Failed(p.name, fmt.Errorf("sitemap ping: %w", err))
	}
	return domain.Succeeded(p.name, resp)
}

// Ping performs a single best-effort attempt.
func (p *SitemapPinger) Ping(ctx context.Context, pageURL string) error {
	_, err := p.ping(ctx)
	return err
}

func (p *SitemapPinger) ping(ctx context.Context) (PingResponse, error) {
	target, err := url.Parse(p.endpoint)
	if err != nil {
		return PingResponse{}, fmt.Errorf("invalid ping endpoint %s: %w", p.endpoint, err)
	}
	q := target.Query()
	q.Set("sitemap", p.sitemapURL)
	target.RawQuery = q.Encode()

	if _, err := p.client.do(ctx, http.MethodGet, target.String(), nil, nil); err != nil {
		return PingResponse{}, err
	}
	return PingResponse{Endpoint: p.endpoint, SitemapURL: p.sitemapURL}, nil
}

// NewYandexPinger builds the best-effort Yandex sitemap ping; it never retries.
func NewYandexPinger(cfg config.YandexConfig, sitemapURL string, opts Options) *SitemapPinger {
	opts.Retry = retry.Policy{MaxAttempts: 1}
	return NewSitemapPinger(YandexPingService, cfg.PingEndpoint, sitemapURL, opts)
}
