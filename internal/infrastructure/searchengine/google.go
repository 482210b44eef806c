package searchengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	indexing "google.golang.org/api/indexing/v3"
	"google.golang.org/api/option"

	"NewsIndexer/internal/background"
	"NewsIndexer/internal/config"
	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/engine"
	"NewsIndexer/internal/ports"
	"NewsIndexer/internal/retry"
)

const (
	// GoogleIndexingService names results produced by the Indexing API publish.
	GoogleIndexingService = "Google Indexing API"

	notificationURLUpdated = "URL_UPDATED"
)

// ErrIndexingDisabled is reported when the Indexing API flag is off.
var ErrIndexingDisabled = errors.New("google indexing API is disabled")

// GooglePublishResponse is the narrowed Indexing API publish reply.
type GooglePublishResponse struct {
	URL        string `json:"url"`
	Type       string `json:"type"`
	NotifyTime string `json:"notifyTime,omitempty"`
}

// GoogleSubmitter publishes URL updates through the Indexing API, falling
// back to the Google sitemap ping when the API cannot be used.
type GoogleSubmitter struct {
	enabled         bool
	fallbackEnabled bool
	endpoint        string
	sitemapURL      string
	resubmitDelay   time.Duration
	requestTimeout  time.Duration

	auth       ports.Authenticator
	fallback   engine.Submitter
	retry      retry.Policy
	limiter    *rate.Limiter
	background *background.Group
	logger     *slog.Logger
}

var _ engine.Submitter = (*GoogleSubmitter)(nil)

// NewGoogleSubmitter wires the credential loader, the fallback ping and the detached task group.
func NewGoogleSubmitter(cfg config.SEOConfig, sitemapURL string, auth ports.Authenticator, tasks *background.Group, opts Options) *GoogleSubmitter {
	c := newClient(opts)
	return &GoogleSubmitter{
		enabled:         cfg.Google.EnableIndexingAPI,
		fallbackEnabled: cfg.EnableSitemapPing,
		endpoint:        cfg.Google.Endpoint,
		sitemapURL:      sitemapURL,
		resubmitDelay:   cfg.Google.ResubmitDelay,
		requestTimeout:  opts.requestTimeout(),
		auth:            auth,
		fallback:        NewSitemapPinger(GoogleSitemapPingService, cfg.Google.PingEndpoint, sitemapURL, opts),
		retry:           opts.Retry,
		limiter:         c.limiter,
		background:      tasks,
		logger:          opts.Logger,
	}
}

// Name identifies the engine inside results and logs.
func (g *GoogleSubmitter) Name() string {
	return GoogleIndexingService
}

// Submit publishes pageURL, or delegates to the sitemap ping when the API is unavailable.
func (g *GoogleSubmitter) Submit(ctx context.Context, pageURL string) domain.IndexingResult {
	if !g.enabled {
		return domain.Failed(GoogleIndexingService, ErrIndexingDisabled)
	}

	if g.auth == nil || !g.auth.EnsureAuthenticated(ctx) {
		if g.fallbackEnabled {
			g.debug("google credentials unavailable, using sitemap ping", "url", pageURL)
			return g.fallback.Submit(ctx, pageURL)
		}
		return domain.Failed(GoogleIndexingService, errors.New("google credentials unavailable and sitemap ping disabled"))
	}

	publishCtx, cancel := g.publishContext(ctx)
	resp, err := retry.Do(publishCtx, g.retry, g.logger, func(ctx context.Context) (GooglePublishResponse, error) {
		return g.publish(ctx, pageURL)
	})
	cancel()
	if err != nil {
		if isAuthError(err) {
			g.auth.Reset()
		}
		if g.fallbackEnabled {
			g.warn("google indexing publish failed, using sitemap ping", "url", pageURL, "error", err)
			return g.fallback.Submit(ctx, pageURL)
		}
		return domain.Failed(GoogleIndexingService, err)
	}

	g.resubmitSitemap(ctx)
	return domain.Succeeded(GoogleIndexingService, resp)
}

// publishContext holds back one request timeout of the caller's deadline so
// the sitemap ping fallback can still run after the publish retries give up.
func (g *GoogleSubmitter) publishContext(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok || !g.fallbackEnabled {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, deadline.Add(-g.requestTimeout))
}

// resubmitSitemap re-notifies the sitemap URL after a delay; its outcome is logged only.
func (g *GoogleSubmitter) resubmitSitemap(ctx context.Context) {
	if g.background == nil || g.sitemapURL == "" {
		return
	}

	delay := g.resubmitDelay
	g.background.Go(ctx, "google sitemap resubmit", func(ctx context.Context) error {
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return fmt.Errorf("resubmit %s: %w", g.sitemapURL, ctx.Err())
			case <-timer.C:
			}
		}
		if _, err := g.publish(ctx, g.sitemapURL); err != nil {
			return fmt.Errorf("resubmit %s: %w", g.sitemapURL, err)
		}
		g.debug("google sitemap resubmitted", "url", g.sitemapURL)
		return nil
	})
}

func (g *GoogleSubmitter) publish(ctx context.Context, pageURL string) (GooglePublishResponse, error) {
	httpClient := g.auth.HTTPClient()
	if httpClient == nil {
		return GooglePublishResponse{}, errors.New("google client is not authenticated")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return GooglePublishResponse{}, fmt.Errorf("rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.requestTimeout)
	defer cancel()

	svc, err := indexing.NewService(ctx, g.serviceOptions(httpClient)...)
	if err != nil {
		return GooglePublishResponse{}, fmt.Errorf("indexing service: %w", err)
	}

	resp, err := svc.UrlNotifications.Publish(&indexing.UrlNotification{
		Url:  pageURL,
		Type: notificationURLUpdated,
	}).Context(ctx).Do()
	if err != nil {
		return GooglePublishResponse{}, fmt.Errorf("publish %s: %w", pageURL, err)
	}

	return narrowPublishResponse(pageURL, resp)
}

func (g *GoogleSubmitter) serviceOptions(httpClient *http.Client) []option.ClientOption {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	return opts
}

// narrowPublishResponse fails closed when the reply does not echo the notification.
func narrowPublishResponse(pageURL string, resp *indexing.PublishUrlNotificationResponse) (GooglePublishResponse, error) {
	if resp == nil || resp.UrlNotificationMetadata == nil {
		return GooglePublishResponse{}, errors.New("publish response missing urlNotificationMetadata")
	}

	meta := resp.UrlNotificationMetadata
	out := GooglePublishResponse{URL: meta.Url, Type: notificationURLUpdated}
	if out.URL == "" {
		out.URL = pageURL
	}
	if meta.LatestUpdate != nil {
		if meta.LatestUpdate.Type != "" {
			out.Type = meta.LatestUpdate.Type
		}
		out.NotifyTime = meta.LatestUpdate.NotifyTime
	}
	return out, nil
}

// isAuthError reports a 401 or 403 from the API; either may mean revoked credentials.
func isAuthError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden
}

func (g *GoogleSubmitter) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}

func (g *GoogleSubmitter) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}
