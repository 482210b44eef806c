package searchengine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"NewsIndexer/internal/config"
	"NewsIndexer/internal/engine"
)

// WebhookService names the sitemap regeneration webhook pinger.
const WebhookService = "Sitemap Webhook"

type webhookPayload struct {
	Event       string    `json:"event"`
	URL         string    `json:"url"`
	SitemapURL  string    `json:"sitemapUrl"`
	TriggeredAt time.Time `json:"triggeredAt"`
}

// WebhookPinger asks an external builder to regenerate the sitemap.
type WebhookPinger struct {
	url        string
	token      string
	sitemapURL string
	client     *client
	now        func() time.Time
}

var _ engine.Pinger = (*WebhookPinger)(nil)

// NewWebhookPinger builds the trigger; an empty URL makes Ping a no-op.
func NewWebhookPinger(cfg config.WebhookConfig, sitemapURL string, opts Options) *WebhookPinger {
	return &WebhookPinger{
		url:        cfg.URL,
		token:      cfg.Token,
		sitemapURL: sitemapURL,
		client:     newClient(opts),
		now:        time.Now,
	}
}

// Name identifies the engine in logs.
func (w *WebhookPinger) Name() string {
	return WebhookService
}

// Ping posts the regenerate trigger.
func (w *WebhookPinger) Ping(ctx context.Context, pageURL string) error {
	if w.url == "" {
		return nil
	}

	headers := map[string]string{}
	if w.token != "" {
		headers["Authorization"] = "Bearer " + w.token
	}

	payload := webhookPayload{
		Event:       "sitemap.regenerate",
		URL:         pageURL,
		SitemapURL:  w.sitemapURL,
		TriggeredAt: w.now().UTC(),
	}
	if _, err := w.client.do(ctx, http.MethodPost, w.url, payload, headers); err != nil {
		return fmt.Errorf("sitemap webhook: %w", err)
	}
	return nil
}
