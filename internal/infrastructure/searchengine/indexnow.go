package searchengine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"NewsIndexer/internal/config"
	"NewsIndexer/internal/engine"
)

// IndexNowService names the IndexNow pinger.
const IndexNowService = "IndexNow"

type indexNowPayload struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation,omitempty"`
	URLList     []string `json:"urlList"`
}

// IndexNowPinger pushes updated URLs to participating engines.
type IndexNowPinger struct {
	key         string
	keyLocation string
	endpoint    string
	host        string
	client      *client
	logger      *slog.Logger
}

var _ engine.Pinger = (*IndexNowPinger)(nil)

// NewIndexNowPinger builds the pinger for siteURL's host.
func NewIndexNowPinger(cfg config.IndexNowConfig, siteURL string, opts Options) *IndexNowPinger {
	host := siteURL
	if parsed, err := url.Parse(siteURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	return &IndexNowPinger{
		key:         cfg.Key,
		keyLocation: cfg.KeyLocation,
		endpoint:    cfg.Endpoint,
		host:        host,
		client:      newClient(opts),
		logger:      opts.Logger,
	}
}

// Name identifies the engine in logs.
func (p *IndexNowPinger) Name() string {
	return IndexNowService
}

// Ping submits pageURL; without a key it is a no-op.
func (p *IndexNowPinger) Ping(ctx context.Context, pageURL string) error {
	if p.key == "" {
		if p.logger != nil {
			p.logger.Info("indexnow key not configured, skipping", "url", pageURL)
		}
		return nil
	}

	payload := indexNowPayload{
		Host:        p.host,
		Key:         p.key,
		KeyLocation: p.keyLocation,
		URLList:     []string{pageURL},
	}
	if _, err := p.client.do(ctx, http.MethodPost, p.endpoint, payload, nil); err != nil {
		return fmt.Errorf("indexnow submit: %w", err)
	}
	return nil
}
