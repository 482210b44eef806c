package searchengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"NewsIndexer/internal/config"
	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/engine"
	"NewsIndexer/internal/retry"
)

// BingWebmasterService names results of the Bing Webmaster SubmitUrl call.
const BingWebmasterService = "Bing Webmaster API"

// BingSubmitResponse is the narrowed SubmitUrl reply.
type BingSubmitResponse struct {
	D         json.RawMessage `json:"d"`
	ErrorCode int             `json:"ErrorCode"`
	Message   string          `json:"Message"`
}

// BingSubmitter pushes URLs through the Webmaster API, falling back to the Bing sitemap ping.
type BingSubmitter struct {
	apiKey          string
	endpoint        string
	siteURL         string
	fallbackEnabled bool

	client   *client
	fallback engine.Submitter
	retry    retry.Policy
	logger   *slog.Logger
}

var _ engine.Submitter = (*BingSubmitter)(nil)

// NewBingSubmitter builds the submitter for siteURL.
func NewBingSubmitter(cfg config.SEOConfig, siteURL, sitemapURL string, opts Options) *BingSubmitter {
	return &BingSubmitter{
		apiKey:          cfg.Bing.APIKey,
		endpoint:        cfg.Bing.Endpoint,
		siteURL:         siteURL,
		fallbackEnabled: cfg.EnableSitemapPing,
		client:          newClient(opts),
		fallback:        NewSitemapPinger(BingSitemapPingService, cfg.Bing.PingEndpoint, sitemapURL, opts),
		retry:           opts.Retry,
		logger:          opts.Logger,
	}
}

// Name identifies the engine inside results and logs.
func (b *BingSubmitter) Name() string {
	return BingWebmasterService
}

// Submit uses the API when a key is configured and the sitemap ping otherwise.
func (b *BingSubmitter) Submit(ctx context.Context, pageURL string) domain.IndexingResult {
	if b.apiKey != "" {
		resp, err := retry.Do(ctx, b.retry, b.logger, func(ctx context.Context) (BingSubmitResponse, error) {
			return b.submitURL(ctx, pageURL)
		})
		if err == nil {
			return domain.Succeeded(BingWebmasterService, resp)
		}
		if !b.fallbackEnabled {
			return domain.Failed(BingWebmasterService, err)
		}
		if b.logger != nil {
			b.logger.Warn("bing webmaster submit failed, using sitemap ping", "url", pageURL, "error", err)
		}
		return b.fallback.Submit(ctx, pageURL)
	}

	if b.fallbackEnabled {
		return b.fallback.Submit(ctx, pageURL)
	}
	return domain.Failed(BingWebmasterService, errors.New("bing api key not configured and sitemap ping disabled"))
}

func (b *BingSubmitter) submitURL(ctx context.Context, pageURL string) (BingSubmitResponse, error) {
	payload := map[string]string{
		"siteUrl": b.siteURL,
		"url":     pageURL,
	}
	raw, err := b.client.do(ctx, http.MethodPost, b.endpoint, payload, map[string]string{
		"Authorization": "Bearer " + b.apiKey,
	})
	if err != nil {
		return BingSubmitResponse{}, fmt.Errorf("bing submit: %w", err)
	}

	var resp BingSubmitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return BingSubmitResponse{}, fmt.Errorf("bing submit: unexpected response %q: %w", truncateBody(raw), err)
	}
	if resp.ErrorCode != 0 {
		return BingSubmitResponse{}, fmt.Errorf("bing submit: error %d: %s", resp.ErrorCode, resp.Message)
	}
	return resp, nil
}

func truncateBody(raw []byte) string {
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	return string(raw)
}
