package usecase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsIndexer/internal/background"
	"NewsIndexer/internal/config"
	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/engine"
	"NewsIndexer/internal/infrastructure/searchengine"
	"NewsIndexer/internal/logging"
	"NewsIndexer/internal/retry"
	"NewsIndexer/internal/siteurl"
)

type unauthenticated struct{}

func (unauthenticated) EnsureAuthenticated(ctx context.Context) bool {
	return false
}

func (unauthenticated) HTTPClient() *http.Client {
	return nil
}

func (unauthenticated) Reset() {}

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.paths = append(r.paths, req.URL.Path)
	r.mu.Unlock()

	if strings.HasSuffix(req.URL.Path, "SubmitUrl") {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"d":null}`))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestNotifyEndToEnd(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	cfg := config.Default()
	cfg.Site.BaseURL = "https://ghnewsmedia.com"
	cfg.SEO.Google.PingEndpoint = srv.URL + "/google/ping"
	cfg.SEO.Bing.APIKey = "bing-key"
	cfg.SEO.Bing.Endpoint = srv.URL + "/bing/SubmitUrl"
	cfg.SEO.Bing.PingEndpoint = srv.URL + "/bing/ping"
	cfg.SEO.IndexNow.Key = "indexnow-key"
	cfg.SEO.IndexNow.Endpoint = srv.URL + "/indexnow"

	var logs bytes.Buffer
	logger := logging.NewWithFormat(&logs, "info", "text")
	urls := siteurl.New(cfg.Site)
	tasks := background.NewGroup(logger)

	opts := searchengine.Options{
		HTTPClient:        srv.Client(),
		Retry:             retry.Policy{MaxAttempts: 2, InitialDelay: time.Millisecond, Multiplier: 1.5},
		RequestsPerSecond: 100,
		Logger:            logger,
	}

	store := &fakeStore{articles: []domain.Article{publishedArticle("ghana-economy-recovery")}}
	sitemaps := newTestSitemapService(store)
	sitemapTask := NewSitemapTask(sitemaps, urls.Sitemap(), []engine.Pinger{
		searchengine.NewIndexNowPinger(cfg.SEO.IndexNow, urls.Base(), opts),
	}, tasks, logger)

	n := NewNotifier(NotifierDeps{
		Primary: []engine.Submitter{
			searchengine.NewGoogleSubmitter(cfg.SEO, urls.Sitemap(), unauthenticated{}, tasks, opts),
			searchengine.NewBingSubmitter(cfg.SEO, urls.Base(), urls.Sitemap(), opts),
		},
		Secondary:           []engine.Submitter{sitemapTask},
		URLs:                urls,
		Logger:              logger,
		EngineTimeout:       5 * time.Second,
		MinPrimarySuccesses: cfg.SEO.MinPrimarySuccesses,
	})

	report, err := n.Notify(context.Background(), publishedArticle("ghana-economy-recovery"))
	require.NoError(t, err)
	tasks.Wait()

	assert.Equal(t, testPageURL, report.URL)
	require.Len(t, report.Results, 3)
	assert.True(t, strings.HasPrefix(report.Results[0].Service, "Google"), report.Results[0].Service)
	assert.True(t, strings.HasPrefix(report.Results[1].Service, "Bing"), report.Results[1].Service)
	assert.Equal(t, SitemapTaskName, report.Results[2].Service)
	assert.Equal(t, []string{searchengine.GoogleSitemapPingService, searchengine.BingWebmasterService, SitemapTaskName}, report.Services())

	successes := 0
	for _, res := range report.Results {
		if res.Success {
			successes++
		}
	}
	assert.Equal(t, 3, successes)
	assert.Equal(t, successes, report.Succeeded)
	assert.True(t, report.Healthy)
	assert.Contains(t, logs.String(), fmt.Sprintf("%d of %d engines succeeded", successes, len(report.Results)))

	assert.ElementsMatch(t, []string{"/google/ping", "/bing/SubmitUrl", "/indexnow"}, rec.seen())
}
