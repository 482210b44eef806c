package searchengine

import (
	"context"
	"net/http"
	"sync"
	"time"

	"NewsIndexer/internal/config"
	"NewsIndexer/internal/logging"
	"NewsIndexer/internal/retry"
)

const (
	testSiteURL    = "https://ghnewsmedia.com"
	testSitemapURL = "https://ghnewsmedia.com/sitemap.xml"
	testPageURL    = "https://ghnewsmedia.com/news/ghana-economy-recovery"
)

type fakeAuth struct {
	mu          sync.Mutex
	ok          bool
	client      *http.Client
	ensureCalls int
	resets      int
}

func (f *fakeAuth) EnsureAuthenticated(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	return f.ok
}

func (f *fakeAuth) HTTPClient() *http.Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok {
		return nil
	}
	return f.client
}

func (f *fakeAuth) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func testOptions(client *http.Client) Options {
	return Options{
		HTTPClient:        client,
		Retry:             retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 1.5, Sleep: noSleep},
		RequestsPerSecond: 1000,
		Logger:            logging.Discard(),
	}
}

func testSEOConfig() config.SEOConfig {
	cfg := config.Default().SEO
	cfg.Google.ResubmitDelay = 0
	return cfg
}
