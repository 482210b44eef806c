package searchengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsIndexer/internal/config"
	"NewsIndexer/internal/logging"
)

type captureServer struct {
	mu      sync.Mutex
	status  int
	headers []http.Header
	bodies  [][]byte
}

func (c *captureServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r.Body)

	c.mu.Lock()
	c.headers = append(c.headers, r.Header.Clone())
	c.bodies = append(c.bodies, buf.Bytes())
	status := c.status
	c.mu.Unlock()

	if status == 0 {
		status = http.StatusAccepted
	}
	w.WriteHeader(status)
}

func (c *captureServer) requests() ([]http.Header, [][]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]http.Header(nil), c.headers...), append([][]byte(nil), c.bodies...)
}

func TestSitemapPingTreatsNon2xxAsFailure(t *testing.T) {
	t.Parallel()

	ping := &pingServer{status: http.StatusServiceUnavailable}
	srv := httptest.NewServer(ping)
	defer srv.Close()

	p := NewSitemapPinger(GoogleSitemapPingService, srv.URL+"/ping", testSitemapURL, testOptions(nil))
	res := p.Submit(context.Background(), testPageURL)

	assert.False(t, res.Success)
	assert.Equal(t, GoogleSitemapPingService, res.Service)
	assert.Contains(t, res.Error, "503")
	assert.Equal(t, 3, ping.count())

	var statusErr *StatusError
	require.True(t, errors.As(p.Ping(context.Background(), testPageURL), &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestYandexPingNeverRetries(t *testing.T) {
	t.Parallel()

	ping := &pingServer{status: http.StatusInternalServerError}
	srv := httptest.NewServer(ping)
	defer srv.Close()

	y := NewYandexPinger(config.YandexConfig{PingEndpoint: srv.URL + "/ping"}, testSitemapURL, testOptions(nil))
	res := y.Submit(context.Background(), testPageURL)

	assert.False(t, res.Success)
	assert.Equal(t, YandexPingService, y.Name())
	assert.Equal(t, 1, ping.count())
}

func TestIndexNowPing(t *testing.T) {
	t.Parallel()

	capture := &captureServer{}
	srv := httptest.NewServer(capture)
	defer srv.Close()

	p := NewIndexNowPinger(config.IndexNowConfig{
		Key:         "0123456789abcdef",
		KeyLocation: "https://ghnewsmedia.com/0123456789abcdef.txt",
		Endpoint:    srv.URL + "/indexnow",
	}, testSiteURL, testOptions(nil))

	require.NoError(t, p.Ping(context.Background(), testPageURL))

	headers, bodies := capture.requests()
	require.Len(t, bodies, 1)
	assert.Contains(t, headers[0].Get("Content-Type"), "application/json")

	var payload indexNowPayload
	require.NoError(t, json.Unmarshal(bodies[0], &payload))
	assert.Equal(t, "ghnewsmedia.com", payload.Host)
	assert.Equal(t, "0123456789abcdef", payload.Key)
	assert.Equal(t, []string{testPageURL}, payload.URLList)
}

func TestIndexNowWithoutKeyIsNoop(t *testing.T) {
	t.Parallel()

	capture := &captureServer{}
	srv := httptest.NewServer(capture)
	defer srv.Close()

	var logs bytes.Buffer
	opts := testOptions(nil)
	opts.Logger = logging.NewWithFormat(&logs, "info", "text")

	p := NewIndexNowPinger(config.IndexNowConfig{Endpoint: srv.URL}, testSiteURL, opts)

	require.NoError(t, p.Ping(context.Background(), testPageURL))
	_, bodies := capture.requests()
	assert.Empty(t, bodies)
	assert.Contains(t, logs.String(), "level=INFO")
	assert.Contains(t, logs.String(), "indexnow key not configured")
}

func TestIndexNowSurfacesRejection(t *testing.T) {
	t.Parallel()

	capture := &captureServer{status: http.StatusUnprocessableEntity}
	srv := httptest.NewServer(capture)
	defer srv.Close()

	p := NewIndexNowPinger(config.IndexNowConfig{Key: "k", Endpoint: srv.URL}, testSiteURL, testOptions(nil))

	err := p.Ping(context.Background(), testPageURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestWebhookPing(t *testing.T) {
	t.Parallel()

	capture := &captureServer{status: http.StatusOK}
	srv := httptest.NewServer(capture)
	defer srv.Close()

	w := NewWebhookPinger(config.WebhookConfig{URL: srv.URL + "/regenerate", Token: "hook-token"}, testSitemapURL, testOptions(nil))

	require.NoError(t, w.Ping(context.Background(), testPageURL))

	headers, bodies := capture.requests()
	require.Len(t, bodies, 1)
	assert.Equal(t, "Bearer hook-token", headers[0].Get("Authorization"))

	var payload webhookPayload
	require.NoError(t, json.Unmarshal(bodies[0], &payload))
	assert.Equal(t, "sitemap.regenerate", payload.Event)
	assert.Equal(t, testPageURL, payload.URL)
	assert.Equal(t, testSitemapURL, payload.SitemapURL)
}

func TestWebhookUnconfiguredIsNoop(t *testing.T) {
	t.Parallel()

	w := NewWebhookPinger(config.WebhookConfig{}, testSitemapURL, testOptions(nil))
	assert.NoError(t, w.Ping(context.Background(), testPageURL))
}
