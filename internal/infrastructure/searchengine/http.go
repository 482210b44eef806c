package searchengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsIndexer/internal/retry"
)

const (
	userAgent       = "NewsIndexer/1.0 (+https://ghnewsmedia.com)"
	maxErrorBody    = 1024
	defaultTimeout  = 15 * time.Second
	defaultRequests = 5
)

// Options carries the collaborators shared by every engine.
type Options struct {
	HTTPClient        *http.Client
	Retry             retry.Policy
	RequestsPerSecond float64
	RequestTimeout    time.Duration
	Logger            *slog.Logger
}

// requestTimeout bounds a single HTTP attempt.
func (o Options) requestTimeout() time.Duration {
	if o.RequestTimeout > 0 {
		return o.RequestTimeout
	}
	return defaultTimeout
}

// StatusError is returned for any non-2xx engine response.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %s", e.Status)
	}
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
}

// client is a rate limited JSON/plain HTTP caller for one engine.
type client struct {
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

func newClient(opts Options) *client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.requestTimeout()}
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequests
	}
	return &client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		timeout: opts.requestTimeout(),
	}
}

// do sends the request and returns the response body of a 2xx reply.
func (c *client) do(ctx context.Context, method, endpoint string, payload any, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		excerpt := raw
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   strings.TrimSpace(string(excerpt)),
		}
	}

	return raw, nil
}
