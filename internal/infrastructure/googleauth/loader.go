package googleauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"NewsIndexer/internal/config"
	"NewsIndexer/internal/ports"
)

// IndexingScope is the OAuth scope required by the Indexing API publish call.
const IndexingScope = "https://www.googleapis.com/auth/indexing"

// ErrNoCredentials is reported when neither inline nor file credentials are configured.
var ErrNoCredentials = errors.New("google service account credentials are not configured")

// AuthorizeFunc turns a JWT config into an HTTP client after a live token check.
type AuthorizeFunc func(ctx context.Context, cfg *jwt.Config) (*http.Client, error)

// serviceAccountKey holds the fields validated before the key is handed to oauth2.
type serviceAccountKey struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// Loader lazily resolves the service account and caches the authenticated client.
type Loader struct {
	cfg       config.GoogleConfig
	logger    *slog.Logger
	readFile  func(string) ([]byte, error)
	authorize AuthorizeFunc

	mu            sync.Mutex
	client        *http.Client
	authenticated bool
}

var _ ports.Authenticator = (*Loader)(nil)

// Option customises a Loader.
type Option func(*Loader)

// WithAuthorizer replaces the live token handshake.
func WithAuthorizer(fn AuthorizeFunc) Option {
	return func(l *Loader) {
		l.authorize = fn
	}
}

// WithFileReader replaces os.ReadFile for credential files.
func WithFileReader(fn func(string) ([]byte, error)) Option {
	return func(l *Loader) {
		l.readFile = fn
	}
}

// NewLoader builds a loader for the configured credential source.
func NewLoader(cfg config.GoogleConfig, logger *slog.Logger, opts ...Option) *Loader {
	l := &Loader{
		cfg:       cfg,
		logger:    logger,
		readFile:  os.ReadFile,
		authorize: liveAuthorize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// EnsureAuthenticated returns true once a credential has passed a live token check.
// Failures are logged and reported as false; the next call tries again.
func (l *Loader) EnsureAuthenticated(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.authenticated {
		return true
	}

	client, err := l.authenticate(ctx)
	if err != nil {
		l.client = nil
		if errors.Is(err, ErrNoCredentials) {
			l.logInfo("google indexing unavailable", "reason", err.Error())
		} else {
			l.logError("google authentication failed", "error", err)
		}
		return false
	}

	l.client = client
	l.authenticated = true
	l.logInfo("google indexing authenticated")
	return true
}

// HTTPClient returns the authorised client, or nil before authentication.
func (l *Loader) HTTPClient() *http.Client {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.client
}

// Reset drops the cached client so the next call re-authenticates.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.client = nil
	l.authenticated = false
}

func (l *Loader) authenticate(ctx context.Context) (*http.Client, error) {
	raw, source, err := l.resolve()
	if err != nil {
		return nil, err
	}

	var key serviceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("parse %s credentials: %w", source, err)
	}
	if strings.TrimSpace(key.ClientEmail) == "" || strings.TrimSpace(key.PrivateKey) == "" {
		return nil, fmt.Errorf("%s credentials missing client_email or private_key", source)
	}

	jwtCfg, err := google.JWTConfigFromJSON(raw, IndexingScope)
	if err != nil {
		return nil, fmt.Errorf("build jwt config: %w", err)
	}

	client, err := l.authorize(ctx, jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("authorize %s: %w", key.ClientEmail, err)
	}
	return client, nil
}

func (l *Loader) resolve() ([]byte, string, error) {
	if encoded := strings.TrimSpace(l.cfg.CredentialsBase64); encoded != "" {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "inline", fmt.Errorf("decode base64 credentials: %w", err)
		}
		return raw, "inline", nil
	}

	if path := strings.TrimSpace(l.cfg.CredentialsFile); path != "" {
		raw, err := l.readFile(path)
		if err != nil {
			return nil, "file", fmt.Errorf("read credentials file %s: %w", path, err)
		}
		return raw, "file", nil
	}

	return nil, "", ErrNoCredentials
}

// liveAuthorize fetches a token up front; the client outlives ctx.
func liveAuthorize(ctx context.Context, cfg *jwt.Config) (*http.Client, error) {
	ts := cfg.TokenSource(context.WithoutCancel(ctx))
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("fetch token: %w", err)
	}
	return oauth2.NewClient(context.WithoutCancel(ctx), ts), nil
}

func (l *Loader) logInfo(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Info(msg, args...)
	}
}

func (l *Loader) logError(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Error(msg, args...)
	}
}
