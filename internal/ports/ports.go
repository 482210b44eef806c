package ports

import (
	"context"
	"net/http"
	"time"

	"NewsIndexer/internal/domain"
)

// ArticleStore reads the published content owned by the CMS database.
type ArticleStore interface {
	ListPublished(ctx context.Context) ([]domain.Article, error)
	GetBySlug(ctx context.Context, slug string) (domain.Article, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Authenticator provides the lazily authorised Google client.
type Authenticator interface {
	EnsureAuthenticated(ctx context.Context) bool
	HTTPClient() *http.Client
	Reset()
}

// Alerter streams operational warnings to Telegram or other channels.
type Alerter interface {
	Alert(ctx context.Context, message string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
