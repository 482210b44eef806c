package app

import (
	"context"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsIndexer/internal/config"
	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/logging"
)

type memoryStore struct {
	articles   []domain.Article
	categories []domain.Category
}

func (m memoryStore) ListPublished(ctx context.Context) ([]domain.Article, error) {
	return m.articles, nil
}

func (m memoryStore) GetBySlug(ctx context.Context, slug string) (domain.Article, error) {
	for _, a := range m.articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return domain.Article{}, errors.New("not found")
}

func (m memoryStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return m.categories, nil
}

func testStore() memoryStore {
	return memoryStore{
		articles: []domain.Article{{
			ID:          "1",
			Slug:        "ghana-economy-recovery",
			Title:       "Ghana economy recovery",
			Content:     "<p>body</p>",
			Status:      domain.StatusPublished,
			PublishedAt: time.Now().Add(-time.Hour),
		}},
		categories: []domain.Category{{ID: "c1", Name: "Business", Slug: "business"}},
	}
}

func TestNewWithStoreWiresEngines(t *testing.T) {
	t.Parallel()

	a, err := NewWithStore(config.Default(), testStore(), logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, []string{"Google Indexing API", "Bing Webmaster API", "Sitemap"}, a.Engines())
}

func TestNewWithStoreRejectsBadCron(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Scheduler.CronExpression = "not a cron"

	_, err := NewWithStore(cfg, testStore(), logging.Discard())
	assert.Error(t, err)
}

func TestWriteDocuments(t *testing.T) {
	t.Parallel()

	a, err := NewWithStore(config.Default(), testStore(), logging.Discard())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "public")
	require.NoError(t, a.WriteDocuments(context.Background(), dir))

	for _, name := range []string{"sitemap.xml", "rss.xml"} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(raw), "https://ghnewsmedia.com/news/ghana-economy-recovery", name)
		assert.NoError(t, xml.Unmarshal(raw, new(struct{})), name)
	}
	require.NoError(t, a.Close())
}

func TestNotifySlugUnknownEngine(t *testing.T) {
	t.Parallel()

	a, err := NewWithStore(config.Default(), testStore(), logging.Discard())
	require.NoError(t, err)

	_, err = a.NotifySlug(context.Background(), "ghana-economy-recovery", "AltaVista")
	assert.ErrorContains(t, err, "not registered")
}

func TestNewRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.Default(), logging.Discard())
	assert.ErrorContains(t, err, "dsn")
}
