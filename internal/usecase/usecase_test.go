package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"NewsIndexer/internal/domain"
)

var testNow = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

type fakeSubmitter struct {
	name   string
	fail   bool
	panics bool
	block  chan struct{}

	mu    sync.Mutex
	calls []string
}

func (f *fakeSubmitter) Name() string {
	return f.name
}

func (f *fakeSubmitter) Submit(ctx context.Context, pageURL string) domain.IndexingResult {
	f.mu.Lock()
	f.calls = append(f.calls, pageURL)
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if f.panics {
		panic(f.name + " exploded")
	}
	if f.fail {
		return domain.Failed(f.name, errors.New(f.name+" unavailable"))
	}
	return domain.Succeeded(f.name, nil)
}

func (f *fakeSubmitter) submitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeAlerter struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (f *fakeAlerter) Alert(ctx context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return f.err
}

func (f *fakeAlerter) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type fakeStore struct {
	mu         sync.Mutex
	articles   []domain.Article
	categories []domain.Category
	err        error
	lists      int
}

func (f *fakeStore) ListPublished(ctx context.Context) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Article(nil), f.articles...), nil
}

func (f *fakeStore) GetBySlug(ctx context.Context, slug string) (domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return domain.Article{}, errors.New("not found")
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Category(nil), f.categories...), nil
}

func (f *fakeStore) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

type fakePinger struct {
	name string
	err  error

	mu   sync.Mutex
	urls []string
}

func (f *fakePinger) Name() string {
	return f.name
}

func (f *fakePinger) Ping(ctx context.Context, pageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, pageURL)
	return f.err
}

func (f *fakePinger) pinged() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func publishedArticle(slug string) domain.Article {
	return domain.Article{
		ID:          "id-" + slug,
		Slug:        slug,
		Title:       "Title " + slug,
		Excerpt:     "Excerpt " + slug,
		Content:     "<p>Body of " + slug + "</p>",
		Category:    domain.CategoryRef{ID: "c1", Name: "Business", Slug: "business"},
		Status:      domain.StatusPublished,
		PublishedAt: testNow.Add(-time.Hour),
		UpdatedAt:   testNow.Add(-time.Hour),
	}
}
