package siteurl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"NewsIndexer/internal/config"
)

func testBuilder() Builder {
	site := config.Default().Site
	site.BaseURL = "https://ghnewsmedia.com/"
	return New(site)
}

func TestBuilderURLs(t *testing.T) {
	t.Parallel()

	b := testBuilder()

	assert.Equal(t, "https://ghnewsmedia.com/", b.Home())
	assert.Equal(t, "https://ghnewsmedia.com/news/ghana-economy-recovery", b.Article("ghana-economy-recovery"))
	assert.Equal(t, "https://ghnewsmedia.com/category/politics", b.Category("politics"))
	assert.Equal(t, "https://ghnewsmedia.com/sitemap.xml", b.Sitemap())
	assert.Equal(t, "https://ghnewsmedia.com/rss.xml", b.Feed())
	assert.Equal(t, "https://ghnewsmedia.com/about", b.Page("/about"))
}

func TestBuilderArticleWithoutPrefix(t *testing.T) {
	t.Parallel()

	site := config.Default().Site
	site.ArticlePath = ""
	b := New(site)

	assert.Equal(t, "https://ghnewsmedia.com/ghana-economy-recovery", b.Article("ghana-economy-recovery"))
}

func TestBuilderImage(t *testing.T) {
	t.Parallel()

	b := testBuilder()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"absolute https", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"absolute http", "http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"root relative", "/uploads/a.jpg", "https://ghnewsmedia.com/uploads/a.jpg"},
		{"relative", "uploads/a.jpg", "https://ghnewsmedia.com/og-image.jpg"},
		{"protocol relative", "//cdn.example.com/a.jpg", "https://ghnewsmedia.com/og-image.jpg"},
		{"empty", "", "https://ghnewsmedia.com/og-image.jpg"},
		{"data uri", "data:image/png;base64,AAAA", "https://ghnewsmedia.com/og-image.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Image(tt.raw))
		})
	}
}
