package siteurl

import (
	"net/url"
	"strings"

	"NewsIndexer/internal/config"
)

const (
	SitemapPath = "/sitemap.xml"
	FeedPath    = "/rss.xml"
)

// Builder derives every canonical URL the site publishes, so sitemap,
// feed and meta tags agree on article and image locations.
type Builder struct {
	base         string
	articlePath  string
	categoryPath string
	defaultImage string
}

// New builds a Builder from site settings.
func New(site config.SiteConfig) Builder {
	b := Builder{
		base:         strings.TrimRight(site.BaseURL, "/"),
		articlePath:  cleanPrefix(site.ArticlePath),
		categoryPath: cleanPrefix(site.CategoryPath),
	}
	if b.categoryPath == "" {
		b.categoryPath = "/category"
	}
	b.defaultImage = b.absolute(site.DefaultImage)
	return b
}

// Base returns the site origin without a trailing slash.
func (b Builder) Base() string {
	return b.base
}

// Home is the homepage URL.
func (b Builder) Home() string {
	return b.base + "/"
}

// Page resolves a root-relative static page path.
func (b Builder) Page(path string) string {
	return b.base + "/" + strings.TrimLeft(path, "/")
}

// Article returns the canonical URL of an article slug.
func (b Builder) Article(slug string) string {
	return b.base + b.articlePath + "/" + url.PathEscape(strings.Trim(slug, "/"))
}

// Category returns the listing URL of a category slug.
func (b Builder) Category(slug string) string {
	return b.base + b.categoryPath + "/" + url.PathEscape(strings.Trim(slug, "/"))
}

// Sitemap is the public sitemap URL referenced by ping fallbacks.
func (b Builder) Sitemap() string {
	return b.base + SitemapPath
}

// Feed is the public RSS URL.
func (b Builder) Feed() string {
	return b.base + FeedPath
}

// DefaultImage is the placeholder used when an article has no usable image.
func (b Builder) DefaultImage() string {
	return b.defaultImage
}

// Image normalises a featured image reference: absolute URLs pass through,
// root-relative paths get the site origin, anything else becomes the placeholder.
func (b Builder) Image(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "https://"), strings.HasPrefix(raw, "http://"):
		return raw
	case strings.HasPrefix(raw, "//"):
		return b.defaultImage
	case strings.HasPrefix(raw, "/"):
		return b.base + raw
	default:
		return b.defaultImage
	}
}

func (b Builder) absolute(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return b.base + "/og-image.jpg"
	case strings.HasPrefix(raw, "https://"), strings.HasPrefix(raw, "http://"):
		return raw
	default:
		return b.base + "/" + strings.TrimLeft(raw, "/")
	}
}

func cleanPrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
