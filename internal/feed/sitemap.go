package feed

import (
	"fmt"
	"strings"
	"time"

	"NewsIndexer/internal/config"
	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/siteurl"
)

const (
	// RecentWindow is the age below which articles get the higher sitemap priority.
	RecentWindow = 48 * time.Hour

	recentPriority = 0.9
	olderPriority  = 0.8

	sitemapHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"` +
		` xmlns:news="http://www.google.com/schemas/sitemap-news/0.9"` +
		` xmlns:image="http://www.google.com/schemas/sitemap-image/1.1">` + "\n"
	sitemapFooter = "</urlset>\n"

	dateLayout = time.RFC3339
)

// Generator renders the sitemap and RSS documents for the site.
type Generator struct {
	site config.SiteConfig
	feed config.FeedConfig
	urls siteurl.Builder
	now  func() time.Time
}

// NewGenerator wires site settings; now defaults to time.Now.
func NewGenerator(site config.SiteConfig, feed config.FeedConfig, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{site: site, feed: feed, urls: siteurl.New(site), now: now}
}

type sitemapEntry struct {
	loc        string
	lastmod    time.Time
	changefreq string
	priority   float64
	article    *domain.Article
}

// Sitemap renders the urlset: homepage, static pages, categories and every eligible article.
func (g *Generator) Sitemap(articles []domain.Article, categories []domain.Category) []byte {
	now := g.now().UTC()
	published := eligible(articles)

	entries := make([]sitemapEntry, 0, 1+len(g.site.StaticPages)+len(categories)+len(published))
	entries = append(entries, sitemapEntry{loc: g.urls.Home(), lastmod: now, changefreq: "hourly", priority: 1.0})

	for _, page := range g.site.StaticPages {
		entries = append(entries, sitemapEntry{
			loc:        g.urls.Page(page.Path),
			lastmod:    now,
			changefreq: page.ChangeFreq,
			priority:   page.Priority,
		})
	}

	fresh := freshCategories(published, now)
	for _, cat := range categories {
		priority := olderPriority
		if fresh[cat.ID] || fresh[cat.Slug] {
			priority = recentPriority
		}
		entries = append(entries, sitemapEntry{
			loc:        g.urls.Category(cat.Slug),
			lastmod:    now,
			changefreq: "daily",
			priority:   priority,
		})
	}

	for i := range published {
		a := &published[i]
		entries = append(entries, sitemapEntry{
			loc:        g.urls.Article(a.Slug),
			lastmod:    a.LastModified().UTC(),
			changefreq: "daily",
			priority:   ArticlePriority(a.PublishedAt, now),
			article:    a,
		})
	}

	var b strings.Builder
	b.WriteString(sitemapHeader)
	for _, e := range entries {
		g.writeEntry(&b, e)
	}
	b.WriteString(sitemapFooter)
	return []byte(b.String())
}

// ArticlePriority applies the recency policy: strictly younger than RecentWindow is 0.9.
func ArticlePriority(publishedAt, now time.Time) float64 {
	if now.Sub(publishedAt) < RecentWindow {
		return recentPriority
	}
	return olderPriority
}

func (g *Generator) writeEntry(b *strings.Builder, e sitemapEntry) {
	b.WriteString("  <url>\n")
	fmt.Fprintf(b, "    <loc>%s</loc>\n", escape(e.loc))
	fmt.Fprintf(b, "    <lastmod>%s</lastmod>\n", e.lastmod.Format(dateLayout))
	fmt.Fprintf(b, "    <changefreq>%s</changefreq>\n", escape(e.changefreq))
	fmt.Fprintf(b, "    <priority>%.1f</priority>\n", e.priority)

	if a := e.article; a != nil {
		b.WriteString("    <news:news>\n")
		b.WriteString("      <news:publication>\n")
		fmt.Fprintf(b, "        <news:name>%s</news:name>\n", escape(g.site.Name))
		fmt.Fprintf(b, "        <news:language>%s</news:language>\n", escape(g.site.Language))
		b.WriteString("      </news:publication>\n")
		fmt.Fprintf(b, "      <news:publication_date>%s</news:publication_date>\n", a.PublishedAt.UTC().Format(dateLayout))
		fmt.Fprintf(b, "      <news:title>%s</news:title>\n", escape(a.Title))
		if kw := keywords(*a); kw != "" {
			fmt.Fprintf(b, "      <news:keywords>%s</news:keywords>\n", escape(kw))
		}
		b.WriteString("    </news:news>\n")

		if strings.TrimSpace(a.FeaturedImage) != "" {
			b.WriteString("    <image:image>\n")
			fmt.Fprintf(b, "      <image:loc>%s</image:loc>\n", escape(g.urls.Image(a.FeaturedImage)))
			fmt.Fprintf(b, "      <image:title>%s</image:title>\n", escape(a.Title))
			if caption := strings.TrimSpace(a.Excerpt); caption != "" {
				fmt.Fprintf(b, "      <image:caption>%s</image:caption>\n", escape(caption))
			}
			b.WriteString("    </image:image>\n")
		}
	}
	b.WriteString("  </url>\n")
}

func eligible(articles []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if a.Eligible() {
			out = append(out, a)
		}
	}
	return out
}

func freshCategories(articles []domain.Article, now time.Time) map[string]bool {
	fresh := make(map[string]bool)
	for _, a := range articles {
		if ArticlePriority(a.PublishedAt, now) != recentPriority {
			continue
		}
		if a.Category.ID != "" {
			fresh[a.Category.ID] = true
		}
		if a.Category.Slug != "" {
			fresh[a.Category.Slug] = true
		}
	}
	return fresh
}

func keywords(a domain.Article) string {
	seen := make(map[string]struct{}, len(a.Tags)+1)
	out := make([]string, 0, len(a.Tags)+1)
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	for _, t := range a.Tags {
		add(t)
	}
	add(a.Category.Name)
	return strings.Join(out, ", ")
}
