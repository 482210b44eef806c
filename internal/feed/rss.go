package feed

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"NewsIndexer/internal/content"
	"NewsIndexer/internal/domain"
)

const (
	defaultFeedLimit = 50
	minFeedLimit     = 20
	maxFeedLimit     = 50

	rssHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom"` +
		` xmlns:content="http://purl.org/rss/1.0/modules/content/"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/">` + "\n"
)

// RSS renders the channel with the newest eligible articles, newest first.
func (g *Generator) RSS(articles []domain.Article) []byte {
	now := g.now().UTC()
	items := Latest(articles, g.limit())

	title := g.feed.Title
	if title == "" {
		title = g.site.Name
	}

	var b strings.Builder
	b.WriteString(rssHeader)
	b.WriteString("  <channel>\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", escape(title))
	fmt.Fprintf(&b, "    <link>%s</link>\n", escape(g.urls.Home()))
	fmt.Fprintf(&b, "    <description>%s</description>\n", escape(g.site.Description))
	fmt.Fprintf(&b, "    <language>%s</language>\n", escape(g.site.Language))
	fmt.Fprintf(&b, "    <lastBuildDate>%s</lastBuildDate>\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\"/>\n", escape(g.urls.Feed()))
	if g.site.LogoURL != "" {
		b.WriteString("    <image>\n")
		fmt.Fprintf(&b, "      <url>%s</url>\n", escape(g.urls.Image(g.site.LogoURL)))
		fmt.Fprintf(&b, "      <title>%s</title>\n", escape(title))
		fmt.Fprintf(&b, "      <link>%s</link>\n", escape(g.urls.Home()))
		b.WriteString("    </image>\n")
	}

	for _, a := range items {
		g.writeItem(&b, a)
	}

	b.WriteString("  </channel>\n")
	b.WriteString("</rss>\n")
	return []byte(b.String())
}

func (g *Generator) writeItem(b *strings.Builder, a domain.Article) {
	link := g.urls.Article(a.Slug)
	image := g.urls.Image(a.FeaturedImage)

	body, err := content.RenderHTML(a.Content)
	if err != nil {
		body = a.Content
	}

	b.WriteString("    <item>\n")
	fmt.Fprintf(b, "      <title>%s</title>\n", escape(a.Title))
	fmt.Fprintf(b, "      <link>%s</link>\n", escape(link))
	fmt.Fprintf(b, "      <guid isPermaLink=\"true\">%s</guid>\n", escape(link))
	fmt.Fprintf(b, "      <description>%s</description>\n", escape(a.Excerpt))
	fmt.Fprintf(b, "      <content:encoded>%s</content:encoded>\n", cdata(body))
	fmt.Fprintf(b, "      <pubDate>%s</pubDate>\n", a.PublishedAt.UTC().Format(time.RFC1123Z))
	if a.Author.Name != "" {
		fmt.Fprintf(b, "      <dc:creator>%s</dc:creator>\n", escape(a.Author.Name))
	}
	if a.Category.Name != "" {
		fmt.Fprintf(b, "      <category>%s</category>\n", escape(a.Category.Name))
	}
	fmt.Fprintf(b, "      <enclosure url=\"%s\" type=\"%s\" length=\"0\"/>\n", escape(image), imageType(image))
	b.WriteString("    </item>\n")
}

// Latest returns up to limit eligible articles ordered by publish date, newest first.
func Latest(articles []domain.Article, limit int) []domain.Article {
	out := eligible(articles)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (g *Generator) limit() int {
	switch n := g.feed.Limit; {
	case n == 0:
		return defaultFeedLimit
	case n < minFeedLimit:
		return minFeedLimit
	case n > maxFeedLimit:
		return maxFeedLimit
	default:
		return n
	}
}

func imageType(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	switch strings.ToLower(path.Ext(u)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/jpeg"
	}
}
