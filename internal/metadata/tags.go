package metadata

import (
	"strings"

	"NewsIndexer/internal/content"
	"NewsIndexer/internal/domain"
)

// Tag is one <meta> element; Attr is "property" or "name".
type Tag struct {
	Attr    string `json:"attr"`
	Key     string `json:"key"`
	Content string `json:"content"`
}

func property(key, value string) Tag {
	return Tag{Attr: "property", Key: key, Content: value}
}

func name(key, value string) Tag {
	return Tag{Attr: "name", Key: key, Content: value}
}

// SocialTags builds Open Graph, Twitter Card and LinkedIn tags.
func (g *Generator) SocialTags(a domain.Article) []Tag {
	title := content.Truncate(a.Title, TitleLimit)
	desc := content.Truncate(g.description(a), DescriptionLimit)
	url := g.urls.Article(a.Slug)
	image := g.urls.Image(a.FeaturedImage)

	tags := []Tag{
		property("og:type", "article"),
		property("og:site_name", g.site.Name),
		property("og:title", title),
		property("og:description", desc),
		property("og:url", url),
		property("og:image", image),
		property("og:image:alt", title),
	}
	if g.site.Locale != "" {
		tags = append(tags, property("og:locale", g.site.Locale))
	}
	if ts := formatTime(a.PublishedAt); ts != "" {
		tags = append(tags, property("article:published_time", ts))
	}
	if ts := formatTime(a.LastModified()); ts != "" {
		tags = append(tags, property("article:modified_time", ts))
	}
	if a.Category.Name != "" {
		tags = append(tags, property("article:section", a.Category.Name))
	}
	if a.Author.Name != "" {
		tags = append(tags, property("article:author", a.Author.Name))
	}
	for _, t := range a.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, property("article:tag", t))
		}
	}

	tags = append(tags,
		name("twitter:card", "summary_large_image"),
		name("twitter:title", title),
		name("twitter:description", desc),
		name("twitter:image", image),
		name("twitter:image:alt", title),
	)
	if g.site.TwitterHandle != "" {
		tags = append(tags, name("twitter:site", g.site.TwitterHandle))
	}

	tags = append(tags,
		property("linkedin:title", title),
		property("linkedin:description", desc),
		property("linkedin:image", image),
	)
	return tags
}

// SearchMeta holds the crawler directives and document meta of an article page.
type SearchMeta struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Canonical     string   `json:"canonical"`
	Robots        string   `json:"robots"`
	Googlebot     string   `json:"googlebot"`
	GooglebotNews string   `json:"googlebotNews"`
	Keywords      []string `json:"keywords"`
	NewsKeywords  string   `json:"newsKeywords"`
	Author        string   `json:"author,omitempty"`
	Language      string   `json:"language"`
	GeoRegion     string   `json:"geoRegion,omitempty"`
	GeoPlacename  string   `json:"geoPlacename,omitempty"`
}

// SearchMetaTags builds canonical, robots, geo and keyword metadata.
func (g *Generator) SearchMetaTags(a domain.Article) SearchMeta {
	keywords := g.Keywords(a)
	return SearchMeta{
		Title:         content.Truncate(a.Title, TitleLimit),
		Description:   content.Truncate(g.description(a), DescriptionLimit),
		Canonical:     g.urls.Article(a.Slug),
		Robots:        robotsDirective,
		Googlebot:     robotsDirective,
		GooglebotNews: newsDirective,
		Keywords:      keywords,
		NewsKeywords:  strings.Join(keywords, ", "),
		Author:        a.Author.Name,
		Language:      g.site.Language,
		GeoRegion:     g.site.Region,
		GeoPlacename:  g.site.Placename,
	}
}

// Tags flattens search metadata into <meta> elements.
func (m SearchMeta) Tags() []Tag {
	tags := []Tag{
		name("description", m.Description),
		name("robots", m.Robots),
		name("googlebot", m.Googlebot),
		name("googlebot-news", m.GooglebotNews),
		name("keywords", strings.Join(m.Keywords, ", ")),
		name("news_keywords", m.NewsKeywords),
		name("language", m.Language),
	}
	if m.Author != "" {
		tags = append(tags, name("author", m.Author))
	}
	if m.GeoRegion != "" {
		tags = append(tags, name("geo.region", m.GeoRegion))
	}
	if m.GeoPlacename != "" {
		tags = append(tags, name("geo.placename", m.GeoPlacename))
	}
	return tags
}
