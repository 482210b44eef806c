package metadata

import (
	"fmt"
	"strings"
	"time"

	"NewsIndexer/internal/config"
	"NewsIndexer/internal/content"
	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/siteurl"
)

const (
	TitleLimit       = 60
	DescriptionLimit = 160

	robotsDirective = "index, follow, max-image-preview:large, max-snippet:-1, max-video-preview:-1"
	newsDirective   = "index, follow"
)

// Generator derives structured data and head tags for an article page.
type Generator struct {
	site config.SiteConfig
	urls siteurl.Builder
}

// NewGenerator wires site settings into a metadata generator.
func NewGenerator(site config.SiteConfig) *Generator {
	return &Generator{site: site, urls: siteurl.New(site)}
}

// Bundle is every metadata artefact of one article.
type Bundle struct {
	Schema NewsArticle `json:"schema"`
	Social []Tag       `json:"social"`
	Search SearchMeta  `json:"search"`
}

// All builds schema, social and search metadata together.
func (g *Generator) All(a domain.Article) Bundle {
	return Bundle{
		Schema: g.ArticleSchema(a),
		Social: g.SocialTags(a),
		Search: g.SearchMetaTags(a),
	}
}

func (g *Generator) description(a domain.Article) string {
	if s := strings.TrimSpace(a.Excerpt); s != "" {
		return content.PlainText(s)
	}
	return content.PlainText(a.Content)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (g *Generator) readMinutes(a domain.Article, words int) int {
	if a.ReadTime > 0 {
		return a.ReadTime
	}
	return content.ReadingMinutes(words)
}

// Keywords merges tags, the category name and site keywords, keeping first spelling.
func (g *Generator) Keywords(a domain.Article) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(a.Tags)+1+len(g.site.Keywords))

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		key := strings.ToLower(s)
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
	for _, k := range g.site.Keywords {
		add(k)
	}
	return out
}

func durationISO(minutes int) string {
	return fmt.Sprintf("PT%dM", minutes)
}
