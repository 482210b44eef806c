package metadata

import (
	"NewsIndexer/internal/content"
	"NewsIndexer/internal/domain"
)

const schemaContext = "https://schema.org"

var speakableSelectors = []string{".article-title", ".article-excerpt"}

// NewsArticle is the JSON-LD document embedded in article pages.
type NewsArticle struct {
	Context          string       `json:"@context"`
	Type             string       `json:"@type"`
	Headline         string       `json:"headline"`
	Description      string       `json:"description"`
	URL              string       `json:"url"`
	Image            []string     `json:"image"`
	DatePublished    string       `json:"datePublished"`
	DateModified     string       `json:"dateModified"`
	Author           Person       `json:"author"`
	Publisher        Organization `json:"publisher"`
	MainEntityOfPage WebPage      `json:"mainEntityOfPage"`
	ArticleSection   string       `json:"articleSection,omitempty"`
	Keywords         []string     `json:"keywords,omitempty"`
	WordCount        int          `json:"wordCount"`
	TimeRequired     string       `json:"timeRequired"`
	InLanguage       string       `json:"inLanguage"`
	Speakable        Speakable    `json:"speakable"`
}

type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type Organization struct {
	Type string      `json:"@type"`
	Name string      `json:"name"`
	URL  string      `json:"url"`
	Logo ImageObject `json:"logo"`
}

type ImageObject struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

type WebPage struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

// Speakable marks the page regions suited to text-to-speech.
type Speakable struct {
	Type        string   `json:"@type"`
	CSSSelector []string `json:"cssSelector"`
}

// ArticleSchema builds the NewsArticle JSON-LD for a.
func (g *Generator) ArticleSchema(a domain.Article) NewsArticle {
	url := g.urls.Article(a.Slug)
	words := content.WordCount(a.Content)

	author := a.Author.Name
	if author == "" {
		author = g.site.Name
	}

	publisher := Organization{
		Type: "Organization",
		Name: g.site.Name,
		URL:  g.urls.Home(),
		Logo: ImageObject{Type: "ImageObject", URL: g.urls.Image(g.site.LogoURL)},
	}

	return NewsArticle{
		Context:          schemaContext,
		Type:             "NewsArticle",
		Headline:         content.Truncate(a.Title, 110),
		Description:      content.Truncate(g.description(a), DescriptionLimit),
		URL:              url,
		Image:            []string{g.urls.Image(a.FeaturedImage)},
		DatePublished:    formatTime(a.PublishedAt),
		DateModified:     formatTime(a.LastModified()),
		Author:           Person{Type: "Person", Name: author},
		Publisher:        publisher,
		MainEntityOfPage: WebPage{Type: "WebPage", ID: url},
		ArticleSection:   a.Category.Name,
		Keywords:         g.Keywords(a),
		WordCount:        words,
		TimeRequired:     durationISO(g.readMinutes(a, words)),
		InLanguage:       g.site.Language,
		Speakable:        Speakable{Type: "SpeakableSpecification", CSSSelector: speakableSelectors},
	}
}
