package domain

import (
	"strings"
	"time"
)

// ArticleStatus mirrors the editorial workflow state kept by the content store.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
	StatusArchived  ArticleStatus = "archived"
)

// Author is the byline attached to an article.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRef is the category summary embedded in an article.
type CategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

// Article is the read model supplied by the content store after a publish or update.
type Article struct {
	ID            string        `json:"id"`
	Slug          string        `json:"slug"`
	Title         string        `json:"title"`
	Excerpt       string        `json:"excerpt"`
	Content       string        `json:"content"`
	FeaturedImage string        `json:"featuredImage"`
	Author        Author        `json:"author"`
	Category      CategoryRef   `json:"category"`
	Tags          []string      `json:"tags"`
	Status        ArticleStatus `json:"status"`
	PublishedAt   time.Time     `json:"publishedAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Views         int64         `json:"views"`
	Featured      bool          `json:"featured"`
	Trending      bool          `json:"trending"`
	ReadTime      int           `json:"readTime"`
}

// Eligible reports whether the article may enter the sitemap, feed or indexing pipeline.
func (a Article) Eligible() bool {
	return strings.TrimSpace(a.ID) != "" &&
		strings.TrimSpace(a.Title) != "" &&
		strings.TrimSpace(a.Content) != "" &&
		a.Status == StatusPublished
}

// LastModified returns the update timestamp, falling back to the publish date.
func (a Article) LastModified() time.Time {
	if a.UpdatedAt.After(a.PublishedAt) {
		return a.UpdatedAt
	}
	return a.PublishedAt
}

// Category is a site section owned by the content store.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}
