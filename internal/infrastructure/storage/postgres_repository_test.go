package storage

import (
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsIndexer/internal/domain"
)

func TestListPublishedQuery(t *testing.T) {
	t.Parallel()

	until := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	query, args, err := listPublishedQuery(until).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM articles a")
	assert.Contains(t, query, "LEFT JOIN profiles p ON p.id = a.author_id")
	assert.Contains(t, query, "LEFT JOIN categories c ON c.id = a.category_id")
	assert.Contains(t, query, "a.status = $1")
	assert.Contains(t, query, "a.published_at <= $2")
	assert.Contains(t, query, "ORDER BY a.published_at DESC")
	assert.Equal(t, []any{"published", until}, args)
}

func TestBySlugQuery(t *testing.T) {
	t.Parallel()

	query, args, err := bySlugQuery("ghana-economy-recovery").ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "WHERE a.slug = $1")
	assert.Contains(t, query, "LIMIT 1")
	assert.Equal(t, []any{"ghana-economy-recovery"}, args)
}

func TestCategoriesQuery(t *testing.T) {
	t.Parallel()

	query, args, err := categoriesQuery().ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id::text AS id, name, slug, COALESCE(description, '') AS description, "+
		"COALESCE(color, '') AS color, COALESCE(icon, '') AS icon FROM categories ORDER BY name ASC", query)
	assert.Empty(t, args)
}

func TestArticleRowToDomain(t *testing.T) {
	t.Parallel()

	published := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.FixedZone("GMT+1", 3600))
	row := articleRow{
		ID:            "42",
		Slug:          "ghana-economy-recovery",
		Title:         "Ghana economy recovery",
		Content:       "<p>body</p>",
		AuthorID:      "7",
		AuthorName:    "Ama Owusu",
		CategoryID:    "c2",
		CategoryName:  "Business",
		CategorySlug:  "business",
		CategoryColor: "#0f766e",
		Tags:          pq.StringArray{"economy", "inflation"},
		Status:        "PUBLISHED",
		PublishedAt:   sql.NullTime{Time: published, Valid: true},
		Views:         1200,
		ReadTime:      4,
	}

	a := row.toDomain()

	assert.Equal(t, domain.StatusPublished, a.Status)
	assert.True(t, a.Eligible())
	assert.Equal(t, published.UTC(), a.PublishedAt)
	assert.True(t, a.UpdatedAt.IsZero())
	assert.Equal(t, published.UTC(), a.LastModified())
	assert.Equal(t, domain.CategoryRef{ID: "c2", Name: "Business", Slug: "business", Color: "#0f766e"}, a.Category)
	assert.Equal(t, []string{"economy", "inflation"}, a.Tags)
	assert.Equal(t, "Ama Owusu", a.Author.Name)
}
