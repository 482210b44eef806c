package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/ports"
)

// ErrArticleNotFound is returned when no article carries the requested slug.
var ErrArticleNotFound = errors.New("article not found")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var articleColumns = []string{
	"a.id",
	"a.slug",
	"a.title",
	"COALESCE(a.excerpt, '') AS excerpt",
	"COALESCE(a.content, '') AS content",
	"COALESCE(a.featured_image, '') AS featured_image",
	"COALESCE(a.author_id::text, '') AS author_id",
	"COALESCE(p.name, '') AS author_name",
	"COALESCE(a.category_id::text, '') AS category_id",
	"COALESCE(c.name, '') AS category_name",
	"COALESCE(c.slug, '') AS category_slug",
	"COALESCE(c.color, '') AS category_color",
	"COALESCE(a.tags, '{}') AS tags",
	"a.status",
	"a.published_at",
	"a.updated_at",
	"COALESCE(a.views, 0) AS views",
	"COALESCE(a.featured, false) AS featured",
	"COALESCE(a.trending, false) AS trending",
	"COALESCE(a.read_time, 0) AS read_time",
}

// PostgresRepository reads articles and categories from the CMS database.
type PostgresRepository struct {
	db *sqlx.DB
}

var _ ports.ArticleStore = (*PostgresRepository)(nil)

// Open connects to Postgres through lib/pq.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sqlx.DB implementation.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type articleRow struct {
	ID            string         `db:"id"`
	Slug          string         `db:"slug"`
	Title         string         `db:"title"`
	Excerpt       string         `db:"excerpt"`
	Content       string         `db:"content"`
	FeaturedImage string         `db:"featured_image"`
	AuthorID      string         `db:"author_id"`
	AuthorName    string         `db:"author_name"`
	CategoryID    string         `db:"category_id"`
	CategoryName  string         `db:"category_name"`
	CategorySlug  string         `db:"category_slug"`
	CategoryColor string         `db:"category_color"`
	Tags          pq.StringArray `db:"tags"`
	Status        string         `db:"status"`
	PublishedAt   sql.NullTime   `db:"published_at"`
	UpdatedAt     sql.NullTime   `db:"updated_at"`
	Views         int64          `db:"views"`
	Featured      bool           `db:"featured"`
	Trending      bool           `db:"trending"`
	ReadTime      int            `db:"read_time"`
}

func (r articleRow) toDomain() domain.Article {
	a := domain.Article{
		ID:            r.ID,
		Slug:          r.Slug,
		Title:         r.Title,
		Excerpt:       r.Excerpt,
		Content:       r.Content,
		FeaturedImage: r.FeaturedImage,
		Author:        domain.Author{ID: r.AuthorID, Name: r.AuthorName},
		Category: domain.CategoryRef{
			ID:    r.CategoryID,
			Name:  r.CategoryName,
			Slug:  r.CategorySlug,
			Color: r.CategoryColor,
		},
		Tags:     []string(r.Tags),
		Status:   domain.ArticleStatus(strings.ToLower(r.Status)),
		Views:    r.Views,
		Featured: r.Featured,
		Trending: r.Trending,
		ReadTime: r.ReadTime,
	}
	if r.PublishedAt.Valid {
		a.PublishedAt = r.PublishedAt.Time.UTC()
	}
	if r.UpdatedAt.Valid {
		a.UpdatedAt = r.UpdatedAt.Time.UTC()
	}
	return a
}

func articlesQuery() sq.SelectBuilder {
	return psql.Select(articleColumns...).
		From("articles a").
		LeftJoin("profiles p ON p.id = a.author_id").
		LeftJoin("categories c ON c.id = a.category_id")
}

func listPublishedQuery(until time.Time) sq.SelectBuilder {
	return articlesQuery().
		Where(sq.Eq{"a.status": string(domain.StatusPublished)}).
		Where(sq.LtOrEq{"a.published_at": until}).
		OrderBy("a.published_at DESC")
}

func bySlugQuery(slug string) sq.SelectBuilder {
	return articlesQuery().Where(sq.Eq{"a.slug": slug}).Limit(1)
}

func categoriesQuery() sq.SelectBuilder {
	return psql.Select(
		"id::text AS id",
		"name",
		"slug",
		"COALESCE(description, '') AS description",
		"COALESCE(color, '') AS color",
		"COALESCE(icon, '') AS icon",
	).From("categories").OrderBy("name ASC")
}

// ListPublished returns every published article, newest first. Scheduled
// articles with a future publish date are left out.
func (r *PostgresRepository) ListPublished(ctx context.Context) ([]domain.Article, error) {
	query, args, err := listPublishedQuery(time.Now().UTC()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build published query: %w", err)
	}

	var rows []articleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query published articles: %w", err)
	}

	out := make([]domain.Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// GetBySlug loads one article regardless of status.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (domain.Article, error) {
	query, args, err := bySlugQuery(slug).ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build slug query: %w", err)
	}

	var row articleRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Article{}, fmt.Errorf("%w: %s", ErrArticleNotFound, slug)
		}
		return domain.Article{}, fmt.Errorf("query article %s: %w", slug, err)
	}
	return row.toDomain(), nil
}

// ListCategories returns all categories ordered by name.
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query, args, err := categoriesQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories query: %w", err)
	}

	var categories []domain.Category
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return categories, nil
}
