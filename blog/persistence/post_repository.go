package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zhishu/website/blog/domain"
	"github.com/zhishu/website/shared/db"
)

var _ domain.PostRepository = (*SQLitePostRepository)(nil)

// timeLayout is fixed width so lexical order on the TEXT columns matches time order
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLitePostRepository implements domain.PostRepository using SQL database (SQLite)
type SQLitePostRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostRepository creates a new SQLitePostRepository from a standard sql.DB
func NewPostRepository(db *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{
		db:  db,
		now: utcNow,
	}
}

const postColumns = `id, title, slug, excerpt, content, cover_image, category,
	author_name, author_title, author_avatar, published, created_at, updated_at`

const listAllPostsQuery = `
	SELECT ` + postColumns + `
	FROM posts
	ORDER BY created_at DESC
`

const listPublishedPostsQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE published = 1
	ORDER BY created_at DESC
`

const listPostsByCategoryQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE published = 1 AND category = ?
	ORDER BY created_at DESC
`

const getPostBySlugQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE slug = ?
	ORDER BY created_at DESC
	LIMIT 1
`

const getPostByIDQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE id = ?
`

const insertPostQuery = `
	INSERT INTO posts (` + postColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updatePostQuery = `
	UPDATE posts
	SET title = ?, slug = ?, excerpt = ?, content = ?, cover_image = ?, category = ?,
		author_name = ?, author_title = ?, author_avatar = ?, published = ?, updated_at = ?
	WHERE id = ?
`

const deletePostQuery = `DELETE FROM posts WHERE id = ?`

func (r *SQLitePostRepository) ListAll(ctx context.Context) ([]*domain.Post, error) {
	return r.list(ctx, "all posts", listAllPostsQuery)
}

func (r *SQLitePostRepository) ListPublished(ctx context.Context) ([]*domain.Post, error) {
	return r.list(ctx, "published posts", listPublishedPostsQuery)
}

// ListByCategory returns published posts in category; CategoryLatest matches every category
func (r *SQLitePostRepository) ListByCategory(ctx context.Context, category domain.Category) ([]*domain.Post, error) {
	if category == domain.CategoryLatest {
		return r.ListPublished(ctx)
	}
	return r.list(ctx, "posts by category", listPostsByCategoryQuery, string(category))
}

// GetBySlug returns the post with slug, published or not
func (r *SQLitePostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	post, err := r.get(ctx, getPostBySlugQuery, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: slug %s", domain.ErrPostNotFound, slug)
	}
	return post, err
}

func (r *SQLitePostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	post, err := r.get(ctx, getPostByIDQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, id)
	}
	return post, err
}

func (r *SQLitePostRepository) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: post cannot be nil", domain.ErrInvalidPost)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: post ID cannot be empty", domain.ErrInvalidPost)
	}

	row := rowFromDomain(p)
	executor := db.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, insertPostQuery,
		row.ID,
		row.Title,
		row.Slug,
		row.Excerpt,
		row.Content,
		row.CoverImage,
		row.Category,
		row.AuthorName,
		row.AuthorTitle,
		row.AuthorAvatar,
		row.Published,
		row.CreatedAt,
		row.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	created := *p
	return &created, nil
}

// Update reads, patches and writes the post inside one transaction
func (r *SQLitePostRepository) Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	var updated domain.Post

	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		current, err := r.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		updated = patch.Apply(*current)
		updated.UpdatedAt = nextUpdatedAt(current.UpdatedAt, r.now())

		row := rowFromDomain(&updated)
		executor := db.GetExecutor(txCtx, r.db)
		_, err = executor.ExecContext(txCtx, updatePostQuery,
			row.Title,
			row.Slug,
			row.Excerpt,
			row.Content,
			row.CoverImage,
			row.Category,
			row.AuthorName,
			row.AuthorTitle,
			row.AuthorAvatar,
			row.Published,
			row.UpdatedAt,
			row.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *SQLitePostRepository) Delete(ctx context.Context, id string) (bool, error) {
	executor := db.GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, deletePostQuery, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read deleted rows: %w", err)
	}
	return n > 0, nil
}

func (r *SQLitePostRepository) get(ctx context.Context, query string, arg string) (*domain.Post, error) {
	executor := db.GetExecutor(ctx, r.db)

	var row postRow
	err := row.scan(executor.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return row.toDomain()
}

func (r *SQLitePostRepository) list(ctx context.Context, what string, query string, args ...any) ([]*domain.Post, error) {
	executor := db.GetExecutor(ctx, r.db)

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		var row postRow
		if err := row.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		post, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// postRow is a private struct used to scan database rows.
// Timestamps are stored as timeLayout text.
type postRow struct {
	ID           string `db:"id"`
	Title        string `db:"title"`
	Slug         string `db:"slug"`
	Excerpt      string `db:"excerpt"`
	Content      string `db:"content"`
	CoverImage   string `db:"cover_image"`
	Category     string `db:"category"`
	AuthorName   string `db:"author_name"`
	AuthorTitle  string `db:"author_title"`
	AuthorAvatar string `db:"author_avatar"`
	Published    bool   `db:"published"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

func (pr *postRow) scan(s scanner) error {
	return s.Scan(
		&pr.ID,
		&pr.Title,
		&pr.Slug,
		&pr.Excerpt,
		&pr.Content,
		&pr.CoverImage,
		&pr.Category,
		&pr.AuthorName,
		&pr.AuthorTitle,
		&pr.AuthorAvatar,
		&pr.Published,
		&pr.CreatedAt,
		&pr.UpdatedAt,
	)
}

func rowFromDomain(p *domain.Post) postRow {
	return postRow{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Excerpt:      p.Excerpt,
		Content:      p.Content,
		CoverImage:   p.CoverImage,
		Category:     string(p.Category),
		AuthorName:   p.Author.Name,
		AuthorTitle:  p.Author.Title,
		AuthorAvatar: p.Author.Avatar,
		Published:    p.Published,
		CreatedAt:    p.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:    p.UpdatedAt.UTC().Format(timeLayout),
	}
}

// toDomain converts a postRow to a domain.Post
func (pr *postRow) toDomain() (*domain.Post, error) {
	createdAt, err := time.Parse(timeLayout, pr.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for post %s: %w", pr.ID, err)
	}
	updatedAt, err := time.Parse(timeLayout, pr.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at for post %s: %w", pr.ID, err)
	}

	return &domain.Post{
		ID:         pr.ID,
		Title:      pr.Title,
		Slug:       pr.Slug,
		Excerpt:    pr.Excerpt,
		Content:    pr.Content,
		CoverImage: pr.CoverImage,
		Category:   domain.NormalizeCategory(pr.Category),
		Author: domain.Author{
			Name:   pr.AuthorName,
			Title:  pr.AuthorTitle,
			Avatar: pr.AuthorAvatar,
		},
		Published: pr.Published,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
