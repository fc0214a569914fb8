package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidPost  = errors.New("invalid post")
)

// Author is the free-text attribution shown on a post.
type Author struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Avatar string `json:"avatar"`
}

// Post represents a blog post.
// ID and CreatedAt never change once assigned; UpdatedAt is refreshed by every mutation.
// Unpublished posts are hidden from listings but stay reachable by slug and id.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `json:"content"`
	CoverImage string    `json:"coverImage"`
	Category   Category  `json:"category"`
	Author     Author    `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Published  bool      `json:"published"`
}

// PostPatch is a shallow partial update. Nil fields are left untouched.
// Identity and lifecycle timestamps are not patchable.
type PostPatch struct {
	Title      *string   `json:"title,omitempty"`
	Slug       *string   `json:"slug,omitempty"`
	Excerpt    *string   `json:"excerpt,omitempty"`
	Content    *string   `json:"content,omitempty"`
	CoverImage *string   `json:"coverImage,omitempty"`
	Category   *Category `json:"category,omitempty"`
	Author     *Author   `json:"author,omitempty"`
	Published  *bool     `json:"published,omitempty"`
}

// Apply merges the patch over p and returns the result. p is not modified.
func (pp PostPatch) Apply(p Post) Post {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Slug != nil {
		p.Slug = *pp.Slug
	}
	if pp.Excerpt != nil {
		p.Excerpt = *pp.Excerpt
	}
	if pp.Content != nil {
		p.Content = *pp.Content
	}
	if pp.CoverImage != nil {
		p.CoverImage = *pp.CoverImage
	}
	if pp.Category != nil {
		p.Category = NormalizeCategory(string(*pp.Category))
	}
	if pp.Author != nil {
		p.Author = *pp.Author
	}
	if pp.Published != nil {
		p.Published = *pp.Published
	}
	return p
}

// PostRepository is the only access path to post data.
// Lookups of absent posts return ErrPostNotFound; Delete reports a miss as false.
type PostRepository interface {
	// ListAll returns every post, newest first by CreatedAt.
	ListAll(ctx context.Context) ([]*Post, error)
	ListPublished(ctx context.Context) ([]*Post, error)
	// ListByCategory treats CategoryLatest as "all published posts".
	ListByCategory(ctx context.Context, category Category) ([]*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)

	// Create appends a fully formed post. Callers guarantee id uniqueness.
	Create(ctx context.Context, p *Post) (*Post, error)
	// Update merges patch over the stored post and stamps UpdatedAt.
	Update(ctx context.Context, id string, patch PostPatch) (*Post, error)
	Delete(ctx context.Context, id string) (bool, error)
}
