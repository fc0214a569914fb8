package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zhishu/website/blog/domain"
)

var _ domain.PostRepository = (*JSONPostRepository)(nil)

// JSONPostRepository implements domain.PostRepository over a single JSON array file.
// Every operation re-reads the file and every write re-serializes the whole collection.
// The mutex serializes read-modify-write cycles within the process; separate processes
// sharing the file are not coordinated.
type JSONPostRepository struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewJSONPostRepository creates a repository backed by the file at path.
// The file and its directory are created lazily on first access.
func NewJSONPostRepository(path string) *JSONPostRepository {
	return &JSONPostRepository{
		path: path,
		now:  utcNow,
	}
}

// load reads the collection newest first. Callers must hold r.mu.
func (r *JSONPostRepository) load() ([]*domain.Post, error) {
	if err := ensureFile(r.path, []byte("[]")); err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0)
	if err := readJSON(r.path, &posts); err != nil {
		return nil, err
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (r *JSONPostRepository) save(posts []*domain.Post) error {
	if err := writeJSON(r.path, posts); err != nil {
		return fmt.Errorf("failed to save posts: %w", err)
	}
	return nil
}

// ListAll returns every post ordered by creation time descending
func (r *JSONPostRepository) ListAll(ctx context.Context) ([]*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

func (r *JSONPostRepository) ListPublished(ctx context.Context) ([]*domain.Post, error) {
	posts, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterPublished(posts), nil
}

func (r *JSONPostRepository) ListByCategory(ctx context.Context, category domain.Category) ([]*domain.Post, error) {
	posts, err := r.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	return filterCategory(posts, category), nil
}

// GetBySlug scans all posts, published or not
func (r *JSONPostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	posts, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: slug %s", domain.ErrPostNotFound, slug)
}

func (r *JSONPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	posts, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, id)
}

// Create appends p and persists the collection. Duplicate ids are not checked.
func (r *JSONPostRepository) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: post cannot be nil", domain.ErrInvalidPost)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load()
	if err != nil {
		return nil, err
	}

	created := *p
	posts = append(posts, &created)
	if err := r.save(posts); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update merges patch over the stored post. The store's UpdatedAt stamp always wins.
func (r *JSONPostRepository) Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load()
	if err != nil {
		return nil, err
	}

	for i, p := range posts {
		if p.ID != id {
			continue
		}

		updated := patch.Apply(*p)
		updated.UpdatedAt = nextUpdatedAt(p.UpdatedAt, r.now())
		posts[i] = &updated

		if err := r.save(posts); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, id)
}

// Delete hard-deletes the post with the given id. The file is only rewritten on removal.
func (r *JSONPostRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load()
	if err != nil {
		return false, err
	}

	kept := make([]*domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(posts) {
		return false, nil
	}

	if err := r.save(kept); err != nil {
		return false, err
	}
	return true, nil
}
