package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zhishu/website/blog/domain"
)

const (
	DefaultCoverImage = "/images/illust-lightbulb.svg"
	DefaultAuthorName = "匿名"

	DefaultPageSize = 9
	MaxPageSize     = 50

	excerptRunes = 100
	relatedLimit = 3
)

// NewPost is the editor's create request
type NewPost struct {
	Title      string
	Content    string
	Excerpt    string
	CoverImage string
	Category   string
	Author     *domain.Author
	Format     string
}

// ListQuery selects published posts. An empty Category lists every published post.
// Pagination applies when Page or PageSize is set.
type ListQuery struct {
	Category string
	Locale   domain.Locale
	Page     int
	PageSize int
}

// PostPage is one page of a listing. Total counts the matches before pagination.
type PostPage struct {
	Posts []*domain.Post
	Total int
}

// PostDetail is a post with its published neighbours. Prev is older, Next is newer.
type PostDetail struct {
	Post    *domain.Post
	Prev    *domain.Post
	Next    *domain.Post
	Related []*domain.Post
}

type PostService struct {
	repo         domain.PostRepository
	translations *TranslationService
	markdown     MarkdownRenderer

	now   func() time.Time
	newID func() string
}

func NewPostService(repo domain.PostRepository, translations *TranslationService, markdown MarkdownRenderer) *PostService {
	return &PostService{
		repo:         repo,
		translations: translations,
		markdown:     markdown,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// Create validates the request, fills defaults and stores the new post
func (s *PostService) Create(ctx context.Context, in NewPost) (*domain.Post, error) {
	if strings.TrimSpace(in.Title) == "" || isEmptyContent(in.Content) {
		return nil, fmt.Errorf("%w: title and content are required", domain.ErrInvalidPost)
	}

	content, err := s.renderContent(in.Content, in.Format)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := &domain.Post{
		ID:         s.newID(),
		Title:      in.Title,
		Slug:       Slugify(in.Title, now),
		Excerpt:    in.Excerpt,
		Content:    content,
		CoverImage: in.CoverImage,
		Category:   domain.NormalizeCategory(in.Category),
		Author:     domain.Author{Name: DefaultAuthorName},
		CreatedAt:  now,
		UpdatedAt:  now,
		Published:  true,
	}
	if post.Excerpt == "" {
		post.Excerpt = truncateRunes(in.Title, excerptRunes)
	}
	if post.CoverImage == "" {
		post.CoverImage = DefaultCoverImage
	}
	if in.Author != nil {
		post.Author = *in.Author
		if strings.TrimSpace(post.Author.Name) == "" {
			post.Author.Name = DefaultAuthorName
		}
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	log.Info().Str("postID", created.ID).Str("slug", created.Slug).Msg("Post created")
	return created, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies patch to the post with id. Markdown content is rendered first.
func (s *PostService) Update(ctx context.Context, id string, patch domain.PostPatch, format string) (*domain.Post, error) {
	if patch.Content != nil {
		content, err := s.renderContent(*patch.Content, format)
		if err != nil {
			return nil, err
		}
		patch.Content = &content
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	log.Info().Str("postID", id).Msg("Post updated")
	return updated, nil
}

// Delete reports whether a post was removed
func (s *PostService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		log.Info().Str("postID", id).Msg("Post deleted")
	}
	return deleted, nil
}

// List returns published posts newest first. An unrecognized category matches nothing.
func (s *PostService) List(ctx context.Context, q ListQuery) (*PostPage, error) {
	var posts []*domain.Post
	var err error

	if q.Category == "" {
		posts, err = s.repo.ListPublished(ctx)
	} else if category, ok := domain.ParseCategory(q.Category); ok {
		posts, err = s.repo.ListByCategory(ctx, category)
	} else {
		posts = []*domain.Post{}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	page := &PostPage{Total: len(posts)}
	page.Posts = paginate(posts, q.Page, q.PageSize)
	page.Posts = s.localizeSummaries(ctx, page.Posts, q.Locale)

	return page, nil
}

// Detail loads a post by slug together with its neighbours and related posts.
// A draft is returned without neighbours since it has no place in the published order.
func (s *PostService) Detail(ctx context.Context, slug string, locale domain.Locale) (*PostDetail, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	published, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	detail := &PostDetail{Post: post, Related: []*domain.Post{}}
	for i, p := range published {
		if p.ID != post.ID {
			continue
		}
		if i+1 < len(published) {
			detail.Prev = published[i+1]
		}
		if i > 0 {
			detail.Next = published[i-1]
		}
		break
	}

	for _, p := range published {
		if len(detail.Related) == relatedLimit {
			break
		}
		if p.Category == post.Category && p.ID != post.ID {
			detail.Related = append(detail.Related, p)
		}
	}

	if locale == "" || locale == domain.SourceLocale {
		return detail, nil
	}

	return s.localizeDetail(ctx, detail, locale), nil
}

func (s *PostService) localizeDetail(ctx context.Context, detail *PostDetail, locale domain.Locale) *PostDetail {
	full, err := s.translations.TranslateFull(ctx, detail.Post.ID, detail.Post.Title, detail.Post.Excerpt, detail.Post.Content, locale)
	if err != nil && !errors.Is(err, domain.ErrTranslatorNotConfigured) {
		log.Warn().Err(err).Str("postID", detail.Post.ID).Msg("Serving untranslated post")
	}

	post := *detail.Post
	post.Title = full.Title
	post.Excerpt = full.Excerpt
	post.Content = full.Content

	neighbours := make([]*domain.Post, 0, len(detail.Related)+2)
	if detail.Prev != nil {
		neighbours = append(neighbours, detail.Prev)
	}
	if detail.Next != nil {
		neighbours = append(neighbours, detail.Next)
	}
	neighbours = append(neighbours, detail.Related...)

	localized := s.localizeSummaries(ctx, neighbours, locale)
	byID := make(map[string]*domain.Post, len(localized))
	for _, p := range localized {
		byID[p.ID] = p
	}

	out := &PostDetail{Post: &post, Related: make([]*domain.Post, 0, len(detail.Related))}
	if detail.Prev != nil {
		out.Prev = byID[detail.Prev.ID]
	}
	if detail.Next != nil {
		out.Next = byID[detail.Next.ID]
	}
	for _, p := range detail.Related {
		out.Related = append(out.Related, byID[p.ID])
	}
	return out
}

// localizeSummaries returns copies of posts with title and excerpt translated through the batch path
func (s *PostService) localizeSummaries(ctx context.Context, posts []*domain.Post, locale domain.Locale) []*domain.Post {
	if locale == "" || locale == domain.SourceLocale || len(posts) == 0 {
		return posts
	}

	inputs := make([]SummaryInput, 0, len(posts))
	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		inputs = append(inputs, SummaryInput{ID: p.ID, Title: p.Title, Excerpt: p.Excerpt})
	}

	summaries := s.translations.TranslateSummariesBatch(ctx, inputs, locale)

	localized := make([]*domain.Post, len(posts))
	for i, p := range posts {
		copied := *p
		if summary, ok := summaries[p.ID]; ok {
			copied.Title = summary.Title
			copied.Excerpt = summary.Excerpt
		}
		localized[i] = &copied
	}
	return localized
}

func (s *PostService) renderContent(content, format string) (string, error) {
	f, ok := ParseContentFormat(format)
	if !ok {
		return "", fmt.Errorf("%w: unsupported content format %q", domain.ErrInvalidPost, format)
	}
	if f != FormatMarkdown {
		return content, nil
	}

	rendered, err := s.markdown.Render([]byte(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidPost, err)
	}
	return string(rendered), nil
}

func paginate(posts []*domain.Post, page, pageSize int) []*domain.Post {
	if page <= 0 && pageSize <= 0 {
		return posts
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	// pages past the end are empty; checked before multiplying so a huge page cannot overflow
	if page > len(posts)/pageSize+1 {
		return []*domain.Post{}
	}
	start := (page - 1) * pageSize
	if start >= len(posts) {
		return []*domain.Post{}
	}
	end := min(start+pageSize, len(posts))
	return posts[start:end]
}

// isEmptyContent matches blank input and the editor's empty document
func isEmptyContent(content string) bool {
	trimmed := strings.TrimSpace(content)
	return trimmed == "" || trimmed == "<p></p>"
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
