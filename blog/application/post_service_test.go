package application

import (
	"context"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhishu/website/blog/domain"
	"github.com/zhishu/website/blog/persistence"
)

type testEnv struct {
	svc        *PostService
	repo       *persistence.JSONPostRepository
	translator *fakeTranslator
	cache      *memCache
	clock      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:       persistence.NewJSONPostRepository(filepath.Join(t.TempDir(), "posts.json")),
		translator: newFakeTranslator(),
		cache:      newMemCache(),
		clock:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	env.svc = NewPostService(env.repo, NewTranslationService(env.cache, env.translator), NewMarkdownRenderer())

	ids := 0
	env.svc.newID = func() string {
		ids++
		return "id-" + strconv.Itoa(ids)
	}
	env.svc.now = func() time.Time {
		env.clock = env.clock.Add(time.Minute)
		return env.clock
	}
	return env
}

func TestPostService_CreateDefaults(t *testing.T) {
	env := newTestEnv(t)

	post, err := env.svc.Create(context.Background(), NewPost{Title: "Hello World", Content: "<p>hi</p>"})
	require.NoError(t, err)

	assert.Equal(t, "id-1", post.ID)
	assert.True(t, post.Published)
	assert.Equal(t, domain.DefaultCategory, post.Category)
	assert.Regexp(t, regexp.MustCompile(`^hello-world-\d+$`), post.Slug)
	assert.Equal(t, "Hello World", post.Excerpt)
	assert.Equal(t, DefaultCoverImage, post.CoverImage)
	assert.Equal(t, domain.Author{Name: DefaultAuthorName}, post.Author)
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)

	stored, err := env.svc.Get(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, stored.Title)
	assert.True(t, stored.CreatedAt.Equal(stored.UpdatedAt))
}

func TestPostService_CreateKeepsSuppliedFields(t *testing.T) {
	env := newTestEnv(t)

	post, err := env.svc.Create(context.Background(), NewPost{
		Title:      "思考",
		Content:    "<p>内容</p>",
		Excerpt:    "自定义摘要",
		CoverImage: "/images/custom.png",
		Category:   "thinking",
		Author:     &domain.Author{Name: " ", Title: "编辑"},
	})
	require.NoError(t, err)

	assert.Equal(t, "自定义摘要", post.Excerpt)
	assert.Equal(t, "/images/custom.png", post.CoverImage)
	assert.Equal(t, domain.CategoryThinking, post.Category)
	assert.Equal(t, domain.Author{Name: DefaultAuthorName, Title: "编辑"}, post.Author)
}

func TestPostService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		in   NewPost
	}{
		{"missing title", NewPost{Content: "<p>x</p>"}},
		{"blank title", NewPost{Title: "   ", Content: "<p>x</p>"}},
		{"missing content", NewPost{Title: "t"}},
		{"empty editor document", NewPost{Title: "t", Content: " <p></p> "}},
		{"unknown format", NewPost{Title: "t", Content: "x", Format: "rst"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidPost)
		})
	}
}

func TestPostService_CreateExcerptTruncatesRunes(t *testing.T) {
	env := newTestEnv(t)

	title := ""
	for i := 0; i < 120; i++ {
		title += "字"
	}
	post, err := env.svc.Create(context.Background(), NewPost{Title: title, Content: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, 100, len([]rune(post.Excerpt)))
}

func TestPostService_CreateMarkdown(t *testing.T) {
	env := newTestEnv(t)

	post, err := env.svc.Create(context.Background(), NewPost{Title: "md", Content: "**bold**", Format: "markdown"})
	require.NoError(t, err)
	assert.Contains(t, post.Content, "<strong>bold</strong>")
}

func TestPostService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, NewPost{Title: "Hello World", Content: "<p>hi</p>"})
	require.NoError(t, err)

	title := "Hello World 2"
	_, err = env.svc.Update(ctx, created.ID, domain.PostPatch{Title: &title}, "")
	require.NoError(t, err)

	got, err := env.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello World 2", got.Title)
	assert.Equal(t, "<p>hi</p>", got.Content)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	deleted, err := env.svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = env.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	deleted, err = env.svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestPostService_UpdateMarkdownContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, NewPost{Title: "t", Content: "<p>x</p>"})
	require.NoError(t, err)

	content := "# Heading"
	updated, err := env.svc.Update(ctx, created.ID, domain.PostPatch{Content: &content}, "markdown")
	require.NoError(t, err)
	assert.Contains(t, updated.Content, "Heading</h1>")

	_, err = env.svc.Update(ctx, "missing", domain.PostPatch{Content: &content}, "")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func seedPosts(t *testing.T, env *testEnv, inputs ...NewPost) []*domain.Post {
	t.Helper()
	posts := make([]*domain.Post, 0, len(inputs))
	for _, in := range inputs {
		p, err := env.svc.Create(context.Background(), in)
		require.NoError(t, err)
		posts = append(posts, p)
	}
	return posts
}

func TestPostService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seeded := seedPosts(t, env,
		NewPost{Title: "一", Content: "c", Category: "tech"},
		NewPost{Title: "二", Content: "c", Category: "product"},
		NewPost{Title: "三", Content: "c", Category: "tech"},
	)
	unpublish := false
	_, err := env.svc.Update(ctx, seeded[0].ID, domain.PostPatch{Published: &unpublish}, "")
	require.NoError(t, err)

	all, err := env.svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
	assert.Equal(t, "三", all.Posts[0].Title)

	tech, err := env.svc.List(ctx, ListQuery{Category: "tech"})
	require.NoError(t, err)
	assert.Len(t, tech.Posts, 1)

	latest, err := env.svc.List(ctx, ListQuery{Category: "latest"})
	require.NoError(t, err)
	assert.Len(t, latest.Posts, 2)

	unknown, err := env.svc.List(ctx, ListQuery{Category: "gossip"})
	require.NoError(t, err)
	assert.Empty(t, unknown.Posts)
}

func TestPostService_ListPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	inputs := make([]NewPost, 12)
	for i := range inputs {
		inputs[i] = NewPost{Title: "post " + strconv.Itoa(i), Content: "c"}
	}
	seedPosts(t, env, inputs...)

	first, err := env.svc.List(ctx, ListQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 12, first.Total)
	assert.Len(t, first.Posts, DefaultPageSize)
	assert.Equal(t, "post 11", first.Posts[0].Title)

	second, err := env.svc.List(ctx, ListQuery{Page: 2, PageSize: 5})
	require.NoError(t, err)
	assert.Len(t, second.Posts, 5)
	assert.Equal(t, "post 6", second.Posts[0].Title)

	beyond, err := env.svc.List(ctx, ListQuery{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, beyond.Posts)

	capped, err := env.svc.List(ctx, ListQuery{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, capped.Posts, 12)
}

func TestPaginate(t *testing.T) {
	posts := make([]*domain.Post, 7)
	for i := range posts {
		posts[i] = &domain.Post{ID: strconv.Itoa(i)}
	}

	tests := []struct {
		name     string
		page     int
		pageSize int
		expected int
	}{
		{name: "No params returns all", expected: 7},
		{name: "Last partial page", page: 4, pageSize: 2, expected: 1},
		{name: "Exactly past the end", page: 5, pageSize: 2, expected: 0},
		{name: "Huge page does not overflow", page: math.MaxInt, pageSize: 2, expected: 0},
		{name: "Huge page with max size", page: math.MaxInt, pageSize: MaxPageSize, expected: 0},
		{name: "Huge page size is capped", page: 1, pageSize: math.MaxInt, expected: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, paginate(posts, tt.page, tt.pageSize), tt.expected)
		})
	}
}

func TestPostService_ListLocalized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedPosts(t, env,
		NewPost{Title: "一", Content: "c"},
		NewPost{Title: "二", Content: "c"},
	)

	page, err := env.svc.List(ctx, ListQuery{Locale: domain.LocaleEN})
	require.NoError(t, err)
	assert.Equal(t, "[en] 二", page.Posts[0].Title)
	assert.Equal(t, 2, env.translator.callCount())

	stored, err := env.svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, "二", stored.Posts[0].Title, "localization must not leak into the store")
}

func TestPostService_Detail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	posts := seedPosts(t, env,
		NewPost{Title: "a", Content: "c", Category: "tech"},
		NewPost{Title: "b", Content: "c", Category: "tech"},
		NewPost{Title: "c", Content: "c", Category: "product"},
		NewPost{Title: "d", Content: "c", Category: "tech"},
		NewPost{Title: "e", Content: "c", Category: "tech"},
		NewPost{Title: "f", Content: "c", Category: "tech"},
	)

	detail, err := env.svc.Detail(ctx, posts[2].Slug, domain.LocaleZH)
	require.NoError(t, err)
	assert.Equal(t, posts[2].ID, detail.Post.ID)
	require.NotNil(t, detail.Prev)
	require.NotNil(t, detail.Next)
	assert.Equal(t, posts[1].ID, detail.Prev.ID)
	assert.Equal(t, posts[3].ID, detail.Next.ID)
	assert.Empty(t, detail.Related)

	detail, err = env.svc.Detail(ctx, posts[0].Slug, domain.LocaleZH)
	require.NoError(t, err)
	assert.Nil(t, detail.Prev, "oldest post has no previous")
	assert.Len(t, detail.Related, relatedLimit)
	for _, r := range detail.Related {
		assert.NotEqual(t, posts[0].ID, r.ID)
		assert.Equal(t, domain.CategoryTech, r.Category)
	}

	detail, err = env.svc.Detail(ctx, posts[5].Slug, domain.LocaleZH)
	require.NoError(t, err)
	assert.Nil(t, detail.Next, "newest post has no next")

	_, err = env.svc.Detail(ctx, "missing", domain.LocaleZH)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostService_DetailDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	posts := seedPosts(t, env,
		NewPost{Title: "a", Content: "c"},
		NewPost{Title: "b", Content: "c"},
	)
	unpublish := false
	_, err := env.svc.Update(ctx, posts[0].ID, domain.PostPatch{Published: &unpublish}, "")
	require.NoError(t, err)

	detail, err := env.svc.Detail(ctx, posts[0].Slug, domain.LocaleZH)
	require.NoError(t, err)
	assert.Nil(t, detail.Prev)
	assert.Nil(t, detail.Next)
}

func TestPostService_DetailLocalized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	posts := seedPosts(t, env,
		NewPost{Title: "旧", Content: "<p>旧</p>"},
		NewPost{Title: "中", Content: "<p>中</p>"},
		NewPost{Title: "新", Content: "<p>新</p>"},
	)

	detail, err := env.svc.Detail(ctx, posts[1].Slug, domain.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, "[en] 中", detail.Post.Title)
	assert.Equal(t, "[en] <p>中</p>", detail.Post.Content)
	assert.Equal(t, "[en] 旧", detail.Prev.Title)
	assert.Equal(t, "[en] 新", detail.Next.Title)
	require.Len(t, detail.Related, 2)

	// three field calls for the post and two batch calls for the neighbours
	assert.Equal(t, 5, env.translator.callCount())
}
