package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/zhishu/website/api"
	"github.com/zhishu/website/blog/application"
	"github.com/zhishu/website/internal/middleware"
)

const totalCountHeader = "X-Total-Count"

type PostsApi struct {
	posts *application.PostService
}

// GetPosts lists published posts, optionally by category and page, localized by ?lang
func (a *PostsApi) GetPosts(c *gin.Context) {
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "pageSize")
	if !ok {
		return
	}

	result, err := a.posts.List(c.Request.Context(), application.ListQuery{
		Category: c.Query("category"),
		Locale:   middleware.GetLocale(c),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(c, err, msgInternal)
		return
	}

	c.Header(totalCountHeader, strconv.Itoa(result.Total))
	c.JSON(http.StatusOK, toAPIPosts(result.Posts))
}

func (a *PostsApi) CreatePost(c *gin.Context) {
	proto := &api.PostProto{}
	if err := c.ShouldBindJSON(proto); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	post, err := a.posts.Create(c.Request.Context(), application.NewPost{
		Title:      proto.Title,
		Content:    proto.Content,
		Excerpt:    proto.Excerpt,
		CoverImage: proto.CoverImage,
		Category:   proto.Category,
		Author:     toDomainAuthor(proto.Author),
		Format:     proto.Format,
	})
	if err != nil {
		respondServiceError(c, err, "创建文章失败")
		return
	}

	c.JSON(http.StatusCreated, toAPIPost(post))
}

func (a *PostsApi) GetPost(c *gin.Context) {
	post, err := a.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, msgInternal)
		return
	}

	c.JSON(http.StatusOK, toAPIPost(post))
}

func (a *PostsApi) UpdatePost(c *gin.Context) {
	patch := api.PostPatch{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		log.Error().Err(err).Str("postID", c.Param("id")).Msg("Failed to parse post update")
		respondError(c, http.StatusInternalServerError, "更新文章失败")
		return
	}

	post, err := a.posts.Update(c.Request.Context(), c.Param("id"), toDomainPatch(patch), patch.Format)
	if err != nil {
		respondServiceError(c, err, "更新文章失败")
		return
	}

	c.JSON(http.StatusOK, toAPIPost(post))
}

func (a *PostsApi) DeletePost(c *gin.Context) {
	deleted, err := a.posts.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "删除文章失败")
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, msgPostNotFound)
		return
	}

	c.JSON(http.StatusOK, api.DeleteResult{Success: true})
}

// GetPostDetail returns a post by slug with its neighbours and related posts
func (a *PostsApi) GetPostDetail(c *gin.Context) {
	detail, err := a.posts.Detail(c.Request.Context(), c.Param("slug"), middleware.GetLocale(c))
	if err != nil {
		respondServiceError(c, err, msgInternal)
		return
	}

	c.JSON(http.StatusOK, toAPIDetail(detail))
}

// queryInt parses an optional integer query parameter, answering 400 when it is malformed
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondError(c, http.StatusBadRequest, "invalid "+key)
		return 0, false
	}
	return n, true
}
