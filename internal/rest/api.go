package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/zhishu/website/blog/application"
	"github.com/zhishu/website/internal/middleware"
)

// NewRouter builds the gin engine with recovery, request logging, locale detection and the API routes
func NewRouter(posts *application.PostService, translations *application.TranslationService) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.CustomRecovery(middleware.HandlePanics()),
		middleware.Locale(),
		middleware.RequestLogger(),
	)

	NewApi(router, posts, translations)
	return router
}

func NewApi(router *gin.Engine, posts *application.PostService, translations *application.TranslationService) {
	postsApi := &PostsApi{posts: posts}
	translateApi := &TranslateApi{translations: translations}

	api := router.Group("/api")

	postsGroup := api.Group("/posts")
	{
		postsGroup.GET("", postsApi.GetPosts)
		postsGroup.POST("", postsApi.CreatePost)
		postsGroup.GET("/:id", postsApi.GetPost)
		postsGroup.PUT("/:id", postsApi.UpdatePost)
		postsGroup.DELETE("/:id", postsApi.DeletePost)
	}

	api.GET("/blog/:slug", middleware.PageLocale(), postsApi.GetPostDetail)

	translateGroup := api.Group("/translate")
	{
		translateGroup.POST("", translateApi.Translate)
		translateGroup.GET("/health", translateApi.Health)
	}
}
