package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/zhishu/website/api"
	"github.com/zhishu/website/blog/domain"
)

const (
	msgPostNotFound   = "文章不存在"
	msgInvalidBody    = "请求格式错误"
	msgInternal       = "服务器内部错误"
	msgMissingFields  = "Missing id or targetLocale"
	msgNotConfigured  = "Translation provider not configured. Set its API key in the environment."
	msgTranslateError = "Translation failed"
)

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, api.Error{Error: msg})
}

// respondServiceError maps a service error onto a status code. fallback is the message for 500s.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		respondError(c, http.StatusNotFound, msgPostNotFound)
	case errors.Is(err, domain.ErrInvalidPost):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		_ = c.Error(err)
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
