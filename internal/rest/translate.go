package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/zhishu/website/api"
	"github.com/zhishu/website/blog/application"
	"github.com/zhishu/website/blog/domain"
)

type TranslateApi struct {
	translations *application.TranslationService
}

// Translate returns the full translation of a post. Unlike page rendering, this endpoint
// reports a missing credential (503) and provider failures (500) instead of passing through.
func (a *TranslateApi) Translate(c *gin.Context) {
	req := &api.TranslateRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if req.ID == "" || req.TargetLocale == "" {
		respondError(c, http.StatusBadRequest, msgMissingFields)
		return
	}

	locale, ok := domain.ParseLocale(req.TargetLocale)
	if !ok {
		respondError(c, http.StatusBadRequest, domain.ErrUnsupportedLocale.Error()+": "+req.TargetLocale)
		return
	}

	result, err := a.translations.TranslateFull(c.Request.Context(), req.ID, req.Title, req.Excerpt, req.Content, locale)
	switch {
	case errors.Is(err, domain.ErrTranslatorNotConfigured):
		c.JSON(http.StatusServiceUnavailable, api.TranslationUnavailable{
			Error:       msgNotConfigured,
			Translation: toAPITranslation(result),
		})
		return
	case err != nil:
		log.Error().Err(err).Str("postID", req.ID).Msg("Translation request failed")
		respondError(c, http.StatusInternalServerError, msgTranslateError)
		return
	}

	c.JSON(http.StatusOK, toAPITranslation(result))
}

// Health probes the provider with a fixed phrase. It always answers 200.
func (a *TranslateApi) Health(c *gin.Context) {
	report := a.translations.Health(c.Request.Context())

	c.JSON(http.StatusOK, api.TranslateHealth{
		Status:   report.Status,
		Provider: report.Provider,
		Input:    report.Input,
		Output:   report.Output,
		Message:  report.Message,
	})
}

func toAPITranslation(t application.FullTranslation) api.Translation {
	return api.Translation{
		Title:   t.Title,
		Excerpt: t.Excerpt,
		Content: t.Content,
		Cached:  t.Cached,
	}
}
