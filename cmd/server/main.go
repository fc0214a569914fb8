package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/zhishu/website/blog/application"
	"github.com/zhishu/website/blog/domain"
	"github.com/zhishu/website/blog/persistence"
	"github.com/zhishu/website/internal/config"
	"github.com/zhishu/website/internal/logging"
	"github.com/zhishu/website/internal/rest"
	"github.com/zhishu/website/shared/db/sqlite"
	"github.com/zhishu/website/shared/translate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(cfg.LogLevel, !cfg.Production)
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	postRepo, cacheRepo, closeStore := openStores(cfg)
	defer closeStore()

	translator := newTranslator(cfg.Translate)
	if !translator.Configured() {
		log.Warn().Str("provider", translator.Name()).Msg("Translation provider has no API key, serving source text only")
	}

	translations := application.NewTranslationService(cacheRepo, translator)
	posts := application.NewPostService(postRepo, translations, application.NewMarkdownRenderer())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: rest.NewRouter(posts, translations),
	}

	go func() {
		log.Info().Str("storage", cfg.StorageBackend).Msg("Starting server on port :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}

// openStores builds the post and translation cache repositories for the configured backend.
// The returned func releases whatever the backend holds open.
func openStores(cfg *config.Config) (domain.PostRepository, domain.TranslationCacheRepository, func()) {
	if cfg.StorageBackend != config.BackendSQLite {
		log.Info().Str("dir", cfg.DataDir).Msg("Using JSON file storage")
		return persistence.NewJSONPostRepository(cfg.PostsPath()),
			persistence.NewJSONTranslationCache(cfg.TranslationCachePath()),
			func() {}
	}

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.SQLitePath})
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("Failed to connect to database")
	}
	log.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite storage")

	closeDB := func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
	return persistence.NewPostRepository(database.DB()),
		persistence.NewTranslationCacheRepository(database.DB()),
		closeDB
}

func newTranslator(cfg config.TranslateConfig) domain.Translator {
	if cfg.Provider == config.ProviderOpenAI {
		return translate.NewOpenAITranslator(translate.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.Timeout,
		})
	}
	return translate.NewGoogleTranslator(translate.GoogleConfig{
		APIKey:  cfg.GoogleAPIKey,
		Timeout: cfg.Timeout,
	})
}
