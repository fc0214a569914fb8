package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

// Config holds process settings read from the environment
type Config struct {
	Port            string
	Production      bool
	LogLevel        string
	StorageBackend  string
	DataDir         string
	SQLitePath      string
	ShutdownTimeout time.Duration

	Translate TranslateConfig
}

type TranslateConfig struct {
	Provider      string
	GoogleAPIKey  string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Timeout       time.Duration
}

// Load reads the configuration. Missing translation credentials are not an error.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Production:     getEnv("GIN_MODE", "debug") == "release",
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendJSON)),
		DataDir:        getEnv("DATA_DIR", "./data"),
		SQLitePath:     getEnv("SQLITE_DB_PATH", "./website.db"),
		Translate: TranslateConfig{
			Provider:      strings.ToLower(getEnv("TRANSLATE_PROVIDER", ProviderGoogle)),
			GoogleAPIKey:  getEnv("GOOGLE_TRANSLATE_API_KEY", ""),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
	}

	var err error
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.Translate.Timeout, err = getDuration("TRANSLATE_TIMEOUT", 8*time.Second); err != nil {
		return nil, err
	}

	switch cfg.StorageBackend {
	case BackendJSON, BackendSQLite:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	switch cfg.Translate.Provider {
	case ProviderGoogle, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("unsupported TRANSLATE_PROVIDER %q", cfg.Translate.Provider)
	}

	return cfg, nil
}

func (c *Config) PostsPath() string {
	return filepath.Join(c.DataDir, "posts.json")
}

func (c *Config) TranslationCachePath() string {
	return filepath.Join(c.DataDir, "translations-cache.json")
}

// getEnv returns the value of key, or defaultValue when it is unset or empty
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, value)
	}
	return d, nil
}
