package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zhishu/website/blog/domain"
)

const DefaultGoogleEndpoint = "https://translation.googleapis.com/language/translate/v2"

var _ domain.Translator = (*GoogleTranslator)(nil)

type GoogleConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
}

// GoogleTranslator calls the Cloud Translation v2 REST API with an API key.
// Texts are sent as HTML so markup in post content survives translation.
type GoogleTranslator struct {
	apiKey   string
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

func NewGoogleTranslator(cfg GoogleConfig) *GoogleTranslator {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	return &GoogleTranslator{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		timeout:  timeoutOrDefault(cfg.Timeout),
		client:   httpClient(cfg.Client),
	}
}

func (g *GoogleTranslator) Name() string { return "google" }

func (g *GoogleTranslator) Configured() bool { return g.apiKey != "" }

type googleRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

func (g *GoogleTranslator) TranslateBatch(ctx context.Context, texts []string, target domain.Locale) ([]string, error) {
	if !g.Configured() {
		return nil, domain.ErrTranslatorNotConfigured
	}
	if len(texts) == 0 {
		return []string{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := googleRequest{
		Q:      texts,
		Source: domain.SourceLocale.ProviderCode(),
		Target: target.ProviderCode(),
		Format: "html",
	}

	var resp googleResponse
	endpoint := g.endpoint + "?key=" + url.QueryEscape(g.apiKey)
	if err := postJSON(ctx, g.client, g.Name(), endpoint, nil, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data.Translations) != len(texts) {
		return nil, fmt.Errorf("google: returned %d translations for %d texts", len(resp.Data.Translations), len(texts))
	}

	out := make([]string, len(texts))
	for i, t := range resp.Data.Translations {
		out[i] = t.TranslatedText
	}
	return out, nil
}
