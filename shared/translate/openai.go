package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zhishu/website/blog/domain"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
)

var _ domain.Translator = (*OpenAITranslator)(nil)

var languageNames = map[domain.Locale]string{
	domain.LocaleZH: "Simplified Chinese",
	domain.LocaleEN: "English",
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Client  *http.Client
}

// OpenAITranslator translates a whole batch in one chat-completions call.
// The model is asked for a JSON array of strings in input order.
type OpenAITranslator struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
}

func NewOpenAITranslator(cfg OpenAIConfig) *OpenAITranslator {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAITranslator{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		timeout: timeoutOrDefault(cfg.Timeout),
		client:  httpClient(cfg.Client),
	}
}

func (o *OpenAITranslator) Name() string { return "openai" }

func (o *OpenAITranslator) Configured() bool { return o.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAITranslator) TranslateBatch(ctx context.Context, texts []string, target domain.Locale) ([]string, error) {
	if !o.Configured() {
		return nil, domain.ErrTranslatorNotConfigured
	}
	if len(texts) == 0 {
		return []string{}, nil
	}

	input, err := encodeTexts(texts)
	if err != nil {
		return nil, fmt.Errorf("openai: failed to encode texts: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(target)},
			{Role: "user", Content: input},
		},
	}

	var resp chatResponse
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	if err := postJSON(ctx, o.client, o.Name(), o.baseURL+"/chat/completions", headers, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: response has no choices")
	}

	var out []string
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Choices[0].Message.Content)), &out); err != nil {
		return nil, fmt.Errorf("openai: reply is not a JSON array of strings: %w", err)
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("openai: returned %d translations for %d texts", len(out), len(texts))
	}
	return out, nil
}

func systemPrompt(target domain.Locale) string {
	return fmt.Sprintf("You translate website copy from %s to %s. "+
		"The user message is a JSON array of strings. Reply with only a JSON array of the same length, "+
		"each element the translation of the element at the same index. "+
		"Keep HTML tags and attributes unchanged and translate only the text between them.",
		languageNames[domain.SourceLocale], languageNames[target])
}

// encodeTexts renders texts as a JSON array with markup left unescaped
func encodeTexts(texts []string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(texts); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// stripCodeFence removes a ```json fence some models wrap around their reply
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
