package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zhishu/website/blog/domain"
	"golang.org/x/sync/errgroup"
)

const healthProbeText = "你好世界"

// FullTranslation is a translated post triple. Cached reports whether it came from the cache.
type FullTranslation struct {
	Title   string
	Excerpt string
	Content string
	Cached  bool
}

type Summary struct {
	Title   string
	Excerpt string
}

// SummaryInput identifies one post in a batch summary request
type SummaryInput struct {
	ID      string
	Title   string
	Excerpt string
}

// HealthReport is the outcome of a live provider probe
type HealthReport struct {
	Status   string
	Provider string
	Input    string
	Output   string
	Message  string
}

// TranslationService memoizes provider translations per post and locale.
// Provider and cache failures never fail a caller; they degrade to the original text.
type TranslationService struct {
	cache      domain.TranslationCacheRepository
	translator domain.Translator
	now        func() time.Time
}

func NewTranslationService(cache domain.TranslationCacheRepository, translator domain.Translator) *TranslationService {
	return &TranslationService{
		cache:      cache,
		translator: translator,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Configured reports whether the provider has a credential
func (s *TranslationService) Configured() bool {
	return s.translator != nil && s.translator.Configured()
}

func (s *TranslationService) ProviderName() string {
	if s.translator == nil {
		return ""
	}
	return s.translator.Name()
}

// TranslateFull returns the translated title, excerpt and content of a post.
// The result always carries usable text. A non-nil error is ErrTranslatorNotConfigured or
// wraps ErrTranslationFailed, and in both cases the result holds the untranslated input.
// Only full cache entries are hits; a partial entry is overwritten.
func (s *TranslationService) TranslateFull(ctx context.Context, postID, title, excerpt, content string, target domain.Locale) (FullTranslation, error) {
	original := FullTranslation{Title: title, Excerpt: excerpt, Content: content}
	if target == domain.SourceLocale {
		return original, nil
	}

	key := domain.CacheKey(postID, target)
	if entry := s.lookup(ctx, key); entry.IsFull() {
		return FullTranslation{Title: entry.Title, Excerpt: entry.Excerpt, Content: entry.Content, Cached: true}, nil
	}

	if !s.Configured() {
		return original, domain.ErrTranslatorNotConfigured
	}

	fields := []string{title, excerpt, content}
	translated := make([]string, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for i, field := range fields {
		g.Go(func() error {
			out, err := s.translateTexts(gctx, []string{field}, target)
			if err != nil {
				return err
			}
			translated[i] = out[0]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Str("postID", postID).Str("locale", string(target)).Msg("Full translation failed, returning original text")
		return original, fmt.Errorf("%w: %v", domain.ErrTranslationFailed, err)
	}

	result := FullTranslation{Title: translated[0], Excerpt: translated[1], Content: translated[2]}
	s.store(ctx, map[string]domain.CacheEntry{
		key: domain.FullEntry(result.Title, result.Excerpt, result.Content, s.now()),
	})

	return result, nil
}

// TranslateSummary translates title and excerpt only, writing a partial cache entry on a miss.
// Any cached entry, partial or full, is a hit.
func (s *TranslationService) TranslateSummary(ctx context.Context, postID, title, excerpt string, target domain.Locale) Summary {
	original := Summary{Title: title, Excerpt: excerpt}
	if target == domain.SourceLocale {
		return original
	}

	key := domain.CacheKey(postID, target)
	if entry := s.lookup(ctx, key); entry.HasSummary() {
		return Summary{Title: entry.Title, Excerpt: entry.Excerpt}
	}

	if !s.Configured() {
		return original
	}

	var translatedTitle, translatedExcerpt []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		translatedTitle, err = s.translateTexts(gctx, []string{title}, target)
		return err
	})
	g.Go(func() (err error) {
		translatedExcerpt, err = s.translateTexts(gctx, []string{excerpt}, target)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Str("postID", postID).Str("locale", string(target)).Msg("Summary translation failed, returning original text")
		return original
	}

	result := Summary{Title: translatedTitle[0], Excerpt: translatedExcerpt[0]}
	s.store(ctx, map[string]domain.CacheEntry{
		key: domain.PartialEntry(result.Title, result.Excerpt, s.now()),
	})

	return result
}

// TranslateSummariesBatch returns a summary for every input post keyed by id.
// All uncached titles go to the provider in one call and all uncached excerpts in another,
// regardless of how many posts miss the cache.
func (s *TranslationService) TranslateSummariesBatch(ctx context.Context, posts []SummaryInput, target domain.Locale) map[string]Summary {
	result := make(map[string]Summary, len(posts))
	if target == domain.SourceLocale {
		for _, p := range posts {
			result[p.ID] = Summary{Title: p.Title, Excerpt: p.Excerpt}
		}
		return result
	}

	keys := make([]string, len(posts))
	for i, p := range posts {
		keys[i] = domain.CacheKey(p.ID, target)
	}

	cached, err := s.cache.GetMany(ctx, keys)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read translation cache, treating as empty")
		cached = nil
	}

	uncached := make([]SummaryInput, 0, len(posts))
	for i, p := range posts {
		if entry, ok := cached[keys[i]]; ok && entry.HasSummary() {
			result[p.ID] = Summary{Title: entry.Title, Excerpt: entry.Excerpt}
			continue
		}
		uncached = append(uncached, p)
	}

	if len(uncached) == 0 {
		return result
	}

	fallback := func() map[string]Summary {
		for _, p := range uncached {
			result[p.ID] = Summary{Title: p.Title, Excerpt: p.Excerpt}
		}
		return result
	}

	if !s.Configured() {
		return fallback()
	}

	titles := make([]string, len(uncached))
	excerpts := make([]string, len(uncached))
	for i, p := range uncached {
		titles[i] = p.Title
		excerpts[i] = p.Excerpt
	}

	var translatedTitles, translatedExcerpts []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		translatedTitles, err = s.translateTexts(gctx, titles, target)
		return err
	})
	g.Go(func() (err error) {
		translatedExcerpts, err = s.translateTexts(gctx, excerpts, target)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Int("posts", len(uncached)).Str("locale", string(target)).Msg("Batch summary translation failed, returning original text")
		return fallback()
	}

	at := s.now()
	entries := make(map[string]domain.CacheEntry, len(uncached))
	for i, p := range uncached {
		summary := Summary{Title: translatedTitles[i], Excerpt: translatedExcerpts[i]}
		result[p.ID] = summary
		entries[domain.CacheKey(p.ID, target)] = domain.PartialEntry(summary.Title, summary.Excerpt, at)
	}
	s.store(ctx, entries)

	return result
}

// Health translates a fixed phrase through the provider, bypassing the cache
func (s *TranslationService) Health(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:   "error",
		Provider: s.ProviderName(),
		Input:    healthProbeText,
	}

	if !s.Configured() {
		report.Message = domain.ErrTranslatorNotConfigured.Error()
		return report
	}

	out, err := s.translator.TranslateBatch(ctx, []string{healthProbeText}, domain.LocaleEN)
	if err != nil {
		report.Message = err.Error()
		return report
	}
	if len(out) != 1 {
		report.Message = fmt.Sprintf("provider returned %d translations for 1 text", len(out))
		return report
	}

	report.Status = "ok"
	report.Output = out[0]
	return report
}

// translateTexts sends the non-blank texts to the provider in one call and puts the
// results back in place. Blank inputs and blank outputs keep the original text.
func (s *TranslationService) translateTexts(ctx context.Context, texts []string, target domain.Locale) ([]string, error) {
	result := make([]string, len(texts))
	copy(result, texts)

	indexes := make([]int, 0, len(texts))
	batch := make([]string, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) != "" {
			indexes = append(indexes, i)
			batch = append(batch, t)
		}
	}
	if len(batch) == 0 {
		return result, nil
	}

	out, err := s.translator.TranslateBatch(ctx, batch, target)
	if err != nil {
		return nil, err
	}
	if len(out) != len(batch) {
		return nil, fmt.Errorf("provider returned %d translations for %d texts", len(out), len(batch))
	}

	for j, i := range indexes {
		if out[j] != "" {
			result[i] = out[j]
		}
	}
	return result, nil
}

func (s *TranslationService) lookup(ctx context.Context, key string) domain.CacheEntry {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to read translation cache, treating as miss")
		return domain.CacheEntry{}
	}
	return entry
}

func (s *TranslationService) store(ctx context.Context, entries map[string]domain.CacheEntry) {
	if err := s.cache.PutMany(ctx, entries); err != nil {
		log.Warn().Err(err).Int("entries", len(entries)).Msg("Failed to write translation cache")
	}
}
