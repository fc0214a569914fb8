package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrTranslatorNotConfigured = errors.New("translation provider not configured")
	ErrTranslationFailed       = errors.New("translation failed")
	ErrUnsupportedLocale       = errors.New("unsupported locale")
)

// Locale is a site language. Posts are authored in SourceLocale.
type Locale string

const (
	LocaleZH Locale = "zh"
	LocaleEN Locale = "en"

	SourceLocale = LocaleZH
)

func ParseLocale(s string) (Locale, bool) {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case LocaleZH:
		return LocaleZH, true
	case LocaleEN:
		return LocaleEN, true
	}
	return "", false
}

// ProviderCode is the language code sent to translation providers.
func (l Locale) ProviderCode() string {
	if l == LocaleZH {
		return "zh-CN"
	}
	return string(l)
}

// EntryState tags a cache entry. Transitions: Absent -> Partial -> Full, never back.
type EntryState int

const (
	EntryAbsent EntryState = iota
	EntryPartial
	EntryFull
)

func (s EntryState) String() string {
	switch s {
	case EntryPartial:
		return "partial"
	case EntryFull:
		return "full"
	}
	return "absent"
}

func ParseEntryState(s string) EntryState {
	switch s {
	case "partial":
		return EntryPartial
	case "full":
		return EntryFull
	}
	return EntryAbsent
}

// CacheEntry is a memoized translation for one (post, locale) pair.
// A partial entry carries title and excerpt only.
type CacheEntry struct {
	State        EntryState
	Title        string
	Excerpt      string
	Content      string
	TranslatedAt time.Time
}

func PartialEntry(title, excerpt string, at time.Time) CacheEntry {
	return CacheEntry{State: EntryPartial, Title: title, Excerpt: excerpt, TranslatedAt: at}
}

func FullEntry(title, excerpt, content string, at time.Time) CacheEntry {
	return CacheEntry{State: EntryFull, Title: title, Excerpt: excerpt, Content: content, TranslatedAt: at}
}

func (e CacheEntry) HasSummary() bool { return e.State == EntryPartial || e.State == EntryFull }

func (e CacheEntry) IsFull() bool { return e.State == EntryFull }

// CacheKey joins a post id and locale into the persisted key form "{postId}_{locale}".
func CacheKey(postID string, locale Locale) string {
	return postID + "_" + string(locale)
}

// TranslationCacheRepository stores cache entries. Get returns an EntryAbsent entry
// and a nil error for unknown keys; GetMany omits them from its result.
// Writes never replace a full entry with a partial one.
type TranslationCacheRepository interface {
	Get(ctx context.Context, key string) (CacheEntry, error)
	GetMany(ctx context.Context, keys []string) (map[string]CacheEntry, error)
	Put(ctx context.Context, key string, entry CacheEntry) error
	PutMany(ctx context.Context, entries map[string]CacheEntry) error
}

// Translator is an external translation capability. The output has the same length and
// order as texts. Implementations return an error on any failure; callers decide the fallback.
type Translator interface {
	Name() string
	// Configured reports whether a credential is present.
	Configured() bool
	TranslateBatch(ctx context.Context, texts []string, target Locale) ([]string, error)
}
