package persistence

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/zhishu/website/blog/domain"
)

var _ domain.TranslationCacheRepository = (*JSONTranslationCache)(nil)

// cacheRecord is the on-disk form of a cache entry.
// Files written before the state field existed classify entries by content presence.
type cacheRecord struct {
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	Content      string    `json:"content"`
	TranslatedAt time.Time `json:"translatedAt"`
	State        string    `json:"state,omitempty"`
}

func (cr cacheRecord) toDomain() domain.CacheEntry {
	state := domain.ParseEntryState(cr.State)
	if state == domain.EntryAbsent {
		state = domain.EntryFull
		if cr.Content == "" {
			state = domain.EntryPartial
		}
	}
	return domain.CacheEntry{
		State:        state,
		Title:        cr.Title,
		Excerpt:      cr.Excerpt,
		Content:      cr.Content,
		TranslatedAt: cr.TranslatedAt,
	}
}

func recordFromDomain(e domain.CacheEntry) cacheRecord {
	return cacheRecord{
		Title:        e.Title,
		Excerpt:      e.Excerpt,
		Content:      e.Content,
		TranslatedAt: e.TranslatedAt,
		State:        e.State.String(),
	}
}

// JSONTranslationCache implements domain.TranslationCacheRepository over a JSON object file
// mapping "{postId}_{locale}" to entries. A missing file reads as an empty cache.
type JSONTranslationCache struct {
	path string
	mu   sync.Mutex
}

func NewJSONTranslationCache(path string) *JSONTranslationCache {
	return &JSONTranslationCache{path: path}
}

// load must be called with c.mu held
func (c *JSONTranslationCache) load() (map[string]cacheRecord, error) {
	records := make(map[string]cacheRecord)

	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return records, nil
	}
	if err := readJSON(c.path, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = make(map[string]cacheRecord)
	}
	return records, nil
}

func (c *JSONTranslationCache) save(records map[string]cacheRecord) error {
	if err := ensureFile(c.path, []byte("{}")); err != nil {
		return err
	}
	if err := writeJSON(c.path, records); err != nil {
		return fmt.Errorf("failed to save translation cache: %w", err)
	}
	return nil
}

func (c *JSONTranslationCache) Get(ctx context.Context, key string) (domain.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return domain.CacheEntry{}, err
	}
	record, ok := records[key]
	if !ok {
		return domain.CacheEntry{}, nil
	}
	return record.toDomain(), nil
}

func (c *JSONTranslationCache) GetMany(ctx context.Context, keys []string) (map[string]domain.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return nil, err
	}
	entries := make(map[string]domain.CacheEntry, len(keys))
	for _, key := range keys {
		if record, ok := records[key]; ok {
			entries[key] = record.toDomain()
		}
	}
	return entries, nil
}

func (c *JSONTranslationCache) Put(ctx context.Context, key string, entry domain.CacheEntry) error {
	return c.PutMany(ctx, map[string]domain.CacheEntry{key: entry})
}

// PutMany writes all entries in a single read-modify-write cycle
func (c *JSONTranslationCache) PutMany(ctx context.Context, entries map[string]domain.CacheEntry) error {
	if len(entries) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		// A corrupt cache is replaced rather than blocking new writes.
		records = make(map[string]cacheRecord)
	}
	for key, entry := range entries {
		if entry.State == domain.EntryAbsent {
			continue
		}
		if existing, ok := records[key]; ok && existing.toDomain().IsFull() && !entry.IsFull() {
			continue
		}
		records[key] = recordFromDomain(entry)
	}
	return c.save(records)
}
