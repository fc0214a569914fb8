package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zhishu/website/blog/domain"
	"github.com/zhishu/website/shared/db"
)

var _ domain.TranslationCacheRepository = (*SQLiteTranslationCache)(nil)

// SQLiteTranslationCache implements domain.TranslationCacheRepository over the translation_cache table
type SQLiteTranslationCache struct {
	db *sql.DB
}

func NewTranslationCacheRepository(db *sql.DB) *SQLiteTranslationCache {
	return &SQLiteTranslationCache{db: db}
}

const getCacheEntryQuery = `
	SELECT state, title, excerpt, content, translated_at
	FROM translation_cache
	WHERE cache_key = ?
`

const upsertCacheEntryQuery = `
	INSERT INTO translation_cache (cache_key, state, title, excerpt, content, translated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(cache_key) DO UPDATE SET
		state = excluded.state,
		title = excluded.title,
		excerpt = excluded.excerpt,
		content = excluded.content,
		translated_at = excluded.translated_at
	WHERE translation_cache.state <> 'full' OR excluded.state = 'full'
`

const getCacheEntriesQuery = `
	SELECT cache_key, state, title, excerpt, content, translated_at
	FROM translation_cache
	WHERE cache_key IN (%s)
`

func (c *SQLiteTranslationCache) Get(ctx context.Context, key string) (domain.CacheEntry, error) {
	var row cacheRow

	executor := db.GetExecutor(ctx, c.db)
	err := executor.QueryRowContext(ctx, getCacheEntryQuery, key).Scan(
		&row.State,
		&row.Title,
		&row.Excerpt,
		&row.Content,
		&row.TranslatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CacheEntry{}, nil
	}
	if err != nil {
		return domain.CacheEntry{}, fmt.Errorf("failed to get translation cache entry: %w", err)
	}

	return row.toDomain(key)
}

func (c *SQLiteTranslationCache) GetMany(ctx context.Context, keys []string) (map[string]domain.CacheEntry, error) {
	entries := make(map[string]domain.CacheEntry, len(keys))
	if len(keys) == 0 {
		return entries, nil
	}

	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")

	executor := db.GetExecutor(ctx, c.db)
	rows, err := executor.QueryContext(ctx, fmt.Sprintf(getCacheEntriesQuery, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get translation cache entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var row cacheRow
		if err := rows.Scan(&key, &row.State, &row.Title, &row.Excerpt, &row.Content, &row.TranslatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan translation cache row: %w", err)
		}
		entry, err := row.toDomain(key)
		if err != nil {
			return nil, err
		}
		entries[key] = entry
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating translation cache rows: %w", err)
	}

	return entries, nil
}

func (c *SQLiteTranslationCache) Put(ctx context.Context, key string, entry domain.CacheEntry) error {
	return c.PutMany(ctx, map[string]domain.CacheEntry{key: entry})
}

// PutMany upserts all entries in one transaction
func (c *SQLiteTranslationCache) PutMany(ctx context.Context, entries map[string]domain.CacheEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return db.RunInTransaction(ctx, c.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, c.db)
		for key, entry := range entries {
			if entry.State == domain.EntryAbsent {
				continue
			}
			_, err := executor.ExecContext(txCtx, upsertCacheEntryQuery,
				key,
				entry.State.String(),
				entry.Title,
				entry.Excerpt,
				entry.Content,
				entry.TranslatedAt.UTC().Format(timeLayout),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert translation cache entry %s: %w", key, err)
			}
		}
		return nil
	})
}

type cacheRow struct {
	State        string `db:"state"`
	Title        string `db:"title"`
	Excerpt      string `db:"excerpt"`
	Content      string `db:"content"`
	TranslatedAt string `db:"translated_at"`
}

func (cr *cacheRow) toDomain(key string) (domain.CacheEntry, error) {
	translatedAt, err := time.Parse(timeLayout, cr.TranslatedAt)
	if err != nil {
		return domain.CacheEntry{}, fmt.Errorf("invalid translated_at for %s: %w", key, err)
	}
	return domain.CacheEntry{
		State:        domain.ParseEntryState(cr.State),
		Title:        cr.Title,
		Excerpt:      cr.Excerpt,
		Content:      cr.Content,
		TranslatedAt: translatedAt,
	}, nil
}
