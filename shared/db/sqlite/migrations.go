package sqlite

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of schema changes. Applied versions are recorded
// in schema_migrations and skipped on later runs.
var migrations = []migration{
	{
		version: 1,
		name:    "create_posts_table",
		up: `
			CREATE TABLE IF NOT EXISTS posts (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				slug TEXT NOT NULL,
				excerpt TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL,
				cover_image TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL,
				author_name TEXT NOT NULL DEFAULT '',
				author_title TEXT NOT NULL DEFAULT '',
				author_avatar TEXT NOT NULL DEFAULT '',
				published INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_posts_created_at
			ON posts(created_at DESC);

			CREATE INDEX IF NOT EXISTS idx_posts_slug
			ON posts(slug);
		`,
	},
	{
		version: 2,
		name:    "create_translation_cache_table",
		up: `
			CREATE TABLE IF NOT EXISTS translation_cache (
				cache_key TEXT PRIMARY KEY,
				state TEXT NOT NULL,
				title TEXT NOT NULL,
				excerpt TEXT NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				translated_at TEXT NOT NULL
			);
		`,
	},
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
	}

	if _, err := tx.Exec(m.up); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
	}
	return nil
}
