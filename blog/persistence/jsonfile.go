package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zhishu/website/blog/domain"
)

// ensureFile creates the containing directory and an empty document when either is missing.
func ensureFile(path string, empty []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return writeFileAtomic(path, empty)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// writeJSON re-serializes the whole document, pretty-printed with two-space indent.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic replaces path via a sibling temp file so readers never see a torn document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func sortNewestFirst(posts []*domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func filterPublished(posts []*domain.Post) []*domain.Post {
	published := make([]*domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.Published {
			published = append(published, p)
		}
	}
	return published
}

func filterCategory(posts []*domain.Post, category domain.Category) []*domain.Post {
	if category == domain.CategoryLatest {
		return posts
	}
	matched := make([]*domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return matched
}

// timestampResolution matches the millisecond precision of wire timestamps.
const timestampResolution = time.Millisecond

// nextUpdatedAt keeps UpdatedAt strictly increasing at timestampResolution.
func nextUpdatedAt(prev, now time.Time) time.Time {
	now = now.Truncate(timestampResolution)
	if !now.After(prev) {
		return prev.Add(timestampResolution)
	}
	return now
}

func utcNow() time.Time {
	return time.Now().UTC()
}
