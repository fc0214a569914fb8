package application

import (
	"context"
	"errors"
	"sync"

	"github.com/zhishu/website/blog/domain"
)

var errProviderDown = errors.New("provider down")

// fakeTranslator prefixes each text with the target locale and records every call
type fakeTranslator struct {
	mu         sync.Mutex
	configured bool
	err        error
	calls      int
	batchSizes []int
}

func newFakeTranslator() *fakeTranslator {
	return &fakeTranslator{configured: true}
}

func (f *fakeTranslator) Name() string { return "fake" }

func (f *fakeTranslator) Configured() bool { return f.configured }

func (f *fakeTranslator) TranslateBatch(ctx context.Context, texts []string, target domain.Locale) ([]string, error) {
	f.mu.Lock()
	f.calls++
	f.batchSizes = append(f.batchSizes, len(texts))
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = "[" + string(target) + "] " + t
	}
	return out, nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]domain.CacheEntry
	err     error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]domain.CacheEntry)}
}

func (m *memCache) Get(ctx context.Context, key string) (domain.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.CacheEntry{}, m.err
	}
	return m.entries[key], nil
}

func (m *memCache) GetMany(ctx context.Context, keys []string) (map[string]domain.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]domain.CacheEntry)
	for _, k := range keys {
		if e, ok := m.entries[k]; ok {
			out[k] = e
		}
	}
	return out, nil
}

func (m *memCache) Put(ctx context.Context, key string, entry domain.CacheEntry) error {
	return m.PutMany(ctx, map[string]domain.CacheEntry{key: entry})
}

func (m *memCache) PutMany(ctx context.Context, entries map[string]domain.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for k, e := range entries {
		m.entries[k] = e
	}
	return nil
}

func (m *memCache) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
