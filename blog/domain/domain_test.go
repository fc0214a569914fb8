package domain

import (
	"testing"
	"time"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Category
	}{
		{name: "Known category", input: "product", expected: CategoryProduct},
		{name: "Mixed case", input: " Thinking ", expected: CategoryThinking},
		{name: "Empty falls back", input: "", expected: DefaultCategory},
		{name: "Unknown falls back", input: "gossip", expected: DefaultCategory},
		{name: "Latest is not storable", input: "latest", expected: DefaultCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeCategory(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseCategory_Latest(t *testing.T) {
	c, ok := ParseCategory("latest")
	if !ok || c != CategoryLatest {
		t.Errorf("ParseCategory(latest) = %q, %v, want %q, true", c, ok, CategoryLatest)
	}
	if _, ok := ParseCategory("nope"); ok {
		t.Error("ParseCategory(nope) should not be recognized")
	}
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected Locale
		ok       bool
	}{
		{"zh", LocaleZH, true},
		{"EN", LocaleEN, true},
		{"fr", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		result, ok := ParseLocale(tt.input)
		if result != tt.expected || ok != tt.ok {
			t.Errorf("ParseLocale(%q) = %q, %v, want %q, %v", tt.input, result, ok, tt.expected, tt.ok)
		}
	}
}

func TestLocale_ProviderCode(t *testing.T) {
	if got := LocaleZH.ProviderCode(); got != "zh-CN" {
		t.Errorf("LocaleZH.ProviderCode() = %q, want zh-CN", got)
	}
	if got := LocaleEN.ProviderCode(); got != "en" {
		t.Errorf("LocaleEN.ProviderCode() = %q, want en", got)
	}
}

func TestPostPatch_Apply(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	original := Post{
		ID:        "p1",
		Title:     "Old",
		Content:   "<p>body</p>",
		Category:  CategoryTech,
		Author:    Author{Name: "A", Title: "Eng"},
		CreatedAt: now,
		UpdatedAt: now,
		Published: true,
	}

	title := "New"
	published := false
	bogus := Category("bogus")
	patched := PostPatch{Title: &title, Published: &published, Category: &bogus}.Apply(original)

	if patched.Title != "New" {
		t.Errorf("Title = %q, want New", patched.Title)
	}
	if patched.Published {
		t.Error("Published should be false after patch")
	}
	if patched.Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", patched.Category, DefaultCategory)
	}
	if patched.Content != original.Content || patched.Author != original.Author {
		t.Error("untouched fields changed")
	}
	if original.Title != "Old" {
		t.Error("Apply must not modify its input")
	}
}

func TestCacheEntry_States(t *testing.T) {
	at := time.Now()
	var absent CacheEntry
	if absent.HasSummary() || absent.IsFull() {
		t.Error("zero entry must be absent")
	}

	partial := PartialEntry("t", "e", at)
	if !partial.HasSummary() || partial.IsFull() {
		t.Error("partial entry must have a summary but not be full")
	}

	full := FullEntry("t", "e", "", at)
	if !full.IsFull() {
		t.Error("full entry with empty content is still full")
	}

	if got := CacheKey("abc", LocaleEN); got != "abc_en" {
		t.Errorf("CacheKey = %q, want abc_en", got)
	}
}

func TestEntryState_RoundTrip(t *testing.T) {
	for _, s := range []EntryState{EntryAbsent, EntryPartial, EntryFull} {
		if got := ParseEntryState(s.String()); got != s {
			t.Errorf("ParseEntryState(%q) = %v, want %v", s.String(), got, s)
		}
	}
}
