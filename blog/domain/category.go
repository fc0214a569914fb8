package domain

import "strings"

// Category is the closed set of post categories.
type Category string

const (
	// CategoryLatest is a listing sentinel meaning "no filter". It is never stored on a post.
	CategoryLatest   Category = "latest"
	CategoryTech     Category = "tech"
	CategoryProduct  Category = "product"
	CategoryThinking Category = "thinking"

	DefaultCategory = CategoryTech
)

var storableCategories = map[Category]struct{}{
	CategoryTech:     {},
	CategoryProduct:  {},
	CategoryThinking: {},
}

// ParseCategory recognizes storable categories and the latest sentinel.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == CategoryLatest {
		return c, true
	}
	if _, ok := storableCategories[c]; ok {
		return c, true
	}
	return "", false
}

// NormalizeCategory maps s onto a storable category, falling back to DefaultCategory.
func NormalizeCategory(s string) Category {
	c, ok := ParseCategory(s)
	if !ok || c == CategoryLatest {
		return DefaultCategory
	}
	return c
}
