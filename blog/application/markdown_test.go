package application

import (
	"strings"
	"testing"
)

func TestParseContentFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ContentFormat
		ok       bool
	}{
		{"", FormatHTML, true},
		{"html", FormatHTML, true},
		{"Markdown", FormatMarkdown, true},
		{"rst", "", false},
	}

	for _, tt := range tests {
		result, ok := ParseContentFormat(tt.input)
		if result != tt.expected || ok != tt.ok {
			t.Errorf("ParseContentFormat(%q) = %q, %v, want %q, %v", tt.input, result, ok, tt.expected, tt.ok)
		}
	}
}

func TestMarkdownRendererImpl_Render(t *testing.T) {
	renderer := NewMarkdownRenderer()

	tests := []struct {
		name     string
		markdown string
		contains []string
	}{
		{
			name:     "Heading and paragraph",
			markdown: "# 标题\n\n第一段",
			contains: []string{`<h1 id=`, "标题</h1>", "<p>第一段</p>"},
		},
		{
			name:     "GFM table",
			markdown: "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "Strikethrough",
			markdown: "~~old~~",
			contains: []string{"<del>old</del>"},
		},
		{
			name:     "Task list",
			markdown: "- [x] done",
			contains: []string{`type="checkbox"`},
		},
		{
			name:     "Raw HTML allowed",
			markdown: "<div class=\"note\">hi</div>",
			contains: []string{`<div class="note">hi</div>`},
		},
		{
			name:     "Hard wraps",
			markdown: "line one\nline two",
			contains: []string{"line one<br />"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render([]byte(tt.markdown))
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(string(result), want) {
					t.Errorf("Render() = %q, want it to contain %q", result, want)
				}
			}
		})
	}
}

func TestNewMarkdownRenderer(t *testing.T) {
	renderer := NewMarkdownRenderer()

	impl, ok := renderer.(*MarkdownRendererImpl)
	if !ok {
		t.Fatal("NewMarkdownRenderer did not return *MarkdownRendererImpl")
	}
	if impl.renderer == nil {
		t.Error("goldmark renderer not initialized")
	}
}

func TestIsRelativeLink(t *testing.T) {
	tests := []struct {
		name     string
		dest     string
		expected bool
	}{
		{name: "Bare file", dest: "photo.png", expected: true},
		{name: "Dot slash", dest: "./photo.png", expected: true},
		{name: "Parent dir", dest: "../posts/other.md", expected: true},
		{name: "Site absolute", dest: "/images/photo.png", expected: false},
		{name: "Protocol relative", dest: "//cdn.example.com/a.png", expected: false},
		{name: "HTTPS", dest: "https://example.com", expected: false},
		{name: "Mailto", dest: "mailto:hi@example.com", expected: false},
		{name: "Anchor", dest: "#section", expected: false},
		{name: "Empty", dest: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRelativeLink(tt.dest)
			if result != tt.expected {
				t.Errorf("isRelativeLink(%q) = %v, want %v", tt.dest, result, tt.expected)
			}
		})
	}
}

func TestRelativeLinkTransformer(t *testing.T) {
	renderer := NewMarkdownRenderer()

	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{
			name:     "Relative image",
			markdown: "![alt](./assets/diagram.png)",
			expected: `src="/images/diagram.png"`,
		},
		{
			name:     "Absolute image untouched",
			markdown: "![alt](https://cdn.example.com/a.png)",
			expected: `src="https://cdn.example.com/a.png"`,
		},
		{
			name:     "Relative markdown link",
			markdown: "[next](../drafts/hello-world-1.md)",
			expected: `href="/blog/hello-world-1"`,
		},
		{
			name:     "Relative non-markdown link untouched",
			markdown: "[file](notes.txt)",
			expected: `href="notes.txt"`,
		},
		{
			name:     "Site link untouched",
			markdown: "[about](/about)",
			expected: `href="/about"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render([]byte(tt.markdown))
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.Contains(string(result), tt.expected) {
				t.Errorf("Render() = %q, want it to contain %q", result, tt.expected)
			}
		})
	}
}
