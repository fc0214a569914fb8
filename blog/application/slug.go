package application

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var slugSeparatorRegex = regexp.MustCompile(`[^a-zA-Z0-9\x{4e00}-\x{9fa5}]+`)

// Slugify builds a URL slug from title, keeping ASCII alphanumerics and CJK ideographs,
// and appends the millisecond timestamp of now so repeated titles stay unique.
func Slugify(title string, now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)

	base := slugSeparatorRegex.ReplaceAllString(strings.ToLower(title), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "post-" + ms
	}

	return base + "-" + ms
}
