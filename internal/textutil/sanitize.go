package textutil

import (
	"regexp"
	"strings"
)

// whitespacePattern matches runs of whitespace, including newlines left over
// from HTML text extraction.
var whitespacePattern = regexp.MustCompile(`\s+`)

// slugDropPattern matches characters removed entirely when building a slug.
var slugDropPattern = regexp.MustCompile(`[^\w\s-]`)

// slugJoinPattern matches separator runs collapsed to a single underscore.
var slugJoinPattern = regexp.MustCompile(`[-\s]+`)

// maxSlugLength caps slugs derived from page titles so generated filenames
// stay portable.
const maxSlugLength = 50

// CollapseWhitespace trims value and collapses interior whitespace runs to a
// single space.
func CollapseWhitespace(value string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
}

// Slug converts a title into a lowercase filename-safe token: punctuation is
// dropped, whitespace and dashes become underscores, and the result is capped
// at 50 characters. Returns "untitled" when nothing survives.
func Slug(title string) string {
	cleaned := slugDropPattern.ReplaceAllString(strings.TrimSpace(title), "")
	cleaned = slugJoinPattern.ReplaceAllString(cleaned, "_")
	cleaned = strings.ToLower(strings.Trim(cleaned, "_"))
	if len(cleaned) > maxSlugLength {
		cleaned = strings.Trim(cleaned[:maxSlugLength], "_")
	}
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}
