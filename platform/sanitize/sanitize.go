// Package sanitize provides text sanitization for free-form customer input
// before it is written to the record store.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`[ \t]+`)
	entityReplacer  = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	)
)

// stripHTML drops tags, decodes the common entities, then drops any tags
// the decode revealed.
func stripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes multi-line input such as visit instructions or driver notes.
// Line breaks survive; runs of spaces collapse.
func Text(s string) string {
	lines := strings.Split(stripHTML(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Line sanitizes single-line input such as names and addresses.
func Line(s string) string {
	return strings.Join(strings.Fields(stripHTML(s)), " ")
}
