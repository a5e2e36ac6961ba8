// Package sanitize cleans free text typed into forms and search boxes.
//
// Text pasted from web pages often carries:
//   - Windows/Mac line endings (CRLF/CR)
//   - Invisible Unicode characters (zero-width spaces, BOM, soft hyphens)
//   - Runs of spaces and tabs
package sanitize

import (
	"regexp"
	"strings"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
	anySpace   = regexp.MustCompile(`\s+`)
)

var invisibleChars = strings.NewReplacer(
	"\u200B", "", // Zero-width space
	"\u200C", "", // Zero-width non-joiner
	"\u200D", "", // Zero-width joiner
	"\uFEFF", "", // Zero-width no-break space (BOM)
	"\u00AD", "", // Soft hyphen
	"\u2060", "", // Word joiner
	"\u180E", "", // Mongolian vowel separator
)

// Line cleans single-line input such as a title or a search query.
// Every whitespace run, newlines included, becomes one space.
func Line(s string) string {
	if s == "" {
		return s
	}
	s = invisibleChars.Replace(s)
	s = anySpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Text cleans multi-line input such as a description. Line endings become
// LF, space runs collapse, and at most one blank line is kept between
// paragraphs.
func Text(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = invisibleChars.Replace(s)
	s = spaceRun.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
