package mdrenderer

import (
	"html"
	"regexp"
	"strings"
)

const maxHeadingIDLen = 50

var (
	breakRegex   = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRegex     = regexp.MustCompile(`<[^>]*>`)
	nonWordRegex = regexp.MustCompile(`[^a-z0-9_]+`)
)

// HeadingID derives the anchor id of a heading from its rendered inner HTML.
// Line breaks separate words. The result only ever contains [a-z0-9_-] and may be empty.
func HeadingID(innerHTML string) string {
	s := breakRegex.ReplaceAllString(innerHTML, " ")
	s = tagRegex.ReplaceAllString(s, "")
	s = strings.ToLower(html.UnescapeString(s))
	s = nonWordRegex.ReplaceAllString(s, "-")
	if len(s) > maxHeadingIDLen {
		s = s[:maxHeadingIDLen]
	}
	return strings.Trim(s, "-")
}
