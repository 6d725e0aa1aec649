// Package content classifies post sources and derives the fields computed from them.
package content

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/vibeworks/inkwell/mdrenderer"
)

// htmlSniff matches the opening of any block tag the editor produces.
// Attributes are tolerated so "<h1 id=...>" is recognized too.
var htmlSniff = regexp.MustCompile(`(?i)<(?:(?:p|div|h[1-6]|ul|ol|blockquote|code|pre)[\s>]|(?:img|iframe)\b)`)

// IsHTML reports whether content looks like editor HTML rather than markdown.
// Markdown that happens to contain a literal block tag is classified as HTML.
func IsHTML(content string) bool {
	return htmlSniff.MatchString(content)
}

// ToHTML returns content as HTML, rendering it first if it is markdown.
// The result still has to be sanitized before it is stored or displayed.
func ToHTML(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if IsHTML(content) {
		return content
	}
	return mdrenderer.RenderMarkdown(content)
}

// ToMarkdown converts stored HTML back into markdown for export.
func ToMarkdown(html string) (string, error) {
	if html == "" {
		return "", nil
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("could not convert html to markdown: %w", err)
	}
	return md, nil
}

// PlainText returns the visible text of a post source, HTML or markdown.
func PlainText(content string) string {
	if IsHTML(content) {
		return documentText(content)
	}
	return mdrenderer.PlainText(content)
}
