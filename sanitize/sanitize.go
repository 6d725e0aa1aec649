// Package sanitize is the single boundary that decides which HTML may be
// injected into public pages.
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// AllowedElements is the complete set of tags that survive sanitization.
var AllowedElements = []string{
	"p", "br", "strong", "em", "u", "s",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"ul", "ol", "li", "blockquote", "code", "pre",
	"a", "img", "hr",
	"table", "thead", "tbody", "tr", "th", "td",
	"div", "span", "iframe",
}

var (
	alignRegex   = regexp.MustCompile(`(?i)^(left|center|right|justify)$`)
	loadingRegex = regexp.MustCompile(`^(lazy|eager)$`)
	featureRegex = regexp.MustCompile(`^[a-zA-Z0-9\-;=' ]*$`)
	targetRegex  = regexp.MustCompile(`^(_blank|_self)$`)
	sizeRegex    = regexp.MustCompile(`^\d+(\.\d+)?(px|%|em|rem|vw|vh)?$`)
)

var defaultPolicy = NewPolicy()

// NewPolicy builds the allow-list policy. A policy must not be changed after
// its first use; Sanitize shares one across goroutines.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedElements...)

	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowAttrs("id").Matching(bluemonday.Paragraph).Globally()
	p.AllowStyles("text-align").Matching(alignRegex).Globally()
	p.AllowStyles("width", "height", "max-width", "max-height").Matching(sizeRegex).Globally()

	p.AllowAttrs("href", "title", "rel").OnElements("a")
	p.AllowAttrs("target").Matching(targetRegex).OnElements("a")

	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("loading").Matching(loadingRegex).OnElements("img")
	p.AllowAttrs("width", "height").Matching(sizeRegex).OnElements("img", "iframe")

	p.AllowAttrs("src", "allowfullscreen").OnElements("iframe")
	p.AllowAttrs("frameborder").Matching(bluemonday.Integer).OnElements("iframe")
	p.AllowAttrs("allow").Matching(featureRegex).OnElements("iframe")

	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.AllowAttrs("align").Matching(alignRegex).OnElements("th", "td")
	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("th", "td")

	p.AllowURLSchemes("http", "https", "ftp", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	p.AllowDataURIImages()

	p.SkipElementsContent(
		"script", "style", "object", "embed", "noscript", "template",
		"textarea", "select", "svg", "math", "form", "button",
	)
	return p
}

// Sanitize strips everything outside the allow-list. Stripping is silent.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return defaultPolicy.Sanitize(html)
}
