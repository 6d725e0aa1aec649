package content

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

const (
	WordsPerMinute = 200

	SEODescriptionLength = 160
	FormExcerptLength    = 300
	ExcerptLength        = 160
)

var (
	paragraphSel = cascadia.MustCompile("p")
	bodySel      = cascadia.MustCompile("body")

	mdHeadingPrefix = regexp.MustCompile(`(?m)^#+\s+`)
	mdLink          = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdEmphasis      = regexp.MustCompile("[*_`]")
	mdReadingNoise  = regexp.MustCompile("[#*`\\[\\]()]")
	trailingWord    = regexp.MustCompile(`\s+\S*$`)
)

// CollapseSpace trims s and folds every whitespace run into one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// blockElements get a space around their text so adjacent blocks don't run together.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "hr": true,
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			sb.WriteByte(' ')
		}
	}
	walk(n)
	return sb.String()
}

func documentText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}
	if body := bodySel.MatchFirst(doc); body != nil {
		return nodeText(body)
	}
	return nodeText(doc)
}

// FirstParagraphText returns the whitespace-collapsed text of the first <p> in content,
// or of the whole document if it has no paragraph.
func FirstParagraphText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}
	if p := paragraphSel.MatchFirst(doc); p != nil {
		return CollapseSpace(nodeText(p))
	}
	if body := bodySel.MatchFirst(doc); body != nil {
		return CollapseSpace(nodeText(body))
	}
	return CollapseSpace(nodeText(doc))
}

// CalculateReadingTime estimates minutes of reading at WordsPerMinute.
// Any non-empty content takes at least a minute.
func CalculateReadingTime(content string) int {
	var text string
	if IsHTML(content) {
		text = documentText(content)
	} else {
		text = mdReadingNoise.ReplaceAllString(content, "")
	}
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / WordsPerMinute))
}

// ExtractExcerpt returns up to maxLen runes of content's text.
// Longer text is cut at a word boundary and suffixed with "...".
func ExtractExcerpt(content string, maxLen int) string {
	var text string
	if IsHTML(content) {
		text = documentText(content)
	} else {
		text = mdHeadingPrefix.ReplaceAllString(content, "")
		text = mdLink.ReplaceAllString(text, "$1")
		text = mdEmphasis.ReplaceAllString(text, "")
	}
	text = CollapseSpace(text)

	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	return trailingWord.ReplaceAllString(Truncate(text, maxLen), "") + "..."
}
