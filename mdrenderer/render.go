package mdrenderer

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/util"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape replaces the five HTML-significant characters with entities.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

func escapeURL(s string) string {
	return Escape(string(util.URLEscape([]byte(s), true)))
}

var _ Visitor = &htmlRenderer{}

type htmlRenderer struct {
	sb strings.Builder
}

func renderHTML(tokens []Token) string {
	var r htmlRenderer
	r.all(tokens)
	return r.sb.String()
}

func (r *htmlRenderer) all(tokens []Token) {
	for _, t := range tokens {
		t.Accept(r)
	}
}

func (r *htmlRenderer) wrap(open string, children []Token, close string) {
	r.sb.WriteString(open)
	r.all(children)
	r.sb.WriteString(close)
}

func (r *htmlRenderer) VisitText(t *Text) {
	r.sb.WriteString(Escape(t.Value))
}

func (r *htmlRenderer) VisitStrong(t *Strong) {
	r.wrap("<strong>", t.Children, "</strong>")
}

func (r *htmlRenderer) VisitEm(t *Em) {
	r.wrap("<em>", t.Children, "</em>")
}

func (r *htmlRenderer) VisitDel(t *Del) {
	r.wrap("<s>", t.Children, "</s>")
}

func (r *htmlRenderer) VisitCodeSpan(t *CodeSpan) {
	r.sb.WriteString("<code>")
	r.sb.WriteString(Escape(t.Value))
	r.sb.WriteString("</code>")
}

func (r *htmlRenderer) VisitCode(t *Code) {
	lang := t.Lang
	if lang == "" {
		lang = "text"
	}
	r.sb.WriteString(`<pre><code class="language-`)
	r.sb.WriteString(Escape(lang))
	r.sb.WriteString(`">`)
	r.sb.WriteString(Escape(t.Value))
	r.sb.WriteString("</code></pre>")
}

func (r *htmlRenderer) VisitLink(t *Link) {
	r.sb.WriteString(`<a href="`)
	r.sb.WriteString(escapeURL(t.Href))
	r.sb.WriteString(`"`)
	if t.Title != "" {
		r.sb.WriteString(` title="`)
		r.sb.WriteString(Escape(t.Title))
		r.sb.WriteString(`"`)
	}
	r.wrap(` target="_blank" rel="noopener noreferrer">`, t.Children, "</a>")
}

func (r *htmlRenderer) VisitImage(t *Image) {
	r.sb.WriteString(`<img src="`)
	r.sb.WriteString(escapeURL(t.Src))
	r.sb.WriteString(`" alt="`)
	r.sb.WriteString(Escape(t.Alt))
	r.sb.WriteString(`"`)
	if t.Title != "" {
		r.sb.WriteString(` title="`)
		r.sb.WriteString(Escape(t.Title))
		r.sb.WriteString(`"`)
	}
	r.sb.WriteString(` loading="lazy">`)
}

func (r *htmlRenderer) VisitBreak(*Break) {
	r.sb.WriteString("<br>")
}

func (r *htmlRenderer) VisitParagraph(t *Paragraph) {
	r.wrap("<p>", t.Children, "</p>")
}

func (r *htmlRenderer) VisitHeading(t *Heading) {
	depth := min(max(t.Depth, 1), 6)
	inner := renderHTML(t.Children)
	tag := "h" + strconv.Itoa(depth)

	r.sb.WriteString("<" + tag)
	if id := HeadingID(inner); id != "" {
		r.sb.WriteString(` id="` + id + `"`)
	}
	r.sb.WriteString(">")
	r.sb.WriteString(inner)
	r.sb.WriteString("</" + tag + ">")
}

func (r *htmlRenderer) VisitList(t *List) {
	tag := "ul"
	if t.Ordered {
		tag = "ol"
	}
	r.sb.WriteString("<" + tag)
	if t.Ordered && t.Start != 1 {
		r.sb.WriteString(` start="` + strconv.Itoa(t.Start) + `"`)
	}
	r.sb.WriteString(">")
	for _, item := range t.Items {
		item.Accept(r)
	}
	r.sb.WriteString("</" + tag + ">")
}

// VisitListItem renders paragraphs inline, without <p> wrappers.
// Consecutive paragraphs are separated by a <br>.
func (r *htmlRenderer) VisitListItem(t *ListItem) {
	r.sb.WriteString("<li>")
	if t.Task {
		if t.Checked {
			r.sb.WriteString(`<input type="checkbox" checked disabled>`)
		} else {
			r.sb.WriteString(`<input type="checkbox" disabled>`)
		}
	}
	prevInline := false
	for _, child := range t.Children {
		if p, ok := child.(*Paragraph); ok {
			if prevInline {
				r.sb.WriteString("<br>")
			}
			r.all(p.Children)
			prevInline = true
			continue
		}
		prevInline = false
		child.Accept(r)
	}
	r.sb.WriteString("</li>")
}

func (r *htmlRenderer) VisitBlockquote(t *Blockquote) {
	r.wrap("<blockquote>", t.Children, "</blockquote>")
}

func (r *htmlRenderer) VisitRule(*Rule) {
	r.sb.WriteString("<hr>")
}

func (r *htmlRenderer) VisitTable(t *Table) {
	r.sb.WriteString("<table><thead>")
	r.row("th", t.Header, t.Align)
	r.sb.WriteString("</thead>")
	if len(t.Rows) > 0 {
		r.sb.WriteString("<tbody>")
		for _, row := range t.Rows {
			r.row("td", row, t.Align)
		}
		r.sb.WriteString("</tbody>")
	}
	r.sb.WriteString("</table>")
}

func (r *htmlRenderer) row(tag string, cells []*TableCell, align []Alignment) {
	r.sb.WriteString("<tr>")
	for i, cell := range cells {
		r.sb.WriteString("<" + tag)
		if i < len(align) && align[i] != AlignNone {
			r.sb.WriteString(` align="` + align[i].String() + `"`)
		}
		r.wrap(">", cell.Children, "</"+tag+">")
	}
	r.sb.WriteString("</tr>")
}

// VisitRaw never passes raw HTML through.
func (r *htmlRenderer) VisitRaw(t *Raw) {
	if len(t.Children) > 0 {
		r.all(t.Children)
		return
	}
	r.sb.WriteString(Escape(t.Value))
}
