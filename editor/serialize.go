package editor

import (
	"strconv"
	"strings"

	"github.com/cozy/prosemirror-go/model"
	"github.com/vibeworks/inkwell/mdrenderer"
)

const (
	DefaultIframeWidth  = "100%"
	DefaultIframeHeight = "400px"
)

// HTML serializes the document. ParseHTML of the result yields an equal document.
func (d *Document) HTML() string {
	var sb strings.Builder
	for _, b := range children(d.root) {
		writeBlock(&sb, b)
	}
	return sb.String()
}

func writeAttr(sb *strings.Builder, key, val string) {
	if val == "" {
		return
	}
	sb.WriteString(" " + key + `="`)
	sb.WriteString(mdrenderer.Escape(val))
	sb.WriteString(`"`)
}

func writeBlock(sb *strings.Builder, b *model.Node) {
	switch nodeName(b) {
	case nodeParagraph:
		sb.WriteString("<p>")
		writeInlines(sb, b)
		sb.WriteString("</p>")
	case nodeHeading:
		var inner strings.Builder
		writeInlines(&inner, b)
		tag := "h" + strconv.Itoa(intAttr(b, "level"))
		sb.WriteString("<" + tag)
		writeAttr(sb, "id", mdrenderer.HeadingID(inner.String()))
		sb.WriteString(">" + inner.String() + "</" + tag + ">")
	case nodeBulletList, nodeOrderedList:
		tag := "ul"
		ordered := nodeName(b) == nodeOrderedList
		if ordered {
			tag = "ol"
		}
		sb.WriteString("<" + tag)
		if start := intAttr(b, "start"); ordered && start != 1 {
			writeAttr(sb, "start", strconv.Itoa(start))
		}
		sb.WriteString(">")
		for _, item := range children(b) {
			writeBlock(sb, item)
		}
		sb.WriteString("</" + tag + ">")
	case nodeListItem:
		// Paragraphs inside list items are written without <p>
		sb.WriteString("<li>")
		for _, c := range children(b) {
			if nodeName(c) == nodeParagraph {
				writeInlines(sb, c)
				continue
			}
			writeBlock(sb, c)
		}
		sb.WriteString("</li>")
	case nodeBlockquote:
		sb.WriteString("<blockquote>")
		for _, c := range children(b) {
			writeBlock(sb, c)
		}
		sb.WriteString("</blockquote>")
	case nodeCodeBlock:
		sb.WriteString("<pre><code")
		if lang := stringAttr(b, "language"); lang != "" {
			writeAttr(sb, "class", "language-"+lang)
		}
		sb.WriteString(">")
		sb.WriteString(mdrenderer.Escape(blockText(b)))
		sb.WriteString("</code></pre>")
	case nodeImage:
		sb.WriteString("<img")
		writeAttr(sb, "src", stringAttr(b, "src"))
		writeAttr(sb, "alt", stringAttr(b, "alt"))
		writeAttr(sb, "title", stringAttr(b, "title"))
		sb.WriteString(">")
	case nodeIframe:
		sb.WriteString("<iframe")
		writeAttr(sb, "src", stringAttr(b, "src"))
		writeAttr(sb, "width", stringAttr(b, "width"))
		writeAttr(sb, "height", stringAttr(b, "height"))
		sb.WriteString(` frameborder="0"`)
		writeAttr(sb, "allow", stringAttr(b, "allow"))
		sb.WriteString(" allowfullscreen></iframe>")
	case nodeHorizontalRule:
		sb.WriteString("<hr>")
	}
}

var markTags = map[string]string{
	"strong":    "strong",
	"em":        "em",
	"underline": "u",
	"strike":    "s",
	"code":      "code",
}

func openMark(sb *strings.Builder, m *model.Mark) {
	if markName(m) == "link" {
		sb.WriteString(`<a href="` + mdrenderer.Escape(markHref(m)) + `" target="_blank" rel="noopener noreferrer">`)
		return
	}
	sb.WriteString("<" + markTags[markName(m)] + ">")
}

func closeMark(sb *strings.Builder, m *model.Mark) {
	if markName(m) == "link" {
		sb.WriteString("</a>")
		return
	}
	sb.WriteString("</" + markTags[markName(m)] + ">")
}

func sameMark(a, b *model.Mark) bool {
	return markName(a) == markName(b) && markHref(a) == markHref(b)
}

// writeInlines writes the content of a textblock. Marks shared by
// neighbouring nodes stay open across them.
func writeInlines(sb *strings.Builder, tb *model.Node) {
	var open []*model.Mark
	for _, n := range children(tb) {
		keep := 0
		for keep < len(open) && keep < len(n.Marks) && sameMark(open[keep], n.Marks[keep]) {
			keep++
		}
		for i := len(open) - 1; i >= keep; i-- {
			closeMark(sb, open[i])
		}
		open = open[:keep]
		for _, m := range n.Marks[keep:] {
			openMark(sb, m)
			open = append(open, m)
		}

		switch nodeName(n) {
		case nodeText:
			sb.WriteString(mdrenderer.Escape(nodeText(n)))
		case nodeHardBreak:
			sb.WriteString("<br>")
		}
	}
	for i := len(open) - 1; i >= 0; i-- {
		closeMark(sb, open[i])
	}
}
