package mdrenderer

import (
	"strings"
)

var _ Visitor = &textRenderer{}

// textRenderer flattens tokens to their visible text.
// Blocks are separated by newlines, markup is dropped.
type textRenderer struct {
	sb strings.Builder
}

func plainText(tokens []Token) string {
	var r textRenderer
	r.all(tokens)
	return strings.TrimSpace(r.sb.String())
}

func (r *textRenderer) all(tokens []Token) {
	for _, t := range tokens {
		t.Accept(r)
	}
}

func (r *textRenderer) block(children []Token) {
	r.all(children)
	r.sb.WriteByte('\n')
}

func (r *textRenderer) VisitText(t *Text)         { r.sb.WriteString(t.Value) }
func (r *textRenderer) VisitStrong(t *Strong)     { r.all(t.Children) }
func (r *textRenderer) VisitEm(t *Em)             { r.all(t.Children) }
func (r *textRenderer) VisitDel(t *Del)           { r.all(t.Children) }
func (r *textRenderer) VisitCodeSpan(t *CodeSpan) { r.sb.WriteString(t.Value) }
func (r *textRenderer) VisitLink(t *Link)         { r.all(t.Children) }
func (r *textRenderer) VisitImage(t *Image)       { r.sb.WriteString(t.Alt) }
func (r *textRenderer) VisitBreak(*Break)         { r.sb.WriteByte('\n') }
func (r *textRenderer) VisitRule(*Rule)           { r.sb.WriteByte('\n') }

func (r *textRenderer) VisitCode(t *Code) {
	r.sb.WriteString(t.Value)
	r.sb.WriteByte('\n')
}

func (r *textRenderer) VisitParagraph(t *Paragraph)   { r.block(t.Children) }
func (r *textRenderer) VisitHeading(t *Heading)       { r.block(t.Children) }
func (r *textRenderer) VisitBlockquote(t *Blockquote) { r.all(t.Children) }
func (r *textRenderer) VisitListItem(t *ListItem)     { r.all(t.Children) }

func (r *textRenderer) VisitList(t *List) {
	for _, item := range t.Items {
		item.Accept(r)
	}
}

func (r *textRenderer) VisitTable(t *Table) {
	cells := func(row []*TableCell) {
		for i, cell := range row {
			if i > 0 {
				r.sb.WriteByte(' ')
			}
			r.all(cell.Children)
		}
		r.sb.WriteByte('\n')
	}
	cells(t.Header)
	for _, row := range t.Rows {
		cells(row)
	}
}

func (r *textRenderer) VisitRaw(t *Raw) {
	if len(t.Children) > 0 {
		r.all(t.Children)
		return
	}
	r.sb.WriteString(t.Value)
}
