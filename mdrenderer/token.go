package mdrenderer

// Token is a node of a parsed markdown document.
// Tokens are only ever consumed through a Visitor, so a new token type
// must be handled by every visitor before the package compiles again.
type Token interface {
	Accept(v Visitor)
}

type Visitor interface {
	VisitText(*Text)
	VisitStrong(*Strong)
	VisitEm(*Em)
	VisitDel(*Del)
	VisitCodeSpan(*CodeSpan)
	VisitCode(*Code)
	VisitLink(*Link)
	VisitImage(*Image)
	VisitBreak(*Break)
	VisitParagraph(*Paragraph)
	VisitHeading(*Heading)
	VisitList(*List)
	VisitListItem(*ListItem)
	VisitBlockquote(*Blockquote)
	VisitRule(*Rule)
	VisitTable(*Table)
	VisitRaw(*Raw)
}

type Text struct {
	Value string
}

type Strong struct {
	Children []Token
}

type Em struct {
	Children []Token
}

// Del is GFM strikethrough.
type Del struct {
	Children []Token
}

type CodeSpan struct {
	Value string
}

// Code is a fenced or indented code block.
type Code struct {
	Lang  string
	Value string
}

type Link struct {
	Href     string
	Title    string
	Children []Token
}

type Image struct {
	Src   string
	Alt   string
	Title string
}

// Break is a line break. Soft breaks are rendered like hard ones.
type Break struct {
	Hard bool
}

type Paragraph struct {
	Children []Token
}

type Heading struct {
	Depth    int
	Children []Token
}

type List struct {
	Ordered bool
	Start   int
	Items   []*ListItem
}

type ListItem struct {
	Task     bool
	Checked  bool
	Children []Token
}

type Blockquote struct {
	Children []Token
}

type Rule struct{}

type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return ""
	}
}

type Table struct {
	Align  []Alignment
	Header []*TableCell
	Rows   [][]*TableCell
}

type TableCell struct {
	Children []Token
}

// Raw is anything the tokenizer produced that has no dedicated token type,
// including inline and block HTML. It renders its children if it has any,
// its escaped value otherwise.
type Raw struct {
	Value    string
	Children []Token
}

func (t *Text) Accept(v Visitor)       { v.VisitText(t) }
func (t *Strong) Accept(v Visitor)     { v.VisitStrong(t) }
func (t *Em) Accept(v Visitor)         { v.VisitEm(t) }
func (t *Del) Accept(v Visitor)        { v.VisitDel(t) }
func (t *CodeSpan) Accept(v Visitor)   { v.VisitCodeSpan(t) }
func (t *Code) Accept(v Visitor)       { v.VisitCode(t) }
func (t *Link) Accept(v Visitor)       { v.VisitLink(t) }
func (t *Image) Accept(v Visitor)      { v.VisitImage(t) }
func (t *Break) Accept(v Visitor)      { v.VisitBreak(t) }
func (t *Paragraph) Accept(v Visitor)  { v.VisitParagraph(t) }
func (t *Heading) Accept(v Visitor)    { v.VisitHeading(t) }
func (t *List) Accept(v Visitor)       { v.VisitList(t) }
func (t *ListItem) Accept(v Visitor)   { v.VisitListItem(t) }
func (t *Blockquote) Accept(v Visitor) { v.VisitBlockquote(t) }
func (t *Rule) Accept(v Visitor)       { v.VisitRule(t) }
func (t *Table) Accept(v Visitor)      { v.VisitTable(t) }
func (t *Raw) Accept(v Visitor)        { v.VisitRaw(t) }
