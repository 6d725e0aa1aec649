package editor

import (
	"cmp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// jsonNode is a node in the document's JSON form, as read by model.NodeFromJSON.
type jsonNode = map[string]interface{}

// ParseHTML builds a document from HTML, keeping only what ext allows.
// Unknown elements are unwrapped, so their text survives as paragraphs.
// The result always contains at least one textblock.
func ParseHTML(src string, ext Extensions) *Document {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	c := &collector{ext: ext}
	if err == nil {
		for _, n := range nodes {
			c.node(n)
		}
		c.flush()
	}
	blocks := c.out
	if !hasTextblock(blocks) {
		blocks = append(blocks, jsonBlock(nodeParagraph, nil, nil))
	}
	root, err := nodeFromJSON(jsonBlock(nodeDoc, nil, blocks))
	if err != nil {
		return emptyDocument()
	}
	return &Document{root: root}
}

func emptyDocument() *Document {
	root, err := nodeFromJSON(jsonBlock(nodeDoc, nil, []jsonNode{jsonBlock(nodeParagraph, nil, nil)}))
	if err != nil {
		panic("editor: empty document does not fit the schema: " + err.Error())
	}
	return &Document{root: root}
}

func jsonBlock(typ string, attrs jsonNode, content []jsonNode) jsonNode {
	n := jsonNode{"type": typ}
	if len(attrs) > 0 {
		n["attrs"] = attrs
	}
	if len(content) > 0 {
		raw := make([]interface{}, len(content))
		for i, c := range content {
			raw[i] = c
		}
		n["content"] = raw
	}
	return n
}

func jsonType(n jsonNode) string {
	s, _ := n["type"].(string)
	return s
}

func jsonContent(n jsonNode) []jsonNode {
	raw, _ := n["content"].([]interface{})
	out := make([]jsonNode, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.(jsonNode))
	}
	return out
}

func jsonText(typ, text string, marks []interface{}) jsonNode {
	if text == "" {
		return nil
	}
	n := jsonNode{"type": typ, "text": text}
	if len(marks) > 0 {
		n["marks"] = marks
	}
	return n
}

func jsonBreak(marks []interface{}) jsonNode {
	n := jsonNode{"type": nodeHardBreak}
	if len(marks) > 0 {
		n["marks"] = marks
	}
	return n
}

// jsonInlines splits plain text into text nodes and hard breaks.
func jsonInlines(text string) []jsonNode {
	var out []jsonNode
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out = append(out, jsonBreak(nil))
		}
		if t := jsonText(nodeText, line, nil); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// inlineText is the text of inline nodes with hard breaks as "\n".
func inlineText(content []jsonNode) string {
	var sb strings.Builder
	for _, n := range content {
		switch jsonType(n) {
		case nodeText:
			sb.WriteString(n["text"].(string))
		case nodeHardBreak:
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func jsonMark(name string, attrs jsonNode) jsonNode {
	m := jsonNode{"type": name}
	if len(attrs) > 0 {
		m["attrs"] = attrs
	}
	return m
}

// addMark returns a new mark list with m replacing any mark of its type.
func addMark(marks []interface{}, m jsonNode) []interface{} {
	out := make([]interface{}, 0, len(marks)+1)
	for _, x := range marks {
		if jsonType(x.(jsonNode)) != jsonType(m) {
			out = append(out, x)
		}
	}
	return append(out, m)
}

func hasTextblock(blocks []jsonNode) bool {
	for _, b := range blocks {
		switch jsonType(b) {
		case nodeImage, nodeIframe, nodeHorizontalRule:
		default:
			return true
		}
	}
	return false
}

var inlineSpace = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingLevel(n *html.Node) int {
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// collector turns a sequence of sibling nodes into blocks.
// Loose inline content is gathered into paragraphs.
type collector struct {
	ext Extensions
	out []jsonNode

	inline []jsonNode
	// current makes the textblock that flush emits; nil means a paragraph.
	current func() jsonNode
}

func (c *collector) flush() {
	content := c.inline
	c.inline = nil
	if strings.TrimSpace(inlineText(content)) == "" {
		return
	}
	c.emit(content)
}

func (c *collector) emit(content []jsonNode) {
	b := jsonBlock(nodeParagraph, nil, nil)
	if c.current != nil {
		b = c.current()
	}
	if len(content) > 0 {
		attrs, _ := b["attrs"].(jsonNode)
		b = jsonBlock(jsonType(b), attrs, content)
	}
	c.out = append(c.out, b)
}

func (c *collector) addInline(n jsonNode) {
	if n != nil {
		c.inline = append(c.inline, n)
	}
}

func (c *collector) children(n *html.Node) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.node(ch)
	}
}

// node handles n in block context.
func (c *collector) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if len(c.inline) == 0 && strings.TrimSpace(n.Data) == "" {
			return
		}
		c.addInline(jsonText(nodeText, inlineSpace.Replace(n.Data), nil))
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.P:
		c.textblock(n, nil)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := headingLevel(n)
		if !c.ext.headingAllowed(level) {
			c.textblock(n, nil)
			return
		}
		c.textblock(n, func() jsonNode { return jsonBlock(nodeHeading, jsonNode{"level": level}, nil) })
	case atom.Ul, atom.Ol:
		c.flush()
		c.list(n)
	case atom.Li:
		c.flush()
		c.children(n)
		c.flush()
	case atom.Blockquote:
		c.flush()
		if !c.ext.Enabled(ExtBlockquote) {
			c.children(n)
			c.flush()
			return
		}
		sub := &collector{ext: c.ext}
		sub.children(n)
		sub.flush()
		c.out = append(c.out, jsonBlock(nodeBlockquote, nil, onlyParagraphs(sub.out)))
	case atom.Pre:
		c.flush()
		c.pre(n)
	case atom.Img, atom.Iframe, atom.Hr:
		c.flush()
		if b := c.atom(n); b != nil {
			c.out = append(c.out, b)
		}
	case atom.Script, atom.Style, atom.Input, atom.Template:
	case atom.Div, atom.Section, atom.Article, atom.Figure, atom.Table, atom.Thead, atom.Tbody,
		atom.Tr, atom.Td, atom.Th, atom.Header, atom.Footer, atom.Main, atom.Aside:
		c.flush()
		c.children(n)
		c.flush()
	default:
		c.inlineNode(n, nil)
	}
}

// textblock reads a paragraph or heading. Atoms inside it split it in two.
func (c *collector) textblock(n *html.Node, mk func() jsonNode) {
	c.flush()
	prev := c.current
	c.current = mk
	start := len(c.out)
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.inlineNode(ch, nil)
	}
	content := c.inline
	c.inline = nil
	if len(content) > 0 || len(c.out) == start {
		c.emit(content)
	}
	c.current = prev
}

// inlineNode handles n in inline context under the given marks.
func (c *collector) inlineNode(n *html.Node, marks []interface{}) {
	switch n.Type {
	case html.TextNode:
		c.addInline(jsonText(nodeText, inlineSpace.Replace(n.Data), marks))
		return
	case html.ElementNode:
	default:
		return
	}

	var mark MarkType
	var markAttrs jsonNode
	switch n.DataAtom {
	case atom.Strong, atom.B:
		mark = MarkBold
	case atom.Em, atom.I:
		mark = MarkItalic
	case atom.U:
		mark = MarkUnderline
	case atom.S, atom.Del, atom.Strike:
		mark = MarkStrike
	case atom.Code:
		mark = MarkCode
	case atom.A:
		if href := attr(n, "href"); href != "" {
			mark, markAttrs = MarkLink, jsonNode{"href": href}
		}
	case atom.Br:
		c.addInline(jsonBreak(marks))
		return
	case atom.Img, atom.Iframe, atom.Hr:
		c.flush()
		if b := c.atom(n); b != nil {
			c.out = append(c.out, b)
		}
		return
	case atom.Script, atom.Style, atom.Input, atom.Template:
		return
	case atom.P, atom.Div, atom.Ul, atom.Ol, atom.Li, atom.Blockquote, atom.Pre, atom.Table,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		// Block inside inline content, only possible in hand-written HTML
		c.flush()
		prev := c.current
		c.current = nil
		c.node(n)
		c.current = prev
		return
	}

	if mark != "" && c.ext.markAllowed(mark) {
		marks = addMark(marks, jsonMark(markNames[mark], markAttrs))
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.inlineNode(ch, marks)
	}
}

func (c *collector) atom(n *html.Node) jsonNode {
	switch n.DataAtom {
	case atom.Img:
		src := attr(n, "src")
		if !c.ext.Enabled(ExtImage) || src == "" {
			return nil
		}
		return jsonBlock(nodeImage, jsonNode{"src": src, "alt": attr(n, "alt"), "title": attr(n, "title")}, nil)
	case atom.Iframe:
		src := attr(n, "src")
		if !c.ext.Enabled(ExtIframe) || src == "" {
			return nil
		}
		return jsonBlock(nodeIframe, jsonNode{
			"src":    src,
			"width":  cmp.Or(attr(n, "width"), DefaultIframeWidth),
			"height": cmp.Or(attr(n, "height"), DefaultIframeHeight),
			"allow":  attr(n, "allow"),
		}, nil)
	case atom.Hr:
		if !c.ext.Enabled(ExtHorizontalRule) {
			return nil
		}
		return jsonBlock(nodeHorizontalRule, nil, nil)
	}
	return nil
}

func (c *collector) pre(n *html.Node) {
	var lang string
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && ch.DataAtom == atom.Code {
			for _, class := range strings.Fields(attr(ch, "class")) {
				if l, ok := strings.CutPrefix(class, "language-"); ok {
					lang = l
					break
				}
			}
			break
		}
	}
	text := textContent(n)
	if !c.ext.Enabled(ExtCodeBlock) {
		c.out = append(c.out, jsonBlock(nodeParagraph, nil, jsonInlines(text)))
		return
	}
	var content []jsonNode
	if t := jsonText(nodeText, text, nil); t != nil {
		content = append(content, t)
	}
	c.out = append(c.out, jsonBlock(nodeCodeBlock, jsonNode{"language": lang}, content))
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			sb.WriteString("\n")
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return sb.String()
}

func (c *collector) list(n *html.Node) {
	typ := nodeBulletList
	ext := ExtBulletList
	if n.DataAtom == atom.Ol {
		typ, ext = nodeOrderedList, ExtOrderedList
	}

	var items []jsonNode
	var loose []*html.Node
	flushLoose := func() {
		if len(loose) == 0 {
			return
		}
		items = append(items, c.listItem(loose))
		loose = nil
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.TextNode && strings.TrimSpace(ch.Data) == "" {
			continue
		}
		if ch.Type == html.ElementNode && ch.DataAtom == atom.Li {
			flushLoose()
			items = append(items, c.listItem(childNodes(ch)))
			continue
		}
		loose = append(loose, ch)
	}
	flushLoose()

	if !c.ext.Enabled(ext) {
		// Keep the text, drop the list structure
		for _, item := range items {
			c.out = append(c.out, jsonContent(item)...)
		}
		return
	}
	if len(items) == 0 {
		return
	}
	var attrs jsonNode
	if typ == nodeOrderedList {
		start := 1
		if s, err := strconv.Atoi(attr(n, "start")); err == nil {
			start = s
		}
		attrs = jsonNode{"start": start}
	}
	c.out = append(c.out, jsonBlock(typ, attrs, items))
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		out = append(out, ch)
	}
	return out
}

func isJSONList(n jsonNode) bool {
	t := jsonType(n)
	return t == nodeBulletList || t == nodeOrderedList
}

// listItem builds a list item holding a paragraph and nested lists.
// Neighbouring paragraphs are joined with a hard break, and the item
// always starts with a paragraph.
func (c *collector) listItem(nodes []*html.Node) jsonNode {
	sub := &collector{ext: c.ext}
	for _, n := range nodes {
		sub.node(n)
	}
	sub.flush()

	var content []jsonNode
	for _, b := range sub.out {
		if isJSONList(b) {
			content = append(content, b)
			continue
		}
		for _, p := range flattenParagraphs([]jsonNode{b}) {
			last := len(content) - 1
			if last >= 0 && jsonType(content[last]) == nodeParagraph {
				joined := append(jsonContent(content[last]), jsonBreak(nil))
				joined = append(joined, jsonContent(p)...)
				content[last] = jsonBlock(nodeParagraph, nil, joined)
				continue
			}
			content = append(content, p)
		}
	}
	if len(content) == 0 || jsonType(content[0]) != nodeParagraph {
		content = append([]jsonNode{jsonBlock(nodeParagraph, nil, nil)}, content...)
	}
	return jsonBlock(nodeListItem, nil, content)
}

// onlyParagraphs flattens blocks into at least one paragraph, keeping their text.
func onlyParagraphs(blocks []jsonNode) []jsonNode {
	out := flattenParagraphs(blocks)
	if len(out) == 0 {
		out = append(out, jsonBlock(nodeParagraph, nil, nil))
	}
	return out
}

// flattenParagraphs turns textblocks into paragraphs and unwraps containers.
// Atoms are dropped.
func flattenParagraphs(blocks []jsonNode) []jsonNode {
	var out []jsonNode
	for _, b := range blocks {
		switch jsonType(b) {
		case nodeParagraph:
			out = append(out, b)
		case nodeHeading:
			out = append(out, jsonBlock(nodeParagraph, nil, jsonContent(b)))
		case nodeCodeBlock:
			out = append(out, jsonBlock(nodeParagraph, nil, jsonInlines(inlineText(jsonContent(b)))))
		case nodeImage, nodeIframe, nodeHorizontalRule:
		default:
			out = append(out, flattenParagraphs(jsonContent(b))...)
		}
	}
	return out
}
