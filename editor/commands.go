package editor

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"
)

func (tr *transaction) step(s transform.Step) error {
	doc, err := tr.doc.apply(s)
	if err != nil {
		return err
	}
	tr.doc = doc
	return nil
}

// replace swaps [from, to) for nodes, opened by openStart and openEnd levels.
func (tr *transaction) replace(from, to int, nodes []*model.Node, openStart, openEnd int) error {
	return tr.step(replaceStep(from, to, newSlice(nodes, openStart, openEnd)))
}

// replaceNode swaps the node at path for nodes.
func (tr *transaction) replaceNode(path []int, nodes ...*model.Node) error {
	from, to, _, err := tr.doc.span(path)
	if err != nil {
		return err
	}
	return tr.replace(from, to, nodes, 0, 0)
}

// textblock returns the textblock holding the selection and the position where its content starts.
func (tr *transaction) textblock() (*model.Node, int, error) {
	start, b, err := tr.doc.contentStart(tr.sel.Head.Path)
	if err != nil {
		return nil, 0, err
	}
	if !isTextblock(b) {
		return nil, 0, fmt.Errorf("%w: %s is not a textblock", ErrInvalidPosition, nodeName(b))
	}
	return b, start, nil
}

func (tr *transaction) cursor(path []int, offset int) {
	tr.sel = Cursor(slices.Clone(path), offset)
}

// parent returns the container of the node at path, or nil at the top level.
func (tr *transaction) parent(path []int) *model.Node {
	if len(path) < 2 {
		return nil
	}
	b, err := tr.doc.Block(path[:len(path)-1])
	if err != nil {
		return nil
	}
	return b
}

func (tr *transaction) deleteSelection() (*model.Node, int, error) {
	_, start, err := tr.textblock()
	if err != nil {
		return nil, 0, err
	}
	r := tr.sel.Range()
	if r.From < r.To {
		if err := tr.replace(start+r.From, start+r.To, nil, 0, 0); err != nil {
			return nil, 0, err
		}
	}
	tr.cursor(r.Path, r.From)
	b, _, err := tr.textblock()
	return b, r.From, err
}

func (tr *transaction) insertText(text string) error {
	b, at, err := tr.deleteSelection()
	if err != nil {
		return err
	}
	code := nodeName(b) == nodeCodeBlock
	var marks []*model.Mark
	switch {
	case code:
	case tr.hasStoredMarks:
		marks = tr.storedMarks
	default:
		marks = marksAt(b, at)
	}
	nodes, err := inlineNodes(text, marks, code)
	if err != nil {
		return err
	}
	if len(nodes) > 0 {
		_, start, err := tr.textblock()
		if err != nil {
			return err
		}
		if err := tr.replace(start+at, start+at, nodes, 0, 0); err != nil {
			return err
		}
	}
	tr.clearStoredMarks()
	tr.cursor(tr.sel.Head.Path, at+nodesSize(nodes))
	return nil
}

func (tr *transaction) deleteRange(r Range) error {
	start, b, err := tr.doc.contentStart(r.Path)
	if err != nil {
		return err
	}
	if !isTextblock(b) || r.From < 0 || r.From > r.To || r.To > contentSize(b) {
		return fmt.Errorf("%w: range %v", ErrInvalidPosition, r)
	}
	if r.From < r.To {
		if err := tr.replace(start+r.From, start+r.To, nil, 0, 0); err != nil {
			return err
		}
	}
	tr.cursor(r.Path, r.From)
	return nil
}

func (tr *transaction) splitBlock() error {
	b, at, err := tr.deleteSelection()
	if err != nil {
		return err
	}
	_, start, err := tr.textblock()
	if err != nil {
		return err
	}
	path := tr.sel.Head.Path
	pos := start + at

	if nodeName(b) == nodeCodeBlock {
		if err := tr.replace(pos, pos, []*model.Node{textNode("\n", nil)}, 0, 0); err != nil {
			return err
		}
		tr.cursor(path, at+1)
		return nil
	}

	if parent := tr.parent(path); parent != nil && nodeName(parent) == nodeListItem {
		if contentSize(b) == 0 && len(children(parent)) == 1 {
			// Enter in an empty item leaves the list
			newPath, err := tr.liftListItem(path[:len(path)-1])
			if err != nil {
				return err
			}
			tr.cursor(newPath, 0)
			return nil
		}
		return tr.splitListItem(path, pos)
	}

	left, err := createNode(nodeName(b), b.Attrs)
	if err != nil {
		return err
	}
	nextName, nextAttrs := nodeParagraph, map[string]interface{}(nil)
	if at < contentSize(b) && nodeName(b) == nodeHeading {
		nextName, nextAttrs = nodeHeading, b.Attrs
	}
	right, err := createNode(nextName, nextAttrs)
	if err != nil {
		return err
	}
	if err := tr.replace(pos, pos, []*model.Node{left, right}, 1, 1); err != nil {
		return err
	}
	newPath := slices.Clone(path)
	newPath[len(newPath)-1]++
	tr.cursor(newPath, 0)
	return nil
}

// splitListItem moves the text after pos, and the blocks after its paragraph, into a new item.
func (tr *transaction) splitListItem(path []int, pos int) error {
	var items []*model.Node
	for range 2 {
		p, err := createNode(nodeParagraph, nil)
		if err != nil {
			return err
		}
		item, err := createNode(nodeListItem, nil, p)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	if err := tr.replace(pos, pos, items, 2, 2); err != nil {
		return err
	}
	itemPath := slices.Clone(path[:len(path)-1])
	itemPath[len(itemPath)-1]++
	tr.cursor(append(itemPath, 0), 0)
	return nil
}

// liftListItem moves the item at itemPath out of its list and returns the path
// of its first paragraph. A top-level list is split around the item; a nested
// item becomes an item of the enclosing list.
func (tr *transaction) liftListItem(itemPath []int) ([]int, error) {
	listPath := itemPath[:len(itemPath)-1]
	list, err := tr.doc.Block(listPath)
	if err != nil {
		return nil, err
	}
	i := itemPath[len(itemPath)-1]
	items := children(list)
	item := items[i]
	before := slices.Clone(items[:i])
	after := slices.Clone(items[i+1:])

	if outer := tr.parent(listPath); outer != nil && nodeName(outer) == nodeListItem {
		outerItemPath := listPath[:len(listPath)-1]
		listIdx := listPath[len(listPath)-1]

		liftedContent := slices.Clone(children(item))
		if len(after) > 0 {
			rest, err := createNode(nodeName(list), nil, after...)
			if err != nil {
				return nil, err
			}
			liftedContent = append(liftedContent, rest)
		}
		lifted, err := createNode(nodeListItem, nil, liftedContent...)
		if err != nil {
			return nil, err
		}

		outerContent := slices.Clone(children(outer))
		if len(before) > 0 {
			shortened, err := createNode(nodeName(list), list.Attrs, before...)
			if err != nil {
				return nil, err
			}
			outerContent[listIdx] = shortened
		} else {
			outerContent = slices.Delete(outerContent, listIdx, listIdx+1)
		}
		newOuter, err := createNode(nodeListItem, nil, outerContent...)
		if err != nil {
			return nil, err
		}
		if err := tr.replaceNode(outerItemPath, newOuter, lifted); err != nil {
			return nil, err
		}
		newPath := slices.Clone(outerItemPath)
		newPath[len(newPath)-1]++
		return append(newPath, 0), nil
	}

	var replacement []*model.Node
	if len(before) > 0 {
		shortened, err := createNode(nodeName(list), list.Attrs, before...)
		if err != nil {
			return nil, err
		}
		replacement = append(replacement, shortened)
	}
	paraIdx := len(replacement)
	replacement = append(replacement, children(item)...)
	if len(after) > 0 {
		var attrs map[string]interface{}
		if nodeName(list) == nodeOrderedList {
			attrs = map[string]interface{}{"start": intAttr(list, "start") + len(before) + 1}
		}
		rest, err := createNode(nodeName(list), attrs, after...)
		if err != nil {
			return nil, err
		}
		replacement = append(replacement, rest)
	}
	if err := tr.replaceNode(listPath, replacement...); err != nil {
		return nil, err
	}
	newPath := slices.Clone(listPath)
	newPath[len(newPath)-1] += paraIdx
	return newPath, nil
}

// setTextblockType converts the selected textblock in place.
func (tr *transaction) setTextblockType(typ BlockType, level int) error {
	b, _, err := tr.textblock()
	if err != nil {
		return err
	}
	path := tr.sel.Head.Path
	if typ != BlockParagraph {
		if parent := tr.parent(path); parent != nil {
			return fmt.Errorf("%w: %s inside %s", ErrNotApplicable, typ, nodeName(parent))
		}
	}
	content := children(b)
	if typ == BlockCodeBlock || nodeName(b) == nodeCodeBlock {
		// Code blocks hold plain text only
		content, err = inlineNodes(blockText(b), nil, typ == BlockCodeBlock)
		if err != nil {
			return err
		}
	}
	var attrs map[string]interface{}
	switch typ {
	case BlockHeading:
		attrs = map[string]interface{}{"level": level}
	case BlockCodeBlock:
		attrs = map[string]interface{}{"language": ""}
	}
	nb, err := createNode(blockNames[typ], attrs, content...)
	if err != nil {
		return err
	}
	return tr.replaceNode(path, nb)
}

func (tr *transaction) setParagraph() error {
	return tr.setTextblockType(BlockParagraph, 0)
}

func (tr *transaction) setHeading(level int) error {
	if err := tr.ext.require(ExtHeading); err != nil {
		return err
	}
	if !tr.ext.headingAllowed(level) {
		return fmt.Errorf("%w: heading level %d", ErrExtensionDisabled, level)
	}
	return tr.setTextblockType(BlockHeading, level)
}

func (tr *transaction) toggleCodeBlock() error {
	if err := tr.ext.require(ExtCodeBlock); err != nil {
		return err
	}
	b, _, err := tr.textblock()
	if err != nil {
		return err
	}
	if nodeName(b) == nodeCodeBlock {
		return tr.setParagraph()
	}
	return tr.setTextblockType(BlockCodeBlock, 0)
}

func (tr *transaction) toggleList(typ BlockType) error {
	ext := ExtBulletList
	if typ == BlockOrderedList {
		ext = ExtOrderedList
	}
	if err := tr.ext.require(ext); err != nil {
		return err
	}
	if _, _, err := tr.textblock(); err != nil {
		return err
	}
	name := blockNames[typ]
	var attrs map[string]interface{}
	if typ == BlockOrderedList {
		attrs = map[string]interface{}{"start": 1}
	}
	path := slices.Clone(tr.sel.Head.Path)
	offset := tr.sel.Head.Offset

	if item := tr.parent(path); item != nil && nodeName(item) == nodeListItem {
		itemPath := path[:len(path)-1]
		listPath := itemPath[:len(itemPath)-1]
		list, err := tr.doc.Block(listPath)
		if err != nil {
			return err
		}
		if nodeName(list) != name {
			nl, err := createNode(name, attrs, children(list)...)
			if err != nil {
				return err
			}
			return tr.replaceNode(listPath, nl)
		}
		paraIdx := path[len(path)-1]
		newPath, err := tr.liftListItem(itemPath)
		if err != nil {
			return err
		}
		newPath[len(newPath)-1] += paraIdx
		tr.sel = Selection{
			Anchor: Pos{Path: slices.Clone(newPath), Offset: tr.sel.Anchor.Offset},
			Head:   Pos{Path: newPath, Offset: offset},
		}
		return nil
	}

	if len(path) != 1 {
		return fmt.Errorf("%w: list inside %s", ErrNotApplicable, nodeName(tr.parent(path)))
	}
	if err := tr.setParagraph(); err != nil {
		return err
	}
	para, err := tr.doc.Block(path)
	if err != nil {
		return err
	}
	item, err := createNode(nodeListItem, nil, para)
	if err != nil {
		return err
	}
	list, err := createNode(name, attrs, item)
	if err != nil {
		return err
	}
	if err := tr.replaceNode(path, list); err != nil {
		return err
	}
	tr.sel.Anchor.Path = []int{path[0], 0, 0}
	tr.sel.Head.Path = []int{path[0], 0, 0}
	return nil
}

func (tr *transaction) toggleBlockquote() error {
	if err := tr.ext.require(ExtBlockquote); err != nil {
		return err
	}
	if _, _, err := tr.textblock(); err != nil {
		return err
	}
	path := slices.Clone(tr.sel.Head.Path)

	if quote := tr.parent(path); quote != nil && nodeName(quote) == nodeBlockquote {
		quotePath := path[:len(path)-1]
		if err := tr.replaceNode(quotePath, children(quote)...); err != nil {
			return err
		}
		newPath := slices.Clone(quotePath)
		newPath[len(newPath)-1] += path[len(path)-1]
		tr.sel.Anchor.Path, tr.sel.Head.Path = slices.Clone(newPath), newPath
		return nil
	}

	if len(path) != 1 {
		return fmt.Errorf("%w: quote inside %s", ErrNotApplicable, nodeName(tr.parent(path)))
	}
	if err := tr.setParagraph(); err != nil {
		return err
	}
	para, err := tr.doc.Block(path)
	if err != nil {
		return err
	}
	quote, err := createNode(nodeBlockquote, nil, para)
	if err != nil {
		return err
	}
	if err := tr.replaceNode(path, quote); err != nil {
		return err
	}
	tr.sel.Anchor.Path = []int{path[0], 0}
	tr.sel.Head.Path = []int{path[0], 0}
	return nil
}

// insertBlock puts an atom after the top-level block holding the selection,
// replacing that block if it is an empty paragraph. The cursor moves to the
// textblock after the atom, which is created if needed.
func (tr *transaction) insertBlock(nb *model.Node) error {
	if _, _, err := tr.textblock(); err != nil {
		return err
	}
	top := tr.sel.Head.Path[0]
	blocks := children(tr.doc.root)
	cur := blocks[top]
	from, to, _, err := tr.doc.span([]int{top})
	if err != nil {
		return err
	}
	pos := top + 1
	if len(tr.sel.Head.Path) == 1 && nodeName(cur) == nodeParagraph && contentSize(cur) == 0 {
		pos = top
	} else {
		from = to
	}

	nodes := []*model.Node{nb}
	if top+1 >= len(blocks) || !isTextblock(blocks[top+1]) {
		p, err := createNode(nodeParagraph, nil)
		if err != nil {
			return err
		}
		nodes = append(nodes, p)
	}
	if err := tr.replace(from, to, nodes, 0, 0); err != nil {
		return err
	}
	tr.cursor([]int{pos + 1}, 0)
	return nil
}

// checkURL accepts absolute http(s) and mailto URLs and relative references.
func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || raw == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if u.Scheme == "" {
		return nil
	}
	if !slices.Contains(schemes, strings.ToLower(u.Scheme)) {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	return nil
}

type ImageAttrs struct {
	Src   string
	Alt   string
	Title string
}

type IframeAttrs struct {
	Src    string
	Width  string
	Height string
	Allow  string
}

func (tr *transaction) setImage(img ImageAttrs) error {
	if err := tr.ext.require(ExtImage); err != nil {
		return err
	}
	if !strings.HasPrefix(img.Src, "data:image/") {
		if err := checkURL(img.Src, "http", "https"); err != nil {
			return err
		}
	}
	n, err := createNode(nodeImage, map[string]interface{}{"src": img.Src, "alt": img.Alt, "title": img.Title})
	if err != nil {
		return err
	}
	return tr.insertBlock(n)
}

func (tr *transaction) setIframe(f IframeAttrs) error {
	if err := tr.ext.require(ExtIframe); err != nil {
		return err
	}
	u, err := url.Parse(f.Src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, f.Src)
	}
	if f.Width == "" {
		f.Width = DefaultIframeWidth
	}
	if f.Height == "" {
		f.Height = DefaultIframeHeight
	}
	n, err := createNode(nodeIframe, map[string]interface{}{
		"src":    f.Src,
		"width":  f.Width,
		"height": f.Height,
		"allow":  f.Allow,
	})
	if err != nil {
		return err
	}
	return tr.insertBlock(n)
}

func (tr *transaction) setHorizontalRule() error {
	if err := tr.ext.require(ExtHorizontalRule); err != nil {
		return err
	}
	n, err := createNode(nodeHorizontalRule, nil)
	if err != nil {
		return err
	}
	return tr.insertBlock(n)
}

func (tr *transaction) toggleMark(t MarkType) error {
	if err := tr.ext.require(markExtensions[t]); err != nil {
		return err
	}
	b, start, err := tr.textblock()
	if err != nil {
		return err
	}
	if nodeName(b) == nodeCodeBlock {
		return fmt.Errorf("%w: marks in a code block", ErrNotApplicable)
	}
	r := tr.sel.Range()
	name := markNames[t]
	if r.From == r.To {
		marks := tr.storedMarks
		if !tr.hasStoredMarks {
			marks = marksAt(b, r.From)
		}
		if findMark(marks, name) != nil {
			marks = withoutMark(marks, name)
		} else {
			marks = withMark(marks, newMark(t, ""))
		}
		tr.storedMarks, tr.hasStoredMarks = marks, true
		return nil
	}
	m := newMark(t, "")
	if rangeHasMark(b, r.From, r.To, name) {
		return tr.step(removeMarkStep(start+r.From, start+r.To, m))
	}
	return tr.step(addMarkStep(start+r.From, start+r.To, m))
}

// removeLinks drops every link mark in [from, to) of the textblock starting at start.
func (tr *transaction) removeLinks(b *model.Node, start, from, to int) error {
	var links []*model.Mark
	inlinesIn(b, from, to, func(n *model.Node) {
		l := findMark(n.Marks, markNames[MarkLink])
		if l == nil {
			return
		}
		if !slices.ContainsFunc(links, func(o *model.Mark) bool { return sameMark(o, l) }) {
			links = append(links, l)
		}
	})
	for _, l := range links {
		if err := tr.step(removeMarkStep(start+from, start+to, l)); err != nil {
			return err
		}
	}
	return nil
}

func (tr *transaction) setLink(href string) error {
	if err := tr.ext.require(ExtLink); err != nil {
		return err
	}
	b, start, err := tr.textblock()
	if err != nil {
		return err
	}
	r := tr.sel.Range()
	if href == "" {
		return tr.removeLinks(b, start, r.From, r.To)
	}
	if err := checkURL(href, "http", "https", "mailto"); err != nil {
		return err
	}
	m := newMark(MarkLink, href)
	if r.From == r.To {
		tr.storedMarks, tr.hasStoredMarks = withMark(marksAt(b, r.From), m), true
		return nil
	}
	return tr.step(addMarkStep(start+r.From, start+r.To, m))
}

// InsertText replaces the selection with text.
func (e *Editor) InsertText(text string) error {
	return e.apply(func(tr *transaction) error { return tr.insertText(text) })
}

// SplitBlock is Enter: it splits the textblock at the cursor.
func (e *Editor) SplitBlock() error {
	return e.apply(func(tr *transaction) error { return tr.splitBlock() })
}

func (e *Editor) DeleteRange(r Range) error {
	return e.apply(func(tr *transaction) error { return tr.deleteRange(r) })
}

func (e *Editor) SetParagraph() error {
	return e.apply(func(tr *transaction) error { return tr.setParagraph() })
}

func (e *Editor) SetHeading(level int) error {
	return e.apply(func(tr *transaction) error { return tr.setHeading(level) })
}

func (e *Editor) ToggleBulletList() error {
	return e.apply(func(tr *transaction) error { return tr.toggleList(BlockBulletList) })
}

func (e *Editor) ToggleOrderedList() error {
	return e.apply(func(tr *transaction) error { return tr.toggleList(BlockOrderedList) })
}

func (e *Editor) ToggleBlockquote() error {
	return e.apply(func(tr *transaction) error { return tr.toggleBlockquote() })
}

func (e *Editor) ToggleCodeBlock() error {
	return e.apply(func(tr *transaction) error { return tr.toggleCodeBlock() })
}

func (e *Editor) SetImage(img ImageAttrs) error {
	return e.apply(func(tr *transaction) error { return tr.setImage(img) })
}

func (e *Editor) SetIframe(f IframeAttrs) error {
	return e.apply(func(tr *transaction) error { return tr.setIframe(f) })
}

func (e *Editor) SetHorizontalRule() error {
	return e.apply(func(tr *transaction) error { return tr.setHorizontalRule() })
}

// ToggleMark adds t to the selection, or removes it if the whole selection has it.
// With an empty selection it toggles the mark for the next typed text.
func (e *Editor) ToggleMark(t MarkType) error {
	if t == MarkLink {
		return fmt.Errorf("%w: use SetLink for links", ErrNotApplicable)
	}
	return e.apply(func(tr *transaction) error { return tr.toggleMark(t) })
}

// SetLink links the selection to href. An empty href removes links from the selection.
func (e *Editor) SetLink(href string) error {
	return e.apply(func(tr *transaction) error { return tr.setLink(href) })
}

// IsActive reports whether a mark or block type applies at the selection.
func (e *Editor) IsActive(name string) bool {
	b, err := e.doc.Block(e.sel.Head.Path)
	if err != nil {
		return false
	}
	if t := MarkType(name); markExtensions[t] != "" {
		r := e.sel.Range()
		if r.From == r.To {
			marks := e.storedMarks
			if !e.hasStoredMarks {
				marks = marksAt(b, r.From)
			}
			return findMark(marks, markNames[t]) != nil
		}
		return rangeHasMark(b, r.From, r.To, markNames[t])
	}

	want := blockNames[BlockType(name)]
	if want == "" {
		return false
	}
	path := e.sel.Head.Path
	for i := len(path); i > 0; i-- {
		anc, err := e.doc.Block(path[:i])
		if err != nil {
			return false
		}
		if nodeName(anc) == want {
			return true
		}
	}
	return false
}

// HeadingLevel is the level of the selected heading, or 0.
func (e *Editor) HeadingLevel() int {
	b, err := e.doc.Block(e.sel.Head.Path)
	if err != nil || nodeName(b) != nodeHeading {
		return 0
	}
	return intAttr(b, "level")
}

// ActiveLink is the href of the link at the selection, if any.
func (e *Editor) ActiveLink() string {
	b, err := e.doc.Block(e.sel.Head.Path)
	if err != nil {
		return ""
	}
	r := e.sel.Range()
	var href string
	inlinesIn(b, r.From, max(r.To, r.From+1), func(n *model.Node) {
		if l := findMark(n.Marks, markNames[MarkLink]); l != nil && href == "" {
			href = markHref(l)
		}
	})
	return href
}
