package editor

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"

	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"
)

type BlockType string

const (
	BlockParagraph      BlockType = "paragraph"
	BlockHeading        BlockType = "heading"
	BlockBulletList     BlockType = "bulletList"
	BlockOrderedList    BlockType = "orderedList"
	BlockListItem       BlockType = "listItem"
	BlockBlockquote     BlockType = "blockquote"
	BlockCodeBlock      BlockType = "codeBlock"
	BlockImage          BlockType = "image"
	BlockIframe         BlockType = "iframe"
	BlockHorizontalRule BlockType = "horizontalRule"
)

type MarkType string

const (
	MarkLink      MarkType = "link"
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
	MarkStrike    MarkType = "strike"
	MarkCode      MarkType = "code"
)

// Document is an immutable post body. Edits produce a new Document.
type Document struct {
	root *model.Node
}

// Root is the doc node.
func (d *Document) Root() *model.Node {
	return d.root
}

func isTextblock(n *model.Node) bool {
	switch nodeName(n) {
	case nodeParagraph, nodeHeading, nodeCodeBlock:
		return true
	}
	return false
}

func isList(n *model.Node) bool {
	name := nodeName(n)
	return name == nodeBulletList || name == nodeOrderedList
}

// Empty reports whether the document is a single empty paragraph.
func (d *Document) Empty() bool {
	blocks := children(d.root)
	return len(blocks) == 1 && nodeName(blocks[0]) == nodeParagraph && contentSize(blocks[0]) == 0
}

// Block resolves a path of child indexes to a node.
func (d *Document) Block(path []int) (*model.Node, error) {
	_, n, err := d.contentStart(path)
	return n, err
}

// contentStart returns the node at path and the position where its content starts.
func (d *Document) contentStart(path []int) (int, *model.Node, error) {
	if len(path) == 0 {
		return 0, nil, fmt.Errorf("%w: empty path", ErrInvalidPosition)
	}
	pos, n := 0, d.root
	for _, i := range path {
		kids := children(n)
		if i < 0 || i >= len(kids) {
			return 0, nil, fmt.Errorf("%w: path %v", ErrInvalidPosition, path)
		}
		for _, k := range kids[:i] {
			pos += k.NodeSize()
		}
		pos++
		n = kids[i]
	}
	return pos, n, nil
}

// span returns the positions before and after the node at path.
func (d *Document) span(path []int) (from, to int, n *model.Node, err error) {
	start, n, err := d.contentStart(path)
	if err != nil {
		return 0, 0, nil, err
	}
	return start - 1, start - 1 + n.NodeSize(), n, nil
}

// Textblocks lists the paths of all textblocks in document order.
func (d *Document) Textblocks() [][]int {
	var paths [][]int
	var walk func(n *model.Node, prefix []int)
	walk = func(n *model.Node, prefix []int) {
		for i, ch := range children(n) {
			path := append(slices.Clone(prefix), i)
			if isTextblock(ch) {
				paths = append(paths, path)
				continue
			}
			walk(ch, path)
		}
	}
	walk(d.root, nil)
	return paths
}

// apply runs a step against the document.
func (d *Document) apply(step transform.Step) (*Document, error) {
	res := step.Apply(d.root)
	if res.Failed != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotApplicable, res.Failed)
	}
	return &Document{root: res.Doc}, nil
}

// ensureTextblock makes sure the cursor always has somewhere to go.
func (d *Document) ensureTextblock() (*Document, error) {
	if len(d.Textblocks()) > 0 {
		return d, nil
	}
	p, err := createNode(nodeParagraph, nil)
	if err != nil {
		return nil, err
	}
	return d.apply(replaceStep(contentSize(d.root), contentSize(d.root), newSlice([]*model.Node{p}, 0, 0)))
}

// Offsets inside a textblock count UTF-16 code units, as document positions do.
// A hard break counts one.

func textLen(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func cutText(s string, from, to int) string {
	u := utf16.Encode([]rune(s))
	from, to = max(from, 0), min(to, len(u))
	if from >= to {
		return ""
	}
	return string(utf16.Decode(u[from:to]))
}

// textBetween is the text of a textblock in [from, to), with hard breaks as "\n".
func textBetween(tb *model.Node, from, to int) string {
	var sb strings.Builder
	pos := 0
	for _, ch := range children(tb) {
		size := ch.NodeSize()
		if pos+size > from && pos < to {
			switch nodeName(ch) {
			case nodeText:
				sb.WriteString(cutText(nodeText(ch), from-pos, to-pos))
			case nodeHardBreak:
				sb.WriteString("\n")
			}
		}
		pos += size
	}
	return sb.String()
}

func blockText(tb *model.Node) string {
	return textBetween(tb, 0, contentSize(tb))
}

// inlinesIn calls fn for every inline child of tb overlapping [from, to).
func inlinesIn(tb *model.Node, from, to int, fn func(n *model.Node)) {
	pos := 0
	for _, ch := range children(tb) {
		size := ch.NodeSize()
		if pos+size > from && pos < to {
			fn(ch)
		}
		pos += size
	}
}

// marksAt returns the marks a character typed at offset would inherit.
func marksAt(tb *model.Node, at int) []*model.Mark {
	kids := children(tb)
	if len(kids) == 0 {
		return nil
	}
	pos := 0
	for _, ch := range kids {
		size := ch.NodeSize()
		if at > pos && at <= pos+size {
			return slices.Clone(ch.Marks)
		}
		pos += size
	}
	if at == 0 {
		return slices.Clone(kids[0].Marks)
	}
	return nil
}

func findMark(marks []*model.Mark, name string) *model.Mark {
	for _, m := range marks {
		if markName(m) == name {
			return m
		}
	}
	return nil
}

func withoutMark(marks []*model.Mark, name string) []*model.Mark {
	var out []*model.Mark
	for _, m := range marks {
		if markName(m) != name {
			out = append(out, m)
		}
	}
	return out
}

func withMark(marks []*model.Mark, m *model.Mark) []*model.Mark {
	return append(withoutMark(marks, markName(m)), m)
}

// rangeHasMark reports whether every inline node in [from, to) carries a mark named name.
func rangeHasMark(tb *model.Node, from, to int, name string) bool {
	found, all := false, true
	inlinesIn(tb, from, to, func(n *model.Node) {
		found = true
		if findMark(n.Marks, name) == nil {
			all = false
		}
	})
	return found && all
}

// inlineNodes turns typed text into inline nodes. Newlines become hard breaks
// outside code blocks, and other control whitespace becomes a space there.
func inlineNodes(text string, marks []*model.Mark, code bool) ([]*model.Node, error) {
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)
	if code {
		if text == "" {
			return nil, nil
		}
		return []*model.Node{textNode(text, nil)}, nil
	}
	text = strings.ReplaceAll(text, "\t", " ")
	var out []*model.Node
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			br, err := Schema.NodeType(nodeHardBreak)
			if err != nil {
				return nil, err
			}
			n, err := br.Create(nil, nil, marks)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		if line != "" {
			out = append(out, textNode(line, marks))
		}
	}
	return out, nil
}

func nodesSize(nodes []*model.Node) int {
	n := 0
	for _, node := range nodes {
		n += node.NodeSize()
	}
	return n
}
