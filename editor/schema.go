package editor

import (
	"fmt"

	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"
)

var (
	empty = ""
	falsy = false

	headingAttrs = map[string]*model.AttributeSpec{
		"level": {Default: 1},
	}
	codeBlockAttrs = map[string]*model.AttributeSpec{
		"language": {Default: ""},
	}
	orderedListAttrs = map[string]*model.AttributeSpec{
		"start": {Default: 1},
	}
	imageAttrs = map[string]*model.AttributeSpec{
		"src":   {Default: ""},
		"alt":   {Default: ""},
		"title": {Default: ""},
	}
	iframeAttrs = map[string]*model.AttributeSpec{
		"src":    {Default: ""},
		"width":  {Default: DefaultIframeWidth},
		"height": {Default: DefaultIframeHeight},
		"allow":  {Default: ""},
	}
	linkAttrs = map[string]*model.AttributeSpec{
		"href": {Default: ""},
	}
)

// Node names of the post schema.
const (
	nodeDoc            = "doc"
	nodeParagraph      = "paragraph"
	nodeHeading        = "heading"
	nodeBlockquote     = "blockquote"
	nodeCodeBlock      = "code_block"
	nodeBulletList     = "bullet_list"
	nodeOrderedList    = "ordered_list"
	nodeListItem       = "list_item"
	nodeImage          = "image"
	nodeIframe         = "iframe"
	nodeHorizontalRule = "horizontal_rule"
	nodeText           = "text"
	nodeHardBreak      = "hard_break"
)

// The basic schema nodes, plus lists and embeds. Blockquotes hold paragraphs
// only and list items start with a paragraph.
var schemaNodes = []*model.NodeSpec{
	{Key: nodeDoc, Content: "block+"},
	{Key: nodeParagraph, Content: "inline*", Group: "block"},
	{Key: nodeBlockquote, Content: "paragraph+", Group: "block"},
	{Key: nodeHorizontalRule, Group: "block"},
	{Key: nodeHeading, Content: "inline*", Group: "block", Attrs: headingAttrs},
	{Key: nodeCodeBlock, Content: "text*", Marks: &empty, Group: "block", Attrs: codeBlockAttrs},
	{Key: nodeBulletList, Content: "list_item+", Group: "block list"},
	{Key: nodeOrderedList, Content: "list_item+", Group: "block list", Attrs: orderedListAttrs},
	{Key: nodeListItem, Content: "paragraph list*"},
	{Key: nodeImage, Group: "block", Attrs: imageAttrs},
	{Key: nodeIframe, Group: "block", Attrs: iframeAttrs},
	{Key: nodeText, Group: "inline"},
	{Key: nodeHardBreak, Group: "inline"},
}

// Marks are listed outermost first; the schema ranks them in this order.
var schemaMarks = []*model.MarkSpec{
	{Key: "link", Attrs: linkAttrs, Inclusive: &falsy},
	{Key: "strong"},
	{Key: "em"},
	{Key: "underline"},
	{Key: "strike"},
	{Key: "code"},
}

// Schema is the document schema of post bodies.
var Schema = mustSchema()

func mustSchema() *model.Schema {
	s, err := model.NewSchema(&model.SchemaSpec{Nodes: schemaNodes, Marks: schemaMarks})
	if err != nil {
		panic(fmt.Sprintf("editor schema: %v", err))
	}
	return s
}

var markNames = map[MarkType]string{
	MarkLink:      "link",
	MarkBold:      "strong",
	MarkItalic:    "em",
	MarkUnderline: "underline",
	MarkStrike:    "strike",
	MarkCode:      "code",
}

var blockNames = map[BlockType]string{
	BlockParagraph:      nodeParagraph,
	BlockHeading:        nodeHeading,
	BlockBulletList:     nodeBulletList,
	BlockOrderedList:    nodeOrderedList,
	BlockListItem:       nodeListItem,
	BlockBlockquote:     nodeBlockquote,
	BlockCodeBlock:      nodeCodeBlock,
	BlockImage:          nodeImage,
	BlockIframe:         nodeIframe,
	BlockHorizontalRule: nodeHorizontalRule,
}

func newMark(t MarkType, href string) *model.Mark {
	if t == MarkLink {
		return Schema.Mark(markNames[t], map[string]interface{}{"href": href})
	}
	return Schema.Mark(markNames[t])
}

func createNode(name string, attrs map[string]interface{}, content ...*model.Node) (*model.Node, error) {
	typ, err := Schema.NodeType(name)
	if err != nil {
		return nil, err
	}
	return typ.Create(attrs, model.NewFragment(content), nil)
}

func textNode(text string, marks []*model.Mark) *model.Node {
	return Schema.Text(text, marks)
}

func nodeFromJSON(raw map[string]interface{}) (*model.Node, error) {
	return model.NodeFromJSON(Schema, raw)
}

func nodeName(n *model.Node) string {
	return string(n.Type.Name)
}

func markName(m *model.Mark) string {
	return string(m.Type.Name)
}

func children(n *model.Node) []*model.Node {
	if n.Content == nil {
		return nil
	}
	return n.Content.Content
}

// contentSize is the size of a node's content, in document positions.
func contentSize(n *model.Node) int {
	if n.Content == nil {
		return 0
	}
	return n.Content.Size
}

func nodeText(n *model.Node) string {
	if n.Text == nil {
		return ""
	}
	return *n.Text
}

func stringAttr(n *model.Node, key string) string {
	s, _ := n.Attrs[key].(string)
	return s
}

func intAttr(n *model.Node, key string) int {
	switch v := n.Attrs[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func markHref(m *model.Mark) string {
	s, _ := m.Attrs["href"].(string)
	return s
}

func newSlice(nodes []*model.Node, openStart, openEnd int) *model.Slice {
	return model.NewSlice(model.NewFragment(nodes), openStart, openEnd)
}

func replaceStep(from, to int, slice *model.Slice) transform.Step {
	return transform.NewReplaceStep(from, to, slice)
}

func addMarkStep(from, to int, m *model.Mark) transform.Step {
	return transform.NewAddMarkStep(from, to, m)
}

func removeMarkStep(from, to int, m *model.Mark) transform.Step {
	return transform.NewRemoveMarkStep(from, to, m)
}
