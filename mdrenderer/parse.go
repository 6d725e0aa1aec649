package mdrenderer

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"
)

// convertChildren turns every child of n into tokens.
func convertChildren(n ast.Node, src []byte) []Token {
	var out []Token
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, convert(c, src)...)
	}
	return out
}

func convert(n ast.Node, src []byte) []Token {
	switch n := n.(type) {
	case *ast.Heading:
		return []Token{&Heading{Depth: n.Level, Children: convertChildren(n, src)}}
	case *ast.Paragraph:
		return []Token{&Paragraph{Children: convertChildren(n, src)}}
	case *ast.TextBlock:
		// Tight list items hold a TextBlock instead of a Paragraph
		return []Token{&Paragraph{Children: convertChildren(n, src)}}
	case *ast.List:
		list := &List{Ordered: n.IsOrdered(), Start: n.Start}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if item, ok := c.(*ast.ListItem); ok {
				list.Items = append(list.Items, convertListItem(item, src))
			}
		}
		return []Token{list}
	case *ast.ListItem:
		return []Token{convertListItem(n, src)}
	case *ast.Blockquote:
		return []Token{&Blockquote{Children: convertChildren(n, src)}}
	case *ast.FencedCodeBlock:
		return []Token{&Code{
			Lang:  string(n.Language(src)),
			Value: strings.TrimSuffix(blockLines(n, src), "\n"),
		}}
	case *ast.CodeBlock:
		return []Token{&Code{Value: strings.TrimSuffix(blockLines(n, src), "\n")}}
	case *ast.ThematicBreak:
		return []Token{&Rule{}}
	case *ast.HTMLBlock:
		val := blockLines(n, src)
		if n.HasClosure() {
			val += string(n.ClosureLine.Value(src))
		}
		return []Token{&Raw{Value: val}}
	case *ast.Text:
		val := n.Segment.Value(src)
		if !n.IsRaw() {
			val = unescapeText(val)
		}
		out := []Token{&Text{Value: string(val)}}
		if n.HardLineBreak() {
			out = append(out, &Break{Hard: true})
		} else if n.SoftLineBreak() {
			out = append(out, &Break{})
		}
		return out
	case *ast.String:
		return []Token{&Text{Value: string(n.Value)}}
	case *ast.Emphasis:
		if n.Level >= 2 {
			return []Token{&Strong{Children: convertChildren(n, src)}}
		}
		return []Token{&Em{Children: convertChildren(n, src)}}
	case *ast.CodeSpan:
		return []Token{&CodeSpan{Value: codeSpanValue(n, src)}}
	case *ast.Link:
		return []Token{&Link{
			Href:     string(n.Destination),
			Title:    string(unescapeText(n.Title)),
			Children: convertChildren(n, src),
		}}
	case *ast.AutoLink:
		href := string(n.URL(src))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(href), "mailto:") {
			href = "mailto:" + href
		}
		return []Token{&Link{Href: href, Children: []Token{&Text{Value: string(n.Label(src))}}}}
	case *ast.Image:
		return []Token{&Image{
			Src:   string(n.Destination),
			Title: string(unescapeText(n.Title)),
			Alt:   plainText(convertChildren(n, src)),
		}}
	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(src))
		}
		return []Token{&Raw{Value: sb.String()}}
	case *east.Strikethrough:
		return []Token{&Del{Children: convertChildren(n, src)}}
	case *east.TaskCheckBox:
		// Consumed by convertListItem
		return nil
	case *east.Table:
		return []Token{convertTable(n, src)}
	}

	children := convertChildren(n, src)
	if len(children) > 0 {
		return []Token{&Raw{Children: children}}
	}
	if n.Type() == ast.TypeBlock {
		return []Token{&Raw{Value: blockLines(n, src)}}
	}
	return []Token{&Raw{}}
}

func convertListItem(n *ast.ListItem, src []byte) *ListItem {
	item := &ListItem{}
	if fc := n.FirstChild(); fc != nil {
		if cb, ok := fc.FirstChild().(*east.TaskCheckBox); ok {
			item.Task = true
			item.Checked = cb.IsChecked
		}
	}
	item.Children = convertChildren(n, src)
	return item
}

func convertTable(n *east.Table, src []byte) *Table {
	table := &Table{}
	for _, al := range n.Alignments {
		switch al {
		case east.AlignLeft:
			table.Align = append(table.Align, AlignLeft)
		case east.AlignCenter:
			table.Align = append(table.Align, AlignCenter)
		case east.AlignRight:
			table.Align = append(table.Align, AlignRight)
		default:
			table.Align = append(table.Align, AlignNone)
		}
	}
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []*TableCell
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, &TableCell{Children: convertChildren(cell, src)})
		}
		if _, ok := row.(*east.TableHeader); ok {
			table.Header = cells
			continue
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// unescapeText resolves backslash escapes and entity references,
// which goldmark leaves in the source segments of text nodes.
func unescapeText(b []byte) []byte {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	return util.ResolveEntityNames(b)
}

func blockLines(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return sb.String()
}

func codeSpanValue(n *ast.CodeSpan, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			val := c.Segment.Value(src)
			if len(val) > 0 && val[len(val)-1] == '\n' {
				sb.Write(val[:len(val)-1])
				sb.WriteByte(' ')
				continue
			}
			sb.Write(val)
		case *ast.String:
			sb.Write(c.Value)
		}
	}
	return sb.String()
}
