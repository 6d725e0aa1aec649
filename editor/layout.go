package editor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cozy/prosemirror-go/model"
)

// Coords is the box of a character position in client coordinates.
type Coords struct {
	Left, Right, Top, Bottom float64
}

type Rect struct {
	Left, Top, Width, Height float64
}

// Layout maps document positions to screen geometry.
type Layout interface {
	CoordsAtPos(pos Pos) (Coords, error)
	EditorRect() Rect
}

type Viewport interface {
	Scroll() (x, y float64)
}

type StaticViewport struct {
	X, Y float64
}

func (v StaticViewport) Scroll() (float64, float64) {
	return v.X, v.Y
}

// MonospaceLayout lays every leaf block out as lines of fixed size cells, starting at Origin.
// Hard breaks and newlines in code blocks start a new line. Nothing wraps.
type MonospaceLayout struct {
	Editor     *Editor
	Origin     Rect
	LineHeight float64
	CharWidth  float64
}

func (l *MonospaceLayout) EditorRect() Rect {
	return l.Origin
}

func (l *MonospaceLayout) CoordsAtPos(pos Pos) (Coords, error) {
	line := 0
	found := false
	var col int
	walkLeaves(l.Editor.doc.root, nil, func(path []int, b *model.Node) bool {
		if !slices.Equal(path, pos.Path) {
			line += strings.Count(blockText(b), "\n") + 1
			return true
		}
		if !isTextblock(b) || pos.Offset < 0 || pos.Offset > contentSize(b) {
			return false
		}
		before := textBetween(b, 0, pos.Offset)
		line += strings.Count(before, "\n")
		if i := strings.LastIndex(before, "\n"); i >= 0 {
			before = before[i+1:]
		}
		col = textLen(before)
		found = true
		return false
	})
	if !found {
		return Coords{}, fmt.Errorf("%w: %v", ErrInvalidPosition, pos)
	}
	top := l.Origin.Top + float64(line)*l.LineHeight
	left := l.Origin.Left + float64(col)*l.CharWidth
	return Coords{Left: left, Right: left + l.CharWidth, Top: top, Bottom: top + l.LineHeight}, nil
}

// walkLeaves visits textblocks and atoms in document order until fn returns false.
func walkLeaves(n *model.Node, prefix []int, fn func(path []int, b *model.Node) bool) bool {
	for i, b := range children(n) {
		path := append(slices.Clone(prefix), i)
		if isTextblock(b) || len(children(b)) == 0 {
			if !fn(path, b) {
				return false
			}
			continue
		}
		if !walkLeaves(b, path, fn) {
			return false
		}
	}
	return true
}
