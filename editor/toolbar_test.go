package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolbar(t *testing.T, content string, prompter Prompter) (*Editor, *Toolbar) {
	t.Helper()
	e := New(Config{Content: content})
	layout := &MonospaceLayout{
		Editor:     e,
		Origin:     Rect{Left: 10, Top: 20, Width: 600, Height: 400},
		LineHeight: 20,
		CharWidth:  8,
	}
	return e, NewToolbar(e, layout, StaticViewport{Y: 100}, prompter)
}

func TestToolbarVisibility(t *testing.T) {
	e, tb := newToolbar(t, `<p>hello world</p><p>second line</p>`, nil)
	assert.False(t, tb.Visible())

	// Anchor at offset 6 of the second line
	require.NoError(t, e.Select([]int{1}, 6, 0))
	require.True(t, tb.Visible())
	top, left := tb.Position()
	assert.Equal(t, 20.0+20-20+100-50, top)
	assert.Equal(t, 10.0+6*8-10-100, left)

	require.NoError(t, e.SetCursor([]int{1}, 2))
	assert.False(t, tb.Visible())
}

type shiftLayout struct {
	top float64
}

func (l *shiftLayout) CoordsAtPos(Pos) (Coords, error) {
	return Coords{Left: 200, Right: 208, Top: l.top, Bottom: l.top + 20}, nil
}

func (l *shiftLayout) EditorRect() Rect {
	return Rect{}
}

func TestToolbarFollowsContent(t *testing.T) {
	e := New(Config{Content: `<p>one two</p>`})
	layout := &shiftLayout{top: 100}
	tb := NewToolbar(e, layout, nil, nil)

	require.NoError(t, e.Select([]int{0}, 0, 3))
	top, left := tb.Position()
	assert.Equal(t, 50.0, top)
	assert.Equal(t, 100.0, left)

	// A content change can move the selection on screen while the selection stays put
	layout.top = 140
	require.NoError(t, e.ToggleMark(MarkBold))
	top, _ = tb.Position()
	assert.Equal(t, 90.0, top)
}

func TestToolbarButtons(t *testing.T) {
	p := &fakePrompter{answer: "https://example.com"}
	e, tb := newToolbar(t, `<p>hello world</p>`, p)
	require.NoError(t, e.Select([]int{0}, 0, 5))

	for _, b := range tb.Buttons() {
		assert.False(t, b.Active, b.Name)
	}
	assert.Equal(t, []string{"bold", "italic", "underline", "strike", "code", "link"}, buttonNames(tb.Buttons()))

	ctx := context.Background()
	require.NoError(t, tb.Click(ctx, "bold"))
	require.NoError(t, tb.Click(ctx, "underline"))
	assert.Equal(t, `<p><strong><u>hello</u></strong> world</p>`, e.Content())
	assert.True(t, activeButton(tb, "bold"))
	assert.True(t, activeButton(tb, "underline"))
	assert.False(t, activeButton(tb, "italic"))

	require.NoError(t, tb.Click(ctx, "link"))
	assert.Equal(t, []string{"Enter URL:"}, p.asked)
	assert.True(t, activeButton(tb, "link"))

	p.answer = ""
	before := e.Content()
	require.NoError(t, tb.Click(ctx, "link"))
	assert.Equal(t, before, e.Content(), "an empty url changes nothing")

	assert.ErrorIs(t, tb.Click(ctx, "heading"), ErrNotApplicable)
}

func TestToolbarClose(t *testing.T) {
	e, tb := newToolbar(t, `<p>hello</p>`, nil)
	tb.Close()
	require.NoError(t, e.Select([]int{0}, 0, 5))
	assert.False(t, tb.Visible())
}

func buttonNames(bs []ToolbarButton) []string {
	var out []string
	for _, b := range bs {
		out = append(out, b.Name)
	}
	return out
}

func activeButton(tb *Toolbar, name string) bool {
	for _, b := range tb.Buttons() {
		if b.Name == name {
			return b.Active
		}
	}
	return false
}
