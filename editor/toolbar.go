package editor

import (
	"context"
	"fmt"
)

// Toolbar offsets from the selection anchor, in pixels.
const (
	toolbarOffsetTop  = 50
	toolbarOffsetLeft = 100
)

type ToolbarButton struct {
	Name   string
	Title  string
	Active bool
}

var toolbarButtons = []struct{ name, title string }{
	{string(MarkBold), "Bold"},
	{string(MarkItalic), "Italic"},
	{string(MarkUnderline), "Underline"},
	{string(MarkStrike), "Strikethrough"},
	{string(MarkCode), "Code"},
	{string(MarkLink), "Link"},
}

// Toolbar floats over a non-empty selection with inline formatting buttons.
// It is hidden while the selection is empty.
type Toolbar struct {
	e        *Editor
	layout   Layout
	viewport Viewport
	prompter Prompter

	visible   bool
	top, left float64
	offs      []func()
}

func NewToolbar(e *Editor, layout Layout, viewport Viewport, prompter Prompter) *Toolbar {
	if viewport == nil {
		viewport = StaticViewport{}
	}
	t := &Toolbar{e: e, layout: layout, viewport: viewport, prompter: prompter}
	// Content changes can move the selection on screen without changing it
	t.offs = []func(){
		e.On(EventSelectionUpdate, t.update),
		e.On(EventUpdate, t.update),
	}
	t.update()
	return t
}

func (t *Toolbar) update() {
	sel := t.e.Selection()
	if sel.Empty() || t.layout == nil {
		t.visible = false
		return
	}
	coords, err := t.layout.CoordsAtPos(sel.Anchor)
	if err != nil {
		t.visible = false
		return
	}
	rect := t.layout.EditorRect()
	scrollX, scrollY := t.viewport.Scroll()
	t.top = coords.Top - rect.Top + scrollY - toolbarOffsetTop
	t.left = coords.Left - rect.Left + scrollX - toolbarOffsetLeft
	t.visible = true
}

func (t *Toolbar) Visible() bool {
	return t.visible
}

// Position is the toolbar's top-left corner relative to the editor box.
func (t *Toolbar) Position() (top, left float64) {
	return t.top, t.left
}

func (t *Toolbar) Buttons() []ToolbarButton {
	out := make([]ToolbarButton, 0, len(toolbarButtons))
	for _, b := range toolbarButtons {
		out = append(out, ToolbarButton{Name: b.name, Title: b.title, Active: t.e.IsActive(b.name)})
	}
	return out
}

// Click presses a button. The link button asks for a URL and does nothing when none is given.
func (t *Toolbar) Click(ctx context.Context, name string) error {
	if MarkType(name) != MarkLink {
		if _, ok := markExtensions[MarkType(name)]; !ok {
			return fmt.Errorf("%w: unknown button %q", ErrNotApplicable, name)
		}
		return t.e.ToggleMark(MarkType(name))
	}
	if t.prompter == nil {
		return fmt.Errorf("%w: no prompter", ErrNotApplicable)
	}
	url, err := t.prompter.Prompt(ctx, "Enter URL:")
	if err != nil || url == "" {
		return err
	}
	return t.e.SetLink(url)
}

// Close unsubscribes the toolbar from the editor.
func (t *Toolbar) Close() {
	for _, off := range t.offs {
		off()
	}
	t.offs = nil
	t.visible = false
}
