package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T, content string) (*Editor, *[]string) {
	t.Helper()
	var changes []string
	e := New(Config{
		Content:  content,
		OnChange: func(html string) { changes = append(changes, html) },
	})
	return e, &changes
}

func TestNewFromMarkdown(t *testing.T) {
	e, _ := newEditor(t, "# Title\n\n**bold** and `code`\n\n- item one\n- item two")
	assert.Equal(t,
		`<h1 id="title">Title</h1>`+
			`<p><strong>bold</strong> and <code>code</code></p>`+
			`<ul><li>item one</li><li>item two</li></ul>`,
		e.Content())
	assert.Equal(t, Cursor([]int{0}, 0), e.Selection())
}

func TestSetContentIsIdempotent(t *testing.T) {
	e, changes := newEditor(t, "Some *markdown* text")
	html := e.Content()
	assert.Equal(t, `<p>Some <em>markdown</em> text</p>`, html)

	assert.False(t, e.SetContent(html))
	assert.False(t, e.SetContent(""))
	assert.False(t, e.SetContent("   "))
	assert.Equal(t, html, e.Content())

	assert.True(t, e.SetContent("<p>other</p>"))
	assert.Equal(t, `<p>other</p>`, e.Content())
	assert.False(t, e.SetContent("other"), "markdown rendering to the same html is a no-op")
	assert.Empty(t, *changes)
}

func TestPlaceholder(t *testing.T) {
	e, _ := newEditor(t, "")
	assert.Equal(t, `<p></p>`, e.Content())
	assert.Equal(t, DefaultPlaceholder, e.Placeholder())

	require.NoError(t, e.InsertText("x"))
	assert.Empty(t, e.Placeholder())

	off := New(Config{Extensions: DefaultExtensions("Write...").Without(ExtPlaceholder)})
	assert.Empty(t, off.Placeholder())
	custom := New(Config{Extensions: DefaultExtensions("Write...")})
	assert.Equal(t, "Write...", custom.Placeholder())
}

func TestInsertText(t *testing.T) {
	e, changes := newEditor(t, "")
	require.NoError(t, e.InsertText("Hello"))
	require.NoError(t, e.InsertText(" wörld"))
	assert.Equal(t, `<p>Hello wörld</p>`, e.Content())
	assert.Equal(t, Cursor([]int{0}, 11), e.Selection())
	assert.Equal(t, []string{`<p>Hello</p>`, `<p>Hello wörld</p>`}, *changes)

	require.NoError(t, e.Select([]int{0}, 6, 11))
	assert.Equal(t, "wörld", e.SelectedText())
	require.NoError(t, e.InsertText("there"))
	assert.Equal(t, `<p>Hello there</p>`, e.Content())
}

func TestInsertedWhitespaceSurvivesReload(t *testing.T) {
	tests := []struct {
		name  string
		typed string
		want  string
	}{
		{"tab", "a\tb", `<p>a b</p>`},
		{"carriage return", "a\rb", `<p>a<br>b</p>`},
		{"crlf", "a\r\nb", `<p>a<br>b</p>`},
		{"newline", "a\nb", `<p>a<br>b</p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEditor(t, "")
			require.NoError(t, e.InsertText(tt.typed))
			assert.Equal(t, tt.want, e.Content())
			assert.Equal(t, Cursor([]int{0}, 3), e.Selection())

			reloaded := New(Config{Content: e.Content()})
			assert.Equal(t, e.Content(), reloaded.Content())
		})
	}

	t.Run("code block keeps tabs", func(t *testing.T) {
		e, _ := newEditor(t, `<pre><code></code></pre>`)
		require.NoError(t, e.InsertText("\tx\r\ny"))
		assert.Equal(t, "<pre><code>\tx\ny</code></pre>", e.Content())
		assert.Equal(t, e.Content(), New(Config{Content: e.Content()}).Content())
	})
}

func TestSelectionValidation(t *testing.T) {
	e, _ := newEditor(t, `<p>abc</p><hr><p>def</p>`)
	assert.ErrorIs(t, e.SetCursor([]int{0}, 4), ErrInvalidPosition)
	assert.ErrorIs(t, e.SetCursor([]int{1}, 0), ErrInvalidPosition)
	assert.ErrorIs(t, e.SetCursor([]int{5}, 0), ErrInvalidPosition)
	assert.ErrorIs(t, e.SetSelection(Selection{
		Anchor: Pos{Path: []int{0}, Offset: 0},
		Head:   Pos{Path: []int{2}, Offset: 1},
	}), ErrInvalidPosition)
	require.NoError(t, e.SetCursor([]int{2}, 3))
}

func TestSplitBlock(t *testing.T) {
	t.Run("paragraph", func(t *testing.T) {
		e, _ := newEditor(t, `<p>Hello world</p>`)
		require.NoError(t, e.SetCursor([]int{0}, 5))
		require.NoError(t, e.SplitBlock())
		assert.Equal(t, `<p>Hello</p><p> world</p>`, e.Content())
		assert.Equal(t, Cursor([]int{1}, 0), e.Selection())
	})
	t.Run("heading end", func(t *testing.T) {
		e, _ := newEditor(t, "# Title")
		require.NoError(t, e.SetCursor([]int{0}, 5))
		require.NoError(t, e.SplitBlock())
		assert.Equal(t, `<h1 id="title">Title</h1><p></p>`, e.Content())
	})
	t.Run("list item", func(t *testing.T) {
		e, _ := newEditor(t, `<ul><li>one</li></ul>`)
		require.NoError(t, e.SetCursor([]int{0, 0, 0}, 3))
		require.NoError(t, e.SplitBlock())
		assert.Equal(t, `<ul><li>one</li><li></li></ul>`, e.Content())
		assert.Equal(t, Cursor([]int{0, 1, 0}, 0), e.Selection())

		// Enter on an empty item leaves the list
		require.NoError(t, e.SplitBlock())
		assert.Equal(t, `<ul><li>one</li></ul><p></p>`, e.Content())
		assert.Equal(t, Cursor([]int{1}, 0), e.Selection())
	})
	t.Run("code block", func(t *testing.T) {
		e, _ := newEditor(t, `<pre><code>a</code></pre>`)
		require.NoError(t, e.SetCursor([]int{0}, 1))
		require.NoError(t, e.SplitBlock())
		assert.Equal(t, "<pre><code>a\n</code></pre>", e.Content())
		assert.Equal(t, Cursor([]int{0}, 2), e.Selection())
	})
}

func TestBlockCommands(t *testing.T) {
	e, _ := newEditor(t, `<p>Hello</p>`)

	require.NoError(t, e.SetHeading(2))
	assert.Equal(t, `<h2 id="hello">Hello</h2>`, e.Content())
	assert.True(t, e.IsActive("heading"))
	assert.Equal(t, 2, e.HeadingLevel())
	assert.ErrorIs(t, e.SetHeading(7), ErrExtensionDisabled)

	require.NoError(t, e.SetParagraph())
	assert.Equal(t, `<p>Hello</p>`, e.Content())
	assert.Equal(t, 0, e.HeadingLevel())

	require.NoError(t, e.ToggleBulletList())
	assert.Equal(t, `<ul><li>Hello</li></ul>`, e.Content())
	assert.Equal(t, []int{0, 0, 0}, e.Selection().Head.Path)
	assert.True(t, e.IsActive("bulletList"))

	require.NoError(t, e.ToggleOrderedList())
	assert.Equal(t, `<ol><li>Hello</li></ol>`, e.Content())
	require.NoError(t, e.ToggleOrderedList())
	assert.Equal(t, `<p>Hello</p>`, e.Content())
	assert.Equal(t, []int{0}, e.Selection().Head.Path)

	require.NoError(t, e.ToggleBlockquote())
	assert.Equal(t, `<blockquote><p>Hello</p></blockquote>`, e.Content())
	require.NoError(t, e.ToggleBlockquote())
	assert.Equal(t, `<p>Hello</p>`, e.Content())
}

func TestLiftNestedListItem(t *testing.T) {
	e, _ := newEditor(t, `<ul><li>a<ul><li>b</li><li>c</li></ul></li></ul>`)
	require.NoError(t, e.SetCursor([]int{0, 0, 1, 0, 0}, 0))
	require.NoError(t, e.ToggleBulletList())
	assert.Equal(t, `<ul><li>a</li><li>b<ul><li>c</li></ul></li></ul>`, e.Content())
	assert.Equal(t, []int{0, 1, 0}, e.Selection().Head.Path)
}

func TestLiftSplitsOrderedList(t *testing.T) {
	e, _ := newEditor(t, `<ol><li>a</li><li>b</li><li>c</li></ol>`)
	require.NoError(t, e.SetCursor([]int{0, 1, 0}, 1))
	require.NoError(t, e.ToggleOrderedList())
	assert.Equal(t, `<ol><li>a</li></ol><p>b</p><ol start="3"><li>c</li></ol>`, e.Content())
	assert.Equal(t, Cursor([]int{1}, 1), e.Selection())
}

func TestToggleCodeBlockDropsMarks(t *testing.T) {
	e, _ := newEditor(t, `<p><strong>bold</strong> text</p>`)
	require.NoError(t, e.ToggleCodeBlock())
	assert.Equal(t, `<pre><code>bold text</code></pre>`, e.Content())
	assert.True(t, e.IsActive("codeBlock"))
	assert.ErrorIs(t, e.ToggleMark(MarkBold), ErrNotApplicable)

	require.NoError(t, e.ToggleCodeBlock())
	assert.Equal(t, `<p>bold text</p>`, e.Content())
}

func TestFailedCommandLeavesEditorUntouched(t *testing.T) {
	e, changes := newEditor(t, `<ul><li>one</li></ul>`)
	before := e.Content()
	require.NoError(t, e.SetCursor([]int{0, 0, 0}, 1))

	assert.ErrorIs(t, e.SetHeading(1), ErrNotApplicable)
	assert.ErrorIs(t, e.ToggleCodeBlock(), ErrNotApplicable)
	assert.Equal(t, before, e.Content())
	assert.Equal(t, Cursor([]int{0, 0, 0}, 1), e.Selection())
	assert.Empty(t, *changes)
}

func TestDisabledCommands(t *testing.T) {
	e := New(Config{Extensions: DefaultExtensions("").Without(ExtHeading, ExtBold, ExtImage)})
	assert.ErrorIs(t, e.SetHeading(1), ErrExtensionDisabled)
	assert.ErrorIs(t, e.ToggleMark(MarkBold), ErrExtensionDisabled)
	assert.ErrorIs(t, e.SetImage(ImageAttrs{Src: "https://cdn.example.com/a.png"}), ErrExtensionDisabled)
	require.NoError(t, e.ToggleMark(MarkItalic))
}

func TestInsertAtoms(t *testing.T) {
	t.Run("rule after text", func(t *testing.T) {
		e, _ := newEditor(t, `<p>text</p>`)
		require.NoError(t, e.SetCursor([]int{0}, 4))
		require.NoError(t, e.SetHorizontalRule())
		assert.Equal(t, `<p>text</p><hr><p></p>`, e.Content())
		assert.Equal(t, Cursor([]int{2}, 0), e.Selection())
	})
	t.Run("image replaces empty paragraph", func(t *testing.T) {
		e, _ := newEditor(t, "")
		require.NoError(t, e.SetImage(ImageAttrs{Src: "https://cdn.example.com/a.png", Alt: "a"}))
		assert.Equal(t, `<img src="https://cdn.example.com/a.png" alt="a"><p></p>`, e.Content())
		assert.Equal(t, Cursor([]int{1}, 0), e.Selection())
	})
	t.Run("iframe defaults", func(t *testing.T) {
		e, _ := newEditor(t, `<p>a</p><p>b</p>`)
		require.NoError(t, e.SetIframe(IframeAttrs{Src: "https://player.example.com/1"}))
		assert.Equal(t, `<p>a</p><iframe src="https://player.example.com/1" width="100%" height="400px" frameborder="0" allowfullscreen></iframe><p>b</p>`, e.Content())
		assert.Equal(t, Cursor([]int{2}, 0), e.Selection())
	})
	t.Run("bad urls", func(t *testing.T) {
		e, changes := newEditor(t, "")
		assert.ErrorIs(t, e.SetIframe(IframeAttrs{Src: "javascript:alert(1)"}), ErrInvalidURL)
		assert.ErrorIs(t, e.SetIframe(IframeAttrs{Src: "/relative"}), ErrInvalidURL)
		assert.ErrorIs(t, e.SetImage(ImageAttrs{Src: "javascript:alert(1)"}), ErrInvalidURL)
		assert.Empty(t, *changes)
	})
}

func TestMarks(t *testing.T) {
	e, _ := newEditor(t, `<p>hello world</p>`)

	require.NoError(t, e.Select([]int{0}, 0, 5))
	require.NoError(t, e.ToggleMark(MarkBold))
	assert.Equal(t, `<p><strong>hello</strong> world</p>`, e.Content())
	assert.True(t, e.IsActive("bold"))
	assert.False(t, e.IsActive("italic"))

	require.NoError(t, e.ToggleMark(MarkItalic))
	assert.Equal(t, `<p><strong><em>hello</em></strong> world</p>`, e.Content())

	require.NoError(t, e.ToggleMark(MarkBold))
	require.NoError(t, e.ToggleMark(MarkItalic))
	assert.Equal(t, `<p>hello world</p>`, e.Content())

	// Partially bold selections get bold everywhere
	require.NoError(t, e.Select([]int{0}, 0, 2))
	require.NoError(t, e.ToggleMark(MarkBold))
	require.NoError(t, e.Select([]int{0}, 0, 5))
	assert.False(t, e.IsActive("bold"))
	require.NoError(t, e.ToggleMark(MarkBold))
	assert.Equal(t, `<p><strong>hello</strong> world</p>`, e.Content())
}

func TestStoredMarks(t *testing.T) {
	e, _ := newEditor(t, `<p>hello world</p>`)
	require.NoError(t, e.SetCursor([]int{0}, 11))
	require.NoError(t, e.ToggleMark(MarkItalic))
	assert.Equal(t, `<p>hello world</p>`, e.Content())
	assert.True(t, e.IsActive("italic"))

	require.NoError(t, e.InsertText("!"))
	assert.Equal(t, `<p>hello world<em>!</em></p>`, e.Content())

	// Typing continues the mark it follows
	require.NoError(t, e.InsertText("?"))
	assert.Equal(t, `<p>hello world<em>!?</em></p>`, e.Content())
}

func TestLinks(t *testing.T) {
	e, _ := newEditor(t, `<p>hello world</p>`)
	require.NoError(t, e.Select([]int{0}, 6, 11))
	require.NoError(t, e.SetLink("https://example.com"))
	assert.Equal(t, `<p>hello <a href="https://example.com" target="_blank" rel="noopener noreferrer">world</a></p>`, e.Content())
	assert.Equal(t, "https://example.com", e.ActiveLink())
	assert.True(t, e.IsActive("link"))

	assert.ErrorIs(t, e.SetLink("javascript:alert(1)"), ErrInvalidURL)
	assert.ErrorIs(t, e.ToggleMark(MarkLink), ErrNotApplicable)

	require.NoError(t, e.SetLink(""))
	assert.Equal(t, `<p>hello world</p>`, e.Content())
	assert.Empty(t, e.ActiveLink())
}

func TestEvents(t *testing.T) {
	e, _ := newEditor(t, `<p>hello</p>`)
	var selections, updates int
	off := e.On(EventSelectionUpdate, func() { selections++ })
	e.On(EventUpdate, func() { updates++ })

	require.NoError(t, e.SetCursor([]int{0}, 3))
	assert.Equal(t, 1, selections)
	assert.Equal(t, 0, updates)

	require.NoError(t, e.InsertText("p"))
	assert.Equal(t, 2, selections)
	assert.Equal(t, 1, updates)

	off()
	require.NoError(t, e.SetCursor([]int{0}, 0))
	assert.Equal(t, 2, selections)
}

func TestOnChangeReplacesCallback(t *testing.T) {
	e, first := newEditor(t, "")
	var second []string
	e.OnChange(func(html string) { second = append(second, html) })
	require.NoError(t, e.InsertText("a"))
	assert.Empty(t, *first)
	assert.Equal(t, []string{`<p>a</p>`}, second)
}
