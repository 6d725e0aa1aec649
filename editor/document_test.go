package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"paragraph", `<p>hello</p>`},
		{"heading", `<h2 id="getting-started">Getting Started</h2>`},
		{"marks", `<p>a <strong>b</strong> <em>c</em> <u>d</u> <s>e</s> <code>f</code></p>`},
		{"nested marks", `<p><strong><em>both</em></strong></p>`},
		{"link", `<p><a href="https://example.com" target="_blank" rel="noopener noreferrer">link</a> and text</p>`},
		{"hard break", `<p>line<br>break</p>`},
		{"entities", `<p>Tom&#039;s &amp; &lt;tag&gt; &quot;q&quot;</p>`},
		{"bullet list", `<ul><li>one</li><li>two<ul><li>nested</li></ul></li></ul>`},
		{"ordered list", `<ol start="3"><li>three</li><li>four</li></ol>`},
		{"blockquote", `<blockquote><p>quoted</p><p>twice</p></blockquote>`},
		{"code block", "<pre><code class=\"language-go\">x := 1\ny &lt; 2</code></pre>"},
		{"image", `<p>before</p><img src="https://cdn.example.com/a.png" alt="A" title="T">`},
		{"iframe", `<p>x</p><iframe src="https://www.youtube.com/embed/abc" width="100%" height="400px" frameborder="0" allow="autoplay" allowfullscreen></iframe>`},
		{"rule", `<p>a</p><hr><p>b</p>`},
		{"empty", `<p></p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ParseHTML(tt.html, DefaultExtensions(""))
			assert.Equal(t, tt.html, doc.HTML())
			again := ParseHTML(doc.HTML(), DefaultExtensions(""))
			assert.True(t, doc.Root().Eq(again.Root()))
		})
	}
}

func TestParseNormalizes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `<p></p>`},
		{"loose text", "loose text", `<p>loose text</p>`},
		{"div", `<div><p>in div</p></div>`, `<p>in div</p>`},
		{"script", `<script>alert(1)</script><p>ok</p>`, `<p>ok</p>`},
		{"heading id", `<h1>Hello World</h1>`, `<h1 id="hello-world">Hello World</h1>`},
		{"b and i", `<p><b>x</b><i>y</i></p>`, `<p><strong>x</strong><em>y</em></p>`},
		{"list paragraphs", `<ul><li><p>a</p><p>b</p></li></ul>`, `<ul><li>a<br>b</li></ul>`},
		{"newlines", "<p>one\ntwo</p>", `<p>one two</p>`},
		{"image only", `<img src="/a.png">`, `<img src="/a.png"><p></p>`},
		{"iframe defaults", `<iframe src="https://x.example/e"></iframe>`,
			`<iframe src="https://x.example/e" width="100%" height="400px" frameborder="0" allowfullscreen></iframe><p></p>`},
		{"heading break", `<h1>a<br>b</h1>`, `<h1 id="a-b">a<br>b</h1>`},
		{"code in quote", `<blockquote><pre><code>x</code></pre></blockquote>`, `<blockquote><p>x</p></blockquote>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHTML(tt.in, DefaultExtensions("")).HTML())
		})
	}
}

func TestParseDisabledExtensions(t *testing.T) {
	ext := DefaultExtensions("").Without(ExtHeading, ExtBulletList, ExtImage, ExtBold)
	doc := ParseHTML(`<h1>T</h1><ul><li>a</li></ul><img src="/x.png"><p><strong>b</strong></p>`, ext)
	assert.Equal(t, `<p>T</p><p>a</p><p>b</p>`, doc.HTML())

	levels := DefaultExtensions("").WithHeadingLevels(1, 2)
	assert.Equal(t, `<h2 id="x">x</h2><p>y</p>`, ParseHTML(`<h2>x</h2><h3>y</h3>`, levels).HTML())
}

func TestDocumentPaths(t *testing.T) {
	doc := ParseHTML(`<p>a</p><ul><li>b<ul><li>c</li></ul></li></ul><hr><blockquote><p>d</p></blockquote>`, DefaultExtensions(""))
	assert.Equal(t, [][]int{{0}, {1, 0, 0}, {1, 0, 1, 0, 0}, {3, 0}}, doc.Textblocks())

	b, err := doc.Block([]int{1, 0, 1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, "c", blockText(b))

	_, err = doc.Block([]int{9})
	assert.ErrorIs(t, err, ErrInvalidPosition)
	_, err = doc.Block(nil)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	hr, err := doc.Block([]int{2})
	require.NoError(t, err)
	assert.Equal(t, nodeHorizontalRule, nodeName(hr))

	from, to, _, err := doc.span([]int{1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 8, from)
	assert.Equal(t, 15, to)
}

func TestSchemaPositions(t *testing.T) {
	doc := ParseHTML(`<p>ab</p><p>c<br>d</p>`, DefaultExtensions(""))
	assert.Equal(t, 9, contentSize(doc.Root()))

	start, b, err := doc.contentStart([]int{1})
	require.NoError(t, err)
	assert.Equal(t, 5, start)
	assert.Equal(t, 3, contentSize(b))
	assert.Equal(t, "c\nd", blockText(b))
	assert.Equal(t, "\nd", textBetween(b, 1, 3))
}
