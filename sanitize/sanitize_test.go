package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vibeworks/inkwell/mdrenderer"
)

func TestSanitizeAllowList(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		notWant []string
	}{
		{
			name:    "script removed",
			in:      `<p>ok</p><script>alert(1)</script>`,
			want:    []string{"<p>ok</p>"},
			notWant: []string{"script", "alert"},
		},
		{
			name:    "event handlers",
			in:      `<img src="/a.png" onerror="alert(1)" alt="a">`,
			want:    []string{`src="/a.png"`, `alt="a"`},
			notWant: []string{"onerror"},
		},
		{
			name:    "javascript href",
			in:      `<a href="javascript:alert(1)">x</a>`,
			notWant: []string{"javascript"},
		},
		{
			name: "link attributes",
			in:   `<a href="https://example.com" target="_blank" rel="noopener noreferrer">x</a>`,
			want: []string{`href="https://example.com"`, `target="_blank"`},
		},
		{
			name:    "unknown tag keeps text",
			in:      `<section><p>kept</p></section>`,
			want:    []string{"<p>kept</p>"},
			notWant: []string{"section"},
		},
		{
			name:    "style content dropped",
			in:      `<style>body{display:none}</style><p>x</p>`,
			want:    []string{"<p>x</p>"},
			notWant: []string{"display"},
		},
		{
			name:    "style properties filtered",
			in:      `<p style="text-align: center; position: fixed">x</p>`,
			want:    []string{"text-align"},
			notWant: []string{"position"},
		},
		{
			name:    "checkbox stripped",
			in:      `<ul><li><input type="checkbox" disabled>todo</li></ul>`,
			want:    []string{"<li>todo</li>"},
			notWant: []string{"input"},
		},
		{
			name: "youtube iframe",
			in:   `<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ" width="560" height="315" frameborder="0" allowfullscreen></iframe>`,
			want: []string{`src="https://www.youtube.com/embed/dQw4w9WgXcQ"`, `width="560"`},
		},
		{
			name:    "editor iframe",
			in:      `<iframe src="https://player.example.com/1" width="100%" height="400px" frameborder="0" allow="autoplay; encrypted-media" allowfullscreen></iframe>`,
			want:    []string{`width="100%"`, `height="400px"`, `allow="autoplay; encrypted-media"`},
			notWant: []string{"<p>"},
		},
		{
			name:    "bad sizes",
			in:      `<img src="/a.png" width="expression(alert(1))">`,
			notWant: []string{"width", "expression"},
		},
		{
			name: "table cells",
			in:   `<table><tbody><tr><td align="right" colspan="2">1</td></tr></tbody></table>`,
			want: []string{`align="right"`, `colspan="2"`},
		},
		{
			name: "relative and mailto",
			in:   `<a href="/posts/x">a</a><a href="mailto:me@example.com">b</a>`,
			want: []string{`href="/posts/x"`, `href="mailto:me@example.com"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Sanitize(tt.in)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, out, nw)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		`<p>ok</p><script>alert(1)</script>`,
		`<p>Tom's "quote" &amp; more</p>`,
		`<div><span class="a b" id="x">text</span></div>`,
		`<p><a href="https://example.com/?a=1&b=2">q</a></p>`,
		`<img src="data:image/png;base64,iVBORw0KGgo=" alt="dot">`,
		`<h2 id="x">A<br>B</h2><hr><blockquote><p>q</p></blockquote>`,
		`<<p>>broken<</p`,
		mdrenderer.RenderMarkdown("# Title\n\n**bold** and `code`\n\n- [x] item one\n- item two\n\n![i](/i.png)"),
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestSanitizeRenderedMarkdown(t *testing.T) {
	html := mdrenderer.RenderMarkdown("# Getting Started\n\n[link](https://example.com) <script>x</script>")
	out := Sanitize(html)
	assert.Contains(t, out, `<h1 id="getting-started">Getting Started</h1>`)
	assert.Contains(t, out, `href="https://example.com"`)
	assert.NotContains(t, out, "<script")
}
