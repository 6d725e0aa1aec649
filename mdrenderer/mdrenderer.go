package mdrenderer

import (
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Renderer turns markdown into HTML through the token visitors of this package.
// goldmark is only used as a tokenizer; its HTML renderer is never invoked.
type Renderer struct {
	md goldmark.Markdown
}

type options struct {
	transformers []util.PrioritizedValue
}

type Option func(*options)

// WithASTTransformers registers extra goldmark AST transformers that run after parsing.
func WithASTTransformers(transformers ...parser.ASTTransformer) Option {
	return func(o *options) {
		for _, t := range transformers {
			o.transformers = append(o.transformers, util.Prioritized(t, 100))
		}
	}
}

func NewRenderer(opts ...Option) *Renderer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithASTTransformers(o.transformers...)),
	)
	return &Renderer{md: md}
}

// Tokens parses src into the token tree consumed by the visitors.
func (r *Renderer) Tokens(src string) (tokens []Token, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("markdown tokenizer panicked: %v", rec)
		}
	}()
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))
	return convertChildren(doc, source), nil
}

// Render returns the HTML for src, or an error if the tokenizer failed.
func (r *Renderer) Render(src string) (string, error) {
	if src == "" {
		return "", nil
	}
	tokens, err := r.Tokens(src)
	if err != nil {
		return "", err
	}
	return renderHTML(tokens), nil
}

// RenderMarkdown is Render that never fails: on error the raw source is returned unchanged.
// The output is not safe to embed until it has passed through the sanitizer.
func (r *Renderer) RenderMarkdown(src string) string {
	out, err := r.Render(src)
	if err != nil {
		slog.Warn("Could not render markdown, falling back to source", slog.Any("err", err))
		return src
	}
	return out
}

// PlainText returns the visible text of src with all markup removed.
func (r *Renderer) PlainText(src string) string {
	tokens, err := r.Tokens(src)
	if err != nil {
		slog.Warn("Could not tokenize markdown", slog.Any("err", err))
		return src
	}
	return plainText(tokens)
}

var defaultRenderer = NewRenderer()

func RenderMarkdown(src string) string {
	return defaultRenderer.RenderMarkdown(src)
}

func PlainText(src string) string {
	return defaultRenderer.PlainText(src)
}
