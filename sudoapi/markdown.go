package sudoapi

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vibeworks/inkwell"
	"github.com/vibeworks/inkwell/content"
	"github.com/vibeworks/inkwell/integrations/prometheus"
	"github.com/vibeworks/inkwell/sanitize"
)

// RenderSource returns src as HTML. Markdown goes through the renderer and
// is returned unchanged if rendering fails.
func (s *BaseAPI) RenderSource(ctx context.Context, src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	if content.IsHTML(src) {
		return src
	}
	out, err := s.rd.Render(src)
	if err != nil {
		prometheus.RenderFallbacks.Inc()
		slog.WarnContext(ctx, "Could not render markdown, falling back to source", slog.Any("err", err))
		return src
	}
	return out
}

// storedHTML is the write path: whatever the author sent, only sanitized HTML is persisted.
func (s *BaseAPI) storedHTML(ctx context.Context, src string) string {
	prometheus.Sanitized.WithLabelValues("write").Inc()
	return sanitize.Sanitize(s.RenderSource(ctx, src))
}

// PostHTML is the read path. Stored HTML is sanitized again before display,
// so rows written by older versions or by hand are never trusted.
func (s *BaseAPI) PostHTML(ctx context.Context, post *inkwell.Post) string {
	key := strconv.Itoa(post.ID) + ":" + strconv.FormatInt(post.UpdatedAt.UnixNano(), 10)
	if html, ok := s.renderCache.Get(key); ok {
		prometheus.RenderCache.WithLabelValues("hit").Inc()
		return html
	}
	prometheus.RenderCache.WithLabelValues("miss").Inc()

	src := post.HTMLContent
	if src == "" {
		src = s.RenderSource(ctx, post.Content)
	}
	prometheus.Sanitized.WithLabelValues("read").Inc()
	html := sanitize.Sanitize(src)
	s.renderCache.Set(key, html, 1)
	return html
}

// PostMarkdown exports a post as markdown.
func (s *BaseAPI) PostMarkdown(ctx context.Context, post *inkwell.Post) (string, error) {
	md, err := content.ToMarkdown(s.PostHTML(ctx, post))
	if err != nil {
		return "", fmt.Errorf("couldn't export post: %w", err)
	}
	return md, nil
}
