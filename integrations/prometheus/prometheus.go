// Package prometheus exposes the server's counters on a side port.
package prometheus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vibeworks/inkwell/internal/config"
)

var (
	enabled = config.GenFlag[bool]("integrations.prometheus.enabled", false, "Enable Prometheus metrics")
	port    = config.GenFlag[int]("integrations.prometheus.port", 8071, "Prometheus metrics port")
)

var (
	RenderFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "inkwell",
		Name:      "markdown_render_fallbacks_total",
		Help:      "Markdown sources served unrendered because the renderer failed.",
	})
	Sanitized = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inkwell",
		Name:      "sanitize_total",
		Help:      "HTML sanitizer invocations by path.",
	}, []string{"path"})
	RenderCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inkwell",
		Name:      "render_cache_requests_total",
		Help:      "Public render cache lookups by result.",
	}, []string{"result"})
	ImageUploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inkwell",
		Name:      "image_uploads_total",
		Help:      "Image uploads by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(RenderFallbacks, Sanitized, RenderCache, ImageUploads)
}

// Serve exposes /metrics until ctx is done. It returns immediately when metrics are disabled.
func Serve(ctx context.Context) error {
	if !enabled.Value() {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port.Value()),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	slog.InfoContext(ctx, "Serving Prometheus metrics", slog.Int("port", port.Value()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("prometheus metrics server: %w", err)
	}
	return nil
}
