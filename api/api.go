// Package api exposes posts and uploads over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/schema"
	"github.com/vibeworks/inkwell/internal/config"
	"github.com/vibeworks/inkwell/sudoapi"
)

var decoder *schema.Decoder

func init() {
	decoder = schema.NewDecoder()
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)
}

// API is the base
type API struct {
	base *sudoapi.BaseAPI

	adminToken     string
	draftKey       string
	allowedOrigins []string
}

func New(base *sudoapi.BaseAPI, cfg config.API) *API {
	origins := cfg.AllowedOrigin
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &API{
		base:           base,
		adminToken:     cfg.AdminToken,
		draftKey:       cfg.DraftAPIKey,
		allowedOrigins: origins,
	}
}

// Handler returns the router serving everything under /api.
func (s *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(20 * time.Second))

	corsConfig := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	})
	r.Use(corsConfig.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", s.posts)
			r.With(s.MustBeAdmin).Post("/", s.createPost)
			r.With(s.MustHaveDraftKey).Post("/draft", s.submitDraft)

			r.Get("/{slug}", s.postBySlug)
			r.Get("/{slug}/markdown", s.postMarkdown)

			r.Group(func(r chi.Router) {
				r.Use(s.MustBeAdmin)
				r.Use(s.validatePostID)
				r.Put("/{id}", s.updatePost)
				r.Delete("/{id}", s.deletePost)
			})
		})

		r.Get("/hero", s.heroPost)
		r.With(s.MustBeAdmin).Post("/upload/image", s.uploadImage)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			errorData(w, "Endpoint not found", 404)
		})
	})

	return r
}
