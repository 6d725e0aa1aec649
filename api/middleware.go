package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vibeworks/inkwell"
)

type contextKey string

const postKey = contextKey("post")

// MustBeAdmin is middleware to make sure the request carries the admin bearer token
func (s *API) MustBeAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdmin(r) {
			errorData(w, "You must be an admin to do this", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MustHaveDraftKey is middleware to make sure external draft submissions carry the API key
func (s *API) MustHaveDraftKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !secretMatches(r.Header.Get("X-API-Key"), s.draftKey) {
			inkwell.WriteError(w, inkwell.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *API) validatePostID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			errorData(w, "invalid post ID", http.StatusBadRequest)
			return
		}
		post, err := s.base.Post(r.Context(), postID)
		if err != nil {
			inkwell.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), postKey, post)))
	})
}

func (s *API) isAdmin(r *http.Request) bool {
	token, ok := strings.CutPrefix(getAuthHeader(r), "Bearer ")
	return ok && secretMatches(token, s.adminToken)
}

// secretMatches never accepts an unconfigured secret.
func secretMatches(given, want string) bool {
	if want == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}

func getAuthHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("Authorization"))
}

func postFromContext(r *http.Request) *inkwell.Post {
	post, _ := r.Context().Value(postKey).(*inkwell.Post)
	return post
}
