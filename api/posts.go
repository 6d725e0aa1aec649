package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/vibeworks/inkwell"
)

type postsQuery struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

func (q postsQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Type, validation.In("post", "playbook", "guide", "tool")),
		validation.Field(&q.Status, validation.In("draft", "published", "scheduled")),
		validation.Field(&q.Limit, validation.Min(0), validation.Max(100)),
		validation.Field(&q.Offset, validation.Min(0)),
	)
}

func (s *API) posts(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	var args postsQuery
	if err := decoder.Decode(&args, r.Form); err != nil {
		errorData(w, "Invalid request parameters", http.StatusBadRequest)
		return
	}
	if err := args.Validate(); err != nil {
		errorData(w, err, http.StatusBadRequest)
		return
	}

	filter := inkwell.PostFilter{Limit: args.Limit, Offset: args.Offset}
	if args.Type != "" {
		typ := inkwell.PostType(args.Type)
		filter.Type = &typ
	}
	if args.Status != "" {
		status := inkwell.PostStatus(args.Status)
		filter.Status = &status
	}

	posts, cnt, err := s.base.Posts(r.Context(), filter, s.isAdmin(r))
	if err != nil {
		inkwell.WriteError(w, err)
		return
	}
	returnData(w, struct {
		Posts []*inkwell.Post `json:"posts"`
		Count int             `json:"count"`
	}{Posts: posts, Count: cnt})
}

func (s *API) postBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := s.base.PostBySlug(r.Context(), chi.URLParam(r, "slug"), s.isAdmin(r))
	if err != nil {
		inkwell.WriteError(w, err)
		return
	}
	returnData(w, post)
}

func (s *API) heroPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.base.HeroPost(r.Context())
	if err != nil {
		inkwell.WriteError(w, err)
		return
	}
	post.HTMLContent = s.base.PostHTML(r.Context(), post)
	returnData(w, post)
}

func (s *API) postMarkdown(w http.ResponseWriter, r *http.Request) {
	post, err := s.base.PostBySlug(r.Context(), chi.URLParam(r, "slug"), s.isAdmin(r))
	if err != nil {
		inkwell.WriteError(w, err)
		return
	}
	md, err := s.base.PostMarkdown(r.Context(), post)
	if err != nil {
		inkwell.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

func (s *API) createPost(w http.ResponseWriter, r *http.Request) {
	var args inkwell.PostInput
	if !parseRequest(w, r, &args) {
		return
	}
	post, err := s.base.CreatePost(r.Context(), args)
	if err != nil {
		inkwell.WriteError(w, err)
		return
	}
	inkwell.StatusData(w, "success", post, http.StatusCreated)
}

func (s *API) submitDraft(w http.ResponseWriter, r *http.Request) {
	var args inkwell.PostInput
	if !parseRequest(w, r, &args) {
		return
	}
	post, err := s.base.SubmitDraft(r.Context(), args)
	if err != nil {
		inkwell.WriteError(w, err)
		return
	}
	inkwell.StatusData(w, "success", post, http.StatusCreated)
}

func (s *API) updatePost(w http.ResponseWriter, r *http.Request) {
	var args inkwell.PostUpdate
	if !parseRequest(w, r, &args) {
		return
	}
	post, err := s.base.UpdatePost(r.Context(), postFromContext(r).ID, args)
	if err != nil {
		inkwell.WriteError(w, err)
		return
	}
	returnData(w, post)
}

func (s *API) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.base.DeletePost(r.Context(), postFromContext(r)); err != nil {
		inkwell.WriteError(w, err)
		return
	}
	returnData(w, "Deleted post")
}
