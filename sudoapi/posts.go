package sudoapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/vibeworks/inkwell"
	"github.com/vibeworks/inkwell/content"
	"github.com/vibeworks/inkwell/sudoapi/flags"
)

const maxPageSize = 100

var (
	validStatuses = []any{inkwell.StatusDraft, inkwell.StatusPublished, inkwell.StatusScheduled}
	validTypes    = []any{inkwell.TypePost, inkwell.TypePlaybook, inkwell.TypeGuide, inkwell.TypeTool}
)

// Posts lists posts matching filter. Unless all is set, only published posts are visible.
func (s *BaseAPI) Posts(ctx context.Context, filter inkwell.PostFilter, all bool) ([]*inkwell.Post, int, error) {
	if !all {
		published := inkwell.StatusPublished
		filter.Status = &published
		if filter.Ordering == "" {
			filter.Ordering = "published_at"
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = flags.PublicPageSize.Value()
	}
	filter.Limit = min(filter.Limit, maxPageSize)

	posts, err := s.db.Posts(ctx, filter)
	if err != nil {
		return nil, -1, fmt.Errorf("couldn't find posts: %w", err)
	}
	if posts == nil {
		posts = []*inkwell.Post{}
	}
	cnt, err := s.db.CountPosts(ctx, filter)
	if err != nil {
		return nil, -1, fmt.Errorf("couldn't count posts: %w", err)
	}
	return posts, cnt, nil
}

func (s *BaseAPI) Post(ctx context.Context, id int) (*inkwell.Post, error) {
	post, err := s.db.Post(ctx, inkwell.PostFilter{ID: &id})
	if err != nil {
		return nil, fmt.Errorf("couldn't get post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// PostBySlug returns the post with its display-ready HTML.
// Unpublished posts are reported as missing unless all is set.
func (s *BaseAPI) PostBySlug(ctx context.Context, slug string, all bool) (*inkwell.Post, error) {
	post, err := s.db.Post(ctx, inkwell.PostFilter{Slug: &slug})
	if err != nil {
		return nil, fmt.Errorf("couldn't get post: %w", err)
	}
	if post == nil || (!all && post.Status != inkwell.StatusPublished) {
		return nil, ErrNotFound
	}
	post.HTMLContent = s.PostHTML(ctx, post)
	return post, nil
}

// CreatePost stores a new post. Derived fields the client left empty are filled in
// and the content is rendered and sanitized before it is persisted.
func (s *BaseAPI) CreatePost(ctx context.Context, input inkwell.PostInput) (*inkwell.Post, error) {
	content.FillDerived(&input)
	input.Slug = inkwell.MakeSlug(input.Slug)
	if err := validatePost(&input); err != nil {
		return nil, err
	}

	id, err := s.db.CreatePost(ctx, input, s.storedHTML(ctx, input.Content))
	if err != nil {
		return nil, fmt.Errorf("couldn't create post: %w", err)
	}
	slog.InfoContext(ctx, "Created post", slog.Int("id", id), slog.String("slug", input.Slug), slog.Any("status", input.Status))
	if input.Hero {
		slog.InfoContext(ctx, "Hero post changed", slog.Int("id", id))
	}
	return s.Post(ctx, id)
}

// HeroPost returns the published post shown in the hero spot.
func (s *BaseAPI) HeroPost(ctx context.Context) (*inkwell.Post, error) {
	hero, published := true, inkwell.StatusPublished
	post, err := s.db.Post(ctx, inkwell.PostFilter{Hero: &hero, Status: &published})
	if err != nil {
		return nil, fmt.Errorf("couldn't get hero post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// SubmitDraft is the entry point for external tools. Submissions always land as drafts
// and never replace an existing post.
func (s *BaseAPI) SubmitDraft(ctx context.Context, input inkwell.PostInput) (*inkwell.Post, error) {
	input.Status = inkwell.StatusDraft
	content.FillDerived(&input)
	input.Slug = inkwell.MakeSlug(input.Slug)
	if input.Slug != "" {
		existing, err := s.db.Post(ctx, inkwell.PostFilter{Slug: &input.Slug})
		if err != nil {
			return nil, fmt.Errorf("couldn't check slug: %w", err)
		}
		if existing != nil {
			return nil, ErrDuplicateSlug
		}
	}
	return s.CreatePost(ctx, input)
}

func (s *BaseAPI) UpdatePost(ctx context.Context, id int, upd inkwell.PostUpdate) (*inkwell.Post, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if upd.Slug != nil {
		*upd.Slug = inkwell.MakeSlug(*upd.Slug)
		if *upd.Slug == "" {
			return nil, ErrEmptySlug
		}
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if upd.Type != nil && !upd.Type.Valid() {
		return nil, ErrInvalidType
	}
	if upd.Content != nil {
		if strings.TrimSpace(*upd.Content) == "" {
			return nil, ErrEmptyContent
		}
		html := s.storedHTML(ctx, *upd.Content)
		upd.HTMLContent = &html
		if upd.ReadTime == nil {
			readTime := content.CalculateReadingTime(*upd.Content)
			upd.ReadTime = &readTime
		}
	}

	if err := s.db.UpdatePost(ctx, id, upd); err != nil {
		return nil, fmt.Errorf("couldn't update post: %w", err)
	}
	if upd.Hero != nil && *upd.Hero {
		slog.InfoContext(ctx, "Hero post changed", slog.Int("id", id))
	}
	return s.Post(ctx, id)
}

func (s *BaseAPI) DeletePost(ctx context.Context, post *inkwell.Post) error {
	if err := s.db.DeletePost(ctx, post.ID); err != nil {
		return fmt.Errorf("couldn't delete post: %w", err)
	}
	slog.InfoContext(ctx, "Removed post", slog.Int("id", post.ID), slog.String("slug", post.Slug))
	return nil
}

func validatePost(input *inkwell.PostInput) error {
	if input.Title == "" || input.Slug == "" || strings.TrimSpace(input.Content) == "" {
		return ErrMissingRequired
	}
	err := validation.ValidateStruct(input,
		validation.Field(&input.Title, validation.Length(1, 300)),
		validation.Field(&input.Slug, validation.Length(1, 200)),
		validation.Field(&input.Status, validation.In(validStatuses...)),
		validation.Field(&input.Type, validation.In(validTypes...)),
		validation.Field(&input.ReadTime, validation.Min(0)),
	)
	if err != nil {
		return inkwell.WrapStatus(err, 400, "Invalid post: %s", err.Error())
	}
	return nil
}
