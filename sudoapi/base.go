package sudoapi

import (
	"context"
	"fmt"

	"github.com/Yiling-J/theine-go"
	"github.com/vibeworks/inkwell"
	"github.com/vibeworks/inkwell/mdrenderer"
	"github.com/vibeworks/inkwell/sudoapi/flags"
)

// PostStore is the persistence layer for posts. *db.DB implements it.
// At most one post is the hero: storing a post with Hero set clears it on all others.
type PostStore interface {
	Post(ctx context.Context, filter inkwell.PostFilter) (*inkwell.Post, error)
	Posts(ctx context.Context, filter inkwell.PostFilter) ([]*inkwell.Post, error)
	CountPosts(ctx context.Context, filter inkwell.PostFilter) (int, error)
	CreatePost(ctx context.Context, post inkwell.PostInput, htmlContent string) (int, error)
	UpdatePost(ctx context.Context, id int, upd inkwell.PostUpdate) error
	DeletePost(ctx context.Context, id int) error
}

type BaseAPI struct {
	db     PostStore
	images inkwell.ImageStore
	rd     *mdrenderer.Renderer

	// sanitized HTML by post id and last update
	renderCache *theine.Cache[string, string]
}

// New wires the service layer. images may be nil, in which case uploads are refused.
func New(db PostStore, images inkwell.ImageStore) (*BaseAPI, error) {
	renderCache, err := theine.NewBuilder[string, string](flags.RenderCacheSize.Value()).Build()
	if err != nil {
		return nil, fmt.Errorf("could not build render cache: %w", err)
	}
	return &BaseAPI{
		db:     db,
		images: images,
		rd:     mdrenderer.NewRenderer(),

		renderCache: renderCache,
	}, nil
}

func (s *BaseAPI) Close() {
	s.renderCache.Close()
}
