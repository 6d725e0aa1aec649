package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vibeworks/inkwell"
)

const uniqueViolation = "23505"

var postColumns = []string{
	"id", "created_at", "updated_at",
	"title", "subtitle", "slug",
	"content", "html_content", "excerpt",
	"featured_image", "status", "type", "tags",
	"seo_title", "seo_description", "read_time",
	"featured", "hero", "send_newsletter",
	"published_at",
}

type dbPost struct {
	ID        int       `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Title    string `db:"title"`
	Subtitle string `db:"subtitle"`
	Slug     string `db:"slug"`

	Content     string `db:"content"`
	HTMLContent string `db:"html_content"`
	Excerpt     string `db:"excerpt"`

	FeaturedImage string   `db:"featured_image"`
	Status        string   `db:"status"`
	Type          string   `db:"type"`
	Tags          []string `db:"tags"`

	SEOTitle       string `db:"seo_title"`
	SEODescription string `db:"seo_description"`
	ReadTime       int    `db:"read_time"`

	Featured       bool `db:"featured"`
	Hero           bool `db:"hero"`
	SendNewsletter bool `db:"send_newsletter"`

	PublishedAt *time.Time `db:"published_at"`
}

// Post returns the first post matching filter, or nil if there is none.
func (s *DB) Post(ctx context.Context, filter inkwell.PostFilter) (*inkwell.Post, error) {
	filter.Limit = 1
	posts, err := s.Posts(ctx, filter)
	if err != nil || len(posts) == 0 {
		return nil, err
	}
	return posts[0], nil
}

func (s *DB) Posts(ctx context.Context, filter inkwell.PostFilter) ([]*inkwell.Post, error) {
	sb := postFilterQuery(&filter, sq.Select(postColumns...).From("posts"))
	query, args, err := sb.OrderBy(postOrdering(filter.Ordering, filter.Ascending)...).ToSql()
	if err != nil {
		return nil, err
	}

	rows, _ := s.conn.Query(ctx, query, args...)
	posts, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[dbPost])
	if errors.Is(err, pgx.ErrNoRows) {
		return []*inkwell.Post{}, nil
	}
	if err != nil {
		return nil, err
	}
	return mapper(posts, internalToPost), nil
}

// CountPosts ignores the limit fields in filter.
func (s *DB) CountPosts(ctx context.Context, filter inkwell.PostFilter) (int, error) {
	sb := postFilterQuery(&filter, sq.Select("COUNT(*)").From("posts")).RemoveLimit().RemoveOffset()
	query, args, err := sb.ToSql()
	if err != nil {
		return -1, err
	}

	var count int
	err = s.conn.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

// CreatePost inserts a post. htmlContent must already be sanitized.
// A hero post takes the hero spot from whichever post held it.
func (s *DB) CreatePost(ctx context.Context, post inkwell.PostInput, htmlContent string) (int, error) {
	query, args, err := postInsertQuery(post, htmlContent).ToSql()
	if err != nil {
		return -1, err
	}

	var id = -1
	err = pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		if post.Hero {
			if err := clearHero(ctx, tx, -1); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, query, args...).Scan(&id)
	})
	if err != nil {
		return -1, translateError(err)
	}
	return id, nil
}

func (s *DB) UpdatePost(ctx context.Context, id int, upd inkwell.PostUpdate) error {
	ub, err := postUpdateQuery(id, upd)
	if err != nil {
		return err
	}
	query, args, err := ub.ToSql()
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		if upd.Hero != nil && *upd.Hero {
			if err := clearHero(ctx, tx, id); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return translateError(err)
		}
		if tag.RowsAffected() == 0 {
			return inkwell.ErrNotFound
		}
		return nil
	})
}

// clearHero unsets the hero flag on every post except keepID.
func clearHero(ctx context.Context, tx pgx.Tx, keepID int) error {
	query, args, err := heroClearQuery(keepID).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("couldn't clear hero post: %w", err)
	}
	return nil
}

func heroClearQuery(keepID int) sq.UpdateBuilder {
	ub := sq.Update("posts").Set("hero", false).Where(sq.Eq{"hero": true})
	if keepID > 0 {
		ub = ub.Where(sq.NotEq{"id": keepID})
	}
	return ub
}

func (s *DB) DeletePost(ctx context.Context, id int) error {
	_, err := s.conn.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	return err
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return inkwell.WrapStatus(err, 409, "%s", inkwell.ErrDuplicateSlug.Error())
	}
	return err
}

func postFilterQuery(filter *inkwell.PostFilter, sb sq.SelectBuilder) sq.SelectBuilder {
	where := sq.And{}
	if v := filter.ID; v != nil {
		where = append(where, sq.Eq{"id": v})
	}
	if v := filter.IDs; v != nil && len(v) == 0 {
		where = append(where, sq.Expr("0 = 1"))
	}
	if v := filter.IDs; len(v) > 0 {
		where = append(where, sq.Expr("id = ANY(?)", v))
	}
	if v := filter.Slug; v != nil {
		where = append(where, sq.Eq{"slug": v})
	}
	if v := filter.Status; v != nil {
		where = append(where, sq.Eq{"status": string(*v)})
	}
	if v := filter.Type; v != nil {
		where = append(where, sq.Eq{"type": string(*v)})
	}
	if v := filter.Hero; v != nil {
		where = append(where, sq.Eq{"hero": v})
	}

	if v := filter.Limit; v > 0 {
		sb = sb.Limit(uint64(v))
	}
	if v := filter.Offset; v > 0 {
		sb = sb.Offset(uint64(v))
	}

	return sb.Where(where)
}

func postOrdering(ordering string, ascending bool) []string {
	ord := " DESC"
	if ascending {
		ord = " ASC"
	}
	switch ordering {
	case "published_at", "created_at", "updated_at", "title":
		return []string{ordering + ord + " NULLS LAST", "id DESC"}
	default:
		return []string{"id" + ord}
	}
}

func postInsertQuery(post inkwell.PostInput, htmlContent string) sq.InsertBuilder {
	var publishedAt any
	if post.Status == inkwell.StatusPublished {
		publishedAt = sq.Expr("NOW()")
	}
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return sq.Insert("posts").SetMap(map[string]any{
		"title":           post.Title,
		"subtitle":        post.Subtitle,
		"slug":            post.Slug,
		"content":         post.Content,
		"html_content":    htmlContent,
		"excerpt":         post.Excerpt,
		"featured_image":  post.FeaturedImage,
		"status":          string(post.Status),
		"type":            string(post.Type),
		"tags":            tags,
		"seo_title":       post.SEOTitle,
		"seo_description": post.SEODescription,
		"read_time":       post.ReadTime,
		"featured":        post.Featured,
		"hero":            post.Hero,
		"send_newsletter": post.SendNewsletter,
		"published_at":    publishedAt,
	}).Suffix("RETURNING id")
}

func postUpdateQuery(id int, upd inkwell.PostUpdate) (sq.UpdateBuilder, error) {
	updQuery := sq.Update("posts").Where(sq.Eq{"id": id})
	changed := false
	set := func(column string, value any) {
		updQuery = updQuery.Set(column, value)
		changed = true
	}

	if v := upd.Title; v != nil {
		set("title", v)
	}
	if v := upd.Subtitle; v != nil {
		set("subtitle", v)
	}
	if v := upd.Slug; v != nil {
		set("slug", v)
	}
	if v := upd.Content; v != nil {
		set("content", v)
	}
	if v := upd.HTMLContent; v != nil {
		set("html_content", v)
	}
	if v := upd.Excerpt; v != nil {
		set("excerpt", v)
	}
	if v := upd.FeaturedImage; v != nil {
		set("featured_image", v)
	}
	if v := upd.Status; v != nil {
		set("status", string(*v))
		// Published at - first time it was published
		if *v == inkwell.StatusPublished {
			set("published_at", sq.Expr("COALESCE(published_at, NOW())"))
		}
	}
	if v := upd.Type; v != nil {
		set("type", string(*v))
	}
	if v := upd.Tags; v != nil {
		set("tags", v)
	}
	if v := upd.SEOTitle; v != nil {
		set("seo_title", v)
	}
	if v := upd.SEODescription; v != nil {
		set("seo_description", v)
	}
	if v := upd.ReadTime; v != nil {
		set("read_time", v)
	}
	if v := upd.Featured; v != nil {
		set("featured", v)
	}
	if v := upd.Hero; v != nil {
		set("hero", v)
	}
	if v := upd.SendNewsletter; v != nil {
		set("send_newsletter", v)
	}

	if !changed {
		return updQuery, inkwell.ErrNoUpdates
	}
	return updQuery.Set("updated_at", sq.Expr("NOW()")), nil
}

func internalToPost(p *dbPost) *inkwell.Post {
	return &inkwell.Post{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,

		Title:    p.Title,
		Subtitle: p.Subtitle,
		Slug:     p.Slug,

		Content:     p.Content,
		HTMLContent: p.HTMLContent,
		Excerpt:     p.Excerpt,

		FeaturedImage: p.FeaturedImage,
		Status:        inkwell.PostStatus(p.Status),
		Type:          inkwell.PostType(p.Type),
		Tags:          p.Tags,

		SEOTitle:       p.SEOTitle,
		SEODescription: p.SEODescription,
		ReadTime:       p.ReadTime,

		Featured:       p.Featured,
		Hero:           p.Hero,
		SendNewsletter: p.SendNewsletter,

		PublishedAt: p.PublishedAt,
	}
}
