package inkwell

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusScheduled PostStatus = "scheduled"
)

func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusScheduled:
		return true
	}
	return false
}

type PostType string

const (
	TypePost     PostType = "post"
	TypePlaybook PostType = "playbook"
	TypeGuide    PostType = "guide"
	TypeTool     PostType = "tool"
)

func (t PostType) Valid() bool {
	switch t {
	case TypePost, TypePlaybook, TypeGuide, TypeTool:
		return true
	}
	return false
}

type Post struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Slug     string `json:"slug"` // unique, used in URL

	// Content is the source the author submitted: editor HTML or markdown.
	Content string `json:"content"`
	// HTMLContent is Content after rendering and sanitization.
	HTMLContent string `json:"html_content"`
	Excerpt     string `json:"excerpt"`

	FeaturedImage string     `json:"featured_image"`
	Status        PostStatus `json:"status"`
	Type          PostType   `json:"type"`
	Tags          []string   `json:"tags"`

	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
	ReadTime       int    `json:"read_time"` // in minutes

	Featured       bool `json:"featured"`
	Hero           bool `json:"hero"`
	SendNewsletter bool `json:"send_newsletter"`

	PublishedAt *time.Time `json:"published_at"`
}

type PostFilter struct {
	ID     *int        `json:"id"`
	IDs    []int       `json:"ids"`
	Slug   *string     `json:"slug"`
	Status *PostStatus `json:"status"`
	Type   *PostType   `json:"type"`
	Hero   *bool       `json:"hero"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`

	Ordering  string `json:"ordering"`
	Ascending bool   `json:"ascending"`
}

// PostInput is a complete post submission, as sent by the editor form or the draft endpoint.
type PostInput struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Slug     string `json:"slug"`
	Content  string `json:"content"`
	Excerpt  string `json:"excerpt"`

	FeaturedImage string     `json:"featured_image"`
	Status        PostStatus `json:"status"`
	Type          PostType   `json:"type"`
	Tags          []string   `json:"tags"`

	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
	ReadTime       int    `json:"read_time"`

	Featured       bool `json:"featured"`
	Hero           bool `json:"hero"`
	SendNewsletter bool `json:"send_newsletter"`
}

type PostUpdate struct {
	Title    *string `json:"title"`
	Subtitle *string `json:"subtitle"`
	Slug     *string `json:"slug"`
	Content  *string `json:"content"`
	Excerpt  *string `json:"excerpt"`

	// HTMLContent is filled in by the service layer whenever Content is set.
	HTMLContent *string `json:"-"`

	FeaturedImage *string     `json:"featured_image"`
	Status        *PostStatus `json:"status"`
	Type          *PostType   `json:"type"`
	Tags          []string    `json:"tags"`

	SEOTitle       *string `json:"seo_title"`
	SEODescription *string `json:"seo_description"`
	ReadTime       *int    `json:"read_time"`

	Featured       *bool `json:"featured"`
	Hero           *bool `json:"hero"`
	SendNewsletter *bool `json:"send_newsletter"`
}

// "&" and "@" separate words instead of being spelled out, so "Tom & Jerry" is "tom-jerry".
var slugSeparators = strings.NewReplacer("&", " ", "@", " ")

// MakeSlug turns a title into a URL slug: lowercase ASCII words joined by dashes.
func MakeSlug(s string) string {
	return slug.Make(slugSeparators.Replace(s))
}
