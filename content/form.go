package content

import (
	"net/http"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/vibeworks/inkwell"
)

// FieldMode says who owns a derived field.
type FieldMode int

const (
	// Auto fields are recomputed from title, subtitle and content.
	Auto FieldMode = iota
	// Manual fields were edited by the author and are never overwritten again.
	Manual
)

func (m FieldMode) String() string {
	if m == Manual {
		return "manual"
	}
	return "auto"
}

// DerivedField enumerates the fields a Form can fill in by itself.
type DerivedField int

const (
	FieldSlug DerivedField = iota
	FieldSEOTitle
	FieldSEODescription
	FieldExcerpt

	numDerivedFields
)

// Form holds a post while it is being edited and keeps its derived fields in sync.
// It is not safe for concurrent use.
type Form struct {
	Title          string
	Subtitle       string
	Slug           string
	Content        string
	Excerpt        string
	FeaturedImage  string
	Status         inkwell.PostStatus
	Type           inkwell.PostType
	Tags           []string
	SEOTitle       string
	SEODescription string
	Featured       bool
	Hero           bool
	SendNewsletter bool

	editing bool
	modes   [numDerivedFields]FieldMode
}

// NewForm returns an empty form for a post that does not exist yet.
func NewForm() *Form {
	return &Form{Status: inkwell.StatusDraft, Type: inkwell.TypePost}
}

// EditForm loads an existing post. Its stored fields are kept until one of
// the source fields changes.
func EditForm(post *inkwell.Post) *Form {
	return &Form{
		Title:          post.Title,
		Subtitle:       post.Subtitle,
		Slug:           post.Slug,
		Content:        post.Content,
		Excerpt:        post.Excerpt,
		FeaturedImage:  post.FeaturedImage,
		Status:         post.Status,
		Type:           post.Type,
		Tags:           slices.Clone(post.Tags),
		SEOTitle:       post.SEOTitle,
		SEODescription: post.SEODescription,
		Featured:       post.Featured,
		Hero:           post.Hero,
		SendNewsletter: post.SendNewsletter,

		editing: true,
	}
}

func (f *Form) Mode(field DerivedField) FieldMode {
	return f.modes[field]
}

func (f *Form) SetTitle(title string) {
	f.Title = title
	f.derive()
}

func (f *Form) SetSubtitle(subtitle string) {
	f.Subtitle = subtitle
	f.derive()
}

// SetContent is wired to the editor's change callback.
func (f *Form) SetContent(content string) {
	f.Content = content
	f.derive()
}

func (f *Form) SetStatus(status inkwell.PostStatus) {
	f.Status = status
	f.derive()
}

// Edit records a manual edit of a derived field. From then on the field keeps
// whatever the author typed.
func (f *Form) Edit(field DerivedField, value string) {
	f.modes[field] = Manual
	switch field {
	case FieldSlug:
		f.Slug = value
	case FieldSEOTitle:
		f.SEOTitle = value
	case FieldSEODescription:
		f.SEODescription = value
	case FieldExcerpt:
		f.Excerpt = value
	}
}

func (f *Form) derive() {
	// A published post keeps its URL even if the title changes
	if f.Title != "" && f.modes[FieldSlug] == Auto && (f.Status == inkwell.StatusDraft || !f.editing) {
		f.Slug = inkwell.MakeSlug(f.Title)
	}
	if f.Title != "" && f.modes[FieldSEOTitle] == Auto {
		f.SEOTitle = f.Title
	}
	if f.Subtitle != "" && f.modes[FieldSEODescription] == Auto {
		f.SEODescription = Truncate(f.Subtitle, SEODescriptionLength)
	}
	if f.Content != "" && f.modes[FieldExcerpt] == Auto {
		if text := FirstParagraphText(f.Content); text != "" {
			f.Excerpt = Truncate(text, FormExcerptLength)
		}
	}
}

// Submission validates the form and returns the payload sent to the server.
// An empty excerpt falls back to one extracted from the content.
func (f *Form) Submission() (*inkwell.PostInput, error) {
	if err := validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.Slug, validation.Required),
		validation.Field(&f.Content, validation.Required),
	); err != nil {
		return nil, inkwell.WrapStatus(err, http.StatusBadRequest, "%s", inkwell.ErrMissingRequired.Error())
	}

	excerpt := f.Excerpt
	if excerpt == "" {
		excerpt = ExtractExcerpt(f.Content, ExcerptLength)
	}

	return &inkwell.PostInput{
		Title:          f.Title,
		Subtitle:       f.Subtitle,
		Slug:           f.Slug,
		Content:        f.Content,
		Excerpt:        excerpt,
		FeaturedImage:  f.FeaturedImage,
		Status:         f.Status,
		Type:           f.Type,
		Tags:           slices.Clone(f.Tags),
		SEOTitle:       f.SEOTitle,
		SEODescription: f.SEODescription,
		ReadTime:       CalculateReadingTime(f.Content),
		Featured:       f.Featured,
		Hero:           f.Hero,
		SendNewsletter: f.SendNewsletter,
	}, nil
}

// FillDerived completes a server-side submission the same way a Form would,
// touching only fields the client left empty.
func FillDerived(input *inkwell.PostInput) {
	if input.Slug == "" && input.Title != "" {
		input.Slug = inkwell.MakeSlug(input.Title)
	}
	if input.SEOTitle == "" {
		input.SEOTitle = input.Title
	}
	if input.SEODescription == "" && input.Subtitle != "" {
		input.SEODescription = Truncate(input.Subtitle, SEODescriptionLength)
	}
	if input.Excerpt == "" {
		input.Excerpt = ExtractExcerpt(input.Content, ExcerptLength)
	}
	if input.ReadTime <= 0 {
		input.ReadTime = CalculateReadingTime(input.Content)
	}
	if input.Type == "" {
		input.Type = inkwell.TypePost
	}
	if input.Status == "" {
		input.Status = inkwell.StatusDraft
	}
}
