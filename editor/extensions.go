package editor

import (
	"fmt"
	"maps"
	"slices"
)

type Extension string

const (
	ExtHeading        Extension = "heading"
	ExtCodeBlock      Extension = "codeBlock"
	ExtBlockquote     Extension = "blockquote"
	ExtBulletList     Extension = "bulletList"
	ExtOrderedList    Extension = "orderedList"
	ExtBold           Extension = "bold"
	ExtItalic         Extension = "italic"
	ExtCode           Extension = "code"
	ExtUnderline      Extension = "underline"
	ExtStrike         Extension = "strike"
	ExtImage          Extension = "image"
	ExtLink           Extension = "link"
	ExtIframe         Extension = "iframe"
	ExtHorizontalRule Extension = "horizontalRule"
	ExtPlaceholder    Extension = "placeholder"
	ExtSlashCommand   Extension = "slashCommand"
)

var markExtensions = map[MarkType]Extension{
	MarkBold:      ExtBold,
	MarkItalic:    ExtItalic,
	MarkCode:      ExtCode,
	MarkUnderline: ExtUnderline,
	MarkStrike:    ExtStrike,
	MarkLink:      ExtLink,
}

// Extensions is the editor's schema and feature set.
// It is a value: every method returns a copy and the zero value enables nothing.
type Extensions struct {
	enabled       map[Extension]bool
	headingLevels []int
	placeholder   string
}

const DefaultPlaceholder = `Type "/" for commands...`

// DefaultExtensions enables everything the post editor uses, with headings 1 to 6.
func DefaultExtensions(placeholder string) Extensions {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	enabled := make(map[Extension]bool)
	for _, ext := range []Extension{
		ExtHeading, ExtCodeBlock, ExtBlockquote, ExtBulletList, ExtOrderedList,
		ExtBold, ExtItalic, ExtCode, ExtUnderline, ExtStrike,
		ExtImage, ExtLink, ExtIframe, ExtHorizontalRule, ExtPlaceholder, ExtSlashCommand,
	} {
		enabled[ext] = true
	}
	return Extensions{
		enabled:       enabled,
		headingLevels: []int{1, 2, 3, 4, 5, 6},
		placeholder:   placeholder,
	}
}

func (x Extensions) Enabled(ext Extension) bool {
	return x.enabled[ext]
}

// Without returns a copy of x with the given extensions disabled.
func (x Extensions) Without(exts ...Extension) Extensions {
	nx := Extensions{
		enabled:       maps.Clone(x.enabled),
		headingLevels: slices.Clone(x.headingLevels),
		placeholder:   x.placeholder,
	}
	if nx.enabled == nil {
		nx.enabled = make(map[Extension]bool)
	}
	for _, ext := range exts {
		delete(nx.enabled, ext)
	}
	return nx
}

// WithHeadingLevels returns a copy of x that only allows the given heading levels.
func (x Extensions) WithHeadingLevels(levels ...int) Extensions {
	nx := x.Without()
	nx.headingLevels = slices.Clone(levels)
	return nx
}

func (x Extensions) HeadingLevels() []int {
	return slices.Clone(x.headingLevels)
}

func (x Extensions) Placeholder() string {
	if !x.Enabled(ExtPlaceholder) {
		return ""
	}
	return x.placeholder
}

func (x Extensions) headingAllowed(level int) bool {
	return x.Enabled(ExtHeading) && slices.Contains(x.headingLevels, level)
}

func (x Extensions) markAllowed(t MarkType) bool {
	return x.Enabled(markExtensions[t])
}

func (x Extensions) require(ext Extension) error {
	if !x.Enabled(ext) {
		return fmt.Errorf("%w: %s", ErrExtensionDisabled, ext)
	}
	return nil
}

func (x Extensions) isZero() bool {
	return x.enabled == nil
}
