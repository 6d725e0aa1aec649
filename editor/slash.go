package editor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// SlashItem is an entry of the slash command menu.
type SlashItem struct {
	Title       string
	Description string
	Icon        string
	Command     func(ctx context.Context, e *Editor, r Range) error

	enabled func(Extensions) bool
}

// SuggestionProps describe the open menu to the popup layer.
type SuggestionProps struct {
	Items    []SlashItem
	Query    string
	Range    Range
	Selected int
	// Rect is where the "/" is drawn. HasRect is false when there is no layout.
	Rect    Rect
	HasRect bool
}

// SuggestionRenderer draws the slash menu.
type SuggestionRenderer interface {
	OnStart(props SuggestionProps)
	OnUpdate(props SuggestionProps)
	OnExit()
}

type suggestionState struct {
	active bool
	// dismissed holds until the trigger text goes away
	dismissed bool

	query    string
	rng      Range
	items    []SlashItem
	selected int
}

// blockCommand deletes the "/query" text and then runs op, as one change.
func blockCommand(op func(tr *transaction) error) func(context.Context, *Editor, Range) error {
	return func(_ context.Context, e *Editor, r Range) error {
		return e.apply(func(tr *transaction) error {
			if err := tr.deleteRange(r); err != nil {
				return err
			}
			return op(tr)
		})
	}
}

func heading(level int) SlashItem {
	sizes := map[int]string{1: "Large", 2: "Medium", 3: "Small"}
	return SlashItem{
		Title:       fmt.Sprintf("Heading %d", level),
		Description: sizes[level] + " section heading",
		Icon:        fmt.Sprintf("H%d", level),
		Command:     blockCommand(func(tr *transaction) error { return tr.setHeading(level) }),
		enabled:     func(x Extensions) bool { return x.headingAllowed(level) },
	}
}

func requires(ext Extension) func(Extensions) bool {
	return func(x Extensions) bool { return x.Enabled(ext) }
}

// SlashItems is the full catalog, in menu order.
func SlashItems() []SlashItem {
	return []SlashItem{
		heading(1),
		heading(2),
		heading(3),
		{
			Title:       "Bullet List",
			Description: "Create a bulleted list",
			Icon:        "•",
			Command:     blockCommand(func(tr *transaction) error { return tr.toggleList(BlockBulletList) }),
			enabled:     requires(ExtBulletList),
		},
		{
			Title:       "Numbered List",
			Description: "Create a numbered list",
			Icon:        "1.",
			Command:     blockCommand(func(tr *transaction) error { return tr.toggleList(BlockOrderedList) }),
			enabled:     requires(ExtOrderedList),
		},
		{
			Title:       "Quote",
			Description: "Add a quote block",
			Icon:        `"`,
			Command:     blockCommand(func(tr *transaction) error { return tr.toggleBlockquote() }),
			enabled:     requires(ExtBlockquote),
		},
		{
			Title:       "Code Block",
			Description: "Add a code block",
			Icon:        "</>",
			Command:     blockCommand(func(tr *transaction) error { return tr.toggleCodeBlock() }),
			enabled:     requires(ExtCodeBlock),
		},
		{
			Title:       "Image",
			Description: "Upload and insert an image",
			Icon:        "🖼️",
			Command:     uploadImageCommand,
			enabled:     requires(ExtImage),
		},
		{
			Title:       "Video (YouTube)",
			Description: "Embed a YouTube video",
			Icon:        "▶️",
			Command:     youtubeCommand,
			enabled:     requires(ExtIframe),
		},
		{
			Title:       "Embed",
			Description: "Embed external content",
			Icon:        "🔗",
			Command:     embedCommand,
			enabled:     requires(ExtIframe),
		},
		{
			Title:       "Divider",
			Description: "Add a horizontal divider",
			Icon:        "―",
			Command:     blockCommand(func(tr *transaction) error { return tr.setHorizontalRule() }),
			enabled:     requires(ExtHorizontalRule),
		},
	}
}

// FilterSlashItems returns the enabled items whose title starts with query, ignoring case.
func FilterSlashItems(ext Extensions, query string) []SlashItem {
	query = strings.ToLower(query)
	var out []SlashItem
	for _, item := range SlashItems() {
		if item.enabled != nil && !item.enabled(ext) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(item.Title), query) {
			out = append(out, item)
		}
	}
	return out
}

// slashTrigger finds a "/query" paragraph under an empty selection at its end.
func (e *Editor) slashTrigger() (string, Range, bool) {
	if !e.ext.Enabled(ExtSlashCommand) || !e.sel.Empty() {
		return "", Range{}, false
	}
	b, err := e.doc.Block(e.sel.Head.Path)
	if err != nil || nodeName(b) != nodeParagraph {
		return "", Range{}, false
	}
	text := blockText(b)
	query, ok := strings.CutPrefix(text, "/")
	if !ok || strings.ContainsFunc(query, unicode.IsSpace) {
		return "", Range{}, false
	}
	n := contentSize(b)
	if e.sel.Head.Offset != n {
		return "", Range{}, false
	}
	return query, Range{Path: slices.Clone(e.sel.Head.Path), From: 0, To: n}, true
}

func sameTitles(a, b []SlashItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Title != b[i].Title {
			return false
		}
	}
	return true
}

// checkSuggestion runs after every commit and moves the menu between closed and open.
func (e *Editor) checkSuggestion() {
	query, rng, ok := e.slashTrigger()
	if !ok {
		wasActive := e.slash.active
		e.slash = suggestionState{}
		if wasActive && e.cfg.Suggestions != nil {
			e.cfg.Suggestions.OnExit()
		}
		return
	}
	if e.slash.dismissed {
		return
	}

	items := FilterSlashItems(e.ext, query)
	wasActive := e.slash.active
	if !wasActive || !sameTitles(items, e.slash.items) {
		e.slash.selected = 0
	}
	e.slash.active = true
	e.slash.query, e.slash.rng, e.slash.items = query, rng, items

	if e.cfg.Suggestions == nil {
		return
	}
	if wasActive {
		e.cfg.Suggestions.OnUpdate(e.suggestionProps())
	} else {
		e.cfg.Suggestions.OnStart(e.suggestionProps())
	}
}

func (e *Editor) suggestionProps() SuggestionProps {
	props := SuggestionProps{
		Items:    e.slash.items,
		Query:    e.slash.query,
		Range:    e.slash.rng,
		Selected: e.slash.selected,
	}
	if e.cfg.Layout != nil {
		c, err := e.cfg.Layout.CoordsAtPos(Pos{Path: e.slash.rng.Path, Offset: e.slash.rng.From})
		if err == nil {
			props.Rect = Rect{Left: c.Left, Top: c.Top, Width: c.Right - c.Left, Height: c.Bottom - c.Top}
			props.HasRect = true
		}
	}
	return props
}

// Suggestion returns the open slash menu, if any.
func (e *Editor) Suggestion() (SuggestionProps, bool) {
	if !e.slash.active {
		return SuggestionProps{}, false
	}
	return e.suggestionProps(), true
}

// HandleKeyDown feeds a key to the open slash menu. It reports whether the key was consumed.
func (e *Editor) HandleKeyDown(ctx context.Context, key string) (bool, error) {
	if !e.slash.active {
		return false, nil
	}
	n := len(e.slash.items)
	switch key {
	case "ArrowUp", "ArrowDown":
		if n == 0 {
			return true, nil
		}
		if key == "ArrowUp" {
			e.slash.selected = (e.slash.selected + n - 1) % n
		} else {
			e.slash.selected = (e.slash.selected + 1) % n
		}
		if e.cfg.Suggestions != nil {
			e.cfg.Suggestions.OnUpdate(e.suggestionProps())
		}
		return true, nil
	case "Enter":
		if n == 0 {
			return true, nil
		}
		return true, e.SelectSlashItem(ctx, e.slash.selected)
	case "Escape":
		e.slash = suggestionState{dismissed: true}
		if e.cfg.Suggestions != nil {
			e.cfg.Suggestions.OnExit()
		}
		return true, nil
	}
	return false, nil
}

// SelectSlashItem runs item i of the open menu over the "/query" range.
func (e *Editor) SelectSlashItem(ctx context.Context, i int) error {
	if !e.slash.active || i < 0 || i >= len(e.slash.items) {
		return fmt.Errorf("%w: no slash item %d", ErrNotApplicable, i)
	}
	item, rng := e.slash.items[i], e.slash.rng
	return item.Command(ctx, e, rng)
}
