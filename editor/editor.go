// Package editor is a headless block editor for post bodies.
// The document is a ProseMirror node tree that is serialized to HTML after every change.
package editor

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cozy/prosemirror-go/model"
	"github.com/vibeworks/inkwell/content"
	"github.com/vibeworks/inkwell/mdrenderer"
)

var (
	ErrExtensionDisabled = errors.New("extension disabled")
	ErrInvalidPosition   = errors.New("invalid position")
	ErrNotApplicable     = errors.New("command not applicable at selection")
	ErrInvalidURL        = errors.New("invalid url")
)

// Pos addresses an offset inside the textblock at Path.
type Pos struct {
	Path   []int
	Offset int
}

func (p Pos) clone() Pos {
	return Pos{Path: slices.Clone(p.Path), Offset: p.Offset}
}

func (p Pos) Equal(o Pos) bool {
	return p.Offset == o.Offset && slices.Equal(p.Path, o.Path)
}

// Selection is a range inside a single textblock. Anchor is where it started, Head where it ends.
type Selection struct {
	Anchor Pos
	Head   Pos
}

func Cursor(path []int, offset int) Selection {
	p := Pos{Path: path, Offset: offset}
	return Selection{Anchor: p, Head: p.clone()}
}

func (s Selection) Empty() bool {
	return s.Anchor.Offset == s.Head.Offset
}

func (s Selection) Equal(o Selection) bool {
	return s.Anchor.Equal(o.Anchor) && s.Head.Equal(o.Head)
}

func (s Selection) clone() Selection {
	return Selection{Anchor: s.Anchor.clone(), Head: s.Head.clone()}
}

// Range returns the selection as an ordered range.
func (s Selection) Range() Range {
	from, to := s.Anchor.Offset, s.Head.Offset
	if from > to {
		from, to = to, from
	}
	return Range{Path: slices.Clone(s.Head.Path), From: from, To: to}
}

// Range is [From, To) inside the textblock at Path.
type Range struct {
	Path []int
	From int
	To   int
}

type Event int

const (
	EventUpdate Event = iota
	EventSelectionUpdate
)

type Config struct {
	// Extensions defaults to DefaultExtensions("") when left zero.
	Extensions Extensions
	Content    string
	OnChange   func(html string)

	Uploader    ImageUploader
	FilePicker  FilePicker
	Prompter    Prompter
	Notifier    Notifier
	Suggestions SuggestionRenderer
	Layout      Layout
}

type listener struct {
	fn func()
}

// Editor is a controlled editor over a Document. It is not safe for concurrent use.
type Editor struct {
	cfg Config
	ext Extensions

	doc  *Document
	sel  Selection
	html string

	// storedMarks apply to the next inserted text when set
	storedMarks    []*model.Mark
	hasStoredMarks bool

	listeners map[Event][]*listener
	slash     suggestionState
}

func New(cfg Config) *Editor {
	if cfg.Extensions.isZero() {
		cfg.Extensions = DefaultExtensions("")
	}
	e := &Editor{
		cfg:       cfg,
		ext:       cfg.Extensions,
		listeners: make(map[Event][]*listener),
	}
	e.replaceDocument(ParseHTML(toHTML(cfg.Content), e.ext))
	return e
}

func toHTML(src string) string {
	if strings.TrimSpace(src) == "" || content.IsHTML(src) {
		return src
	}
	return mdrenderer.RenderMarkdown(src)
}

func (e *Editor) Extensions() Extensions {
	return e.ext
}

// Content is the serialized document.
func (e *Editor) Content() string {
	return e.html
}

func (e *Editor) Document() *Document {
	return e.doc
}

func (e *Editor) Selection() Selection {
	return e.sel.clone()
}

// Placeholder is the text to show while the document is empty.
func (e *Editor) Placeholder() string {
	if !e.doc.Empty() {
		return ""
	}
	return e.ext.Placeholder()
}

// OnChange replaces the change callback. It receives the new HTML after every
// mutation that changes it.
func (e *Editor) OnChange(fn func(html string)) {
	e.cfg.OnChange = fn
}

// On subscribes fn to an event. The returned func unsubscribes it.
func (e *Editor) On(ev Event, fn func()) (off func()) {
	l := &listener{fn: fn}
	e.listeners[ev] = append(e.listeners[ev], l)
	return func() {
		e.listeners[ev] = slices.DeleteFunc(e.listeners[ev], func(o *listener) bool { return o == l })
	}
}

func (e *Editor) emit(ev Event) {
	for _, l := range slices.Clone(e.listeners[ev]) {
		l.fn()
	}
}

// SetContent loads src, which may be HTML or markdown. Markdown is rendered first.
// Nothing happens when src is empty or already equals Content, so feeding the
// editor its own output back is a no-op. Change callbacks are not fired.
func (e *Editor) SetContent(src string) bool {
	if strings.TrimSpace(src) == "" {
		return false
	}
	h := toHTML(src)
	if h == e.html {
		return false
	}
	doc := ParseHTML(h, e.ext)
	if doc.HTML() == e.html {
		return false
	}
	e.replaceDocument(doc)
	e.emit(EventSelectionUpdate)
	e.checkSuggestion()
	return true
}

func (e *Editor) replaceDocument(doc *Document) {
	e.doc = doc
	e.html = doc.HTML()
	e.sel = Cursor(doc.Textblocks()[0], 0)
	e.storedMarks, e.hasStoredMarks = nil, false
}

// SetSelection moves the selection. Both ends must be in the same textblock.
func (e *Editor) SetSelection(sel Selection) error {
	return e.apply(func(tr *transaction) error {
		if !slices.Equal(sel.Anchor.Path, sel.Head.Path) {
			return fmt.Errorf("%w: selection spans blocks", ErrInvalidPosition)
		}
		b, err := tr.doc.Block(sel.Head.Path)
		if err != nil {
			return err
		}
		if !isTextblock(b) {
			return fmt.Errorf("%w: %s is not a textblock", ErrInvalidPosition, nodeName(b))
		}
		n := contentSize(b)
		if sel.Anchor.Offset < 0 || sel.Anchor.Offset > n || sel.Head.Offset < 0 || sel.Head.Offset > n {
			return fmt.Errorf("%w: offset out of range", ErrInvalidPosition)
		}
		tr.sel = sel.clone()
		tr.clearStoredMarks()
		return nil
	})
}

// Select selects [from, to) in the textblock at path.
func (e *Editor) Select(path []int, from, to int) error {
	return e.SetSelection(Selection{
		Anchor: Pos{Path: slices.Clone(path), Offset: from},
		Head:   Pos{Path: slices.Clone(path), Offset: to},
	})
}

// SetCursor collapses the selection to offset in the textblock at path.
func (e *Editor) SetCursor(path []int, offset int) error {
	return e.Select(path, offset, offset)
}

// SelectedText returns the text covered by the selection.
func (e *Editor) SelectedText() string {
	b, err := e.doc.Block(e.sel.Head.Path)
	if err != nil {
		return ""
	}
	r := e.sel.Range()
	return textBetween(b, r.From, r.To)
}

type transaction struct {
	ext Extensions
	doc *Document
	sel Selection

	storedMarks    []*model.Mark
	hasStoredMarks bool
}

func (tr *transaction) clearStoredMarks() {
	tr.storedMarks, tr.hasStoredMarks = nil, false
}

// apply runs fn against the current state and commits the result if fn succeeds.
// Documents are immutable, so a failing command leaves the editor untouched.
func (e *Editor) apply(fn func(tr *transaction) error) error {
	tr := &transaction{
		ext:            e.ext,
		doc:            e.doc,
		sel:            e.sel.clone(),
		storedMarks:    slices.Clone(e.storedMarks),
		hasStoredMarks: e.hasStoredMarks,
	}
	if err := fn(tr); err != nil {
		return err
	}
	doc, err := tr.doc.ensureTextblock()
	if err != nil {
		return err
	}
	tr.doc = doc
	e.commit(tr)
	return nil
}

func (e *Editor) commit(tr *transaction) {
	selChanged := !tr.sel.Equal(e.sel)
	html := tr.doc.HTML()
	docChanged := html != e.html

	e.doc, e.sel, e.html = tr.doc, tr.sel, html
	e.storedMarks, e.hasStoredMarks = tr.storedMarks, tr.hasStoredMarks

	if selChanged {
		e.emit(EventSelectionUpdate)
	}
	if docChanged {
		e.emit(EventUpdate)
		if e.cfg.OnChange != nil {
			e.cfg.OnChange(html)
		}
	}
	e.checkSuggestion()
}
