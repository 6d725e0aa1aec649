package editor

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// File is a file chosen by the author.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type ImageUploader interface {
	// UploadImage stores the image and returns its public URL.
	UploadImage(ctx context.Context, f File) (string, error)
}

type FilePicker interface {
	// PickFile returns nil without an error when the author cancels.
	PickFile(ctx context.Context, accept string) (*File, error)
}

type Prompter interface {
	// Prompt returns "" when the author cancels.
	Prompt(ctx context.Context, message string) (string, error)
}

// Notifier shows toasts.
type Notifier interface {
	Loading(msg string)
	Success(msg string)
	Error(msg string)
	Dismiss()
}

type nopNotifier struct{}

func (nopNotifier) Loading(string) {}
func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
func (nopNotifier) Dismiss()       {}

func (e *Editor) notifier() Notifier {
	if e.cfg.Notifier == nil {
		return nopNotifier{}
	}
	return e.cfg.Notifier
}

const YouTubeAllow = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"

var youtubeRegex = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// YouTubeID extracts the 11 character video id from a YouTube URL.
func YouTubeID(url string) (string, bool) {
	m := youtubeRegex.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return "", false
	}
	return m[2], true
}

// The async commands remove the "/query" text before they start.
// If they are cancelled or fail, the text stays removed and nothing is inserted.

func uploadImageCommand(ctx context.Context, e *Editor, r Range) error {
	if err := e.DeleteRange(r); err != nil {
		return err
	}
	if e.cfg.FilePicker == nil || e.cfg.Uploader == nil {
		return fmt.Errorf("%w: no image uploader", ErrNotApplicable)
	}
	f, err := e.cfg.FilePicker.PickFile(ctx, "image/*")
	if err != nil || f == nil {
		return err
	}

	n := e.notifier()
	n.Loading("Uploading image...")
	url, err := e.cfg.Uploader.UploadImage(ctx, *f)
	n.Dismiss()
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Failed to upload image"
		}
		n.Error(msg)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.SetImage(ImageAttrs{Src: url, Alt: f.Name}); err != nil {
		n.Error("Failed to upload image")
		return err
	}
	n.Success("Image uploaded")
	return nil
}

func (e *Editor) prompt(ctx context.Context, msg string) (string, error) {
	if e.cfg.Prompter == nil {
		return "", fmt.Errorf("%w: no prompter", ErrNotApplicable)
	}
	s, err := e.cfg.Prompter.Prompt(ctx, msg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func youtubeCommand(ctx context.Context, e *Editor, r Range) error {
	if err := e.DeleteRange(r); err != nil {
		return err
	}
	url, err := e.prompt(ctx, "Enter YouTube URL:")
	if err != nil || url == "" {
		return err
	}
	id, ok := YouTubeID(url)
	if !ok {
		e.notifier().Error("Invalid YouTube URL")
		return fmt.Errorf("%w: %q is not a YouTube URL", ErrInvalidURL, url)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.SetIframe(IframeAttrs{Src: "https://www.youtube.com/embed/" + id, Allow: YouTubeAllow})
}

func embedCommand(ctx context.Context, e *Editor, r Range) error {
	if err := e.DeleteRange(r); err != nil {
		return err
	}
	url, err := e.prompt(ctx, "Enter embed URL:")
	if err != nil || url == "" {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.SetIframe(IframeAttrs{Src: url}); err != nil {
		e.notifier().Error("Invalid embed URL")
		return err
	}
	return nil
}
